// Package ui provides the "run once and exit" terminal output of
// irbridge-cfg: command headers, step progress, result boxes and captured
// signal dumps. The interactive setup wizard lives in internal/wizard/tui.
//
// Commands with several steps go through a StepRunner, which prints the
// header, a line per finished step and a result box:
//
//	runner := ui.NewStepRunner(ui.StepRunnerConfig{
//	    Title:     "Bridge Setup",
//	    Command:   "irbridge-cfg setup",
//	    Params:    map[string]string{"Network": "home"},
//	    StepNames: []string{"Validate", "Send credentials", "Wait for bridge"},
//	})
//	err := runner.Run(ctx, func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    ...
//	})
//
// Logging stays silent unless IRBRIDGE_LOG_LEVEL is set, so the styled
// output is not interleaved with zap lines.
package ui
