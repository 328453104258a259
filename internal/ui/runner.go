package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// StepRunnerConfig describes a multi-step command
type StepRunnerConfig struct {
	Title           string
	Command         string
	Params          map[string]string
	StepNames       []string
	Troubleshooting func(error) []string // tips shown when the operation fails
	Output          io.Writer            // defaults to os.Stdout
}

// StepRunner prints header, step progress and the final result for a
// multi-step command.
type StepRunner struct {
	config   StepRunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int
}

// NewStepRunner creates a runner sized to the terminal
func NewStepRunner(config StepRunnerConfig) *StepRunner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	progress := NewProgress("", len(config.StepNames))
	progress.SetWidth(width)
	progress.SetStepNames(config.StepNames)

	return &StepRunner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params).SetWidth(width),
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// SetWidth overrides the detected terminal width
func (r *StepRunner) SetWidth(width int) *StepRunner {
	r.width = width
	r.header.SetWidth(width)
	r.progress.SetWidth(width)
	return r
}

// Operation does the work of a StepRunner and returns details for the
// success box.
type Operation func(ctx context.Context, onStep StepCallback) (map[string]string, error)

// Run prints the header, runs op and prints the result box.
func (r *StepRunner) Run(ctx context.Context, op Operation) error {
	start := time.Now()

	fmt.Fprintln(r.output, r.header.Render())
	fmt.Fprintln(r.output)

	details, err := op(ctx, r.onStep)
	duration := time.Since(start).Round(time.Millisecond)

	fmt.Fprintln(r.output)
	if err != nil {
		var tips []string
		if r.config.Troubleshooting != nil {
			tips = r.config.Troubleshooting(err)
		}
		fmt.Fprintln(r.output, NewFailureResult(r.config.Title+" failed", err, tips).SetWidth(r.width).Render())
		return err
	}

	result := NewSuccessResult(r.config.Title+" complete", details).SetWidth(r.width)
	result.AddDetail("Duration", duration.String())
	fmt.Fprintln(r.output, result.Render())
	return nil
}

func (r *StepRunner) onStep(stepNumber int, name string, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	if name != "" {
		r.progress.Steps[stepNumber-1].Name = name
	}
	r.progress.UpdateStep(stepNumber, status, message)

	line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
	if status == StepRunning {
		// overwritten when the step finishes
		fmt.Fprint(r.output, line+"\r")
		return
	}
	fmt.Fprintln(r.output, line)
}

// Printer writes single components for commands that need no progress.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer on w, or os.Stdout when w is nil.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Width returns the width components are rendered at
func (p *Printer) Width() int { return p.width }

func (p *Printer) Println(content string) {
	fmt.Fprintln(p.out, content)
}

func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Println("")
}

func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

func (p *Printer) PrintWarning(title string, details map[string]string) {
	p.Println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}
