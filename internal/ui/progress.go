package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the state of one step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// Step is one line of a multi-step operation.
type Step struct {
	Number  int // 1-based
	Name    string
	Status  StepStatus
	Message string // optional note, e.g. "3 networks"
}

// Progress tracks a fixed list of steps and renders a bar over them.
type Progress struct {
	Label   string
	Steps   []Step
	Current int
	Total   int
	Percent float64
	Width   int
	bar     progress.Model
}

// NewProgress creates a progress display with totalSteps pending steps
func NewProgress(label string, totalSteps int) *Progress {
	steps := make([]Step, totalSteps)
	for i := range steps {
		steps[i] = Step{Number: i + 1, Status: StepPending}
	}
	p := &Progress{Label: label, Steps: steps, Total: totalSteps}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth resizes the bar to fit width
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	return p
}

// SetStepNames names the steps in order
func (p *Progress) SetStepNames(names []string) *Progress {
	for i, name := range names {
		if i < len(p.Steps) {
			p.Steps[i].Name = name
		}
	}
	return p
}

// UpdateStep sets a step's status. Out of range step numbers are ignored.
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	p.Steps[stepNumber-1].Status = status
	p.Steps[stepNumber-1].Message = message

	if status == StepRunning {
		p.Current = stepNumber
		return
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete || s.Status == StepSkipped {
			done++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(done) / float64(p.Total)
	}
}

func (p *Progress) StartStep(n int, message string)    { p.UpdateStep(n, StepRunning, message) }
func (p *Progress) CompleteStep(n int, message string) { p.UpdateStep(n, StepComplete, message) }
func (p *Progress) FailStep(n int, message string)     { p.UpdateStep(n, StepFailed, message) }

// Render returns the label, bar and step list
func (p *Progress) Render() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(p.Label))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(
		fmt.Sprintf("%s  %3.0f%%  [%d/%d]", p.bar.ViewAs(p.Percent), p.Percent*100, p.Current, p.Total)))
	b.WriteString("\n\n")

	lines := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		lines[i] = p.renderStepLine(step)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (p *Progress) renderStepLine(step Step) string {
	var (
		marker string
		style  lipgloss.Style
	)
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", step.Number, p.Total)
	b.WriteString(style.Render(step.Name))

	// align markers in one column
	padding := 40 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// StepCallback reports progress on one step. An empty name keeps the
// step's current name.
type StepCallback func(stepNumber int, name string, status StepStatus, message string)
