package tui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StepStatus represents the state of a progress step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepError
)

// ProgressStep represents a single step in the progress
type ProgressStep struct {
	Name    string
	Status  StepStatus
	Unit    string // "bytes" for downloads, otherwise a counted noun like "cues"
	Total   int64
	Current int64
	Error   string
}

// ProgressDisplay manages multi-step progress output on stderr so that
// results printed to stdout stay pipeable
type ProgressDisplay struct {
	steps      []ProgressStep
	spinnerIdx int
	quiet      bool
	out        io.Writer
	mu         sync.Mutex
	lastRender time.Time
	rendered   bool
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(steps []string, quiet bool) *ProgressDisplay {
	pd := &ProgressDisplay{
		steps: make([]ProgressStep, len(steps)),
		quiet: quiet,
		out:   os.Stderr,
	}
	for i, name := range steps {
		pd.steps[i] = ProgressStep{Name: name, Status: StepPending}
	}
	return pd
}

// StartStep marks a step as running
func (p *ProgressDisplay) StartStep(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index >= 0 && index < len(p.steps) && p.steps[index].Status == StepPending {
		p.steps[index].Status = StepRunning
		p.render()
	}
}

// CompleteStep marks a step as complete
func (p *ProgressDisplay) CompleteStep(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index >= 0 && index < len(p.steps) {
		p.steps[index].Status = StepComplete
		p.render()
	}
}

// FailStep marks a step as failed
func (p *ProgressDisplay) FailStep(index int, err string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index >= 0 && index < len(p.steps) {
		p.steps[index].Status = StepError
		p.steps[index].Error = err
		p.render()
	}
}

// FailRunning marks whichever step is running as failed
func (p *ProgressDisplay) FailRunning(err string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.steps {
		if p.steps[i].Status == StepRunning {
			p.steps[i].Status = StepError
			p.steps[i].Error = err
		}
	}
	p.render()
}

// UpdateProgress updates download progress for a step
func (p *ProgressDisplay) UpdateProgress(index int, current, total int64) {
	p.update(index, "bytes", current, total)
}

// UpdateCount updates a counted step, e.g. translated cues
func (p *ProgressDisplay) UpdateCount(index int, unit string, current, total int) {
	p.update(index, unit, int64(current), int64(total))
}

func (p *ProgressDisplay) update(index int, unit string, current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index >= 0 && index < len(p.steps) {
		p.steps[index].Unit = unit
		p.steps[index].Current = current
		p.steps[index].Total = total
		// Throttle renders to avoid flickering
		if time.Since(p.lastRender) > 100*time.Millisecond || current >= total {
			p.render()
		}
	}
}

// Tick advances the spinner animation
func (p *ProgressDisplay) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.spinnerIdx = (p.spinnerIdx + 1) % len(spinnerFrames)
	p.render()
}

func (s ProgressStep) detail(spinner string) string {
	if s.Total <= 0 {
		return spinner
	}
	if s.Unit == "bytes" {
		pct := float64(s.Current) / float64(s.Total) * 100
		return fmt.Sprintf("%.1f%% (%s / %s)", pct, FormatSize(s.Current), FormatSize(s.Total))
	}
	return fmt.Sprintf("%s %d/%d %s", spinner, s.Current, s.Total, s.Unit)
}

func (p *ProgressDisplay) render() {
	if p.quiet {
		return
	}

	p.lastRender = time.Now()

	// Move cursor up over the previous frame and clear it
	if p.rendered {
		fmt.Fprintf(p.out, "\033[%dA", len(p.steps))
		fmt.Fprint(p.out, "\033[J")
	}

	total := len(p.steps)
	for i, step := range p.steps {
		stepNum := fmt.Sprintf("[%d/%d]", i+1, total)

		var status string
		switch step.Status {
		case StepPending:
			status = " "
		case StepRunning:
			status = step.detail(spinnerFrames[p.spinnerIdx])
		case StepComplete:
			status = checkedStyle.Render("✓")
		case StepError:
			status = errorStyle.Render("✗ " + step.Error)
		}

		fmt.Fprintf(p.out, "%s %s... %s\n", stepNum, step.Name, status)
	}

	p.rendered = true
}

// Output is one file written by a run
type Output struct {
	Label string
	Path  string
}

// Complete prints the final success message
func (p *ProgressDisplay) Complete(outputs []Output) {
	if p.quiet {
		return
	}

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, checkedStyle.Render("✓ Complete!"))
	for _, o := range outputs {
		fmt.Fprintf(p.out, "  %s: %s\n", o.Label, o.Path)
	}
}

// StartSpinner starts a goroutine that ticks the spinner
func (p *ProgressDisplay) StartSpinner() chan struct{} {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.Tick()
			}
		}
	}()
	return done
}
