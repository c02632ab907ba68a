// Package linear provides a synchronous, line-buffered renderer: every task
// line is prefixed with the task name and a timing summary closes the run.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/letterpress/internal/ui/output"
	"go.trai.ch/letterpress/internal/ui/style"
)

// summaryBarWidth is the width of the longest bar in the timing summary.
const summaryBarWidth = 30

// Renderer implements ports.Renderer for terminals and CI logs alike.
// It outputs linear, chronological logs with task name prefixes.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu       sync.Mutex
	tasks    map[string]*taskState // spanID -> task state
	buffers  map[string]*bytes.Buffer
	timings  []timing
	firstRun time.Time
	stopped  bool
}

type taskState struct {
	name      string
	startTime time.Time
}

type timing struct {
	name     string
	duration time.Duration
	failed   bool
}

// NewRenderer creates a new Renderer. Colors follow mode.
func NewRenderer(stdout, stderr io.Writer, mode output.Mode) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, func() termenv.Profile {
			return output.ProfileFor(mode)
		}),
		tasks:   make(map[string]*taskState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op for linear renderer (synchronous).
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all remaining buffers and prints the timing summary.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil
	}
	r.stopped = true

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}

	r.printSummaryLocked()
	return nil
}

// Wait is a no-op for linear renderer (synchronous).
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the planned tasks.
func (r *Renderer) OnPlanEmit(tasks []string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Running %d task(s) for %s\n", len(tasks), strings.Join(targets, ", "))
}

// OnTaskStart prints a task start message.
func (r *Renderer) OnTaskStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.firstRun.IsZero() {
		r.firstRun = startTime
	}
	r.tasks[spanID] = &taskState{
		name:      name,
		startTime: startTime,
	}
	r.buffers[spanID] = new(bytes.Buffer)

	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.prefix(name))
}

// OnTaskLog buffers log data and prints complete lines with task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		i := bytes.IndexByte(buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := buf.Next(i + 1)
		r.printLineLocked(task.name, line)
	}
}

// OnTaskComplete flushes remaining buffer and prints completion status.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)

	duration := endTime.Sub(task.startTime)
	prefix := r.prefix(task.name)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(r.output.Color(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, round(duration), err)
	} else {
		symbol := r.output.String(style.Check).Foreground(r.output.Color(string(style.Green))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, round(duration))
	}

	r.timings = append(r.timings, timing{name: task.name, duration: duration, failed: err != nil})

	delete(r.tasks, spanID)
	delete(r.buffers, spanID)
}

func (r *Renderer) prefix(name string) string {
	return r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
}

// flushBufferLocked flushes any remaining data in the buffer for a task.
// Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(task.name, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked prints a line with the task name prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(taskName string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", taskName, line)
}

// printSummaryLocked prints how long each task took, longest bar first
// scaled to summaryBarWidth.
// Must be called with r.mu held.
func (r *Renderer) printSummaryLocked() {
	if len(r.timings) == 0 {
		return
	}

	var total, longest time.Duration
	nameWidth := 0
	for _, t := range r.timings {
		total += t.duration
		longest = max(longest, t.duration)
		nameWidth = max(nameWidth, len(t.name))
	}

	_, _ = fmt.Fprintf(r.stderr, "\n%s\n", r.output.String("Execution Time").Bold().String())
	for _, t := range r.timings {
		bar := 0
		if longest > 0 {
			bar = max(1, int(int64(summaryBarWidth)*int64(t.duration)/int64(longest)))
		}
		pct := 0
		if total > 0 {
			pct = int(100 * int64(t.duration) / int64(total))
		}

		color := style.Teal
		if t.failed {
			color = style.Red
		}
		barStr := r.output.String(strings.Repeat("▇", bar)).Foreground(r.output.Color(string(color))).String()
		_, _ = fmt.Fprintf(r.stderr, "  %-*s  %8v  %s %d%%\n", nameWidth, t.name, round(t.duration), barStr, pct)
	}
	_, _ = fmt.Fprintf(r.stderr, "  %-*s  %8v\n", nameWidth, "Total", round(total))
}

func round(d time.Duration) time.Duration {
	if d < time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(10 * time.Millisecond)
}
