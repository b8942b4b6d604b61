package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bacalhau-project/bacboot/pkg/utils/timer"
	fcolor "github.com/fatih/color"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// ProgressLabels are the status words printed for each task state.
type ProgressLabels struct {
	Running   string
	Completed string
	Failed    string
}

// ValidatingLabels suit read-only checks.
func ValidatingLabels() ProgressLabels {
	return ProgressLabels{Running: "checking", Completed: "found", Failed: "missing"}
}

// InstallingLabels suit installation tasks.
func InstallingLabels() ProgressLabels {
	return ProgressLabels{Running: "installing", Completed: "installed", Failed: "failed"}
}

// ProgressTask is a named unit of work run by a ProgressGroup.
type ProgressTask struct {
	Name string
	Fn   func(ctx context.Context) error
}

// ProgressOption configures a ProgressGroup.
type ProgressOption func(*ProgressGroup)

// WithLabels overrides the status words.
func WithLabels(labels ProgressLabels) ProgressOption {
	return func(pg *ProgressGroup) { pg.labels = labels }
}

// WithTimer prints stage timing after all tasks succeed.
func WithTimer(tmr timer.Timer) ProgressOption {
	return func(pg *ProgressGroup) { pg.timer = tmr }
}

// ProgressGroup runs tasks in parallel and reports each task's outcome.
//
// On a terminal the task block is redrawn in place as states change;
// elsewhere one line is printed per finished task.
type ProgressGroup struct {
	title  string
	emoji  string
	writer io.Writer
	labels ProgressLabels
	timer  timer.Timer
	isTTY  bool

	mu     sync.Mutex
	names  []string
	states map[string]string
	drawn  int
}

// NewProgressGroup creates a group writing to writer (os.Stdout when nil).
func NewProgressGroup(title, emoji string, writer io.Writer, opts ...ProgressOption) *ProgressGroup {
	if writer == nil {
		writer = os.Stdout
	}

	if emoji == "" {
		emoji = "🔎"
	}

	isTTY := false
	if file, ok := writer.(*os.File); ok {
		isTTY = term.IsTerminal(int(file.Fd()))
	}

	pg := &ProgressGroup{
		title:  title,
		emoji:  emoji,
		writer: writer,
		labels: ValidatingLabels(),
		isTTY:  isTTY,
		states: map[string]string{},
	}

	for _, opt := range opts {
		opt(pg)
	}

	return pg
}

// Run executes every task and returns the joined failure, if any.
// Unlike a fail-fast group, one failing task does not cancel the others.
func (pg *ProgressGroup) Run(ctx context.Context, tasks ...ProgressTask) error {
	if len(tasks) == 0 {
		return nil
	}

	if pg.timer != nil {
		pg.timer.NewStage()
	}

	_, _ = fmt.Fprintf(pg.writer, "%s %s...\n", pg.emoji, pg.title)

	for _, task := range tasks {
		pg.names = append(pg.names, task.Name)
		pg.states[task.Name] = pg.labels.Running
	}

	pg.draw()

	var group errgroup.Group

	failures := make([]error, len(tasks))

	for idx, task := range tasks {
		group.Go(func() error {
			err := task.Fn(ctx)
			if err != nil {
				failures[idx] = fmt.Errorf("%s: %w", task.Name, err)
			}

			pg.finish(task.Name, err == nil)

			return nil
		})
	}

	_ = group.Wait()

	err := errors.Join(failures...)
	if err == nil && pg.timer != nil {
		total, stage := pg.timer.GetTiming()
		_, _ = fcolor.New(fcolor.FgGreen).Fprintf(pg.writer, "⏲ current: %s\n  total:  %s\n", stage, total)
	}

	return err
}

func (pg *ProgressGroup) finish(name string, ok bool) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if ok {
		pg.states[name] = pg.labels.Completed
	} else {
		pg.states[name] = pg.labels.Failed
	}

	if pg.isTTY {
		pg.redrawLocked()

		return
	}

	_, _ = fmt.Fprintln(pg.writer, pg.lineLocked(name))
}

func (pg *ProgressGroup) draw() {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if !pg.isTTY {
		return
	}

	for _, name := range pg.names {
		_, _ = fmt.Fprintln(pg.writer, pg.lineLocked(name))
	}

	pg.drawn = len(pg.names)
}

func (pg *ProgressGroup) redrawLocked() {
	_, _ = fmt.Fprintf(pg.writer, "\033[%dA", pg.drawn)

	for _, name := range pg.names {
		_, _ = fmt.Fprintf(pg.writer, "\033[K%s\n", pg.lineLocked(name))
	}
}

func (pg *ProgressGroup) lineLocked(name string) string {
	state := pg.states[name]

	switch state {
	case pg.labels.Completed:
		return fcolor.New(fcolor.FgGreen).Sprintf("✔ %s %s", name, state)
	case pg.labels.Failed:
		return fcolor.New(fcolor.FgRed).Sprintf("✗ %s %s", name, state)
	default:
		return fcolor.New(fcolor.FgCyan).Sprintf("► %s %s", name, state)
	}
}
