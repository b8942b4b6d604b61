// Package prompt reads answers and keypresses from the user's terminal.
package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"golang.org/x/term"
)

// ErrInputClosed is returned when input ends before an answer is complete.
var ErrInputClosed = errors.New("input closed")

// Prompter asks questions and waits for keypresses.
type Prompter interface {
	// Ask prints question and returns the next line of input without its line ending.
	Ask(ctx context.Context, question string) (string, error)
	// WaitForKey waits up to timeout for any input and reports whether some arrived.
	WaitForKey(ctx context.Context, timeout time.Duration) (bool, error)
}

const readChunkSize = 256

type chunk struct {
	data []byte
	err  error
}

// TerminalPrompter reads from a single input stream shared by all prompts.
// One goroutine owns the reader and reads only while a prompt waits, so
// child processes own the terminal between prompts. File inputs are read
// only once poll reports them readable, which lets a timed-out or cancelled
// wait withdraw its read. Other readers cannot be interrupted; their input
// arriving after such a wait is kept for the next prompt.
type TerminalPrompter struct {
	in  io.Reader
	out io.Writer

	fd       uintptr
	pollable bool

	startOnce sync.Once
	wants     chan chan struct{}
	chunks    chan chunk
	done      chan struct{}
	reading   bool
	pending   []byte
	closed    error

	makeRaw func(fd int) (*term.State, error)
	restore func(fd int, state *term.State) error
}

// NewTerminalPrompter prompts on out and reads from in. Nil streams default
// to the process's stdin and stdout.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	prompter := &TerminalPrompter{
		in:      in,
		out:     out,
		makeRaw: term.MakeRaw,
		restore: term.Restore,
	}

	if file, ok := in.(*os.File); ok && canPoll {
		prompter.fd = file.Fd()
		prompter.pollable = true
	}

	return prompter
}

// Ask implements Prompter.
func (p *TerminalPrompter) Ask(ctx context.Context, question string) (string, error) {
	notify.Promptf(p.out, "%s", question)

	for {
		if idx := bytes.IndexByte(p.pending, '\n'); idx >= 0 {
			line := p.pending[:idx]
			p.pending = p.pending[idx+1:]

			return string(bytes.TrimRight(line, "\r")), nil
		}

		if p.closed != nil {
			if len(p.pending) > 0 {
				line := string(bytes.TrimRight(p.pending, "\r"))
				p.pending = nil

				return line, nil
			}

			return "", p.closed
		}

		err := p.receive(ctx, nil)
		if err != nil {
			return "", err
		}
	}
}

// WaitForKey implements Prompter. On a terminal the wait happens in raw
// mode so a single keypress is enough; elsewhere a full line is needed.
func (p *TerminalPrompter) WaitForKey(ctx context.Context, timeout time.Duration) (bool, error) {
	if len(p.pending) > 0 {
		p.pending = nil

		return true, nil
	}

	if p.closed != nil {
		return false, nil
	}

	if file, ok := p.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		state, err := p.makeRaw(int(file.Fd()))
		if err == nil {
			defer func() { _ = p.restore(int(file.Fd()), state) }()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	err := p.receive(ctx, timer.C)
	if err != nil && !errors.Is(err, errTimedOut) {
		return false, err
	}

	got := len(p.pending) > 0
	p.pending = nil

	return got, nil
}

var (
	errTimedOut  = errors.New("timed out")
	errAbandoned = errors.New("read abandoned")
)

// receive appends the next chunk of input to pending.
func (p *TerminalPrompter) receive(ctx context.Context, deadline <-chan time.Time) error {
	p.startOnce.Do(p.startPump)

	if !p.reading {
		p.done = make(chan struct{})
		p.wants <- p.done
		p.reading = true
	}

	select {
	case <-ctx.Done():
		p.abandon()

		return fmt.Errorf("waiting for input: %w", ctx.Err())
	case <-deadline:
		p.abandon()

		return errTimedOut
	case next, ok := <-p.chunks:
		p.absorb(next, ok)

		return nil
	}
}

// abandon withdraws the outstanding read when the input can be polled.
// Anything read before the withdrawal lands in pending.
func (p *TerminalPrompter) abandon() {
	if !p.pollable || !p.reading {
		return
	}

	close(p.done)

	next, ok := <-p.chunks
	p.absorb(next, ok)
}

func (p *TerminalPrompter) absorb(next chunk, ok bool) {
	p.reading = false

	if !ok {
		p.closed = ErrInputClosed

		return
	}

	p.pending = append(p.pending, next.data...)
	if next.err != nil && !errors.Is(next.err, errAbandoned) {
		p.closed = fmt.Errorf("%w: %w", ErrInputClosed, next.err)
	}
}

func (p *TerminalPrompter) startPump() {
	p.wants = make(chan chan struct{}, 1)
	p.chunks = make(chan chunk)

	go func() {
		defer close(p.chunks)

		buf := make([]byte, readChunkSize)

		for done := range p.wants {
			n, err := p.read(done, buf)
			p.chunks <- chunk{data: append([]byte(nil), buf[:n]...), err: err}

			if err != nil && !errors.Is(err, errAbandoned) {
				return
			}
		}
	}()
}

// read blocks in Read only once a pollable input is readable, checking
// done between polls.
func (p *TerminalPrompter) read(done <-chan struct{}, buf []byte) (int, error) {
	for p.pollable {
		ready, err := readable(p.fd)
		if err != nil {
			return 0, err
		}

		if ready {
			break
		}

		select {
		case <-done:
			return 0, errAbandoned
		default:
		}
	}

	return p.in.Read(buf)
}
