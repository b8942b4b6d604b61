// Package prompttest provides a scripted Prompter for tests.
package prompttest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoAnswer is returned when a question is asked after the script ran out.
var ErrNoAnswer = errors.New("no scripted answer")

// Prompter replays scripted answers and records every question.
type Prompter struct {
	mu        sync.Mutex
	answers   []string
	questions []string
	keys      []bool
	waits     []time.Duration
}

// New returns a Prompter answering with answers in order.
func New(answers ...string) *Prompter {
	return &Prompter{answers: answers}
}

// WithKeys scripts the outcomes of WaitForKey; once exhausted no key is pressed.
func (p *Prompter) WithKeys(pressed ...bool) *Prompter {
	p.keys = pressed

	return p
}

// Ask returns the next scripted answer.
func (p *Prompter) Ask(_ context.Context, question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.questions = append(p.questions, question)

	if len(p.answers) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoAnswer, question)
	}

	answer := p.answers[0]
	p.answers = p.answers[1:]

	return answer, nil
}

// WaitForKey returns the next scripted keypress outcome without sleeping.
func (p *Prompter) WaitForKey(_ context.Context, timeout time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.waits = append(p.waits, timeout)

	if len(p.keys) == 0 {
		return false, nil
	}

	pressed := p.keys[0]
	p.keys = p.keys[1:]

	return pressed, nil
}

// Questions returns every question asked so far.
func (p *Prompter) Questions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.questions...)
}

// Waits returns the timeout of every WaitForKey call.
func (p *Prompter) Waits() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]time.Duration(nil), p.waits...)
}

// Remaining returns the number of unused answers.
func (p *Prompter) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.answers)
}
