package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
)

// ErrUnresolved is returned when no source supplies a value.
var ErrUnresolved = errors.New("no value supplied")

// ErrInvalidAnswer makes AskUntil repeat the question.
var ErrInvalidAnswer = errors.New("invalid answer")

// Origin records which source supplied a resolved value.
type Origin string

const (
	// OriginFlag means the value came from a flag, the environment or a config file.
	OriginFlag Origin = "flag"
	// OriginPrompt means the user answered a question.
	OriginPrompt Origin = "prompt"
	// OriginDefault means the unattended default was used.
	OriginDefault Origin = "default"
)

// Source lists where a value may come from, in priority order: an explicit
// value, an interactive question, an unattended default.
type Source[T any] struct {
	// Name describes the value in errors.
	Name string
	// Value is used when IsSet.
	Value T
	IsSet bool
	// Ask is called only when Interactive.
	Ask         func(ctx context.Context) (T, error)
	Interactive bool
	// Default is used when HasDefault and nothing else applies.
	Default    T
	HasDefault bool
}

// Resolve picks the value of src according to its priority order.
func Resolve[T any](ctx context.Context, src Source[T]) (T, Origin, error) {
	if src.IsSet {
		return src.Value, OriginFlag, nil
	}

	if src.Interactive && src.Ask != nil {
		value, err := src.Ask(ctx)
		if err != nil {
			var zero T

			return zero, OriginPrompt, err
		}

		return value, OriginPrompt, nil
	}

	if src.HasDefault {
		return src.Default, OriginDefault, nil
	}

	var zero T

	return zero, "", fmt.Errorf("%w: %s", ErrUnresolved, src.Name)
}

// AskUntil asks question until parse accepts the answer. Answers rejected
// with ErrInvalidAnswer are reported on out and asked again; any other
// parse error ends the loop.
func AskUntil[T any](
	ctx context.Context,
	prompter Prompter,
	out io.Writer,
	question string,
	parse func(answer string) (T, error),
) (T, error) {
	for {
		answer, err := prompter.Ask(ctx, question)
		if err != nil {
			var zero T

			return zero, err
		}

		value, err := parse(answer)
		if err == nil {
			return value, nil
		}

		if !errors.Is(err, ErrInvalidAnswer) {
			var zero T

			return zero, err
		}

		notify.Warningf(out, "%v", err)
	}
}
