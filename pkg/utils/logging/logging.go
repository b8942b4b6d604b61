// Package logging builds the diagnostic logger used alongside notify output.
//
// Diagnostics go to stderr through logrus; every component logs with a
// "component" field so interleaved git and ansible activity stays readable.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// ErrInvalidLevel is returned for an unknown log level name.
var ErrInvalidLevel = errors.New("invalid log level")

// Setter mutates a logger during construction.
type Setter func(*logrus.Logger) error

// Level sets the minimum level by name.
func Level(name string) Setter {
	return func(logger *logrus.Logger) error {
		if name == "" {
			name = DefaultLevel
		}

		lvl, err := logrus.ParseLevel(name)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidLevel, name)
		}

		logger.SetLevel(lvl)

		return nil
	}
}

// Output sets the destination. A nil writer discards output.
func Output(out io.Writer) Setter {
	return func(logger *logrus.Logger) error {
		if out == nil {
			out = io.Discard
		}

		logger.SetOutput(out)

		return nil
	}
}

// New returns a text logger on stderr at DefaultLevel with the setters applied.
func New(setters ...Setter) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	err := Level(DefaultLevel)(logger)
	if err != nil {
		return nil, err
	}

	for _, setter := range setters {
		err = setter(logger)
		if err != nil {
			return nil, err
		}
	}

	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

// For returns a child logger tagged with component. A nil base yields a discarding logger.
func For(base logrus.FieldLogger, component string) logrus.FieldLogger {
	if base == nil {
		base = Discard()
	}

	return base.WithField("component", component)
}
