// Package main is the entry point for bacboot.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/bacalhau-project/bacboot/internal/buildmeta"
	"github.com/bacalhau-project/bacboot/pkg/cli/cmd"
	"github.com/bacalhau-project/bacboot/pkg/cli/ui/errorhandler"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
)

func main() {
	exitCode := runSafely(os.Args[1:], runWithArgs, os.Stderr)

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

//nolint:nonamedreturns // Named return simplifies panic recovery logic.
func runSafely(args []string, runner func([]string) int, errWriter io.Writer) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			panicMessage := fmt.Sprintf("panic recovered: %v\n%s", r, debug.Stack())
			notify.WriteMessage(notify.Message{
				Type:    notify.ErrorType,
				Content: panicMessage,
				Writer:  errWriter,
			})

			exitCode = 1
		}
	}()

	exitCode = runner(args)

	return exitCode
}

func runWithArgs(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd(buildmeta.Version, buildmeta.Commit, buildmeta.Date)
	rootCmd.SetArgs(args)
	rootCmd.SetContext(ctx)

	return report(cmd.Execute(rootCmd), rootCmd.ErrOrStderr())
}

// report prints a failure and maps it to the process exit code.
func report(err error, errWriter io.Writer) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, bootstraperr.ErrQuit) {
		return 1
	}

	var cmdErr *errorhandler.CommandError
	if errors.As(err, &cmdErr) {
		notify.Errorf(errWriter, "%s", cmdErr.Error())

		if hint := cmdErr.Hint(); hint != "" {
			notify.Infof(errWriter, "%s", hint)
		}

		return 1
	}

	notify.Errorf(errWriter, "%v", err)

	return 1
}
