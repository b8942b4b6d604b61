package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/client/probe"
	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
	"github.com/bacalhau-project/bacboot/pkg/svc/bootstraperr"
	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
)

// WorkloadBinary is the program the install flow deploys.
const WorkloadBinary = "bacalhau"

// Verifier checks that the workload is installed and answers.
type Verifier struct {
	prober probe.Prober
	runner runner.CommandRunner
	out    io.Writer
}

// NewVerifier creates a Verifier.
func NewVerifier(prober probe.Prober, cmdRunner runner.CommandRunner, out io.Writer) *Verifier {
	if out == nil {
		out = io.Discard
	}

	return &Verifier{prober: prober, runner: cmdRunner, out: out}
}

// Verify reports the installed client version.
func (v *Verifier) Verify(ctx context.Context) error {
	notify.Titlef(v.out, "🔬", "Verifying Bacalhau")

	if !v.prober.IsInstalled(WorkloadBinary) {
		return fmt.Errorf("%w: %s is not installed", bootstraperr.ErrVerificationFailed, WorkloadBinary)
	}

	result, err := v.runner.Run(ctx, runner.Command{Name: WorkloadBinary, Args: []string{"version"}})
	if err != nil {
		return fmt.Errorf("%w: %w", bootstraperr.ErrVerificationFailed, err)
	}

	version := strings.TrimSpace(result.Stdout)
	if version == "" {
		version = result.Output()
	}

	notify.Successf(v.out, "%s", version)

	return nil
}
