package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"playbook-controlplane/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Runner is the external automation-runner collaborator. Run blocks until the
// run finishes and returns the runner's exit status; zero means success.
// No timeout is enforced here.
type Runner interface {
	Run(ctx context.Context, playbook, inventory string) (int, error)
}

var Module = fx.Module("runner", fx.Provide(NewAnsibleRunner))

type ansibleRunner struct {
	binary    string
	verbosity int
}

func NewAnsibleRunner(cfg *config.Config) Runner {
	return &ansibleRunner{
		binary:    cfg.Runner.Binary,
		verbosity: cfg.Runner.Verbosity,
	}
}

func (r *ansibleRunner) Run(ctx context.Context, playbook, inventory string) (int, error) {
	args := []string{playbook, "-i", inventory}
	if r.verbosity > 0 {
		args = append(args, "-"+strings.Repeat("v", r.verbosity))
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)

	zap.L().Info("invoking runner",
		zap.String("binary", r.binary),
		zap.String("playbook", playbook),
		zap.String("inventory", inventory),
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			zap.L().Warn("runner exited non-zero",
				zap.Int("rc", exitErr.ExitCode()),
				zap.ByteString("output", out),
			)
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}

	return 0, nil
}
