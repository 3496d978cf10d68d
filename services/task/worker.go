package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"playbook-controlplane/pkg/config"
	"playbook-controlplane/pkg/errutil"
	"playbook-controlplane/services/runner"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker consumes playbook dispatch entries. Delivery is at-least-once, so
// the handler is idempotent by absence: a missing task row means another
// worker already retired it.
type Worker struct {
	store   *Store
	runner  runner.Runner
	dataDir string
}

type WorkerParams struct {
	fx.In
	Store  *Store
	Runner runner.Runner
	Config *config.Config
}

func NewWorker(p WorkerParams) *Worker {
	return &Worker{
		store:   p.Store,
		runner:  p.Runner,
		dataDir: p.Config.Worker.PrivateDataDir,
	}
}

func (w *Worker) HandleRunPlaybook(ctx context.Context, t *asynq.Task) error {
	var payload RunPlaybookPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		zap.L().Error("invalid run payload", zap.Error(err))
		return fmt.Errorf("invalid run payload: %v: %w", err, asynq.SkipRetry)
	}

	record, err := w.store.Get(ctx, payload.TaskID)
	if err != nil {
		var base errutil.BaseError
		if errors.As(err, &base) && base.Code == errutil.StatusNotFound {
			zap.L().Info("task already handled", zap.String("task_id", payload.TaskID))
			return nil
		}
		// Storage fault: leave the entry for redelivery.
		return err
	}

	playbook, cleanup, err := w.materialize(record)
	if err != nil {
		return err
	}
	defer cleanup()

	zap.L().Info("playbook started",
		zap.String("task_id", record.ID),
		zap.String("playbook", record.PlaybookPath),
		zap.String("inventory", record.Inventory),
	)

	rc, runErr := w.runner.Run(ctx, playbook, record.Inventory)
	failed := runErr != nil || rc != 0

	if failed && !w.finalAttempt(ctx) {
		zap.L().Warn("playbook run failed, leaving task for retry",
			zap.String("task_id", record.ID),
			zap.Int("rc", rc),
			zap.Error(runErr),
		)
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("playbook %s exited with status %d", record.PlaybookPath, rc)
	}

	// Terminal outcome either way: the store holds only pending work.
	if err := w.store.Delete(ctx, record.ID); err != nil {
		zap.L().Error("failed to retire task", zap.String("task_id", record.ID), zap.Error(err))
		return err
	}

	if failed {
		zap.L().Warn("playbook run failed",
			zap.String("task_id", record.ID),
			zap.String("playbook", record.PlaybookPath),
			zap.Int("rc", rc),
			zap.Time("finished_at", time.Now()),
			zap.Error(runErr),
		)
	} else {
		zap.L().Info("playbook run succeeded",
			zap.String("task_id", record.ID),
			zap.String("playbook", record.PlaybookPath),
			zap.Time("finished_at", time.Now()),
		)
	}

	return nil
}

// materialize resolves the playbook reference to something the runner can
// execute. Inline content is written to a scratch file for the duration of
// the run.
func (w *Worker) materialize(record *Task) (string, func(), error) {
	if record.PlaybookContent == "" {
		return record.PlaybookPath, func() {}, nil
	}

	f, err := os.CreateTemp(w.dataDir, "playbook-*.yml")
	if err != nil {
		return "", nil, fmt.Errorf("failed to write inline playbook: %w", err)
	}
	if _, err := f.WriteString(record.PlaybookContent); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to write inline playbook: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, err
	}

	path := filepath.Clean(f.Name())
	return path, func() { os.Remove(path) }, nil
}

func (w *Worker) finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}
