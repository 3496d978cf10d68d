package task

import (
	"context"
	"errors"
	"time"

	"playbook-controlplane/pkg/config"
	"playbook-controlplane/pkg/queue"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrAlreadyScheduled reports that a dispatch entry for the task id is still
// registered with the broker, e.g. when recovery runs against a broker that
// kept its state across the restart.
var ErrAlreadyScheduled = errors.New("dispatch entry already registered")

// Inspector is the slice of asynq.Inspector the scheduler needs for
// cancellation.
type Inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
}

// Scheduler registers deferred-dispatch entries on the broker. Entries are
// ephemeral: they are not persisted with the Task and only recovery can
// re-derive them after a restart.
type Scheduler struct {
	enqueuer  queue.Enqueuer
	inspector Inspector
	queue     string
	maxRetry  int
}

type SchedulerParams struct {
	fx.In
	Enqueuer  queue.Enqueuer
	Inspector Inspector
	Config    *config.Config
}

func NewScheduler(p SchedulerParams) *Scheduler {
	return &Scheduler{
		enqueuer:  p.Enqueuer,
		inspector: p.Inspector,
		queue:     p.Config.Worker.Queue,
		maxRetry:  p.Config.Worker.MaxRetry,
	}
}

// Schedule registers a dispatch entry delivered no earlier than runTime; a
// runTime at or before now is delivered immediately. The returned handle is
// the only reference by which the pending dispatch can be cancelled. Delivery
// is at-least-once; consumers must tolerate duplicates.
func (s *Scheduler) Schedule(ctx context.Context, taskID string, runTime time.Time) (string, error) {
	handle := DispatchID(taskID)

	_, err := s.enqueuer.Enqueue(ctx, NewRunPlaybookTask(taskID),
		asynq.TaskID(handle),
		asynq.Queue(s.queue),
		asynq.ProcessAt(runTime),
		asynq.MaxRetry(s.maxRetry),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return handle, ErrAlreadyScheduled
		}
		return "", err
	}

	zap.L().Info("scheduled playbook dispatch",
		zap.String("task_id", taskID),
		zap.String("handle", handle),
		zap.Time("run_time", runTime),
	)
	return handle, nil
}

// Cancel removes a dispatch entry that has not yet been handed to a worker.
// It reports false once dispatch has begun or completed, or when no entry
// exists for the handle; only broker faults are returned as errors.
func (s *Scheduler) Cancel(ctx context.Context, handle string) (bool, error) {
	info, err := s.inspector.GetTaskInfo(s.queue, handle)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return false, nil
		}
		return false, err
	}

	switch info.State {
	case asynq.TaskStateScheduled, asynq.TaskStatePending, asynq.TaskStateRetry:
		if err := s.inspector.DeleteTask(s.queue, handle); err != nil {
			// Lost the race against dispatch.
			return false, nil
		}
		zap.L().Info("cancelled playbook dispatch", zap.String("handle", handle))
		return true, nil
	default:
		return false, nil
	}
}
