package task

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Recovery re-derives dispatch entries from the task store after a restart.
// Broker entries are not persisted alongside tasks, so this pass is the only
// way pending work survives a process restart. It must run exactly once per
// process lifetime: a second pass against a broker that lost its state would
// register duplicate entries.
type Recovery struct {
	store     *Store
	scheduler *Scheduler
}

type RecoveryParams struct {
	fx.In
	Store     *Store
	Scheduler *Scheduler
}

func NewRecovery(p RecoveryParams) *Recovery {
	return &Recovery{
		store:     p.Store,
		scheduler: p.Scheduler,
	}
}

// Restore schedules a dispatch entry for every task left in the store, using
// each task's stored run time. Entries the broker still knows about are
// skipped.
func (r *Recovery) Restore(ctx context.Context) error {
	tasks, err := r.store.List(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			_, err := r.scheduler.Schedule(ctx, t.ID, t.RunTime)
			if errors.Is(err, ErrAlreadyScheduled) {
				zap.L().Info("dispatch already registered, skipping",
					zap.String("task_id", t.ID),
				)
				return nil
			}
			if err != nil {
				zap.L().Error("failed to restore task dispatch",
					zap.String("task_id", t.ID),
					zap.Error(err),
				)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	zap.L().Info("recovery finished", zap.Int("tasks", len(tasks)))
	return nil
}
