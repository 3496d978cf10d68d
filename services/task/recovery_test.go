package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestRestoreReschedulesAllTasks(t *testing.T) {
	enq := &fakeEnqueuer{}
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, &Task{PlaybookPath: "a.yml", Inventory: "i", RunTime: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	second, err := store.Create(ctx, &Task{PlaybookPath: "b.yml", Inventory: "i", RunTime: time.Now().Add(2 * time.Hour)})
	require.NoError(t, err)

	rec := NewRecovery(RecoveryParams{
		Store:     store,
		Scheduler: newTestScheduler(enq, &fakeInspector{}),
	})

	require.NoError(t, rec.Restore(ctx))
	require.ElementsMatch(t, []string{first, second}, enq.enqueuedTaskIDs())
}

func TestRestoreSkipsAlreadyRegisteredDispatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, &Task{PlaybookPath: "a.yml", Inventory: "i", RunTime: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	second, err := store.Create(ctx, &Task{PlaybookPath: "b.yml", Inventory: "i", RunTime: time.Now().Add(2 * time.Hour)})
	require.NoError(t, err)

	// The broker kept its state across the restart: one entry still exists.
	enq := &fakeEnqueuer{fail: map[string]error{first: asynq.ErrTaskIDConflict}}

	rec := NewRecovery(RecoveryParams{
		Store:     store,
		Scheduler: newTestScheduler(enq, &fakeInspector{}),
	})

	require.NoError(t, rec.Restore(ctx))
	require.ElementsMatch(t, []string{first, second}, enq.enqueuedTaskIDs())
}

func TestRestoreSurfacesBrokerFault(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, &Task{PlaybookPath: "a.yml", Inventory: "i", RunTime: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	enq := &fakeEnqueuer{failAll: errors.New("connection refused")}
	rec := NewRecovery(RecoveryParams{
		Store:     store,
		Scheduler: newTestScheduler(enq, &fakeInspector{}),
	})

	require.Error(t, rec.Restore(ctx))
}

func TestRestoreEmptyStore(t *testing.T) {
	rec := NewRecovery(RecoveryParams{
		Store:     newTestStore(t),
		Scheduler: newTestScheduler(&fakeEnqueuer{}, &fakeInspector{}),
	})

	require.NoError(t, rec.Restore(context.Background()))
}
