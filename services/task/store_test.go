package task

import (
	"context"
	"testing"
	"time"

	"playbook-controlplane/pkg/errutil"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateAssignsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &Task{
		ID:           "caller-supplied",
		PlaybookPath: "deploy.yml",
		Inventory:    "hosts.ini",
		RunTime:      time.Now().Add(time.Hour),
	}

	id, err := store.Create(ctx, record)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.NotEqual(t, "caller-supplied", id)
	require.Equal(t, id, record.ID)
}

func TestStoreCreateSyntheticPathForInlineContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &Task{
		Inventory:       "hosts.ini",
		RunTime:         time.Now().Add(time.Hour),
		PlaybookContent: "---\n- hosts: all\n  tasks: []\n",
	}

	id, err := store.Create(ctx, record)
	require.NoError(t, err)
	require.Equal(t, "generated/"+id+".yml", record.PlaybookPath)
}

func TestStoreGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runTime := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	id, err := store.Create(ctx, &Task{
		PlaybookPath: "deploy.yml",
		Inventory:    "hosts.ini",
		RunTime:      runTime,
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "deploy.yml", got.PlaybookPath)
	require.Equal(t, "hosts.ini", got.Inventory)
	require.True(t, got.RunTime.Equal(runTime))
}

func TestStoreGetUnknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusNotFound, base.Code)
}

func TestStoreListOrdersByRunTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)

	late, err := store.Create(ctx, &Task{PlaybookPath: "late.yml", Inventory: "i", RunTime: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	early, err := store.Create(ctx, &Task{PlaybookPath: "early.yml", Inventory: "i", RunTime: base.Add(time.Hour)})
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, early, list[0].ID)
	require.Equal(t, late, list[1].ID)
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &Task{PlaybookPath: "deploy.yml", Inventory: "i", RunTime: time.Now()})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	require.Error(t, err)

	// Deleting an id that is already gone is not an error.
	require.NoError(t, store.Delete(ctx, id))
}
