package task

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"playbook-controlplane/pkg/config"
	"playbook-controlplane/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const testQueue = "playbooks"

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

// fakeEnqueuer records every enqueue and fails per task id on demand. It is
// safe for concurrent use because recovery fans out over a task list.
type fakeEnqueuer struct {
	mu      sync.Mutex
	calls   []enqueued
	fail    map[string]error
	failAll error
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, enqueued{task: t, opts: opts})

	if f.failAll != nil {
		return nil, f.failAll
	}

	var payload RunPlaybookPayload
	if err := json.Unmarshal(t.Payload(), &payload); err == nil {
		if err, ok := f.fail[payload.TaskID]; ok {
			return nil, err
		}
	}

	return &asynq.TaskInfo{ID: DispatchID(payload.TaskID), Queue: testQueue}, nil
}

func (f *fakeEnqueuer) enqueuedTaskIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	for _, call := range f.calls {
		var payload RunPlaybookPayload
		if err := json.Unmarshal(call.task.Payload(), &payload); err == nil {
			ids = append(ids, payload.TaskID)
		}
	}
	return ids
}

// fakeInspector serves canned task info keyed by dispatch handle.
type fakeInspector struct {
	infos     map[string]*asynq.TaskInfo
	infoErr   error
	deleteErr error
	deleted   []string
}

func (f *fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	info, ok := f.infos[id]
	if !ok {
		return nil, asynq.ErrTaskNotFound
	}
	return info, nil
}

func (f *fakeInspector) DeleteTask(queue, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type runCall struct {
	playbook  string
	inventory string
	content   string
}

// fakeRunner records each invocation and snapshots the playbook file content
// at run time, since inline playbooks are deleted after the run.
type fakeRunner struct {
	rc    int
	err   error
	calls []runCall
	read  func(path string) string
}

func (f *fakeRunner) Run(ctx context.Context, playbook, inventory string) (int, error) {
	call := runCall{playbook: playbook, inventory: inventory}
	if f.read != nil {
		call.content = f.read(playbook)
	}
	f.calls = append(f.calls, call)
	return f.rc, f.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Worker.Queue = testQueue
	cfg.Worker.MaxRetry = 0
	return cfg
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewStore(StoreParams{
		DB:   testutil.NewTestDB(t, &Task{}),
		Node: node,
	})
}

func newTestScheduler(enq *fakeEnqueuer, insp *fakeInspector) *Scheduler {
	return NewScheduler(SchedulerParams{
		Enqueuer:  enq,
		Inspector: insp,
		Config:    testConfig(),
	})
}
