package task

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRunPlaybook = "playbook:run"

type RunPlaybookPayload struct {
	TaskID string `json:"task_id"`
}

func NewRunPlaybookTask(taskID string) *asynq.Task {
	payload, _ := json.Marshal(RunPlaybookPayload{TaskID: taskID})
	return asynq.NewTask(TaskRunPlaybook, payload)
}

// DispatchID is the broker-side id of the deferred dispatch entry for a task.
// It is deterministic so re-registering the same task surfaces a conflict
// instead of a second entry.
func DispatchID(taskID string) string {
	return TaskRunPlaybook + ":" + taskID
}
