package task

import (
	"context"
	"encoding/json"
	"time"

	"playbook-controlplane/pkg/errutil"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Service is the submission path: it persists a task first, then registers
// the dispatch entry keyed by the store-assigned id. Each call completes a
// full store round-trip before returning; concurrent submissions create
// distinct rows and never interleave.
type Service struct {
	store     *Store
	scheduler *Scheduler
}

type ServiceParams struct {
	fx.In
	Store     *Store
	Scheduler *Scheduler
}

func NewService(p ServiceParams) *Service {
	return &Service{
		store:     p.Store,
		scheduler: p.Scheduler,
	}
}

type SubmitRequest struct {
	PlaybookPath       string                 `json:"playbook_path"`
	Inventory          string                 `json:"inventory" binding:"required"`
	RunTime            time.Time              `json:"run_time" binding:"required"`
	PlaybookContent    string                 `json:"playbook_content"`
	IsGenerated        bool                   `json:"is_generated"`
	GenerationMetadata map[string]interface{} `json:"generation_metadata"`
	SafetyValidated    bool                   `json:"safety_validated"`
	ValidationErrors   []string               `json:"validation_errors"`
}

// Submit persists and schedules a task, returning the stored record and the
// dispatch handle. Scheduling is fire-and-forget: the caller does not block
// until the run time elapses.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Task, string, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if req.PlaybookPath == "" && req.PlaybookContent == "" {
		return nil, "", errutil.BadRequest("either playbook_path or playbook_content is required")
	}

	record := &Task{
		PlaybookPath:    req.PlaybookPath,
		Inventory:       req.Inventory,
		RunTime:         req.RunTime,
		PlaybookContent: req.PlaybookContent,
		IsGenerated:     req.IsGenerated,
		SafetyValidated: req.SafetyValidated,
	}

	if req.GenerationMetadata != nil {
		raw, err := json.Marshal(req.GenerationMetadata)
		if err != nil {
			return nil, "", errutil.BadRequest("invalid generation metadata", errutil.WithErr(err))
		}
		record.GenerationMetadata = datatypes.JSON(raw)
	}
	if req.ValidationErrors != nil {
		raw, err := json.Marshal(req.ValidationErrors)
		if err != nil {
			return nil, "", errutil.BadRequest("invalid validation errors", errutil.WithErr(err))
		}
		record.ValidationErrors = datatypes.JSON(raw)
	}

	id, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, "", err
	}

	handle, err := s.scheduler.Schedule(ctx, id, req.RunTime)
	if err != nil {
		// The row stays behind; the next recovery pass re-registers it.
		zap.L().Error("task persisted but scheduling failed",
			zap.String("task_id", id),
			zap.Error(err),
		)
		return nil, "", errutil.Internal("failed to schedule task", errutil.WithErr(err))
	}

	zap.L().Info("task submitted",
		zap.String("task_id", id),
		zap.String("playbook", record.PlaybookPath),
		zap.Time("run_time", req.RunTime),
	)
	return record, handle, nil
}

// Cancel revokes the pending dispatch for a task. Once dispatch has begun or
// completed it reports not-cancellable; it never fails on an unknown id.
func (s *Service) Cancel(ctx context.Context, taskID string) error {
	ok, err := s.scheduler.Cancel(ctx, DispatchID(taskID))
	if err != nil {
		return errutil.Internal("failed to cancel task", errutil.WithErr(err))
	}
	if !ok {
		return errutil.NotCancellable("task " + taskID + " cannot be cancelled")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*Task, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.store.Get(ctx, id)
}
