package generate

import (
	"context"
	"fmt"
	"time"

	"playbook-controlplane/pkg/config"
	"playbook-controlplane/services/safety"
	"playbook-controlplane/services/task"
	"playbook-controlplane/services/template"

	"github.com/gosimple/slug"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service synthesizes playbook content from a natural-language request (or a
// stored template) and gates it behind the safety validator before anything
// is persisted or scheduled.
type Service struct {
	provider     Provider
	tasks        *task.Service
	templates    *template.Service
	defaultLevel safety.Level
}

type ServiceParams struct {
	fx.In
	Provider  Provider
	Tasks     *task.Service
	Templates *template.Service
	Config    *config.Config
}

func NewService(p ServiceParams) *Service {
	level := safety.Level(p.Config.LLM.SafetyLevel)
	if !level.Valid() {
		level = safety.Medium
	}
	return &Service{
		provider:     p.Provider,
		tasks:        p.Tasks,
		templates:    p.Templates,
		defaultLevel: level,
	}
}

type Request struct {
	Description       string                 `json:"description" binding:"required"`
	Hosts             string                 `json:"hosts"`
	Inventory         string                 `json:"inventory" binding:"required"`
	RunTime           time.Time              `json:"run_time" binding:"required"`
	AdditionalContext string                 `json:"additional_context"`
	TemplateID        string                 `json:"template_id"`
	Variables         map[string]interface{} `json:"variables"`
	SafetyLevel       string                 `json:"safety_level"`
	DryRun            bool                   `json:"dry_run"`
}

// Result is returned for both successful and failed generations so warnings
// and the partial safety score always reach the caller.
type Result struct {
	Success            bool                   `json:"success"`
	TaskID             string                 `json:"task_id,omitempty"`
	PlaybookContent    string                 `json:"playbook_content,omitempty"`
	Errors             []string               `json:"errors"`
	Warnings           []string               `json:"warnings"`
	SafetyScore        float64                `json:"safety_score"`
	GenerationMetadata map[string]interface{} `json:"generation_metadata,omitempty"`
}

// Generate produces playbook content, validates it, and unless the request is
// a dry run persists and schedules it. Content that fails validation is never
// persisted. Provider faults yield a failed-generation result, not a retry.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	level := safety.Level(req.SafetyLevel)
	if !level.Valid() {
		level = s.defaultLevel
	}

	content, metadata, err := s.produce(ctx, req)
	if err != nil {
		zap.L().Error("playbook generation failed", zap.Error(err))
		return &Result{
			Success:            false,
			Errors:             []string{fmt.Sprintf("Generation failed: %v", err)},
			Warnings:           []string{},
			SafetyScore:        0,
			GenerationMetadata: metadata,
		}, nil
	}

	validation := safety.Validate(content, level)
	res := &Result{
		Success:            validation.IsValid,
		PlaybookContent:    content,
		Errors:             validation.Errors,
		Warnings:           validation.Warnings,
		SafetyScore:        validation.Score,
		GenerationMetadata: metadata,
	}

	if !validation.IsValid {
		zap.L().Warn("generated playbook rejected by safety validation",
			zap.Float64("score", validation.Score),
			zap.Strings("errors", validation.Errors),
		)
		return res, nil
	}

	if req.DryRun {
		return res, nil
	}

	record, _, err := s.tasks.Submit(ctx, task.SubmitRequest{
		PlaybookPath:       fmt.Sprintf("generated/%s.yml", slug.Make(req.Description)),
		Inventory:          req.Inventory,
		RunTime:            req.RunTime,
		PlaybookContent:    content,
		IsGenerated:        true,
		GenerationMetadata: metadata,
		SafetyValidated:    true,
		ValidationErrors:   []string{},
	})
	if err != nil {
		return nil, err
	}

	res.TaskID = record.ID
	return res, nil
}

// produce yields the candidate content: a template rendering when the request
// names one, otherwise a provider completion.
func (s *Service) produce(ctx context.Context, req Request) (string, map[string]interface{}, error) {
	if req.TemplateID != "" {
		validation, err := s.templates.ValidateVariables(ctx, req.TemplateID, req.Variables)
		if err != nil {
			return "", nil, err
		}
		if !validation.Valid {
			return "", nil, fmt.Errorf("template variables invalid: %v", validation.Errors)
		}

		content, err := s.templates.Render(ctx, req.TemplateID, req.Variables)
		if err != nil {
			return "", nil, err
		}

		return content, map[string]interface{}{
			"provider":    "template",
			"template_id": req.TemplateID,
			"timestamp":   time.Now().Format(time.RFC3339),
			"request":     req,
		}, nil
	}

	metadata := map[string]interface{}{
		"provider":  s.provider.Name(),
		"timestamp": time.Now().Format(time.RFC3339),
		"request":   req,
	}

	raw, err := s.provider.Complete(ctx, buildPrompt(req.Description, req.Hosts, req.AdditionalContext))
	if err != nil {
		return "", metadata, err
	}

	return extractYAML(raw), metadata, nil
}
