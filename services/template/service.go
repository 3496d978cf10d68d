package template

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	texttemplate "text/template"

	"playbook-controlplane/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
	}
}

type CreateRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	TemplateContent string          `json:"template_content" binding:"required"`
	VariablesSchema *VariableSchema `json:"variables_schema"`
}

type UpdateRequest struct {
	Name            *string         `json:"name"`
	Description     *string         `json:"description"`
	TemplateContent *string         `json:"template_content"`
	VariablesSchema *VariableSchema `json:"variables_schema"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Template, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	tpl := Template{
		ID:              s.node.Generate().String(),
		Name:            req.Name,
		Description:     req.Description,
		TemplateContent: req.TemplateContent,
		Status:          Active,
	}

	if req.VariablesSchema != nil {
		raw, err := json.Marshal(req.VariablesSchema)
		if err != nil {
			return nil, errutil.BadRequest("invalid variables schema", errutil.WithErr(err))
		}
		tpl.VariablesSchema = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(&tpl).Error; err != nil {
		zap.L().Error("failed to create template", zap.Error(err), zap.String("name", req.Name))
		return nil, errutil.Storage("failed to create template", errutil.WithErr(err))
	}

	zap.L().Info("created template", zap.String("template_id", tpl.ID), zap.String("name", tpl.Name))
	return &tpl, nil
}

// Get returns the active template for id. Retired templates are invisible.
func (s *Service) Get(ctx context.Context, id string) (*Template, error) {
	var tpl Template
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, Active).
		First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("template not found")
		}
		return nil, errutil.Storage("failed to get template", errutil.WithErr(err))
	}
	return &tpl, nil
}

func (s *Service) List(ctx context.Context) ([]*Template, error) {
	var tpls []*Template
	err := s.db.WithContext(ctx).
		Where("status = ?", Active).
		Order("created_at ASC").
		Find(&tpls).Error
	if err != nil {
		return nil, errutil.Storage("failed to list templates", errutil.WithErr(err))
	}
	return tpls, nil
}

// Update applies a field-level patch to an active template.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Template, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.TemplateContent != nil {
		patch["template_content"] = *req.TemplateContent
	}
	if req.VariablesSchema != nil {
		raw, err := json.Marshal(req.VariablesSchema)
		if err != nil {
			return nil, errutil.BadRequest("invalid variables schema", errutil.WithErr(err))
		}
		patch["variables_schema"] = datatypes.JSON(raw)
	}

	if len(patch) > 0 {
		if err := s.db.WithContext(ctx).Model(tpl).Updates(patch).Error; err != nil {
			return nil, errutil.Storage("failed to update template", errutil.WithErr(err))
		}
	}

	zap.L().Info("updated template", zap.String("template_id", tpl.ID))
	return s.Get(ctx, id)
}

// Delete retires a template. The row is kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(tpl).Update("status", Retired).Error; err != nil {
		return errutil.Storage("failed to delete template", errutil.WithErr(err))
	}

	zap.L().Info("retired template", zap.String("template_id", tpl.ID), zap.String("name", tpl.Name))
	return nil
}

// Render substitutes vars into the stored body. Schema defaults fill any
// declared variable the caller omitted; a placeholder that resolves to nothing
// fails with a render error.
func (s *Service) Render(ctx context.Context, id string, vars map[string]interface{}) (string, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	tpl, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	schema, err := tpl.Schema()
	if err != nil {
		return "", errutil.Internal("stored variables schema is unreadable", errutil.WithErr(err))
	}

	parsed, err := texttemplate.New(tpl.Name).Option("missingkey=error").Parse(tpl.TemplateContent)
	if err != nil {
		return "", errutil.Render("template body does not parse", errutil.WithErr(err))
	}

	var buf bytes.Buffer
	if err := parsed.Execute(&buf, applyDefaults(schema, vars)); err != nil {
		zap.L().Warn("template rendering failed",
			zap.String("template_id", tpl.ID),
			zap.Error(err),
		)
		return "", errutil.Render("template substitution failed", errutil.WithErr(err))
	}

	return strings.TrimLeft(buf.String(), "\n"), nil
}

// ValidateVariables checks vars against the template's declared schema.
// Validation failures are a result value, not an error.
func (s *Service) ValidateVariables(ctx context.Context, id string, vars map[string]interface{}) (Validation, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return Validation{}, err
	}

	schema, err := tpl.Schema()
	if err != nil {
		return Validation{}, errutil.Internal("stored variables schema is unreadable", errutil.WithErr(err))
	}

	return CheckVariables(schema, vars), nil
}
