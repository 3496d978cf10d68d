package api

import (
	"net/http"

	"playbook-controlplane/pkg/errutil"
	"playbook-controlplane/services/generate"
	"playbook-controlplane/services/task"
	"playbook-controlplane/services/template"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type Handler struct {
	tasks     *task.Service
	templates *template.Service
	generator *generate.Service
}

type HandlerParams struct {
	fx.In
	Tasks     *task.Service
	Templates *template.Service
	Generator *generate.Service
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		tasks:     p.Tasks,
		templates: p.Templates,
		generator: p.Generator,
	}
}

func (h *Handler) AddTask(c *gin.Context) {
	var req task.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, handle, err := h.tasks.Submit(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id": record.ID,
		"handle":  handle,
		"message": "Task added to the queue",
	})
}

func (h *Handler) RemoveTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.tasks.Cancel(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task " + id + " revoked"})
}

func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks})
}

func (h *Handler) GetTask(c *gin.Context) {
	record, err := h.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": record})
}

func (h *Handler) GeneratePlaybook(c *gin.Context) {
	var req generate.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req template.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	tpl, err := h.templates.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "template": tpl})
}

func (h *Handler) ListTemplates(c *gin.Context) {
	tpls, err := h.templates.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "templates": tpls})
}

func (h *Handler) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "template": tpl})
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	var req template.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	tpl, err := h.templates.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "template": tpl})
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Template deleted"})
}

func (h *Handler) RenderTemplate(c *gin.Context) {
	var vars map[string]interface{}
	if err := c.ShouldBindJSON(&vars); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	rendered, err := h.templates.Render(c.Request.Context(), c.Param("id"), vars)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "rendered_content": rendered})
}

func (h *Handler) ValidateTemplateVariables(c *gin.Context) {
	var vars map[string]interface{}
	if err := c.ShouldBindJSON(&vars); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	validation, err := h.templates.ValidateVariables(c.Request.Context(), c.Param("id"), vars)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, validation)
}
