package api

import (
	"net/http"

	"playbook-controlplane/pkg/config"
	"playbook-controlplane/pkg/health"
	"playbook-controlplane/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In
	Config  *config.Config
	Handler *Handler
	Health  health.HealthService
}

func NewRouter(p RouterParams) *gin.Engine {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Error())

	r.GET("/healthz", p.Health.Liveness)
	r.GET("/readyz", p.Health.Readiness)

	r.POST("/add-task", p.Handler.AddTask)
	r.DELETE("/remove-task/:id", p.Handler.RemoveTask)
	r.GET("/tasks", p.Handler.ListTasks)
	r.GET("/tasks/:id", p.Handler.GetTask)

	r.POST("/generate-playbook", p.Handler.GeneratePlaybook)

	templates := r.Group("/templates")
	{
		templates.POST("", p.Handler.CreateTemplate)
		templates.GET("", p.Handler.ListTemplates)
		templates.GET("/:id", p.Handler.GetTemplate)
		templates.PATCH("/:id", p.Handler.UpdateTemplate)
		templates.DELETE("/:id", p.Handler.DeleteTemplate)
		templates.POST("/:id/render", p.Handler.RenderTemplate)
		templates.POST("/:id/validate-variables", p.Handler.ValidateTemplateVariables)
	}

	return r
}

// ProvideHTTPHandler exposes the gin engine as a plain http.Handler for the
// server module.
func ProvideHTTPHandler(engine *gin.Engine) http.Handler {
	return engine
}

var Module = fx.Module("api",
	fx.Provide(
		NewHandler,
		NewRouter,
		ProvideHTTPHandler,
	),
)
