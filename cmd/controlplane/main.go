package main

import (
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"playbook-controlplane/pkg/config"
	"playbook-controlplane/pkg/db"
	"playbook-controlplane/pkg/health"
	"playbook-controlplane/pkg/logger"
	"playbook-controlplane/pkg/queue"
	"playbook-controlplane/pkg/redis"
	"playbook-controlplane/pkg/secretmanager"
	"playbook-controlplane/pkg/server"
	"playbook-controlplane/services/api"
	"playbook-controlplane/services/generate"
	"playbook-controlplane/services/task"
	"playbook-controlplane/services/template"
)

func main() {
	app := fx.New(
		maybeVault(),
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		queue.Client,
		health.Module,
		fx.Provide(provideSnowflakeNode),
		fx.Invoke(
			warnOnConfigProblems,
			registerMigrations,
			db.Otel,
		),
		task.Module,
		template.Module,
		generate.Module,
		// Recovery re-registers dispatch entries before the HTTP server
		// starts accepting submissions.
		task.RecoveryModule,
		api.Module,
		server.Module,
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func registerMigrations(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&task.Task{}, &template.Template{})
}

func warnOnConfigProblems(cfg *config.Config) {
	for _, problem := range cfg.Validate() {
		zap.L().Warn("configuration problem", zap.String("problem", problem))
	}
}

// maybeVault enables the Vault secret overlay only when the process is pointed
// at a Vault server; config treats the client as optional.
func maybeVault() fx.Option {
	if os.Getenv("VAULT_ADDR") == "" {
		return fx.Options()
	}
	return secretmanager.Module
}
