package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"playbook-controlplane/pkg/config"
	"playbook-controlplane/pkg/db"
	"playbook-controlplane/pkg/logger"
	"playbook-controlplane/pkg/queue"
	"playbook-controlplane/services/runner"
	"playbook-controlplane/services/task"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		fx.Provide(provideSnowflakeNode),
		fx.Invoke(registerMigrations),
		runner.Module,
		fx.Provide(task.NewStore),
		queue.Server,
		task.WorkerModule,
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(2)
}

func registerMigrations(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&task.Task{})
}
