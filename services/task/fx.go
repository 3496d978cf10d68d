package task

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(
		NewStore,
		provideInspector,
		NewScheduler,
		NewService,
		NewRecovery,
	),
)

// RecoveryModule runs the one-shot startup restore. Include it only in the
// process that owns recovery; running it twice in one lifetime risks
// duplicate dispatch entries.
var RecoveryModule = fx.Module("task.recovery",
	fx.Invoke(registerRecovery),
)

func registerRecovery(lc fx.Lifecycle, r *Recovery) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return r.Restore(ctx)
		},
	})
}

// WorkerModule wires the execution worker onto the asynq mux.
var WorkerModule = fx.Module("task.worker",
	fx.Provide(NewWorker),
	fx.Invoke(registerHandlers),
)

func registerHandlers(mux *asynq.ServeMux, w *Worker) {
	mux.HandleFunc(TaskRunPlaybook, w.HandleRunPlaybook)
}

func provideInspector(i *asynq.Inspector) Inspector {
	return i
}
