package bootstrap

import (
	"context"
	"log/slog"

	"github.com/easylife-c/APHAv.2/internal/scheduler"
	"github.com/easylife-c/APHAv.2/internal/server"
	"github.com/easylife-c/APHAv.2/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server     *server.Server
	Scheduler  *scheduler.Scheduler
	WorkerPool *worker.Pool
}

// GracefulShutdown performs graceful shutdown of all application components.
// Order matters:
//  1. HTTP server (stop accepting new requests)
//  2. Scheduler (stop enqueueing new background jobs)
//  3. Worker pool (drain in-flight jobs, including running pump jobs)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}

	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	slog.Info(LogMsgServerStopped)
}
