package injector

import (
	"context"

	"github.com/dixithak/FileInsights/internal/conf"
	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/server"
	"github.com/dixithak/FileInsights/internal/tracker/queue"
)

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	HTTPServer *server.HTTPServer
	GRPCServer *server.GRPCServer
	// Worker is nil when the event queue is disabled
	Worker  *queue.Worker
	cleanup func()
}

// StartWorker starts the queue worker, if any, and reports the tracker as serving
func (a *App) StartWorker(ctx context.Context) error {
	if a.Worker != nil {
		if err := a.Worker.Start(ctx); err != nil {
			return err
		}
	}
	a.GRPCServer.SetServing(true)
	return nil
}

// Cleanup releases all resources
func (a *App) Cleanup() {
	a.GRPCServer.SetServing(false)
	if a.cleanup != nil {
		a.cleanup()
	}
}
