package injector

import (
	"github.com/dixithak/FileInsights/internal/conf"
	"github.com/dixithak/FileInsights/internal/data"
	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/pkg/workerpool"
	"github.com/dixithak/FileInsights/internal/server"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"github.com/dixithak/FileInsights/internal/tracker/queue"
	"github.com/dixithak/FileInsights/internal/tracker/service"
	"github.com/dixithak/FileInsights/internal/tracker/sniff"
)

func provideData(config *conf.Config, log *logger.Logger) (*data.Data, func(), error) {
	return data.NewData(config, log)
}

func provideTables(d *data.Data) *biz.Tables {
	return d.Tables
}

func provideObjectStore(d *data.Data) biz.ObjectStore {
	return d.ObjectStore
}

func provideSniffer(log *logger.Logger) biz.HeaderSniffer {
	return sniff.New(log)
}

func provideRouter(
	creation *biz.CreationProcessor,
	deletion *biz.DeletionProcessor,
	config *conf.Config,
	log *logger.Logger,
) *biz.Router {
	return biz.NewRouter(creation, deletion, config.Tracker.BatchConcurrency, log)
}

func provideWorkerPool(config *conf.Config, log *logger.Logger) (*workerpool.Pool, func(), error) {
	pool, err := workerpool.New(&config.Tracker.Workers, log.Named("workerpool").Logger)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Shutdown, nil
}

// provideWorker returns nil when the queue is disabled
func provideWorker(
	d *data.Data,
	router *biz.Router,
	pool *workerpool.Pool,
	config *conf.Config,
	log *logger.Logger,
) *queue.Worker {
	if !config.Tracker.Queue.Enabled || d.Redis == nil {
		return nil
	}
	return queue.NewWorker(d.Redis, router, pool, &config.Tracker.Queue.Config, log)
}

func provideEnqueuer(worker *queue.Worker) service.Enqueuer {
	if worker == nil {
		return nil
	}
	return worker
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	httpServer *server.HTTPServer,
	grpcServer *server.GRPCServer,
	worker *queue.Worker,
) (*App, func()) {
	cleanup := func() {
		if worker != nil {
			worker.Stop()
		}
	}

	return &App{
		Config:     config,
		Logger:     log,
		HTTPServer: httpServer,
		GRPCServer: grpcServer,
		Worker:     worker,
		cleanup:    cleanup,
	}, cleanup
}
