// Hand-maintained counterpart of wire.go. Keep the provider order in step
// with ProviderSet when either file changes.

//go:build !wireinject
// +build !wireinject

package injector

import (
	"github.com/dixithak/FileInsights/internal/conf"
	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/server"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"github.com/dixithak/FileInsights/internal/tracker/service"
)

// Injectors from wire.go:

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	dataData, cleanup, err := provideData(config, log)
	if err != nil {
		return nil, nil, err
	}
	objectStore := provideObjectStore(dataData)
	headerSniffer := provideSniffer(log)
	tables := provideTables(dataData)
	creationProcessor := biz.NewCreationProcessor(objectStore, headerSniffer, tables, log)
	deletionProcessor := biz.NewDeletionProcessor(tables, log)
	router := provideRouter(creationProcessor, deletionProcessor, config, log)
	pool, cleanup2, err := provideWorkerPool(config, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	worker := provideWorker(dataData, router, pool, config, log)
	enqueuer := provideEnqueuer(worker)
	trackerService := service.NewTrackerService(router, tables, headerSniffer, enqueuer, log)
	httpServer := server.NewHTTPServer(config, log, trackerService)
	grpcServer := server.NewGRPCServer(config, log)
	app, cleanup3 := newApp(config, log, httpServer, grpcServer, worker)
	return app, func() {
		cleanup3()
		cleanup2()
		cleanup()
	}, nil
}
