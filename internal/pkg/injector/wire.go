//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/dixithak/FileInsights/internal/conf"
	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/server"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"github.com/dixithak/FileInsights/internal/tracker/service"
	"github.com/google/wire"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	dataProviderSet,
	useCaseProviderSet,
	serverProviderSet,
)

var dataProviderSet = wire.NewSet(
	provideData,
	provideTables,
	provideObjectStore,
)

var useCaseProviderSet = wire.NewSet(
	provideSniffer,
	biz.NewCreationProcessor,
	biz.NewDeletionProcessor,
	provideRouter,
	provideWorkerPool,
	provideWorker,
	provideEnqueuer,
	service.NewTrackerService,
)

var serverProviderSet = wire.NewSet(
	server.NewHTTPServer,
	server.NewGRPCServer,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}
