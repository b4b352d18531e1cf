//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/wordgym/internal/adapter/connectrpc"
	"github.com/eslsoft/wordgym/internal/adapter/repository"
	"github.com/eslsoft/wordgym/internal/infrastructure/config"
	"github.com/eslsoft/wordgym/internal/infrastructure/database"
	"github.com/eslsoft/wordgym/internal/infrastructure/metrics"
	"github.com/eslsoft/wordgym/internal/infrastructure/server"
	"github.com/eslsoft/wordgym/internal/infrastructure/sheet"
	"github.com/eslsoft/wordgym/internal/usecase"
)

var infraSet = wire.NewSet(
	server.NewLogger,
	database.NewDriver,
	metrics.NewRegistry,
	metrics.New,
	provideSheetFetcher,
	wire.Bind(new(usecase.SheetSource), new(*sheet.Fetcher)),
)

var repositorySet = wire.NewSet(
	repository.NewWordRepository,
	repository.NewFavoriteRepository,
	repository.NewQuizRecordRepository,
)

var usecaseSet = wire.NewSet(
	provideImportDefaults,
	usecase.NewDatasetUsecase,
	provideWordLookup,
	usecase.NewFavoriteUsecase,
	provideQuizUsecase,
	provideBackupService,
)

var serviceSet = wire.NewSet(
	connectrpc.NewDatasetServiceServer,
	connectrpc.NewFavoriteServiceServer,
	connectrpc.NewQuizServiceServer,
	wire.Struct(new(server.Handlers), "*"),
)

var serverSet = wire.NewSet(
	server.NewServer,
)

// Initialize builds the application container from the given configuration using Wire.
func Initialize(cfg *config.Config) (*Container, func(), error) {
	wire.Build(
		infraSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
