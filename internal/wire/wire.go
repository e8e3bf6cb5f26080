//go:build wireinject
// +build wireinject

// Package wire provides dependency injection configuration.
package wire

import (
	"context"

	"github.com/google/wire"

	"heritage-archive-api/internal/config"
	"heritage-archive-api/internal/domain/repository"
	"heritage-archive-api/internal/infrastructure/llm"
	"heritage-archive-api/internal/infrastructure/persistence/postgres"
	"heritage-archive-api/internal/infrastructure/persistence/redis"
	"heritage-archive-api/internal/interfaces/http/handler"
	"heritage-archive-api/internal/interfaces/http/middleware"
	"heritage-archive-api/internal/interfaces/http/router"
	workflowport "heritage-archive-api/internal/workflow/port"
)

// InitializeApp builds the full application router.
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		VectorSet,
		AssistantSet,
		ArchiveSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet provides the relational persistence layer.
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewArchiveRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.ArchiveRepository), new(*postgres.ArchiveRepository)),
)

// RedisSet provides the cache layer.
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// VectorSet provides the optional vector stack. Unreachable Milvus or a
// missing embedder degrade to metadata-only mode instead of failing startup.
var VectorSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideMilvusRepositoryOptional,
	ProvideVectorStoreOptional,
	ProvideEmbedderOptional,
)

// AssistantSet provides the search refinement loop.
var AssistantSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	ProvideIntentClassifier,
	ProvideQueryGenerator,
	ProvideAssistantController,
)

// ArchiveSet provides archive management services.
var ArchiveSet = wire.NewSet(
	ProvideURIResolver,
	ProvideArchiveIndexer,
	ProvideArchiveSearcher,
	ProvideArchiveService,
)

// RouterSet provides the HTTP surface.
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewArchiveHandler,
	ProvideAssistantHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouter,
)
