// Package wire provides dependency injection configuration.
package wire

import (
	"context"
	"strings"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"heritage-archive-api/internal/application/archive"
	"heritage-archive-api/internal/application/assistant"
	"heritage-archive-api/internal/config"
	"heritage-archive-api/internal/domain/repository"
	infraembedding "heritage-archive-api/internal/infrastructure/embedding"
	"heritage-archive-api/internal/infrastructure/persistence/milvus"
	"heritage-archive-api/internal/infrastructure/persistence/postgres"
	"heritage-archive-api/internal/infrastructure/persistence/redis"
	"heritage-archive-api/internal/interfaces/http/handler"
	"heritage-archive-api/internal/interfaces/http/middleware"
	"heritage-archive-api/internal/interfaces/http/router"
	workflowport "heritage-archive-api/internal/workflow/port"
	"heritage-archive-api/pkg/logger"
)

// ProvidePostgresClient provides the PostgreSQL client.
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient provides the Redis client.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusClientOptional provides the Milvus client. An unreachable
// Milvus disables vector search instead of failing startup.
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, vector search disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusRepositoryOptional provides the vector repository.
func ProvideMilvusRepositoryOptional(client *milvus.Client, cfg *config.Config) *milvus.Repository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client, cfg.Embedding.Dimension)
}

// ProvideVectorStoreOptional provides the vector store port, ensuring the
// backing collection exists.
func ProvideVectorStoreOptional(ctx context.Context, repo *milvus.Repository) archive.VectorStore {
	if repo == nil {
		return nil
	}
	adapter := milvus.NewVectorAdapter(repo)
	if err := adapter.EnsureReady(ctx); err != nil {
		logger.Warn(ctx, "failed to prepare vector collection", "error", err.Error())
	}
	return adapter
}

// ProvideEmbedderOptional provides the embedder. A missing embedding config
// disables vector search instead of failing startup.
func ProvideEmbedderOptional(ctx context.Context, cfg *config.Config) einoembedding.Embedder {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, vector search disabled", "error", err.Error())
		return nil
	}
	return embedder
}

// resolveProviderModel picks the provider and model for assistant workflows,
// falling back to the configured defaults.
func resolveProviderModel(cfg *config.Config) (string, string) {
	provider := strings.TrimSpace(cfg.LLM.DefaultProvider)
	var model string
	if providerCfg, ok := cfg.LLM.Providers[provider]; ok {
		model = strings.TrimSpace(providerCfg.Model)
	}
	return provider, model
}

// ProvideIntentClassifier provides the LLM intent classifier.
func ProvideIntentClassifier(cfg *config.Config, factory workflowport.ChatModelFactory) assistant.IntentClassifier {
	provider, model := resolveProviderModel(cfg)
	return assistant.NewLLMIntentClassifier(factory, provider, model)
}

// ProvideQueryGenerator provides the LLM query generator.
func ProvideQueryGenerator(cfg *config.Config, factory workflowport.ChatModelFactory) assistant.QueryGenerator {
	provider, model := resolveProviderModel(cfg)
	return assistant.NewLLMQueryGenerator(factory, provider, model)
}

// ProvideAssistantController provides the search loop controller.
func ProvideAssistantController(
	classifier assistant.IntentClassifier,
	generator assistant.QueryGenerator,
	searcher *archive.Searcher,
	cfg *config.Config,
) *assistant.Controller {
	return assistant.NewController(classifier, generator, searcher, assistant.Options{
		MaxAttempts:         cfg.Assistant.MaxAttempts,
		EvaluationThreshold: cfg.Assistant.EvaluationThreshold,
		RetrievalThreshold:  cfg.Assistant.RetrievalThreshold,
		ResultCap:           cfg.Assistant.ResultCap,
		CallTimeout:         cfg.Assistant.CallTimeout,
	})
}

// ProvideURIResolver provides the storage path resolver.
func ProvideURIResolver(cfg *config.Config) *archive.URIResolver {
	return archive.NewURIResolver(cfg.Storage.PublicURL, cfg.Storage.Bucket)
}

// ProvideArchiveIndexer provides the vector indexer.
func ProvideArchiveIndexer(embedder einoembedding.Embedder, store archive.VectorStore) *archive.Indexer {
	return archive.NewIndexer(embedder, store)
}

// ProvideArchiveSearcher provides the similarity searcher.
func ProvideArchiveSearcher(
	embedder einoembedding.Embedder,
	store archive.VectorStore,
	archives repository.ArchiveRepository,
	uris *archive.URIResolver,
) *archive.Searcher {
	return archive.NewSearcher(embedder, store, archives, uris)
}

// ProvideArchiveService provides the archive service.
func ProvideArchiveService(
	archives repository.ArchiveRepository,
	tx repository.Transactor,
	cache *redis.Cache,
	indexer *archive.Indexer,
) *archive.Service {
	return archive.NewService(archives, tx, cache, indexer)
}

// ProvideAssistantHandler provides the assistant HTTP handler.
func ProvideAssistantHandler(controller *assistant.Controller) *handler.AssistantHandler {
	return handler.NewAssistantHandler(controller)
}

// ProvideRouter provides the HTTP router.
func ProvideRouter(cfg *config.Config, handlers router.Handlers, rateLimiter middleware.RateLimiter) *router.Router {
	return router.New(cfg, handlers, rateLimiter)
}
