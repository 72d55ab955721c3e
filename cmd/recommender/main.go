// cmd/recommender/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wenwen-recommender/internal/common/config"
	"wenwen-recommender/internal/common/database"
	"wenwen-recommender/internal/common/errors"
	"wenwen-recommender/internal/common/logger"
	"wenwen-recommender/internal/common/observability"
	"wenwen-recommender/internal/common/resilience"
	"wenwen-recommender/internal/pipeline"
	llmsynthesis "wenwen-recommender/internal/workers/ai-conversation/llm-synthesis"
	businessstore "wenwen-recommender/internal/workers/data-access/business-store"
	buildresponse "wenwen-recommender/internal/workers/infrastructure/build-response"
	notifyfabrication "wenwen-recommender/internal/workers/infrastructure/notify-fabrication"
	loginteraction "wenwen-recommender/internal/workers/recommendation/log-interaction"
	recommendbusinesses "wenwen-recommender/internal/workers/recommendation/recommend-businesses"
	"wenwen-recommender/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting recommender...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	vocab, err := registry.LoadWithDefaults(cfg.Vocabulary.Path)
	if err != nil {
		zapLog.Fatal("vocabulary rejected", zap.Error(errors.NewVocabularyInvalidError(err.Error())))
	}
	zapLog.Info("Vocabulary loaded",
		zap.String("path", cfg.Vocabulary.Path),
		zap.String("version", vocab.Version),
		zap.Int("fabricatedNames", len(vocab.FabricatedNames)),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	pingers := map[string]pipeline.Pinger{}

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.CheckSchema(ctx); err != nil {
		zapLog.Fatal("postgres schema check failed", zap.Error(err))
	}
	pingers["postgres"] = pg
	zapLog.Info("PostgreSQL connected successfully")

	storeCfg := businessstore.LoadConfig()
	storeCfg.Index = cfg.Database.Elasticsearch.Index
	storeCfg.CacheTTL = config.GetDuration(cfg.Store.CacheTTL)
	storeCfg.Policy = resilience.Policy{
		Timeout:    config.GetDuration(cfg.Resilience.Timeout),
		MaxRetries: cfg.Resilience.MaxRetries,
		Backoff:    config.GetDuration(cfg.Resilience.Backoff),
	}
	storeLog := pipeline.StoreLogger(log)

	var port businessstore.Port = businessstore.NewPostgresStore(pg.DB, storeLog)
	// finder stays nil while business reads go straight to postgres.
	var finder businessstore.BusinessFinder

	// --- Init Elasticsearch with retry ---
	if cfg.Store.BusinessSource == "elasticsearch" {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		pingers["elasticsearch"] = esClient
		finder = businessstore.NewSearchIndex(esClient.Client, storeCfg.Index, storeLog)
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", storeCfg.Index))
	}

	// --- Init Redis with retry ---
	if cfg.Store.CacheEnabled {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		pingers["redis"] = redis
		source := finder
		if source == nil {
			source = port
		}
		finder = businessstore.NewCachedFinder(source, redis.Client, storeCfg, storeLog)
		zapLog.Info("Redis connected successfully", zap.Duration("cacheTTL", storeCfg.CacheTTL))
	}

	if finder != nil {
		port = businessstore.WithBusinessSource(port, finder)
	}
	port = businessstore.NewResilient(port, storeCfg.Policy)

	// --- Init external service clients ---
	llmCfg := llmsynthesis.LoadConfig()
	llmCfg.GenAIBaseURL = cfg.APIs.GenAI.BaseURL
	llmCfg.APIKey = cfg.APIs.GenAI.APIKey
	llmCfg.Timeout = config.GetDuration(cfg.APIs.GenAI.Timeout)
	llmCfg.MaxRetries = cfg.APIs.GenAI.MaxRetries
	llmCfg.Backoff = config.GetDuration(cfg.APIs.GenAI.Backoff)
	llmCfg.MaxTokens = cfg.APIs.GenAI.MaxTokens
	llmCfg.Temperature = cfg.APIs.GenAI.Temperature
	generator := llmsynthesis.NewClient(llmCfg, pipeline.GeneratorLogger(log))

	alertCfg := notifyfabrication.LoadConfig()
	alertCfg.Channel = cfg.Alerts.Channel
	if cfg.Alerts.Region != "" {
		alertCfg.Region = cfg.Alerts.Region
	}
	alertCfg.TopicARN = cfg.Alerts.SNSTopicARN
	alertCfg.FromEmail = cfg.Alerts.SESFromEmail
	alertCfg.Recipients = cfg.Alerts.SESRecipients
	alertCfg.Timeout = config.GetDuration(cfg.Alerts.Timeout)
	publisher, err := notifyfabrication.NewPublisher(ctx, alertCfg)
	if err != nil {
		zapLog.Fatal("alert publisher init failed", zap.Error(err))
	}
	notifier := notifyfabrication.NewNotifier(alertCfg, publisher, pipeline.NotifierLogger(log))

	zapLog.Info("All external service clients initialized", zap.String("alertChannel", alertCfg.Channel))

	// --- Assemble the pipeline ---
	recCfg := recommendbusinesses.LoadConfig()
	recCfg.MaxResults = cfg.Pipeline.MaxResults
	recCfg.FetchLimit = cfg.Pipeline.FetchLimit
	recCfg.PrioritizePartnerStores = cfg.Pipeline.PartnerFirst()
	recCfg.EnableFallback = cfg.Pipeline.FallbackEnabled()
	recCfg.FlagshipBusinessName = cfg.Pipeline.FlagshipBusinessName

	interactionCfg := loginteraction.LoadConfig()
	interactionCfg.HistorySize = cfg.Interaction.HistorySize
	interactionCfg.RetentionAge = time.Duration(cfg.Interaction.RetentionHours) * time.Hour
	interactionCfg.CleanupInterval = config.GetDuration(cfg.Interaction.CleanupInterval)
	interactionCfg.MaxResults = cfg.Pipeline.MaxResults

	responseCfg := buildresponse.LoadConfig()
	responseCfg.AppVersion = cfg.App.Version

	pipelineCfg := pipeline.LoadConfig()
	pipelineCfg.MaxMessageRunes = cfg.Server.MaxMessageRunes
	pipelineCfg.RequestTimeout = config.GetDuration(cfg.Server.RequestTimeout)
	pipelineCfg.ApologyReply = cfg.Pipeline.ApologyReply

	asm, err := pipeline.Assemble(pipelineCfg, pipeline.Options{
		Vocabulary:    vocab,
		Recommend:     recCfg,
		Interaction:   interactionCfg,
		Response:      responseCfg,
		Port:          port,
		Generator:     generator,
		Alerter:       notifier,
		Observability: obs,
	}, log)
	if err != nil {
		zapLog.Fatal("pipeline assembly failed", zap.Error(err))
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	sweeperDone := asm.Interactions.StartSweeper(sweepCtx, interactionCfg.CleanupInterval)

	// --- HTTP server ---
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      pipeline.NewHandler(asm.Service, pingers, cfg.App.Version, log).Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	asm.Service.Wait()

	stopSweeper()
	<-sweeperDone

	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Recommender stopped")
}
