// Package bootstrap wires configuration, adapters, and services together.
package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"inboxcore/adapter/out/llm"
	"inboxcore/adapter/out/mongodb"
	"inboxcore/adapter/out/persistence"
	"inboxcore/adapter/out/provider"
	"inboxcore/config"
	"inboxcore/core/port/out"
	"inboxcore/core/service/attachment"
	"inboxcore/core/service/classification"
	"inboxcore/core/service/ingest"
	"inboxcore/core/service/search"
	"inboxcore/core/service/thread"
	"inboxcore/pkg/apperr"
	"inboxcore/pkg/cache"
)

// Dependencies holds all initialized adapters and services.
type Dependencies struct {
	Mongo *mongo.Client
	Redis *redis.Client

	Store         out.EmailStore
	Classifier    out.EmailClassifier
	InvocationLog out.InvocationLog

	SearchService     *search.Service
	ThreadService     *thread.Service
	AttachmentService *attachment.Searcher
	Pipeline          *classification.Pipeline
	IngestService     *ingest.Service
}

// NewDependencies initializes all adapters and services. The returned
// cleanup closes every opened connection in reverse order.
func NewDependencies(cfg *config.Config, log zerolog.Logger) (*Dependencies, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	deps := &Dependencies{}

	// MongoDB email store
	if cfg.MongoDBURL == "" {
		cleanup()
		return nil, nil, apperr.ConfigError("MONGODB_URL is required")
	}
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("error disconnecting MongoDB")
		}
	})
	deps.Mongo = mongoClient

	store := mongodb.NewEmailStoreAdapter(mongoClient.Database(cfg.MongoDBName))
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := store.EnsureIndexes(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("failed to ensure store indexes")
		}
	}
	deps.Store = store

	// Redis category cache (optional)
	var categoryCache out.Cache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, apperr.ConfigError("invalid REDIS_URL: " + err.Error())
		}
		redisClient := redis.NewClient(opts)
		cleanups = append(cleanups, func() {
			if err := redisClient.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing Redis")
			}
		})
		deps.Redis = redisClient
		categoryCache = cache.NewRedisCache(redisClient)
	}

	// Invocation log (optional Postgres)
	if cfg.DatabaseURL != "" {
		invLog, err := persistence.NewInvocationLogAdapter(cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() {
			if err := invLog.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing Postgres")
			}
		})
		{
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := invLog.EnsureSchema(ctx)
			cancel()
			if err != nil {
				cleanup()
				return nil, nil, err
			}
		}
		deps.InvocationLog = invLog
	} else {
		deps.InvocationLog = persistence.NewNoopInvocationLog(log)
	}

	// Classifier
	deps.Classifier = llm.NewOpenAIClassifier(llm.ClassifierConfig{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.LLMModel,
		Timeout:    time.Duration(cfg.LLMTimeoutSec) * time.Second,
		OwnOrgName: cfg.OwnOrgToken,
	}, log)

	// Services
	categorizer := classification.NewCategorizer(
		deps.Classifier,
		categoryCache,
		time.Duration(cfg.CategoryCacheTTLMin)*time.Minute,
		cfg.OwnOrgToken,
		log,
	)
	scorer := classification.NewScorer(scoreWeights(cfg))

	deps.SearchService = search.NewService(deps.Store, log)
	deps.ThreadService = thread.NewService(deps.Store, log)
	deps.AttachmentService = attachment.NewSearcher(deps.Store, log)
	deps.Pipeline = classification.NewPipeline(deps.Store, categorizer, scorer, cfg.ClassifyParallelism, log)

	// Gmail ingestion (optional); the ingest operation reports a config
	// error when no provider is set up.
	var mailProvider out.EmailProvider
	if cfg.GmailClientID != "" && cfg.GmailClientSecret != "" && cfg.GmailRefreshToken != "" {
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailReadonlyScope},
		}
		token := &oauth2.Token{RefreshToken: cfg.GmailRefreshToken}
		gmailAdapter, err := provider.NewGmailAdapter(context.Background(), token, oauthCfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		mailProvider = gmailAdapter
		log.Info().Msg("gmail ingestion enabled")
	}
	deps.IngestService = ingest.NewService(mailProvider, deps.Store, log)

	return deps, cleanup, nil
}

func scoreWeights(cfg *config.Config) classification.ScoreWeights {
	return classification.ScoreWeights{
		Base:                   cfg.ScoreBase,
		ServiceRequest:         cfg.ScoreServiceRequest,
		ExternalPaymentRequest: cfg.ScoreExternalPaymentRequest,
		UrgencyHigh:            cfg.ScoreUrgencyHigh,
		UrgencyLow:             cfg.ScoreUrgencyLow,
		NeedsResponse:          cfg.ScoreNeedsResponse,
		ImportantLabel:         cfg.ScoreImportantLabel,
		StarredLabel:           cfg.ScoreStarredLabel,
		UnreadLabel:            cfg.ScoreUnreadLabel,
		LowValuePenalty:        cfg.ScoreLowValuePenalty,
	}
}
