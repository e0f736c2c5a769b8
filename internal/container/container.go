package container

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appMiddleware "github.com/FACorreiaa/go-culture-routes/app/middleware"
	"github.com/FACorreiaa/go-culture-routes/config"
	"github.com/FACorreiaa/go-culture-routes/internal/api/explain"
	generativeAI "github.com/FACorreiaa/go-culture-routes/internal/api/generative_ai"
	"github.com/FACorreiaa/go-culture-routes/internal/api/itinerary"
	llmInteraction "github.com/FACorreiaa/go-culture-routes/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-culture-routes/internal/api/poi"
	"github.com/FACorreiaa/go-culture-routes/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config                *config.Config
	Logger                *slog.Logger
	Pool                  *pgxpool.Pool
	Redis                 *redis.Client
	RateLimiter           *appMiddleware.RateLimiter
	Recorder              *llmInteraction.Recorder
	ItineraryHandler      *itinerary.HandlerImpl
	POIHandler            *poi.HandlerImpl
	ExplainHandler        *explain.HandlerImpl
	LlmInteractionHandler *llmInteraction.HandlerImpl
}

// NewContainer wires repositories, services and handlers on top of an initialised pool.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		Pool:   pool,
	}

	provider := generativeAI.ResolveProvider(cfg.AI)
	var client generativeAI.Client
	if provider.Configured() {
		var err error
		client, err = generativeAI.NewClient(ctx, provider, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", provider.Name, err)
		}
		logger.Info("AI provider configured", slog.String("provider", provider.Name), slog.String("model", provider.Model))
	} else {
		logger.Warn("AI provider key missing, built-in itineraries and explanations will be served",
			slog.String("provider", provider.Name))
	}

	interactionRepo := llmInteraction.NewRepository(pool, logger)
	recorder := llmInteraction.NewRecorder(interactionRepo, logger)
	c.Recorder = recorder
	c.LlmInteractionHandler = llmInteraction.NewHandler(interactionRepo, logger)

	itineraryService := itinerary.NewServiceImpl(provider, client, recorder, itinerary.GenerationOptions{
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}, logger)
	c.ItineraryHandler = itinerary.NewHandlerImpl(itineraryService, logger)

	poiRepo := poi.NewRepository(pool, logger)
	poiService := poi.NewServiceImpl(poiRepo, logger)
	c.POIHandler = poi.NewHandlerImpl(poiService, cfg.MapView.DefaultLimit, logger)

	explainCache, err := c.newExplainCache(ctx)
	if err != nil {
		return nil, err
	}
	explainService := explain.NewServiceImpl(provider, client, explainCache, recorder, logger)
	c.ExplainHandler = explain.NewHandlerImpl(explainService, logger)

	c.RateLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	return c, nil
}

func (c *Container) newExplainCache(ctx context.Context) (explain.Cache, error) {
	cc := c.Config.Cache
	if cc.Backend != "redis" {
		return explain.NewMemoryCache(cc.TTL, cc.Cleanup), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cc.Redis.Addr,
		Password:    cc.Redis.Password,
		DB:          cc.Redis.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cc.Redis.Addr, err)
	}
	c.Redis = rdb
	c.Logger.Info("Explanation cache backed by redis", slog.String("addr", cc.Redis.Addr))
	return explain.NewRedisCache(rdb, cc.TTL, c.Logger), nil
}

// Router mounts every handler with the AI rate limit applied.
func (c *Container) Router() http.Handler {
	return router.SetupRouter(&router.Config{
		ItineraryHandler:      c.ItineraryHandler,
		POIHandler:            c.POIHandler,
		ExplainHandler:        c.ExplainHandler,
		LlmInteractionHandler: c.LlmInteractionHandler,
		AIRateLimit:           c.RateLimiter.Limit,
	})
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Recorder != nil {
		c.Recorder.Wait()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
