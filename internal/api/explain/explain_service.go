package explain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	generativeAI "github.com/FACorreiaa/go-culture-routes/internal/api/generative_ai"
	llmInteraction "github.com/FACorreiaa/go-culture-routes/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const (
	explainTemperature = 0.4
	explainMaxTokens   = 2000

	operationName = "explain"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Explain answers through the provider and degrades to a local explanation on any
	// provider or parse failure. It fails only when ctx is done.
	Explain(ctx context.Context, req types.CultureExplainRequest) (*types.CultureExplanation, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	provider generativeAI.ProviderConfig
	client   generativeAI.Client
	cache    Cache
	recorder llmInteraction.InteractionRecorder
}

// NewServiceImpl wires the explainer. client and cache may be nil.
func NewServiceImpl(provider generativeAI.ProviderConfig, client generativeAI.Client, cache Cache,
	recorder llmInteraction.InteractionRecorder, logger *slog.Logger) *ServiceImpl {
	if recorder == nil {
		recorder = llmInteraction.NopRecorder{}
	}
	return &ServiceImpl{
		logger:   logger,
		provider: provider,
		client:   client,
		cache:    cache,
		recorder: recorder,
	}
}

func (s *ServiceImpl) Explain(ctx context.Context, req types.CultureExplainRequest) (*types.CultureExplanation, error) {
	ctx, span := otel.Tracer("ExplainService").Start(ctx, "Explain", trace.WithAttributes(
		attribute.String("ai.provider", s.provider.Name),
		attribute.String("explain.length", normalizeLength(req.Length)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Explain"), slog.String("provider", s.provider.Name))

	if !s.provider.Configured() || s.client == nil {
		l.InfoContext(ctx, "AI provider not configured, using local explanation")
		span.SetAttributes(attribute.Bool("explain.fallback", true))
		span.SetStatus(codes.Ok, "local explanation")
		return localExplanation(req), nil
	}

	key := cacheKey(req)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			l.DebugContext(ctx, "Explanation cache hit")
			span.SetAttributes(attribute.Bool("cache.hit", true))
			span.SetStatus(codes.Ok, "cached explanation")
			return cached, nil
		}
	}

	prompt := BuildExplainPrompt(req)
	start := time.Now()
	result, err := s.client.Complete(ctx, generativeAI.CompletionRequest{
		System:      systemPersona,
		Prompt:      prompt,
		Model:       s.provider.Model,
		Temperature: explainTemperature,
		MaxTokens:   explainMaxTokens,
	})
	latency := time.Since(start)
	interaction := types.LlmInteraction{
		Operation: operationName,
		Provider:  s.provider.Name,
		ModelUsed: s.provider.Model,
		Prompt:    prompt,
		LatencyMs: int(latency.Milliseconds()),
	}
	if err != nil {
		interaction.Status = types.InteractionError
		interaction.ErrorMessage = err.Error()
		s.recorder.Record(ctx, interaction)

		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "request cancelled")
			return nil, ctxErr
		}
		l.WarnContext(ctx, "AI explanation failed, using local explanation", slog.Any("error", err))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("explain.fallback", true))
		span.SetStatus(codes.Ok, "local explanation after provider error")
		return localExplanation(req), nil
	}
	if result.Model != "" {
		interaction.ModelUsed = result.Model
	}
	interaction.ResponseText = result.Content

	exp, err := parseExplanation(result.Content, req)
	if err != nil {
		interaction.Status = types.InteractionError
		interaction.ErrorMessage = err.Error()
		s.recorder.Record(ctx, interaction)

		l.WarnContext(ctx, "Unparsable AI explanation, using local explanation", slog.Any("error", err))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("explain.fallback", true))
		span.SetStatus(codes.Ok, "local explanation after parse error")
		return localExplanation(req), nil
	}

	interaction.Status = types.InteractionSuccess
	s.recorder.Record(ctx, interaction)
	if s.cache != nil {
		s.cache.Set(ctx, key, exp)
	}

	l.InfoContext(ctx, "Explanation generated", slog.Duration("latency", latency))
	span.SetStatus(codes.Ok, "explanation generated")
	return exp, nil
}
