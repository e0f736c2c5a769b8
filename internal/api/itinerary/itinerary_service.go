package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-culture-routes/app/observability/metrics"
	generativeAI "github.com/FACorreiaa/go-culture-routes/internal/api/generative_ai"
	llmInteraction "github.com/FACorreiaa/go-culture-routes/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 16000

	operationName = "itinerary"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// SynthesizeItinerary builds a plan through the configured provider. When no provider key is
	// configured it returns the built-in plan instead; every other failure is returned as is.
	SynthesizeItinerary(ctx context.Context, prefs types.TripPreferences) (*types.ItineraryPlan, error)
}

// GenerationOptions tunes the completion call. Zero values select the defaults.
type GenerationOptions struct {
	Temperature float64
	MaxTokens   int
}

type ServiceImpl struct {
	logger   *slog.Logger
	provider generativeAI.ProviderConfig
	client   generativeAI.Client
	recorder llmInteraction.InteractionRecorder
	opts     GenerationOptions
}

// NewServiceImpl wires the engine. client may be nil when the provider is not configured.
func NewServiceImpl(provider generativeAI.ProviderConfig, client generativeAI.Client,
	recorder llmInteraction.InteractionRecorder, opts GenerationOptions, logger *slog.Logger) *ServiceImpl {
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if recorder == nil {
		recorder = llmInteraction.NopRecorder{}
	}
	return &ServiceImpl{
		logger:   logger,
		provider: provider,
		client:   client,
		recorder: recorder,
		opts:     opts,
	}
}

func (s *ServiceImpl) SynthesizeItinerary(ctx context.Context, prefs types.TripPreferences) (*types.ItineraryPlan, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "SynthesizeItinerary", trace.WithAttributes(
		attribute.String("ai.provider", s.provider.Name),
		attribute.Int("trip.duration", prefs.Duration),
		attribute.String("trip.destinations", prefs.Destinations),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SynthesizeItinerary"), slog.String("provider", s.provider.Name))

	if !s.provider.Configured() || s.client == nil {
		l.InfoContext(ctx, "AI provider not configured, using built-in itinerary")
		metrics.Get().ItineraryFallbackTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("provider", s.provider.Name)))
		span.SetAttributes(attribute.Bool("itinerary.fallback", true))
		span.SetStatus(codes.Ok, "fallback itinerary generated")
		return GenerateDefaultItinerary(prefs), nil
	}

	prompt, err := BuildRoutePrompt(prefs)
	if err != nil {
		l.ErrorContext(ctx, "Failed to build route prompt", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "prompt build failed")
		return nil, err
	}

	start := time.Now()
	result, err := s.client.Complete(ctx, generativeAI.CompletionRequest{
		Prompt:      prompt,
		Model:       s.provider.Model,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
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

		l.ErrorContext(ctx, "AI completion failed", slog.Any("error", err), slog.Duration("latency", latency))
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, fmt.Errorf("failed to generate itinerary: %w", err)
	}
	if result.Model != "" {
		interaction.ModelUsed = result.Model
	}
	interaction.ResponseText = result.Content

	plan, err := ParsePlan(result.Content, prefs)
	if err != nil {
		interaction.Status = types.InteractionError
		interaction.ErrorMessage = err.Error()
		s.recorder.Record(ctx, interaction)

		var ferr *ResponseFormatError
		if errors.As(err, &ferr) {
			l.ErrorContext(ctx, "AI response is not valid JSON",
				slog.Int("line", ferr.Line),
				slog.Int("column", ferr.Column),
				slog.Any("error", ferr.Err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "response parse failed")
		return nil, err
	}

	interaction.Status = types.InteractionSuccess
	s.recorder.Record(ctx, interaction)

	if len(plan.Itinerary) < tripDays(prefs) {
		l.WarnContext(ctx, "AI itinerary shorter than requested",
			slog.Int("requested", tripDays(prefs)),
			slog.Int("received", len(plan.Itinerary)))
	}
	l.InfoContext(ctx, "Itinerary generated",
		slog.Int("days", len(plan.Itinerary)),
		slog.Int("tips", len(plan.Tips)),
		slog.Duration("latency", latency))
	span.SetAttributes(attribute.Int("itinerary.days", len(plan.Itinerary)))
	span.SetStatus(codes.Ok, "itinerary generated")
	return plan, nil
}
