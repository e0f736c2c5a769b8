package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-culture-routes/app/observability/metrics"
)

var _ Client = (*GeminiClient)(nil)

// GeminiClient serves completions through the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewGeminiClient(ctx context.Context, pc ProviderConfig, logger *slog.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  pc.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	timeout := pc.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiClient{
		client:  client,
		model:   pc.Model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (g *GeminiClient) Provider() string { return ProviderGemini }

func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}
	ctx, span := otel.Tracer("GeminiClient").Start(ctx, "Complete", trace.WithAttributes(
		attribute.String("ai.provider", ProviderGemini),
		attribute.String("ai.model", model),
		attribute.Int("ai.max_tokens", req.MaxTokens),
	))
	defer span.End()

	l := g.logger.With(slog.String("method", "Complete"), slog.String("provider", ProviderGemini))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	start := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	elapsed := time.Since(start)
	if err != nil && errors.Is(err, context.Canceled) {
		l.InfoContext(ctx, "Gemini completion cancelled by caller")
		g.record(ctx, "cancelled", elapsed)
		span.SetStatus(codes.Error, "cancelled")
		return nil, fmt.Errorf("completion cancelled: %w", context.Canceled)
	}
	if err != nil {
		classified := g.classify(err)
		l.ErrorContext(ctx, "Gemini completion failed", slog.Any("error", err))
		g.record(ctx, outcomeOf(classified), elapsed)
		span.RecordError(classified)
		span.SetStatus(codes.Error, "gemini completion failed")
		return nil, classified
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		g.record(ctx, "empty", elapsed)
		span.RecordError(ErrEmptyResponse)
		span.SetStatus(codes.Error, "empty response")
		return nil, ErrEmptyResponse
	}

	out := &CompletionResult{Content: text, Model: model}
	if result.UsageMetadata != nil {
		out.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	g.record(ctx, "success", elapsed)
	span.SetStatus(codes.Ok, "completion received")
	return out, nil
}

// classify maps genai API errors onto the shared provider error taxonomy.
func (g *GeminiClient) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderHTTPError{
			Provider:   ProviderGemini,
			StatusCode: apiErr.Code,
			Kind:       classifyStatus(apiErr.Code),
			Cause:      describeMessage(apiErr.Code, apiErr.Message),
			Body:       apiErr.Message,
		}
	}
	return &NetworkError{Provider: ProviderGemini, Timeout: isTimeout(err), Err: err}
}

func (g *GeminiClient) record(ctx context.Context, outcome string, elapsed time.Duration) {
	m := metrics.Get()
	attrs := metric.WithAttributes(
		attribute.String("provider", ProviderGemini),
		attribute.String("outcome", outcome),
	)
	m.CompletionRequestsTotal.Add(ctx, 1, attrs)
	m.CompletionDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
}

func outcomeOf(err error) string {
	var perr *ProviderHTTPError
	if errors.As(err, &perr) {
		return string(perr.Kind)
	}
	return "network_error"
}
