package generativeAI

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-culture-routes/app/observability/metrics"
)

var _ Client = (*ChatCompletionClient)(nil)

// ChatCompletionClient talks to OpenAI-compatible /chat/completions endpoints (OpenAI, DeepSeek).
type ChatCompletionClient struct {
	provider   string
	apiKey     string
	apiURL     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// NewChatCompletionClient applies pc.Timeout to dialing, response headers and the whole exchange.
func NewChatCompletionClient(pc ProviderConfig, logger *slog.Logger) *ChatCompletionClient {
	timeout := pc.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}
	return &ChatCompletionClient{
		provider:   pc.Name,
		apiKey:     pc.APIKey,
		apiURL:     pc.APIURL,
		model:      pc.Model,
		timeout:    timeout,
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
		logger:     logger,
	}
}

func (c *ChatCompletionClient) Provider() string { return c.provider }

func (c *ChatCompletionClient) Model() string { return c.model }

func (c *ChatCompletionClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	ctx, span := otel.Tracer("ChatCompletionClient").Start(ctx, "Complete", trace.WithAttributes(
		attribute.String("ai.provider", c.provider),
		attribute.String("ai.model", model),
		attribute.Int("ai.max_tokens", req.MaxTokens),
		attribute.Int("ai.prompt_chars", len(req.Prompt)),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "Complete"), slog.String("provider", c.provider))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	start := time.Now()
	raw, status, err := c.doOnce(ctx, chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	elapsed := time.Since(start)

	if err != nil && errors.Is(err, context.Canceled) {
		l.InfoContext(ctx, "Completion request cancelled by caller")
		c.record(ctx, "cancelled", elapsed)
		span.SetStatus(codes.Error, "cancelled")
		return nil, fmt.Errorf("completion cancelled: %w", context.Canceled)
	}
	if err != nil {
		netErr := &NetworkError{Provider: c.provider, Timeout: isTimeout(err), Err: err}
		l.ErrorContext(ctx, "Completion request failed", slog.Any("error", err), slog.Bool("timeout", netErr.Timeout))
		c.record(ctx, "network_error", elapsed)
		span.RecordError(netErr)
		span.SetStatus(codes.Error, "network error")
		return nil, netErr
	}

	if status < 200 || status >= 300 {
		perr := ParseProviderError(c.provider, status, raw)
		l.ErrorContext(ctx, "Completion provider returned an error",
			slog.Int("status", status),
			slog.String("kind", string(perr.Kind)),
			slog.String("cause", perr.Cause))
		c.record(ctx, string(perr.Kind), elapsed)
		span.RecordError(perr)
		span.SetStatus(codes.Error, perr.Cause)
		return nil, perr
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		l.ErrorContext(ctx, "Failed to decode completion response", slog.Any("error", err))
		c.record(ctx, "decode_error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode error")
		return nil, fmt.Errorf("%w: undecodable response body: %v", ErrEmptyResponse, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		l.WarnContext(ctx, "Completion response carried no content")
		c.record(ctx, "empty", elapsed)
		span.RecordError(ErrEmptyResponse)
		span.SetStatus(codes.Error, "empty response")
		return nil, ErrEmptyResponse
	}

	c.record(ctx, "success", elapsed)
	l.InfoContext(ctx, "Completion received",
		slog.Duration("latency", elapsed),
		slog.Int("prompt_tokens", parsed.Usage.PromptTokens),
		slog.Int("completion_tokens", parsed.Usage.CompletionTokens))
	span.SetStatus(codes.Ok, "completion received")

	if parsed.Model != "" {
		model = parsed.Model
	}
	return &CompletionResult{
		Content:          parsed.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}, nil
}

func (c *ChatCompletionClient) doOnce(ctx context.Context, body chatRequest) ([]byte, int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &buf)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

func (c *ChatCompletionClient) record(ctx context.Context, outcome string, elapsed time.Duration) {
	m := metrics.Get()
	attrs := metric.WithAttributes(
		attribute.String("provider", c.provider),
		attribute.String("outcome", outcome),
	)
	m.CompletionRequestsTotal.Add(ctx, 1, attrs)
	m.CompletionDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
