package llmInteraction

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-culture-routes/internal/api"
)

type HandlerImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{repo: repo, logger: logger}
}

// ListInteractions serves GET /api/v1/ai/interactions?operation=&limit=
func (h *HandlerImpl) ListInteractions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LlmInteractionHandler").Start(r.Context(), "ListInteractions", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/ai/interactions"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListInteractions"))

	operation := r.URL.Query().Get("operation")
	limit := 20
	if v := api.QueryInt(r, "limit"); v != nil {
		limit = *v
	}

	items, err := h.repo.ListRecent(ctx, operation, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list llm interactions", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list AI interactions")
		return
	}

	span.SetStatus(codes.Ok, "interactions listed")
	api.WriteJSONResponse(w, r, http.StatusOK, items)
}
