package explain

import (
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-culture-routes/internal/api"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// Explain godoc
// @Summary      Explain a culture topic
// @Description  Produces a guided explanation of a topic or exhibit. Falls back to a local explanation when the AI provider is unavailable.
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        request body types.CultureExplainRequest true "Topic to explain"
// @Success      200 {object} types.CultureExplanation
// @Failure      400 {object} api.Response
// @Failure      429 {object} api.Response
// @Router       /ai/explain [post]
func (h *HandlerImpl) Explain(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ExplainHandler").Start(r.Context(), "Explain", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/ai/explain"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Explain"))

	var req types.CultureExplainRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid explain request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" && strings.TrimSpace(req.Context) == "" && strings.TrimSpace(req.ImageURL) == "" {
		span.SetStatus(codes.Error, "empty request")
		api.ErrorResponse(w, r, http.StatusBadRequest, "query, context or imageUrl is required")
		return
	}

	exp, err := h.service.Explain(ctx, req)
	if err != nil {
		l.WarnContext(ctx, "Explanation aborted", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "explain aborted")
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, "请求已取消")
		return
	}

	span.SetStatus(codes.Ok, "explanation served")
	api.WriteJSONResponse(w, r, http.StatusOK, exp)
}
