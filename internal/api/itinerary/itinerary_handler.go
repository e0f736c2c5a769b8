package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-culture-routes/internal/api"
	generativeAI "github.com/FACorreiaa/go-culture-routes/internal/api/generative_ai"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const maxTripDays = 30

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

// GenerateRoute godoc
// @Summary      Generate a travel route
// @Description  Builds a day-by-day itinerary from the traveller's preferences.
// @Tags         Routes
// @Accept       json
// @Produce      json
// @Param        request body types.TripPreferences true "Trip preferences"
// @Success      200 {object} types.ItineraryPlan
// @Failure      400 {object} api.Response "Invalid request"
// @Failure      429 {object} api.Response "Too many requests"
// @Failure      502 {object} api.Response "AI provider error"
// @Failure      504 {object} api.Response "AI provider timeout"
// @Router       /routes/generate [post]
func (h *HandlerImpl) GenerateRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateRoute", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/routes/generate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateRoute"))

	var prefs types.TripPreferences
	if err := api.DecodeJSONBody(w, r, &prefs); err != nil {
		l.WarnContext(ctx, "Invalid route request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePreferences(prefs); err != nil {
		span.SetStatus(codes.Error, "invalid preferences")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.Int("trip.duration", prefs.Duration))

	plan, err := h.service.SynthesizeItinerary(ctx, prefs)
	if err != nil {
		status, msg := errorStatus(err)
		l.ErrorContext(ctx, "Failed to generate route", slog.Any("error", err), slog.Int("status", status))
		span.RecordError(err)
		span.SetStatus(codes.Error, "route generation failed")
		api.ErrorResponse(w, r, status, msg)
		return
	}

	span.SetStatus(codes.Ok, "route generated")
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

func validatePreferences(p types.TripPreferences) error {
	if p.Duration < 1 || p.Duration > maxTripDays {
		return fmt.Errorf("duration must be between 1 and %d days", maxTripDays)
	}
	if p.PeopleCount < 0 {
		return errors.New("peopleCount must not be negative")
	}
	return nil
}

// errorStatus maps synthesis failures onto HTTP statuses and user-facing messages.
func errorStatus(err error) (int, string) {
	var (
		perr *generativeAI.ProviderHTTPError
		nerr *generativeAI.NetworkError
		ferr *ResponseFormatError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "请求已取消"
	case errors.As(err, &perr):
		if perr.Kind == generativeAI.KindRateLimited {
			return http.StatusTooManyRequests, perr.Cause
		}
		return http.StatusBadGateway, perr.Cause
	case errors.As(err, &nerr):
		if nerr.Timeout {
			return http.StatusGatewayTimeout, "AI服务响应超时，请稍后重试。"
		}
		return http.StatusBadGateway, "无法连接AI服务，请检查网络连接。"
	case errors.Is(err, generativeAI.ErrEmptyResponse):
		return http.StatusBadGateway, "AI服务返回了空响应，请稍后重试。"
	case errors.As(err, &ferr):
		return http.StatusBadGateway, ferr.Error()
	default:
		return http.StatusInternalServerError, "生成路线失败，请稍后重试。"
	}
}
