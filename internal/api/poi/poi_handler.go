package poi

import (
	"log/slog"
	"math"
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
	service      Service
	defaultLimit int
	logger       *slog.Logger
}

func NewHandlerImpl(service Service, defaultLimit int, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service:      service,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// GetMapPois godoc
// @Summary      Map points of interest
// @Description  Filters geotagged culture resources and optionally groups them into clusters.
// @Tags         Map
// @Produce      json
// @Param        keyword  query string false "Keyword matched against title, summary and tags"
// @Param        category query string false "scenic, relic, museum, heritage or all" default(all)
// @Param        north    query number false "Northern edge"
// @Param        south    query number false "Southern edge"
// @Param        east     query number false "Eastern edge"
// @Param        west     query number false "Western edge"
// @Param        cluster  query bool   false "Group nearby points" default(false)
// @Param        zoom     query number false "Map zoom level"
// @Param        limit    query int    false "Maximum number of points" default(500)
// @Success      200 {object} types.PoiResult
// @Failure      500 {object} api.Response
// @Router       /map/pois [get]
func (h *HandlerImpl) GetMapPois(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PoiHandler").Start(r.Context(), "GetMapPois", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/map/pois"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetMapPois"))

	result, err := h.service.QueryPOIs(ctx, h.parseQuery(r))
	if err != nil {
		l.ErrorContext(ctx, "Failed to query map POIs", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "获取地图数据失败")
		return
	}

	span.SetStatus(codes.Ok, "pois served")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// parseQuery never rejects input; unparsable values count as absent.
func (h *HandlerImpl) parseQuery(r *http.Request) types.PoiQuery {
	q := types.PoiQuery{
		Keyword:  strings.TrimSpace(r.URL.Query().Get("keyword")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Cluster:  api.QueryBool(r, "cluster", false),
	}
	if q.Category == "" {
		q.Category = categoryAll
	}

	b := types.Bounds{
		North: finite(api.QueryFloat(r, "north")),
		South: finite(api.QueryFloat(r, "south")),
		East:  finite(api.QueryFloat(r, "east")),
		West:  finite(api.QueryFloat(r, "west")),
	}
	if b.North != nil || b.South != nil || b.East != nil || b.West != nil {
		q.Bounds = &b
	}

	if z := finite(api.QueryFloat(r, "zoom")); z != nil {
		zoom := int(math.Round(math.Min(math.Max(*z, 0), maxZoom+1)))
		q.Zoom = &zoom
	}

	limit := h.defaultLimit
	if v := api.QueryInt(r, "limit"); v != nil {
		limit = *v
	}
	q.Limit = &limit
	return q
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
