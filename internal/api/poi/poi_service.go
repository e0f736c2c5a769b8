package poi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-culture-routes/app/observability/metrics"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service serves the map view of culture resources.
type Service interface {
	QueryPOIs(ctx context.Context, q types.PoiQuery) (*types.PoiResult, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	store  ContentStore
}

func NewServiceImpl(store ContentStore, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		store:  store,
	}
}

// QueryPOIs filters the geotagged resources and optionally groups them into
// grid clusters. Stats and Total always describe the whole dataset. Clusters
// are computed over every filtered point; the returned point list holds the
// filtered points that were not absorbed into a cluster, cut to Limit.
func (s *ServiceImpl) QueryPOIs(ctx context.Context, q types.PoiQuery) (*types.PoiResult, error) {
	ctx, span := otel.Tracer("PoiService").Start(ctx, "QueryPOIs", trace.WithAttributes(
		attribute.String("poi.keyword", q.Keyword),
		attribute.String("poi.category", q.Category),
		attribute.Bool("poi.cluster", q.Cluster),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "QueryPOIs"))
	start := time.Now()

	records, err := s.store.FindAllGeotagged(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load geotagged resources", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return nil, fmt.Errorf("failed to load map resources: %w", err)
	}

	all := make([]mappedPoint, 0, len(records))
	for _, rec := range records {
		if p, ok := toPoint(rec); ok {
			all = append(all, p)
		}
	}

	stats := make(map[string]int, len(types.AllCategories)+1)
	for _, c := range types.AllCategories {
		stats[string(c)] = 0
	}
	for _, p := range all {
		stats[string(p.Category)]++
	}
	stats["total"] = len(all)

	fs := buildFilters(q)
	filtered := make([]mappedPoint, 0, len(all))
	for _, p := range all {
		if matchesAll(p, fs) {
			filtered = append(filtered, p)
		}
	}

	clusters := []types.PoiCluster{}
	absorbed := map[int64]struct{}{}
	if q.Cluster {
		clusters, absorbed = buildClusters(filtered, q.Zoom)
	}

	limit := 0
	if q.Limit != nil && *q.Limit > 0 {
		limit = *q.Limit
	}
	pois := make([]types.GeoPoint, 0, len(filtered))
	for _, p := range filtered {
		if _, ok := absorbed[p.ID]; ok {
			continue
		}
		if limit > 0 && len(pois) >= limit {
			break
		}
		pois = append(pois, p.GeoPoint)
	}

	metrics.Get().PoiQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.Bool("clustered", q.Cluster)))

	span.SetAttributes(
		attribute.Int("poi.total", len(all)),
		attribute.Int("poi.filtered", len(filtered)),
		attribute.Int("poi.clusters", len(clusters)),
	)
	span.SetStatus(codes.Ok, "pois resolved")
	l.DebugContext(ctx, "POI query served",
		slog.Int("total", len(all)),
		slog.Int("filtered", len(filtered)),
		slog.Int("clusters", len(clusters)))

	return &types.PoiResult{
		Pois:      pois,
		Clusters:  clusters,
		Stats:     stats,
		Total:     len(all),
		Filtered:  len(filtered),
		Clustered: q.Cluster,
	}, nil
}

// toPoint projects a stored record onto the map. Records missing a coordinate
// are not mappable.
func toPoint(rec types.ContentRecord) (mappedPoint, bool) {
	if rec.Lat == nil || rec.Lng == nil {
		return mappedPoint{}, false
	}
	contentType := "culture"
	if rec.Type != "" {
		contentType = strings.ToLower(string(rec.Type))
	}
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	return mappedPoint{
		GeoPoint: types.GeoPoint{
			ID:          rec.ID,
			OriginRefID: rec.ID,
			OriginType:  types.OriginTypeCulture,
			ContentType: contentType,
			Category:    ResolveCategory(rec),
			Title:       rec.Title,
			Lat:         *rec.Lat,
			Lng:         *rec.Lng,
			Region:      rec.Region,
			Cover:       rec.Cover,
			Tags:        tags,
			Summary:     rec.Description,
			Views:       rec.Views,
			Favorites:   rec.Favorites,
		},
		loc: orb.Point{*rec.Lng, *rec.Lat},
	}, true
}
