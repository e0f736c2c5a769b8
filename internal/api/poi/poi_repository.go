package poi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-culture-routes/app/observability/metrics"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

var _ ContentStore = (*RepositoryImpl)(nil)

// DBTX is the subset of pgxpool.Pool used here.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ContentStore supplies the culture resources that can be placed on a map.
type ContentStore interface {
	FindAllGeotagged(ctx context.Context) ([]types.ContentRecord, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool DBTX
}

func NewRepository(pgpool DBTX, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

// FindAllGeotagged returns every resource that has both coordinates, ordered by id.
func (r *RepositoryImpl) FindAllGeotagged(ctx context.Context) ([]types.ContentRecord, error) {
	ctx, span := otel.Tracer("PoiRepo").Start(ctx, "FindAllGeotagged", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "culture_resources"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "FindAllGeotagged"))

	query := `
        SELECT id, title, COALESCE(description, ''), COALESCE(cover, ''), COALESCE(region, ''),
               tags, type, lat, lng, views, favorites
        FROM culture_resources
        WHERE lat IS NOT NULL AND lng IS NOT NULL
        ORDER BY id
    `
	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		observe(ctx, "find_geotagged_resources", start, err)
		l.ErrorContext(ctx, "Failed to query geotagged resources", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query geotagged resources: %w", err)
	}
	defer rows.Close()

	var records []types.ContentRecord
	for rows.Next() {
		var rec types.ContentRecord
		var contentType string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Cover, &rec.Region,
			&rec.Tags, &contentType, &rec.Lat, &rec.Lng, &rec.Views, &rec.Favorites); err != nil {
			observe(ctx, "find_geotagged_resources", start, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			return nil, fmt.Errorf("failed to scan culture resource: %w", err)
		}
		rec.Type = types.ContentType(contentType)
		records = append(records, rec)
	}
	err = rows.Err()
	observe(ctx, "find_geotagged_resources", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rows error")
		return nil, fmt.Errorf("error iterating culture resources: %w", err)
	}

	l.DebugContext(ctx, "Loaded geotagged resources", slog.Int("count", len(records)))
	span.SetAttributes(attribute.Int("results.count", len(records)))
	span.SetStatus(codes.Ok, "resources loaded")
	return records, nil
}

func observe(ctx context.Context, query string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("query", query))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
