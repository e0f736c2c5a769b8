package llmInteraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-culture-routes/app/observability/metrics"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// DBTX is the subset of pgxpool.Pool used here.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository interface {
	SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error)
	ListRecent(ctx context.Context, operation string, limit int) ([]types.LlmInteraction, error)
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

func (r *RepositoryImpl) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error) {
	ctx, span := otel.Tracer("LlmInteractionRepo").Start(ctx, "SaveInteraction", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "llm_interactions"),
		attribute.String("llm.operation", interaction.Operation),
	))
	defer span.End()

	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO llm_interactions (
            id, operation, provider, model_used, prompt, response_text,
            status, error_message, latency_ms, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	start := time.Now()
	_, err := r.pgpool.Exec(ctx, query,
		interaction.ID, interaction.Operation, interaction.Provider, interaction.ModelUsed,
		interaction.Prompt, interaction.ResponseText, string(interaction.Status),
		interaction.ErrorMessage, interaction.LatencyMs, interaction.CreatedAt,
	)
	observe(ctx, "insert_llm_interaction", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return uuid.Nil, fmt.Errorf("failed to save llm interaction: %w", err)
	}

	span.SetStatus(codes.Ok, "interaction saved")
	return interaction.ID, nil
}

// ListRecent returns the newest interactions first. An empty operation matches all.
func (r *RepositoryImpl) ListRecent(ctx context.Context, operation string, limit int) ([]types.LlmInteraction, error) {
	ctx, span := otel.Tracer("LlmInteractionRepo").Start(ctx, "ListRecent", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "llm_interactions"),
	))
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
        SELECT id, operation, provider, model_used, prompt, COALESCE(response_text, ''),
               status, COALESCE(error_message, ''), latency_ms, created_at
        FROM llm_interactions
        WHERE ($1 = '' OR operation = $1)
        ORDER BY created_at DESC
        LIMIT $2
    `
	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, operation, limit)
	if err != nil {
		observe(ctx, "list_llm_interactions", start, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query llm interactions: %w", err)
	}
	defer rows.Close()

	var out []types.LlmInteraction
	for rows.Next() {
		var it types.LlmInteraction
		var status string
		if err := rows.Scan(&it.ID, &it.Operation, &it.Provider, &it.ModelUsed, &it.Prompt,
			&it.ResponseText, &status, &it.ErrorMessage, &it.LatencyMs, &it.CreatedAt); err != nil {
			observe(ctx, "list_llm_interactions", start, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			return nil, fmt.Errorf("failed to scan llm interaction: %w", err)
		}
		it.Status = types.InteractionStatus(status)
		out = append(out, it)
	}
	err = rows.Err()
	observe(ctx, "list_llm_interactions", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rows error")
		return nil, fmt.Errorf("error iterating llm interactions: %w", err)
	}

	span.SetStatus(codes.Ok, "interactions listed")
	return out, nil
}

func observe(ctx context.Context, query string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("query", query))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
