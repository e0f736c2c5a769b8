package llmInteraction

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewRepository(mockPool, slog.New(slog.DiscardHandler)), mockPool
}

func TestRepositoryImpl_SaveInteraction(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and inserts", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectExec("INSERT INTO llm_interactions").
			WithArgs(pgxmock.AnyArg(), "itinerary", "deepseek", "deepseek-chat", "prompt", "{}",
				"success", "", 1200, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		id, err := repo.SaveInteraction(ctx, types.LlmInteraction{
			Operation:    "itinerary",
			Provider:     "deepseek",
			ModelUsed:    "deepseek-chat",
			Prompt:       "prompt",
			ResponseText: "{}",
			Status:       types.InteractionSuccess,
			LatencyMs:    1200,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("keeps caller id", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		want := uuid.New()
		mockPool.ExpectExec("INSERT INTO llm_interactions").
			WithArgs(want, "explain", "openai", "gpt-4o", "p", "", "error", "timeout", 0, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		id, err := repo.SaveInteraction(ctx, types.LlmInteraction{
			ID:           want,
			Operation:    "explain",
			Provider:     "openai",
			ModelUsed:    "gpt-4o",
			Prompt:       "p",
			Status:       types.InteractionError,
			ErrorMessage: "timeout",
		})
		require.NoError(t, err)
		assert.Equal(t, want, id)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		dbErr := errors.New("connection reset")
		mockPool.ExpectExec("INSERT INTO llm_interactions").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(dbErr)

		_, err := repo.SaveInteraction(ctx, types.LlmInteraction{Operation: "itinerary"})
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to save llm interaction")
	})
}

func TestRepositoryImpl_ListRecent(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "operation", "provider", "model_used", "prompt", "response_text",
		"status", "error_message", "latency_ms", "created_at"}

	t.Run("scans rows", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		id := uuid.New()
		created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		mockPool.ExpectQuery("SELECT id, operation").
			WithArgs("itinerary", 5).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(id, "itinerary", "deepseek", "deepseek-chat", "p", "{}", "success", "", 900, created))

		items, err := repo.ListRecent(ctx, "itinerary", 5)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, id, items[0].ID)
		assert.Equal(t, types.InteractionSuccess, items[0].Status)
		assert.Equal(t, 900, items[0].LatencyMs)
		assert.Equal(t, created, items[0].CreatedAt)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("out of range limit is reset", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectQuery("SELECT id, operation").
			WithArgs("", 20).
			WillReturnRows(pgxmock.NewRows(columns))

		items, err := repo.ListRecent(ctx, "", 1000)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectQuery("SELECT id, operation").
			WithArgs("", 20).
			WillReturnError(errors.New("boom"))

		_, err := repo.ListRecent(ctx, "", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query llm interactions")
	})
}
