package poi

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

var resourceColumns = []string{
	"id", "title", "description", "cover", "region", "tags", "type", "lat", "lng", "views", "favorites",
}

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewRepository(mockPool, slog.New(slog.DiscardHandler)), mockPool
}

func fp(v float64) *float64 { return &v }

func TestRepositoryImpl_FindAllGeotagged(t *testing.T) {
	ctx := context.Background()

	t.Run("scans records", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		rows := pgxmock.NewRows(resourceColumns).
			AddRow(int64(1), "新疆博物馆", "馆藏丰富", "cover.jpg", "乌鲁木齐",
				[]string{"博物馆", "文物"}, "EXHIBIT", fp(43.82), fp(87.61), 120, 8).
			AddRow(int64(2), "交河故城", "", "", "吐鲁番",
				[]string{}, "ARTICLE", fp(42.95), fp(89.06), 40, 3)
		mockPool.ExpectQuery("SELECT id, title").WillReturnRows(rows)

		got, err := repo.FindAllGeotagged(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, types.ContentTypeExhibit, got[0].Type)
		assert.Equal(t, []string{"博物馆", "文物"}, got[0].Tags)
		require.NotNil(t, got[0].Lat)
		assert.Equal(t, 43.82, *got[0].Lat)
		assert.Equal(t, 120, got[0].Views)
		assert.Equal(t, "交河故城", got[1].Title)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectQuery("FROM culture_resources").WillReturnRows(pgxmock.NewRows(resourceColumns))

		got, err := repo.FindAllGeotagged(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectQuery("SELECT id, title").WillReturnError(errors.New("connection reset"))

		got, err := repo.FindAllGeotagged(ctx)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("row error", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		rows := pgxmock.NewRows(resourceColumns).
			AddRow(int64(1), "a", "", "", "", []string{}, "ARTICLE", fp(1), fp(1), 0, 0).
			RowError(0, errors.New("broken row"))
		mockPool.ExpectQuery("SELECT id, title").WillReturnRows(rows)

		_, err := repo.FindAllGeotagged(ctx)
		require.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
