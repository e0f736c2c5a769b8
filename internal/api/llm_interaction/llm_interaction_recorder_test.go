package llmInteraction

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error) {
	args := m.Called(ctx, interaction)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) ListRecent(ctx context.Context, operation string, limit int) ([]types.LlmInteraction, error) {
	args := m.Called(ctx, operation, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.LlmInteraction), args.Error(1)
}

func TestRecorder_Record(t *testing.T) {
	interaction := types.LlmInteraction{Operation: "itinerary", Status: types.InteractionSuccess}

	t.Run("saves", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("SaveInteraction", mock.Anything, interaction).Return(uuid.New(), nil).Once()

		rec := NewRecorder(repo, slog.New(slog.DiscardHandler))
		rec.Record(context.Background(), interaction)
		rec.Wait()
		repo.AssertExpectations(t)
	})

	t.Run("repository errors are swallowed", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("SaveInteraction", mock.Anything, interaction).Return(uuid.Nil, errors.New("db down")).Once()

		rec := NewRecorder(repo, slog.New(slog.DiscardHandler))
		rec.Record(context.Background(), interaction)
		rec.Wait()
		repo.AssertExpectations(t)
	})

	t.Run("cancelled request still records", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("SaveInteraction", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), interaction).Return(uuid.New(), nil).Once()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rec := NewRecorder(repo, slog.New(slog.DiscardHandler))
		rec.Record(ctx, interaction)
		rec.Wait()
		repo.AssertExpectations(t)
	})

	t.Run("slow repository does not block the caller", func(t *testing.T) {
		release := make(chan time.Time)
		repo := new(MockRepository)
		repo.On("SaveInteraction", mock.Anything, interaction).
			WaitUntil(release).Return(uuid.New(), nil).Once()

		rec := NewRecorder(repo, slog.New(slog.DiscardHandler))
		start := time.Now()
		rec.Record(context.Background(), interaction)
		assert.Less(t, time.Since(start), time.Second)

		close(release)
		rec.Wait()
		repo.AssertExpectations(t)
	})
}
