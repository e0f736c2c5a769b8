package llmInteraction

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

// InteractionRecorder persists completion calls. Implementations must not fail the caller.
type InteractionRecorder interface {
	Record(ctx context.Context, interaction types.LlmInteraction)
}

var _ InteractionRecorder = (*Recorder)(nil)

// Recorder saves interactions in the background so a slow database never delays a response.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record returns immediately. The write runs with its own deadline and request cancellation
// does not abort it.
func (r *Recorder) Record(ctx context.Context, interaction types.LlmInteraction) {
	ctx = context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.save(ctx, interaction)
	}()
}

// Wait blocks until every pending write has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) save(ctx context.Context, interaction types.LlmInteraction) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	id, err := r.repo.SaveInteraction(ctx, interaction)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to record llm interaction",
			slog.String("operation", interaction.Operation),
			slog.Any("error", err))
		return
	}
	r.logger.DebugContext(ctx, "Recorded llm interaction",
		slog.String("id", id.String()),
		slog.String("operation", interaction.Operation),
		slog.String("status", string(interaction.Status)))
}

// NopRecorder drops interactions; used when no database is wired.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, types.LlmInteraction) {}
