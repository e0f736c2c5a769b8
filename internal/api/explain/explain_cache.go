package explain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const cachePrefix = "explain:"

// Cache stores generated explanations. Lookups that fail are misses.
type Cache interface {
	Get(ctx context.Context, key string) (*types.CultureExplanation, bool)
	Set(ctx context.Context, key string, exp *types.CultureExplanation)
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)

type MemoryCache struct {
	store *cache.Cache
}

func NewMemoryCache(ttl, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{store: cache.New(ttl, cleanup)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*types.CultureExplanation, bool) {
	v, found := m.store.Get(key)
	if !found {
		return nil, false
	}
	exp, ok := v.(*types.CultureExplanation)
	if !ok {
		return nil, false
	}
	return cloneExplanation(exp), true
}

func (m *MemoryCache) Set(_ context.Context, key string, exp *types.CultureExplanation) {
	m.store.Set(key, cloneExplanation(exp), cache.DefaultExpiration)
}

func cloneExplanation(exp *types.CultureExplanation) *types.CultureExplanation {
	out := *exp
	out.Highlights = slices.Clone(exp.Highlights)
	out.References = slices.Clone(exp.References)
	return &out
}

// RedisCache shares explanations between instances as JSON values.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*types.CultureExplanation, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Explanation cache read failed", slog.Any("error", err))
		}
		return nil, false
	}
	var exp types.CultureExplanation
	if err := json.Unmarshal(raw, &exp); err != nil {
		c.logger.WarnContext(ctx, "Discarding undecodable cached explanation", slog.Any("error", err))
		return nil, false
	}
	return &exp, true
}

func (c *RedisCache) Set(ctx context.Context, key string, exp *types.CultureExplanation) {
	raw, err := json.Marshal(exp)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Explanation cache write failed", slog.Any("error", err))
	}
}

// cacheKey identifies a request regardless of surrounding whitespace, letter
// case of the enum fields and the order of focus points.
func cacheKey(req types.CultureExplainRequest) string {
	focus := make([]string, 0, len(req.FocusPoints))
	for _, f := range req.FocusPoints {
		if f = strings.TrimSpace(f); f != "" {
			focus = append(focus, f)
		}
	}
	slices.Sort(focus)

	normalized := types.CultureExplainRequest{
		Query:       strings.TrimSpace(req.Query),
		Context:     strings.TrimSpace(req.Context),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Audience:    strings.ToLower(strings.TrimSpace(req.Audience)),
		Tone:        strings.ToLower(strings.TrimSpace(req.Tone)),
		Length:      normalizeLength(req.Length),
		FocusPoints: focus,
	}
	raw, _ := json.Marshal(normalized)
	sum := sha256.Sum256(raw)
	return cachePrefix + hex.EncodeToString(sum[:])
}
