package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glyphtools/pkg/cache"
	"github.com/matzehuels/glyphtools/pkg/media"
	"github.com/matzehuels/glyphtools/pkg/observability"
)

// Runner executes pipeline operations with caching.
//
// The Runner is stateless except for its collaborators, so multiple
// goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Media  *media.Tool
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses DefaultKeyer and a nil tool runs ffmpeg and ffprobe from PATH.
func NewRunner(c cache.Cache, keyer cache.Keyer, tool *media.Tool, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if tool == nil {
		tool = media.New(logger)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Media:  tool,
		Logger: logger,
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cacheGet reports hits and misses to the cache hooks. Backend errors count
// as misses.
func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// warn logs msg at warning level and records it on the result.
func warn(logger *log.Logger, warnings *[]string, msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
	*warnings = append(*warnings, msg)
}
