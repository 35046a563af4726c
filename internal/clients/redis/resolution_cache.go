package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

// ResolutionCache is a read-through cache over complete resolution
// results, keyed by the parsed key's canonical string form. Misses and
// cache errors are equivalent; the engine never depends on Redis being up.
type ResolutionCache interface {
	Get(ctx context.Context, key string) (*types.ResolveResult, bool)
	Set(ctx context.Context, key string, result *types.ResolveResult)
	Close() error
}

type resolutionCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewResolutionCache(log *logger.Logger) (ResolutionCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := 60
	if raw := strings.TrimSpace(os.Getenv("RESOLVE_CACHE_TTL_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			ttlSeconds = parsed
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &resolutionCache{
		log:    log.With("service", "RedisResolutionCache"),
		rdb:    rdb,
		prefix: "resolve:",
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func (rc *resolutionCache) Get(ctx context.Context, key string) (*types.ResolveResult, bool) {
	raw, err := rc.rdb.Get(ctx, rc.prefix+key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			rc.log.Warn("Cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var result types.ResolveResult
	if err := json.Unmarshal(raw, &result); err != nil {
		rc.log.Warn("Cache entry unreadable, dropping", "key", key, "error", err)
		_ = rc.rdb.Del(ctx, rc.prefix+key).Err()
		return nil, false
	}
	return &result, true
}

func (rc *resolutionCache) Set(ctx context.Context, key string, result *types.ResolveResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		rc.log.Warn("Cache marshal failed", "key", key, "error", err)
		return
	}
	if err := rc.rdb.Set(ctx, rc.prefix+key, raw, rc.ttl).Err(); err != nil {
		rc.log.Warn("Cache write failed", "key", key, "error", err)
	}
}

func (rc *resolutionCache) Close() error {
	return rc.rdb.Close()
}
