// page.go provides a Valkey-backed cache of published-page JSON.
// When the public read path hydrates a published page, the serialized
// rendition is stored here so subsequent requests skip the DB entirely.
// Keys are scoped by workspace so tenants never share entries.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached page renditions.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendition stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages published-page JSON caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

func pageKey(workspaceID uuid.UUID, slug string) string {
	return fmt.Sprintf("%s%s:%s", pageKeyPrefix, workspaceID, slug)
}

// Get retrieves a cached rendition. Returns false on miss or error; a
// broken cache degrades to the database, never to a request failure.
func (pc *PageCache) Get(ctx context.Context, workspaceID uuid.UUID, slug string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKey(workspaceID, slug)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "slug", slug, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "slug", slug)
	return val, true
}

// Set stores a serialized rendition with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, workspaceID uuid.UUID, slug string, payload []byte) {
	if err := pc.client.Set(ctx, pageKey(workspaceID, slug), payload, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "slug", slug, "error", err)
	}
}

// Invalidate removes a single page's rendition. It deliberately takes no
// context: invalidation runs inside service mutations that carry none,
// and a dropped delete only shortens staleness to the TTL.
func (pc *PageCache) Invalidate(workspaceID uuid.UUID, slug string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := pc.client.Del(ctx, pageKey(workspaceID, slug)).Err(); err != nil {
		slog.Warn("page cache invalidate error", "slug", slug, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "slug", slug)
}

// InvalidateWorkspace removes every cached rendition for a workspace by
// scanning for its key prefix.
func (pc *PageCache) InvalidateWorkspace(ctx context.Context, workspaceID uuid.UUID) {
	prefix := fmt.Sprintf("%s%s:", pageKeyPrefix, workspaceID)
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache cleared for workspace", "workspace_id", workspaceID, "deleted", deleted)
	}
}
