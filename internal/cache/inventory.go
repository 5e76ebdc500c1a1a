package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Key families, also used as metric labels.
const (
	FamilyFeed     = "feed"
	FamilyMetadata = "metadata"
)

const (
	FeedKeyPrefix     = "feed:anon:%s:%d"
	FeedKeyPattern    = "feed:anon:*"
	MetadataKeyPrefix = "metadata:og:%s"
)

const (
	// DefaultFeedTTL applies when FEED_CACHE_TTL_SECONDS is unset.
	DefaultFeedTTL = 30 * time.Second
	MetadataTTL    = 24 * time.Hour
)

// FeedKey is the cache key of the anonymous feed for a sort mode and page size.
func FeedKey(sort string, limit int) string {
	return fmt.Sprintf(FeedKeyPrefix, sort, limit)
}

// MetadataKey is the cache key of a scraped page image.
func MetadataKey(pageURL string) string {
	return fmt.Sprintf(MetadataKeyPrefix, strings.TrimSpace(pageURL))
}

// Invalidate deletes a single key.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateFeed drops every cached anonymous feed page.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, FeedKeyPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
