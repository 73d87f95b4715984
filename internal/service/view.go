package service

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/seojin-dev/goboard/internal/cache"
	"github.com/seojin-dev/goboard/internal/domain"
	"github.com/seojin-dev/goboard/internal/logger"
)

// bound the user-agent contribution to the fingerprint: keeps keys small and
// tolerates minor UA variance from the same client
const userAgentPrefixLen = 50

// Fingerprinter derives the dedup key for a viewer. Pluggable so a stronger
// identity scheme can replace IP+UA without touching the dedup algorithm.
type Fingerprinter func(ip, userAgent string, postId domain.PostId) string

// DefaultFingerprint composes client IP, a bounded user-agent prefix and the
// post id. IP alone is too coarse behind shared NAT; IP+UA is a cheap
// best-effort fingerprint that deters refresh-spam, not a determined attacker.
func DefaultFingerprint(ip, userAgent string, postId domain.PostId) string {
	// truncate on a rune boundary so a multibyte UA never leaves a split
	// rune in the cache key
	if utf8.RuneCountInString(userAgent) > userAgentPrefixLen {
		runes := []rune(userAgent)
		userAgent = string(runes[:userAgentPrefixLen])
	}
	return cache.ViewKey(ip, userAgent, postId)
}

type ViewStorage interface {
	IncrementPostViewCount(ctx context.Context, id domain.PostId) error
}

// ViewTracker gates view-count increments: one increment per fingerprint per
// TTL window. It is a rate-limited counter, not an idempotent one — after the
// window the same viewer counts again.
type ViewTracker struct {
	storage     ViewStorage
	cache       cache.Cache
	fingerprint Fingerprinter
}

func NewViewTracker(storage ViewStorage, c cache.Cache, fingerprint Fingerprinter) *ViewTracker {
	if fingerprint == nil {
		fingerprint = DefaultFingerprint
	}
	return &ViewTracker{storage, c, fingerprint}
}

// RegisterView reports whether the persisted counter was actually incremented.
func (t *ViewTracker) RegisterView(ctx context.Context, postId domain.PostId, clientIp, userAgent string) (bool, error) {
	key := t.fingerprint(clientIp, userAgent, postId)

	// a cache read failure degrades to counting the view: better an occasional
	// double count than dropping views while the cache is down
	if _, seen := cacheGet(ctx, t.cache, key); seen {
		viewRegistrationsTotal.WithLabelValues("deduplicated").Inc()
		return false, nil
	}

	if err := t.storage.IncrementPostViewCount(ctx, postId); err != nil {
		// fingerprint deliberately not written: a recorded fingerprint with a
		// lost increment would suppress retries for the whole window
		return false, err
	}

	t.patchCachedPost(ctx, postId)

	if err := t.cache.Set(ctx, key, []byte("1"), cache.ViewTTL); err != nil {
		logger.FromContext(ctx).Warn("failed to record view fingerprint", "key", key, "error", err)
	}

	viewRegistrationsTotal.WithLabelValues("counted").Inc()
	return true, nil
}

// patchCachedPost bumps view_count on the cached single-post entry in place,
// with a full fresh TTL, instead of invalidating it. The post page is hottest
// right after a view; forcing a miss there would be the worst possible trade.
func (t *ViewTracker) patchCachedPost(ctx context.Context, postId domain.PostId) {
	key := cache.PostKey(postId)
	data, ok, err := t.cache.Get(ctx, key)
	if err != nil || !ok {
		return
	}

	var post domain.Post
	if err := json.Unmarshal(data, &post); err != nil {
		logger.FromContext(ctx).Warn("dropping undecodable cache entry", "key", key)
		if err := t.cache.Del(ctx, key); err != nil {
			logger.FromContext(ctx).Warn("cache delete failed", "key", key, "error", err)
		}
		return
	}

	post.ViewCount++
	cacheSet(ctx, t.cache, key, &post, cache.PostTTL)
}
