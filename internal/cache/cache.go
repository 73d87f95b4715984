package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a shared key-value store with per-key TTL. Reads distinguish a miss
// (ok == false) from a transport failure so callers can degrade instead of
// failing the request.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// TTLs for each key class.
const (
	PostListTTL    = 60 * time.Second
	PostTTL        = 300 * time.Second
	CommentPageTTL = 180 * time.Second
	ViewTTL        = 600 * time.Second
)

// Key builders in one place so the formats don't drift across the code.
// The formats are part of the wire contract with other deployments.

const PostListKey = "posts"

func PostKey(id int64) string {
	return fmt.Sprintf("post:%d", id)
}

func CommentPageKey(postId int64, page, limit int) string {
	return fmt.Sprintf("comments:post:%d:%d:%d", postId, page, limit)
}

func ViewKey(ip, uaPrefix string, postId int64) string {
	return fmt.Sprintf("view:%s:%s:%d", ip, uaPrefix, postId)
}
