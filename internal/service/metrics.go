package service

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/seojin-dev/goboard/internal/cache"
)

// Cache effectiveness is only observable through latency, so count hits and
// misses per key class explicitly.
var cacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "goboard",
		Name:      "cache_requests_total",
		Help:      "Cache lookups by key class and result (hit, miss, error)",
	},
	[]string{"key_class", "result"},
)

var viewRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "goboard",
		Name:      "view_registrations_total",
		Help:      "View registration attempts by outcome (counted, deduplicated)",
	},
	[]string{"outcome"},
)

func observeCache(class string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequestsTotal.WithLabelValues(class, result).Inc()
}

func keyClass(key string) string {
	switch {
	case key == cache.PostListKey:
		return "post_list"
	case strings.HasPrefix(key, "comments:"):
		return "comment_page"
	case strings.HasPrefix(key, "view:"):
		return "view"
	default:
		return "post"
	}
}
