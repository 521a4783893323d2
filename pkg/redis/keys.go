package redis

import "strings"

// Keys are "ez:<kind>:<scope>[:<id>]"; empty segments are dropped.
const (
	keyNamespace     = "ez"
	kindIdempotency  = "idempotency"
	kindRateLimit    = "rate_limit"
	keySegmentJoiner = ":"
)

// IdempotencyKey returns the key holding a recorded response.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(kindIdempotency, scope, id)
}

// RateLimitKey returns the window counter key for scope.
func (c *Client) RateLimitKey(scope string) string {
	return buildKey(kindRateLimit, scope)
}

func buildKey(kind string, segments ...string) string {
	parts := make([]string, 0, len(segments)+2)
	parts = append(parts, keyNamespace, kind)
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, keySegmentJoiner)
}
