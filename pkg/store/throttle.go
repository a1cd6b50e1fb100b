package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResendThrottle rate-limits verification-mail resends per email address using
// Redis, so the limit holds across instances. A nil Redis client degrades to
// no throttling.
type ResendThrottle struct {
	rdb    *redis.Client
	window time.Duration
}

func NewResendThrottle(rdb *redis.Client, window time.Duration) *ResendThrottle {
	return &ResendThrottle{
		rdb:    rdb,
		window: window,
	}
}

// Allow reports whether a resend for this email may proceed, and records the
// attempt when it may.
func (t *ResendThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if t.rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("resend_throttle:%s", strings.ToLower(strings.TrimSpace(email)))
	ok, err := t.rdb.SetNX(ctx, key, time.Now().Unix(), t.window).Result()
	if err != nil {
		// Redis being down must not block legitimate resends.
		return true, err
	}
	return ok, nil
}
