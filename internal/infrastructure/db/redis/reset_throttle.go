package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memberdesk/accounts-api/internal/api/metrics"
)

// resetCooldown is how long an address must wait between reset emails.
const resetCooldown = 15 * time.Minute

// ResetThrottle rate-limits password reset requests per address, backed by
// Redis. Key format: reset_throttle:<email>
type ResetThrottle struct {
	client *redis.Client
}

// NewResetThrottle creates a ResetThrottle wrapping the given Redis client.
func NewResetThrottle(client *redis.Client) *ResetThrottle {
	return &ResetThrottle{client: client}
}

// Allow claims the cooldown slot for email. It returns false when a reset
// was already requested for this address within the cooldown window.
func (t *ResetThrottle) Allow(ctx context.Context, email string) (bool, error) {
	defer metrics.ObserveBackendOp("redis", "reset_throttle_allow", time.Now())

	ok, err := t.client.SetNX(ctx, t.key(email), "1", resetCooldown).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle: %w", err)
	}
	return ok, nil
}

func (t *ResetThrottle) key(email string) string {
	return fmt.Sprintf("reset_throttle:%s", email)
}
