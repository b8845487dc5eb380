package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestResetThrottle_AllowOncePerWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	throttle := NewResetThrottle(client)
	ctx := context.Background()

	ok, err := throttle.Allow(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !ok {
		t.Fatalf("first request should be allowed")
	}

	ok, err = throttle.Allow(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatalf("second request within the window should be throttled")
	}

	// A different address is unaffected.
	ok, err = throttle.Allow(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !ok {
		t.Fatalf("other addresses should not share the window")
	}

	// The window expires.
	mr.FastForward(resetCooldown)
	ok, err = throttle.Allow(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !ok {
		t.Fatalf("request after the window should be allowed again")
	}
}
