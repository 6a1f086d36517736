package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"floordwh/internal/platform/testkit"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	testkit.Swap(t, &sleep, func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	})
	return &waits
}

func TestPingWithBackoff_SucceedsAfterRetries(t *testing.T) {
	testkit.Serial(t)
	waits := noSleep(t)

	calls := 0
	err := pingWithBackoff(context.Background(), "postgres", 5, time.Second, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("starting up")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(*waits) != 2 || (*waits)[0] != backoffStart || (*waits)[1] != 2*backoffStart {
		t.Fatalf("backoff schedule = %v", *waits)
	}
}

func TestPingWithBackoff_GivesUp(t *testing.T) {
	testkit.Serial(t)
	waits := noSleep(t)

	err := pingWithBackoff(context.Background(), "clickhouse", 8, time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	if err == nil || !strings.Contains(err.Error(), "clickhouse ping failed after 8 attempts") {
		t.Fatalf("unexpected err %v", err)
	}
	if len(*waits) != 7 {
		t.Fatalf("expected 7 waits between 8 attempts, got %d", len(*waits))
	}
	for _, w := range *waits {
		if w > backoffCeiling {
			t.Fatalf("backoff exceeded ceiling: %v", w)
		}
	}
}

func TestPingWithBackoff_ParentCanceled(t *testing.T) {
	testkit.Serial(t)
	noSleep(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pingWithBackoff(ctx, "postgres", 3, time.Second, func(c context.Context) error { return c.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPingWithBackoff_Defaults(t *testing.T) {
	testkit.Serial(t)
	waits := noSleep(t)

	calls := 0
	_ = pingWithBackoff(context.Background(), "postgres", 0, 0, func(c context.Context) error {
		calls++
		if dl, ok := c.Deadline(); !ok || time.Until(dl) > defaultPingTimeout {
			t.Fatalf("ping ctx should carry the default timeout")
		}
		return errors.New("down")
	})
	if calls != defaultConnectRetries || len(*waits) != defaultConnectRetries-1 {
		t.Fatalf("calls=%d waits=%d", calls, len(*waits))
	}
}
