package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_BurstThenReject(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d rejected", i)
		}
	}
	res, _ := l.Allow(ctx, "1.2.3.4")
	if res.Allowed {
		t.Fatal("4th request should be rejected")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v", res.RetryAfter)
	}

	other, _ := l.Allow(ctx, "5.6.7.8")
	if !other.Allowed {
		t.Fatal("keys must be independent")
	}
}
