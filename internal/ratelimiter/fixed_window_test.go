package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindowLimiter(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("10.0.0.1"); !ok {
			t.Fatalf("request %d under the limit was rejected", i+1)
		}
	}

	ok, retry := rl.Allow("10.0.0.1")
	if ok {
		t.Fatalf("request over the limit was allowed")
	}
	if retry != time.Minute {
		t.Fatalf("unexpected retry-after: %v", retry)
	}

	// A different client has its own counter.
	if ok, _ := rl.Allow("10.0.0.2"); !ok {
		t.Fatalf("independent client was rejected")
	}
}
