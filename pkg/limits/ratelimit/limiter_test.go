package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
	"github.com/ayefimenko/sharklearning-sub001/pkg/limits/store"
)

// newTestLimiter builds a limiter over the in-process store with a
// controllable clock.
func newTestLimiter(cfg config.RateLimitConfig, adaptive *AdaptiveController) (*Limiter, *time.Time) {
	now := time.Now()
	l := NewLimiter(cfg, store.NewMemoryStore(), adaptive, nil)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiterAdmitsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(config.RateLimitConfig{
		MaxRequests: 5,
		Window:      time.Second,
		BurstLimit:  100,
		BurstWindow: time.Minute,
	}, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := l.Allow(ctx, "client-a")
		if err != nil {
			t.Fatalf("Allow() #%d error = %v", i+1, err)
		}
		if !d.Allowed {
			t.Fatalf("Allow() #%d denied, want admitted", i+1)
		}
		if want := 5 - i - 1; d.Remaining != want {
			t.Errorf("Allow() #%d remaining = %d, want %d", i+1, d.Remaining, want)
		}
	}

	d, err := l.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("Allow() #6 error = %v", err)
	}
	if d.Allowed {
		t.Fatal("Allow() #6 admitted, want denied")
	}
	if d.Type != DenialWindow {
		t.Errorf("Allow() #6 type = %q, want %q", d.Type, DenialWindow)
	}
	if d.RetryAfter <= 0 {
		t.Errorf("Allow() #6 retry after = %v, want positive", d.RetryAfter)
	}
}

func TestLimiterWindowReopens(t *testing.T) {
	l, now := newTestLimiter(config.RateLimitConfig{
		MaxRequests: 5,
		Window:      time.Second,
		BurstLimit:  100,
		BurstWindow: 2 * time.Second,
	}, nil)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if _, err := l.Allow(ctx, "client-a"); err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
	}

	// All six attempts, including the denied one, occupy the window.
	// Once it fully elapses the key is admitted again.
	*now = now.Add(time.Second + 10*time.Millisecond)
	d, err := l.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("Allow() after window error = %v", err)
	}
	if !d.Allowed {
		t.Fatal("Allow() after window denied, want admitted")
	}
}

func TestLimiterDeniedAttemptsConsumeSlots(t *testing.T) {
	l, now := newTestLimiter(config.RateLimitConfig{
		MaxRequests: 2,
		Window:      time.Second,
		BurstLimit:  100,
		BurstWindow: time.Minute,
	}, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := l.Allow(ctx, "client-a"); err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
	}

	// Half a window later the first two entries are still inside, so a
	// retry storm cannot sneak in early.
	*now = now.Add(500 * time.Millisecond)
	d, err := l.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if d.Allowed {
		t.Fatal("Allow() mid-window admitted, want denied")
	}
}

func TestLimiterBurstPrecedence(t *testing.T) {
	l, _ := newTestLimiter(config.RateLimitConfig{
		MaxRequests: 10000,
		Window:      15 * time.Minute,
		BurstLimit:  3,
		BurstWindow: time.Minute,
	}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "client-a")
		if err != nil {
			t.Fatalf("Allow() #%d error = %v", i+1, err)
		}
		if !d.Allowed {
			t.Fatalf("Allow() #%d denied, want admitted", i+1)
		}
	}

	d, err := l.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("Allow() #4 error = %v", err)
	}
	if d.Allowed {
		t.Fatal("Allow() #4 admitted, want burst denial despite main headroom")
	}
	if d.Type != DenialBurst {
		t.Errorf("Allow() #4 type = %q, want %q", d.Type, DenialBurst)
	}
	if d.Limit != 3 {
		t.Errorf("Allow() #4 limit = %d, want 3", d.Limit)
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(config.RateLimitConfig{
		MaxRequests: 1,
		Window:      time.Minute,
		BurstLimit:  100,
		BurstWindow: time.Minute,
	}, nil)
	ctx := context.Background()

	if d, _ := l.Allow(ctx, "client-a"); !d.Allowed {
		t.Fatal("first request for client-a denied")
	}
	if d, _ := l.Allow(ctx, "client-a"); d.Allowed {
		t.Fatal("second request for client-a admitted, want denied")
	}
	if d, _ := l.Allow(ctx, "client-b"); !d.Allowed {
		t.Fatal("first request for client-b denied, keys must not share windows")
	}
}

// erroringStore fails every operation, standing in for an unreachable
// shared backend.
type erroringStore struct{}

func (erroringStore) Slide(context.Context, string, time.Duration, time.Time) (store.WindowSample, error) {
	return store.WindowSample{}, errors.New("connection refused")
}

func (erroringStore) Peek(context.Context, string, time.Duration, time.Time) (int64, error) {
	return 0, errors.New("connection refused")
}

func (erroringStore) Reset(context.Context, string) error { return errors.New("connection refused") }
func (erroringStore) Close() error                        { return nil }

func TestLimiterFailsOpenOnStoreError(t *testing.T) {
	l := NewLimiter(config.RateLimitConfig{
		MaxRequests: 1,
		Window:      time.Second,
		BurstLimit:  1,
		BurstWindow: time.Second,
	}, erroringStore{}, nil, nil)

	for i := 0; i < 5; i++ {
		d, err := l.Allow(context.Background(), "client-a")
		if err == nil {
			t.Fatal("Allow() error = nil, want store error surfaced")
		}
		if !d.Allowed {
			t.Fatal("Allow() denied on store error, want fail-open admission")
		}
	}
}

func TestAdaptiveEffectiveLimit(t *testing.T) {
	tests := []struct {
		name      string
		heap      float64
		errorRate float64
		base      int
		want      int
	}{
		{name: "no pressure", heap: 50, errorRate: 0, base: 100, want: 100},
		{name: "high heap", heap: 85, errorRate: 0, base: 100, want: 70},
		{name: "critical heap", heap: 95, errorRate: 0, base: 100, want: 50},
		{name: "high error rate", heap: 50, errorRate: 0.2, base: 100, want: 60},
		{name: "heap and errors combine", heap: 85, errorRate: 0.2, base: 100, want: 42},
		{name: "small base combined", heap: 95, errorRate: 0.2, base: 20, want: 6},
		{name: "floor never below one", heap: 95, errorRate: 0.2, base: 3, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdaptiveController(
				func() float64 { return tt.heap },
				func() float64 { return tt.errorRate },
			)
			if got := a.EffectiveLimit(tt.base); got != tt.want {
				t.Errorf("EffectiveLimit(%d) = %d, want %d", tt.base, got, tt.want)
			}
		})
	}
}

func TestAdaptiveLimitAppliedToDecisions(t *testing.T) {
	pressure := 95.0
	adaptive := NewAdaptiveController(func() float64 { return pressure }, nil)

	l, _ := newTestLimiter(config.RateLimitConfig{
		MaxRequests: 10,
		Window:      time.Minute,
		BurstLimit:  100,
		BurstWindow: time.Minute,
		Adaptive:    true,
	}, adaptive)
	ctx := context.Background()

	// At 95% heap the effective limit is 5, so the 6th request is
	// denied despite the configured limit of 10.
	for i := 0; i < 5; i++ {
		d, err := l.Allow(ctx, "client-a")
		if err != nil {
			t.Fatalf("Allow() #%d error = %v", i+1, err)
		}
		if !d.Allowed {
			t.Fatalf("Allow() #%d denied, want admitted", i+1)
		}
	}

	d, err := l.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("Allow() #6 error = %v", err)
	}
	if d.Allowed {
		t.Fatal("Allow() #6 admitted, want denied at scaled limit")
	}
	if d.Limit != 5 {
		t.Errorf("Allow() #6 limit = %d, want 5", d.Limit)
	}

	// Pressure easing restores the configured limit for new decisions.
	pressure = 50
	if got := l.EffectiveLimit(); got != 10 {
		t.Errorf("EffectiveLimit() after easing = %d, want 10", got)
	}
}

func TestApplyConfigRaisesCeilingAtRuntime(t *testing.T) {
	cfg := config.RateLimitConfig{
		MaxRequests: 2,
		Window:      time.Minute,
		BurstLimit:  100,
		BurstWindow: time.Minute,
	}
	l, _ := newTestLimiter(cfg, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if d, _ := l.Allow(ctx, "client-a"); !d.Allowed {
			t.Fatalf("Allow() #%d denied, want admitted", i+1)
		}
	}
	if d, _ := l.Allow(ctx, "client-a"); d.Allowed {
		t.Fatal("Allow() #3 admitted, want denied under old ceiling")
	}

	cfg.MaxRequests = 10
	l.ApplyConfig(cfg)

	d, err := l.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("Allow() after ApplyConfig error = %v", err)
	}
	if !d.Allowed {
		t.Fatal("Allow() after ApplyConfig denied, want admitted")
	}
	if d.Limit != 10 {
		t.Errorf("limit = %d, want 10", d.Limit)
	}
	if l.Window() != time.Minute {
		t.Errorf("Window() = %v, want %v", l.Window(), time.Minute)
	}
}

func TestApplyConfigBackfillsDefaults(t *testing.T) {
	l, _ := newTestLimiter(config.RateLimitConfig{
		MaxRequests: 5,
		Window:      time.Second,
		BurstLimit:  5,
		BurstWindow: time.Second,
	}, nil)

	l.ApplyConfig(config.RateLimitConfig{})

	got := l.config()
	if got.MaxRequests != config.DefaultMaxRequests {
		t.Errorf("max requests = %d, want %d", got.MaxRequests, config.DefaultMaxRequests)
	}
	if got.Window != config.DefaultWindow {
		t.Errorf("window = %v, want %v", got.Window, config.DefaultWindow)
	}
}
