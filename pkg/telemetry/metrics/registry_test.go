package metrics

import (
	"errors"
	"testing"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
)

func newTestRegistry() *Registry {
	return NewRegistry(config.MetricsConfig{Enabled: true}, nil)
}

func TestRegistryReturnsSameInstanceForSameIdentity(t *testing.T) {
	r := newTestRegistry()

	first := r.Counter("http_requests_total", "Total requests", map[string]string{"route": "/api/courses"})
	second := r.Counter("http_requests_total", "Total requests", map[string]string{"route": "/api/courses"})

	if first != second {
		t.Fatal("same name and labels returned two counter instances")
	}

	first.Add()
	if second.Value() != 1 {
		t.Errorf("shared counter value = %v, want 1", second.Value())
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistryLabelOrderDoesNotMatter(t *testing.T) {
	r := newTestRegistry()

	a := r.Counter("cache_hits_total", "", map[string]string{"tier": "l1", "node": "a"})
	b := r.Counter("cache_hits_total", "", map[string]string{"node": "a", "tier": "l1"})

	if a != b {
		t.Error("label insertion order changed metric identity")
	}
}

func TestRegistryDistinctLabelsDistinctInstances(t *testing.T) {
	r := newTestRegistry()

	a := r.Counter("http_requests_total", "", map[string]string{"route": "/api/courses"})
	b := r.Counter("http_requests_total", "", map[string]string{"route": "/api/users"})

	if a == b {
		t.Fatal("different label values shared one instance")
	}

	a.Add()
	if b.Value() != 0 {
		t.Errorf("sibling series value = %v, want 0", b.Value())
	}
}

func TestRegistryTypeMismatchReturnsDetachedMetric(t *testing.T) {
	r := newTestRegistry()

	r.Counter("requests", "", nil)
	g := r.Gauge("requests", "", nil)

	g.Set(42)

	// The detached gauge works but is not registered; the counter keeps
	// its identity.
	if r.Len() != 1 {
		t.Errorf("Len() after mismatch = %d, want 1", r.Len())
	}
	if _, ok := r.Get("requests", nil).(*Counter); !ok {
		t.Error("registered metric is no longer the original counter")
	}
	if g.Value() != 42 {
		t.Errorf("detached gauge value = %v, want 42", g.Value())
	}
}

func TestCounterRejectsNegativeIncrement(t *testing.T) {
	r := newTestRegistry()
	c := r.Counter("jobs_total", "", nil)

	if err := c.Inc(5); err != nil {
		t.Fatalf("Inc(5) error = %v", err)
	}

	err := c.Inc(-1)
	if !errors.Is(err, ErrNegativeIncrement) {
		t.Fatalf("Inc(-1) error = %v, want %v", err, ErrNegativeIncrement)
	}
	if c.Value() != 5 {
		t.Errorf("value after rejected decrement = %v, want 5", c.Value())
	}
}

func TestGaugeMovesBothDirections(t *testing.T) {
	r := newTestRegistry()
	g := r.Gauge("active_connections", "", nil)

	g.Set(10)
	g.Inc(5)
	g.Dec(12)

	if g.Value() != 3 {
		t.Errorf("value = %v, want 3", g.Value())
	}
}

func TestRegistryEachVisitsEveryMetric(t *testing.T) {
	r := newTestRegistry()
	r.Counter("a_total", "", nil)
	r.Gauge("b", "", nil)
	r.Histogram("c_seconds", "", nil, nil)

	var visited int
	r.Each(func(m Metric) { visited++ })
	if visited != 3 {
		t.Errorf("Each visited %d metrics, want 3", visited)
	}
}
