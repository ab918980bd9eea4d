package metrics

import (
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 {
		t.Fatalf("count = %d, want 2", s.Count)
	}
	if s.MaxMs != 4 || s.MinMs != 2 || s.AvgMs != 3 {
		t.Errorf("unexpected stats %+v", s)
	}

	m.Reset()
	if m.Count() != 0 {
		t.Errorf("reset left count %d", m.Count())
	}
}

func TestTimerDisabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("disabled timer recorded %d samples", m.Count())
	}
}

func TestCacheMetric(t *testing.T) {
	SetEnabled(true)
	c := newCacheMetric("c")
	c.Hit()
	c.Hit()
	c.Miss()
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if s.HitRatio < 0.66 || s.HitRatio > 0.67 {
		t.Errorf("hit ratio = %f", s.HitRatio)
	}
}

func TestAllTimingStatsSkipsEmpty(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	Flatten.Record(time.Millisecond)
	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "flatten" {
		t.Errorf("AllTimingStats() = %+v", stats)
	}
	ResetAll()
}
