package engine

import "github.com/vanderheijden86/arbor/pkg/metrics"

// revisions counts changes to each input. Derivations key their cached
// value on the revisions they read, so a derivation recomputes only when one
// of its own inputs moved.
type revisions struct {
	nodes    uint64
	term     uint64
	open     uint64
	sort     uint64
	viewport uint64
	sizing   uint64
	measure  uint64
}

type searchKey struct{ nodes, term uint64 }

type visibleKey struct {
	searchKey
	open, sort uint64
}

type windowKey struct {
	visibleKey
	viewport, sizing, measure uint64
}

// memo caches one derived value together with the key it was computed for.
// Errors are not cached.
type memo[K comparable, V any] struct {
	key    K
	val    V
	ok     bool
	metric *metrics.CacheMetric
}

func (m *memo[K, V]) get(key K, compute func() (V, error)) (V, error) {
	if m.ok && m.key == key {
		m.metric.Hit()
		return m.val, nil
	}
	m.metric.Miss()
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	m.key, m.val, m.ok = key, v, true
	return v, nil
}
