// Package window computes which visible rows need to be materialized for a
// scroll position. Rows have a fixed default height that individual rows can
// override once their real size is measured.
package window

import (
	"sort"

	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// Sizing configures windowing.
type Sizing struct {
	// Enabled turns windowing on. Collections below Threshold rows are
	// still rendered in full.
	Enabled   bool
	Threshold int
	// ItemHeight is the size of a row that has not been measured.
	ItemHeight int
	// Overscan is the number of extra rows kept on each side.
	Overscan int
	// ContainerHeight is used when a viewport does not carry a height.
	ContainerHeight int
}

// DefaultSizing returns windowing disabled, a 50 row threshold, 32 unit rows,
// 5 rows of overscan and a 600 unit container.
func DefaultSizing() Sizing {
	return Sizing{
		Threshold:       50,
		ItemHeight:      32,
		Overscan:        5,
		ContainerHeight: 600,
	}
}

// Active reports whether a collection of n rows is windowed. When it is not,
// the host renders every row.
func Active(s Sizing, n int) bool {
	return s.Enabled && n >= s.Threshold
}

func (s Sizing) itemHeight() int {
	if s.ItemHeight > 0 {
		return s.ItemHeight
	}
	return 1
}

// Viewport is the visible region of the scroll container.
type Viewport struct {
	ScrollOffset int
	// Height of the container; 0 means Sizing.ContainerHeight.
	Height int
}

// Item is one materialized row.
type Item struct {
	Index  int
	Key    model.ID
	Entry  model.Entry
	Offset int
	Size   int
}

// Window is the slice of rows to render. EndIndex is inclusive; an empty
// collection yields StartIndex 0 and EndIndex -1.
type Window struct {
	StartIndex  int
	EndIndex    int
	Items       []Item
	TotalExtent int
}

// Len returns the number of materialized rows.
func (w Window) Len() int { return len(w.Items) }

// Virtualizer keeps the offset table between computations so a change near
// the end of a long list does not recompute offsets for the rows above it.
// Measured sizes are keyed by node id and survive while the row is hidden
// under a closed container; Prune drops them once the id leaves the
// snapshot. A Virtualizer is not safe for concurrent use.
type Virtualizer struct {
	sizing   Sizing
	keys     []model.ID
	sizes    []int
	offsets  []int // len(keys)+1; offsets[i] is the start of row i
	measured map[model.ID]int
}

// NewVirtualizer returns an empty virtualizer.
func NewVirtualizer(s Sizing) *Virtualizer {
	return &Virtualizer{sizing: s, offsets: []int{0}, measured: make(map[model.ID]int)}
}

// Sizing returns the current sizing.
func (v *Virtualizer) Sizing() Sizing { return v.sizing }

// SetSizing replaces the sizing. A new default row height invalidates the
// offset table; measured sizes are kept.
func (v *Virtualizer) SetSizing(s Sizing) {
	if s.itemHeight() != v.sizing.itemHeight() {
		v.keys, v.sizes, v.offsets = nil, nil, []int{0}
	}
	v.sizing = s
}

// Measure records the real size of a row. A size of zero or less forgets the
// measurement. It reports whether anything changed.
func (v *Virtualizer) Measure(id model.ID, size int) bool {
	if size <= 0 {
		if _, ok := v.measured[id]; !ok {
			return false
		}
		delete(v.measured, id)
		return true
	}
	if v.measured[id] == size {
		return false
	}
	v.measured[id] = size
	return true
}

// Measured returns the recorded size of id.
func (v *Virtualizer) Measured(id model.ID) (int, bool) {
	s, ok := v.measured[id]
	return s, ok
}

// Prune forgets the measurements of ids for which present reports false. It
// reports whether anything was dropped.
func (v *Virtualizer) Prune(present func(model.ID) bool) bool {
	dropped := false
	for id := range v.measured {
		if !present(id) {
			delete(v.measured, id)
			dropped = true
		}
	}
	return dropped
}

func (v *Virtualizer) sizeOf(id model.ID) int {
	if s, ok := v.measured[id]; ok {
		return s
	}
	return v.sizing.itemHeight()
}

// update brings the offset table in line with entries, recomputing from the
// first row whose key or size changed.
func (v *Virtualizer) update(entries []model.Entry) {
	n := len(entries)
	first := min(n, len(v.keys))
	for i := 0; i < first; i++ {
		id := entries[i].Node.ID
		if v.keys[i] != id || v.sizes[i] != v.sizeOf(id) {
			first = i
			break
		}
	}
	if first == n && n == len(v.keys) {
		return
	}

	v.keys = append(v.keys[:first], make([]model.ID, n-first)...)
	v.sizes = append(v.sizes[:first], make([]int, n-first)...)
	v.offsets = append(v.offsets[:first+1], make([]int, n-first)...)
	for i := first; i < n; i++ {
		id := entries[i].Node.ID
		v.keys[i] = id
		v.sizes[i] = v.sizeOf(id)
		v.offsets[i+1] = v.offsets[i] + v.sizes[i]
	}
}

// Compute returns the window of entries to render for vp. Out of range
// scroll offsets are clamped; it never fails.
func (v *Virtualizer) Compute(entries []model.Entry, vp Viewport) Window {
	defer metrics.Timer(metrics.Window)()

	v.update(entries)
	n := len(entries)
	total := v.offsets[n]
	if n == 0 {
		return Window{StartIndex: 0, EndIndex: -1}
	}

	height := vp.Height
	if height <= 0 {
		height = v.sizing.ContainerHeight
	}
	if height <= 0 {
		height = v.sizing.itemHeight()
	}
	scroll := max(0, min(vp.ScrollOffset, total-height))

	// First row whose end lies past the scroll offset, last row starting
	// before the bottom edge.
	first := sort.Search(n, func(i int) bool { return v.offsets[i+1] > scroll })
	last := sort.Search(n, func(i int) bool { return v.offsets[i] >= scroll+height }) - 1
	first = min(first, n-1)
	last = max(last, first)

	over := max(0, v.sizing.Overscan)
	start := max(0, first-over)
	end := min(n-1, last+over)

	items := make([]Item, 0, end-start+1)
	for i := start; i <= end; i++ {
		items = append(items, Item{
			Index:  i,
			Key:    v.keys[i],
			Entry:  entries[i],
			Offset: v.offsets[i],
			Size:   v.sizes[i],
		})
	}
	return Window{StartIndex: start, EndIndex: end, Items: items, TotalExtent: total}
}

// Compute is a one-shot window computation without retained measurements.
func Compute(entries []model.Entry, s Sizing, vp Viewport) Window {
	return NewVirtualizer(s).Compute(entries, vp)
}
