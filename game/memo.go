package game

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Memo caches position scores by canonical key.
type Memo interface {
	// Load returns the cached score of the position, if any.
	Load(CanonicalKey) (int, bool)
	// Store caches the score of the position.
	Store(CanonicalKey, int)
	// Len returns the number of cached positions.
	Len() int
}

// MapMemo is a Memo that is private to a single search. It is not safe for
// concurrent use.
type MapMemo map[CanonicalKey]int

var _ Memo = MapMemo(nil)

// NewMapMemo creates an empty MapMemo.
func NewMapMemo() MapMemo {
	return make(MapMemo)
}

// Load implements [Memo].
func (m MapMemo) Load(k CanonicalKey) (int, bool) {
	v, ok := m[k]
	return v, ok
}

// Store implements [Memo].
func (m MapMemo) Store(k CanonicalKey, v int) {
	m[k] = v
}

// Len implements [Memo].
func (m MapMemo) Len() int {
	return len(m)
}

// SharedMemo is a Memo that is safe for concurrent use. The score of a
// position depends only on its canonical key, so a SharedMemo may be kept
// across turns and across games.
type SharedMemo struct {
	scores *xsync.MapOf[CanonicalKey, int]
}

var _ Memo = (*SharedMemo)(nil)

// NewSharedMemo creates an empty SharedMemo.
func NewSharedMemo() *SharedMemo {
	return &SharedMemo{scores: xsync.NewMapOf[CanonicalKey, int]()}
}

// Load implements [Memo].
func (m *SharedMemo) Load(k CanonicalKey) (int, bool) {
	return m.scores.Load(k)
}

// Store implements [Memo].
func (m *SharedMemo) Store(k CanonicalKey, v int) {
	m.scores.Store(k, v)
}

// Len implements [Memo].
func (m *SharedMemo) Len() int {
	return m.scores.Size()
}

// Clear drops every cached position.
func (m *SharedMemo) Clear() {
	m.scores.Clear()
}
