// Package container provides the array-indexed containers the solver core
// is built on: DenseMap and DenseSet key values by a term's small integer
// id instead of hashing, and MinHeap is a 1-indexed binary heap with
// index-tracked decrease-key. All three grow on demand via Capacitate and
// are trivial to clone (they hold nothing but slices).
package container

// Keyed is implemented by any term identifier that can be used as a dense
// key: Fun, Name and Lit all satisfy it. comparable lets DenseSet recover
// "is this slot's stored key actually k" without a separate presence bit.
type Keyed interface {
	comparable
	Id() uint32
}

// DenseMap is a growable array indexed by K.Id(). Reading an index beyond
// the current capacity returns the null value; Set and Capacitate grow it.
type DenseMap[K Keyed, V any] struct {
	items []V
	null  V
}

// NewDenseMap returns an empty DenseMap whose absent slots read as null.
func NewDenseMap[K Keyed, V any](null V) *DenseMap[K, V] {
	return &DenseMap[K, V]{null: null}
}

// Capacitate grows the map so that index i is valid, filling new slots with
// the configured null value.
func (m *DenseMap[K, V]) Capacitate(i int) {
	if i < len(m.items) {
		return
	}
	grown := make([]V, i+1)
	copy(grown, m.items)
	for j := len(m.items); j <= i; j++ {
		grown[j] = m.null
	}
	m.items = grown
}

// CapacitateKey grows the map so that k is a valid key.
func (m *DenseMap[K, V]) CapacitateKey(k K) { m.Capacitate(int(k.Id())) }

// Len returns the current capacity (not the number of non-null entries).
func (m *DenseMap[K, V]) Len() int { return len(m.items) }

// Get returns the value at k, or the null value if k is out of range.
func (m *DenseMap[K, V]) Get(k K) V {
	i := int(k.Id())
	if i >= len(m.items) {
		return m.null
	}
	return m.items[i]
}

// Set stores v at k, growing the map first if necessary.
func (m *DenseMap[K, V]) Set(k K, v V) {
	m.CapacitateKey(k)
	m.items[k.Id()] = v
}

// Clone returns an independent copy of m.
func (m *DenseMap[K, V]) Clone() *DenseMap[K, V] {
	c := &DenseMap[K, V]{null: m.null, items: make([]V, len(m.items))}
	copy(c.items, m.items)
	return c
}

// SetAt stores v at raw index i directly, growing the map first if
// necessary. Used by callers that already hold the index (from ForEach)
// and don't want to reconstruct a K just to call Set.
func (m *DenseMap[K, V]) SetAt(i int, v V) {
	m.Capacitate(i)
	m.items[i] = v
}

// ForEach calls fn with every index and its stored value, in id order.
// DenseMap itself tracks no presence bit; callers that need "is this slot
// meaningful" compare against the null value or pair the map with a
// DenseSet.
func (m *DenseMap[K, V]) ForEach(fn func(i int, v V)) {
	for i, v := range m.items {
		fn(i, v)
	}
}

// DenseSet stores k at index k.Id() iff present, using K's zero value as
// the absent marker (valid because every Keyed type in this module — Fun,
// Name, Lit — reserves id 0 as its null sentinel, which is also the Go
// zero value). This lets At(i) recover the key stored at a raw id rather
// than just a presence bit, which CandidateName needs to scan a sort's
// name space by id.
type DenseSet[K Keyed] struct {
	items []K
}

// NewDenseSet returns an empty DenseSet.
func NewDenseSet[K Keyed]() *DenseSet[K] {
	return &DenseSet[K]{}
}

// Capacitate grows the set so that index i is valid.
func (s *DenseSet[K]) Capacitate(i int) {
	if i < len(s.items) {
		return
	}
	grown := make([]K, i+1)
	copy(grown, s.items)
	s.items = grown
}

// Len returns the set's current capacity (one past the highest id ever
// capacitated for), matching the original's upper_bound().
func (s *DenseSet[K]) Len() int { return len(s.items) }

// At returns the key stored at raw id i, or the zero value if i is absent
// or out of range.
func (s *DenseSet[K]) At(i int) K {
	if i < 0 || i >= len(s.items) {
		var zero K
		return zero
	}
	return s.items[i]
}

// Contains reports whether k was inserted and not since removed.
func (s *DenseSet[K]) Contains(k K) bool {
	i := int(k.Id())
	return i < len(s.items) && k.Id() != 0 && s.items[i] == k
}

// Insert adds k to the set.
func (s *DenseSet[K]) Insert(k K) {
	s.Capacitate(int(k.Id()))
	s.items[k.Id()] = k
}

// Remove removes k from the set.
func (s *DenseSet[K]) Remove(k K) {
	if i := int(k.Id()); i < len(s.items) {
		var zero K
		s.items[i] = zero
	}
}
