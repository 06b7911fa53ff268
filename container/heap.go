package container

// MinHeap is a 1-indexed binary heap keyed by a term id, with a parallel
// DenseMap from element to heap position so Increase (decrease-key under
// Less) and Remove both run in O(log n). heap[0] is the null element; Top
// returns it when the heap is empty. The order in which elements that less
// ranks equal come out is not defined; it is not insertion order.
type MinHeap[K Keyed] struct {
	less  func(a, b K) bool
	heap  []K
	index DenseMap[K, int]
	null  K
}

// NewMinHeap returns an empty heap ordered by less (less(a, b) == true
// means a should come out before b).
func NewMinHeap[K Keyed](less func(a, b K) bool, null K) *MinHeap[K] {
	h := &MinHeap[K]{less: less, null: null}
	h.heap = []K{null}
	return h
}

// Capacitate grows the position index so that k is a valid key.
func (h *MinHeap[K]) Capacitate(k K) { h.index.CapacitateKey(k) }

// Len returns the number of elements currently in the heap.
func (h *MinHeap[K]) Len() int { return len(h.heap) - 1 }

// Empty reports whether the heap holds no elements.
func (h *MinHeap[K]) Empty() bool { return len(h.heap) == 1 }

// Contains reports whether x is currently in the heap.
func (h *MinHeap[K]) Contains(x K) bool {
	return int(x.Id()) < h.index.Len() && h.index.Get(x) != 0
}

// Top returns the minimal element, or the null element if the heap is empty.
func (h *MinHeap[K]) Top() K {
	if h.Empty() {
		return h.null
	}
	return h.heap[1]
}

// Insert adds x to the heap. x must not already be present.
func (h *MinHeap[K]) Insert(x K) {
	i := len(h.heap)
	h.heap = append(h.heap, x)
	h.index.Set(x, i)
	h.siftUp(i)
}

// Increase restores heap order after x's key improved (decrease-key under
// less); despite the name it sifts x towards the root.
func (h *MinHeap[K]) Increase(x K) {
	h.siftUp(h.index.Get(x))
}

// Remove deletes x from the heap. x must be present.
func (h *MinHeap[K]) Remove(x K) {
	i := h.index.Get(x)
	last := len(h.heap) - 1
	h.heap[i] = h.heap[last]
	h.index.Set(h.heap[i], i)
	h.heap = h.heap[:last]
	h.index.Set(x, 0)
	if i < len(h.heap) {
		h.siftDown(i)
	}
}

// RemoveMin pops and returns the minimal element.
func (h *MinHeap[K]) RemoveMin() K {
	x := h.Top()
	h.Remove(x)
	return x
}

func left(i int) int   { return 2 * i }
func right(i int) int  { return 2*i + 1 }
func parent(i int) int { return i / 2 }

func (h *MinHeap[K]) siftUp(i int) {
	x := h.heap[i]
	for p := parent(i); p != 0 && h.less(x, h.heap[p]); p = parent(i) {
		h.heap[i] = h.heap[p]
		h.index.Set(h.heap[i], i)
		i = p
	}
	h.heap[i] = x
	h.index.Set(x, i)
}

func (h *MinHeap[K]) siftDown(i int) {
	x := h.heap[i]
	for left(i) < len(h.heap) {
		child := left(i)
		if right(i) < len(h.heap) && h.less(h.heap[right(i)], h.heap[left(i)]) {
			child = right(i)
		}
		if !h.less(h.heap[child], x) {
			break
		}
		h.heap[i] = h.heap[child]
		h.index.Set(h.heap[i], i)
		i = child
	}
	h.heap[i] = x
	h.index.Set(x, i)
}
