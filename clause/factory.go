package clause

import "github.com/climit/limbo/term"

// Ref is a stable reference to a pooled clause. Unlike a pointer, a Ref
// survives compaction: the factory never moves a live clause, it only
// recycles the slots of deleted ones.
type Ref int32

const (
	// NullRef is not a valid reference.
	NullRef Ref = 0
	// DomainRef is a virtual reference used as a propagation reason when a
	// literal was derived by domain propagation rather than a real clause
	// (§4.4): all other names for a function were excluded, so the last
	// remaining name is forced without any clause backing it.
	DomainRef Ref = -1
)

// Factory is a pool allocator for clauses, handing out Refs instead of
// pointers so the solver's trail and watcher lists can store a clause's
// identity without pinning its storage.
type Factory struct {
	clauses []*Clause
	learnt  []bool
	free    []Ref
}

// NewFactory returns an empty Factory. Slot 0 is reserved so Ref(0) ==
// NullRef never aliases a real clause.
func NewFactory() *Factory {
	return &Factory{clauses: []*Clause{nil}, learnt: []bool{false}}
}

// New normalises lits (sorting, deduplicating and checking for
// tautologies) and stores the result as a new clause, returning its Ref.
// It returns NullRef if the clause is valid (tautological) and so is
// discarded rather than stored.
func (f *Factory) New(lits []term.Lit) Ref {
	out, valid := normalize(lits, false, true)
	if valid {
		return NullRef
	}
	return f.store(out, false)
}

// NewLearnt stores a learnt clause without the tautology scan: a clause
// learnt from a conflict is by construction falsified by the trail at the
// moment it is derived, so it cannot contain a Valid pair. It is still
// deduplicated and subsumption-collapsed among neighbouring literals, and
// is assumed to already be in the order the caller needs (the asserting
// literal first, not literal id order), so sorting is skipped; callers
// that need id order must sort before calling.
func (f *Factory) NewLearnt(lits []term.Lit) Ref {
	out, _ := normalize(lits, true, false)
	return f.store(out, true)
}

func (f *Factory) store(lits []term.Lit, learnt bool) Ref {
	c := &Clause{lits: lits}
	if n := len(f.free); n > 0 {
		r := f.free[n-1]
		f.free = f.free[:n-1]
		f.clauses[r] = c
		f.learnt[r] = learnt
		return r
	}
	r := Ref(len(f.clauses))
	f.clauses = append(f.clauses, c)
	f.learnt = append(f.learnt, learnt)
	return r
}

// Get dereferences r. r must be a live Ref previously returned by New or
// NewLearnt; NullRef and DomainRef are not valid arguments.
func (f *Factory) Get(r Ref) *Clause {
	return f.clauses[r]
}

// IsLearnt reports whether r was stored via NewLearnt rather than New.
func (f *Factory) IsLearnt(r Ref) bool {
	return f.learnt[r]
}

// Delete recycles r's slot. r must not be referenced (as a watcher or a
// propagation reason) after this call.
func (f *Factory) Delete(r Ref) {
	f.clauses[r] = nil
	f.free = append(f.free, r)
}
