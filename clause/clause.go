// Package clause implements the ordered, normalised literal sets the SAT
// core reasons over, and the pool allocator that hands them out as stable
// integer references (cref_t in the spec).
package clause

import (
	"sort"

	"github.com/climit/limbo/term"
)

// Clause is an ordered, duplicate-free sequence of literals. After
// normalisation the first two literals are the watched positions; the
// solver swaps them in place as watchers move (§4.4), so Clause exposes
// Swap rather than forcing callers to rebuild the slice.
type Clause struct {
	lits []term.Lit
}

// Len returns the number of literals still in the clause.
func (c *Clause) Len() int { return len(c.lits) }

// Get returns the ith literal.
func (c *Clause) Get(i int) term.Lit { return c.lits[i] }

// Set overwrites the ith literal.
func (c *Clause) Set(i int, a term.Lit) { c.lits[i] = a }

// Swap exchanges the ith and jth literals, used to move watched positions.
func (c *Clause) Swap(i, j int) { c.lits[i], c.lits[j] = c.lits[j], c.lits[i] }

// First returns the literal at the first watched position.
func (c *Clause) First() term.Lit { return c.lits[0] }

// Second returns the literal at the second watched position.
func (c *Clause) Second() term.Lit { return c.lits[1] }

// Lits returns the clause's literals. Callers must not retain the slice
// across a call that might grow or shrink the clause.
func (c *Clause) Lits() []term.Lit { return c.lits }

// RemoveIf drops every literal for which pred returns true, compacting the
// remaining literals in place. Used by Init to strip root-falsified
// literals out of a clause once the initial units are known.
func (c *Clause) RemoveIf(pred func(term.Lit) bool) {
	kept := c.lits[:0]
	for _, a := range c.lits {
		if !pred(a) {
			kept = append(kept, a)
		}
	}
	c.lits = kept
}

// normalize sorts (unless alreadySorted), deduplicates, drops literals
// collapsed by subsumption, and detects tautologies (§3, §4.2).
//
// Returns the normalised literal slice and whether the clause is valid
// (tautological, hence discardable). When checkValid is false the caller
// guarantees the input cannot be a tautology (used for learnt clauses,
// which by construction are falsified by the trail at learning time and
// so can never contain a Valid pair) and the tautology scan is skipped.
func normalize(lits []term.Lit, alreadySorted, checkValid bool) (out []term.Lit, valid bool) {
	work := make([]term.Lit, len(lits))
	copy(work, lits)
	if !alreadySorted {
		sort.Slice(work, func(i, j int) bool { return term.Less(work[i], work[j]) })
	}

	// Dedup and collapse literals subsumed by an earlier one. Because work
	// is sorted by packed id, all literals of one function are contiguous,
	// so a single left-to-right pass over the tail of kept finds both
	// duplicates and subsumption without an O(n^2) scan: an inequality
	// replaces the run of kept equalities that subsume it, and an equality
	// that subsumes the last kept inequality is dropped.
	kept := work[:0]
	for _, a := range work {
		if len(kept) > 0 {
			last := kept[len(kept)-1]
			if last == a {
				continue // duplicate
			}
			if checkValid && term.Valid(last, a) {
				return nil, true
			}
			// Subsumes(x, y) means x implies y, so x is the narrower
			// literal and is the one that is redundant in a disjunction:
			// x ∨ y ≡ y. Keep the broader (subsumed) literal, drop the
			// narrower (subsuming) one.
			if last.Subsumes(a) {
				for len(kept) > 0 && kept[len(kept)-1].Subsumes(a) {
					kept = kept[:len(kept)-1]
				}
				kept = append(kept, a)
				continue
			}
			if a.Subsumes(last) {
				continue // a is redundant given last
			}
		}
		kept = append(kept, a)
	}
	if checkValid {
		// Re-check every adjacent pair of the collapsed result for a Valid
		// pair. Two equalities f=n1, f=n2 with n1 != n2 are complementary,
		// not valid, and stay; all literals sharing f sort contiguously (Fun
		// occupies the high bits), so adjacent pairs are the only candidates.
		for i := 1; i < len(kept); i++ {
			if term.Valid(kept[i-1], kept[i]) {
				return nil, true
			}
		}
	}
	return kept, false
}

// Status describes the size class of a normalised clause.
type Status int

const (
	// StatusEmpty means the clause is unsatisfiable (empty after normalisation).
	StatusEmpty Status = iota
	// StatusUnit means the clause has exactly one literal.
	StatusUnit
	// StatusMany means the clause has two or more literals.
	StatusMany
)

// StatusOf classifies a normalised literal slice.
func StatusOf(lits []term.Lit) Status {
	switch len(lits) {
	case 0:
		return StatusEmpty
	case 1:
		return StatusUnit
	default:
		return StatusMany
	}
}
