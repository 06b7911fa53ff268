package solver

import (
	"github.com/climit/limbo/clause"
	"github.com/climit/limbo/term"
)

// seeSubsuming marks a, a literal falsified by the trail and now part of
// the clause being learnt, so every literal that subsumes a is skipped by
// seenSubsumed without itself being added. It suffices to mark a single
// (f,n) cell per literal added: f = n is only subsumed by f = n, and f != n
// is only subsumed by f != n and f = n' for every n' != n, and the trail
// never holds two mutually complementary literals, so marking (f,n) where n
// is a.Name() uniquely identifies everything that subsumes a (§4.5).
func (s *Solver) seeSubsuming(a term.Lit) {
	s.dataOf(a.Fun(), a.Name()).seenSubsumed = true
}

// seenSubsumed reports whether some literal subsumed by a has already been
// added to the clause being learnt.
func (s *Solver) seenSubsumed(a term.Lit) bool {
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	if s.dataOf(f, n).seenSubsumed {
		return true
	}
	return a.Pos() && !m.Null() && s.dataOf(f, m).seenSubsumed
}

// wantComplementaryOnLevel marks, among the trail literals on level l
// complementary to a, the one the backward walk should resolve on. When a
// is f = n we prefer the f != n trail entry over f = model[f], since
// resolving on it turns the eventual learnt literal into f = n.
func (s *Solver) wantComplementaryOnLevel(a term.Lit, l Level) {
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	if !a.Pos() {
		s.dataOf(f, n).wanted = true
		return
	}
	if s.dataOf(f, n).level == l {
		s.dataOf(f, n).wanted = true
	} else {
		s.dataOf(f, m).wanted = true
	}
}

// wantedComplementaryOnLevel reports whether a, on level l, is wanted.
func (s *Solver) wantedComplementaryOnLevel(a term.Lit, l Level) bool {
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	if !a.Pos() {
		return s.dataOf(f, n).wanted
	}
	return (s.dataOf(f, n).level == l && s.dataOf(f, n).wanted) || (!m.Null() && s.dataOf(f, m).wanted)
}

// wanted reports whether the trail literal a (which satisfies itself) is
// the resolution target the backward walk is looking for.
func (s *Solver) wanted(a term.Lit) bool {
	return s.dataOf(a.Fun(), a.Name()).wanted
}

// analyze walks the implication graph backward from conflict to the first
// unique implication point, returning the literals to learn and the level
// to backjump to. learnt[0] is always the asserting (UIP) literal; of the
// remaining literals, the one at the highest level is swapped into
// learnt[1] (the others keep their order), and that level is the one Solve
// backjumps to (§4.5).
func (s *Solver) analyze(conflict clause.Ref) (learnt []term.Lit, btlevel Level) {
	depth := 0
	var trailA term.Lit
	trailI := len(s.trail) - 1
	learnt = append(learnt, term.NullLit) // placeholder for the UIP literal

	handleConflict := func(a term.Lit) {
		if trailA == a {
			return
		}
		l := s.levelOfComplementary(a)
		if l == rootLevel || s.seenSubsumed(a) || s.wantedComplementaryOnLevel(a, l) {
			return
		}
		if l < s.currentLevel() {
			learnt = append(learnt, a)
			s.seeSubsuming(a)
			s.bump(a.Fun())
		} else if l == s.currentLevel() {
			depth++
			s.wantComplementaryOnLevel(a, l)
			s.bump(a.Fun())
		}
	}

	for {
		if conflict == clause.DomainRef {
			f := trailA.Fun()
			sort := s.funcSort.Get(f)
			names := s.Names(sort)
			for i := 0; i < names.Len(); i++ {
				if n := names.At(i); !n.Null() && s.dataOf(f, n).occurs {
					handleConflict(term.Eq(f, n))
				}
			}
		} else {
			c := s.factory.Get(conflict)
			for i := 0; i < c.Len(); i++ {
				handleConflict(c.Get(i))
			}
		}

		for !s.wanted(s.trail[trailI]) {
			trailI--
		}
		trailA = s.trail[trailI]
		trailI--
		s.dataOf(trailA.Fun(), trailA.Name()).wanted = false
		depth--
		conflict = s.reasonOf(trailA)
		if depth <= 0 {
			break
		}
	}
	learnt[0] = trailA.Flip()

	for _, a := range learnt {
		s.dataOf(a.Fun(), a.Name()).seenSubsumed = false
	}

	if len(learnt) == 1 {
		return learnt, rootLevel
	}
	max := 1
	btlevel = s.levelOfComplementary(learnt[max])
	for i := 2; i < len(learnt); i++ {
		if l := s.levelOfComplementary(learnt[i]); btlevel < l {
			max = i
			btlevel = l
		}
	}
	learnt[1], learnt[max] = learnt[max], learnt[1]
	return learnt, btlevel
}
