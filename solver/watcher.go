package solver

import (
	"github.com/climit/limbo/clause"
	"github.com/climit/limbo/term"
)

func (s *Solver) updateWatchers(r clause.Ref, c *clause.Clause) {
	f0, f1 := c.First().Fun(), c.Second().Fun()
	s.watchers.Set(f0, append(s.watchers.Get(f0), r))
	if f0 != f1 {
		s.watchers.Set(f1, append(s.watchers.Get(f1), r))
	}
}

func (s *Solver) removeWatchers(r clause.Ref, c *clause.Clause) {
	for i := 0; i < 2; i++ {
		f := c.Get(i).Fun()
		ws := s.watchers.Get(f)
		for j, cr := range ws {
			if cr == r {
				s.watchers.Set(f, append(ws[:j], ws[j+1:]...))
				break
			}
		}
	}
}

// propagate runs unit propagation until the trail is exhausted or a
// conflict clause reference is found (§4.4).
func (s *Solver) propagate() clause.Ref {
	conflict := clause.NullRef
	for s.trailHead < len(s.trail) && conflict == clause.NullRef {
		a := s.trail[s.trailHead]
		s.trailHead++
		conflict = s.propagateLit(a)
	}
	return conflict
}

// propagateLit walks the watcher list of a.Fun(), updating two-watched
// positions and enqueueing or reporting conflicts as described in §4.4. A
// watcher stays in this function's list exactly as long as one of the
// clause's two watched positions still references f; once both have
// moved elsewhere (by the replacement scan below) the entry is dropped
// here rather than at the function it moved to, since that function's
// list already received the push when the swap happened.
func (s *Solver) propagateLit(a term.Lit) clause.Ref {
	f := a.Fun()
	ws := s.watchers.Get(f)
	kept := ws[:0]
	conflict := clause.NullRef

	i := 0
	for i < len(ws) {
		r := ws[i]
		i++
		if conflict != clause.NullRef {
			kept = append(kept, r)
			continue
		}
		if !s.propagateWithLearnt && s.factory.IsLearnt(r) {
			kept = append(kept, r)
			continue
		}
		c := s.factory.Get(r)
		if c.First().Fun() != f && c.Second().Fun() != f {
			continue // relocated earlier in this scan
		}

		// w's low bit: c[0] falsified; high bit: c[1] falsified.
		w := 0
		if s.falsifies(c.First(), -1) {
			w |= 1
		}
		if s.falsifies(c.Second(), -1) {
			w |= 2
		}
		if w == 0 || s.satisfies(c.First(), -1) || s.satisfies(c.Second(), -1) {
			kept = append(kept, r)
			continue
		}

		for k := 2; w != 0 && k < c.Len(); k++ {
			if s.falsifies(c.Get(k), -1) {
				continue
			}
			l := w >> 1
			fk := c.Get(k).Fun()
			if fk != c.First().Fun() && fk != c.Second().Fun() {
				s.watchers.Set(fk, append(s.watchers.Get(fk), r))
			}
			c.Swap(l, k)
			w = (w - 1) >> 1 // 0b11 -> 0b01, 0b10 -> 0b00, 0b01 -> 0b00
		}

		if w == 3 {
			kept = append(kept, r)
			for ; i < len(ws); i++ {
				kept = append(kept, ws[i])
			}
			conflict = r
			continue
		}
		if c.First().Fun() == f || c.Second().Fun() == f {
			kept = append(kept, r)
		}
		if w != 0 {
			l := w >> 1
			s.enqueue(c.Get(1-l), r)
		}
	}
	s.watchers.Set(f, kept)
	return conflict
}

// enqueue is a no-op if f already has an assigned name (whether that
// satisfies or falsifies a), or if f != a.Name() has already been derived
// (which satisfies a negative a; for a positive a it is a contradiction the
// caller must have already detected via propagate's conflict path). Otherwise it
// records the assignment and, for a negative literal that drops the
// domain to size 1, immediately derives the forced equality by domain
// propagation with reason clause.DomainRef (§4.4).
func (s *Solver) enqueue(a term.Lit, reason clause.Ref) {
	p := a.Pos()
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	d := s.dataOf(f, n)
	if !m.Null() || d.modelNeq {
		return
	}
	s.trail = append(s.trail, a)
	d.update(!p, s.currentLevel(), reason)
	if p {
		s.model.Set(f, n)
		s.order.Remove(f)
	} else if ds := s.domainSize.Get(f) - 1; ds == 1 {
		s.domainSize.Set(f, ds)
		n2 := s.candidateName(f)
		s.trail = append(s.trail, term.Eq(f, n2))
		s.dataOf(f, n2).update(false, s.currentLevel(), clause.DomainRef)
		s.model.Set(f, n2)
		s.order.Remove(f)
	} else {
		s.domainSize.Set(f, ds)
		s.bumpToFront(f)
	}
}

func (s *Solver) newLevel() { s.levelSize = append(s.levelSize, len(s.trail)) }

// backtrack undoes every decision made after level l, so that currentLevel
// is l once it returns; level l's own trail entries are kept, since the
// caller usually wants to enqueue a new unit at the backjump level right
// after. A no-op if l is already at or beyond the current level (§4.6).
func (s *Solver) backtrack(l Level) {
	if l >= s.currentLevel() {
		return
	}
	from := s.levelSize[l]
	for i := len(s.trail) - 1; i >= from; i-- {
		a := s.trail[i]
		p := a.Pos()
		f, n := a.Fun(), a.Name()
		s.model.Set(f, term.NullName)
		if p {
			if !s.dataOf(f, n).modelNeq {
				s.dataOf(f, n).reset()
			}
			s.order.Insert(f)
		} else {
			s.dataOf(f, n).reset()
			s.domainSize.Set(f, s.domainSize.Get(f)+1)
		}
	}
	s.trail = s.trail[:from]
	s.levelSize = s.levelSize[:l]
	s.trailHead = len(s.trail)
}

// candidateName scans f's sort's names starting at the per-function
// cursor, backward down to id 0, then wraps around to the highest id and
// continues backward down to the cursor, returning the first name that
// occurs and has not been excluded by inequality. Returns term.NullFun's
// counterpart, term.NullName, if domainSize[f] is 0 (never happens while
// f is still being decided, since that would already be a conflict).
func (s *Solver) candidateName(f term.Fun) term.Name {
	sort := s.funcSort.Get(f)
	names := s.Names(sort)
	size := names.Len()
	offset := s.nameIndex.Get(f)
	for i := offset; i >= 0; i-- {
		if n := names.At(i); !n.Null() && s.dataOf(f, n).occurs && !s.dataOf(f, n).modelNeq {
			s.nameIndex.Set(f, i)
			return n
		}
	}
	for i := size - 1; i > offset; i-- {
		if n := names.At(i); !n.Null() && s.dataOf(f, n).occurs && !s.dataOf(f, n).modelNeq {
			s.nameIndex.Set(f, i)
			return n
		}
	}
	return term.NullName
}

func (s *Solver) bump(f term.Fun) {
	s.activity.Set(f, s.activity.Get(f)+s.bumpStep)
	if s.activity.Get(f) > 1e100 {
		s.activity.ForEach(func(i int, v float64) {
			s.activity.SetAt(i, v*1e-100)
		})
		s.bumpStep *= 1e-100
	}
	if s.order.Contains(f) {
		s.order.Increase(f)
	}
}

func (s *Solver) bumpToFront(f term.Fun) {
	max := 0.0
	s.activity.ForEach(func(_ int, v float64) {
		if v > max {
			max = v
		}
	})
	if s.activity.Get(f) < max {
		s.activity.Set(f, max)
	}
	s.activity.Set(f, s.activity.Get(f)+s.bumpStep)
	if s.order.Contains(f) {
		s.order.Increase(f)
	}
}
