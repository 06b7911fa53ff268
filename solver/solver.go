// Package solver implements the CDCL-style multi-valued SAT core: clauses
// of equality/inequality literals over functions and names, propagated by
// two watched literals plus domain propagation, with first-UIP conflict
// analysis adapted to the subsumption lattice rather than plain polarity.
package solver

import (
	"github.com/climit/limbo/clause"
	"github.com/climit/limbo/container"
	"github.com/climit/limbo/term"
)

// Level is a decision level; the root level is 1, matching the original so
// that level 0 can serve as an "unset" sentinel inside Data.
type Level = int

const rootLevel Level = 1

// Data holds per-(f,n) metadata: whether the pair occurs in the problem,
// whether f != n has been derived, the level and reason it was set at, and
// two scratch flags used only during conflict analysis. Go has no
// bitfields, so the four booleans/level that the original packs into one
// 32-bit word here live as a small struct; the reason reference is kept
// separate exactly as in the original (4 bytes of flags + a cref_t).
type Data struct {
	occurs        bool
	modelNeq      bool
	seenSubsumed  bool
	wanted        bool
	level         Level
	reason        clause.Ref
}

func (d *Data) update(neq bool, l Level, r clause.Ref) {
	d.modelNeq = neq
	d.level = l
	d.reason = r
}

func (d *Data) reset() {
	d.modelNeq = false
	d.level = 0
	d.reason = clause.NullRef
}

// Sort identifies a partition of the name space. The solver never
// interprets sort values itself; it only groups names by them.
type Sort uint32

// Id implements container.Keyed so Sort can key a DenseMap/DenseSet.
func (s Sort) Id() uint32 { return uint32(s) }

// Stats mirrors gophersat's observability surface: plain counters with no
// attached metrics exporter, since nothing in this module drives metrics
// over a network.
type Stats struct {
	Decisions int
	Conflicts int
	Learned   int
}

// Solver is a CDCL-style core over equality/inequality literals. The zero
// value is not usable; construct with New.
type Solver struct {
	emptyClause bool

	factory *clause.Factory
	clauses []clause.Ref

	funcs      *container.DenseSet[term.Fun]
	names      *container.DenseMap[Sort, *container.DenseSet[term.Name]]
	nameExtra  *container.DenseMap[Sort, term.Name]
	nameIndex  *container.DenseMap[term.Fun, int]
	funcSort   *container.DenseMap[term.Fun, Sort]

	watchers *container.DenseMap[term.Fun, []clause.Ref]

	trail     []term.Lit
	levelSize []int
	trailHead int

	model      *container.DenseMap[term.Fun, term.Name]
	data       *container.DenseMap[term.Fun, *container.DenseMap[term.Name, *Data]]
	domainSize *container.DenseMap[term.Fun, int]

	order    *container.MinHeap[term.Fun]
	activity *container.DenseMap[term.Fun, float64]
	bumpStep float64

	// propagateWithLearnt toggles whether learnt clauses are consulted
	// during propagation; LimSat flips this off on retry (§4.7).
	propagateWithLearnt bool

	Stats Stats
}

// New returns a Solver with no clauses registered.
func New() *Solver {
	s := &Solver{
		factory:              clause.NewFactory(),
		clauses:              []clause.Ref{clause.NullRef},
		funcs:                container.NewDenseSet[term.Fun](),
		names:                container.NewDenseMap[Sort, *container.DenseSet[term.Name]](nil),
		nameExtra:            container.NewDenseMap[Sort, term.Name](term.NullName),
		nameIndex:            container.NewDenseMap[term.Fun, int](0),
		funcSort:             container.NewDenseMap[term.Fun, Sort](0),
		watchers:             container.NewDenseMap[term.Fun, []clause.Ref](nil),
		model:                container.NewDenseMap[term.Fun, term.Name](term.NullName),
		data:                 container.NewDenseMap[term.Fun, *container.DenseMap[term.Name, *Data]](nil),
		domainSize:           container.NewDenseMap[term.Fun, int](0),
		activity:             container.NewDenseMap[term.Fun, float64](0),
		bumpStep:             1.0,
		propagateWithLearnt:  true,
		levelSize:            []int{0},
	}
	s.order = container.NewMinHeap[term.Fun](func(a, b term.Fun) bool {
		return s.activity.Get(a) > s.activity.Get(b)
	}, term.NullFun)
	return s
}

// SetPropagateWithLearnt toggles whether Propagate consults learnt clauses.
// LimSat's FindCoveringModels disables this on retry after an unsuccessful
// FindModel call with it enabled (§4.7).
func (s *Solver) SetPropagateWithLearnt(on bool) { s.propagateWithLearnt = on }

// EmptyClause reports whether the empty clause has been derived; once
// true, every future Solve call returns unsat without doing any work.
func (s *Solver) EmptyClause() bool { return s.emptyClause }

// Model returns the current (possibly partial) assignment.
func (s *Solver) Model() *container.DenseMap[term.Fun, term.Name] { return s.model }

// ModelSize returns the number of functions currently assigned.
func (s *Solver) ModelSize() int {
	n := 0
	s.model.ForEach(func(_ int, v term.Name) {
		if !v.Null() {
			n++
		}
	})
	return n
}

// Funcs returns the set of functions registered so far.
func (s *Solver) Funcs() *container.DenseSet[term.Fun] { return s.funcs }

// Names returns the registered names for f's sort.
func (s *Solver) Names(sort Sort) *container.DenseSet[term.Name] {
	ns := s.names.Get(sort)
	if ns == nil {
		return container.NewDenseSet[term.Name]()
	}
	return ns
}

func (s *Solver) currentLevel() Level { return len(s.levelSize) }

func (s *Solver) capacitateFunc(f term.Fun) {
	s.nameIndex.CapacitateKey(f)
	s.funcSort.CapacitateKey(f)
	s.watchers.CapacitateKey(f)
	s.model.CapacitateKey(f)
	s.data.CapacitateKey(f)
	s.domainSize.CapacitateKey(f)
	s.order.Capacitate(f)
	s.activity.CapacitateKey(f)
}

func (s *Solver) capacitateName(f term.Fun, n term.Name) {
	ds := s.data.Get(f)
	if ds == nil {
		ds = container.NewDenseMap[term.Name, *Data](nil)
		s.data.Set(f, ds)
	}
	if ds.Get(n) == nil {
		ds.Set(n, &Data{})
	}
}

func (s *Solver) dataOf(f term.Fun, n term.Name) *Data {
	s.capacitateFunc(f)
	s.capacitateName(f, n)
	return s.data.Get(f).Get(n)
}

// Register records that (f, n) occurs, reserving a fresh extra name for
// f's sort the first time f is seen. sort identifies f's name partition;
// extra is the reserved "default" name for that sort (§4.3).
func (s *Solver) Register(sort Sort, f term.Fun, n term.Name, extra term.Name) {
	s.capacitateFunc(f)
	s.funcSort.Set(f, sort)
	if s.names.Get(sort) == nil {
		s.names.Set(sort, container.NewDenseSet[term.Name]())
	}
	if !s.funcs.Contains(f) {
		s.funcs.Insert(f)
		s.order.Insert(f)
		s.names.Get(sort).Insert(extra)
		ed := s.dataOf(f, extra)
		if !ed.occurs {
			s.domainSize.Set(f, s.domainSize.Get(f)+1)
			ed.occurs = true
		}
	}
	nd := s.dataOf(f, n)
	if !nd.occurs {
		s.domainSize.Set(f, s.domainSize.Get(f)+1)
		nd.occurs = true
	}
	s.names.Get(sort).Insert(n)
}

// ExtraNameFactory supplies, for a sort, a name id not appearing anywhere
// else in that sort's domain. Its output must be stable across calls for
// the solver's lifetime (§6).
type ExtraNameFactory func(sort Sort) term.Name

// AddLiteral inserts a unit literal: it appends a to the initial units that
// Init enqueues and registers (f, n) under f's recorded sort. It makes no
// validity or unsatisfiability check, since a single literal is never
// Valid and never complementary to itself.
func (s *Solver) AddLiteral(a term.Lit, extra ExtraNameFactory) {
	s.trail = append(s.trail, a)
	sort := s.funcSort.Get(a.Fun())
	s.Register(sort, a.Fun(), a.Name(), extra(sort))
}

// AddClause normalises as via the clause factory and installs the result:
// an empty clause sets EmptyClause, a unit is folded into AddLiteral, and
// anything larger is stored and every (f,n) it mentions is registered.
func (s *Solver) AddClause(as []term.Lit, sortOf func(term.Fun) Sort, extra ExtraNameFactory) {
	switch len(as) {
	case 0:
		s.emptyClause = true
	case 1:
		s.registerSortOf(as[0].Fun(), sortOf)
		s.AddLiteral(as[0], extra)
	default:
		r := s.factory.New(as)
		if r == clause.NullRef {
			return // tautology, discarded
		}
		c := s.factory.Get(r)
		if c.Len() == 0 {
			s.emptyClause = true
			s.factory.Delete(r)
			return
		}
		if c.Len() == 1 {
			a := c.Get(0)
			s.trail = append(s.trail, a)
			s.registerSortOf(a.Fun(), sortOf)
			sort := s.funcSort.Get(a.Fun())
			s.Register(sort, a.Fun(), a.Name(), extra(sort))
			s.factory.Delete(r)
			return
		}
		s.clauses = append(s.clauses, r)
		for i := 0; i < c.Len(); i++ {
			a := c.Get(i)
			s.registerSortOf(a.Fun(), sortOf)
			sort := s.funcSort.Get(a.Fun())
			s.Register(sort, a.Fun(), a.Name(), extra(sort))
		}
	}
}

func (s *Solver) registerSortOf(f term.Fun, sortOf func(term.Fun) Sort) {
	s.capacitateFunc(f)
	if sortOf != nil {
		s.funcSort.Set(f, sortOf(f))
	}
}

// Init drains the initial units onto the trail, trims falsified literals
// out of every multi-literal clause (catching tautologies/unsat clauses
// that only manifest once units are known), sets up two-watchers, and runs
// one round of propagation. A root-level conflict sets EmptyClause (§4.3).
func (s *Solver) Init() {
	if s.emptyClause {
		return
	}
	units := s.trail
	s.trail = make([]term.Lit, 0, len(units))
	for _, a := range units {
		if s.falsifies(a, -1) {
			s.emptyClause = true
			return
		}
		s.enqueue(a, clause.NullRef)
	}

	kept := s.clauses[:1]
	for i := 1; i < len(s.clauses); i++ {
		r := s.clauses[i]
		c := s.factory.Get(r)
		c.RemoveIf(func(a term.Lit) bool { return s.falsifies(a, -1) })
		switch {
		case c.Len() == 0:
			s.emptyClause = true
			s.factory.Delete(r)
			return
		case s.satisfiesClause(c, -1):
			s.factory.Delete(r)
		case c.Len() == 1:
			s.enqueue(c.Get(0), clause.NullRef)
			s.factory.Delete(r)
		default:
			kept = append(kept, r)
			s.updateWatchers(r, c)
		}
	}
	s.clauses = kept

	if s.propagate() != clause.NullRef {
		s.emptyClause = true
		return
	}

	// Drop inequality entries of functions that now have an assigned name:
	// the equality on the trail already implies them. Mirrors the
	// original's post-propagation compaction pass.
	n := 0
	for _, a := range s.trail {
		if !a.Pos() && !s.model.Get(a.Fun()).Null() {
			continue
		}
		s.trail[n] = a
		n++
	}
	s.trail = s.trail[:n]
	s.trailHead = len(s.trail)
}

func (s *Solver) satisfies(a term.Lit, atLevel Level) bool {
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	ok := (a.Pos() && m == n) || (!a.Pos() && ((!m.Null() && m != n) || s.dataOf(f, n).modelNeq))
	if !ok {
		return false
	}
	return atLevel < 0 || s.dataOf(f, n).level <= atLevel
}

func (s *Solver) falsifies(a term.Lit, atLevel Level) bool {
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	ok := (!a.Pos() && m == n) || (a.Pos() && ((!m.Null() && m != n) || s.dataOf(f, n).modelNeq))
	if !ok {
		return false
	}
	return atLevel < 0 || s.dataOf(f, n).level <= atLevel
}

func (s *Solver) satisfiesClause(c *clause.Clause, atLevel Level) bool {
	for i := 0; i < c.Len(); i++ {
		if s.satisfies(c.Get(i), atLevel) {
			return true
		}
	}
	return false
}

func (s *Solver) levelOf(a term.Lit) Level {
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	if !a.Pos() && s.dataOf(f, n).modelNeq {
		return s.dataOf(f, n).level
	}
	return s.dataOf(f, m).level
}

func (s *Solver) levelOfComplementary(a term.Lit) Level {
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	if a.Pos() && s.dataOf(f, n).modelNeq {
		return s.dataOf(f, n).level
	}
	return s.dataOf(f, m).level
}

func (s *Solver) reasonOf(a term.Lit) clause.Ref {
	f, n := a.Fun(), a.Name()
	m := s.model.Get(f)
	if !a.Pos() && s.dataOf(f, n).modelNeq {
		return s.dataOf(f, n).reason
	}
	return s.dataOf(f, m).reason
}
