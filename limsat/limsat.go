// Package limsat implements the limited-satisfiability driver sitting on
// top of the solver package: it decides limited-belief entailment with
// parameter k by finding a family of partial models that together assign
// every function appearing in the clause set, then checking every size-k
// combination of functions is covered by some model that falsifies the
// query.
package limsat

import (
	"sort"
	"strconv"
	"strings"

	"github.com/climit/limbo/clause"
	"github.com/climit/limbo/container"
	"github.com/climit/limbo/formula"
	"github.com/climit/limbo/solver"
	"github.com/climit/limbo/term"
)

const (
	// activityOffset biases decisions towards functions the current query
	// wants assigned, matching limsat.h's kActivityOffset.
	activityOffset = 1000.0
	// maxConflicts bounds the work a single FindModel attempt does before
	// giving up and falling back to the best partial model found so far.
	maxConflicts = 50
	// globalSort is the single sort every function is registered under.
	// The original groups functions into sorts so each sort gets its own
	// extra name; nothing in this module's scope needs more than one sort,
	// so a single shared sort is used throughout (documented decision,
	// DESIGN.md).
	globalSort solver.Sort = 1
)

// Model is the (possibly partial) function assignment a query is checked
// against.
type Model = container.DenseMap[term.Fun, term.Name]

// LimSat accumulates a permanent clause set and answers limited-belief
// queries over it. The zero value is not usable; construct with New.
type LimSat struct {
	seen    map[string]bool
	clauses [][]term.Lit

	domains     *container.DenseMap[term.Fun, *container.DenseMap[term.Name, bool]]
	extraNameID uint32
	extraName   term.Name

	sat      *solver.Solver
	satBuilt int // number of l.clauses already installed into sat
}

// New returns a LimSat with no clauses.
func New() *LimSat {
	return &LimSat{
		seen:        map[string]bool{},
		domains:     container.NewDenseMap[term.Fun, *container.DenseMap[term.Name, bool]](nil),
		extraNameID: 1,
		sat:         solver.New(),
	}
}

// AddClause inserts a clause into the permanent problem, deduplicating by
// literal content regardless of order; returns false if an identical
// clause (after sorting) was already present.
func (l *LimSat) AddClause(as []term.Lit) bool {
	cp := append([]term.Lit(nil), as...)
	sort.Slice(cp, func(i, j int) bool { return term.Less(cp[i], cp[j]) })
	key := encodeKey(cp)
	if l.seen[key] {
		return false
	}
	l.seen[key] = true
	l.clauses = append(l.clauses, cp)
	for _, a := range cp {
		l.registerDomain(a.Fun(), a.Name())
	}
	return true
}

func (l *LimSat) registerDomain(f term.Fun, n term.Name) {
	ds := l.domains.Get(f)
	if ds == nil {
		ds = container.NewDenseMap[term.Name, bool](false)
		l.domains.Set(f, ds)
	}
	ds.Set(n, true)
	if id := n.Id(); id+1 > l.extraNameID {
		l.extraNameID = id + 1
	}
}

func encodeKey(lits []term.Lit) string {
	var b strings.Builder
	for _, a := range lits {
		b.WriteString(strconv.FormatUint(a.Id(), 36))
		b.WriteByte(',')
	}
	return b.String()
}

// Solve reports whether the query can be falsified under limited belief
// with splitting parameter k: it returns true when, for every size-k subset
// of the functions the clause set mentions, some model assigns all of them
// while falsifying the query (§4.7). A query that every model found
// satisfies, for instance one the clauses entail, yields false.
func (l *LimSat) Solve(k int, query formula.Formula) bool {
	l.updateDomainsForQuery(query)
	fcm := l.findCoveringModels(k, query)
	if !fcm.allCovered {
		return false
	}
	if k == 0 {
		return true
	}
	return allCombinedSubsetsOfSize(fcm.newlyAssignedIn, k, func(must []term.Fun) bool {
		for _, m := range fcm.models {
			if assignsAllFuncs(m, must) {
				return true
			}
		}
		wanted := container.NewDenseMap[term.Fun, bool](false)
		for _, f := range must {
			wanted.Set(f, true)
		}
		fm := l.findModel(k, query, false, true, wanted)
		return fm.succ
	})
}

func (l *LimSat) updateDomainsForQuery(query formula.Formula) {
	for _, a := range query.Lits() {
		f, n := a.Fun(), a.Name()
		ds := l.domains.Get(f)
		if ds != nil && ds.Get(n) {
			continue
		}
		l.registerDomain(f, n)
	}
}

type foundModel struct {
	model *Model
	succ  bool
}

type foundCoveringModels struct {
	models          []*Model
	newlyAssignedIn [][]term.Fun
	allCovered      bool
}

// findCoveringModels iterates FindModel, biasing each attempt towards
// functions not yet covered by an earlier model, until every function ever
// registered is assigned by some returned model or an attempt fails
// outright (§4.7).
func (l *LimSat) findCoveringModels(minModelSize int, query formula.Formula) foundCoveringModels {
	var models []*Model
	var newlyAssignedIn [][]term.Fun

	wanted := container.NewDenseMap[term.Fun, bool](false)
	for i := 0; i < l.domains.Len(); i++ {
		if f := term.FunFromIdSafe(uint32(i)); !f.Null() {
			ds := l.domains.Get(f)
			wanted.Set(f, ds != nil && ds.Len() > 0)
		}
	}

	propagateWithLearnt := true
	wantedIsMust := false
	for {
		fm := l.findModel(minModelSize, query, propagateWithLearnt, wantedIsMust, wanted)
		if !fm.succ && propagateWithLearnt {
			propagateWithLearnt = false
			continue
		}
		if !fm.succ {
			return foundCoveringModels{}
		}
		if minModelSize == 0 {
			return foundCoveringModels{models: models, newlyAssignedIn: newlyAssignedIn, allCovered: true}
		}
		newlyAssigned, allAssigned := unwantNewlyAssigned(fm.model, wanted)
		if len(newlyAssigned) == 0 && !wantedIsMust {
			wantedIsMust = true
			continue
		}
		for i := 0; i < len(models); {
			if assignsAllFuncs(fm.model, newlyAssignedIn[i]) {
				newlyAssigned = mergeFuncs(newlyAssigned, newlyAssignedIn[i])
				models = append(models[:i], models[i+1:]...)
				newlyAssignedIn = append(newlyAssignedIn[:i], newlyAssignedIn[i+1:]...)
			} else {
				i++
			}
		}
		models = append(models, fm.model)
		newlyAssignedIn = append(newlyAssignedIn, newlyAssigned)
		if allAssigned {
			return foundCoveringModels{models: models, newlyAssignedIn: newlyAssignedIn, allCovered: true}
		}
	}
}

// findModel runs one bounded SAT search attempt against l.sat, prepared by
// initSat for this attempt, tracking the best partial model seen along the
// way as a fallback for when the search is cut off by the conflict bound
// before reaching a verdict.
func (l *LimSat) findModel(minModelSize int, query formula.Formula, propagateWithLearnt, wantedIsMust bool, wanted *container.DenseMap[term.Fun, bool]) foundModel {
	activity := func(f term.Fun) float64 {
		if wanted.Get(f) {
			return activityOffset
		}
		return 0
	}
	l.initSat(activity)
	l.sat.SetPropagateWithLearnt(propagateWithLearnt)

	var partialModel *Model
	partialModelSize := -1
	conflicts := 0

	onConflict := func(solver.Level, clause.Ref, []term.Lit, solver.Level) bool {
		conflicts++
		return conflicts <= maxConflicts
	}
	onDecision := func(solver.Level, term.Lit) bool {
		m := l.sat.Model()
		if minModelSize <= l.sat.ModelSize() && partialModelSize < l.sat.ModelSize() &&
			(!wantedIsMust || assignsAllWanted(m, wanted)) && !query.SatisfiedBy(m, nil) {
			partialModelSize = l.sat.ModelSize()
			partialModel = m.Clone()
		}
		return true
	}

	truth := l.sat.Solve(onConflict, onDecision)
	switch {
	case truth == solver.Sat && !query.SatisfiedBy(l.sat.Model(), nil):
		return foundModel{model: l.sat.Model().Clone(), succ: true}
	case partialModelSize >= minModelSize && partialModel != nil && !query.SatisfiedBy(partialModel, nil):
		return foundModel{model: partialModel, succ: true}
	default:
		return foundModel{}
	}
}

// initSat gets l.sat ready for an attempt: the first call, and any call
// after new permanent clauses were added since the last one, rebuilds the
// solver from scratch (clauses and watchers can only grow across attempts,
// never shrink or change, so a rebuild is only ever needed for that
// reason); every other call instead does what spec.md §4.7 literally
// prescribes — Reset the existing solver, keeping no learnt clauses, then
// seed activity at kActivityOffset for each wanted function and 0
// elsewhere — reusing the already-built permanent clause set and watchers.
func (l *LimSat) initSat(activity func(term.Fun) float64) {
	if l.extraName.Null() {
		l.extraName = term.NameFromId(l.extraNameID)
	}
	if l.satBuilt != len(l.clauses) {
		l.sat = solver.New()
		sortOf := func(term.Fun) solver.Sort { return globalSort }
		extra := func(solver.Sort) term.Name { return l.extraName }
		for _, c := range l.clauses {
			l.sat.AddClause(c, sortOf, extra)
		}
		l.sat.Init()
		l.satBuilt = len(l.clauses)
	} else {
		l.sat.Reset(false)
	}
	l.sat.SeedActivity(activity)
}

func assignsAllFuncs(m *Model, funs []term.Fun) bool {
	for _, f := range funs {
		if m.Get(f).Null() {
			return false
		}
	}
	return true
}

func assignsAllWanted(m *Model, wanted *container.DenseMap[term.Fun, bool]) bool {
	for i := 0; i < wanted.Len(); i++ {
		f := term.FunFromIdSafe(uint32(i))
		if f.Null() || !wanted.Get(f) {
			continue
		}
		if m.Get(f).Null() {
			return false
		}
	}
	return true
}

// unwantNewlyAssigned clears wanted[f] for every f the model newly assigns
// and reports those functions plus whether every wanted function is now
// assigned somewhere.
func unwantNewlyAssigned(m *Model, wanted *container.DenseMap[term.Fun, bool]) (newlyAssigned []term.Fun, allAssigned bool) {
	allAssigned = true
	for i := 0; i < wanted.Len(); i++ {
		f := term.FunFromIdSafe(uint32(i))
		if f.Null() || !wanted.Get(f) {
			continue
		}
		if !m.Get(f).Null() {
			wanted.Set(f, false)
			newlyAssigned = append(newlyAssigned, f)
		} else {
			allAssigned = false
		}
	}
	return newlyAssigned, allAssigned
}

func mergeFuncs(a, b []term.Fun) []term.Fun {
	seen := map[uint32]bool{}
	var out []term.Fun
	for _, f := range a {
		if !seen[f.Id()] {
			seen[f.Id()] = true
			out = append(out, f)
		}
	}
	for _, f := range b {
		if !seen[f.Id()] {
			seen[f.Id()] = true
			out = append(out, f)
		}
	}
	return out
}

// allCombinedSubsetsOfSize enumerates every size-k subset of the union of
// groups, skipping subsets fully contained in a single group (those are
// already known coverable by that group's own model), and reports whether
// pred held for all the rest. It short-circuits on the first subset pred
// rejects, mirroring limsat.h's AllCombinedSubsetsOfSize early-exit.
func allCombinedSubsetsOfSize(groups [][]term.Fun, k int, pred func([]term.Fun) bool) bool {
	union := unionFuncs(groups)
	ok := true
	forEachCombination(union, k, func(subset []term.Fun) bool {
		for _, g := range groups {
			if subsetOfFuncs(subset, g) {
				return true // already covered by g's own model
			}
		}
		if !pred(subset) {
			ok = false
			return false
		}
		return true
	})
	return ok
}

func unionFuncs(groups [][]term.Fun) []term.Fun {
	seen := map[uint32]bool{}
	var out []term.Fun
	for _, g := range groups {
		for _, f := range g {
			if !seen[f.Id()] {
				seen[f.Id()] = true
				out = append(out, f)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id() < out[j].Id() })
	return out
}

func subsetOfFuncs(sub, of []term.Fun) bool {
	set := map[uint32]bool{}
	for _, f := range of {
		set[f.Id()] = true
	}
	for _, f := range sub {
		if !set[f.Id()] {
			return false
		}
	}
	return true
}

// forEachCombination calls fn with every size-k subset of universe, in
// increasing index order, stopping early if fn returns false.
func forEachCombination(universe []term.Fun, k int, fn func([]term.Fun) bool) {
	if k < 0 || k > len(universe) {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		subset := make([]term.Fun, k)
		for i, j := range idx {
			subset[i] = universe[j]
		}
		if !fn(subset) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == len(universe)-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
