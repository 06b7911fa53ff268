package solver

import (
	"github.com/climit/limbo/clause"
	"github.com/climit/limbo/term"
)

// ConflictPredicate is notified after each conflict, before backtracking,
// with the level the conflict was found at, the conflicting clause, the
// learnt clause and the level Solve is about to backjump to. Returning
// false tells Solve to stop after finishing the current step.
type ConflictPredicate func(level Level, conflict clause.Ref, learnt []term.Lit, btlevel Level) bool

// DecisionPredicate is notified after each decision literal is enqueued,
// with the level it was made at and the literal itself. Returning false
// tells Solve to stop after finishing the current step.
type DecisionPredicate func(level Level, a term.Lit) bool

// Result is Solve's outcome.
type Result int

const (
	// Unsat means the empty clause was derived.
	Unsat Result = -1
	// Interrupted means a predicate returned false before a verdict was reached.
	Interrupted Result = 0
	// Sat means every function was assigned without conflict.
	Sat Result = 1
)

// Solve runs propagate/analyze/decide until the problem is resolved or a
// predicate asks it to stop, mirroring the original's templated Solve
// (§4.6). onConflict and onDecision may be nil.
func (s *Solver) Solve(onConflict ConflictPredicate, onDecision DecisionPredicate) Result {
	if s.emptyClause {
		return Unsat
	}
	goOn := true
	for goOn {
		conflict := s.propagate()
		if conflict != clause.NullRef {
			if s.currentLevel() == rootLevel {
				return Unsat
			}
			learnt, btlevel := s.analyze(conflict)
			if onConflict != nil && !onConflict(s.currentLevel(), conflict, learnt, btlevel) {
				goOn = false
			}
			s.backtrack(btlevel)
			s.Stats.Conflicts++
			if len(learnt) == 1 {
				s.enqueue(learnt[0], clause.NullRef)
			} else {
				r := s.factory.NewLearnt(learnt)
				c := s.factory.Get(r)
				s.clauses = append(s.clauses, r)
				s.updateWatchers(r, c)
				s.enqueue(c.Get(0), r)
				s.Stats.Learned++
			}
		} else {
			f := s.order.Top()
			if f.Null() {
				return Sat
			}
			n := s.candidateName(f)
			if n.Null() {
				return Unsat
			}
			s.newLevel()
			a := term.Eq(f, n)
			s.enqueue(a, clause.NullRef)
			s.Stats.Decisions++
			if onDecision != nil && !onDecision(s.currentLevel(), a) {
				goOn = false
			}
		}
	}
	s.backtrack(rootLevel)
	return Interrupted
}
