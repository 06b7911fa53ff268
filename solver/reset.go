package solver

import "github.com/climit/limbo/term"

// Reset backtracks to the root level and, unless keepLearnt is set, deletes
// every learnt clause, so the solver can be reused for a fresh query over
// the same permanent clause set. LimSat calls Reset(false) at the start of
// every FindModel attempt that reuses the already-built solver (§4.7).
func (s *Solver) Reset(keepLearnt bool) {
	s.backtrack(rootLevel)
	if keepLearnt {
		return
	}
	kept := s.clauses[:1]
	for _, r := range s.clauses[1:] {
		if !s.factory.IsLearnt(r) {
			kept = append(kept, r)
			continue
		}
		c := s.factory.Get(r)
		s.removeWatchers(r, c)
		s.factory.Delete(r)
	}
	s.clauses = kept
	s.Stats.Learned = 0
}

// SeedActivity overwrites every function's activity with the value act
// returns for it, used by LimSat to bias decisions towards wanted
// functions before each FindModel attempt (§4.7).
func (s *Solver) SeedActivity(act func(f term.Fun) float64) {
	for i := 0; i < s.funcs.Len(); i++ {
		if f := s.funcs.At(i); !f.Null() {
			s.activity.Set(f, act(f))
		}
	}
}
