package limsat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/climit/limbo/formula"
	"github.com/climit/limbo/term"
)

func TestAddClauseDedupesRegardlessOfOrder(t *testing.T) {
	l := New()
	f, g := term.FunFromId(1), term.FunFromId(2)
	a := term.NameFromId(1)

	assert.True(t, l.AddClause([]term.Lit{term.Eq(f, a), term.Eq(g, a)}))
	assert.False(t, l.AddClause([]term.Lit{term.Eq(g, a), term.Eq(f, a)}))
	assert.Len(t, l.clauses, 1)
}

func TestAddClauseAcceptsDistinctClauses(t *testing.T) {
	l := New()
	f, g := term.FunFromId(1), term.FunFromId(2)
	a, b := term.NameFromId(1), term.NameFromId(2)

	assert.True(t, l.AddClause([]term.Lit{term.Eq(f, a)}))
	assert.True(t, l.AddClause([]term.Lit{term.Eq(g, b)}))
	assert.Len(t, l.clauses, 2)
}

// A unit clause pins f to a with no decision needed, so a query the forced
// model satisfies can never be refuted: no covering model survives and
// Solve reports the query is not avoidable.
func TestSolveFailsWhenOnlyModelSatisfiesQuery(t *testing.T) {
	l := New()
	f, a := term.FunFromId(1), term.NameFromId(1)
	require := assert.New(t)

	require.True(l.AddClause([]term.Lit{term.Eq(f, a)}))

	ok := l.Solve(0, formula.Lit(term.Eq(f, a)))
	require.False(ok)
}

// The same forced model does not satisfy the complementary query, so it is
// itself the covering, query-refuting model Solve is looking for.
func TestSolveSucceedsWhenForcedModelRefutesQuery(t *testing.T) {
	l := New()
	f, a := term.FunFromId(1), term.NameFromId(1)
	require := assert.New(t)

	require.True(l.AddClause([]term.Lit{term.Eq(f, a)}))

	ok := l.Solve(0, formula.Lit(term.Neq(f, a)))
	require.True(ok)
}

func TestSolveRegistersQueryLiteralsAsDomains(t *testing.T) {
	l := New()
	f, a, b := term.FunFromId(1), term.NameFromId(1), term.NameFromId(2)

	l.AddClause([]term.Lit{term.Eq(f, a)})
	l.Solve(0, formula.Lit(term.Eq(f, b)))

	ds := l.domains.Get(f)
	if assert.NotNil(t, ds) {
		assert.True(t, ds.Get(b))
	}
}

// Three independently forced functions give findCoveringModels a single
// model that assigns all three, so allCombinedSubsetsOfSize's union-of-one
// group covers every size-2 combination without consulting pred: the k=2
// shape of spec scenario 5, driven through the real Solve call path.
func TestSolveDrivesSizeTwoCoverageThroughASingleModel(t *testing.T) {
	l := New()
	f, g, h := term.FunFromId(1), term.FunFromId(2), term.FunFromId(3)
	a, b, c, other := term.NameFromId(1), term.NameFromId(2), term.NameFromId(3), term.NameFromId(4)
	require := assert.New(t)

	require.True(l.AddClause([]term.Lit{term.Eq(f, a)}))
	require.True(l.AddClause([]term.Lit{term.Eq(g, b)}))
	require.True(l.AddClause([]term.Lit{term.Eq(h, c)}))

	ok := l.Solve(2, formula.Lit(term.Eq(f, other)))
	require.True(ok)
}

// Once f is also pinned to a second, contradicting name, the forced model
// itself becomes unsatisfiable: no attempt, at any k, can find a model at
// all, so a query Solve could falsify before can no longer be falsified. This is
// spec scenario 6, re-solving after a contradicting clause is added.
func TestSolveFailsAfterContradictingClauseIsAdded(t *testing.T) {
	l := New()
	f, a, b := term.FunFromId(1), term.NameFromId(1), term.NameFromId(2)
	require := assert.New(t)

	require.True(l.AddClause([]term.Lit{term.Eq(f, a)}))
	require.True(l.Solve(0, formula.Lit(term.Neq(f, a))))

	require.True(l.AddClause([]term.Lit{term.Eq(f, b)}))
	require.False(l.Solve(0, formula.Lit(term.Neq(f, a))))
}

// Solve(k, q) is a pure query over the accumulated clause set: calling it
// twice with nothing added in between must agree, whether or not the second
// call takes initSat's Reset-and-reuse path instead of a rebuild.
func TestSolveIsIdempotentWhenNothingChangesBetweenCalls(t *testing.T) {
	l := New()
	f, a := term.FunFromId(1), term.NameFromId(1)
	require := assert.New(t)

	require.True(l.AddClause([]term.Lit{term.Eq(f, a)}))

	first := l.Solve(0, formula.Lit(term.Neq(f, a)))
	second := l.Solve(0, formula.Lit(term.Neq(f, a)))
	require.True(first)
	require.Equal(first, second)
}

// allCombinedSubsetsOfSize must skip any subset fully contained in a single
// group (already covered by that group's own model) and only hand pred the
// subsets that straddle two groups, short-circuiting on the first rejection.
func TestAllCombinedSubsetsOfSizeSkipsSubsetsCoveredByOneGroup(t *testing.T) {
	f1, f2, f3 := term.FunFromId(1), term.FunFromId(2), term.FunFromId(3)
	groups := [][]term.Fun{{f1, f2}, {f3}}

	var seen [][]term.Fun
	ok := allCombinedSubsetsOfSize(groups, 2, func(must []term.Fun) bool {
		seen = append(seen, must)
		return true
	})

	assert.True(t, ok)
	require := assert.New(t)
	require.Len(seen, 2)
	require.ElementsMatch([]term.Fun{f1, f3}, seen[0])
	require.ElementsMatch([]term.Fun{f2, f3}, seen[1])
}

func TestAllCombinedSubsetsOfSizeShortCircuitsOnFirstRejection(t *testing.T) {
	f1, f2, f3 := term.FunFromId(1), term.FunFromId(2), term.FunFromId(3)
	groups := [][]term.Fun{{f1, f2}, {f3}}

	calls := 0
	ok := allCombinedSubsetsOfSize(groups, 2, func(must []term.Fun) bool {
		calls++
		return false
	})

	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

// forEachCombination must enumerate every size-k subset of the universe
// exactly once, in increasing index order, and honor an early stop.
func TestForEachCombinationEnumeratesEverySubsetInOrder(t *testing.T) {
	f1, f2, f3 := term.FunFromId(1), term.FunFromId(2), term.FunFromId(3)
	universe := []term.Fun{f1, f2, f3}

	var got [][]term.Fun
	forEachCombination(universe, 2, func(subset []term.Fun) bool {
		got = append(got, subset)
		return true
	})

	assert.Equal(t, [][]term.Fun{{f1, f2}, {f1, f3}, {f2, f3}}, got)
}

func TestForEachCombinationStopsWhenFnReturnsFalse(t *testing.T) {
	f1, f2, f3 := term.FunFromId(1), term.FunFromId(2), term.FunFromId(3)
	universe := []term.Fun{f1, f2, f3}

	calls := 0
	forEachCombination(universe, 2, func(subset []term.Fun) bool {
		calls++
		return false
	})

	assert.Equal(t, 1, calls)
}
