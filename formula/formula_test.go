package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/climit/limbo/container"
	"github.com/climit/limbo/term"
)

func TestLitSatisfiedByRequiresAssignment(t *testing.T) {
	f, a := term.FunFromId(1), term.NameFromId(1)
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	l := Lit(term.Eq(f, a))
	assert.False(t, l.SatisfiedBy(m, nil))

	m.Set(f, a)
	assert.True(t, l.SatisfiedBy(m, nil))
}

func TestLitSatisfiedByFillsNogoodOnlyOnFalse(t *testing.T) {
	f, a, b := term.FunFromId(1), term.NameFromId(1), term.NameFromId(2)
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	m.Set(f, b)
	l := Lit(term.Eq(f, a))

	var nogood []term.Lit
	assert.False(t, l.SatisfiedBy(m, &nogood))
	assert.Equal(t, []term.Lit{term.Eq(f, b)}, nogood)

	nogood = nil
	m.Set(f, a)
	assert.True(t, l.SatisfiedBy(m, &nogood))
	assert.Empty(t, nogood)
}

func TestNotFlipsLeafPolarity(t *testing.T) {
	f, a := term.FunFromId(1), term.NameFromId(1)
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	m.Set(f, a)

	l := Not(Lit(term.Eq(f, a)))
	assert.False(t, l.SatisfiedBy(m, nil))

	b := term.NameFromId(2)
	m.Set(f, b)
	assert.True(t, l.SatisfiedBy(m, nil))
}

func TestNotPanicsOnNonLeaf(t *testing.T) {
	f, a := term.FunFromId(1), term.NameFromId(1)
	assert.Panics(t, func() { Not(And(Lit(term.Eq(f, a)))) })
}

func TestAndRequiresEveryConjunct(t *testing.T) {
	f, g := term.FunFromId(1), term.FunFromId(2)
	a := term.NameFromId(1)
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	m.Set(f, a)

	conj := And(Lit(term.Eq(f, a)), Lit(term.Eq(g, a)))
	assert.False(t, conj.SatisfiedBy(m, nil))

	m.Set(g, a)
	assert.True(t, conj.SatisfiedBy(m, nil))
}

// An earlier conjunct that succeeds must not leak into the nogood produced
// by a later conjunct that fails: only the failing conjunct's own reason
// belongs in the result.
func TestAndNogoodOmitsSucceedingConjuncts(t *testing.T) {
	f, g := term.FunFromId(1), term.FunFromId(2)
	a, b := term.NameFromId(1), term.NameFromId(2)
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	m.Set(f, a)
	m.Set(g, b)

	conj := And(Lit(term.Eq(f, a)), Lit(term.Eq(g, a)))
	var nogood []term.Lit
	assert.False(t, conj.SatisfiedBy(m, &nogood))
	assert.Equal(t, []term.Lit{term.Eq(g, b)}, nogood)
}

func TestOrSatisfiedByFillsNogoodFromEveryFailingDisjunctOnFailure(t *testing.T) {
	f, g := term.FunFromId(1), term.FunFromId(2)
	a, b, c := term.NameFromId(1), term.NameFromId(2), term.NameFromId(3)
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	m.Set(f, b)
	m.Set(g, c)

	disj := Or(Lit(term.Eq(f, a)), Lit(term.Eq(g, a)))
	var nogood []term.Lit
	assert.False(t, disj.SatisfiedBy(m, &nogood))
	assert.ElementsMatch(t, []term.Lit{term.Eq(f, b), term.Eq(g, c)}, nogood)
}

// A later successful disjunct must discard whatever partial failure reasons
// earlier disjuncts had already accumulated, and must not itself add
// anything: a true result never touches the nogood.
func TestOrSatisfiedByDiscardsNogoodOnSuccess(t *testing.T) {
	f, g := term.FunFromId(1), term.FunFromId(2)
	a, b := term.NameFromId(1), term.NameFromId(2)
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	m.Set(f, b)
	m.Set(g, a)

	disj := Or(Lit(term.Eq(f, a)), Lit(term.Eq(g, a)))
	var nogood []term.Lit
	assert.True(t, disj.SatisfiedBy(m, &nogood))
	assert.Empty(t, nogood)
}

func TestOrRequiresAtLeastOneDisjunct(t *testing.T) {
	f, g := term.FunFromId(1), term.FunFromId(2)
	a := term.NameFromId(1)
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)

	disj := Or(Lit(term.Eq(f, a)), Lit(term.Eq(g, a)))
	assert.False(t, disj.SatisfiedBy(m, nil))
}

func TestLitsCollectsEveryLeaf(t *testing.T) {
	f, g := term.FunFromId(1), term.FunFromId(2)
	a, b := term.NameFromId(1), term.NameFromId(2)

	formula := And(Or(Lit(term.Eq(f, a)), Lit(term.Eq(g, a))), Lit(term.Neq(f, b)))
	lits := formula.Lits()
	assert.ElementsMatch(t, []term.Lit{term.Eq(f, a), term.Eq(g, a), term.Neq(f, b)}, lits)
}

func TestEmptyAndIsVacuouslyTrue(t *testing.T) {
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	assert.True(t, And().SatisfiedBy(m, nil))
}

func TestEmptyOrIsVacuouslyFalse(t *testing.T) {
	m := container.NewDenseMap[term.Fun, term.Name](term.NullName)
	assert.False(t, Or().SatisfiedBy(m, nil))
}
