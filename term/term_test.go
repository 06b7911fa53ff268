package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLitRoundTrip(t *testing.T) {
	f := FunFromId(7)
	n := NameFromId(3)
	for _, pos := range []bool{true, false} {
		var a Lit
		if pos {
			a = Eq(f, n)
		} else {
			a = Neq(f, n)
		}
		assert.Equal(t, pos, a.Pos())
		assert.Equal(t, f, a.Fun())
		assert.Equal(t, n, a.Name())
		assert.Equal(t, a, a.Flip().Flip())
		assert.NotEqual(t, a.Pos(), a.Flip().Pos())
	}
}

func TestValidTruthTable(t *testing.T) {
	f := FunFromId(1)
	n1, n2 := NameFromId(1), NameFromId(2)

	assert.True(t, Valid(Eq(f, n1), Neq(f, n1)))
	assert.True(t, Valid(Neq(f, n1), Eq(f, n1)))
	assert.True(t, Valid(Neq(f, n1), Neq(f, n2)))
	assert.False(t, Valid(Eq(f, n1), Eq(f, n2)))
	assert.False(t, Valid(Eq(f, n1), Eq(f, n1)))
}

func TestComplementaryTruthTable(t *testing.T) {
	f := FunFromId(1)
	n1, n2 := NameFromId(1), NameFromId(2)

	assert.True(t, Complementary(Eq(f, n1), Neq(f, n1)))
	assert.True(t, Complementary(Neq(f, n1), Eq(f, n1)))
	assert.True(t, Complementary(Eq(f, n1), Eq(f, n2)))
	assert.False(t, Complementary(Neq(f, n1), Neq(f, n2)))
	assert.False(t, Complementary(Eq(f, n1), Eq(f, n1)))
}

func TestSubsumptionTruthTable(t *testing.T) {
	f := FunFromId(1)
	n1, n2 := NameFromId(1), NameFromId(2)

	assert.True(t, Eq(f, n1).ProperlySubsumes(Neq(f, n2)))
	assert.False(t, Eq(f, n1).ProperlySubsumes(Neq(f, n1)))
	assert.False(t, Eq(f, n1).ProperlySubsumes(Eq(f, n2)))

	assert.True(t, Eq(f, n1).Subsumes(Eq(f, n1)))
	assert.True(t, Eq(f, n1).Subsumes(Neq(f, n2)))
	assert.False(t, Neq(f, n1).Subsumes(Eq(f, n1)))
}

func TestNullSentinels(t *testing.T) {
	assert.True(t, NullFun.Null())
	assert.True(t, NullName.Null())
	assert.True(t, NullLit.Null())
	assert.Panics(t, func() { FunFromId(0) })
	assert.Panics(t, func() { NameFromId(0) })
}
