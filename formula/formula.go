// Package formula implements the query formulas LimSat checks models
// against: an NNF tree of equality/inequality literals combined with And and
// Or, modelled on gophersat's bf.Formula interface (nnf/String/Eval) but
// evaluated against a (possibly partial) term.Fun -> term.Name assignment
// instead of a boolean variable map.
package formula

import (
	"fmt"
	"strings"

	"github.com/climit/limbo/container"
	"github.com/climit/limbo/term"
)

// Model is the partial assignment a Formula is checked against.
type Model = container.DenseMap[term.Fun, term.Name]

// Formula is a query in negation normal form: the only negations it can
// express are the polarities already baked into its leaf literals.
type Formula interface {
	fmt.Stringer

	// SatisfiedBy reports whether model satisfies the formula. model may be
	// partial: a leaf whose function is unassigned is not satisfied. When
	// nogood is non-nil and the result is false, *nogood is overwritten with
	// a minimal sub-assignment of complementary literals that forced the
	// formula false: the actual, model-assigned literal complementary to
	// each leaf that failed. A true result never touches *nogood. This is
	// the same falsified-clause idiom gophersat's explain package uses to
	// build up a minimal unsatisfiable subset, applied here so a caller can
	// add the nogood's negation as a guiding clause.
	SatisfiedBy(model *Model, nogood *[]term.Lit) bool

	// Lits returns every leaf literal mentioned in the formula, for
	// registering domains before solving.
	Lits() []term.Lit
}

type lit struct{ a term.Lit }

// Lit wraps a single equality/inequality literal as a leaf formula.
func Lit(a term.Lit) Formula { return lit{a} }

func (l lit) String() string {
	sign := "="
	if l.a.Neg() {
		sign = "!="
	}
	return fmt.Sprintf("f%d%sn%d", l.a.Fun().Id(), sign, l.a.Name().Id())
}

func (l lit) Lits() []term.Lit { return []term.Lit{l.a} }

func (l lit) SatisfiedBy(model *Model, nogood *[]term.Lit) bool {
	m := model.Get(l.a.Fun())
	if m.Null() {
		return false
	}
	ok := (l.a.Pos() && m == l.a.Name()) || (l.a.Neg() && m != l.a.Name())
	if !ok && nogood != nil {
		// m is the name the model actually assigned f to; f=m is
		// complementary to l.a (per term.Complementary) and is exactly the
		// literal that forced l.a false.
		*nogood = append(*nogood, term.Eq(l.a.Fun(), m))
	}
	return ok
}

type and struct{ fs []Formula }

// And combines fs conjunctively. And() with no arguments is the empty
// conjunction, vacuously true.
func And(fs ...Formula) Formula { return and{fs} }

func (a and) String() string {
	parts := make([]string, len(a.fs))
	for i, f := range a.fs {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, " ∧ ") + ")"
}

func (a and) Lits() []term.Lit {
	var out []term.Lit
	for _, f := range a.fs {
		out = append(out, f.Lits()...)
	}
	return out
}

// SatisfiedBy reports whether every conjunct is satisfied. On failure,
// *nogood is filled from the single conjunct that failed: a conjunction
// needs only one false conjunct to justify its own falseness, so the
// conjuncts evaluated (and satisfied) before it contribute nothing to why
// it failed and must not leak into the result.
func (a and) SatisfiedBy(model *Model, nogood *[]term.Lit) bool {
	for _, f := range a.fs {
		var local []term.Lit
		if !f.SatisfiedBy(model, &local) {
			if nogood != nil {
				*nogood = append(*nogood, local...)
			}
			return false
		}
	}
	return true
}

type or struct{ fs []Formula }

// Or combines fs disjunctively. Or() with no arguments is the empty
// disjunction, vacuously false.
func Or(fs ...Formula) Formula { return or{fs} }

func (o or) String() string {
	parts := make([]string, len(o.fs))
	for i, f := range o.fs {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, " ∨ ") + ")"
}

func (o or) Lits() []term.Lit {
	var out []term.Lit
	for _, f := range o.fs {
		out = append(out, f.Lits()...)
	}
	return out
}

// SatisfiedBy reports whether some disjunct is satisfied. A disjunction is
// false only when every disjunct is, so on failure *nogood is filled from
// the union of every disjunct's own failure reason: all of them are jointly
// required to force the disjunction false. A successful disjunct short
// circuits before touching *nogood, discarding whatever partial failure
// reasons earlier disjuncts had already accumulated.
func (o or) SatisfiedBy(model *Model, nogood *[]term.Lit) bool {
	var local []term.Lit
	for _, f := range o.fs {
		var sub []term.Lit
		if f.SatisfiedBy(model, &sub) {
			return true
		}
		local = append(local, sub...)
	}
	if nogood != nil {
		*nogood = append(*nogood, local...)
	}
	return false
}

// Not flips a leaf literal's polarity. It only accepts a Lit because the
// tree is kept in NNF by construction; negating an And/Or would require De
// Morgan rewriting that callers should do when they build the formula.
func Not(f Formula) Formula {
	l, ok := f.(lit)
	if !ok {
		panic("formula: Not only applies to a leaf literal; build the NNF form directly")
	}
	return lit{l.a.Flip()}
}
