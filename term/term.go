// Package term defines the trivially-copyable identifiers that the rest of
// the engine is built on: function symbols, standard names, and the packed
// equality/inequality literals that relate them.
//
// Fun and Name are thin wrappers around a non-zero uint32 id; id 0 is the
// null sentinel for both. Lit packs a polarity bit, a Fun id and a Name id
// into a single uint64, Fun id in the high 32 bits and (Name id << 1) |
// polarity in the low 32 bits (the ids are concatenated, not
// bit-interleaved), so that Valid, Complementary, Subsumes and
// ProperlySubsumes can all be decided with a handful of XORs and bit tests
// instead of a branch per case.
package term

// Id is the underlying representation shared by Fun and Name.
type Id = uint32

// Fun identifies a function symbol. The zero value is the null function.
type Fun struct {
	id Id
}

// NullFun is the sentinel function symbol, matching id 0 from §3.
var NullFun Fun

// FunFromId wraps a raw, non-zero id as a Fun.
func FunFromId(id Id) Fun {
	if id == 0 {
		panic("term: FunFromId(0) is reserved for the null sentinel")
	}
	return Fun{id: id}
}

// FunFromIdSafe wraps a raw id as a Fun without panicking on 0, returning
// NullFun in that case. Used by callers that reconstruct a Fun from a raw
// DenseMap index, where 0 legitimately means "no function here" rather
// than a programming error.
func FunFromIdSafe(id Id) Fun { return Fun{id: id} }

// Id returns the raw id, 0 for the null function.
func (f Fun) Id() Id { return f.id }

// Null reports whether f is the null sentinel.
func (f Fun) Null() bool { return f.id == 0 }

// Name identifies a standard name. The zero value is the null name.
type Name struct {
	id Id
}

// NullName is the sentinel name, matching id 0 from §3.
var NullName Name

// NameFromId wraps a raw, non-zero id as a Name.
func NameFromId(id Id) Name {
	if id == 0 {
		panic("term: NameFromId(0) is reserved for the null sentinel")
	}
	return Name{id: id}
}

// Id returns the raw id, 0 for the null name.
func (n Name) Id() Id { return n.id }

// Null reports whether n is the null sentinel.
func (n Name) Null() bool { return n.id == 0 }

// Lit is an equality (f = n) or inequality (f != n) packed into 64 bits:
// the high 32 bits hold Fun.id, the low 32 bits hold (Name.id << 1) | pos.
type Lit struct {
	id uint64
}

// NullLit is the literal with Fun and Name both null; it is never a member
// of a normalised clause.
var NullLit Lit

const hiMask uint64 = 0xFFFFFFFF00000000

// Eq builds the literal f = n.
func Eq(f Fun, n Name) Lit { return newLit(true, f, n) }

// Neq builds the literal f != n.
func Neq(f Fun, n Name) Lit { return newLit(false, f, n) }

func newLit(pos bool, f Fun, n Name) Lit {
	lo := uint64(n.id) << 1
	if pos {
		lo |= 1
	}
	return Lit{id: uint64(f.id)<<32 | lo}
}

// LitFromId reconstructs a Lit from its packed id, e.g. after round-tripping
// through a DenseMap keyed by literal id.
func LitFromId(id uint64) Lit { return Lit{id: id} }

// Id returns the packed representation.
func (a Lit) Id() uint64 { return a.id }

// Null reports whether a is the null literal.
func (a Lit) Null() bool { return a.id == 0 }

// Pos reports whether a is an equality (f = n) rather than an inequality.
func (a Lit) Pos() bool { return a.id&1 == 1 }

// Neg reports whether a is an inequality (f != n).
func (a Lit) Neg() bool { return !a.Pos() }

// Fun returns the function symbol of a.
func (a Lit) Fun() Fun { return Fun{id: Id(a.id >> 32)} }

// Name returns the name of a.
func (a Lit) Name() Name { return Name{id: Id((a.id & 0xFFFFFFFF) >> 1)} }

// Flip toggles the polarity of a, leaving (f, n) unchanged.
func (a Lit) Flip() Lit { return Lit{id: a.id ^ 1} }

// Valid reports whether a ∨ b is a tautology:
//
//	(f = n)  ∨ (f != n)
//	(f != n) ∨ (f = n)
//	(f != n1) ∨ (f != n2)   for distinct n1, n2
func Valid(a, b Lit) bool {
	x := a.id ^ b.id
	return x == 1 || (x != 0 && a.Neg() && b.Neg() && x&hiMask == 0)
}

// Complementary reports whether a ∧ b is unsatisfiable:
//
//	(f = n)  ∧ (f != n)
//	(f != n) ∧ (f = n)
//	(f = n1) ∧ (f = n2)     for distinct n1, n2
func Complementary(a, b Lit) bool {
	x := a.id ^ b.id
	return x == 1 || (x != 0 && a.Pos() && b.Pos() && x&hiMask == 0)
}

// ProperlySubsumes reports whether a is (f = n1) and b is (f != n2) for
// distinct n1, n2: every model of a satisfies b, but a != b.
func ProperlySubsumes(a, b Lit) bool {
	x := a.id ^ b.id
	return x != 1 && x&1 != 0 && a.Pos() && x&hiMask == 0
}

// Subsumes reports whether a == b or a ProperlySubsumes b.
func Subsumes(a, b Lit) bool {
	x := a.id ^ b.id
	return x == 0 || (x != 1 && x&1 != 0 && a.Pos() && x&hiMask == 0)
}

// Subsumes reports whether a subsumes b.
func (a Lit) Subsumes(b Lit) bool { return Subsumes(a, b) }

// ProperlySubsumes reports whether a properly subsumes b.
func (a Lit) ProperlySubsumes(b Lit) bool { return ProperlySubsumes(a, b) }

// Less orders literals by packed id, used to normalise clauses (§4.2).
func Less(a, b Lit) bool { return a.id < b.id }
