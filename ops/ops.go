// Package ops contains the operator kinds shared by the parser's
// precedence-climbing expression grammar and the code generator's
// lowering switch.
//
// This mirrors the teacher's instructions package (one named byte
// constant per generated operation, grouped by generation shape) but
// the constants now name Zed's binary/unary operators instead of the
// teacher's RPN stack-machine opcodes.
package ops

// Kind holds the kind of a unary or binary operator.
type Kind byte

const (
	// Add pops two values and pushes their sum.
	Add Kind = '+'

	// Sub pops two values and pushes their difference.
	Sub Kind = '-'

	// Mul pops two values and pushes their product.
	Mul Kind = '*'

	// Div pops two values and pushes their quotient.
	Div Kind = '/'

	// Eq pushes 1 if the two values are equal, 0 otherwise.
	Eq Kind = 'e'

	// Ne pushes 1 if the two values differ, 0 otherwise.
	Ne Kind = 'n'

	// Lt pushes 1 if the left operand is less than the right.
	Lt Kind = 'l'

	// Gt pushes 1 if the left operand is greater than the right.
	Gt Kind = 'g'

	// Le pushes 1 if the left operand is less-or-equal.
	Le Kind = 'L'

	// Ge pushes 1 if the left operand is greater-or-equal.
	Ge Kind = 'G'

	// LAnd short-circuits: if the left operand is zero, pushes 0
	// without evaluating the right operand.
	LAnd Kind = '&'

	// LOr short-circuits: if the left operand is non-zero, pushes 1
	// without evaluating the right operand.
	LOr Kind = '|'

	// Neg negates its single operand.
	Neg Kind = 'N'
)

// precedence tables the operator's binding power, low to high, as spec
// §4.4 lists them: || ; && ; == != ; < > <= >= ; + - ; * /.
var precedence = map[Kind]int{
	LOr:  1,
	LAnd: 2,
	Eq:   3,
	Ne:   3,
	Lt:   4,
	Gt:   4,
	Le:   4,
	Ge:   4,
	Add:  5,
	Sub:  5,
	Mul:  6,
	Div:  6,
}

// Precedence returns k's binding power for precedence-climbing parse, or
// 0 if k is not a binary operator.
func Precedence(k Kind) int {
	return precedence[k]
}

// IsComparison reports whether k produces a 0/1 boolean via a `set<cc>`
// sequence in codegen, rather than an arithmetic instruction.
func IsComparison(k Kind) bool {
	switch k {
	case Eq, Ne, Lt, Gt, Le, Ge:
		return true
	default:
		return false
	}
}
