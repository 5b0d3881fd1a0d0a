// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// Operator methods on signals build derived, read-only signals that the
// engine keeps up to date: s.And(o) is a continuous assignment of
// s & o to a fresh signal. Width rules are checked at construction and
// violations panic, mirroring the four-state Value operators.

func exprWidthCheck(op string, a, b *Signal) {
	if a.width != b.width {
		panic(errors.Wrapf(ErrWidthMismatch, "%s(%s, %s): %d vs %d bits", op, a.name, b.name, a.width, b.width))
	}
}

func (s *Signal) unary(op string, width int, fn func(Value) Value) *Signal {
	return s.d.derived(op+"("+s.name+")", width, []*Signal{s},
		func(vals []Value) Value { return fn(vals[0]) })
}

func binary(op string, a, b *Signal, width int, fn func(x, y Value) Value) *Signal {
	return a.d.derived(op+"("+a.name+", "+b.name+")", width, []*Signal{a, b},
		func(vals []Value) Value { return fn(vals[0], vals[1]) })
}

// Not derives the bitwise complement of s.
func (s *Signal) Not() *Signal {
	return s.unary("not", s.width, Value.Not)
}

// And derives the bitwise conjunction of two equal-width signals.
func (s *Signal) And(o *Signal) *Signal {
	exprWidthCheck("and", s, o)
	return binary("and", s, o, s.width, Value.And)
}

// Or derives the bitwise disjunction of two equal-width signals.
func (s *Signal) Or(o *Signal) *Signal {
	exprWidthCheck("or", s, o)
	return binary("or", s, o, s.width, Value.Or)
}

// Xor derives the bitwise exclusive or of two equal-width signals.
func (s *Signal) Xor(o *Signal) *Signal {
	exprWidthCheck("xor", s, o)
	return binary("xor", s, o, s.width, Value.Xor)
}

// Eq derives the 1-bit equality comparison of two equal-width signals.
func (s *Signal) Eq(o *Signal) *Signal {
	exprWidthCheck("eq", s, o)
	return binary("eq", s, o, 1, Value.Eq)
}

// Neq derives the 1-bit inequality comparison.
func (s *Signal) Neq(o *Signal) *Signal {
	exprWidthCheck("neq", s, o)
	return binary("neq", s, o, 1, Value.Neq)
}

// Lt derives the 1-bit unsigned less-than comparison.
func (s *Signal) Lt(o *Signal) *Signal {
	exprWidthCheck("lt", s, o)
	return binary("lt", s, o, 1, Value.Lt)
}

// Lte derives the 1-bit unsigned less-or-equal comparison.
func (s *Signal) Lte(o *Signal) *Signal {
	exprWidthCheck("lte", s, o)
	return binary("lte", s, o, 1, Value.Lte)
}

// Gt derives the 1-bit unsigned greater-than comparison.
func (s *Signal) Gt(o *Signal) *Signal {
	exprWidthCheck("gt", s, o)
	return binary("gt", s, o, 1, Value.Gt)
}

// Gte derives the 1-bit unsigned greater-or-equal comparison.
func (s *Signal) Gte(o *Signal) *Signal {
	exprWidthCheck("gte", s, o)
	return binary("gte", s, o, 1, Value.Gte)
}

func maxWidth(a, b *Signal) int {
	if a.width > b.width {
		return a.width
	}
	return b.width
}

// Add derives the unsigned sum, truncated to max of the operand widths.
func (s *Signal) Add(o *Signal) *Signal {
	return binary("add", s, o, maxWidth(s, o), Value.Add)
}

// Sub derives the unsigned difference modulo the result width.
func (s *Signal) Sub(o *Signal) *Signal {
	return binary("sub", s, o, maxWidth(s, o), Value.Sub)
}

// Mul derives the product truncated to max of the operand widths.
func (s *Signal) Mul(o *Signal) *Signal {
	return binary("mul", s, o, maxWidth(s, o), Value.Mul)
}

// Div derives the unsigned quotient. Division by zero yields all-X.
func (s *Signal) Div(o *Signal) *Signal {
	return binary("div", s, o, maxWidth(s, o), Value.Div)
}

// Shl derives s shifted left by the value of amt, filling with 0.
func (s *Signal) Shl(amt *Signal) *Signal {
	return binary("shl", s, amt, s.width, Value.Shl)
}

// Shr derives s logically shifted right by the value of amt.
func (s *Signal) Shr(amt *Signal) *Signal {
	return binary("shr", s, amt, s.width, Value.Shr)
}

// Sra derives s arithmetically shifted right by the value of amt,
// replicating the sign bit into vacated positions.
func (s *Signal) Sra(amt *Signal) *Signal {
	return binary("sra", s, amt, s.width, Value.Sra)
}

// Slice derives the half-open bit range [lo, hi) of s.
func (s *Signal) Slice(lo, hi int) *Signal {
	if lo < 0 || hi < lo || hi > s.width {
		panic(errors.Wrapf(ErrBadRange, "slice [%d, %d) of %d-bit signal %q", lo, hi, s.width, s.name))
	}
	desc := "slice(" + s.name + "[" + strconv.Itoa(lo) + ".." + strconv.Itoa(hi) + "))"
	return s.d.derived(desc, hi-lo, []*Signal{s},
		func(vals []Value) Value { return vals[0].Slice(lo, hi) })
}

// Replicate derives s concatenated with itself n times. n must be >= 1.
func (s *Signal) Replicate(n int) *Signal {
	if n < 1 {
		panic(errors.Wrapf(ErrBadReplicate, "replicate %q by %d", s.name, n))
	}
	return s.unary("rep"+strconv.Itoa(n), s.width*n,
		func(v Value) Value { return v.Replicate(n) })
}

// Concat derives the concatenation of the given signals, most
// significant first.
func Concat(sigs ...*Signal) *Signal {
	if len(sigs) == 0 {
		panic(errors.New("concat: no signals"))
	}
	width := 0
	desc := "cat("
	for i, s := range sigs {
		width += s.width
		if i > 0 {
			desc += ", "
		}
		desc += s.name
	}
	desc += ")"
	return sigs[0].d.derived(desc, width, sigs, func(vals []Value) Value {
		return Cat(vals...)
	})
}

// Mux derives a 2-way multiplexer: a when sel is 1, b when sel is 0,
// all-X when sel is X or Z. sel must be 1 bit wide; a and b must have
// equal widths.
func Mux(sel, a, b *Signal) *Signal {
	if sel.width != 1 {
		panic(errors.Wrapf(ErrWidthMismatch, "mux select %q: %d bits", sel.name, sel.width))
	}
	exprWidthCheck("mux", a, b)
	return sel.d.derived("mux("+sel.name+", "+a.name+", "+b.name+")", a.width,
		[]*Signal{sel, a, b}, func(vals []Value) Value {
			switch vals[0].Bit(0) {
			case L1:
				return vals[1]
			case L0:
				return vals[2]
			}
			return AllX(vals[1].Width())
		})
}
