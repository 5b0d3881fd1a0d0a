// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"math/big"
	"math/bits"

	"github.com/pkg/errors"
)

// logic1 packs a single Logic state into a 1-bit Value.
func logic1(l Logic) Value { return Filled(1, l) }

func checkWidth(op string, a, b Value) {
	if a.Width() != b.Width() {
		panic(errors.Wrapf(ErrWidthMismatch, "%s: %d vs %d bits", op, a.Width(), b.Width()))
	}
}

// Not returns the bitwise four-state complement of v. X and Z bits both
// complement to X.
func (v Value) Not() Value {
	n := v.Width()
	if p, ok := v.p.(packed); ok {
		known := mask64(n) &^ p.inv
		return makePacked(n, ^p.bits&known, p.inv)
	}
	if n == 0 {
		return v
	}
	w := v.p.(wideVal)
	known := new(big.Int).AndNot(maskBig(n), w.inv)
	nb := new(big.Int).AndNot(known, w.bits)
	inv := new(big.Int).Set(w.inv)
	return makeWide(n, nb, inv)
}

// And returns the bitwise four-state conjunction of two equal-width
// values: 0&anything=0, 1&1=1, everything else is X.
func (v Value) And(o Value) Value {
	checkWidth("and", v, o)
	n := v.Width()
	if n == 0 {
		return v
	}
	if a, ok := v.p.(packed); ok {
		b := o.p.(packed)
		m := mask64(n)
		a0, a1 := m&^(a.bits|a.inv), a.bits&^a.inv
		b0, b1 := m&^(b.bits|b.inv), b.bits&^b.inv
		one := a1 & b1
		zero := a0 | b0
		return makePacked(n, one, m&^(one|zero))
	}
	a, b := v.p.(wideVal), o.p.(wideVal)
	m := maskBig(n)
	a0 := new(big.Int).AndNot(m, new(big.Int).Or(a.bits, a.inv))
	a1 := new(big.Int).AndNot(a.bits, a.inv)
	b0 := new(big.Int).AndNot(m, new(big.Int).Or(b.bits, b.inv))
	b1 := new(big.Int).AndNot(b.bits, b.inv)
	one := a1.And(a1, b1)
	zero := a0.Or(a0, b0)
	inv := new(big.Int).AndNot(m, new(big.Int).Or(one, zero))
	return makeWide(n, new(big.Int).Set(one), inv)
}

// Or returns the bitwise four-state disjunction of two equal-width
// values: 1|anything=1, 0|0=0, everything else is X.
func (v Value) Or(o Value) Value {
	checkWidth("or", v, o)
	n := v.Width()
	if n == 0 {
		return v
	}
	if a, ok := v.p.(packed); ok {
		b := o.p.(packed)
		m := mask64(n)
		a0, a1 := m&^(a.bits|a.inv), a.bits&^a.inv
		b0, b1 := m&^(b.bits|b.inv), b.bits&^b.inv
		one := a1 | b1
		zero := a0 & b0
		return makePacked(n, one, m&^(one|zero))
	}
	a, b := v.p.(wideVal), o.p.(wideVal)
	m := maskBig(n)
	a0 := new(big.Int).AndNot(m, new(big.Int).Or(a.bits, a.inv))
	a1 := new(big.Int).AndNot(a.bits, a.inv)
	b0 := new(big.Int).AndNot(m, new(big.Int).Or(b.bits, b.inv))
	b1 := new(big.Int).AndNot(b.bits, b.inv)
	one := a1.Or(a1, b1)
	zero := a0.And(a0, b0)
	inv := new(big.Int).AndNot(m, new(big.Int).Or(one, zero))
	return makeWide(n, new(big.Int).Set(one), inv)
}

// Xor returns the bitwise four-state exclusive or of two equal-width
// values. Any X or Z bit yields X in that position.
func (v Value) Xor(o Value) Value {
	checkWidth("xor", v, o)
	n := v.Width()
	if n == 0 {
		return v
	}
	if a, ok := v.p.(packed); ok {
		b := o.p.(packed)
		known := mask64(n) &^ (a.inv | b.inv)
		return makePacked(n, (a.bits^b.bits)&known, mask64(n)&^known)
	}
	a, b := v.p.(wideVal), o.p.(wideVal)
	m := maskBig(n)
	known := new(big.Int).AndNot(m, new(big.Int).Or(a.inv, b.inv))
	nb := new(big.Int).Xor(a.bits, b.bits)
	nb.And(nb, known)
	inv := new(big.Int).AndNot(m, known)
	return makeWide(n, nb, inv)
}

// cmp compares the magnitudes of two equal-width valid values:
// -1, 0 or +1.
func (v Value) cmp(o Value) int {
	if v.Width() == 0 {
		return 0
	}
	if a, ok := v.p.(packed); ok {
		b := o.p.(packed)
		switch {
		case a.bits < b.bits:
			return -1
		case a.bits > b.bits:
			return 1
		}
		return 0
	}
	a, b := v.p.(wideVal), o.p.(wideVal)
	return a.bits.Cmp(b.bits)
}

func (v Value) rel(op string, o Value, f func(int) bool) Value {
	checkWidth(op, v, o)
	if !v.IsValid() || !o.IsValid() {
		return logic1(LX)
	}
	if f(v.cmp(o)) {
		return logic1(L1)
	}
	return logic1(L0)
}

// Eq returns a 1-bit value: 1 if the two equal-width operands hold the
// same number, 0 if not, X if either operand contains X or Z bits.
func (v Value) Eq(o Value) Value { return v.rel("eq", o, func(c int) bool { return c == 0 }) }

// Neq is the complement of Eq.
func (v Value) Neq(o Value) Value { return v.rel("neq", o, func(c int) bool { return c != 0 }) }

// Lt returns a 1-bit unsigned-magnitude comparison of two equal-width
// operands, X if either operand contains X or Z bits.
func (v Value) Lt(o Value) Value { return v.rel("lt", o, func(c int) bool { return c < 0 }) }

// Lte is like Lt but inclusive.
func (v Value) Lte(o Value) Value { return v.rel("lte", o, func(c int) bool { return c <= 0 }) }

// Gt returns a 1-bit unsigned greater-than comparison.
func (v Value) Gt(o Value) Value { return v.rel("gt", o, func(c int) bool { return c > 0 }) }

// Gte is like Gt but inclusive.
func (v Value) Gte(o Value) Value { return v.rel("gte", o, func(c int) bool { return c >= 0 }) }

// Zext returns v zero-extended to the given width. Use it for explicit
// width-flexible comparisons against constants; the relational operators
// themselves require equal widths.
func (v Value) Zext(width int) Value {
	n := v.Width()
	if width < n {
		panic(errors.Wrapf(ErrWidthMismatch, "zext: %d bits to %d", n, width))
	}
	if width == n {
		return v
	}
	b, i := v.bigPlanes()
	return makeBig(width, b, i)
}

// Sext returns v sign-extended to the given width. The sign bit extends
// as itself, including X and Z.
func (v Value) Sext(width int) Value {
	n := v.Width()
	if width < n || n == 0 {
		panic(errors.Wrapf(ErrWidthMismatch, "sext: %d bits to %d", n, width))
	}
	if width == n {
		return v
	}
	return Cat(Filled(width-n, v.Bit(n-1)), v)
}

// bigPlanes returns copies of both planes of v as big ints.
func (v Value) bigPlanes() (b, inv *big.Int) {
	if v.p == nil {
		return new(big.Int), new(big.Int)
	}
	return v.p.big()
}

func arithWidth(a, b Value) (n int, av, bv Value) {
	n = a.Width()
	if b.Width() > n {
		n = b.Width()
	}
	return n, a.Zext(n), b.Zext(n)
}

func (v Value) arith(o Value, f64 func(a, b, m uint64) uint64, fbig func(z, a, b *big.Int)) Value {
	n, a, b := arithWidth(v, o)
	if n == 0 {
		return Zero(0)
	}
	if !a.IsValid() || !b.IsValid() {
		return AllX(n)
	}
	if ap, ok := a.p.(packed); ok {
		bp := b.p.(packed)
		return makePacked(n, f64(ap.bits, bp.bits, mask64(n)), 0)
	}
	z := new(big.Int)
	fbig(z, a.p.(wideVal).bits, b.p.(wideVal).bits)
	return makeBig(n, z, new(big.Int))
}

// Add returns the unsigned sum of v and o truncated to
// max(v.Width(), o.Width()) bits. Any X or Z operand bit makes the
// whole result X.
func (v Value) Add(o Value) Value {
	return v.arith(o,
		func(a, b, m uint64) uint64 { return (a + b) & m },
		func(z, a, b *big.Int) { z.Add(a, b) })
}

// Sub returns v minus o modulo 2^width.
func (v Value) Sub(o Value) Value {
	return v.arith(o,
		func(a, b, m uint64) uint64 { return (a - b) & m },
		func(z, a, b *big.Int) { z.Sub(a, b) })
}

// Mul returns the product of v and o truncated to the result width.
func (v Value) Mul(o Value) Value {
	return v.arith(o,
		func(a, b, m uint64) uint64 { return (a * b) & m },
		func(z, a, b *big.Int) { z.Mul(a, b) })
}

// Div returns the unsigned quotient of v and o. Division by an all-zero
// divisor yields an all-X result rather than a fault.
func (v Value) Div(o Value) Value {
	n, a, b := arithWidth(v, o)
	if !a.IsValid() || !b.IsValid() {
		return AllX(n)
	}
	if bu, ok := b.Uint64(); ok && bu == 0 {
		return AllX(n)
	}
	if bb, ok := b.Big(); ok && bb.Sign() == 0 {
		return AllX(n)
	}
	if ap, isp := a.p.(packed); isp {
		bp := b.p.(packed)
		return makePacked(n, ap.bits/bp.bits, 0)
	}
	z := new(big.Int).Quo(a.p.(wideVal).bits, b.p.(wideVal).bits)
	return makeBig(n, z, new(big.Int))
}

// shiftAmount extracts a shift count from a Value. overflow is true when
// the amount is not representable or >= width.
func shiftAmount(amt Value, width int) (n uint, overflow, valid bool) {
	if !amt.IsValid() {
		return 0, false, false
	}
	u, ok := amt.Uint64()
	if !ok || u >= uint64(width) {
		return 0, true, true
	}
	return uint(u), false, true
}

// Shl returns v shifted left by amt bit positions, filling with 0.
// An X or Z shift amount yields an all-X result; an amount >= width
// yields all-0.
func (v Value) Shl(amt Value) Value {
	n := v.Width()
	if n == 0 {
		return v
	}
	k, over, valid := shiftAmount(amt, n)
	switch {
	case !valid:
		return AllX(n)
	case over:
		return Zero(n)
	}
	if p, ok := v.p.(packed); ok {
		return makePacked(n, p.bits<<k, p.inv<<k)
	}
	w := v.p.(wideVal)
	return makeWide(n, new(big.Int).Lsh(w.bits, k), new(big.Int).Lsh(w.inv, k))
}

// Shr returns v logically shifted right by amt bit positions, filling
// with 0. An X or Z shift amount yields an all-X result; an amount >=
// width yields all-0.
func (v Value) Shr(amt Value) Value {
	n := v.Width()
	if n == 0 {
		return v
	}
	k, over, valid := shiftAmount(amt, n)
	switch {
	case !valid:
		return AllX(n)
	case over:
		return Zero(n)
	}
	if p, ok := v.p.(packed); ok {
		return makePacked(n, p.bits>>k, p.inv>>k)
	}
	w := v.p.(wideVal)
	return makeWide(n, new(big.Int).Rsh(w.bits, k), new(big.Int).Rsh(w.inv, k))
}

// Sra returns v arithmetically shifted right by amt bit positions,
// replicating the sign bit (bit width-1) into the vacated positions.
// An X or Z sign bit propagates into the fill; an amount >= width
// yields a result made entirely of the sign bit.
func (v Value) Sra(amt Value) Value {
	n := v.Width()
	if n == 0 {
		return v
	}
	k, over, valid := shiftAmount(amt, n)
	sign := v.Bit(n - 1)
	switch {
	case !valid:
		return AllX(n)
	case over:
		return Filled(n, sign)
	}
	if k == 0 {
		return v
	}
	fill := Filled(int(k), sign)
	return Cat(fill, v.Slice(int(k), n))
}

// Slice extracts the half-open bit range [lo, hi) of v, bit 0 being the
// least significant. The range must lie within the source width.
func (v Value) Slice(lo, hi int) Value {
	n := v.Width()
	if lo < 0 || hi < lo || hi > n {
		panic(errors.Wrapf(ErrBadRange, "slice [%d, %d) of %d-bit value", lo, hi, n))
	}
	if p, ok := v.p.(packed); ok {
		return makePacked(hi-lo, p.bits>>uint(lo), p.inv>>uint(lo))
	}
	if n == 0 {
		return v
	}
	w := v.p.(wideVal)
	return makeBig(hi-lo,
		new(big.Int).Rsh(w.bits, uint(lo)),
		new(big.Int).Rsh(w.inv, uint(lo)))
}

// Cat concatenates values most significant first: the first argument
// ends up in the top bits of the result. The result width is the sum of
// the input widths.
func Cat(vs ...Value) Value {
	total := 0
	for _, v := range vs {
		total += v.Width()
	}
	if total <= packedMaxWidth {
		var b, i uint64
		for _, v := range vs {
			n := v.Width()
			var vb, vi uint64
			if n > 0 {
				p := v.p.(packed)
				vb, vi = p.bits, p.inv
			}
			b = b<<uint(n) | vb
			i = i<<uint(n) | vi
		}
		return makePacked(total, b, i)
	}
	b, i := new(big.Int), new(big.Int)
	for _, v := range vs {
		n := uint(v.Width())
		vb, vi := v.bigPlanes()
		b.Or(b.Lsh(b, n), vb)
		i.Or(i.Lsh(i, n), vi)
	}
	return makeBig(total, b, i)
}

// Replicate returns v concatenated with itself n times. n must be >= 1.
func (v Value) Replicate(n int) Value {
	if n < 1 {
		panic(errors.Wrapf(ErrBadReplicate, "got %d", n))
	}
	if n == 1 {
		return v
	}
	vs := make([]Value, n)
	for i := range vs {
		vs[i] = v
	}
	return Cat(vs...)
}

// OrReduce ORs all bits of v together: 1 if any bit is a definite 1,
// 0 if all bits are definite 0, X otherwise.
func (v Value) OrReduce() Logic {
	if v.Width() == 0 {
		return L0
	}
	if p, ok := v.p.(packed); ok {
		switch {
		case p.bits&^p.inv != 0:
			return L1
		case p.inv != 0:
			return LX
		}
		return L0
	}
	w := v.p.(wideVal)
	one := new(big.Int).AndNot(w.bits, w.inv)
	switch {
	case one.Sign() != 0:
		return L1
	case w.inv.Sign() != 0:
		return LX
	}
	return L0
}

// AndReduce ANDs all bits of v together.
func (v Value) AndReduce() Logic {
	n := v.Width()
	if n == 0 {
		return L1
	}
	if p, ok := v.p.(packed); ok {
		m := mask64(n)
		switch {
		case m&^(p.bits|p.inv) != 0:
			return L0
		case p.inv != 0:
			return LX
		}
		return L1
	}
	w := v.p.(wideVal)
	zero := new(big.Int).AndNot(maskBig(n), new(big.Int).Or(w.bits, w.inv))
	switch {
	case zero.Sign() != 0:
		return L0
	case w.inv.Sign() != 0:
		return LX
	}
	return L1
}

// XorReduce XORs all bits of v together (parity). Any X or Z bit yields
// X.
func (v Value) XorReduce() Logic {
	if v.Width() == 0 {
		return L0
	}
	if !v.IsValid() {
		return LX
	}
	if p, ok := v.p.(packed); ok {
		if bits.OnesCount64(p.bits)&1 == 1 {
			return L1
		}
		return L0
	}
	w := v.p.(wideVal)
	par := 0
	for _, word := range w.bits.Bits() {
		par ^= bits.OnesCount(uint(word)) & 1
	}
	if par == 1 {
		return L1
	}
	return L0
}
