// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// A Value is an immutable four-state bit vector of fixed width.
//
// Values up to 64 bits wide are stored packed in machine words; wider
// values use arbitrary-precision planes. The two storage strategies are
// semantically indistinguishable: all operations, comparisons and string
// forms agree for equal logical values regardless of backing store.
//
// Both backends store two bit planes. For each bit position, the pair
// (bits, invalid) encodes: (0,0)=0, (1,0)=1, (0,1)=X, (1,1)=Z.
type Value struct {
	p planes
}

const packedMaxWidth = 64

type planes interface {
	width() int
	bit(i int) Logic
	anyInvalid() bool
	// big returns copies of the two planes as arbitrary-precision ints.
	big() (bits, inv *big.Int)
}

// packed is the fixed-width backend for widths <= 64.
type packed struct {
	n    int
	bits uint64
	inv  uint64
}

// wideVal is the arbitrary-precision backend for widths > 64.
type wideVal struct {
	n    int
	bits *big.Int
	inv  *big.Int
}

func (p packed) width() int { return p.n }

func (p packed) bit(i int) Logic {
	m := uint64(1) << uint(i)
	switch {
	case p.inv&m == 0 && p.bits&m == 0:
		return L0
	case p.inv&m == 0:
		return L1
	case p.bits&m == 0:
		return LX
	}
	return LZ
}

func (p packed) anyInvalid() bool { return p.inv != 0 }

func (p packed) big() (*big.Int, *big.Int) {
	return new(big.Int).SetUint64(p.bits), new(big.Int).SetUint64(p.inv)
}

func (w wideVal) width() int { return w.n }

func (w wideVal) bit(i int) Logic {
	switch {
	case w.inv.Bit(i) == 0 && w.bits.Bit(i) == 0:
		return L0
	case w.inv.Bit(i) == 0:
		return L1
	case w.bits.Bit(i) == 0:
		return LX
	}
	return LZ
}

func (w wideVal) anyInvalid() bool { return w.inv.Sign() != 0 }

func (w wideVal) big() (*big.Int, *big.Int) {
	return new(big.Int).Set(w.bits), new(big.Int).Set(w.inv)
}

func mask64(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

func maskBig(n int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return m.Sub(m, big.NewInt(1))
}

func makePacked(n int, bits, inv uint64) Value {
	m := mask64(n)
	return Value{packed{n: n, bits: bits & m, inv: inv & m}}
}

// makeWide builds a wide value, taking ownership of bits and inv.
func makeWide(n int, bits, inv *big.Int) Value {
	m := maskBig(n)
	return Value{wideVal{n: n, bits: bits.And(bits, m), inv: inv.And(inv, m)}}
}

// makeBig builds a value of width n from big planes, selecting the
// backend by width. Takes ownership of bits and inv.
func makeBig(n int, bits, inv *big.Int) Value {
	if n <= packedMaxWidth {
		m := maskBig(n)
		bits.And(bits, m)
		inv.And(inv, m)
		return makePacked(n, bits.Uint64(), inv.Uint64())
	}
	return makeWide(n, bits, inv)
}

// fromLogics builds a value from per-bit states, index 0 being the
// least significant bit.
func fromLogics(ls []Logic) Value {
	n := len(ls)
	if n <= packedMaxWidth {
		var bits, inv uint64
		for i, l := range ls {
			if l == L1 || l == LZ {
				bits |= 1 << uint(i)
			}
			if l == LX || l == LZ {
				inv |= 1 << uint(i)
			}
		}
		return makePacked(n, bits, inv)
	}
	bits, inv := new(big.Int), new(big.Int)
	for i, l := range ls {
		if l == L1 || l == LZ {
			bits.SetBit(bits, i, 1)
		}
		if l == LX || l == LZ {
			inv.SetBit(inv, i, 1)
		}
	}
	return makeWide(n, bits, inv)
}

// Parse converts a string of '0', '1', 'x' and 'z' runes, most
// significant bit first, into a Value of width len(s). Underscores are
// ignored.
func Parse(s string) (Value, error) {
	s = strings.ReplaceAll(s, "_", "")
	n := len(s)
	bits, inv := new(big.Int), new(big.Int)
	for i, r := range s {
		l, err := ParseLogic(r)
		if err != nil {
			return Value{}, errors.Wrapf(err, "parse %q", s)
		}
		pos := n - 1 - i
		if l == L1 || l == LZ {
			bits.SetBit(bits, pos, 1)
		}
		if l == LX || l == LZ {
			inv.SetBit(inv, pos, 1)
		}
	}
	return makeBig(n, bits, inv), nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromUint64 returns the value of v truncated to the given width.
func FromUint64(v uint64, width int) Value {
	if width <= packedMaxWidth {
		return makePacked(width, v, 0)
	}
	return makeWide(width, new(big.Int).SetUint64(v), new(big.Int))
}

// FromInt returns the two's complement representation of v truncated to
// the given width.
func FromInt(v int64, width int) Value {
	if width <= packedMaxWidth {
		return makePacked(width, uint64(v), 0)
	}
	// big.Int bitwise ops use infinite two's complement for negatives,
	// so masking yields v mod 2^width.
	return makeWide(width, big.NewInt(v), new(big.Int))
}

// FromBig returns the two's complement representation of v truncated to
// the given width. v is not modified.
func FromBig(v *big.Int, width int) Value {
	return makeBig(width, new(big.Int).Set(v), new(big.Int))
}

// Filled returns a value of the given width with every bit set to l.
func Filled(width int, l Logic) Value {
	if width <= packedMaxWidth {
		m := mask64(width)
		switch l {
		case L0:
			return makePacked(width, 0, 0)
		case L1:
			return makePacked(width, m, 0)
		case LX:
			return makePacked(width, 0, m)
		}
		return makePacked(width, m, m)
	}
	m := maskBig(width)
	bits, inv := new(big.Int), new(big.Int)
	if l == L1 || l == LZ {
		bits.Set(m)
	}
	if l == LX || l == LZ {
		inv.Set(m)
	}
	return makeWide(width, bits, inv)
}

// Zero returns an all-0 value of the given width.
func Zero(width int) Value { return Filled(width, L0) }

// Ones returns an all-1 value of the given width.
func Ones(width int) Value { return Filled(width, L1) }

// AllX returns an all-X value of the given width.
func AllX(width int) Value { return Filled(width, LX) }

// AllZ returns an all-Z value of the given width.
func AllZ(width int) Value { return Filled(width, LZ) }

// Width returns the bit width of v. The zero Value has width 0.
func (v Value) Width() int {
	if v.p == nil {
		return 0
	}
	return v.p.width()
}

// Bit returns the state of bit i (bit 0 is the least significant).
func (v Value) Bit(i int) Logic {
	if i < 0 || i >= v.Width() {
		panic(errors.Wrapf(ErrBadRange, "bit %d of %d-bit value", i, v.Width()))
	}
	return v.p.bit(i)
}

// IsValid reports whether every bit of v is a driven, known 0 or 1.
func (v Value) IsValid() bool {
	return v.p == nil || !v.p.anyInvalid()
}

// Equal reports structural equality: same width and identical per-bit
// states. Unlike the Eq operator, X compares equal to X and Z to Z.
func (v Value) Equal(o Value) bool {
	if v.Width() != o.Width() {
		return false
	}
	// width-0 values are all equal, whether zero Values or constructed
	if v.Width() == 0 {
		return true
	}
	if a, ok := v.p.(packed); ok {
		b := o.p.(packed)
		return a.bits == b.bits && a.inv == b.inv
	}
	a, b := v.p.(wideVal), o.p.(wideVal)
	return a.bits.Cmp(b.bits) == 0 && a.inv.Cmp(b.inv) == 0
}

// String returns the bits of v most significant first, one of "01xz"
// per bit.
func (v Value) String() string {
	n := v.Width()
	var b strings.Builder
	b.Grow(n)
	for i := n - 1; i >= 0; i-- {
		b.WriteRune(v.p.bit(i).Rune())
	}
	return b.String()
}

// Uint64 returns the numeric value of v. ok is false if any bit is X or
// Z or if the value does not fit in 64 bits.
func (v Value) Uint64() (u uint64, ok bool) {
	if v.p == nil {
		return 0, true
	}
	if !v.IsValid() {
		return 0, false
	}
	if p, isp := v.p.(packed); isp {
		return p.bits, true
	}
	w := v.p.(wideVal)
	if w.bits.BitLen() > 64 {
		return 0, false
	}
	return w.bits.Uint64(), true
}

// Big returns the numeric value of v as a big.Int. ok is false if any
// bit is X or Z.
func (v Value) Big() (b *big.Int, ok bool) {
	if v.p == nil {
		return new(big.Int), true
	}
	if !v.IsValid() {
		return nil, false
	}
	b, _ = v.p.big()
	return b, true
}
