// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "github.com/pkg/errors"

// Logic is the state of a single bit: 0, 1, X (unknown) or Z (floating).
type Logic uint8

const (
	L0 Logic = iota
	L1
	LX
	LZ
)

// Rune returns the textual form of l: '0', '1', 'x' or 'z'.
func (l Logic) Rune() rune {
	switch l {
	case L0:
		return '0'
	case L1:
		return '1'
	case LZ:
		return 'z'
	}
	return 'x'
}

func (l Logic) String() string { return string(l.Rune()) }

// Valid reports whether l is a driven, known state (0 or 1).
func (l Logic) Valid() bool { return l == L0 || l == L1 }

// Not returns the four-state complement of l. X and Z both invert to X.
func (l Logic) Not() Logic {
	switch l {
	case L0:
		return L1
	case L1:
		return L0
	}
	return LX
}

// And returns the four-state conjunction: a definite 0 on either side
// dominates, otherwise any X or Z yields X.
func (l Logic) And(o Logic) Logic {
	if l == L0 || o == L0 {
		return L0
	}
	if l == L1 && o == L1 {
		return L1
	}
	return LX
}

// Or returns the four-state disjunction: a definite 1 on either side
// dominates, otherwise any X or Z yields X.
func (l Logic) Or(o Logic) Logic {
	if l == L1 || o == L1 {
		return L1
	}
	if l == L0 && o == L0 {
		return L0
	}
	return LX
}

// Xor returns the four-state exclusive or. Any X or Z operand yields X.
func (l Logic) Xor(o Logic) Logic {
	if !l.Valid() || !o.Valid() {
		return LX
	}
	if l == o {
		return L0
	}
	return L1
}

// Resolve merges two states driving the same net. Identical states merge
// to themselves, Z yields to any driven state, and conflicting or unknown
// drivers resolve to X.
func (l Logic) Resolve(o Logic) Logic {
	switch {
	case l == o:
		return l
	case l == LX || o == LX:
		return LX
	case l == LZ:
		return o
	case o == LZ:
		return l
	}
	return LX
}

// ParseLogic converts one of '0', '1', 'x', 'z' (case-insensitive) to a
// Logic state.
func ParseLogic(r rune) (Logic, error) {
	switch r {
	case '0':
		return L0, nil
	case '1':
		return L1, nil
	case 'x', 'X':
		return LX, nil
	case 'z', 'Z':
		return LZ, nil
	}
	return LX, errors.Errorf("invalid logic state %q", r)
}
