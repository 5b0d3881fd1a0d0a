// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "github.com/pkg/errors"

type sigKind uint8

const (
	sigInput   sigKind = iota // externally driven top-level stimulus
	sigWire                   // driven by one block, assignment or register
	sigNet                    // resolved multi-driver net
	sigDerived                // expression-backed, read-only
	sigRegOut                 // register output
	sigBoxOut                 // black box output, externally driven
)

// A Signal is a named, typed holder of a current four-state Value.
// Ordinary signals accept exactly one driver; nets created with NewNet
// merge multiple drivers under an explicit resolution rule. Signals are
// mutated only by the scheduler, in response to upstream changes or
// external stimulus.
type Signal struct {
	d     *Design
	id    SigID
	name  string
	width int
	kind  sigKind
	val   Value

	driven    bool
	drvDesc   string
	roCause   string // construct rejecting external drivers, if any
	listeners []int  // static listener block indexes
	netSrcs   []SigID
	blk       int // index of the driving block, -1 if none
}

// Name returns the signal name.
func (s *Signal) Name() string { return s.name }

// Width returns the signal's bit width.
func (s *Signal) Width() int { return s.width }

// ID returns the signal's stable arena index.
func (s *Signal) ID() SigID { return s.id }

// Value returns the signal's current value.
func (s *Signal) Value() Value { return s.val }

func (s *Signal) listen(blk int) {
	for _, l := range s.listeners {
		if l == blk {
			return
		}
	}
	s.listeners = append(s.listeners, blk)
}

// Put schedules an external stimulus write. It is only valid on
// top-level inputs and black box outputs; the write is applied through
// the scheduler at the start of the next active phase, never
// synchronously.
func (s *Signal) Put(v Value) error {
	switch s.kind {
	case sigInput, sigBoxOut:
	case sigDerived:
		return errors.Wrapf(ErrReadOnly, "put %q: driven by %s", s.name, s.roCause)
	default:
		return errors.Wrap(ErrNotAnInput, s.name)
	}
	if v.Width() != s.width {
		return errors.Wrapf(ErrWidthMismatch, "put %q: %d-bit value on %d-bit signal", s.name, v.Width(), s.width)
	}
	return s.d.sched.put(s, v)
}

// Assign registers a continuous assignment driving s with the value of
// src. It is the sole driver of s: a second driver is a build error,
// and read-only signals (operator results, constants, slices,
// concatenations, register and black box outputs) reject assignment
// outright, reporting the construct that owns them.
func (s *Signal) Assign(src *Signal) error {
	switch s.kind {
	case sigWire:
	case sigNet:
		return errors.Wrapf(ErrMultipleDrivers, "assign %q: use Attach to drive a net", s.name)
	case sigInput:
		return errors.Wrapf(ErrMultipleDrivers, "assign %q: input signals are driven externally", s.name)
	case sigBoxOut:
		return errors.Wrapf(ErrReadOnly, "assign %q: black box output", s.name)
	case sigRegOut:
		return errors.Wrapf(ErrReadOnly, "assign %q: register output", s.name)
	default:
		return errors.Wrapf(ErrReadOnly, "assign %q: driven by %s", s.name, s.roCause)
	}
	if src.d != s.d {
		return errors.Errorf("assign %q: source %q belongs to another design", s.name, src.name)
	}
	if src.width != s.width {
		return errors.Wrapf(ErrWidthMismatch, "assign %q: %d-bit source on %d-bit signal", s.name, src.width, s.width)
	}
	if s.driven {
		return errors.Wrap(ErrMultipleDrivers, s.name)
	}
	s.driven = true
	s.drvDesc = src.name
	b := s.d.addBlock(&block{
		name: "assign " + s.name,
		kind: blockExpr,
		outs: []SigID{s.id},
		srcs: []SigID{src.id},
		fn:   func(vals []Value) Value { return vals[0] },
	})
	s.blk = b.idx
	return nil
}

// Attach adds a driver to a net. Only signals created with NewNet
// accept more than one driver.
func (s *Signal) Attach(src *Signal) error {
	if s.kind != sigNet {
		return errors.Wrapf(ErrMultipleDrivers, "attach %q: not a net", s.name)
	}
	if src.d != s.d {
		return errors.Errorf("attach %q: source %q belongs to another design", s.name, src.name)
	}
	if src.width != s.width {
		return errors.Wrapf(ErrWidthMismatch, "attach %q: %d-bit driver on %d-bit net", s.name, src.width, s.width)
	}
	s.netSrcs = append(s.netSrcs, src.id)
	b := s.d.blocks[s.blk]
	b.srcs = append(b.srcs, src.id)
	src.listen(b.idx)
	return nil
}

// resolveNet merges the attached drivers of a net per bit. With no
// drivers the net floats at all-Z.
func (s *Signal) resolveNet() Value {
	ls := make([]Logic, s.width)
	for i := range ls {
		ls[i] = LZ
	}
	for _, src := range s.netSrcs {
		v := s.d.sigs[src].val
		for i := range ls {
			ls[i] = ls[i].Resolve(v.Bit(i))
		}
	}
	return fromLogics(ls)
}
