// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "github.com/pkg/errors"

// Edge selects a clock transition.
type Edge uint8

const (
	Posedge Edge = iota
	Negedge
)

// RegisterConfig describes the clocking of a register bank.
type RegisterConfig struct {
	Clock *Signal // required, 1 bit
	Edge  Edge
	// Enable gates sampling when present (1 bit). A 0 holds the current
	// output; an X or Z enable samples all-X.
	Enable *Signal
	// Reset forces outputs to their per-tap reset values (1 bit).
	Reset *Signal
	// AsyncReset makes Reset level-sensitive and independent of the
	// clock; otherwise reset is checked only at the sampling edge.
	AsyncReset bool
}

type regTap struct {
	in    SigID
	out   SigID
	reset Value
}

// A Register is a bank of edge-triggered flip-flops sharing one clock,
// enable and reset. It samples its inputs during pre-tick, after
// combinational logic has settled, and publishes during post-tick,
// after every register sharing the edge has sampled. It is the only
// component that remembers a value across scheduler phases.
type Register struct {
	d    *Design
	name string
	cfg  RegisterConfig
	taps []regTap

	prevClk Logic
	pending []Value
	hasPend bool
}

// NewRegister creates an empty register bank. Add input/output pairs
// with Pipe.
func (d *Design) NewRegister(name string, cfg RegisterConfig) (*Register, error) {
	if cfg.Clock == nil {
		return nil, errors.Errorf("register %q: no clock", name)
	}
	if cfg.Clock.d != d {
		return nil, errors.Errorf("register %q: clock belongs to another design", name)
	}
	if cfg.Clock.width != 1 {
		return nil, errors.Wrapf(ErrWidthMismatch, "register %q: %d-bit clock", name, cfg.Clock.width)
	}
	if cfg.Enable != nil && cfg.Enable.width != 1 {
		return nil, errors.Wrapf(ErrWidthMismatch, "register %q: %d-bit enable", name, cfg.Enable.width)
	}
	if cfg.Reset != nil && cfg.Reset.width != 1 {
		return nil, errors.Wrapf(ErrWidthMismatch, "register %q: %d-bit reset", name, cfg.Reset.width)
	}
	if cfg.AsyncReset && cfg.Reset == nil {
		return nil, errors.Errorf("register %q: async reset without a reset signal", name)
	}
	r := &Register{d: d, name: name, cfg: cfg, prevClk: LX}
	d.regs = append(d.regs, r)
	return r, nil
}

// Pipe adds one flip-flop: out follows in delayed by one matching clock
// edge. resetVal is the value published while reset is asserted; pass
// the zero Value when the register has no reset signal.
func (r *Register) Pipe(name string, in *Signal, resetVal Value) (*Signal, error) {
	if in.d != r.d {
		return nil, errors.Errorf("register %q: input %q belongs to another design", r.name, in.name)
	}
	if r.cfg.Reset != nil && resetVal.Width() != in.width {
		return nil, errors.Wrapf(ErrWidthMismatch, "register %q: %d-bit reset value for %d-bit tap",
			r.name, resetVal.Width(), in.width)
	}
	out, err := r.d.newSignal(name, in.width, sigRegOut)
	if err != nil {
		return nil, err
	}
	out.drvDesc = "register " + r.name
	r.taps = append(r.taps, regTap{in: in.id, out: out.id, reset: resetVal})
	return out, nil
}

func (r *Register) bit(s *Signal) Logic {
	return s.val.Bit(0)
}

// sample runs during pre-tick. It decides, from the settled clock,
// enable and reset, whether this register captures new state, and
// records the captured values without publishing them.
func (r *Register) sample(s *Scheduler) {
	cur := r.bit(r.cfg.Clock)
	prev := r.prevClk
	r.prevClk = cur
	edge := (r.cfg.Edge == Posedge && prev == L0 && cur == L1) ||
		(r.cfg.Edge == Negedge && prev == L1 && cur == L0)

	if r.cfg.AsyncReset {
		switch r.bit(r.cfg.Reset) {
		case L1:
			r.capture(func(t regTap) Value { return t.reset })
			return
		case L0:
		default:
			r.capture(func(t regTap) Value { return AllX(s.d.sigs[t.out].width) })
			return
		}
	}
	if !edge {
		return
	}

	if r.cfg.Enable != nil {
		switch r.bit(r.cfg.Enable) {
		case L1:
		case L0:
			return // hold
		default:
			r.capture(func(t regTap) Value { return AllX(s.d.sigs[t.out].width) })
			return
		}
	}
	if r.cfg.Reset != nil && !r.cfg.AsyncReset {
		switch r.bit(r.cfg.Reset) {
		case L1:
			r.capture(func(t regTap) Value { return t.reset })
			return
		case L0:
		default:
			r.capture(func(t regTap) Value { return AllX(s.d.sigs[t.out].width) })
			return
		}
	}
	r.capture(func(t regTap) Value { return s.d.sigs[t.in].val })
}

func (r *Register) capture(f func(regTap) Value) {
	if r.pending == nil {
		r.pending = make([]Value, len(r.taps))
	}
	for i, t := range r.taps {
		r.pending[i] = f(t)
	}
	r.hasPend = true
}

// publish runs during post-tick and commits the values captured by
// sample. It reports whether any output actually changed, in which case
// the scheduler re-enters the active phase.
func (r *Register) publish(s *Scheduler) bool {
	if !r.hasPend {
		return false
	}
	r.hasPend = false
	changed := false
	for i, t := range r.taps {
		if s.commit(t.out, r.pending[i]) {
			changed = true
		}
	}
	return changed
}

func (r *Register) reset() {
	r.prevClk = LX
	r.pending = nil
	r.hasPend = false
}
