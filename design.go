// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// SigID is the stable index of a signal in its design's arena.
type SigID int

// A Design owns a signal graph and the scheduler that evaluates it.
// Signals, blocks and registers are stored in arenas and refer to each
// other by index, so cyclic topologies (feedback through registers)
// never create ownership cycles.
//
// A Design and everything in it belongs to a single simulation run; use
// Scheduler().Reset() to reuse the same structure for another run.
type Design struct {
	name   string
	sigs   []*Signal
	byName map[string]SigID
	blocks []*block
	regs   []*Register
	boxes  []*BlackBox
	sched  *Scheduler
	sinks  []func(ValueChange)
}

// NewDesign creates an empty design with its own scheduler.
func NewDesign(name string) *Design {
	d := &Design{name: name, byName: make(map[string]SigID)}
	d.sched = newScheduler(d)
	return d
}

// Name returns the design name.
func (d *Design) Name() string { return d.name }

// Scheduler returns the scheduler driving this design.
func (d *Design) Scheduler() *Scheduler { return d.sched }

// Signal looks up a signal by name. It returns nil if no such signal
// exists.
func (d *Design) Signal(name string) *Signal {
	id, ok := d.byName[name]
	if !ok {
		return nil
	}
	return d.sigs[id]
}

func (d *Design) newSignal(name string, width int, kind sigKind) (*Signal, error) {
	if width < 0 {
		return nil, errors.Wrapf(ErrBadRange, "signal %q: width %d", name, width)
	}
	if name == "" {
		name = "__" + strconv.Itoa(len(d.sigs))
	}
	if _, ok := d.byName[name]; ok {
		return nil, errors.Wrap(ErrDuplicateName, name)
	}
	s := &Signal{
		d:     d,
		id:    SigID(len(d.sigs)),
		name:  name,
		width: width,
		kind:  kind,
		val:   AllX(width),
		blk:   -1,
	}
	d.sigs = append(d.sigs, s)
	d.byName[name] = s.id
	return s, nil
}

// Input creates an externally driven signal. Its value is changed with
// Put, typically from timed stimulus callbacks.
func (d *Design) Input(name string, width int) (*Signal, error) {
	return d.newSignal(name, width, sigInput)
}

// Wire creates a signal to be driven by exactly one combinational block,
// continuous assignment or register.
func (d *Design) Wire(name string, width int) (*Signal, error) {
	return d.newSignal(name, width, sigWire)
}

// NewNet creates a resolved net: a signal accepting multiple drivers
// attached with Attach. Drivers merge per bit: identical states merge to
// themselves, Z yields to a driven state, conflicting or unknown
// drivers resolve to X. A net with no drivers floats at all-Z.
func (d *Design) NewNet(name string, width int) (*Signal, error) {
	s, err := d.newSignal(name, width, sigNet)
	if err != nil {
		return nil, err
	}
	b := d.addBlock(&block{
		name: "net " + name,
		kind: blockNet,
		outs: []SigID{s.id},
	})
	s.blk = b.idx
	s.drvDesc = "net"
	return s, nil
}

func (d *Design) addBlock(b *block) *block {
	b.idx = len(d.blocks)
	d.blocks = append(d.blocks, b)
	for _, src := range b.srcs {
		d.sigs[src].listen(b.idx)
	}
	return b
}

// derived creates an expression-backed read-only signal evaluated by fn
// whenever any of its sources change.
func (d *Design) derived(desc string, width int, srcs []*Signal, fn func(vals []Value) Value) *Signal {
	s, err := d.newSignal("", width, sigDerived)
	if err != nil {
		panic(err)
	}
	s.roCause = desc
	s.drvDesc = desc
	ids := make([]SigID, len(srcs))
	for i, src := range srcs {
		if src.d != d {
			panic(errors.Errorf("%s: signal %q belongs to another design", desc, src.name))
		}
		ids[i] = src.id
	}
	b := d.addBlock(&block{
		name: desc,
		kind: blockExpr,
		outs: []SigID{s.id},
		srcs: ids,
		fn:   fn,
	})
	s.blk = b.idx
	return s
}

// Constant creates a read-only signal permanently holding v.
func (d *Design) Constant(v Value) *Signal {
	return d.derived("const "+v.String(), v.Width(), nil, func([]Value) Value { return v })
}

// Graph is a structural dump of the signal/driver network, intended for
// code-generation backends. Nodes are signals; an edge records that the
// driver of To reads From.
type Graph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// GraphNode describes one signal.
type GraphNode struct {
	ID     SigID
	Name   string
	Width  int
	Driver string
}

// GraphEdge is a read dependency: the driver of To reads From.
type GraphEdge struct {
	From, To SigID
}

// Graph exports the structural signal/driver graph of the design.
func (d *Design) Graph() Graph {
	var g Graph
	for _, s := range d.sigs {
		drv := s.drvDesc
		if drv == "" {
			switch s.kind {
			case sigInput:
				drv = "input"
			case sigBoxOut:
				drv = "external"
			default:
				drv = "undriven"
			}
		}
		g.Nodes = append(g.Nodes, GraphNode{ID: s.id, Name: s.name, Width: s.width, Driver: drv})
	}
	for _, b := range d.blocks {
		for _, out := range b.outs {
			for _, src := range b.srcs {
				g.Edges = append(g.Edges, GraphEdge{From: src, To: out})
			}
		}
	}
	for _, r := range d.regs {
		for _, tap := range r.taps {
			g.Edges = append(g.Edges, GraphEdge{From: tap.in, To: tap.out})
			g.Edges = append(g.Edges, GraphEdge{From: r.cfg.Clock.id, To: tap.out})
			if r.cfg.Enable != nil {
				g.Edges = append(g.Edges, GraphEdge{From: r.cfg.Enable.id, To: tap.out})
			}
			if r.cfg.Reset != nil {
				g.Edges = append(g.Edges, GraphEdge{From: r.cfg.Reset.id, To: tap.out})
			}
		}
	}
	return g
}
