// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "github.com/pkg/errors"

// A BlackBox is a leaf entity declared only by its port list. The
// simulator never evaluates its internals: its outputs are driven by
// external means (Put), while its input ports are ordinary wires the
// surrounding circuit drives under the usual single-driver and width
// rules.
type BlackBox struct {
	d    *Design
	name string
	ins  map[string]*Signal
	outs map[string]*Signal

	inPorts  []Port
	outPorts []Port
}

// NewBlackBox declares a black box with the given input and output port
// specifications (see Ports). Port signals are named name.port.
func (d *Design) NewBlackBox(name, inputs, outputs string) (*BlackBox, error) {
	inp, err := Ports(inputs)
	if err != nil {
		return nil, errors.Wrapf(err, "black box %q inputs", name)
	}
	outp, err := Ports(outputs)
	if err != nil {
		return nil, errors.Wrapf(err, "black box %q outputs", name)
	}
	b := &BlackBox{
		d:        d,
		name:     name,
		ins:      make(map[string]*Signal, len(inp)),
		outs:     make(map[string]*Signal, len(outp)),
		inPorts:  inp,
		outPorts: outp,
	}
	for _, p := range inp {
		s, err := d.newSignal(name+"."+p.Name, p.Width, sigWire)
		if err != nil {
			return nil, err
		}
		b.ins[p.Name] = s
	}
	for _, p := range outp {
		s, err := d.newSignal(name+"."+p.Name, p.Width, sigBoxOut)
		if err != nil {
			return nil, err
		}
		s.drvDesc = "black box " + name
		b.outs[p.Name] = s
	}
	d.boxes = append(d.boxes, b)
	return b, nil
}

// Name returns the black box instance name.
func (b *BlackBox) Name() string { return b.name }

// InPorts returns the declared input ports in declaration order.
func (b *BlackBox) InPorts() []Port { return b.inPorts }

// OutPorts returns the declared output ports in declaration order.
func (b *BlackBox) OutPorts() []Port { return b.outPorts }

// In returns the wire behind an input port. The surrounding circuit
// drives it like any other wire. It returns nil for unknown ports.
func (b *BlackBox) In(port string) *Signal { return b.ins[port] }

// Out returns the signal behind an output port. It is read-only to the
// circuit and driven externally with Put. It returns nil for unknown
// ports.
func (b *BlackBox) Out(port string) *Signal { return b.outs[port] }
