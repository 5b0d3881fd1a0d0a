// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_pipeline(t *testing.T) {
	assert := assert.New(t)

	// q follows in delayed by one posedge; posedges at 1, 3, 5, ...
	d := NewDesign("pipe")
	clk, err := d.Clock("clk", 2)
	require.NoError(t, err)
	in := mustInput(t, d, "in", 4)

	r, err := d.NewRegister("r", RegisterConfig{Clock: clk})
	require.NoError(t, err)
	q, err := r.Pipe("q", in, Value{})
	require.NoError(t, err)

	put(t, in, FromUint64(5, 4))
	require.NoError(t, d.Scheduler().RunUntil(0))
	assert.True(q.Value().Equal(AllX(4)), "no edge yet")

	require.NoError(t, d.Scheduler().RunUntil(1))
	assert.True(q.Value().Equal(FromUint64(5, 4)), "sampled at the first posedge")

	put(t, in, FromUint64(9, 4))
	require.NoError(t, d.Scheduler().RunUntil(2))
	assert.True(q.Value().Equal(FromUint64(5, 4)), "held between edges")

	require.NoError(t, d.Scheduler().RunUntil(3))
	assert.True(q.Value().Equal(FromUint64(9, 4)))
}

func TestRegister_toggle(t *testing.T) {
	assert := assert.New(t)

	// feedback through a register is not a combinational cycle
	d := NewDesign("toggle")
	clk, err := d.Clock("clk", 2)
	require.NoError(t, err)
	rst := mustInput(t, d, "rst", 1)

	r, err := d.NewRegister("r", RegisterConfig{Clock: clk, Reset: rst})
	require.NoError(t, err)
	next := mustWire(t, d, "next", 1)
	q, err := r.Pipe("q", next, Zero(1))
	require.NoError(t, err)
	require.NoError(t, next.Assign(q.Not()))

	put(t, rst, logic1(L1))
	require.NoError(t, d.Scheduler().RunUntil(1))
	assert.Equal(L0, q.Value().Bit(0), "reset value at the first edge")

	put(t, rst, logic1(L0))
	for i, want := range []Logic{L1, L0, L1, L0} {
		require.NoError(t, d.Scheduler().RunUntil(uint64(3+2*i)))
		assert.Equal(want, q.Value().Bit(0), "edge %d", i)
	}
}

func TestRegister_enable(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("en")
	clk, err := d.Clock("clk", 2)
	require.NoError(t, err)
	en := mustInput(t, d, "en", 1)
	in := mustInput(t, d, "in", 8)

	r, err := d.NewRegister("r", RegisterConfig{Clock: clk, Enable: en})
	require.NoError(t, err)
	q, err := r.Pipe("q", in, Value{})
	require.NoError(t, err)

	put(t, en, logic1(L1))
	put(t, in, FromUint64(0x11, 8))
	require.NoError(t, d.Scheduler().RunUntil(1))
	assert.True(q.Value().Equal(FromUint64(0x11, 8)))

	put(t, en, logic1(L0))
	put(t, in, FromUint64(0x22, 8))
	require.NoError(t, d.Scheduler().RunUntil(3))
	assert.True(q.Value().Equal(FromUint64(0x11, 8)), "deasserted enable holds")

	put(t, en, logic1(LX))
	require.NoError(t, d.Scheduler().RunUntil(5))
	assert.True(q.Value().Equal(AllX(8)), "unknown enable samples all-X")

	put(t, en, logic1(L1))
	require.NoError(t, d.Scheduler().RunUntil(7))
	assert.True(q.Value().Equal(FromUint64(0x22, 8)))
}

func TestRegister_syncReset(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("srst")
	clk, err := d.Clock("clk", 4)
	require.NoError(t, err)
	rst := mustInput(t, d, "rst", 1)
	in := mustInput(t, d, "in", 8)

	r, err := d.NewRegister("r", RegisterConfig{Clock: clk, Reset: rst})
	require.NoError(t, err)
	q, err := r.Pipe("q", in, FromUint64(0xA5, 8))
	require.NoError(t, err)

	put(t, rst, logic1(L0))
	put(t, in, FromUint64(1, 8))
	require.NoError(t, d.Scheduler().RunUntil(2))
	assert.True(q.Value().Equal(FromUint64(1, 8)))

	// synchronous reset waits for the next edge
	put(t, rst, logic1(L1))
	require.NoError(t, d.Scheduler().RunUntil(4))
	assert.True(q.Value().Equal(FromUint64(1, 8)), "no edge between 2 and 4")
	require.NoError(t, d.Scheduler().RunUntil(6))
	assert.True(q.Value().Equal(FromUint64(0xA5, 8)))
}

func TestRegister_asyncReset(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("arst")
	clk, err := d.Clock("clk", 4)
	require.NoError(t, err)
	rst := mustInput(t, d, "rst", 1)
	in := mustInput(t, d, "in", 8)

	r, err := d.NewRegister("r", RegisterConfig{Clock: clk, Reset: rst, AsyncReset: true})
	require.NoError(t, err)
	q, err := r.Pipe("q", in, Zero(8))
	require.NoError(t, err)

	put(t, rst, logic1(L0))
	put(t, in, FromUint64(0x42, 8))
	require.NoError(t, d.Scheduler().RunUntil(2))
	assert.True(q.Value().Equal(FromUint64(0x42, 8)))

	// asserting reset between edges takes effect immediately
	require.NoError(t, d.At(3, func() { _ = rst.Put(logic1(L1)) }))
	require.NoError(t, d.Scheduler().RunUntil(3))
	assert.True(q.Value().Equal(Zero(8)))

	// and holds through subsequent edges
	require.NoError(t, d.Scheduler().RunUntil(6))
	assert.True(q.Value().Equal(Zero(8)))
}

func TestRegister_swap(t *testing.T) {
	assert := assert.New(t)

	// all registers sample before any publishes: two cross-coupled
	// taps exchange values instead of collapsing to one.
	d := NewDesign("swap")
	clk, err := d.Clock("clk", 2)
	require.NoError(t, err)
	rst := mustInput(t, d, "rst", 1)

	r, err := d.NewRegister("r", RegisterConfig{Clock: clk, Reset: rst})
	require.NoError(t, err)
	wa := mustWire(t, d, "wa", 4)
	wb := mustWire(t, d, "wb", 4)
	qa, err := r.Pipe("qa", wa, FromUint64(3, 4))
	require.NoError(t, err)
	qb, err := r.Pipe("qb", wb, FromUint64(12, 4))
	require.NoError(t, err)
	require.NoError(t, wa.Assign(qb))
	require.NoError(t, wb.Assign(qa))

	put(t, rst, logic1(L1))
	require.NoError(t, d.Scheduler().RunUntil(1))
	put(t, rst, logic1(L0))

	a, b := uint64(3), uint64(12)
	for edge := uint64(3); edge < 11; edge += 2 {
		a, b = b, a
		require.NoError(t, d.Scheduler().RunUntil(edge))
		assert.True(qa.Value().Equal(FromUint64(a, 4)), "edge at %d", edge)
		assert.True(qb.Value().Equal(FromUint64(b, 4)), "edge at %d", edge)
	}
}

func TestRegister_negedge(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("neg")
	clk, err := d.Clock("clk", 2)
	require.NoError(t, err)
	in := mustInput(t, d, "in", 4)

	r, err := d.NewRegister("r", RegisterConfig{Clock: clk, Edge: Negedge})
	require.NoError(t, err)
	q, err := r.Pipe("q", in, Value{})
	require.NoError(t, err)

	put(t, in, FromUint64(7, 4))
	require.NoError(t, d.Scheduler().RunUntil(1))
	assert.True(q.Value().Equal(AllX(4)), "posedge does not sample")
	require.NoError(t, d.Scheduler().RunUntil(2))
	assert.True(q.Value().Equal(FromUint64(7, 4)), "negedge at 2")
}

func TestRegister_errors(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("bad")
	clk := mustInput(t, d, "clk", 1)
	wide := mustInput(t, d, "wide", 2)
	in := mustInput(t, d, "in", 4)

	_, err := d.NewRegister("r", RegisterConfig{})
	assert.Error(err, "no clock")
	_, err = d.NewRegister("r", RegisterConfig{Clock: wide})
	assert.ErrorIs(err, ErrWidthMismatch)
	_, err = d.NewRegister("r", RegisterConfig{Clock: clk, Enable: wide})
	assert.ErrorIs(err, ErrWidthMismatch)
	_, err = d.NewRegister("r", RegisterConfig{Clock: clk, Reset: wide})
	assert.ErrorIs(err, ErrWidthMismatch)
	_, err = d.NewRegister("r", RegisterConfig{Clock: clk, AsyncReset: true})
	assert.Error(err, "async reset needs a reset signal")

	rst := mustInput(t, d, "rst", 1)
	r, err := d.NewRegister("r", RegisterConfig{Clock: clk, Reset: rst})
	require.NoError(t, err)
	_, err = r.Pipe("q", in, Zero(2))
	assert.ErrorIs(err, ErrWidthMismatch, "reset value width")

	q, err := r.Pipe("q", in, Zero(4))
	require.NoError(t, err)
	assert.ErrorIs(q.Assign(in), ErrReadOnly, "register outputs reject drivers")
	assert.ErrorIs(q.Put(Zero(4)), ErrNotAnInput)
}
