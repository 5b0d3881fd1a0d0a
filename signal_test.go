// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesign_signals(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("top")
	assert.Equal("top", d.Name())

	a := mustInput(t, d, "a", 4)
	assert.Equal("a", a.Name())
	assert.Equal(4, a.Width())
	assert.True(a.Value().Equal(AllX(4)), "signals start all-X")
	assert.Same(a, d.Signal("a"))
	assert.Nil(d.Signal("nope"))

	_, err := d.Input("a", 2)
	assert.ErrorIs(err, ErrDuplicateName)
	_, err = d.Wire("w", -1)
	assert.ErrorIs(err, ErrBadRange)

	// derived signals get fresh generated names
	n := a.Not()
	assert.NotEmpty(n.Name())
	assert.Same(n, d.Signal(n.Name()))
}

func TestSignal_putRules(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("put")
	a := mustInput(t, d, "a", 4)
	w := mustWire(t, d, "w", 4)

	assert.ErrorIs(a.Put(Zero(2)), ErrWidthMismatch)
	assert.ErrorIs(w.Put(Zero(4)), ErrNotAnInput)
	assert.ErrorIs(a.Not().Put(Zero(4)), ErrReadOnly)
	assert.ErrorIs(d.Constant(Zero(4)).Put(Zero(4)), ErrReadOnly)
	assert.NoError(a.Put(Zero(4)))
}

func TestSignal_zeroWidth(t *testing.T) {
	assert := assert.New(t)

	// a zero Value on a width-0 input flows through the scheduler
	// like any other stimulus
	d := NewDesign("zw")
	z := mustInput(t, d, "z", 0)
	assert.NoError(z.Put(Value{}))
	step(t, d)
	assert.True(z.Value().Equal(Value{}))
	assert.Equal(0, z.Value().Width())
}

func TestSignal_assignRules(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("assign")
	a := mustInput(t, d, "a", 4)
	b := mustInput(t, d, "b", 4)
	w := mustWire(t, d, "w", 4)

	assert.ErrorIs(a.Assign(b), ErrMultipleDrivers, "inputs are driven externally")
	assert.ErrorIs(a.Not().Assign(b), ErrReadOnly)

	wide := mustInput(t, d, "wide", 8)
	assert.ErrorIs(w.Assign(wide), ErrWidthMismatch)

	assert.NoError(w.Assign(a))
	assert.ErrorIs(w.Assign(b), ErrMultipleDrivers, "one driver per wire")

	other := NewDesign("other")
	ow := mustWire(t, other, "w", 4)
	assert.Error(ow.Assign(a), "cross-design assignment")

	put(t, a, FromUint64(6, 4))
	step(t, d)
	assert.True(w.Value().Equal(FromUint64(6, 4)))
}

func TestNet_resolution(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("net")
	a := mustInput(t, d, "a", 4)
	b := mustInput(t, d, "b", 4)
	n, err := d.NewNet("n", 4)
	require.NoError(t, err)

	assert.ErrorIs(n.Assign(a), ErrMultipleDrivers, "nets take Attach, not Assign")
	assert.ErrorIs(n.Put(Zero(4)), ErrNotAnInput)
	w := mustWire(t, d, "w", 4)
	assert.ErrorIs(w.Attach(a), ErrMultipleDrivers, "only nets accept Attach")

	require.NoError(t, n.Attach(a))
	require.NoError(t, n.Attach(b))

	// bit 3: 0 vs 0, bit 2: 1 vs z, bit 1: z vs 1, bit 0: 1 vs 0
	put(t, a, MustParse("01z1"))
	put(t, b, MustParse("0z10"))
	step(t, d)
	assert.Equal("011x", n.Value().String())

	// releasing both drivers floats the net
	put(t, a, AllZ(4))
	put(t, b, AllZ(4))
	step(t, d)
	assert.True(n.Value().Equal(AllZ(4)))
}

func TestNet_undriven(t *testing.T) {
	d := NewDesign("float")
	n, err := d.NewNet("n", 4)
	require.NoError(t, err)
	step(t, d)
	assert.True(t, n.Value().Equal(AllZ(4)), "a net with no drivers floats")
}

func TestDesign_constant(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("const")
	c := d.Constant(MustParse("1010"))
	step(t, d)
	assert.True(c.Value().Equal(MustParse("1010")))
	assert.ErrorIs(c.Assign(c), ErrReadOnly)
}

func TestDesign_graph(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("g")
	clk, err := d.Clock("clk", 2)
	require.NoError(t, err)
	a := mustInput(t, d, "a", 4)
	w := mustWire(t, d, "w", 4)
	require.NoError(t, w.Assign(a))
	r, err := d.NewRegister("r", RegisterConfig{Clock: clk})
	require.NoError(t, err)
	q, err := r.Pipe("q", w, Value{})
	require.NoError(t, err)

	g := d.Graph()
	assert.Len(g.Nodes, 4)

	byID := make(map[SigID]GraphNode)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	assert.Equal("input", byID[a.ID()].Driver)
	assert.Equal("a", byID[w.ID()].Driver)
	assert.Equal("register r", byID[q.ID()].Driver)
	assert.Equal(4, byID[q.ID()].Width)

	has := func(from, to SigID) bool {
		for _, e := range g.Edges {
			if e.From == from && e.To == to {
				return true
			}
		}
		return false
	}
	assert.True(has(a.ID(), w.ID()), "assignment read edge")
	assert.True(has(w.ID(), q.ID()), "register data edge")
	assert.True(has(clk.ID(), q.ID()), "register clock edge")
}

func TestBind(t *testing.T) {
	assert := assert.New(t)

	d := NewDesign("bind")
	a := mustInput(t, d, "a", 4)
	qn := mustInput(t, d, "q_n", 1)
	mustInput(t, d, "skipme", 1)

	var probe struct {
		A       *Signal
		QN      *Signal `sig:"q_n"`
		Ignored *Signal `sig:"-"`
		Width   int
	}
	require.NoError(t, Bind(d, &probe))
	assert.Same(a, probe.A)
	assert.Same(qn, probe.QN)
	assert.Nil(probe.Ignored)

	var missing struct {
		Nope *Signal
	}
	assert.ErrorIs(Bind(d, &missing), ErrUnknownSignal)
	assert.Error(Bind(d, probe), "not a pointer")
}
