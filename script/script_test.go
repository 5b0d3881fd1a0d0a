// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/script"
)

func adder(t *testing.T) *logsim.Design {
	t.Helper()
	d := logsim.NewDesign("adder")
	a, err := d.Input("a", 8)
	require.NoError(t, err)
	b, err := d.Input("b", 8)
	require.NoError(t, err)
	sum, err := d.Wire("sum", 8)
	require.NoError(t, err)
	require.NoError(t, sum.Assign(a.Add(b)))
	return d
}

func TestRunner_adder(t *testing.T) {
	r := script.New(adder(t))
	err := r.Exec("adder.star", `
put("a", 3)
put("b", 4)
tick()
expect("sum", 7)
expect("sum", "00000111")

put("a", "11111111")
put("b", 1)
tick()
expect("sum", 0)

if width("sum") != 8:
    fail("bad width")
`)
	require.NoError(t, err)
}

func TestRunner_counter(t *testing.T) {
	// a clocked testbench: 4-bit counter with synchronous reset
	d := logsim.NewDesign("counter")
	clk, err := d.Clock("clk", 2)
	require.NoError(t, err)
	rst, err := d.Input("rst", 1)
	require.NoError(t, err)
	reg, err := d.NewRegister("reg", logsim.RegisterConfig{Clock: clk, Reset: rst})
	require.NoError(t, err)
	next, err := d.Wire("next", 4)
	require.NoError(t, err)
	q, err := reg.Pipe("q", next, logsim.Zero(4))
	require.NoError(t, err)
	require.NoError(t, next.Assign(q.Add(d.Constant(logsim.FromUint64(1, 4)))))

	r := script.New(d)
	err = r.Exec("counter.star", `
put("rst", 1)
tick(1)
expect("q", 0)
put("rst", 0)

n = 0
while n < 5:
    tick(2)
    n += 1
expect("q", 5)
if now() != 11:
    fail("bad time", now())
`)
	require.NoError(t, err)
}

func TestRunner_errors(t *testing.T) {
	assert := assert.New(t)

	r := script.New(adder(t))
	assert.ErrorIs(r.Exec("t", `put("nope", 1)`), logsim.ErrUnknownSignal)
	assert.Error(r.Exec("t", `put("a", [1])`), "unsupported value type")
	assert.Error(r.Exec("t", `put("a", "01_")`), "bad literal width")
	assert.Error(r.Exec("t", `tick(-1)`))
	assert.Error(r.Exec("t", `expect("a", 1)`), "a is still undriven")
	assert.Error(r.Exec("t", `syntax error here`))
}

func TestRunner_finish(t *testing.T) {
	d := adder(t)
	r := script.New(d)
	require.NoError(t, r.Exec("t", `
put("a", 1)
put("b", 1)
tick()
finish()
`))
	assert.ErrorIs(t, d.Scheduler().Run(), logsim.ErrFinished)
}
