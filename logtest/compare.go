// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package logtest provides utility functions for testing circuits.
package logtest

import (
	"math/rand"
	"testing"

	"github.com/db47h/logsim"
)

// RandValue returns a fully valid random value of the given width.
func RandValue(rng *rand.Rand, width int) logsim.Value {
	ls := make([]rune, width)
	for i := range ls {
		if rng.Int63()&(1<<62) != 0 {
			ls[i] = '1'
		} else {
			ls[i] = '0'
		}
	}
	return logsim.MustParse(string(ls))
}

// Compare drives two designs exposing the same named inputs and outputs
// with identical stimulus and fails the test on the first divergence.
// It tries all-zero and all-one vectors first, then the given number of
// random vectors.
func Compare(t *testing.T, a, b *logsim.Design, inputs, outputs []string, vectors int) {
	t.Helper()

	rng := rand.New(rand.NewSource(1))

	drive := func(mk func(width int) logsim.Value) {
		t.Helper()
		for _, name := range inputs {
			sa, sb := a.Signal(name), b.Signal(name)
			if sa == nil || sb == nil {
				t.Fatalf("input %q missing from a design", name)
			}
			if sa.Width() != sb.Width() {
				t.Fatalf("input %q: width %d vs %d", name, sa.Width(), sb.Width())
			}
			v := mk(sa.Width())
			if err := sa.Put(v); err != nil {
				t.Fatal(err)
			}
			if err := sb.Put(v); err != nil {
				t.Fatal(err)
			}
		}
		if err := a.Scheduler().Step(); err != nil {
			t.Fatal(err)
		}
		if err := b.Scheduler().Step(); err != nil {
			t.Fatal(err)
		}
		for _, name := range outputs {
			sa, sb := a.Signal(name), b.Signal(name)
			if sa == nil || sb == nil {
				t.Fatalf("output %q missing from a design", name)
			}
			if va, vb := sa.Value(), sb.Value(); !va.Equal(vb) {
				t.Fatalf("output %q: %s != %s", name, va, vb)
			}
		}
	}

	drive(func(w int) logsim.Value { return logsim.Zero(w) })
	drive(func(w int) logsim.Value { return logsim.Ones(w) })
	for i := 0; i < vectors; i++ {
		drive(func(w int) logsim.Value { return RandValue(rng, w) })
	}
}
