// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "github.com/pkg/errors"

// Clock creates a free-running clock input: low at time 0, rising at
// every odd multiple of period/2. The toggle reschedules itself
// indefinitely, so designs using Clock must be driven with RunUntil or
// stopped with Finish.
func (d *Design) Clock(name string, period uint64) (*Signal, error) {
	if period < 2 || period%2 != 0 {
		return nil, errors.Errorf("clock %q: period %d must be even and >= 2", name, period)
	}
	clk, err := d.Input(name, 1)
	if err != nil {
		return nil, err
	}
	half := period / 2
	state := L0
	var toggle func()
	toggle = func() {
		state = state.Not()
		_ = clk.Put(logic1(state))
		_ = d.After(half, toggle)
	}
	if err := d.At(0, func() { _ = clk.Put(logic1(L0)) }); err != nil {
		return nil, err
	}
	if err := d.At(half, toggle); err != nil {
		return nil, err
	}
	return clk, nil
}
