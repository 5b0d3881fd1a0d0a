// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

// A ValueChange records one committed signal transition, for waveform
// recorders and other observers. Events are delivered in non-decreasing
// time order; within one time step, post-tick register publications are
// delivered after the active-phase settle events they followed.
type ValueChange struct {
	Time   uint64
	Signal *Signal
	Value  Value
}

// OnChange registers a sink receiving every committed value change.
// Sinks run synchronously on the scheduler goroutine and must not
// mutate the design.
func (d *Design) OnChange(fn func(ValueChange)) {
	d.sinks = append(d.sinks, fn)
}
