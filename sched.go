// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"container/heap"

	"github.com/pkg/errors"
)

// Phase identifies where the scheduler is within a time step.
type Phase uint8

const (
	PhaseIdle     Phase = iota
	PhaseActive         // combinational fixed-point settle
	PhasePreTick        // registers sample their settled inputs
	PhasePostTick       // sampled register outputs are published
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhasePreTick:
		return "pre-tick"
	case PhasePostTick:
		return "post-tick"
	}
	return "idle"
}

type event struct {
	t   uint64
	seq uint64
	fn  func()
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].t != q[j].t {
		return q[i].t < q[j].t
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x interface{}) { *q = append(*q, x.(*event)) }
func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

type stim struct {
	sig SigID
	val Value
}

// A Waiter is a cooperative continuation registered against a future
// signal edge. The scheduler resolves it in time order; Cancel
// unregisters it. A waiter still pending when the run ends or the
// scheduler is reset is resolved with ErrCanceled rather than left
// dangling.
type Waiter struct {
	s    *Scheduler
	sig  SigID
	pol  Edge
	prev Logic
	fn   func(error)
	done bool
}

// Cancel unregisters the waiter. Its callback will not be invoked.
func (w *Waiter) Cancel() {
	w.done = true
}

const defaultSettleLimit = 10000

// The Scheduler drives one design over a virtual timeline. It is
// single-threaded and cooperative: callbacks and continuations run on
// the caller's goroutine, in time order, and no signal mutation happens
// outside it. Within a time step, all external stimulus applied before
// the active phase is visible to that step's settle; all combinational
// effects settle before any register samples; and all registers sample
// before any publishes.
type Scheduler struct {
	d       *Design
	now     uint64
	phase   Phase
	queue   eventQueue
	seq     uint64
	stim    []stim
	work    []int
	waiters []*Waiter

	started  bool
	finished bool
	err      error
}

func newScheduler(d *Design) *Scheduler {
	return &Scheduler{d: d}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() uint64 { return s.now }

// Phase returns the scheduler's current phase.
func (s *Scheduler) Phase() Phase { return s.phase }

// Err returns the sticky evaluation error, if any.
func (s *Scheduler) Err() error { return s.err }

// At schedules fn to run at absolute virtual time t, before that time
// step's active phase.
func (d *Design) At(t uint64, fn func()) error {
	s := d.sched
	if t < s.now {
		return errors.Wrapf(ErrPastTime, "at %d, now %d", t, s.now)
	}
	s.seq++
	heap.Push(&s.queue, &event{t: t, seq: s.seq, fn: fn})
	return nil
}

// After schedules fn to run delta time units from now.
func (d *Design) After(delta uint64, fn func()) error {
	return d.At(d.sched.now+delta, fn)
}

// OnEdge registers a one-shot continuation resolved after the next
// matching edge of sig, once that time step's register publications
// have settled. The returned Waiter can cancel the registration; if the
// run ends first, fn is called with ErrCanceled.
func (d *Design) OnEdge(sig *Signal, pol Edge, fn func(error)) *Waiter {
	w := &Waiter{s: d.sched, sig: sig.id, pol: pol, prev: sig.val.Bit(0), fn: fn}
	d.sched.waiters = append(d.sched.waiters, w)
	return w
}

// Finish marks the simulation as complete. The current time step is
// still processed; Run returns once it is done.
func (s *Scheduler) Finish() {
	s.finished = true
}

func (s *Scheduler) put(sig *Signal, v Value) error {
	if s.err != nil {
		return s.err
	}
	s.stim = append(s.stim, stim{sig: sig.id, val: v})
	return nil
}

// Run processes events until the queue is exhausted or Finish is
// called. Designs with free-running clocks never exhaust their queue;
// drive those with RunUntil or call Finish from a callback.
func (s *Scheduler) Run() error {
	return s.run(^uint64(0))
}

// RunUntil processes all events up to and including time t and leaves
// the current time at t. Pending continuations and later events remain
// registered, so simulation can be resumed with further calls.
func (s *Scheduler) RunUntil(t uint64) error {
	return s.run(t)
}

// Step processes everything pending at the current time: one full
// active / pre-tick / post-tick round trip.
func (s *Scheduler) Step() error {
	if s.err != nil {
		return s.err
	}
	if s.finished {
		return errors.Wrap(ErrFinished, "step")
	}
	if err := s.timeStep(); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) run(max uint64) error {
	if s.err != nil {
		return s.err
	}
	if s.finished {
		return errors.Wrap(ErrFinished, "run")
	}
	for {
		if err := s.timeStep(); err != nil {
			return err
		}
		if s.finished {
			s.cancelWaiters()
			return nil
		}
		if len(s.queue) == 0 {
			if max == ^uint64(0) {
				s.finished = true
				s.cancelWaiters()
			} else if s.now < max {
				s.now = max
			}
			return nil
		}
		next := s.queue[0].t
		if next > max {
			s.now = max
			return nil
		}
		s.now = next
	}
}

// timeStep runs micro-rounds at the current time until quiescent:
// due callbacks, stimulus, combinational settle, register sampling and
// publication, then edge continuations, which may reopen the same time.
func (s *Scheduler) timeStep() error {
	for round := 0; ; round++ {
		if round > defaultSettleLimit {
			s.err = errors.Wrapf(ErrUnstable, "time %d never quiesces", s.now)
			return s.err
		}
		s.runDueEvents()

		s.phase = PhaseActive
		s.applyStim()
		if err := s.settle(); err != nil {
			return err
		}

		s.phase = PhasePreTick
		for _, r := range s.d.regs {
			r.sample(s)
		}

		s.phase = PhasePostTick
		published := false
		for _, r := range s.d.regs {
			if r.publish(s) {
				published = true
			}
		}
		if published {
			s.phase = PhaseActive
			if err := s.settle(); err != nil {
				return err
			}
		}

		s.resolveWaiters()

		if len(s.stim) == 0 && (len(s.queue) == 0 || s.queue[0].t > s.now) {
			break
		}
	}
	s.phase = PhaseIdle
	return nil
}

func (s *Scheduler) runDueEvents() {
	for len(s.queue) > 0 && s.queue[0].t == s.now {
		e := heap.Pop(&s.queue).(*event)
		e.fn()
	}
}

func (s *Scheduler) applyStim() {
	pending := s.stim
	s.stim = nil
	for _, st := range pending {
		s.commit(st.sig, st.val)
	}
}

func (s *Scheduler) enqueue(idx int) {
	b := s.d.blocks[idx]
	if !b.queued {
		b.queued = true
		s.work = append(s.work, idx)
	}
}

// commit writes v to the signal, emits a change event and wakes the
// listening blocks whose current sensitivity set contains the signal.
// It reports whether the value actually changed.
func (s *Scheduler) commit(id SigID, v Value) bool {
	sig := s.d.sigs[id]
	if sig.val.Equal(v) {
		return false
	}
	sig.val = v
	for _, fn := range s.d.sinks {
		fn(ValueChange{Time: s.now, Signal: sig, Value: v})
	}
	for _, l := range sig.listeners {
		if s.d.blocks[l].sensitive(id) {
			s.enqueue(l)
		}
	}
	return true
}

// settle re-evaluates dirty blocks until no signal changes. The
// iteration bound turns oscillating combinational cycles into
// ErrUnstable instead of an endless loop; feedback through a register
// never trips it because register sampling happens in a later phase.
func (s *Scheduler) settle() error {
	if !s.started {
		s.started = true
		for i := range s.d.blocks {
			s.enqueue(i)
		}
	}
	limit := defaultSettleLimit + 64*len(s.d.blocks)
	for iter := 0; len(s.work) > 0; iter++ {
		if iter > limit {
			names := make([]string, 0, len(s.work))
			for _, idx := range s.work {
				names = append(names, s.d.blocks[idx].name)
			}
			s.err = errors.Wrapf(ErrUnstable, "time %d, still active: %v", s.now, names)
			return s.err
		}
		idx := s.work[0]
		s.work = s.work[1:]
		b := s.d.blocks[idx]
		b.queued = false
		writes, reads := b.eval(s.d)
		if b.kind == blockComb {
			b.sens = reads
		}
		for id, v := range writes {
			s.commit(id, v)
		}
	}
	return nil
}

func (s *Scheduler) resolveWaiters() {
	if len(s.waiters) == 0 {
		return
	}
	// callbacks may register new waiters; those go straight back into
	// s.waiters and are examined on the next resolution pass.
	pending := s.waiters
	s.waiters = nil
	for _, w := range pending {
		if w.done {
			continue
		}
		cur := s.d.sigs[w.sig].val.Bit(0)
		fired := (w.pol == Posedge && w.prev == L0 && cur == L1) ||
			(w.pol == Negedge && w.prev == L1 && cur == L0)
		w.prev = cur
		if fired {
			w.done = true
			w.fn(nil)
			continue
		}
		s.waiters = append(s.waiters, w)
	}
}

func (s *Scheduler) cancelWaiters() {
	pending := s.waiters
	s.waiters = nil
	for _, w := range pending {
		if !w.done {
			w.done = true
			w.fn(errors.Wrap(ErrCanceled, "pending edge continuation"))
		}
	}
}

// Reset returns the scheduler to its initial state: time zero, empty
// event queue, no pending stimulus and no continuations (pending ones
// are resolved with ErrCanceled). All signals revert to their initial
// all-X value and register state is cleared, isolating the next run
// from this one.
func (s *Scheduler) Reset() {
	s.cancelWaiters()
	s.queue = nil
	s.stim = nil
	s.work = nil
	s.now = 0
	s.seq = 0
	s.phase = PhaseIdle
	s.started = false
	s.finished = false
	s.err = nil
	for _, sig := range s.d.sigs {
		sig.val = AllX(sig.width)
	}
	for _, b := range s.d.blocks {
		b.queued = false
		b.sens = nil
	}
	for _, r := range s.d.regs {
		r.reset()
	}
}
