// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package script runs Starlark testbenches against a logsim design.
//
// A testbench drives top-level inputs, advances simulated time and
// checks outputs:
//
//	put("a", "0101")
//	put("b", 3)
//	tick(2)
//	expect("sum", "1000")
//
// The script runs on the scheduler's goroutine; time only advances
// through tick().
package script

import (
	"fmt"

	"github.com/pkg/errors"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/db47h/logsim"
)

// A Runner executes testbench scripts against one design.
type Runner struct {
	d *logsim.Design
}

// New returns a Runner for d.
func New(d *logsim.Design) *Runner {
	return &Runner{d: d}
}

func (r *Runner) signal(fn string, v starlark.Value) (*logsim.Signal, error) {
	name, ok := starlark.AsString(v)
	if !ok {
		return nil, errors.Errorf("%s: signal name must be a string, got %s", fn, v.Type())
	}
	s := r.d.Signal(name)
	if s == nil {
		return nil, errors.Wrapf(logsim.ErrUnknownSignal, "%s(%q)", fn, name)
	}
	return s, nil
}

func (r *Runner) value(fn string, s *logsim.Signal, v starlark.Value) (logsim.Value, error) {
	switch v := v.(type) {
	case starlark.String:
		val, err := logsim.Parse(string(v))
		if err != nil {
			return logsim.Value{}, errors.Wrap(err, fn)
		}
		return val, nil
	case starlark.Int:
		u, ok := v.Uint64()
		if !ok {
			return logsim.Value{}, errors.Errorf("%s: integer out of range for %q", fn, s.Name())
		}
		return logsim.FromUint64(u, s.Width()), nil
	}
	return logsim.Value{}, errors.Errorf("%s: unsupported value type %s", fn, v.Type())
}

func (r *Runner) builtins() starlark.StringDict {
	sch := r.d.Scheduler()
	return starlark.StringDict{
		"put": starlark.NewBuiltin("put", func(t *starlark.Thread, b *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var sv, vv starlark.Value
			if err := starlark.UnpackPositionalArgs("put", args, kwargs, 2, &sv, &vv); err != nil {
				return nil, err
			}
			s, err := r.signal("put", sv)
			if err != nil {
				return nil, err
			}
			val, err := r.value("put", s, vv)
			if err != nil {
				return nil, err
			}
			if err := s.Put(val); err != nil {
				return nil, err
			}
			return starlark.None, nil
		}),
		"get": starlark.NewBuiltin("get", func(t *starlark.Thread, b *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var sv starlark.Value
			if err := starlark.UnpackPositionalArgs("get", args, kwargs, 1, &sv); err != nil {
				return nil, err
			}
			s, err := r.signal("get", sv)
			if err != nil {
				return nil, err
			}
			return starlark.String(s.Value().String()), nil
		}),
		"width": starlark.NewBuiltin("width", func(t *starlark.Thread, b *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var sv starlark.Value
			if err := starlark.UnpackPositionalArgs("width", args, kwargs, 1, &sv); err != nil {
				return nil, err
			}
			s, err := r.signal("width", sv)
			if err != nil {
				return nil, err
			}
			return starlark.MakeInt(s.Width()), nil
		}),
		"tick": starlark.NewBuiltin("tick", func(t *starlark.Thread, b *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var n int64 = 1
			if err := starlark.UnpackPositionalArgs("tick", args, kwargs, 0, &n); err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, errors.Errorf("tick: negative duration %d", n)
			}
			if err := sch.RunUntil(sch.Now() + uint64(n)); err != nil {
				return nil, err
			}
			return starlark.None, nil
		}),
		"now": starlark.NewBuiltin("now", func(t *starlark.Thread, b *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			return starlark.MakeUint64(sch.Now()), nil
		}),
		"expect": starlark.NewBuiltin("expect", func(t *starlark.Thread, b *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var sv, vv starlark.Value
			if err := starlark.UnpackPositionalArgs("expect", args, kwargs, 2, &sv, &vv); err != nil {
				return nil, err
			}
			s, err := r.signal("expect", sv)
			if err != nil {
				return nil, err
			}
			want, err := r.value("expect", s, vv)
			if err != nil {
				return nil, err
			}
			if got := s.Value(); !got.Equal(want) {
				return nil, fmt.Errorf("expect: %s = %s, want %s at t=%d",
					s.Name(), got, want, sch.Now())
			}
			return starlark.None, nil
		}),
		"finish": starlark.NewBuiltin("finish", func(t *starlark.Thread, b *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			sch.Finish()
			return starlark.None, nil
		}),
	}
}

// Exec runs the testbench in src. name is used in error positions.
func (r *Runner) Exec(name, src string) error {
	thread := &starlark.Thread{Name: name}
	opts := &syntax.FileOptions{While: true, TopLevelControl: true, GlobalReassign: true}
	_, err := starlark.ExecFileOptions(opts, thread, name, src, r.builtins())
	return errors.Wrap(err, "testbench "+name)
}
