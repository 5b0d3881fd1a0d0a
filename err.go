// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "errors"

// Structural description errors. These are always fatal to the build or
// evaluation step that detects them: they describe invalid hardware, not
// transient simulation conditions.
var (
	ErrWidthMismatch        = errors.New("width mismatch")
	ErrMultipleDrivers      = errors.New("signal already has a driver")
	ErrReadOnly             = errors.New("signal is read-only")
	ErrIncompleteAssignment = errors.New("output not assigned on every path")
	ErrWriteAfterRead       = errors.New("output read before assignment")
	ErrUnstable             = errors.New("combinational logic did not converge")
	ErrBadRange             = errors.New("bit range out of bounds")
	ErrBadReplicate         = errors.New("replication count must be >= 1")
	ErrDuplicateName        = errors.New("signal name already in use")
	ErrUnknownSignal        = errors.New("unknown signal")
	ErrNotAnInput           = errors.New("not an externally driven signal")
	ErrPastTime             = errors.New("scheduled time is in the past")
	ErrCanceled             = errors.New("simulation run canceled")
	ErrFinished             = errors.New("simulation already finished")
)
