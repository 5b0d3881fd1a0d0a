// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package logsim provides a four-state discrete-event logic simulator.

Circuits are described as a graph of signals carrying four-state values
(0, 1, X and Z) of arbitrary bit width. Combinational logic is expressed
either as operator-derived signals (continuous assignments) or as blocks
of guarded assignment statements (if/case). Sequential logic is expressed
with edge-triggered registers. A per-design scheduler drives the whole
thing on a virtual timeline: at every time step combinational logic is
settled to a fixed point, then all registers sample their inputs, then
all registers publish their outputs.

Invalid circuit descriptions (width mismatches, multiple drivers on a
signal, incomplete assignments that would infer a latch, non-convergent
combinational loops) are reported as errors at build or evaluation time.
X and Z values, on the other hand, are ordinary data and propagate
through operators according to the usual four-state truth tables.
*/
package logsim
