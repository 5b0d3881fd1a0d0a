// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "github.com/pkg/errors"

// A Stmt is one guarded assignment statement in a combinational block.
// The statement set is closed: unconditional assignment, if/else and
// case. Closedness is what makes missing-assignment detection a
// checkable structural property of the statement tree.
type Stmt interface {
	stmtNode()
}

type assignStmt struct {
	dst *Signal
	src *Signal
}

type ifStmt struct {
	cond *Signal
	then []Stmt
	els  []Stmt
}

type caseStmt struct {
	sel   *Signal
	items []CaseItem
	def   []Stmt
}

func (assignStmt) stmtNode() {}
func (ifStmt) stmtNode()     {}
func (caseStmt) stmtNode()   {}

// CaseItem is one arm of a Case statement. Matching is structural
// equality over valid selector values; a selector containing X or Z
// bits matches no arm and drives every possible target to all-X, like
// an unknown if guard.
type CaseItem struct {
	Matches []Value
	Body    []Stmt
}

// Assign makes an unconditional assignment statement.
func Assign(dst, src *Signal) Stmt { return assignStmt{dst: dst, src: src} }

// If makes a guarded statement: then executes when cond is 1, els when
// cond is 0. When cond is X or Z, every output either branch could
// assign is driven to all-X instead.
func If(cond *Signal, then, els []Stmt) Stmt { return ifStmt{cond: cond, then: then, els: els} }

// Case makes a selector statement. The first item whose match constant
// structurally equals the selector value executes; with no match the
// default executes. A case from which an output escapes unassigned is
// rejected at build time as a latch hazard.
func Case(sel *Signal, items []CaseItem, def []Stmt) Stmt {
	return caseStmt{sel: sel, items: items, def: def}
}

type blockKind uint8

const (
	blockComb blockKind = iota
	blockExpr
	blockNet
)

// A block is one evaluation unit of the combinational engine: a user
// guarded-assignment block, a derived-signal evaluator or a net
// resolver. All three settle through the same fixed-point loop.
type block struct {
	idx  int
	name string
	kind blockKind
	outs []SigID

	stmts []Stmt                  // blockComb
	srcs  []SigID                 // static read set
	fn    func(vals []Value) Value // blockExpr

	// sens is the dynamic sensitivity set: the signals actually read on
	// the most recent evaluation. For expression and net blocks it
	// matches the static set.
	sens   map[SigID]struct{}
	queued bool
}

func (b *block) sensitive(id SigID) bool {
	if b.kind != blockComb || b.sens == nil {
		return true
	}
	_, ok := b.sens[id]
	return ok
}

// AddBlock builds a combinational block from guarded statements.
// outs declares the block's output signals; every output must be
// assigned on every evaluation path, and no output may be read before
// its first assignment. Violations are detected here, structurally, so
// an incomplete block is rejected before any stimulus runs.
func (d *Design) AddBlock(name string, outs []*Signal, stmts ...Stmt) error {
	outSet := make(map[SigID]struct{}, len(outs))
	for _, o := range outs {
		if o.d != d {
			return errors.Errorf("block %q: output %q belongs to another design", name, o.name)
		}
		if o.kind != sigWire {
			return errors.Wrapf(ErrReadOnly, "block %q: output %q", name, o.name)
		}
		if o.driven {
			return errors.Wrapf(ErrMultipleDrivers, "block %q: output %q", name, o.name)
		}
		if _, dup := outSet[o.id]; dup {
			return errors.Errorf("block %q: output %q declared twice", name, o.name)
		}
		outSet[o.id] = struct{}{}
	}

	ck := &blockCheck{d: d, name: name, outs: outSet, reads: make(map[SigID]struct{})}
	must, may, err := ck.walk(stmts, nil)
	if err != nil {
		return err
	}
	for _, o := range outs {
		if _, ok := must[o.id]; ok {
			continue
		}
		if _, ok := may[o.id]; ok {
			return errors.Wrapf(ErrIncompleteAssignment, "block %q: output %q", name, o.name)
		}
		return errors.Wrapf(ErrIncompleteAssignment, "block %q: output %q is never assigned", name, o.name)
	}

	b := &block{
		name:  name,
		kind:  blockComb,
		stmts: stmts,
	}
	for _, o := range outs {
		b.outs = append(b.outs, o.id)
		o.driven = true
		o.drvDesc = "block " + name
	}
	for id := range ck.reads {
		b.srcs = append(b.srcs, id)
	}
	d.addBlock(b)
	for _, o := range outs {
		o.blk = b.idx
	}
	return nil
}

// blockCheck performs the structural walk over a statement tree:
// width checks, target checks, must/may assignment sets and
// read-before-write detection.
type blockCheck struct {
	d     *Design
	name  string
	outs  map[SigID]struct{}
	reads map[SigID]struct{}
}

type sigSet map[SigID]struct{}

func (s sigSet) clone() sigSet {
	c := make(sigSet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

func intersect(a, b sigSet) sigSet {
	r := make(sigSet)
	for k := range a {
		if _, ok := b[k]; ok {
			r[k] = struct{}{}
		}
	}
	return r
}

func union(a, b sigSet) sigSet {
	r := a.clone()
	for k := range b {
		r[k] = struct{}{}
	}
	return r
}

// read validates one signal read occurring while the signals in defined
// have already been assigned on every path reaching this point.
func (ck *blockCheck) read(s *Signal, defined sigSet) error {
	if s.d != ck.d {
		return errors.Errorf("block %q: signal %q belongs to another design", ck.name, s.name)
	}
	if _, isOut := ck.outs[s.id]; isOut {
		if _, ok := defined[s.id]; !ok {
			return errors.Wrapf(ErrWriteAfterRead, "block %q: %q", ck.name, s.name)
		}
	}
	ck.reads[s.id] = struct{}{}
	return nil
}

// walk returns the sets of outputs assigned on every path (must) and on
// at least one path (may) through stmts, given the already-assigned set
// defined on entry.
func (ck *blockCheck) walk(stmts []Stmt, defined sigSet) (must, may sigSet, err error) {
	if defined == nil {
		defined = make(sigSet)
	}
	must, may = defined.clone(), defined.clone()
	for _, st := range stmts {
		switch st := st.(type) {
		case assignStmt:
			if _, ok := ck.outs[st.dst.id]; !ok {
				return nil, nil, errors.Errorf("block %q: %q is not a declared output", ck.name, st.dst.name)
			}
			if st.dst.width != st.src.width {
				return nil, nil, errors.Wrapf(ErrWidthMismatch, "block %q: %q = %q: %d vs %d bits",
					ck.name, st.dst.name, st.src.name, st.dst.width, st.src.width)
			}
			if err := ck.read(st.src, must); err != nil {
				return nil, nil, err
			}
			must[st.dst.id] = struct{}{}
			may[st.dst.id] = struct{}{}
		case ifStmt:
			if st.cond.width != 1 {
				return nil, nil, errors.Wrapf(ErrWidthMismatch, "block %q: if condition %q: %d bits",
					ck.name, st.cond.name, st.cond.width)
			}
			if err := ck.read(st.cond, must); err != nil {
				return nil, nil, err
			}
			tMust, tMay, err := ck.walk(st.then, must)
			if err != nil {
				return nil, nil, err
			}
			eMust, eMay, err := ck.walk(st.els, must)
			if err != nil {
				return nil, nil, err
			}
			must = intersect(tMust, eMust)
			may = union(may, union(tMay, eMay))
		case caseStmt:
			if err := ck.read(st.sel, must); err != nil {
				return nil, nil, err
			}
			armMust := sigSet(nil)
			for _, item := range st.items {
				for _, m := range item.Matches {
					if m.Width() != st.sel.width {
						return nil, nil, errors.Wrapf(ErrWidthMismatch,
							"block %q: case on %q: %d-bit match %s", ck.name, st.sel.name, m.Width(), m)
					}
				}
				iMust, iMay, err := ck.walk(item.Body, must)
				if err != nil {
					return nil, nil, err
				}
				may = union(may, iMay)
				if armMust == nil {
					armMust = iMust
				} else {
					armMust = intersect(armMust, iMust)
				}
			}
			// a case without a default assigns nothing when no arm
			// matches, so it contributes nothing to must.
			if st.def != nil {
				dMust, dMay, err := ck.walk(st.def, must)
				if err != nil {
					return nil, nil, err
				}
				may = union(may, dMay)
				if armMust == nil {
					armMust = dMust
				} else {
					armMust = intersect(armMust, dMust)
				}
				must = armMust
			}
		default:
			return nil, nil, errors.Errorf("block %q: unknown statement type %T", ck.name, st)
		}
	}
	return must, may, nil
}

// eval executes a block and returns its pending writes and the set of
// signals actually read. Statements see earlier writes of the same
// evaluation (blocking assignment semantics).
func (b *block) eval(d *Design) (map[SigID]Value, map[SigID]struct{}) {
	switch b.kind {
	case blockExpr:
		vals := make([]Value, len(b.srcs))
		for i, id := range b.srcs {
			vals[i] = d.sigs[id].val
		}
		return map[SigID]Value{b.outs[0]: b.fn(vals)}, nil
	case blockNet:
		out := d.sigs[b.outs[0]]
		return map[SigID]Value{out.id: out.resolveNet()}, nil
	}
	ev := &blockEval{
		d:      d,
		writes: make(map[SigID]Value),
		reads:  make(map[SigID]struct{}),
	}
	ev.exec(b.stmts)
	return ev.writes, ev.reads
}

type blockEval struct {
	d      *Design
	writes map[SigID]Value
	reads  map[SigID]struct{}
}

func (ev *blockEval) read(s *Signal) Value {
	ev.reads[s.id] = struct{}{}
	if v, ok := ev.writes[s.id]; ok {
		return v
	}
	return s.val
}

func (ev *blockEval) exec(stmts []Stmt) {
	for _, st := range stmts {
		switch st := st.(type) {
		case assignStmt:
			ev.writes[st.dst.id] = ev.read(st.src)
		case ifStmt:
			switch ev.read(st.cond).Bit(0) {
			case L1:
				ev.exec(st.then)
			case L0:
				ev.exec(st.els)
			default:
				// unknown guard: every target either branch could
				// assign becomes unknown.
				ev.invalidate(st.then)
				ev.invalidate(st.els)
			}
		case caseStmt:
			sel := ev.read(st.sel)
			if !sel.IsValid() {
				for _, item := range st.items {
					ev.invalidate(item.Body)
				}
				ev.invalidate(st.def)
				continue
			}
			matched := false
			for _, item := range st.items {
				for _, m := range item.Matches {
					if sel.Equal(m) {
						ev.exec(item.Body)
						matched = true
						break
					}
				}
				if matched {
					break
				}
			}
			if !matched {
				ev.exec(st.def)
			}
		}
	}
}

// invalidate drives every assignment target in stmts to all-X.
func (ev *blockEval) invalidate(stmts []Stmt) {
	for _, st := range stmts {
		switch st := st.(type) {
		case assignStmt:
			ev.writes[st.dst.id] = AllX(st.dst.width)
		case ifStmt:
			ev.invalidate(st.then)
			ev.invalidate(st.els)
		case caseStmt:
			for _, item := range st.items {
				ev.invalidate(item.Body)
			}
			ev.invalidate(st.def)
		}
	}
}
