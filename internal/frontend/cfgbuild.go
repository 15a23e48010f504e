package frontend

import (
	"strings"

	"github.com/DeusData/funcgraph/internal/ast"
	"github.com/DeusData/funcgraph/internal/cfg"
	"github.com/DeusData/funcgraph/internal/lang"
)

type kindSet map[string]bool

func newKindSet(kinds ...[]string) kindSet {
	s := kindSet{}
	for _, list := range kinds {
		for _, k := range list {
			s[k] = true
		}
	}
	return s
}

// cfgRules is the statement classification of one language.
type cfgRules struct {
	blocks, ifs, elses, whiles, dos, fors  kindSet
	switches, cases, returns, breaks       kindSet
	continues, fallthroughs, labeled, skip kindSet
	tries, catches, throws                 kindSet
	casesFallThrough                       bool
}

func rulesFor(spec *lang.LanguageSpec) *cfgRules {
	return &cfgRules{
		blocks:           newKindSet(spec.BlockNodeTypes),
		ifs:              newKindSet(spec.IfNodeTypes),
		elses:            newKindSet(spec.ElseNodeTypes),
		whiles:           newKindSet(spec.WhileNodeTypes),
		dos:              newKindSet(spec.DoNodeTypes),
		fors:             newKindSet(spec.ForNodeTypes),
		switches:         newKindSet(spec.SwitchNodeTypes),
		cases:            newKindSet(spec.CaseNodeTypes),
		returns:          newKindSet(spec.ReturnNodeTypes),
		breaks:           newKindSet(spec.BreakNodeTypes),
		continues:        newKindSet(spec.ContinueNodeTypes),
		fallthroughs:     newKindSet(spec.FallthroughNodeTypes),
		labeled:          newKindSet(spec.LabeledNodeTypes),
		skip:             newKindSet(spec.SkipNodeTypes),
		tries:            newKindSet(spec.TryNodeTypes),
		catches:          newKindSet(spec.CatchNodeTypes),
		throws:           newKindSet(spec.ThrowNodeTypes),
		casesFallThrough: spec.CasesFallThrough,
	}
}

// pred is a dangling edge waiting for the block of the next statement.
type pred struct {
	block *cfg.BasicBlock
	label string
}

// frame is an enclosing loop or switch that break/continue can target.
type frame struct {
	loop     bool
	breaks   []pred
	conts    []pred
	fallNext []pred
}

// tryFrame is an enclosing guarded body. Every block created inside it gets
// an except edge to dispatch.
type tryFrame struct {
	dispatch *cfg.BasicBlock
	blocks   []*cfg.BasicBlock
}

// cfgBuilder lowers one function body into basic blocks. The flow state is
// either an open block that accepts further statements, or a list of
// dangling edges that the next block will receive. An empty list with no
// open block means the current point is unreachable.
type cfgBuilder struct {
	r      *cfgRules
	g      *cfg.CFG
	open   *cfg.BasicBlock
	preds  []pred
	frames []*frame
	tries  []*tryFrame
}

// BuildCFG builds the control-flow graph of a function body. Statements in
// the blocks point into body, so the graph is only meaningful together with
// the AST it was built from. Labeled break and continue jump out of the
// innermost construct; goto is a plain statement.
func BuildCFG(spec *lang.LanguageSpec, body *ast.Tree) *cfg.CFG {
	if body == nil {
		return nil
	}
	b := &cfgBuilder{r: rulesFor(spec), g: cfg.NewFunction()}
	b.preds = []pred{{block: b.g.Entry}}
	b.stmt(body)
	b.connect(b.flowOut(), b.g.Exit)
	return b.g
}

func (b *cfgBuilder) connect(ps []pred, dst *cfg.BasicBlock) {
	for _, p := range ps {
		b.g.AddEdge(p.block, dst, p.label)
	}
}

// flowOut detaches and returns the edges leaving the current point.
func (b *cfgBuilder) flowOut() []pred {
	var out []pred
	if b.open != nil {
		out = []pred{{block: b.open}}
	} else {
		out = b.preds
	}
	b.open, b.preds = nil, nil
	return out
}

func (b *cfgBuilder) setFlow(ps []pred) {
	b.open = nil
	b.preds = ps
}

// plainBlock creates an unconnected block and records it in the innermost
// guarded body.
func (b *cfgBuilder) plainBlock(loc ast.Location) *cfg.BasicBlock {
	blk := b.g.NewBlock(cfg.BlockPlain)
	blk.Location = loc
	if len(b.tries) > 0 {
		t := b.tries[len(b.tries)-1]
		t.blocks = append(t.blocks, blk)
	}
	return blk
}

// newBlock starts a block that receives the current flow.
func (b *cfgBuilder) newBlock(loc ast.Location) *cfg.BasicBlock {
	blk := b.plainBlock(loc)
	b.connect(b.flowOut(), blk)
	return blk
}

func (b *cfgBuilder) add(n *ast.Tree) {
	if b.open == nil {
		b.open = b.newBlock(n.Location)
	}
	b.open.Statements = append(b.open.Statements, n)
}

// jump ends the current flow at n, handing its edges to collect.
func (b *cfgBuilder) jump(n *ast.Tree, collect func(out []pred)) {
	b.add(n)
	collect(b.flowOut())
}

func (b *cfgBuilder) innermost(loopOnly bool) *frame {
	for i := len(b.frames) - 1; i >= 0; i-- {
		if !loopOnly || b.frames[i].loop {
			return b.frames[i]
		}
	}
	return nil
}

func (b *cfgBuilder) push(f *frame) { b.frames = append(b.frames, f) }
func (b *cfgBuilder) pop()          { b.frames = b.frames[:len(b.frames)-1] }

func (b *cfgBuilder) stmt(n *ast.Tree) {
	if n == nil {
		return
	}
	r := b.r
	switch {
	case r.skip[n.Type]:
	case r.blocks[n.Type]:
		for _, c := range n.Children {
			b.stmt(c)
		}
	case r.labeled[n.Type]:
		for _, c := range n.Children {
			if c.Field != "label" {
				b.stmt(c)
			}
		}
	case r.ifs[n.Type]:
		b.ifStmt(n)
	case r.whiles[n.Type]:
		b.whileStmt(n)
	case r.dos[n.Type]:
		b.doStmt(n)
	case r.fors[n.Type]:
		b.forStmt(n)
	case r.switches[n.Type]:
		b.switchStmt(n)
	case r.tries[n.Type]:
		b.tryStmt(n)
	case r.throws[n.Type]:
		b.jump(n, func(out []pred) {
			dst, label := b.raiseTarget()
			for _, p := range out {
				b.g.AddEdge(p.block, dst, label)
			}
		})
	case r.returns[n.Type]:
		b.jump(n, func(out []pred) { b.connect(out, b.g.Exit) })
	case r.breaks[n.Type]:
		f := b.innermost(false)
		if f == nil {
			b.add(n)
			return
		}
		b.jump(n, func(out []pred) { f.breaks = append(f.breaks, out...) })
	case r.continues[n.Type]:
		f := b.innermost(true)
		if f == nil {
			b.add(n)
			return
		}
		b.jump(n, func(out []pred) { f.conts = append(f.conts, out...) })
	case r.fallthroughs[n.Type]:
		f := b.innermost(false)
		if f == nil || f.loop {
			b.add(n)
			return
		}
		b.jump(n, func(out []pred) { f.fallNext = append(f.fallNext, out...) })
	default:
		b.add(n)
	}
}

// condition adds the condition of n to the current block and returns that
// block, which becomes the branching point.
func (b *cfgBuilder) condition(n *ast.Tree) *cfg.BasicBlock {
	if cond := n.ChildByField("condition"); cond != nil {
		b.add(cond)
	} else {
		b.add(n)
	}
	head := b.open
	b.open = nil
	return head
}

func (b *cfgBuilder) ifStmt(n *ast.Tree) {
	if init := n.ChildByField("initializer"); init != nil {
		b.add(init)
	}
	head := b.condition(n)

	b.setFlow([]pred{{block: head, label: cfg.TrueLabel}})
	b.stmt(n.ChildByField("consequence"))
	out := b.flowOut()

	alt := n.ChildByField("alternative")
	if alt != nil && b.r.elses[alt.Type] {
		alt = b.firstStatement(alt)
	}
	if alt == nil {
		b.setFlow(append(out, pred{block: head, label: cfg.FalseLabel}))
		return
	}
	b.setFlow([]pred{{block: head, label: cfg.FalseLabel}})
	b.stmt(alt)
	b.setFlow(append(out, b.flowOut()...))
}

func (b *cfgBuilder) firstStatement(n *ast.Tree) *ast.Tree {
	for _, c := range n.Children {
		if !b.r.skip[c.Type] {
			return c
		}
	}
	return nil
}

// header starts a dedicated block holding stmts, for loop back edges to target.
func (b *cfgBuilder) header(loc ast.Location, stmts ...*ast.Tree) *cfg.BasicBlock {
	h := b.newBlock(loc)
	for _, s := range stmts {
		if s != nil {
			h.Statements = append(h.Statements, s)
		}
	}
	return h
}

func (b *cfgBuilder) whileStmt(n *ast.Tree) {
	head := b.header(n.Location, n.ChildByField("condition"))
	f := &frame{loop: true}
	b.push(f)
	b.setFlow([]pred{{block: head, label: cfg.TrueLabel}})
	b.stmt(n.ChildByField("body"))
	b.connect(append(b.flowOut(), f.conts...), head)
	b.pop()
	b.setFlow(append([]pred{{block: head, label: cfg.FalseLabel}}, f.breaks...))
}

func (b *cfgBuilder) doStmt(n *ast.Tree) {
	bodyStart := b.newBlock(n.Location)
	b.open = bodyStart
	f := &frame{loop: true}
	b.push(f)
	b.stmt(n.ChildByField("body"))
	b.setFlow(append(b.flowOut(), f.conts...))
	tail := b.header(n.Location, n.ChildByField("condition"))
	b.g.AddEdge(tail, bodyStart, cfg.TrueLabel)
	b.pop()
	b.setFlow(append([]pred{{block: tail, label: cfg.FalseLabel}}, f.breaks...))
}

// forStmt handles the C three-clause loop, the C++ range loop (declarator
// and range go to the header) and the Go for statement, whose clauses sit
// in a for_clause or range_clause child.
func (b *cfgBuilder) forStmt(n *ast.Tree) {
	var inits, conds, updates []*ast.Tree
	collect := func(src *ast.Tree) {
		for _, c := range src.Children {
			switch c.Field {
			case "initializer":
				inits = append(inits, c)
			case "condition", "declarator", "right":
				conds = append(conds, c)
			case "update":
				updates = append(updates, c)
			}
		}
	}
	collect(n)
	for _, c := range n.Children {
		switch {
		case c.Field != "" || b.r.skip[c.Type]:
		case c.Type == "for_clause":
			collect(c)
		default:
			// range_clause or a bare condition expression
			conds = append(conds, c)
		}
	}

	for _, s := range inits {
		b.add(s)
	}
	head := b.header(n.Location, conds...)
	enter := cfg.EmptyLabel
	if len(conds) > 0 {
		enter = cfg.TrueLabel
	}

	f := &frame{loop: true}
	b.push(f)
	b.setFlow([]pred{{block: head, label: enter}})
	b.stmt(n.ChildByField("body"))
	back := append(b.flowOut(), f.conts...)
	if len(updates) > 0 {
		b.setFlow(back)
		upd := b.header(updates[0].Location, updates...)
		b.g.AddEdge(upd, head, cfg.EmptyLabel)
	} else {
		b.connect(back, head)
	}
	b.pop()

	exits := f.breaks
	if len(conds) > 0 {
		exits = append([]pred{{block: head, label: cfg.FalseLabel}}, exits...)
	}
	b.setFlow(exits)
}

var caseSelectors = map[string]bool{"value": true, "type": true, "communication": true}

func (b *cfgBuilder) switchStmt(n *ast.Tree) {
	var heads, cases []*ast.Tree
	for _, c := range n.Children {
		switch {
		case b.r.skip[c.Type]:
		case b.r.cases[c.Type]:
			cases = append(cases, c)
		case c.Field == "body" || b.r.blocks[c.Type]:
			for _, cc := range c.Children {
				if b.r.cases[cc.Type] {
					cases = append(cases, cc)
				}
			}
		default:
			heads = append(heads, c)
		}
	}
	head := b.header(n.Location, heads...)

	f := &frame{}
	b.push(f)
	var fall []pred
	hasDefault := false
	for _, c := range cases {
		isDefault := true
		for _, cc := range c.Children {
			if caseSelectors[cc.Field] {
				isDefault = false
			}
		}
		hasDefault = hasDefault || isDefault

		blk := b.plainBlock(c.Location)
		b.g.AddEdge(head, blk, cfg.EmptyLabel)
		b.connect(fall, blk)
		b.open = blk
		for _, cc := range c.Children {
			if caseSelectors[cc.Field] {
				b.add(cc)
			} else {
				b.stmt(cc)
			}
		}

		out := b.flowOut()
		if b.r.casesFallThrough {
			fall = out
		} else {
			f.breaks = append(f.breaks, out...)
			fall = f.fallNext
		}
		f.fallNext = nil
	}
	b.pop()

	exits := append(f.breaks, fall...)
	if !hasDefault {
		exits = append(exits, pred{block: head})
	}
	b.setFlow(exits)
}

// raiseTarget is where an exception leaves the current point: the dispatch
// block of the innermost guarded body, or the function exit.
func (b *cfgBuilder) raiseTarget() (*cfg.BasicBlock, string) {
	if len(b.tries) == 0 {
		return b.g.Exit, cfg.UnhandledExceptLabel
	}
	return b.tries[len(b.tries)-1].dispatch, cfg.ExceptLabel
}

// tryStmt lowers a guarded body and its handlers. Any block of the body may
// raise: each gets an except edge to a dispatch block, which has a catch
// edge to every handler. Without a catch-all handler the dispatch block
// also propagates outward with an unhandled edge.
func (b *cfgBuilder) tryStmt(n *ast.Tree) {
	dispatch := b.g.NewBlock(cfg.BlockException)
	dispatch.Location = n.Location

	t := &tryFrame{dispatch: dispatch}
	b.tries = append(b.tries, t)
	b.open = b.newBlock(n.Location)
	b.stmt(n.ChildByField("body"))
	out := b.flowOut()
	b.tries = b.tries[:len(b.tries)-1]
	for _, blk := range t.blocks {
		b.g.AddEdge(blk, dispatch, cfg.ExceptLabel)
	}

	catchAll := false
	for _, c := range n.Children {
		if !b.r.catches[c.Type] {
			continue
		}
		params := c.ChildByField("parameters")
		catchAll = catchAll || isCatchAll(params)

		blk := b.plainBlock(c.Location)
		b.g.AddEdge(dispatch, blk, cfg.HandledExceptLabel)
		if params != nil {
			blk.Statements = append(blk.Statements, params)
		}
		b.open = blk
		b.stmt(c.ChildByField("body"))
		out = append(out, b.flowOut()...)
	}
	if !catchAll {
		dst, _ := b.raiseTarget()
		b.g.AddEdge(dispatch, dst, cfg.UnhandledExceptLabel)
	}
	b.setFlow(out)
}

// isCatchAll reports a handler without a parameter or with "(...)".
func isCatchAll(params *ast.Tree) bool {
	return params == nil || strings.Join(strings.Fields(params.Code), "") == "(...)"
}
