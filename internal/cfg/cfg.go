// Package cfg holds the in-memory control-flow graph of a single function:
// basic blocks connected by labeled edges.
package cfg

import (
	"fmt"
	"maps"
	"strings"

	"github.com/DeusData/funcgraph/internal/ast"
)

// BlockKind distinguishes the synthetic entry/exit blocks from regular ones.
type BlockKind string

const (
	BlockEntry     BlockKind = "entry"
	BlockExit      BlockKind = "exit"
	BlockPlain     BlockKind = "block"
	// BlockException is where a guarded body's exceptions meet before
	// being dispatched to the handlers.
	BlockException BlockKind = "exception"
)

// BasicBlock is a straight-line run of statements with one entry and one exit.
type BasicBlock struct {
	Index      int
	Kind       BlockKind
	Statements []ast.Node
	Location   ast.Location
}

// Code returns the statements' source text joined by newlines.
func (b *BasicBlock) Code() string {
	switch b.Kind {
	case BlockEntry:
		return "ENTRY"
	case BlockExit:
		return "EXIT"
	case BlockException:
		return "EXCEPTION"
	}
	parts := make([]string, 0, len(b.Statements))
	for _, s := range b.Statements {
		if c, ok := s.Properties()["code"].(string); ok {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n")
}

func (b *BasicBlock) String() string {
	if b == nil {
		return "<nil>"
	}
	return fmt.Sprintf("B%d(%s)", b.Index, b.Kind)
}

// CFG is the control-flow graph of one function.
type CFG struct {
	Entry  *BasicBlock
	Exit   *BasicBlock
	blocks []*BasicBlock
	edges  []CFGEdge
	seen   map[CFGEdge]struct{}
	props  map[CFGEdge]map[string]any
}

// New creates an empty CFG.
func New() *CFG {
	return &CFG{
		seen:  make(map[CFGEdge]struct{}),
		props: make(map[CFGEdge]map[string]any),
	}
}

// NewFunction creates a CFG holding only its entry and exit blocks.
func NewFunction() *CFG {
	g := New()
	g.Entry = g.NewBlock(BlockEntry)
	g.Exit = g.NewBlock(BlockExit)
	return g
}

// NewBlock appends a fresh block of the given kind.
func (g *CFG) NewBlock(kind BlockKind) *BasicBlock {
	b := &BasicBlock{Index: len(g.blocks), Kind: kind}
	g.blocks = append(g.blocks, b)
	return b
}

// Blocks returns every block of the graph.
func (g *CFG) Blocks() []*BasicBlock {
	if g == nil {
		return nil
	}
	return g.blocks
}

// Edges returns the edges in insertion order.
func (g *CFG) Edges() []CFGEdge {
	if g == nil {
		return nil
	}
	return g.edges
}

// Len returns the number of blocks.
func (g *CFG) Len() int {
	if g == nil {
		return 0
	}
	return len(g.blocks)
}

// AddEdge adds src -> dst with the given label. Returns false when an
// identical edge already exists.
func (g *CFG) AddEdge(src, dst *BasicBlock, label string) bool {
	e := NewEdge(src, dst, label)
	if _, ok := g.seen[e]; ok {
		return false
	}
	g.seen[e] = struct{}{}
	g.edges = append(g.edges, e)
	return true
}

// SetEdgeProperty attaches an extra property to an existing edge.
func (g *CFG) SetEdgeProperty(e CFGEdge, key string, value any) error {
	if _, ok := g.seen[e]; !ok {
		return fmt.Errorf("edge %s not in graph", e)
	}
	if g.props[e] == nil {
		g.props[e] = make(map[string]any)
	}
	g.props[e][key] = value
	return nil
}

// EdgeProperties returns the flow label plus any extra properties of e.
func (g *CFG) EdgeProperties(e CFGEdge) map[string]any {
	p := e.Properties()
	if g != nil {
		maps.Copy(p, g.props[e])
	}
	return p
}

// Successors returns the outgoing edges of b.
func (g *CFG) Successors(b *BasicBlock) []CFGEdge {
	var out []CFGEdge
	for _, e := range g.Edges() {
		if e.Source == b {
			out = append(out, e)
		}
	}
	return out
}

// Predecessors returns the incoming edges of b.
func (g *CFG) Predecessors(b *BasicBlock) []CFGEdge {
	var in []CFGEdge
	for _, e := range g.Edges() {
		if e.Destination == b {
			in = append(in, e)
		}
	}
	return in
}

// Reversed returns every edge of the graph reversed, for backward analyses.
func (g *CFG) Reversed() []CFGEdge {
	out := make([]CFGEdge, 0, len(g.Edges()))
	for _, e := range g.Edges() {
		out = append(out, e.Reverse())
	}
	return out
}
