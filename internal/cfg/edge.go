package cfg

import "fmt"

// Edge is a directed edge between two nodes of a graph.
type Edge[N comparable] struct {
	Source      N
	Destination N
}

// Reverse returns the edge with source and destination swapped.
func (e Edge[N]) Reverse() Edge[N] {
	return Edge[N]{Source: e.Destination, Destination: e.Source}
}

// Flow labels attached to control-flow edges.
const (
	EmptyLabel            = ""
	TrueLabel             = "True"
	FalseLabel            = "False"
	ExceptLabel           = "except"
	HandledExceptLabel    = "catch"
	UnhandledExceptLabel  = "unhandled"
	flowLabelPropertyName = "flowLabel"
)

// CFGEdge is a labeled control-flow edge between two basic blocks.
// Two edges are equal when source, destination and label are equal, so
// CFGEdge values can be used directly as map keys.
type CFGEdge struct {
	Edge[*BasicBlock]
	Label string
}

// NewEdge creates a control-flow edge. The label is not validated here.
func NewEdge(src, dst *BasicBlock, label string) CFGEdge {
	return CFGEdge{Edge: Edge[*BasicBlock]{Source: src, Destination: dst}, Label: label}
}

// Reverse returns a new edge pointing the other way with the same label.
func (e CFGEdge) Reverse() CFGEdge {
	return CFGEdge{Edge: e.Edge.Reverse(), Label: e.Label}
}

// Properties returns the persisted properties of the edge.
func (e CFGEdge) Properties() map[string]any {
	return map[string]any{flowLabelPropertyName: e.Label}
}

func (e CFGEdge) String() string {
	return fmt.Sprintf("%s ==[%s]==> %s", e.Source, e.Label, e.Destination)
}
