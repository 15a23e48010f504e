// Package ast is the language-neutral syntax tree handed to the exporter.
package ast

import "fmt"

// Node is a read-only view of a syntax tree node.
type Node interface {
	Kind() string
	ChildCount() int
	ChildAt(i int) Node
	Properties() map[string]any
}

// Location is a source span.
type Location struct {
	Line      int
	Column    int
	StartByte int
	EndByte   int
}

// String renders the location as line:col:start:end.
func (l Location) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", l.Line, l.Column, l.StartByte, l.EndByte)
}

// Tree is the concrete Node produced by the front end.
type Tree struct {
	Type     string
	Code     string
	Field    string // field name under the parent, "" if none
	Location Location
	ChildNum int
	Children []*Tree
}

// Kind returns the grammar node type.
func (t *Tree) Kind() string { return t.Type }

// ChildCount returns the number of children.
func (t *Tree) ChildCount() int { return len(t.Children) }

// ChildAt returns child i.
func (t *Tree) ChildAt(i int) Node { return t.Children[i] }

// Properties returns the persisted property set of the node.
func (t *Tree) Properties() map[string]any {
	return map[string]any{
		"type":     t.Type,
		"code":     t.Code,
		"location": t.Location.String(),
		"childNum": t.ChildNum,
	}
}

// Append adds child to t and sets its child number.
func (t *Tree) Append(child *Tree) *Tree {
	child.ChildNum = len(t.Children)
	t.Children = append(t.Children, child)
	return child
}

// ChildByField returns the first child under the given field name.
func (t *Tree) ChildByField(field string) *Tree {
	for _, c := range t.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// Walk visits n and every descendant in pre-order without recursion.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := cur.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, cur.ChildAt(i))
		}
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}
