// Package model holds the per-file and per-function units the front end
// produces and the exporter consumes.
package model

import (
	"github.com/DeusData/funcgraph/internal/ast"
	"github.com/DeusData/funcgraph/internal/cfg"
	"github.com/DeusData/funcgraph/internal/lang"
)

// Function is one parsed function: exactly one AST root and at most one CFG.
// A nil CFG means the function has no executable body.
type Function struct {
	Name          string
	QualifiedName string // set once the module prefix is known; optional
	Signature     string
	Location      ast.Location
	Hash          string
	AST           ast.Node
	CFG           *cfg.CFG
}

// File groups the functions parsed from one source file.
type File struct {
	Path      string // relative to the repository root
	Language  lang.Language
	Hash      string
	Functions []*Function
}
