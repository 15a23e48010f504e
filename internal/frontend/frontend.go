// Package frontend turns source files into the per-function AST and CFG units
// the exporter consumes.
package frontend

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zeebo/xxh3"

	"github.com/DeusData/funcgraph/internal/lang"
	"github.com/DeusData/funcgraph/internal/model"
	"github.com/DeusData/funcgraph/internal/parser"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads path and parses it. relPath is the path recorded on the
// File node.
func ParseFile(path, relPath string, l lang.Language) (*model.File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}
	// Strip UTF-8 BOM if present (common in Windows-generated files)
	source = bytes.TrimPrefix(source, utf8BOM)
	return ParseSource(relPath, l, source)
}

// ParseSource parses one file and returns every function definition in it,
// in source order. Syntax errors are tolerated: tree-sitter recovers and the
// affected region shows up as ERROR nodes in the AST.
func ParseSource(relPath string, l lang.Language, source []byte) (*model.File, error) {
	spec := lang.ForLanguage(l)
	if spec == nil {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}
	tree, err := parser.Parse(l, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		slog.Warn("frontend.syntax_error", "path", relPath)
	}

	f := &model.File{
		Path:     relPath,
		Language: l,
		Hash:     contentHash(source),
	}
	funcTypes := newKindSet(spec.FunctionNodeTypes)
	parser.Walk(root, func(n *tree_sitter.Node) bool {
		if !funcTypes[n.Kind()] {
			return true
		}
		if fn := extractFunction(spec, n, source); fn != nil {
			f.Functions = append(f.Functions, fn)
		}
		return false
	})
	return f, nil
}

func extractFunction(spec *lang.LanguageSpec, n *tree_sitter.Node, source []byte) *model.Function {
	name := functionName(spec, n, source)
	if name == "" {
		slog.Debug("frontend.function.anonymous", "line", safeRowToLine(n.StartPosition().Row))
		return nil
	}
	root := convert(n, source)
	return &model.Function{
		Name:      name,
		Signature: signature(n, source),
		Location:  root.Location,
		Hash:      contentHash(source[n.StartByte():n.EndByte()]),
		AST:       root,
		CFG:       BuildCFG(spec, root.ChildByField("body")),
	}
}

// functionName reads the name field (Go) or follows the declarator chain
// down to the identifier (C).
func functionName(spec *lang.LanguageSpec, n *tree_sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return parser.NodeText(name, source)
	}
	names := newKindSet(spec.NameNodeTypes)
	d := n.ChildByFieldName("declarator")
	for d != nil {
		if names[d.Kind()] {
			return parser.NodeText(d, source)
		}
		next := d.ChildByFieldName("declarator")
		if next == nil && d.NamedChildCount() > 0 {
			next = d.NamedChild(0)
		}
		d = next
	}
	return ""
}

// signature is the text before the body with whitespace collapsed.
func signature(n *tree_sitter.Node, source []byte) string {
	end := n.EndByte()
	if body := n.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	return strings.Join(strings.Fields(string(source[n.StartByte():end])), " ")
}

func contentHash(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}
