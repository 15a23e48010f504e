package parser

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/funcgraph/internal/lang"
)

func TestParseGo(t *testing.T) {
	source := []byte(`package main

func Hello() string {
	return "hello"
}

func Add(a, b int) int {
	return a + b
}
`)
	tree, err := Parse(lang.Go, source)
	if err != nil {
		t.Fatalf("Parse Go: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		t.Fatal("root node is nil")
	}

	var funcCount int
	Walk(root, func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_declaration" {
			funcCount++
		}
		return true
	})
	if funcCount != 2 {
		t.Errorf("expected 2 function_declarations, got %d", funcCount)
	}
}

func TestParseC(t *testing.T) {
	source := []byte(`#include <stdio.h>

int add(int a, int b);

static int add(int a, int b) {
	return a + b;
}

int main(void) {
	if (add(1, 2) > 2) {
		printf("ok\n");
	}
	return 0;
}
`)
	tree, err := Parse(lang.C, source)
	if err != nil {
		t.Fatalf("Parse C: %v", err)
	}
	defer tree.Close()

	var defs, ifs int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "function_definition":
			defs++
		case "if_statement":
			ifs++
		}
		return true
	})
	if defs != 2 {
		t.Errorf("expected 2 function_definitions, got %d", defs)
	}
	if ifs != 1 {
		t.Errorf("expected 1 if_statement, got %d", ifs)
	}
}

func TestParseCPP(t *testing.T) {
	source := []byte(`namespace geo {
class Shape {
public:
	virtual ~Shape() {}
	int sides() const { return 0; }
};
}

int geo::area(int w) {
	try {
		if (w < 0) throw w;
	} catch (int e) {
		return e;
	}
	return w * w;
}
`)
	tree, err := Parse(lang.CPP, source)
	if err != nil {
		t.Fatalf("Parse C++: %v", err)
	}
	defer tree.Close()

	counts := map[string]int{}
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		counts[n.Kind()]++
		return true
	})
	if counts["function_definition"] != 3 {
		t.Errorf("expected 3 function_definitions, got %d", counts["function_definition"])
	}
	if counts["try_statement"] != 1 || counts["catch_clause"] != 1 || counts["throw_statement"] != 1 {
		t.Errorf("expected one try, catch and throw, got %v", counts)
	}
}

func TestWalkOrderAndSkip(t *testing.T) {
	source := []byte(`int f(void) { return 1; } int g(void) { return 2; }`)
	tree, err := Parse(lang.C, source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	var names []string
	var returns int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "identifier":
			names = append(names, NodeText(n, source))
		case "compound_statement":
			return false
		case "return_statement":
			returns++
		}
		return true
	})
	if len(names) != 2 || names[0] != "f" || names[1] != "g" {
		t.Errorf("expected pre-order [f g], got %v", names)
	}
	if returns != 0 {
		t.Errorf("skipped bodies should not be visited, saw %d returns", returns)
	}
}

func TestAllLanguagesLoad(t *testing.T) {
	for _, l := range lang.AllLanguages() {
		_, err := GetLanguage(l)
		if err != nil {
			t.Errorf("GetLanguage(%s): %v", l, err)
		}
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	if _, err := Parse(lang.Language("cobol"), []byte("x")); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestNodeText(t *testing.T) {
	source := []byte(`package main

func Hello() string {
	return "hello"
}
`)
	tree, err := Parse(lang.Go, source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	Walk(root, func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_declaration" {
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				t.Error("function has no name node")
				return false
			}
			name := NodeText(nameNode, source)
			if name != "Hello" {
				t.Errorf("expected Hello, got %s", name)
			}
			return false
		}
		return true
	})
}
