package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DeusData/funcgraph/internal/ast"
	"github.com/DeusData/funcgraph/internal/frontend"
	"github.com/DeusData/funcgraph/internal/lang"
	"github.com/DeusData/funcgraph/internal/model"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the AST and CFG of each function in one file",
		Long: `Parses a single source file and prints what export would write for each
function: the syntax tree with field names, then the basic blocks and flow edges.
Nothing is written to a database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			only, _ := cmd.Flags().GetString("function")
			noAST, _ := cmd.Flags().GetBool("no-ast")
			return runDump(cmd.OutOrStdout(), args[0], only, !noAST)
		},
	}
	cmd.Flags().StringP("function", "f", "", "only the function with this name")
	cmd.Flags().Bool("no-ast", false, "print the CFG only")
	return cmd
}

func runDump(w io.Writer, path, only string, withAST bool) error {
	l, ok := lang.LanguageForExtension(filepath.Ext(path))
	if !ok {
		return fmt.Errorf("unsupported file type: %s", path)
	}
	f, err := frontend.ParseFile(path, filepath.Base(path), l)
	if err != nil {
		return err
	}

	found := false
	for _, fn := range f.Functions {
		if only != "" && fn.Name != only {
			continue
		}
		found = true
		fmt.Fprintf(w, "=== %s %s (%s)\n", fn.Name, fn.Location, fn.Signature)
		if withAST {
			printAST(w, fn.AST)
		}
		printCFG(w, fn)
	}
	if only != "" && !found {
		return fmt.Errorf("function %q not found in %s", only, path)
	}
	return nil
}

func printAST(w io.Writer, root ast.Node) {
	type item struct {
		node  ast.Node
		depth int
	}
	stack := []item{{node: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t, _ := it.node.(*ast.Tree)
		label := it.node.Kind()
		text := ""
		if t != nil {
			if t.Field != "" {
				label = t.Field + ": " + label
			}
			text = t.Code
		}
		fmt.Fprintf(w, "%s%s %q\n", strings.Repeat("  ", it.depth), label, oneLine(text, 60))

		for i := it.node.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, item{node: it.node.ChildAt(i), depth: it.depth + 1})
		}
	}
}

func printCFG(w io.Writer, fn *model.Function) {
	if fn.CFG == nil {
		fmt.Fprintln(w, "  (no body, no CFG)")
		return
	}
	for _, b := range fn.CFG.Blocks() {
		code := strings.ReplaceAll(b.Code(), "\n", "; ")
		fmt.Fprintf(w, "  %s %s\n", b, code)
	}
	for _, e := range fn.CFG.Edges() {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// oneLine joins the lines of s with "; " and cuts it to n bytes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", "; ")), " ")
	if len(s) > n {
		s = s[:n] + "..."
	}
	return s
}
