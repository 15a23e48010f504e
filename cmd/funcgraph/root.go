package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "funcgraph",
		Short: "Export function ASTs and CFGs into a graph store",
		Long: `funcgraph parses C, C++ and Go sources and writes every function, its syntax
tree and its control-flow graph into a SQLite graph database. Each function
gets one AST grouping node and one CFG grouping node, so all of its AST nodes
and basic blocks are one hop away.

Commands:
  export      Export a repository
  schema      Show node labels and relationship types of a database
  show        Show an exported function read back from a database
  dump        Print the AST and CFG of each function in one file
  version     Print version information`,
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("funcgraph version {{.Version}}\n")

	root.AddCommand(newExportCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "funcgraph", version)
		},
	})
	return root
}

// setupLogging installs the default slog handler on w.
func setupLogging(w io.Writer, level slog.Level, format string) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}
