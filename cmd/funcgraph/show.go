package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DeusData/funcgraph/internal/nodestore"
	"github.com/DeusData/funcgraph/internal/store"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <function>",
		Short: "Show an exported function read back from a database",
		Long: `Looks a function up by name and prints what its grouping nodes reach:
the number of AST nodes, every basic block with its outgoing flow edges, and
the blocks that cannot be reached from the entry block.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			project, _ := cmd.Flags().GetString("project")
			return runShow(cmd.OutOrStdout(), dbPath, project, args[0])
		},
	}
	cmd.Flags().String("db", "", "database file")
	cmd.Flags().String("project", "", "only this project (default: all)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runShow(w io.Writer, dbPath, project, name string) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	st, err := store.OpenPath(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	projects, err := st.ListProjects()
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	found := 0
	for _, p := range projects {
		if project != "" && p.Name != project {
			continue
		}
		ids, err := st.LookupIndex(p.Name, "name", name)
		if err != nil {
			return err
		}
		nodes, err := st.FindNodesByIDs(ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fn := nodes[id]
			if fn == nil || fn.Label != nodestore.LabelFunction {
				continue
			}
			found++
			if err := showFunction(w, st, fn); err != nil {
				return err
			}
		}
	}
	if found == 0 {
		return fmt.Errorf("function %q not found", name)
	}
	return nil
}

func showFunction(w io.Writer, st *store.Store, fn *store.Node) error {
	qn, _ := fn.Properties["qualifiedName"].(string)
	loc, _ := fn.Properties["location"].(string)
	fmt.Fprintf(w, "=== %s %s (%s)\n", fn.DisplayName(), loc, qn)
	if sig, ok := fn.Properties["signature"].(string); ok {
		fmt.Fprintf(w, "signature: %s\n", sig)
	}

	astNodes, err := st.HubMembers(fn.ID, string(nodestore.IsFunctionOfAST), string(nodestore.IsASTOfASTNode))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "ast nodes: %d\n", len(astNodes))

	blocks, err := st.HubMembers(fn.ID, string(nodestore.IsFunctionOfCFG), string(nodestore.IsCFGOfBasicBlock))
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		fmt.Fprintln(w, "no control-flow graph")
		return nil
	}

	// Blocks are numbered by id order, which is creation order.
	num := make(map[int64]int, len(blocks))
	var entry *store.Node
	for i, b := range blocks {
		num[b.ID] = i
		if b.Properties["kind"] == "entry" {
			entry = b
		}
	}
	fmt.Fprintf(w, "basic blocks: %d\n", len(blocks))
	for i, b := range blocks {
		kind, _ := b.Properties["kind"].(string)
		fmt.Fprintf(w, "  B%d(%s)", i, kind)
		if code, _ := b.Properties["code"].(string); code != "" {
			fmt.Fprintf(w, " %s", oneLine(code, 60))
		}
		fmt.Fprintln(w)
		out, err := st.FindEdgesBySourceAndType(b.ID, string(nodestore.FlowsTo))
		if err != nil {
			return err
		}
		for _, e := range out {
			label, _ := e.Properties["flowLabel"].(string)
			if label == "" {
				fmt.Fprintf(w, "    --> B%d\n", num[e.TargetID])
			} else {
				fmt.Fprintf(w, "    ==[%s]==> B%d\n", label, num[e.TargetID])
			}
		}
	}

	if entry == nil {
		return nil
	}
	reach, err := st.Reachable(entry.ID, string(nodestore.FlowsTo))
	if err != nil {
		return err
	}
	reached := make(map[int64]bool, len(reach))
	for _, id := range reach {
		reached[id] = true
	}
	for i, b := range blocks {
		if !reached[b.ID] {
			fmt.Fprintf(w, "unreachable: B%d %s\n", i, oneLine(b.DisplayName(), 60))
		}
	}
	return nil
}
