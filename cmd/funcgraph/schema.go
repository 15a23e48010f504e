package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DeusData/funcgraph/internal/store"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show node labels and relationship types of a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			project, _ := cmd.Flags().GetString("project")
			jsonOutput, _ := cmd.Flags().GetBool("json")
			return runSchema(cmd.OutOrStdout(), dbPath, project, jsonOutput)
		},
	}
	cmd.Flags().String("db", "", "database file")
	cmd.Flags().String("project", "", "only this project (default: all)")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runSchema(w io.Writer, dbPath, project string, jsonOutput bool) error {
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

	schemas := map[string]*store.SchemaInfo{}
	var names []string
	for _, p := range projects {
		if project != "" && p.Name != project {
			continue
		}
		info, err := st.GetSchema(p.Name)
		if err != nil {
			return fmt.Errorf("schema %s: %w", p.Name, err)
		}
		schemas[p.Name] = info
		names = append(names, p.Name)
	}
	if project != "" && len(names) == 0 {
		return fmt.Errorf("project %q not found", project)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(schemas, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	for _, name := range names {
		info := schemas[name]
		fmt.Fprintf(w, "project %s\n", name)
		fmt.Fprintln(w, "  labels:")
		for _, l := range info.NodeLabels {
			fmt.Fprintf(w, "    %-16s %d\n", l.Label, l.Count)
		}
		fmt.Fprintln(w, "  relationships:")
		for _, t := range info.RelationshipTypes {
			fmt.Fprintf(w, "    %-24s %d\n", t.Type, t.Count)
		}
		fmt.Fprintln(w, "  patterns:")
		for _, p := range info.RelationshipPatterns {
			fmt.Fprintf(w, "    %s\n", p)
		}
	}
	return nil
}
