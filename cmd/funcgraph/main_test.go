package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DeusData/funcgraph/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"main.go": "package main\n\nfunc main() {\n\tfor i := 0; i < 3; i++ {\n\t\tprintln(i)\n\t}\n}\n",
		"calc.c":  "int twice(int x) {\n\treturn x * 2;\n}\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "funcgraph "+version {
		t.Errorf("got %q", out)
	}
}

func TestExportAndSchema(t *testing.T) {
	repo := writeRepo(t)
	db := filepath.Join(t.TempDir(), "out.db")

	out, err := run(t, "export", repo, "--db", db, "--workers", "2", "--log-level", "error")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "exported 2 functions (0 failed) from 2 files") {
		t.Errorf("unexpected summary %q", out)
	}

	out, err = run(t, "schema", "--db", db)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, want := range []string{"Function", "ASTPseudoNode", "CFGPseudoNode", "IS_FILE_OF", "FLOWS_TO", "(:Function)-[:IS_FUNCTION_OF_AST]->(:ASTPseudoNode)"} {
		if !strings.Contains(out, want) {
			t.Errorf("schema output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "schema", "--db", db, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var schemas map[string]*store.SchemaInfo
	if err := json.Unmarshal([]byte(out), &schemas); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(schemas) != 1 {
		t.Errorf("expected one project, got %d", len(schemas))
	}
}

func TestExportLanguageFlag(t *testing.T) {
	repo := writeRepo(t)
	db := filepath.Join(t.TempDir(), "c.db")
	out, err := run(t, "export", repo, "--db", db, "--lang", "c", "--log-level", "error")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "exported 1 functions (0 failed) from 1 files") {
		t.Errorf("unexpected summary %q", out)
	}
	if _, err := run(t, "export", repo, "--db", db, "--lang", "rust"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestExportRejectsMissingRepo(t *testing.T) {
	if _, err := run(t, "export", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error")
	}
}

func TestSchemaRequiresExistingDB(t *testing.T) {
	if _, err := run(t, "schema", "--db", filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error for missing database")
	}
	if _, err := run(t, "schema"); err == nil {
		t.Error("expected error without --db")
	}
}

func TestDump(t *testing.T) {
	repo := writeRepo(t)
	out, err := run(t, "dump", filepath.Join(repo, "calc.c"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"=== twice", "body: compound_statement", "B0(entry)", "B1(exit)", "return x * 2;"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "dump", filepath.Join(repo, "main.go"), "-f", "main", "--no-ast")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "body: block") || !strings.Contains(out, "==[True]==>") {
		t.Errorf("unexpected CFG-only output:\n%s", out)
	}
	if _, err := run(t, "dump", filepath.Join(repo, "main.go"), "-f", "missing"); err == nil {
		t.Error("expected error for unknown function")
	}
}

func TestShow(t *testing.T) {
	repo := writeRepo(t)
	if err := os.WriteFile(filepath.Join(repo, "dead.c"), []byte("int dead(int x) {\n\treturn x;\n\tx++;\n}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	db := filepath.Join(t.TempDir(), "show.db")
	if _, err := run(t, "export", repo, "--db", db, "--log-level", "error"); err != nil {
		t.Fatalf("export: %v", err)
	}

	out, err := run(t, "show", "--db", db, "main")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"=== main", ".main.main)", "ast nodes:", "B0(entry)", "B1(exit)", "==[True]==>"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "unreachable") {
		t.Errorf("main has no dead code:\n%s", out)
	}

	out, err = run(t, "show", "--db", db, "dead")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "unreachable: B3 x++;") {
		t.Errorf("expected the statement after return to be unreachable:\n%s", out)
	}

	if _, err := run(t, "show", "--db", db, "missing"); err == nil {
		t.Error("expected error for unknown function")
	}
}
