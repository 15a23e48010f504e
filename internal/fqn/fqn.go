// Package fqn computes dotted qualified names for exported functions.
package fqn

import (
	"path/filepath"
	"strings"
)

// Compute returns the qualified name of name declared in relPath.
// Format: <module>.<rel_path_parts_dotted>.<name>
// Examples:
//   - funcgraph.cmd.funcgraph.main.main
//   - myrepo.src.util.parse_args
func Compute(module, relPath, name string) string {
	relPath = strings.TrimSuffix(filepath.ToSlash(relPath), filepath.Ext(relPath))
	var parts []string
	if module != "" {
		parts = append(parts, module)
	}
	for p := range strings.SplitSeq(relPath, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	if name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, ".")
}

// ModuleName returns the module prefix for a repository: its base
// directory name with dots replaced, so it never splits into two segments.
func ModuleName(repoPath string) string {
	base := filepath.Base(filepath.Clean(repoPath))
	if base == "/" || base == "." {
		return ""
	}
	return strings.ReplaceAll(base, ".", "_")
}
