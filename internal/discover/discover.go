// Package discover finds the source files of a repository that the front end
// can parse.
package discover

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/DeusData/funcgraph/internal/lang"
)

// IgnoreFileName is read from the repository root when Options.IgnoreFile is
// empty. One glob per line, # starts a comment.
const IgnoreFileName = ".funcgraphignore"

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".cache": true, ".funcgraph": true, ".git": true, ".hg": true,
	".idea": true, ".svn": true, ".tmp": true, ".vs": true,
	".vscode": true, "bazel-bin": true, "bazel-out": true, "bin": true,
	"build": true, "cmake-build-debug": true, "coverage": true,
	"dist": true, "node_modules": true, "obj": true, "out": true,
	"target": true, "testdata": true, "third_party": true, "tmp": true,
	"vendor": true,
}

// FileInfo represents a discovered source file.
type FileInfo struct {
	Path     string        // absolute path
	RelPath  string        // slash-separated, relative to repo root
	Language lang.Language // detected from the extension
	Size     int64
}

// Options configures file discovery.
type Options struct {
	IgnoreFile string          // path to an ignore file (optional)
	Exclude    []string        // extra globs matched against names and relative paths
	Languages  []lang.Language // restrict to these languages; empty means all
}

func matchAny(patterns []string, name, rel string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// Discover walks a repository and returns its source files sorted by
// relative path, so repeated runs export files in the same order.
func Discover(ctx context.Context, repoPath string, opts *Options) ([]FileInfo, error) {
	repoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}

	ignPath := opts.IgnoreFile
	if ignPath == "" {
		ignPath = filepath.Join(repoPath, IgnoreFileName)
	}
	patterns, _ := loadIgnoreFile(ignPath)
	patterns = append(patterns, opts.Exclude...)

	var files []FileInfo
	err = filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(repoPath, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != repoPath && (skipDirs[d.Name()] || matchAny(patterns, d.Name(), rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || matchAny(patterns, d.Name(), rel) {
			return nil
		}

		l, ok := lang.LanguageForExtension(filepath.Ext(path))
		if !ok {
			return nil
		}
		if len(opts.Languages) > 0 && !slices.Contains(opts.Languages, l) {
			return nil
		}
		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		files = append(files, FileInfo{Path: path, RelPath: rel, Language: l, Size: size})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}
