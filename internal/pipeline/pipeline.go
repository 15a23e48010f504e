// Package pipeline exports a whole repository: discover source files, parse
// them in parallel, then write every function into the graph store.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeusData/funcgraph/internal/discover"
	"github.com/DeusData/funcgraph/internal/export"
	"github.com/DeusData/funcgraph/internal/fqn"
	"github.com/DeusData/funcgraph/internal/frontend"
	"github.com/DeusData/funcgraph/internal/lang"
	"github.com/DeusData/funcgraph/internal/model"
	"github.com/DeusData/funcgraph/internal/nodestore"
	"github.com/DeusData/funcgraph/internal/store"
)

// Options tunes a run. The zero value exports every supported language with
// one parse worker per CPU.
type Options struct {
	Languages   []lang.Language
	Exclude     []string
	Workers     int
	IndexFields []string // AST properties to index; nil means the importer default
}

// Pipeline orchestrates the export of one repository.
type Pipeline struct {
	ctx         context.Context
	Store       *store.Store
	RepoPath    string
	ProjectName string
	opts        Options
}

// Summary reports what a run wrote.
type Summary struct {
	Files           int
	FilesFailed     int
	Functions       int
	FunctionsFailed int
	Nodes           int
	Edges           int
	Elapsed         time.Duration
	Failures        []export.Result
}

// New creates a new Pipeline.
func New(ctx context.Context, s *store.Store, repoPath string, opts Options) *Pipeline {
	if abs, err := filepath.Abs(repoPath); err == nil {
		repoPath = abs
	}
	return &Pipeline{
		ctx:         ctx,
		Store:       s,
		RepoPath:    repoPath,
		ProjectName: ProjectNameFromPath(repoPath),
		opts:        opts,
	}
}

// ProjectNameFromPath derives a unique project name from an absolute path
// by replacing path separators with dashes and trimming the leading dash.
func ProjectNameFromPath(absPath string) string {
	cleaned := filepath.ToSlash(filepath.Clean(absPath))
	name := strings.ReplaceAll(cleaned, "/", "-")
	name = strings.TrimLeft(name, "-")
	if name == "" {
		return "root"
	}
	return name
}

// Run discovers, parses and exports the repository. The previous graph of
// the project is replaced. The whole export is one transaction: a cancelled
// context or a store failure outside a function unit leaves the database
// unchanged. Faults inside a function only drop that function.
func (p *Pipeline) Run() (*Summary, error) {
	start := time.Now()
	slog.Info("pipeline.start", "project", p.ProjectName, "path", p.RepoPath)

	files, err := discover.Discover(p.ctx, p.RepoPath, &discover.Options{
		Exclude:   p.opts.Exclude,
		Languages: p.opts.Languages,
	})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	slog.Info("pipeline.discovered", "files", len(files))

	t := time.Now()
	parsed, err := p.parseAll(files)
	if err != nil {
		return nil, err
	}
	slog.Info("pass.timing", "pass", "parse", "elapsed", time.Since(t))

	sum := &Summary{Files: len(files)}
	for _, r := range parsed {
		if r.err != nil {
			sum.FilesFailed++
		}
	}

	p.Store.BeginBulkWrite(p.ctx)
	t = time.Now()
	err = p.Store.WithTransaction(p.ctx, func(txStore *store.Store) error {
		return p.exportAll(txStore, parsed, sum)
	})
	p.Store.EndBulkWrite(p.ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("pass.timing", "pass", "export", "elapsed", time.Since(t))
	p.Store.Checkpoint(p.ctx)

	sum.Nodes, _ = p.Store.CountNodes(p.ProjectName)
	sum.Edges, _ = p.Store.CountEdges(p.ProjectName)
	sum.Elapsed = time.Since(start)
	slog.Info("pipeline.done",
		"files", sum.Files, "files_failed", sum.FilesFailed,
		"functions", sum.Functions, "functions_failed", sum.FunctionsFailed,
		"nodes", sum.Nodes, "edges", sum.Edges, "elapsed", sum.Elapsed)
	return sum, nil
}

type parseResult struct {
	info discover.FileInfo
	file *model.File
	err  error
}

// parseAll parses files in parallel. Parsing is CPU-bound and touches no
// shared state, so results land in their own slot.
func (p *Pipeline) parseAll(files []discover.FileInfo) ([]parseResult, error) {
	results := make([]parseResult, len(files))
	workers := p.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(min(workers, len(files)), 1)

	g, gctx := errgroup.WithContext(p.ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			file, err := frontend.ParseFile(f.Path, f.RelPath, f.Language)
			if err != nil {
				slog.Warn("parse.file.err", "path", f.RelPath, "lang", f.Language, "err", err)
			} else {
				module := fqn.ModuleName(p.RepoPath)
				for _, fn := range file.Functions {
					fn.QualifiedName = fqn.Compute(module, f.RelPath, fn.Name)
				}
			}
			results[i] = parseResult{info: f, file: file, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) exportAll(tx *store.Store, parsed []parseResult, sum *Summary) error {
	if err := tx.DeleteProject(p.ProjectName); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := tx.UpsertProject(p.ProjectName, p.RepoPath); err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	sess, err := nodestore.New(tx, p.ProjectName)
	if err != nil {
		return err
	}
	x := export.New(sess)
	x.AST = export.TreeImporter{IndexFields: p.opts.IndexFields}

	for _, r := range parsed {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		if r.err != nil {
			continue
		}
		fr := x.ExportFile(p.ctx, r.file)
		if fr.Err != nil {
			sum.FilesFailed++
			continue
		}
		sum.Functions += len(fr.Functions)
		failed := fr.Failed()
		sum.FunctionsFailed += len(failed)
		sum.Failures = append(sum.Failures, failed...)
	}
	// A cancel during the last file only shows up in its function results.
	return p.ctx.Err()
}
