package export

import (
	"context"
	"log/slog"

	"github.com/DeusData/funcgraph/internal/model"
	"github.com/DeusData/funcgraph/internal/nodestore"
)

// RegisterFile writes the File node for f and commits it, so functions of the
// file can link to it.
func (x *Exporter) RegisterFile(f *model.File) (int64, error) {
	id := x.sess.CreateNode(f, nodestore.LabelFile, fileProperties(f))
	if err := x.sess.IndexNode(f, map[string]any{"path": f.Path, "language": string(f.Language)}); err != nil {
		x.sess.Rollback()
		return 0, err
	}
	if _, err := x.sess.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ExportFile registers the file and exports each of its functions. A failed
// function does not stop the others.
func (x *Exporter) ExportFile(ctx context.Context, f *model.File) FileResult {
	res := FileResult{Path: f.Path}
	fileID, err := x.RegisterFile(f)
	if err != nil {
		res.Err = err
		slog.Error("export.file.failed", "path", f.Path, "err", err)
		return res
	}
	res.FileNodeID = fileID

	res.Functions = make([]Result, 0, len(f.Functions))
	for _, fn := range f.Functions {
		res.Functions = append(res.Functions, x.ExportFunction(ctx, fn, fileID))
	}
	if failed := len(res.Failed()); failed > 0 {
		slog.Warn("export.file.partial", "path", f.Path, "functions", len(f.Functions), "failed", failed)
	}
	return res
}

func fileProperties(f *model.File) map[string]any {
	props := map[string]any{
		"path":     f.Path,
		"language": string(f.Language),
	}
	if f.Hash != "" {
		props["hash"] = f.Hash
	}
	return props
}
