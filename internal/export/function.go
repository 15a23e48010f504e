// Package export writes parsed files and functions into the graph store.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/DeusData/funcgraph/internal/linker"
	"github.com/DeusData/funcgraph/internal/model"
	"github.com/DeusData/funcgraph/internal/nodestore"
)

// Grouping nodes are fresh per function and never shared.
type astGroup struct{ fn *model.Function }
type cfgGroup struct{ fn *model.Function }

// Exporter exports functions into one identity session. All calls must come
// from a single goroutine.
type Exporter struct {
	sess *nodestore.Session
	AST  ASTImporter
	CFG  CFGImporter
}

// New returns an Exporter using the default AST and CFG importers.
func New(sess *nodestore.Session) *Exporter {
	return &Exporter{sess: sess, AST: TreeImporter{}, CFG: GraphImporter{}}
}

// Session returns the identity session the exporter writes to.
func (x *Exporter) Session() *nodestore.Session { return x.sess }

// ExportFunction writes fn, its grouping nodes, its AST and CFG, and links it
// to the file node fileNodeID. It never returns an error: a fault is logged
// with the function name, recorded in the Result, and every write of the
// function is discarded so the next function starts clean.
func (x *Exporter) ExportFunction(ctx context.Context, fn *model.Function, fileNodeID int64) (res Result) {
	res = Result{State: StateInit}
	if fn != nil {
		res.Function = fn.Name
	}

	defer func() {
		if r := recover(); r != nil {
			x.fail(&res, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		x.fail(&res, err)
		return res
	}
	if err := x.exportFunction(fn, fileNodeID, &res); err != nil {
		x.fail(&res, err)
		return res
	}

	unit, err := x.sess.Commit()
	if err != nil {
		x.fail(&res, err)
		return res
	}
	res.Nodes, res.Edges = unit.Nodes, unit.Edges
	res.State = StateDone
	slog.Debug("export.function", "function", res.Function, "nodes", res.Nodes, "edges", res.Edges, "cfg", res.HasCFG)
	return res
}

func (x *Exporter) fail(res *Result, err error) {
	x.sess.Rollback()
	res.FailedIn = res.State
	res.State = StateFailed
	res.Err = err
	res.FunctionID = 0
	slog.Error("export.function.failed", "function", res.Function, "state", res.FailedIn.String(), "err", err)
}

func (x *Exporter) exportFunction(fn *model.Function, fileNodeID int64, res *Result) error {
	props, err := functionProperties(fn)
	if err != nil {
		return err
	}
	// Only a nil CFG means "no body"; an empty one still gets its group.
	res.HasCFG = fn.CFG != nil

	// NodeCreated
	fnID := x.sess.CreateNode(fn, nodestore.LabelFunction, props)
	res.FunctionID = fnID
	indexed := maps.Clone(props)
	delete(indexed, "location")
	if err := x.sess.IndexNode(fn, indexed); err != nil {
		return err
	}
	astHub := &astGroup{fn: fn}
	x.sess.CreateNode(astHub, nodestore.LabelASTGroup, nil)
	var cfgHub *cfgGroup
	if res.HasCFG {
		cfgHub = &cfgGroup{fn: fn}
		x.sess.CreateNode(cfgHub, nodestore.LabelCFGGroup, nil)
	}
	if err := x.AST.ImportAST(x.sess, fn.AST, fnID); err != nil {
		return fmt.Errorf("import ast: %w", err)
	}
	if res.HasCFG {
		if err := x.CFG.ImportCFG(x.sess, fn.CFG, fnID); err != nil {
			return fmt.Errorf("import cfg: %w", err)
		}
	}
	res.State = StateNodeCreated

	// ASTLinked
	if err := x.sess.Link(fn, astHub, nodestore.IsFunctionOfAST, nil); err != nil {
		return err
	}
	if _, err := linker.LinkAST(x.sess, astHub, fn.AST); err != nil {
		return fmt.Errorf("link ast: %w", err)
	}
	res.State = StateASTLinked

	// CFGLinked
	if res.HasCFG {
		if err := x.sess.Link(fn, cfgHub, nodestore.IsFunctionOfCFG, nil); err != nil {
			return err
		}
		if _, err := linker.LinkCFG(x.sess, cfgHub, fn.CFG); err != nil {
			return fmt.Errorf("link cfg: %w", err)
		}
		res.State = StateCFGLinked
	}

	return x.sess.AddRelationship(fileNodeID, fnID, nodestore.IsFileOf, nil)
}

func functionProperties(fn *model.Function) (map[string]any, error) {
	switch {
	case fn == nil:
		return nil, errNilFunction
	case fn.Name == "":
		return nil, &MalformedFunctionError{Reason: "missing name"}
	case fn.AST == nil:
		return nil, &MalformedFunctionError{Reason: fmt.Sprintf("function %s has no AST root", fn.Name)}
	}
	props := map[string]any{
		"name":     fn.Name,
		"location": fn.Location.String(),
	}
	if fn.QualifiedName != "" {
		props["qualifiedName"] = fn.QualifiedName
	}
	if fn.Signature != "" {
		props["signature"] = fn.Signature
	}
	if fn.Hash != "" {
		props["hash"] = fn.Hash
	}
	return props, nil
}
