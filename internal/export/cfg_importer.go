package export

import (
	"github.com/DeusData/funcgraph/internal/cfg"
	"github.com/DeusData/funcgraph/internal/nodestore"
)

// CFGImporter persists a whole control-flow graph beneath a function.
type CFGImporter interface {
	ImportCFG(s *nodestore.Session, g *cfg.CFG, functionID int64) error
}

// GraphImporter writes one BasicBlock node per block, FLOWS_TO edges carrying
// the flow label, and IS_BASIC_BLOCK_OF edges from each block to the AST
// statements it holds. The AST must be imported first.
type GraphImporter struct{}

// ImportCFG implements CFGImporter.
func (GraphImporter) ImportCFG(s *nodestore.Session, g *cfg.CFG, functionID int64) error {
	for _, b := range g.Blocks() {
		props := map[string]any{
			"code":       b.Code(),
			"kind":       string(b.Kind),
			"location":   b.Location.String(),
			"functionId": functionID,
		}
		s.CreateNode(b, nodestore.LabelBasicBlock, props)
		if err := s.IndexNode(b, map[string]any{"kind": props["kind"], "functionId": functionID}); err != nil {
			return err
		}
	}

	for _, e := range g.Edges() {
		if err := s.Link(e.Source, e.Destination, nodestore.FlowsTo, g.EdgeProperties(e)); err != nil {
			return err
		}
	}

	for _, b := range g.Blocks() {
		for _, stmt := range b.Statements {
			if err := s.Link(b, stmt, nodestore.IsBasicBlockOf, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
