package nodestore

import (
	"fmt"

	"github.com/DeusData/funcgraph/internal/store"
)

// AddRelationship buffers a directed edge src -[typ]-> dst. Endpoint
// existence is checked by the store when the unit is committed.
func (s *Session) AddRelationship(src, dst int64, typ RelType, props map[string]any) error {
	if !typ.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownRelType, typ)
	}
	s.edges = append(s.edges, &store.Edge{
		Project:    s.project,
		SourceID:   src,
		TargetID:   dst,
		Type:       string(typ),
		Properties: props,
	})
	return nil
}

// Link resolves both objects and adds a relationship between their nodes.
func (s *Session) Link(src, dst any, typ RelType, props map[string]any) error {
	srcID, err := s.IDOf(src)
	if err != nil {
		return err
	}
	dstID, err := s.IDOf(dst)
	if err != nil {
		return err
	}
	return s.AddRelationship(srcID, dstID, typ, props)
}
