// Package nodestore maps in-memory analysis objects (AST nodes, basic blocks,
// functions, grouping nodes) to persisted node IDs for one import session.
//
// Every registered object gets a dense handle; persisted IDs live in a slice
// indexed by handle. Nodes, index entries and relationships are buffered and
// written by Commit, so a unit of work (one function) lands atomically or not
// at all.
package nodestore

import (
	"fmt"
	"sort"

	"github.com/DeusData/funcgraph/internal/store"
)

// Session is the identity store of one import run. It is not safe for
// concurrent use; the backing store expects a single writer.
type Session struct {
	st      *store.Store
	project string
	nextID  int64

	handles  map[any]int
	objects  []any
	ids      []int64
	shadowed map[int]int // new handle -> handle it replaced for the same object

	committed int // handles below this are durable
	nodes     []*store.Node
	edges     []*store.Edge
	index     []*store.IndexEntry
	stats     Stats
}

// Stats counts what a session has written.
type Stats struct {
	Nodes int
	Edges int
}

// New creates a session writing to st under project. IDs continue after the
// highest ID already in the database.
func New(st *store.Store, project string) (*Session, error) {
	maxID, err := st.MaxNodeID()
	if err != nil {
		return nil, &StoreWriteError{Op: "seed ids", Err: err}
	}
	return &Session{
		st:       st,
		project:  project,
		nextID:   maxID + 1,
		handles:  make(map[any]int),
		shadowed: make(map[int]int),
	}, nil
}

// Project returns the project the session writes to.
func (s *Session) Project() string { return s.project }

// Stats returns the totals committed so far.
func (s *Session) Stats() Stats { return s.stats }

// CreateNode registers obj and buffers a node with the given label and
// properties. obj must be comparable (a pointer in practice). Registering the
// same object twice creates a second node and re-points the mapping.
func (s *Session) CreateNode(obj any, label string, props map[string]any) int64 {
	id := s.nextID
	s.nextID++

	h := len(s.ids)
	if prev, ok := s.handles[obj]; ok {
		s.shadowed[h] = prev
	}
	s.handles[obj] = h
	s.objects = append(s.objects, obj)
	s.ids = append(s.ids, id)

	s.nodes = append(s.nodes, &store.Node{ID: id, Project: s.project, Label: label, Properties: props})
	return id
}

// IDOf returns the node ID registered for obj.
func (s *Session) IDOf(obj any) (int64, error) {
	h, ok := s.handles[obj]
	if !ok {
		return 0, &LookupError{Object: obj}
	}
	return s.ids[h], nil
}

// Registered reports whether obj has a node in this session.
func (s *Session) Registered(obj any) bool {
	_, ok := s.handles[obj]
	return ok
}

// IndexNode adds searchable entries for a registered object. Nil values are
// skipped; other values are stored in their fmt.Sprint form.
func (s *Session) IndexNode(obj any, props map[string]any) error {
	id, err := s.IDOf(obj)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(props))
	for k, v := range props {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.index = append(s.index, &store.IndexEntry{
			NodeID:  id,
			Project: s.project,
			Key:     k,
			Value:   fmt.Sprint(props[k]),
		})
	}
	return nil
}

// Pending returns how many nodes and edges are buffered but not committed.
func (s *Session) Pending() Stats {
	return Stats{Nodes: len(s.nodes), Edges: len(s.edges)}
}

// Commit writes everything buffered since the last Commit or Rollback inside
// a savepoint. On failure nothing of the unit remains, neither in the store
// nor in the identity map, and a *StoreWriteError is returned.
func (s *Session) Commit() (Stats, error) {
	unit := s.Pending()
	err := s.st.WithSavepoint("funcgraph_unit", func() error {
		if err := s.st.InsertNodeBatch(s.nodes); err != nil {
			return err
		}
		if err := s.st.InsertIndexBatch(s.index); err != nil {
			return err
		}
		return s.st.InsertEdgeBatch(s.edges)
	})
	if err != nil {
		s.Rollback()
		return Stats{}, &StoreWriteError{Op: "commit", Err: err}
	}
	s.committed = len(s.ids)
	s.clearBuffers()
	s.stats.Nodes += unit.Nodes
	s.stats.Edges += unit.Edges
	return unit, nil
}

// Rollback drops everything buffered since the last Commit and forgets the
// objects registered in that span. IDs handed out are not reused.
func (s *Session) Rollback() {
	for h := len(s.ids) - 1; h >= s.committed; h-- {
		obj := s.objects[h]
		if s.handles[obj] == h {
			if prev, ok := s.shadowed[h]; ok {
				s.handles[obj] = prev
			} else {
				delete(s.handles, obj)
			}
		}
		delete(s.shadowed, h)
	}
	s.objects = s.objects[:s.committed]
	s.ids = s.ids[:s.committed]
	s.clearBuffers()
}

func (s *Session) clearBuffers() {
	s.nodes = s.nodes[:0]
	s.edges = s.edges[:0]
	s.index = s.index[:0]
}
