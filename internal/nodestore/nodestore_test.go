package nodestore

import (
	"errors"
	"testing"

	"github.com/DeusData/funcgraph/internal/store"
)

type object struct{ name string }

func newSession(t *testing.T) (*Session, *store.Store) {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.UpsertProject("test", "/tmp/test"); err != nil {
		t.Fatal(err)
	}
	s, err := New(st, "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, st
}

func TestCreateNodeAndIDOf(t *testing.T) {
	s, st := newSession(t)
	a, b := &object{"a"}, &object{"b"}

	idA := s.CreateNode(a, LabelFunction, map[string]any{"name": "a"})
	idB := s.CreateNode(b, LabelASTGroup, nil)
	if idA == idB {
		t.Fatal("ids must differ")
	}

	got, err := s.IDOf(a)
	if err != nil || got != idA {
		t.Errorf("IDOf(a) = %d, %v; want %d", got, err, idA)
	}

	if n, _ := st.FindNodeByID(idA); n != nil {
		t.Error("node should not be visible before Commit")
	}
	if _, err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	n, err := st.FindNodeByID(idA)
	if err != nil || n == nil {
		t.Fatalf("FindNodeByID: %v, %v", n, err)
	}
	if n.Label != LabelFunction || n.Properties["name"] != "a" {
		t.Errorf("unexpected node %+v", n)
	}
	if s.Stats().Nodes != 2 {
		t.Errorf("expected 2 committed nodes, got %d", s.Stats().Nodes)
	}
}

func TestIDOfUnregistered(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.IDOf(&object{"ghost"})
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if err := s.IndexNode(&object{"ghost"}, map[string]any{"k": "v"}); !errors.As(err, &lookupErr) {
		t.Errorf("IndexNode on unregistered object: expected LookupError, got %v", err)
	}
	if err := s.Link(&object{"x"}, &object{"y"}, IsFileOf, nil); !errors.As(err, &lookupErr) {
		t.Errorf("Link on unregistered object: expected LookupError, got %v", err)
	}
}

func TestIDsContinueAfterExistingNodes(t *testing.T) {
	s, st := newSession(t)
	s.CreateNode(&object{"a"}, LabelFile, nil)
	if _, err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	s2, err := New(st, "test")
	if err != nil {
		t.Fatal(err)
	}
	id := s2.CreateNode(&object{"b"}, LabelFile, nil)
	if id != 2 {
		t.Errorf("expected id 2, got %d", id)
	}
}

func TestIndexNode(t *testing.T) {
	s, st := newSession(t)
	fn := &object{"foo"}
	id := s.CreateNode(fn, LabelFunction, nil)
	if err := s.IndexNode(fn, map[string]any{"name": "foo", "childNum": 3, "skip": nil}); err != nil {
		t.Fatalf("IndexNode: %v", err)
	}
	if _, err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	ids, err := st.LookupIndex("test", "name", "foo")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("expected [%d], got %v", id, ids)
	}
	keys, _ := st.IndexedKeys(id)
	if len(keys) != 2 || keys["childNum"] != "3" {
		t.Errorf("unexpected index keys %v", keys)
	}
}

func TestAddRelationship(t *testing.T) {
	s, st := newSession(t)
	a, b := &object{"a"}, &object{"b"}
	s.CreateNode(a, LabelFunction, nil)
	s.CreateNode(b, LabelASTGroup, nil)
	if err := s.Link(a, b, IsFunctionOfAST, map[string]any{"w": 1}); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := s.AddRelationship(1, 2, RelType("CALLS"), nil); !errors.Is(err, ErrUnknownRelType) {
		t.Errorf("expected ErrUnknownRelType, got %v", err)
	}
	unit, err := s.Commit()
	if err != nil {
		t.Fatal(err)
	}
	if unit.Edges != 1 {
		t.Errorf("expected 1 edge in unit, got %d", unit.Edges)
	}
	edges, _ := st.FindEdgesByType("test", string(IsFunctionOfAST))
	if len(edges) != 1 || edges[0].Properties["w"] != float64(1) {
		t.Errorf("unexpected edges %+v", edges)
	}
}

func TestCommitFailureRollsBackUnit(t *testing.T) {
	s, st := newSession(t)
	file := &object{"file"}
	s.CreateNode(file, LabelFile, nil)
	if _, err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	fn := &object{"fn"}
	fnID := s.CreateNode(fn, LabelFunction, nil)
	// Destination does not exist: the foreign key rejects the edge.
	if err := s.AddRelationship(fnID, 9999, IsFunctionOfAST, nil); err != nil {
		t.Fatal(err)
	}
	_, err := s.Commit()
	var writeErr *StoreWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected StoreWriteError, got %v", err)
	}
	if s.Registered(fn) {
		t.Error("failed unit should be forgotten by the identity map")
	}
	if !s.Registered(file) {
		t.Error("committed object must survive a failed unit")
	}
	if n, _ := st.FindNodeByID(fnID); n != nil {
		t.Error("failed unit node should not be persisted")
	}

	// Next unit gets a fresh id and commits fine.
	next := &object{"next"}
	nextID := s.CreateNode(next, LabelFunction, nil)
	if nextID <= fnID {
		t.Errorf("ids must not be reused: got %d after %d", nextID, fnID)
	}
	if err := s.Link(file, next, IsFileOf, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Commit(); err != nil {
		t.Fatalf("Commit after failure: %v", err)
	}
	if c, _ := st.CountEdges("test"); c != 1 {
		t.Errorf("expected 1 edge, got %d", c)
	}
}

func TestRollbackRestoresShadowedMapping(t *testing.T) {
	s, _ := newSession(t)
	obj := &object{"dup"}
	first := s.CreateNode(obj, LabelFunction, nil)
	if _, err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	second := s.CreateNode(obj, LabelFunction, nil)
	if got, _ := s.IDOf(obj); got != second {
		t.Fatalf("expected re-pointed id %d, got %d", second, got)
	}
	s.Rollback()
	if got, _ := s.IDOf(obj); got != first {
		t.Errorf("expected mapping restored to %d, got %d", first, got)
	}
	if p := s.Pending(); p.Nodes != 0 || p.Edges != 0 {
		t.Errorf("expected empty buffers, got %+v", p)
	}
}
