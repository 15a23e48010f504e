package store

import "testing"

// seedHub builds F -[HAS]-> G -[MEMBER]-> {A, B} plus A -[NEXT]-> B.
func seedHub(t *testing.T) *Store {
	t.Helper()
	s := openTestStore(t)
	nodes := []*Node{
		{ID: 1, Project: "test", Label: "Function", Properties: map[string]any{"name": "F"}},
		{ID: 2, Project: "test", Label: "Group"},
		{ID: 3, Project: "test", Label: "Member", Properties: map[string]any{"code": "A"}},
		{ID: 4, Project: "test", Label: "Member", Properties: map[string]any{"code": "B"}},
	}
	if err := s.InsertNodeBatch(nodes); err != nil {
		t.Fatal(err)
	}
	edges := []*Edge{
		{Project: "test", SourceID: 1, TargetID: 2, Type: "HAS"},
		{Project: "test", SourceID: 2, TargetID: 3, Type: "MEMBER"},
		{Project: "test", SourceID: 2, TargetID: 4, Type: "MEMBER"},
		{Project: "test", SourceID: 3, TargetID: 4, Type: "NEXT"},
	}
	if err := s.InsertEdgeBatch(edges); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestHubMembers(t *testing.T) {
	s := seedHub(t)
	members, err := s.HubMembers(1, "HAS", "MEMBER")
	if err != nil {
		t.Fatalf("HubMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].DisplayName() != "A" || members[1].DisplayName() != "B" {
		t.Errorf("unexpected members %s, %s", members[0].DisplayName(), members[1].DisplayName())
	}
	if none, _ := s.HubMembers(1, "HAS", "NEXT"); len(none) != 0 {
		t.Errorf("expected no members, got %d", len(none))
	}
}

func TestReachable(t *testing.T) {
	s := seedHub(t)
	ids, err := s.Reachable(1, "HAS")
	if err != nil {
		t.Fatalf("Reachable: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("expected [1 2], got %v", ids)
	}

	// Cycles terminate.
	if err := s.InsertEdgeBatch([]*Edge{{Project: "test", SourceID: 4, TargetID: 3, Type: "NEXT"}}); err != nil {
		t.Fatal(err)
	}
	ids, err = s.Reachable(3, "NEXT")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 nodes on the cycle, got %v", ids)
	}

	if ids, _ := s.Reachable(4, "MEMBER"); len(ids) != 1 {
		t.Errorf("start without edges should reach only itself, got %v", ids)
	}
}

func TestGetSchema(t *testing.T) {
	s := seedHub(t)
	info, err := s.GetSchema("test")
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	if len(info.NodeLabels) != 3 {
		t.Errorf("expected 3 labels, got %d", len(info.NodeLabels))
	}
	if info.NodeLabels[0].Label != "Member" || info.NodeLabels[0].Count != 2 {
		t.Errorf("expected Member first, got %+v", info.NodeLabels[0])
	}
	if len(info.RelationshipTypes) != 3 {
		t.Errorf("expected 3 relationship types, got %d", len(info.RelationshipTypes))
	}
	if len(info.SampleFunctionNames) != 1 || info.SampleFunctionNames[0] != "F" {
		t.Errorf("unexpected sample names %v", info.SampleFunctionNames)
	}
	if len(info.RelationshipPatterns) != 3 {
		t.Fatalf("expected 3 relationship patterns, got %v", info.RelationshipPatterns)
	}
	if info.RelationshipPatterns[0] != "(:Group)-[:MEMBER]->(:Member)  [2x]" {
		t.Errorf("unexpected first pattern %q", info.RelationshipPatterns[0])
	}
}
