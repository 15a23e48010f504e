package store

import "fmt"

// DisplayName picks a human-readable name from the node's properties.
func (n *Node) DisplayName() string {
	for _, key := range []string{"name", "path", "code"} {
		if v, ok := n.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	return fmt.Sprintf("%s#%d", n.Label, n.ID)
}

// HubMembers resolves ownerID -[hubType]-> hub -[memberType]-> member and
// returns the distinct members. This is the one-hop lookup grouping nodes exist for.
func (s *Store) HubMembers(ownerID int64, hubType, memberType string) ([]*Node, error) {
	rows, err := s.q.Query(`
		SELECT DISTINCT n.id, n.project, n.label, n.properties
		FROM edges h
		JOIN edges m ON m.source_id = h.target_id AND m.type = ?
		JOIN nodes n ON n.id = m.target_id
		WHERE h.source_id = ? AND h.type = ?
		ORDER BY n.id`, memberType, ownerID, hubType)
	if err != nil {
		return nil, fmt.Errorf("hub members: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// Reachable returns the ids of all nodes reachable from startID over
// outbound edges of edgeType, start included, in breadth-first order.
func (s *Store) Reachable(startID int64, edgeType string) ([]int64, error) {
	seen := map[int64]bool{startID: true}
	order := []int64{startID}
	for i := 0; i < len(order); i++ {
		edges, err := s.FindEdgesBySourceAndType(order[i], edgeType)
		if err != nil {
			return nil, fmt.Errorf("reachable from %d: %w", startID, err)
		}
		for _, e := range edges {
			if !seen[e.TargetID] {
				seen[e.TargetID] = true
				order = append(order, e.TargetID)
			}
		}
	}
	return order, nil
}
