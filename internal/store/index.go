package store

import (
	"fmt"
	"strings"
)

const indexBatchSize = 999 / 4

// InsertIndexBatch stores searchable key/value pairs for nodes.
// A later entry for the same (node, key) replaces the earlier one.
func (s *Store) InsertIndexBatch(entries []*IndexEntry) error {
	for i := 0; i < len(entries); i += indexBatchSize {
		end := min(i+indexBatchSize, len(entries))
		if err := s.insertIndexChunk(entries[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertIndexChunk(batch []*IndexEntry) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO node_index (node_id, project, key, value) VALUES `)
	args := make([]any, 0, len(batch)*4)
	for i, e := range batch {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?,?)")
		args = append(args, e.NodeID, e.Project, e.Key, e.Value)
	}
	sb.WriteString(` ON CONFLICT(node_id, key) DO UPDATE SET value=excluded.value`)
	if _, err := s.q.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("insert index batch: %w", err)
	}
	return nil
}

// LookupIndex returns the IDs of nodes indexed with key=value in a project.
func (s *Store) LookupIndex(project, key, value string) ([]int64, error) {
	rows, err := s.q.Query(`SELECT node_id FROM node_index
		WHERE project=? AND key=? AND value=? ORDER BY node_id`, project, key, value)
	if err != nil {
		return nil, fmt.Errorf("lookup index: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IndexedKeys returns the index keys stored for a node.
func (s *Store) IndexedKeys(nodeID int64) (map[string]string, error) {
	rows, err := s.q.Query(`SELECT key, value FROM node_index WHERE node_id=?`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("indexed keys: %w", err)
	}
	defer rows.Close()
	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, rows.Err()
}
