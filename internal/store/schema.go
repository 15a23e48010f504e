package store

import (
	"database/sql"
	"fmt"
)

// SchemaInfo summarises what one export wrote for a project.
type SchemaInfo struct {
	NodeLabels           []LabelCount `json:"node_labels"`
	RelationshipTypes    []TypeCount  `json:"relationship_types"`
	RelationshipPatterns []string     `json:"relationship_patterns"`
	SampleFunctionNames  []string     `json:"sample_function_names"`
}

// LabelCount is a label with its count.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TypeCount is a relationship type with its count.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

const sampleNames = 30

// GetSchema returns label and relationship statistics for a project.
// Patterns are rendered as (:Source)-[:TYPE]->(:Target)  [Nx], most
// frequent first.
func (s *Store) GetSchema(project string) (*SchemaInfo, error) {
	info := &SchemaInfo{}
	err := s.groupCounts(`SELECT label, COUNT(*) FROM nodes WHERE project=?
		GROUP BY label ORDER BY COUNT(*) DESC, label`, project, func(k string, n int) {
		info.NodeLabels = append(info.NodeLabels, LabelCount{Label: k, Count: n})
	})
	if err != nil {
		return nil, fmt.Errorf("schema labels: %w", err)
	}

	err = s.groupCounts(`SELECT type, COUNT(*) FROM edges WHERE project=?
		GROUP BY type ORDER BY COUNT(*) DESC, type`, project, func(k string, n int) {
		info.RelationshipTypes = append(info.RelationshipTypes, TypeCount{Type: k, Count: n})
	})
	if err != nil {
		return nil, fmt.Errorf("schema edge types: %w", err)
	}

	// Every edge endpoint exists (foreign keys), so an inner join loses nothing.
	err = s.groupCounts(`SELECT '(:' || src.label || ')-[:' || e.type || ']->(:' || tgt.label || ')', COUNT(*)
		FROM edges e
		JOIN nodes src ON src.id = e.source_id
		JOIN nodes tgt ON tgt.id = e.target_id
		WHERE e.project=?
		GROUP BY src.label, e.type, tgt.label
		ORDER BY COUNT(*) DESC, 1`, project, func(k string, n int) {
		info.RelationshipPatterns = append(info.RelationshipPatterns, fmt.Sprintf("%s  [%dx]", k, n))
	})
	if err != nil {
		return nil, fmt.Errorf("schema patterns: %w", err)
	}

	if info.SampleFunctionNames, err = s.sampleFunctionNames(project); err != nil {
		return nil, err
	}
	return info, nil
}

// groupCounts runs a two-column (key, count) query and feeds every row to fn.
func (s *Store) groupCounts(query, project string, fn func(key string, n int)) error {
	rows, err := s.q.Query(query, project)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key sql.NullString
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		fn(key.String, n)
	}
	return rows.Err()
}

func (s *Store) sampleFunctionNames(project string) ([]string, error) {
	rows, err := s.q.Query(`SELECT DISTINCT json_extract(properties, '$.name') AS name FROM nodes
		WHERE project=? AND label='Function' AND json_extract(properties, '$.name') IS NOT NULL
		ORDER BY name LIMIT ?`, project, sampleNames)
	if err != nil {
		return nil, fmt.Errorf("schema sample names: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
