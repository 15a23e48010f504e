package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// InsertNode inserts a single node under its caller-assigned ID.
func (s *Store) InsertNode(n *Node) error {
	_, err := s.q.Exec(`INSERT INTO nodes (id, project, label, properties) VALUES (?, ?, ?, ?)`,
		n.ID, n.Project, n.Label, marshalProps(n.Properties))
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	return nil
}

// FindNodeByID finds a node by its primary key ID. Returns nil if absent.
func (s *Store) FindNodeByID(id int64) (*Node, error) {
	row := s.q.QueryRow(`SELECT id, project, label, properties FROM nodes WHERE id=?`, id)
	return scanNode(row)
}

// FindNodesByLabel finds all nodes with a given label in a project.
func (s *Store) FindNodesByLabel(project, label string) ([]*Node, error) {
	rows, err := s.q.Query(`SELECT id, project, label, properties
		FROM nodes WHERE project=? AND label=? ORDER BY id`, project, label)
	if err != nil {
		return nil, fmt.Errorf("find by label: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// CountNodes returns the number of nodes in a project.
func (s *Store) CountNodes(project string) (int, error) {
	var count int
	err := s.q.QueryRow("SELECT COUNT(*) FROM nodes WHERE project=?", project).Scan(&count)
	return count, err
}

// CountNodesByLabel returns the number of nodes with a label in a project.
func (s *Store) CountNodesByLabel(project, label string) (int, error) {
	var count int
	err := s.q.QueryRow("SELECT COUNT(*) FROM nodes WHERE project=? AND label=?", project, label).Scan(&count)
	return count, err
}

// MaxNodeID returns the highest node ID in the database, 0 when empty.
func (s *Store) MaxNodeID() (int64, error) {
	var id int64
	if err := s.q.QueryRow("SELECT COALESCE(MAX(id), 0) FROM nodes").Scan(&id); err != nil {
		return 0, fmt.Errorf("max node id: %w", err)
	}
	return id, nil
}

// FindNodesByIDs returns a map of nodeID → *Node for the given IDs.
func (s *Store) FindNodesByIDs(ids []int64) (map[int64]*Node, error) {
	if len(ids) == 0 {
		return map[int64]*Node{}, nil
	}
	result := make(map[int64]*Node, len(ids))
	const batchSize = 998 // leave room under 999 limit

	for i := 0; i < len(ids); i += batchSize {
		end := min(i+batchSize, len(ids))
		chunk := ids[i:end]

		placeholders := make([]string, len(chunk))
		args := make([]any, len(chunk))
		for j, id := range chunk {
			placeholders[j] = "?"
			args[j] = id
		}

		query := fmt.Sprintf(
			"SELECT id, project, label, properties FROM nodes WHERE id IN (%s)",
			strings.Join(placeholders, ","))

		if err := func() error {
			rows, err := s.q.Query(query, args...)
			if err != nil {
				return fmt.Errorf("find nodes by ids: %w", err)
			}
			defer rows.Close()
			nodes, err := scanNodes(rows)
			if err != nil {
				return err
			}
			for _, n := range nodes {
				result[n.ID] = n
			}
			return nil
		}(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*Node, error) {
	var n Node
	var props string
	err := row.Scan(&n.ID, &n.Project, &n.Label, &props)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n.Properties = unmarshalProps(props)
	return &n, nil
}

func scanNodes(rows *sql.Rows) ([]*Node, error) {
	var result []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// Formula-derived batch size: SQLite has a 999 bind variable limit.
const numNodeCols = 4
const nodesBatchSize = 999 / numNodeCols // = 249

// InsertNodeBatch inserts multiple nodes in batched multi-row INSERTs.
func (s *Store) InsertNodeBatch(nodes []*Node) error {
	for i := 0; i < len(nodes); i += nodesBatchSize {
		end := min(i+nodesBatchSize, len(nodes))
		if err := s.insertNodeChunk(nodes[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertNodeChunk(batch []*Node) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO nodes (id, project, label, properties) VALUES `)

	args := make([]any, 0, len(batch)*numNodeCols)
	for i, n := range batch {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?,?)")
		args = append(args, n.ID, n.Project, n.Label, marshalProps(n.Properties))
	}

	if _, err := s.q.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("insert node batch: %w", err)
	}
	return nil
}
