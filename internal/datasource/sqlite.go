package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/arbor/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id        TEXT NOT NULL,
	parent    TEXT NOT NULL,
	text      TEXT NOT NULL DEFAULT '',
	droppable INTEGER NOT NULL DEFAULT 0,
	data      TEXT,
	position  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS nodes_position ON nodes(position);
`

// SQLiteReader provides read access to a snapshot stored in a nodes table.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens a SQLite snapshot for reading.
func OpenSQLite(path string) (*SQLiteReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadNodes reads all rows in stored order. Tables written by other tools
// may lack the position or data columns; those are read in rowid order
// without data.
func (r *SQLiteReader) LoadNodes() ([]model.Node, error) {
	rows, err := r.db.Query(`SELECT id, parent, text, droppable, data FROM nodes ORDER BY position, rowid`)
	if err != nil {
		return r.loadNodesSimple()
	}
	defer rows.Close()

	nodes := []model.Node{}
	for rows.Next() {
		var n model.Node
		var id, parent, text, data sql.NullString
		var droppable sql.NullBool
		if err := rows.Scan(&id, &parent, &text, &droppable, &data); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", r.path, err)
		}
		n.ID = model.ID(id.String)
		n.Parent = model.ID(parent.String)
		n.Text = text.String
		n.Droppable = droppable.Bool
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &n.Data); err != nil {
				return nil, fmt.Errorf("node %s: invalid data column: %w", n.ID, err)
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *SQLiteReader) loadNodesSimple() ([]model.Node, error) {
	rows, err := r.db.Query(`SELECT id, parent, text, droppable FROM nodes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", r.path, err)
	}
	defer rows.Close()

	nodes := []model.Node{}
	for rows.Next() {
		var id, parent, text sql.NullString
		var droppable sql.NullBool
		if err := rows.Scan(&id, &parent, &text, &droppable); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", r.path, err)
		}
		nodes = append(nodes, model.Node{
			ID:        model.ID(id.String),
			Parent:    model.ID(parent.String),
			Text:      text.String,
			Droppable: droppable.Bool,
		})
	}
	return nodes, rows.Err()
}

// SaveSQLite replaces the contents of the nodes table with nodes, creating
// the database and table when missing. The write happens in one transaction.
func SaveSQLite(path string, nodes []model.Node) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM nodes`); err != nil {
		return fmt.Errorf("clearing nodes: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO nodes (id, parent, text, droppable, data, position) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, n := range nodes {
		var data sql.NullString
		if len(n.Data) > 0 {
			raw, err := json.Marshal(n.Data)
			if err != nil {
				return fmt.Errorf("node %s: encoding data: %w", n.ID, err)
			}
			data = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.Exec(string(n.ID), string(n.Parent), n.Text, n.Droppable, data, i); err != nil {
			return fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}
