// Package store keeps a history of solve runs in SQLite.
//
// Each run records its source and one row per island group with the metric
// and cable lengths, so results can be compared across inputs and solver
// versions without re-running the search.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/islandlink/pkg/errors"
	"github.com/matzehuels/islandlink/pkg/islands"
	"github.com/matzehuels/islandlink/pkg/pipeline"
)

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 20

// Run is one stored pipeline run.
type Run struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	CreatedAt time.Time     `json:"created_at"`
	Groups    []GroupResult `json:"groups,omitempty"`
	// GroupCount is filled by ListRuns, which does not load groups.
	GroupCount int `json:"group_count"`
}

// GroupResult is the stored outcome for one group.
type GroupResult struct {
	Index       int            `json:"index" db:"group_index"`
	Name        string         `json:"name,omitempty" db:"name"`
	Sites       int            `json:"sites" db:"sites"`
	Population  int            `json:"population" db:"population"`
	Average     float64        `json:"average" db:"average"`
	CableBefore float64        `json:"cable_before" db:"cable_before"`
	CableAfter  float64        `json:"cable_after" db:"cable_after"`
	Commits     int            `json:"commits" db:"commits"`
	Edges       []islands.Edge `json:"edges" db:"-"`

	EdgesJSON string `json:"-" db:"edges_json"`
}

type runRow struct {
	ID         string `db:"id"`
	Source     string `db:"source"`
	CreatedAt  int64  `db:"created_at"`
	GroupCount int    `db:"group_count"`
}

func (r runRow) run() Run {
	return Run{
		ID:         r.ID,
		Source:     r.Source,
		CreatedAt:  time.UnixMilli(r.CreatedAt).UTC(),
		GroupCount: r.GroupCount,
	}
}

// DB wraps a SQLite connection for run history.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS group_results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		group_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		sites INTEGER NOT NULL,
		population INTEGER NOT NULL,
		average REAL NOT NULL,
		cable_before REAL NOT NULL,
		cable_after REAL NOT NULL,
		commits INTEGER NOT NULL,
		edges_json TEXT NOT NULL,
		PRIMARY KEY (run_id, group_index)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun stores a pipeline result and returns the new run.
func (db *DB) SaveRun(ctx context.Context, source string, res *pipeline.Result) (Run, error) {
	run := Run{
		ID:         uuid.New().String(),
		Source:     source,
		CreatedAt:  db.now().UTC().Truncate(time.Millisecond),
		Groups:     make([]GroupResult, 0, len(res.Groups)),
		GroupCount: len(res.Groups),
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, source, created_at) VALUES (?, ?, ?)",
		run.ID, run.Source, run.CreatedAt.UnixMilli(),
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO group_results
		(run_id, group_index, name, sites, population, average, cable_before, cable_after, commits, edges_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, err
	}
	defer stmt.Close()

	for _, g := range res.Groups {
		edges, err := json.Marshal(g.View.Edges)
		if err != nil {
			return Run{}, fmt.Errorf("encode edges: %w", err)
		}
		gr := GroupResult{
			Index:       g.Index,
			Name:        g.Name,
			Sites:       g.Sites,
			Population:  g.Population,
			Average:     g.Average,
			CableBefore: g.CableBefore,
			CableAfter:  g.CableAfter,
			Commits:     g.Commits,
			Edges:       g.View.Edges,
			EdgesJSON:   string(edges),
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, gr.Index, gr.Name, gr.Sites, gr.Population,
			gr.Average, gr.CableBefore, gr.CableAfter, gr.Commits, gr.EdgesJSON,
		); err != nil {
			return Run{}, fmt.Errorf("insert group %d: %w", g.Index, err)
		}
		run.Groups = append(run.Groups, gr)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns the most recent runs without their groups, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var rows []runRow
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT r.id, r.source, r.created_at, COUNT(g.group_index) AS group_count
		FROM runs r LEFT JOIN group_results g ON g.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	runs := make([]Run, len(rows))
	for i, r := range rows {
		runs[i] = r.run()
	}
	return runs, nil
}

// GetRun loads one run with its groups. An unknown id yields NOT_FOUND.
func (db *DB) GetRun(ctx context.Context, id string) (Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Run{}, errors.New(errors.ErrCodeNotFound, "run %q not found", id)
	}

	var row runRow
	err := db.conn.GetContext(ctx, &row, "SELECT id, source, created_at, 0 AS group_count FROM runs WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return Run{}, errors.New(errors.ErrCodeNotFound, "run %q not found", id)
	}
	if err != nil {
		return Run{}, err
	}

	var groups []GroupResult
	err = db.conn.SelectContext(ctx, &groups, `
		SELECT group_index, name, sites, population, average, cable_before, cable_after, commits, edges_json
		FROM group_results WHERE run_id = ? ORDER BY group_index`, id)
	if err != nil {
		return Run{}, err
	}
	for i := range groups {
		if err := json.Unmarshal([]byte(groups[i].EdgesJSON), &groups[i].Edges); err != nil {
			return Run{}, fmt.Errorf("decode edges of group %d: %w", groups[i].Index, err)
		}
	}

	run := row.run()
	run.Groups = groups
	run.GroupCount = len(groups)
	return run, nil
}
