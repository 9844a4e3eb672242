package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"cmrstac/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS collections (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  versions TEXT NOT NULL,
  itemCount INTEGER NOT NULL,
  bboxCount INTEGER NOT NULL,
  timeStart TEXT,
  timeEnd TEXT,
  collection_json TEXT NOT NULL,
  lastRunId TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_collections_title ON collections(title);

CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  keyword TEXT NOT NULL,
  source TEXT NOT NULL,
  rawRef TEXT NOT NULL DEFAULT '',
  entries INTEGER NOT NULL,
  collections INTEGER NOT NULL,
  items INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertCollections records the persisted state of every group in agg under
// runID. Existing rows for the same id are replaced.
func (d *DB) UpsertCollections(runID string, agg *internal.Aggregated) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO collections (
  id, title, description, versions, itemCount, bboxCount,
  timeStart, timeEnd, collection_json, lastRunId, lastSeenAt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  description=excluded.description,
  versions=excluded.versions,
  itemCount=excluded.itemCount,
  bboxCount=excluded.bboxCount,
  timeStart=excluded.timeStart,
  timeEnd=excluded.timeEnd,
  collection_json=excluded.collection_json,
  lastRunId=excluded.lastRunId,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range agg.Keys() {
		g, _ := agg.Get(id)
		versions := make([]string, 0, len(g.Items))
		for _, item := range g.Items {
			versions = append(versions, item.Version)
		}
		versionsJSON, err := json.Marshal(versions)
		if err != nil {
			return err
		}
		collectionJSON, err := json.Marshal(g.Collection)
		if err != nil {
			return err
		}

		var start, end *string
		if intervals := g.Collection.Extent.Temporal.Interval; len(intervals) > 0 {
			start, end = intervals[0][0], intervals[0][1]
		}

		if _, err := stmt.Exec(
			id, g.Collection.Title, g.Collection.Description, string(versionsJSON), len(g.Items),
			len(g.Collection.Extent.Spatial.BBox), start, end, string(collectionJSON), runID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const collectionColumns = `id, title, description, versions, itemCount, bboxCount,
       timeStart, timeEnd, collection_json, lastRunId, lastSeenAt`

type scanner interface {
	Scan(dest ...any) error
}

func scanCollection(s scanner) (internal.CollectionRow, error) {
	var row internal.CollectionRow
	var versionsJSON string
	if err := s.Scan(
		&row.ID, &row.Title, &row.Description, &versionsJSON, &row.ItemCount, &row.BBoxCount,
		&row.TimeStart, &row.TimeEnd, &row.CollectionJSON, &row.LastRunID, &row.LastSeenAt,
	); err != nil {
		return internal.CollectionRow{}, err
	}
	_ = json.Unmarshal([]byte(versionsJSON), &row.Versions)
	return row, nil
}

func (d *DB) ListCollections() ([]internal.CollectionRow, error) {
	rows, err := d.conn.Query(`SELECT ` + collectionColumns + ` FROM collections ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CollectionRow
	for rows.Next() {
		row, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func (d *DB) GetCollection(id string) (*internal.CollectionRow, error) {
	row, err := scanCollection(d.conn.QueryRow(`SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) InsertRun(run internal.RunRow) error {
	_, err := d.conn.Exec(`
INSERT INTO runs (id, keyword, source, rawRef, entries, collections, items)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, run.ID, run.Keyword, run.Source, run.RawRef, run.Entries, run.Collections, run.Items)
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, keyword, source, rawRef, entries, collections, items, createdAt
FROM runs ORDER BY createdAt DESC, rowid DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var r internal.RunRow
		if err := rows.Scan(&r.ID, &r.Keyword, &r.Source, &r.RawRef, &r.Entries, &r.Collections, &r.Items, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
