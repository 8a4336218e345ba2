package snapshot

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mediahub/vhub/errors"
)

// Index records every snapshot upload (serial, channel, path, time) in a
// small pure-Go SQLite database, a supplement over the original's
// single-latest-snap_url field (SPEC_FULL.md §4).
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if necessary) the SQLite index at path and
// ensures its schema exists.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapFatal(err, "snapshot", "OpenIndex", "open "+path)
	}
	const schema = `CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		serial TEXT NOT NULL,
		channel TEXT NOT NULL,
		path TEXT NOT NULL,
		uploaded_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapFatal(err, "snapshot", "OpenIndex", "create schema")
	}
	return &Index{db: db}, nil
}

// Record inserts one upload row.
func (idx *Index) Record(ctx context.Context, serial, channel, path string, t time.Time) error {
	_, err := idx.db.ExecContext(ctx,
		`INSERT INTO snapshots (serial, channel, path, uploaded_at) VALUES (?, ?, ?, ?)`,
		serial, channel, path, t)
	if err != nil {
		return errors.WrapTransient(err, "snapshot", "Record", "insert")
	}
	return nil
}

// Count returns how many snapshots have been recorded for serial. The
// getdeviceinfo reply does not include this count.
func (idx *Index) Count(ctx context.Context, serial string) (int, error) {
	var n int
	err := idx.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE serial = ?`, serial).Scan(&n)
	if err != nil {
		return 0, errors.WrapTransient(err, "snapshot", "Count", "select")
	}
	return n, nil
}

// Close closes the underlying database handle.
func (idx *Index) Close() error {
	return idx.db.Close()
}
