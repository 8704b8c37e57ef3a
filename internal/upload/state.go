package upload

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// StateDB tracks which exports have been uploaded so unchanged files are
// not re-sent.
type StateDB struct {
	db *sql.DB
}

// UploadedFile is one row of the state database.
type UploadedFile struct {
	Path         string
	Size         int64
	Hash         string
	LogsInserted int
	UploadedAt   time.Time
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS uploaded_exports (
		path          TEXT PRIMARY KEY,
		size          INTEGER NOT NULL,
		hash          TEXT NOT NULL,
		logs_inserted INTEGER NOT NULL DEFAULT 0,
		uploaded_at   TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsUploaded reports whether relPath was uploaded with the same size and hash.
func (s *StateDB) IsUploaded(ctx context.Context, relPath string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM uploaded_exports WHERE path = ? AND size = ? AND hash = ?`,
		relPath, size, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", relPath, err)
	}
	return count > 0, nil
}

// MarkUploaded records a successful upload, replacing any earlier version
// of the same path.
func (s *StateDB) MarkUploaded(ctx context.Context, f UploadedFile) error {
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO uploaded_exports (path, size, hash, logs_inserted, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
		f.Path, f.Size, f.Hash, f.LogsInserted, f.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("marking %s uploaded: %w", f.Path, err)
	}
	return nil
}

// List returns every recorded upload, most recent first.
func (s *StateDB) List(ctx context.Context) ([]UploadedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, size, hash, logs_inserted, uploaded_at FROM uploaded_exports ORDER BY uploaded_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	defer rows.Close()

	var result []UploadedFile
	for rows.Next() {
		var f UploadedFile
		if err := rows.Scan(&f.Path, &f.Size, &f.Hash, &f.LogsInserted, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
