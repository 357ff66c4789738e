package linkdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"turtlescout.app/internal/turtle"
)

// Store keeps a local history of generated train links so a link created
// earlier can be recovered without asking the remote service. Session state
// itself is never stored here.
type Store struct {
	db *sql.DB
}

// Row is one recorded link.
type Row struct {
	Slug                 string
	CollaboratorPassword string
	ReadonlyURL          string
	CollaborateURL       string
	Patch                string
	CreatedAt            string
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty link db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS links (
		slug TEXT PRIMARY KEY,
		collaborator_password TEXT NOT NULL,
		readonly_url TEXT NOT NULL,
		collaborate_url TEXT NOT NULL,
		patch TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one generated link. Re-recording the same slug refreshes it.
func (s *Store) Record(ctx context.Context, link turtle.LinkData) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO links (slug, collaborator_password, readonly_url, collaborate_url, patch, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			collaborator_password=excluded.collaborator_password,
			readonly_url=excluded.readonly_url,
			collaborate_url=excluded.collaborate_url,
			patch=excluded.patch,
			created_at=excluded.created_at`,
		link.Slug,
		link.CollaboratorPassword,
		link.ReadonlyURL,
		link.CollaborateURL,
		link.HighestPatch.String(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Recent returns up to limit links, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, collaborator_password, readonly_url, collaborate_url, patch, created_at
		FROM links ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Slug, &r.CollaboratorPassword, &r.ReadonlyURL, &r.CollaborateURL, &r.Patch, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
