// Package store persists the help document served by helpctl serve in a
// SQLite database under .helpctl/.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loanbuddy/helpctl/internal/help"
	_ "modernc.org/sqlite"
)

const dbFile = ".helpctl/help.db"

// ErrEmpty is returned by Load when no document has been stored yet.
var ErrEmpty = errors.New("no help content stored")

// Store wraps the database connection
type Store struct {
	conn    *sql.DB
	baseDir string
}

// Path returns the database path for baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, dbFile)
}

// Open opens an existing database.
func Open(baseDir string) (*Store, error) {
	dbPath := Path(baseDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: run 'helpctl content init' first")
	}
	return open(baseDir, dbPath)
}

// Initialize creates the database if needed and ensures the schema exists.
func Initialize(baseDir string) (*Store, error) {
	dbPath := Path(baseDir)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return open(baseDir, dbPath)
}

func open(baseDir, dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL lets the server read while content import writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s, err := New(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.baseDir = baseDir
	return s, nil
}

// New wraps an already open connection and ensures the schema exists.
func New(conn *sql.DB) (*Store, error) {
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.conn.Close()
}

// BaseDir returns the base directory for the database
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Load returns the stored document with sections in display order. The
// document and its sections are read in one transaction.
func (s *Store) Load(ctx context.Context) (*help.Response, error) {
	var doc *help.Response
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var title string
		err := tx.QueryRowContext(ctx, `SELECT title FROM documents WHERE id = 1`).Scan(&title)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEmpty
		}
		if err != nil {
			return fmt.Errorf("load document: %w", err)
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT section_id, title, items FROM sections ORDER BY position`)
		if err != nil {
			return fmt.Errorf("load sections: %w", err)
		}
		defer rows.Close()

		doc = &help.Response{Title: title, Sections: []help.Section{}}
		for rows.Next() {
			var (
				sec   help.Section
				items string
			)
			if err := rows.Scan(&sec.ID, &sec.Title, &items); err != nil {
				return fmt.Errorf("scan section: %w", err)
			}
			if err := json.Unmarshal([]byte(items), &sec.Items); err != nil {
				return fmt.Errorf("decode items of section %s: %w", sec.ID, err)
			}
			doc.Sections = append(doc.Sections, sec)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("load sections: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	doc.Normalize()
	return doc, nil
}

// Replace stores doc, discarding the previous document.
func (s *Store) Replace(ctx context.Context, doc *help.Response) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sections`); err != nil {
			return fmt.Errorf("clear sections: %w", err)
		}
		if err := upsertDocument(ctx, tx, doc.Title); err != nil {
			return err
		}
		for i, sec := range doc.Sections {
			if err := insertSection(ctx, tx, i, sec); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddSection appends sec after the existing sections.
func (s *Store) AddSection(ctx context.Context, sec help.Section) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE id = 1`).Scan(&exists); err != nil {
			return fmt.Errorf("check document: %w", err)
		}
		if exists == 0 {
			return ErrEmpty
		}

		var next int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM sections`).Scan(&next); err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		if err := insertSection(ctx, tx, next, sec); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE documents SET updated_at = ? WHERE id = 1`, now())
		return err
	})
}

// Seed stores help.Default() when the store is empty. It reports whether
// anything was written.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	if _, err := s.Load(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrEmpty) {
		return false, err
	}
	if err := s.Replace(ctx, help.Default()); err != nil {
		return false, fmt.Errorf("seed default content: %w", err)
	}
	return true, nil
}

// UpdatedAt returns when the document was last written.
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ts string
	err := s.conn.QueryRowContext(ctx, `SELECT updated_at FROM documents WHERE id = 1`).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrEmpty
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, ts)
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func upsertDocument(ctx context.Context, tx *sql.Tx, title string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		title, now())
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func insertSection(ctx context.Context, tx *sql.Tx, position int, sec help.Section) error {
	items := sec.Items
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sections (position, section_id, title, items) VALUES (?, ?, ?, ?)`,
		position, sec.ID, sec.Title, string(data))
	if err != nil {
		return fmt.Errorf("insert section %s: %w", sec.ID, err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
