// Package sqlite implements MetadataStore over modernc.org/sqlite (pure
// Go, no CGO), using an embedded numbered-migration runner and WAL
// journaling.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/localsearch/filesearch/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

var _ driven.MetadataStore = (*Store)(nil)

// Store is the relational MetadataStore. All mutations run inside a single
// write transaction per call; readers see snapshot isolation via a
// dedicated mutex guarding writes.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex // single-writer entry point; reads pass straight through
}

// NewStore opens (or creates) the on-disk store at dbPath, applying schema
// migrations idempotently.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create index dir: %w", domain.ErrStore)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, domain.ErrStore)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", domain.ErrStore)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(fsys embed.FS) error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", domain.ErrStore)
	}

	var current int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", domain.ErrStore)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", domain.ErrStore)
	}
	type migFile struct {
		version int
		name    string
	}
	var files []migFile
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		versionStr := strings.SplitN(e.Name(), "_", 2)[0]
		v, err := strconv.Atoi(versionStr)
		if err != nil {
			continue
		}
		files = append(files, migFile{version: v, name: e.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })

	for _, mf := range files {
		if mf.version <= current {
			continue
		}
		sqlBytes, err := fsys.ReadFile(mf.name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", mf.name, domain.ErrStore)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", domain.ErrStore)
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", mf.name, domain.ErrStore)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations(version, applied_at) VALUES (?, strftime('%s','now'))", mf.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", mf.name, domain.ErrStore)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", mf.name, domain.ErrStore)
		}
	}
	return nil
}

// UpsertFile implements driven.MetadataStore.
func (s *Store) UpsertFile(ctx context.Context, rec domain.FileRecord) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin upsert_file: %w", domain.ErrStore)
	}
	defer tx.Rollback()

	var existingID int64
	var existingHash string
	var existingSize int64
	err = tx.QueryRowContext(ctx, `SELECT id, hash, size FROM files WHERE path = ?`, rec.Path).
		Scan(&existingID, &existingHash, &existingSize)

	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx, `INSERT INTO files
			(path, filename, file_type, mime_type, size, hash, created_at, modified_at, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.Path, rec.Filename, string(rec.FileType), nullableString(rec.MimeType),
			rec.SizeBytes, rec.Hash, rec.CreatedAt, rec.ModifiedAt, rec.IndexedAt)
		if err != nil {
			return 0, false, fmt.Errorf("insert file %s: %w", rec.Path, domain.ErrStore)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("read inserted id: %w", domain.ErrStore)
		}
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("commit insert_file: %w", domain.ErrStore)
		}
		return id, false, nil

	case err != nil:
		return 0, false, fmt.Errorf("lookup file %s: %w", rec.Path, domain.ErrStore)
	}

	// Fast path: identical hash and size means no-op, indexed_at untouched.
	if existingHash == rec.Hash && existingSize == rec.SizeBytes {
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("commit no-op upsert_file: %w", domain.ErrStore)
		}
		return existingID, true, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE files SET
			filename = ?, file_type = ?, mime_type = ?, size = ?, hash = ?,
			modified_at = ?, indexed_at = ?
		WHERE id = ?`,
		rec.Filename, string(rec.FileType), nullableString(rec.MimeType),
		rec.SizeBytes, rec.Hash, rec.ModifiedAt, rec.IndexedAt, existingID); err != nil {
		return 0, false, fmt.Errorf("update file %s: %w", rec.Path, domain.ErrStore)
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit update_file: %w", domain.ErrStore)
	}
	return existingID, false, nil
}

// UpsertContent implements driven.MetadataStore.
func (s *Store) UpsertContent(ctx context.Context, fileID int64, text string, wordCount int, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO content (file_id, text, word_count, language)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET text = excluded.text, word_count = excluded.word_count, language = excluded.language`,
		fileID, text, wordCount, nullableString(language))
	if err != nil {
		return fmt.Errorf("upsert_content %d: %w", fileID, domain.ErrStore)
	}
	return nil
}

// UpsertVector implements driven.MetadataStore.
func (s *Store) UpsertVector(ctx context.Context, fileID int64, vt domain.VectorType, vectorID int, chunkIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO vectors (file_id, vector_type, vector_id, chunk_index)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_id, vector_type, chunk_index) DO UPDATE SET vector_id = excluded.vector_id`,
		fileID, string(vt), vectorID, chunkIndex)
	if err != nil {
		return fmt.Errorf("upsert_vector %d/%s: %w", fileID, vt, domain.ErrStore)
	}
	return nil
}

// DeleteFile implements driven.MetadataStore.
func (s *Store) DeleteFile(ctx context.Context, fileID int64) (domain.OrphanedVectors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orphans domain.OrphanedVectors
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return orphans, fmt.Errorf("begin delete_file: %w", domain.ErrStore)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT vector_type, vector_id FROM vectors WHERE file_id = ?`, fileID)
	if err != nil {
		return orphans, fmt.Errorf("list vectors for file %d: %w", fileID, domain.ErrStore)
	}
	for rows.Next() {
		var vt string
		var vid int
		if err := rows.Scan(&vt, &vid); err != nil {
			rows.Close()
			return orphans, fmt.Errorf("scan vector row: %w", domain.ErrStore)
		}
		if domain.VectorType(vt) == domain.VectorTypeImage {
			orphans.ImageVectorIDs = append(orphans.ImageVectorIDs, vid)
		} else {
			orphans.TextVectorIDs = append(orphans.TextVectorIDs, vid)
		}
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return orphans, fmt.Errorf("delete file %d: %w", fileID, domain.ErrStore)
	}
	if err := tx.Commit(); err != nil {
		return orphans, fmt.Errorf("commit delete_file: %w", domain.ErrStore)
	}
	return orphans, nil
}

// GetFile implements driven.MetadataStore.
func (s *Store) GetFile(ctx context.Context, fileID int64) (*domain.FileRecord, error) {
	return s.scanFileRow(s.db.QueryRowContext(ctx, fileSelectCols+` WHERE id = ?`, fileID))
}

// GetByPath implements driven.MetadataStore.
func (s *Store) GetByPath(ctx context.Context, path string) (*domain.FileRecord, error) {
	return s.scanFileRow(s.db.QueryRowContext(ctx, fileSelectCols+` WHERE path = ?`, path))
}

// GetContent implements driven.MetadataStore.
func (s *Store) GetContent(ctx context.Context, fileID int64) (*domain.ContentRecord, error) {
	var rec domain.ContentRecord
	var language sql.NullString
	row := s.db.QueryRowContext(ctx, `SELECT file_id, text, word_count, language FROM content WHERE file_id = ?`, fileID)
	if err := row.Scan(&rec.FileID, &rec.Text, &rec.WordCount, &language); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get_content %d: %w", fileID, domain.ErrStore)
	}
	rec.Language = language.String
	return &rec, nil
}

const fileSelectCols = `SELECT id, path, filename, file_type, mime_type, size, hash, created_at, modified_at, indexed_at FROM files`

func (s *Store) scanFileRow(row *sql.Row) (*domain.FileRecord, error) {
	var rec domain.FileRecord
	var fileType string
	var mimeType sql.NullString
	if err := row.Scan(&rec.FileID, &rec.Path, &rec.Filename, &fileType, &mimeType,
		&rec.SizeBytes, &rec.Hash, &rec.CreatedAt, &rec.ModifiedAt, &rec.IndexedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan file row: %w", domain.ErrStore)
	}
	rec.FileType = domain.ParseFileType(fileType)
	rec.MimeType = mimeType.String
	return &rec, nil
}

// ListAll implements driven.MetadataStore.
func (s *Store) ListAll(ctx context.Context) ([]domain.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, fileSelectCols+` ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list_all: %w", domain.ErrStore)
	}
	defer rows.Close()
	return scanFileRows(rows)
}

// ListUnderRoot implements driven.MetadataStore.
func (s *Store) ListUnderRoot(ctx context.Context, root string) ([]domain.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, fileSelectCols+` WHERE path = ? OR path LIKE ? ORDER BY path`,
		root, root+string(filepath.Separator)+"%")
	if err != nil {
		return nil, fmt.Errorf("list_under_root %s: %w", root, domain.ErrStore)
	}
	defer rows.Close()
	return scanFileRows(rows)
}

func scanFileRows(rows *sql.Rows) ([]domain.FileRecord, error) {
	var out []domain.FileRecord
	for rows.Next() {
		var rec domain.FileRecord
		var fileType string
		var mimeType sql.NullString
		if err := rows.Scan(&rec.FileID, &rec.Path, &rec.Filename, &fileType, &mimeType,
			&rec.SizeBytes, &rec.Hash, &rec.CreatedAt, &rec.ModifiedAt, &rec.IndexedAt); err != nil {
			return nil, fmt.Errorf("scan file row: %w", domain.ErrStore)
		}
		rec.FileType = domain.ParseFileType(fileType)
		rec.MimeType = mimeType.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListVectorIDs implements driven.MetadataStore.
func (s *Store) ListVectorIDs(ctx context.Context, vt domain.VectorType) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT vector_id FROM vectors WHERE vector_type = ?`, string(vt))
	if err != nil {
		return nil, fmt.Errorf("list_vector_ids %s: %w", vt, domain.ErrStore)
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan vector id: %w", domain.ErrStore)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// DeleteVectorRefsByVectorID implements driven.MetadataStore.
func (s *Store) DeleteVectorRefsByVectorID(ctx context.Context, vt domain.VectorType, vectorID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM vectors WHERE vector_type = ? AND vector_id = ?`, string(vt), vectorID)
	if err != nil {
		return fmt.Errorf("delete_vector_ref %s/%d: %w", vt, vectorID, domain.ErrStore)
	}
	return nil
}

// Stats implements driven.MetadataStore, reporting a per-file-type
// breakdown alongside the indexed-file and total-byte counts.
func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	stats.ByFileType = make(map[domain.FileType]int)

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(size), 0) FROM files`)
	if err := row.Scan(&stats.TotalFiles, &stats.TotalBytes); err != nil {
		return stats, fmt.Errorf("stats totals: %w", domain.ErrStore)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT file_type, COUNT(*) FROM files GROUP BY file_type`)
	if err != nil {
		return stats, fmt.Errorf("stats by_file_type: %w", domain.ErrStore)
	}
	defer rows.Close()
	for rows.Next() {
		var ft string
		var count int
		if err := rows.Scan(&ft, &count); err != nil {
			return stats, fmt.Errorf("scan stats row: %w", domain.ErrStore)
		}
		stats.ByFileType[domain.ParseFileType(ft)] = count
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content WHERE text != ''`)
	if err := row.Scan(&stats.IndexedFiles); err != nil {
		return stats, fmt.Errorf("stats indexed_files: %w", domain.ErrStore)
	}
	return stats, nil
}

// Close implements driven.MetadataStore.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path, used by the CLI's clear command.
func (s *Store) Path() string {
	return s.path
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
