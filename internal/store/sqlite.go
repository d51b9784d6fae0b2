package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

// SQLite implements Store on a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// New opens (creating if needed) the database at dbPath and applies
// pending migrations.
func New(dbPath string) (*SQLite, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// UpsertFile inserts or refreshes a file row keyed by path.
func (s *SQLite) UpsertFile(ctx context.Context, file *File) error {
	query := `
		INSERT INTO files (file_path, language, content_hash, size_bytes, mod_time, chunk_count, fallback, indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			language = excluded.language,
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			mod_time = excluded.mod_time,
			chunk_count = excluded.chunk_count,
			fallback = excluded.fallback,
			indexed_at = excluded.indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		file.FilePath, file.Language, file.ContentHash, file.SizeBytes,
		file.ModTime, file.ChunkCount, file.Fallback, now, now, now).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.IndexedAt = now
	file.UpdatedAt = now
	return nil
}

const fileColumns = `id, file_path, language, content_hash, size_bytes, mod_time,
       chunk_count, fallback, indexed_at, created_at, updated_at`

// GetFile returns the file row for a path.
func (s *SQLite) GetFile(ctx context.Context, filePath string) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE file_path = ?`
	file, err := scanFile(s.db.QueryRowContext(ctx, query, filePath))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// ListFiles returns every indexed file ordered by path.
func (s *SQLite) ListFiles(ctx context.Context) ([]*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files ORDER BY file_path`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// DeleteFile removes a file and, via cascade, its chunks.
func (s *SQLite) DeleteFile(ctx context.Context, fileID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID)
	return err
}

// ReplaceChunks swaps a file's chunk set in one transaction.
func (s *SQLite) ReplaceChunks(ctx context.Context, fileID int64, chunks []types.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	insert := `
		INSERT INTO chunks (
			file_id, chunk_idx, content, content_hash, chunk_type, language,
			start_line, end_line, complexity, size_chars, line_count,
			nesting_level, signature_only, fallback, fallback_reason,
			overlap_json, open_tags_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	for i := range chunks {
		c := &chunks[i]
		overlapJSON, err := marshalNullable(c.Overlap)
		if err != nil {
			return err
		}
		openTagsJSON, err := marshalNullable(c.OpenTags)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insert,
			fileID, i, c.Content, c.ContentHash, string(c.Type), c.Language,
			c.StartLine, c.EndLine, c.Complexity, c.SizeChars, c.LineCount,
			c.NestingLevel, c.SignatureOnly, c.Fallback, c.FallbackReason,
			overlapJSON, openTagsJSON, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE files SET chunk_count = ?, updated_at = ? WHERE id = ?`,
		len(chunks), now, fileID); err != nil {
		return fmt.Errorf("failed to update chunk count: %w", err)
	}

	return tx.Commit()
}

const chunkColumns = `id, file_id, content, content_hash, chunk_type, language,
       start_line, end_line, complexity, size_chars, line_count,
       nesting_level, signature_only, fallback, fallback_reason,
       overlap_json, open_tags_json, created_at`

// ListChunksByFile returns a file's chunks in emission order.
func (s *SQLite) ListChunksByFile(ctx context.Context, fileID int64) ([]*ChunkRecord, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE file_id = ? ORDER BY chunk_idx`
	rows, err := s.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := make([]*ChunkRecord, 0)
	for rows.Next() {
		rec, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SearchChunks runs a full-text query over chunk content. Rank is the FTS5
// BM25 score; lower is better.
func (s *SQLite) SearchChunks(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	sqlQuery := `
		SELECT ` + prefixColumns(chunkColumns, "c.") + `, rank
		FROM chunks c
		JOIN chunks_fts fts ON c.id = fts.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, sqlQuery, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	results := make([]SearchResult, 0)
	for rows.Next() {
		rec, rank, err := scanChunkWithRank(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Record: *rec, Rank: rank})
	}
	return results, rows.Err()
}

// GetStatus summarizes the index.
func (s *SQLite) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{SchemaVersion: CurrentSchemaVersion}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&status.FilesCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&status.ChunksCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE fallback = 1").Scan(&status.FallbackFiles); err != nil {
		return nil, err
	}

	// MAX() strips the column's declared type, so the driver would hand back
	// raw TEXT; selecting the column itself keeps the time conversion.
	var lastIndexed sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT indexed_at FROM files ORDER BY indexed_at DESC LIMIT 1").Scan(&lastIndexed)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if lastIndexed.Valid {
		status.LastIndexedAt = lastIndexed.Time
	}

	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return status, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*File, error) {
	var file File
	var modTime, indexedAt sql.NullTime
	err := row.Scan(
		&file.ID, &file.FilePath, &file.Language, &file.ContentHash,
		&file.SizeBytes, &modTime, &file.ChunkCount, &file.Fallback,
		&indexedAt, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if modTime.Valid {
		file.ModTime = modTime.Time
	}
	if indexedAt.Valid {
		file.IndexedAt = indexedAt.Time
	}
	return &file, nil
}

func scanChunk(row rowScanner) (*ChunkRecord, error) {
	rec, _, err := scanChunkFields(row, false)
	return rec, err
}

func scanChunkWithRank(row rowScanner) (*ChunkRecord, float64, error) {
	return scanChunkFields(row, true)
}

func scanChunkFields(row rowScanner, withRank bool) (*ChunkRecord, float64, error) {
	var rec ChunkRecord
	var chunkType string
	var fallbackReason, overlapJSON, openTagsJSON sql.NullString
	var rank float64

	dest := []any{
		&rec.ID, &rec.FileID, &rec.Chunk.Content, &rec.Chunk.ContentHash,
		&chunkType, &rec.Chunk.Language, &rec.Chunk.StartLine, &rec.Chunk.EndLine,
		&rec.Chunk.Complexity, &rec.Chunk.SizeChars, &rec.Chunk.LineCount,
		&rec.Chunk.NestingLevel, &rec.Chunk.SignatureOnly, &rec.Chunk.Fallback,
		&fallbackReason, &overlapJSON, &openTagsJSON, &rec.CreatedAt,
	}
	if withRank {
		dest = append(dest, &rank)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, 0, err
	}

	rec.Chunk.Type = types.ChunkType(chunkType)
	if fallbackReason.Valid {
		rec.Chunk.FallbackReason = fallbackReason.String
	}
	if overlapJSON.Valid && overlapJSON.String != "" {
		var info types.OverlapInfo
		if err := json.Unmarshal([]byte(overlapJSON.String), &info); err != nil {
			return nil, 0, fmt.Errorf("corrupt overlap json for chunk %d: %w", rec.ID, err)
		}
		rec.Chunk.Overlap = &info
	}
	if openTagsJSON.Valid && openTagsJSON.String != "" {
		if err := json.Unmarshal([]byte(openTagsJSON.String), &rec.Chunk.OpenTags); err != nil {
			return nil, 0, fmt.Errorf("corrupt open_tags json for chunk %d: %w", rec.ID, err)
		}
	}
	return &rec, rank, nil
}

// marshalNullable returns NULL for nil or empty values so the column stays
// clean for rows without metadata.
func marshalNullable(v any) (any, error) {
	switch val := v.(type) {
	case *types.OverlapInfo:
		if val == nil {
			return nil, nil
		}
	case []string:
		if len(val) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(cols, prefix string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
