package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"healthpage/internal/core"
)

// Store represents the SQLite-based caching store
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "healthpage.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	// Captions are keyed by file content so a replaced image is captioned again
	captionsTable := `
	CREATE TABLE IF NOT EXISTS captions (
		path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		captioner TEXT NOT NULL,
		caption TEXT NOT NULL,
		date_generated DATETIME,
		PRIMARY KEY (path, content_hash, captioner)
	);`

	embeddingsTable := `
	CREATE TABLE IF NOT EXISTS embeddings (
		model TEXT NOT NULL,
		text_hash TEXT NOT NULL,
		vector TEXT NOT NULL,
		date_generated DATETIME,
		PRIMARY KEY (model, text_hash)
	);`

	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		age INTEGER,
		gender TEXT,
		status TEXT,
		output_path TEXT,
		pairings TEXT,
		warnings TEXT,
		created_at DATETIME
	);`

	tables := []string{captionsTable, embeddingsTable, runsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// CacheCaption stores a caption for one version of an image file.
func (s *Store) CacheCaption(path, contentHash, captioner, caption string) error {
	query := `
	INSERT OR REPLACE INTO captions
	(path, content_hash, captioner, caption, date_generated)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, path, contentHash, captioner, caption, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to cache caption: %w", err)
	}
	return nil
}

// GetCachedCaption retrieves a caption. The boolean is false on a cache miss.
func (s *Store) GetCachedCaption(path, contentHash, captioner string) (string, bool, error) {
	query := `
	SELECT caption FROM captions
	WHERE path = ? AND content_hash = ? AND captioner = ?`

	var caption string
	err := s.db.QueryRow(query, path, contentHash, captioner).Scan(&caption)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil // Cache miss
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to scan caption: %w", err)
	}
	return caption, true, nil
}

// CacheEmbedding stores the vector for text under model.
func (s *Store) CacheEmbedding(model, text string, vector []float64) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO embeddings
	(model, text_hash, vector, date_generated)
	VALUES (?, ?, ?, ?)`

	if _, err := s.db.Exec(query, model, ContentHash([]byte(text)), string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to cache embedding: %w", err)
	}
	return nil
}

// GetCachedEmbedding retrieves the vector for text under model.
func (s *Store) GetCachedEmbedding(model, text string) ([]float64, bool, error) {
	query := `SELECT vector FROM embeddings WHERE model = ? AND text_hash = ?`

	var data string
	err := s.db.QueryRow(query, model, ContentHash([]byte(text))).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to scan embedding: %w", err)
	}

	var vector []float64
	if err := json.Unmarshal([]byte(data), &vector); err != nil {
		return nil, false, fmt.Errorf("failed to decode embedding: %w", err)
	}
	return vector, true, nil
}

// RecordRun stores the summary of a pipeline run.
func (s *Store) RecordRun(run core.RunRecord) error {
	pairings, err := json.Marshal(run.Pairings)
	if err != nil {
		return fmt.Errorf("failed to encode pairings: %w", err)
	}
	warnings, err := json.Marshal(run.Warnings)
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO runs
	(id, age, gender, status, output_path, pairings, warnings, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.Exec(query,
		run.ID,
		run.Age,
		string(run.Gender),
		run.Status,
		run.OutputPath,
		string(pairings),
		string(warnings),
		run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, or nil when it does not exist.
func (s *Store) GetRun(id string) (*core.RunRecord, error) {
	query := `
	SELECT id, age, gender, status, output_path, pairings, warnings, created_at
	FROM runs WHERE id = ?`

	run, err := scanRun(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(limit int) ([]core.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, age, gender, status, output_path, pairings, warnings, created_at
	FROM runs ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []core.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*core.RunRecord, error) {
	var run core.RunRecord
	var gender, pairings, warnings string

	err := row.Scan(
		&run.ID,
		&run.Age,
		&gender,
		&run.Status,
		&run.OutputPath,
		&pairings,
		&warnings,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Gender = core.Gender(gender)
	if err := json.Unmarshal([]byte(pairings), &run.Pairings); err != nil {
		return nil, fmt.Errorf("failed to decode pairings: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &run.Warnings); err != nil {
		return nil, fmt.Errorf("failed to decode warnings: %w", err)
	}
	return &run, nil
}

// GetCacheStats returns statistics about the cache
func (s *Store) GetCacheStats() (*core.CacheStats, error) {
	stats := &core.CacheStats{}

	// Get counts
	queries := map[string]*int{
		"SELECT COUNT(*) FROM captions":   &stats.CaptionCount,
		"SELECT COUNT(*) FROM embeddings": &stats.EmbeddingCount,
		"SELECT COUNT(*) FROM runs":       &stats.RunCount,
	}

	for query, target := range queries {
		err := s.db.QueryRow(query).Scan(target)
		if err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	// Get cache size (file size)
	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// ClearCache removes cached captions and embeddings. Run history is kept.
func (s *Store) ClearCache() error {
	tables := []string{"captions", "embeddings"}

	for _, table := range tables {
		_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			return fmt.Errorf("failed to clear %s table: %w", table, err)
		}
	}

	// Vacuum to reclaim space
	_, err := s.db.Exec("VACUUM")
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}

// CleanupOldCache removes cached captions and embeddings older than maxAge.
func (s *Store) CleanupOldCache(maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)

	for _, table := range []string{"captions", "embeddings"} {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE date_generated < ?", table), cutoff); err != nil {
			return fmt.Errorf("failed to clean old %s: %w", table, err)
		}
	}

	return nil
}

// ContentHash returns the hex SHA-256 of data, used as a cache key.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
