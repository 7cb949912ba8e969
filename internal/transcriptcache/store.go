package transcriptcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"autosub/internal/subtitles"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates a cache database written by another version.
var ErrSchemaMismatch = errors.New("transcript cache schema version mismatch")

// Store persists transcripts in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has %d, expected %d (delete %s to rebuild)", ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Get returns the cached transcript for key.
func (s *Store) Get(ctx context.Context, key string) (subtitles.Transcript, bool, error) {
	var language, payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT language, payload FROM transcripts WHERE cache_key = ?", key,
	).Scan(&language, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return subtitles.Transcript{}, false, nil
	}
	if err != nil {
		return subtitles.Transcript{}, false, fmt.Errorf("lookup transcript: %w", err)
	}
	var segments []subtitles.Segment
	if err := json.Unmarshal([]byte(payload), &segments); err != nil {
		return subtitles.Transcript{}, false, fmt.Errorf("decode cached transcript: %w", err)
	}
	return subtitles.Transcript{Language: language, Segments: segments}, true, nil
}

// Put stores transcript under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key, sourcePath string, transcript subtitles.Transcript) error {
	segments := transcript.Segments
	if segments == nil {
		segments = []subtitles.Segment{}
	}
	payload, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcripts (cache_key, source_path, language, segment_count, payload, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(cache_key) DO UPDATE SET
            source_path = excluded.source_path,
            language = excluded.language,
            segment_count = excluded.segment_count,
            payload = excluded.payload,
            created_at = excluded.created_at`,
		key, sourcePath, transcript.Language, len(segments), string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

// Count returns the number of cached transcripts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM transcripts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}
	return n, nil
}

// Prune deletes entries created before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transcripts WHERE created_at < ?", cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune transcripts: %w", err)
	}
	return res.RowsAffected()
}

// Params are the settings that change what a transcriber produces.
type Params struct {
	Model              string
	Language           string
	EnhanceConsistency bool
}

// Key hashes the audio content at path together with params.
func Key(path string, params Params) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash audio: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("hash audio: %w", err)
	}
	fmt.Fprintf(hash, "\x00model=%s\x00language=%s\x00consistency=%t", params.Model, params.Language, params.EnhanceConsistency)
	return hex.EncodeToString(hash.Sum(nil)), nil
}
