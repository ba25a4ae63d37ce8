// Package sqlite implements storage.RelationalStore on modernc.org/sqlite,
// a pure Go SQLite driver that requires no cgo.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jshaughn618/story-search/core"
	"github.com/jshaughn618/story-search/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS stories (
	id            TEXT PRIMARY KEY,
	canon_hash    TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	author        TEXT NOT NULL DEFAULT '',
	summary_short TEXT NOT NULL DEFAULT '',
	summary_long  TEXT NOT NULL DEFAULT '',
	genre         TEXT NOT NULL DEFAULT '',
	tone          TEXT NOT NULL DEFAULT '',
	setting       TEXT NOT NULL DEFAULT '',
	themes        TEXT NOT NULL DEFAULT '[]',
	word_count    INTEGER NOT NULL DEFAULT 0,
	chunk_count   INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	status_notes  TEXT NOT NULL DEFAULT '',
	source_count  INTEGER NOT NULL DEFAULT 0,
	text_key      TEXT NOT NULL DEFAULT '',
	chunks_key    TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS story_tags (
	story_id TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
	tag      TEXT NOT NULL,
	PRIMARY KEY (story_id, tag)
);

CREATE TABLE IF NOT EXISTS sources (
	path           TEXT PRIMARY KEY,
	story_id       TEXT NOT NULL,
	raw_hash       TEXT NOT NULL,
	extract_method TEXT NOT NULL,
	ingested_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sources_story ON sources(story_id);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Settings keys.
const (
	settingEmbeddingModel = "embedding_model"
	settingEmbeddingDim   = "embedding_dim"
	settingLastIndexedAt  = "last_indexed_at"
)

// Store is a SQLite-backed RelationalStore.
type Store struct {
	db   *sql.DB
	path string
}

var _ storage.RelationalStore = (*Store)(nil)

// NewStore opens (creating if necessary) the database at dbPath.
// Pass ":memory:" for an ephemeral in-memory database.
func NewStore(dbPath string) (*Store, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		// WAL mode for better concurrency between readers and the writer
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// GetSettings loads the corpus settings. Missing keys yield zero values.
func (s *Store) GetSettings(ctx context.Context) (core.Settings, error) {
	var settings core.Settings

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		switch key {
		case settingEmbeddingModel:
			settings.EmbeddingModel = value
		case settingEmbeddingDim:
			dim, err := strconv.Atoi(value)
			if err != nil {
				return settings, fmt.Errorf("parsing %s: %w", settingEmbeddingDim, err)
			}
			settings.EmbeddingDim = dim
		case settingLastIndexedAt:
			t, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				return settings, fmt.Errorf("parsing %s: %w", settingLastIndexedAt, err)
			}
			settings.LastIndexedAt = t
		}
	}
	return settings, rows.Err()
}

// PutSettings stores the corpus settings.
func (s *Store) PutSettings(ctx context.Context, settings core.Settings) error {
	pairs := map[string]string{
		settingEmbeddingModel: settings.EmbeddingModel,
		settingEmbeddingDim:   strconv.Itoa(settings.EmbeddingDim),
		settingLastIndexedAt:  settings.LastIndexedAt.UTC().Format(time.RFC3339Nano),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range pairs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const storyColumns = `id, canon_hash, title, author, summary_short, summary_long,
	genre, tone, setting, themes, word_count, chunk_count, status, status_notes,
	source_count, text_key, chunks_key, created_at, updated_at`

// GetStory retrieves a story by id. Returns storage.ErrNotFound if absent.
func (s *Store) GetStory(ctx context.Context, id string) (*core.Story, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id = ?`, id)
	return s.scanStory(ctx, row)
}

// GetStoryByCanonHash retrieves a story by canonical hash.
// Returns storage.ErrNotFound if absent.
func (s *Store) GetStoryByCanonHash(ctx context.Context, canonHash string) (*core.Story, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE canon_hash = ?`, canonHash)
	return s.scanStory(ctx, row)
}

func (s *Store) scanStory(ctx context.Context, row *sql.Row) (*core.Story, error) {
	var story core.Story
	var themesJSON, createdAt, updatedAt, status string

	err := row.Scan(
		&story.ID, &story.CanonHash, &story.Title, &story.Author,
		&story.SummaryShort, &story.SummaryLong,
		&story.Genre, &story.Tone, &story.Setting, &themesJSON,
		&story.WordCount, &story.ChunkCount, &status, &story.StatusNotes,
		&story.SourceCount, &story.TextKey, &story.ChunksKey,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	story.Status = core.QualityStatus(status)
	if err := json.Unmarshal([]byte(themesJSON), &story.Themes); err != nil {
		return nil, fmt.Errorf("parsing themes: %w", err)
	}
	if story.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if story.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT tag FROM story_tags WHERE story_id = ? ORDER BY tag`, story.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		story.Tags = append(story.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &story, nil
}

// UpsertStory inserts or updates a story keyed by id. The tag set is
// replaced to match story.Tags.
func (s *Store) UpsertStory(ctx context.Context, story *core.Story) error {
	if err := story.Validate(); err != nil {
		return err
	}

	themes := story.Themes
	if themes == nil {
		themes = []string{}
	}
	themesJSON, err := json.Marshal(themes)
	if err != nil {
		return fmt.Errorf("encoding themes: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stories (`+storyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			canon_hash = excluded.canon_hash,
			title = excluded.title,
			author = excluded.author,
			summary_short = excluded.summary_short,
			summary_long = excluded.summary_long,
			genre = excluded.genre,
			tone = excluded.tone,
			setting = excluded.setting,
			themes = excluded.themes,
			word_count = excluded.word_count,
			chunk_count = excluded.chunk_count,
			status = excluded.status,
			status_notes = excluded.status_notes,
			source_count = excluded.source_count,
			text_key = excluded.text_key,
			chunks_key = excluded.chunks_key,
			updated_at = excluded.updated_at`,
		story.ID, story.CanonHash, story.Title, story.Author,
		story.SummaryShort, story.SummaryLong,
		story.Genre, story.Tone, story.Setting, string(themesJSON),
		story.WordCount, story.ChunkCount, string(story.Status), story.StatusNotes,
		story.SourceCount, story.TextKey, story.ChunksKey,
		story.CreatedAt.UTC().Format(time.RFC3339Nano),
		story.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	if err := replaceTagsTx(ctx, tx, story.ID, story.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteStory removes a story row and its tag associations. Deleting an
// absent story is not an error.
func (s *Store) DeleteStory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM story_tags WHERE story_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM stories WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceTags replaces all tag associations for a story.
func (s *Store) ReplaceTags(ctx context.Context, storyID string, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := replaceTagsTx(ctx, tx, storyID, tags); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceTagsTx(ctx context.Context, tx *sql.Tx, storyID string, tags []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM story_tags WHERE story_id = ?`, storyID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO story_tags (story_id, tag) VALUES (?, ?)`,
			storyID, tag); err != nil {
			return err
		}
	}
	return nil
}

// GetSourceRecord retrieves the record for a path. Returns
// storage.ErrNotFound if the path has never been indexed.
func (s *Store) GetSourceRecord(ctx context.Context, path string) (*core.SourceRecord, error) {
	var record core.SourceRecord
	var ingestedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT path, story_id, raw_hash, extract_method, ingested_at
		 FROM sources WHERE path = ?`, path).
		Scan(&record.Path, &record.StoryID, &record.RawHash,
			&record.ExtractMethod, &ingestedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if record.IngestedAt, err = time.Parse(time.RFC3339Nano, ingestedAt); err != nil {
		return nil, fmt.Errorf("parsing ingested_at: %w", err)
	}
	return &record, nil
}

// UpsertSourceRecord inserts or replaces the record keyed by path.
func (s *Store) UpsertSourceRecord(ctx context.Context, record *core.SourceRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (path, story_id, raw_hash, extract_method, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			story_id = excluded.story_id,
			raw_hash = excluded.raw_hash,
			extract_method = excluded.extract_method,
			ingested_at = excluded.ingested_at`,
		record.Path, record.StoryID, record.RawHash, record.ExtractMethod,
		record.IngestedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// CountSources counts source records currently mapped to a story.
func (s *Store) CountSources(ctx context.Context, storyID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sources WHERE story_id = ?`, storyID).Scan(&count)
	return count, err
}

// RefreshSourceCount recomputes a story's source count from its mapped
// source records, stores it, and returns the new value.
func (s *Store) RefreshSourceCount(ctx context.Context, storyID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sources WHERE story_id = ?`, storyID).Scan(&count)
	if err != nil {
		return 0, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE stories SET source_count = ? WHERE id = ?`, count, storyID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// StatusCounts returns the number of stories per quality status.
func (s *Store) StatusCounts(ctx context.Context) (map[core.QualityStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM stories GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[core.QualityStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[core.QualityStatus(status)] = count
	}
	return counts, rows.Err()
}

// CountStories returns the total number of stories.
func (s *Store) CountStories(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stories`).Scan(&count)
	return count, err
}

// CountAllSources returns the total number of source records.
func (s *Store) CountAllSources(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sources`).Scan(&count)
	return count, err
}
