package storage

import (
	"context"

	"github.com/jshaughn618/story-search/core"
)

// RelationalStore persists stories, source records, tag associations, and
// corpus settings. Implementations must use parameterized statements and
// upsert-on-conflict semantics keyed by story id and source path.
type RelationalStore interface {
	// GetSettings loads the corpus settings. Missing keys yield zero values.
	GetSettings(ctx context.Context) (core.Settings, error)

	// PutSettings stores the corpus settings.
	PutSettings(ctx context.Context, settings core.Settings) error

	// GetStory retrieves a story by id. Returns ErrNotFound if absent.
	GetStory(ctx context.Context, id string) (*core.Story, error)

	// GetStoryByCanonHash retrieves a story by canonical hash.
	// Returns ErrNotFound if absent.
	GetStoryByCanonHash(ctx context.Context, canonHash string) (*core.Story, error)

	// UpsertStory inserts or updates a story keyed by id.
	UpsertStory(ctx context.Context, story *core.Story) error

	// DeleteStory removes a story row and its tag associations.
	DeleteStory(ctx context.Context, id string) error

	// ReplaceTags replaces all tag associations for a story.
	ReplaceTags(ctx context.Context, storyID string, tags []string) error

	// GetSourceRecord retrieves the record for a path. Returns ErrNotFound
	// if the path has never been indexed.
	GetSourceRecord(ctx context.Context, path string) (*core.SourceRecord, error)

	// UpsertSourceRecord inserts or replaces the record keyed by path.
	UpsertSourceRecord(ctx context.Context, record *core.SourceRecord) error

	// CountSources counts source records currently mapped to a story.
	CountSources(ctx context.Context, storyID string) (int, error)

	// RefreshSourceCount recomputes a story's SOURCE_COUNT from its mapped
	// source records, stores it, and returns the new value.
	RefreshSourceCount(ctx context.Context, storyID string) (int, error)

	// StatusCounts returns the number of stories per quality status.
	StatusCounts(ctx context.Context) (map[core.QualityStatus]int, error)

	// CountStories returns the total number of stories.
	CountStories(ctx context.Context) (int, error)

	// CountAllSources returns the total number of source records.
	CountAllSources(ctx context.Context) (int, error)

	// Close releases the store.
	Close() error
}

// ObjectStore is key-addressed blob storage for canonical text, chunk
// maps, and archived originals.
type ObjectStore interface {
	// Put stores a blob under the key, replacing any existing value.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves a blob. Returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a blob. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every blob whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Close releases the store.
	Close() error
}

// VectorIndex is upsert-by-id storage for chunk embeddings with
// deletion by id or by story.
type VectorIndex interface {
	// Upsert inserts or replaces vector records keyed by their IDs.
	Upsert(ctx context.Context, records []core.VectorRecord) error

	// DeleteByStory removes every vector belonging to a story.
	DeleteByStory(ctx context.Context, storyID string) error

	// DeleteByID removes specific vectors. Absent ids are not an error.
	DeleteByID(ctx context.Context, ids ...string) error

	// CountByStory counts the vectors currently stored for a story.
	CountByStory(ctx context.Context, storyID string) (int, error)

	// Close releases the index.
	Close() error
}
