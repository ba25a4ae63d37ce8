// Package storage defines the persistence interfaces the indexing
// pipeline depends on, plus the binary serialization used by the
// key-value backends.
//
// Three capabilities are separated so tests can substitute in-memory
// fakes independently:
//
//   - RelationalStore: stories, source records, tags, settings
//   - ObjectStore: key-addressed blobs (canonical text, chunk maps, originals)
//   - VectorIndex: upsert-by-id chunk embeddings with per-story deletion
//
// Implementation packages:
//
//   - storage/sqlite: RelationalStore on modernc.org/sqlite
//   - storage/badger: ObjectStore and VectorIndex sharing one BadgerDB backend
package storage
