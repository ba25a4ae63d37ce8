package core

import (
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// RawHash computes the content hash of original file bytes using BLAKE2b-256.
// It is the change-detection key for incremental reprocessing.
func RawHash(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonHash computes the content-addressed identity of canonical text
// using BLAKE2b-128. Two source files with identical canonical text share
// this hash regardless of path or original format.
func CanonHash(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// StoryIDFromCanonHash derives the story identifier for a canonical hash.
// The derivation is deterministic so re-runs resolve to the same Story.
func StoryIDFromCanonHash(canonHash string) string {
	return canonHash
}

// VectorID formats the vector index identifier for one chunk.
// The chunk index is zero-padded to 5 digits so IDs sort lexicographically.
func VectorID(storyID string, chunkIndex int) string {
	return fmt.Sprintf("%s:%05d", storyID, chunkIndex)
}

// TextObjectKey returns the object store key for a story's canonical text.
func TextObjectKey(storyID string) string {
	return fmt.Sprintf("stories/%s.txt", storyID)
}

// ChunkMapObjectKey returns the object store key for a story's chunk map.
func ChunkMapObjectKey(storyID string) string {
	return fmt.Sprintf("stories/%s.chunks.json", storyID)
}

// OriginalObjectKey returns the object store key for an archived original file.
func OriginalObjectKey(storyID, filename string) string {
	return fmt.Sprintf("sources/original/%s/%s", storyID, filename)
}
