package badger

import "fmt"

// Key prefixes for the two keyspaces sharing the backend.
const (
	objectPrefix = "obj"
	vectorPrefix = "vec"
)

// makeObjectKey generates the storage key for a blob.
func makeObjectKey(key string) []byte {
	return []byte(fmt.Sprintf("%s:%s", objectPrefix, key))
}

// makeObjectPrefix generates the storage prefix covering every blob
// whose logical key starts with prefix.
func makeObjectPrefix(prefix string) []byte {
	return []byte(fmt.Sprintf("%s:%s", objectPrefix, prefix))
}

// makeVectorKey generates the storage key for a vector record. Vector
// ids embed the story id followed by the zero-padded chunk index, so
// all vectors for a story share a common prefix.
func makeVectorKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorPrefix, id))
}

// makeVectorStoryPrefix generates the storage prefix covering every
// vector belonging to a story.
func makeVectorStoryPrefix(storyID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", vectorPrefix, storyID))
}
