package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/jshaughn618/story-search/core"
)

// Vector records are stored in the index backend in MUS format: a compact
// binary encoding with explicit, hand-written field order. The layout is
// id, storyID, chunkIndex, vector (length-prefixed float32s), meta
// (length-prefixed string pairs).

// MarshalVectorRecord serializes a VectorRecord to bytes.
func MarshalVectorRecord(rec *core.VectorRecord) []byte {
	size := ord.String.Size(rec.ID) +
		ord.String.Size(rec.StoryID) +
		varint.Int.Size(rec.ChunkIndex) +
		varint.Int.Size(len(rec.Vector)) +
		varint.Int.Size(len(rec.Meta))
	for _, v := range rec.Vector {
		size += raw.Float32.Size(v)
	}
	for k, v := range rec.Meta {
		size += ord.String.Size(k) + ord.String.Size(v)
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(rec.ID, buf)
	n += ord.String.Marshal(rec.StoryID, buf[n:])
	n += varint.Int.Marshal(rec.ChunkIndex, buf[n:])
	n += varint.Int.Marshal(len(rec.Vector), buf[n:])
	for _, v := range rec.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	n += varint.Int.Marshal(len(rec.Meta), buf[n:])
	for k, v := range rec.Meta {
		n += ord.String.Marshal(k, buf[n:])
		n += ord.String.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalVectorRecord deserializes a VectorRecord from bytes.
func UnmarshalVectorRecord(data []byte) (*core.VectorRecord, error) {
	var rec core.VectorRecord
	var off int

	id, n, err := ord.String.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	off += n
	rec.ID = id

	storyID, n, err := ord.String.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: story id: %w", ErrSerializationFailed, err)
	}
	off += n
	rec.StoryID = storyID

	chunkIndex, n, err := varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk index: %w", ErrSerializationFailed, err)
	}
	off += n
	rec.ChunkIndex = chunkIndex

	vecLen, n, err := varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector length: %w", ErrSerializationFailed, err)
	}
	off += n
	if vecLen < 0 {
		return nil, fmt.Errorf("%w: negative vector length", ErrSerializationFailed)
	}
	rec.Vector = make([]float32, vecLen)
	for i := 0; i < vecLen; i++ {
		v, n, err := raw.Float32.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: vector[%d]: %w", ErrSerializationFailed, i, err)
		}
		off += n
		rec.Vector[i] = v
	}

	metaLen, n, err := varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: meta length: %w", ErrSerializationFailed, err)
	}
	off += n
	if metaLen > 0 {
		rec.Meta = make(map[string]string, metaLen)
		for i := 0; i < metaLen; i++ {
			k, n, err := ord.String.Unmarshal(data[off:])
			if err != nil {
				return nil, fmt.Errorf("%w: meta key: %w", ErrSerializationFailed, err)
			}
			off += n
			v, n, err := ord.String.Unmarshal(data[off:])
			if err != nil {
				return nil, fmt.Errorf("%w: meta value: %w", ErrSerializationFailed, err)
			}
			off += n
			rec.Meta[k] = v
		}
	}

	return &rec, nil
}
