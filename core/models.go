package core

import "time"

// QualityStatus describes the extraction confidence for a source file.
// Exactly one status is assigned per file by the classifier.
type QualityStatus string

const (
	// StatusOK indicates clean extraction with plausible text.
	StatusOK QualityStatus = "OK"
	// StatusTooShort indicates the canonical text is below the configured minimum.
	StatusTooShort QualityStatus = "TOO_SHORT"
	// StatusNeedsReview indicates extracted text implausibly small for the file size.
	StatusNeedsReview QualityStatus = "NEEDS_REVIEW"
	// StatusPDFScannedImage indicates a PDF that is likely a scanned image (no OCR performed).
	StatusPDFScannedImage QualityStatus = "PDF_SCANNED_IMAGE"
	// StatusBinaryGarbage indicates extracted text dominated by control/replacement characters.
	StatusBinaryGarbage QualityStatus = "BINARY_GARBAGE"
	// StatusExtractionFailed indicates every extraction strategy failed.
	StatusExtractionFailed QualityStatus = "EXTRACTION_FAILED"
)

// SuppressesEnrichment reports whether metadata enrichment is skipped for
// this status.
func (s QualityStatus) SuppressesEnrichment() bool {
	switch s {
	case StatusExtractionFailed, StatusBinaryGarbage, StatusPDFScannedImage:
		return true
	}
	return false
}

// SuppressesEmbedding reports whether embedding generation is skipped.
// Everything that suppresses enrichment does, plus TOO_SHORT: a below-minimum
// text still gets its canonical form, chunks, and story row, but no vectors.
func (s QualityStatus) SuppressesEmbedding() bool {
	return s == StatusTooShort || s.SuppressesEnrichment()
}

// SuppressesChunking reports whether canonical upload and chunking are skipped.
// Only a total extraction failure leaves nothing worth persisting.
func (s QualityStatus) SuppressesChunking() bool {
	return s == StatusExtractionFailed
}

// Story is the persisted canonical record for one unique normalized text.
// Its identity is content-addressed: exactly one Story exists per canonical hash.
type Story struct {
	ID           string
	CanonHash    string
	Title        string
	Author       string // empty when unknown
	SummaryShort string
	SummaryLong  string
	Genre        string
	Tone         string
	Setting      string
	Themes       []string
	Tags         []string
	WordCount    int
	ChunkCount   int
	Status       QualityStatus
	StatusNotes  string
	SourceCount  int
	TextKey      string // object store key for canonical text
	ChunksKey    string // object store key for the chunk map
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SourceRecord joins a source file path to its Story.
// A path has at most one record; it is replaced when the path's
// canonical identity changes, never accumulated.
type SourceRecord struct {
	Path          string
	StoryID       string
	RawHash       string
	ExtractMethod string
	IngestedAt    time.Time
}

// Chunk is a contiguous, possibly overlapping slice of canonical text.
// Offsets are rune positions; identity is (storyID, Index).
type Chunk struct {
	Index     int    `json:"index"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
	Text      string `json:"text"`
	Excerpt   string `json:"excerpt"`
}

// ChunkMap is the persisted set of chunks for one story, stored as JSON
// in the object store alongside the canonical text.
type ChunkMap struct {
	StoryID string  `json:"story_id"`
	Chunks  []Chunk `json:"chunks"`
}

// VectorRecord is one chunk embedding destined for the vector index.
// Meta carries light, filterable attributes (genre, tone, title, excerpt, status).
type VectorRecord struct {
	ID         string
	StoryID    string
	ChunkIndex int
	Vector     []float32
	Meta       map[string]string
}

// Settings is the process-wide corpus configuration, loaded once at run
// start and written once after a successful run. A stored embedding
// model/dimensionality differing from the current run's aborts the run
// unless explicitly overridden.
type Settings struct {
	EmbeddingModel string
	EmbeddingDim   int
	LastIndexedAt  time.Time
}

// Matches reports whether the stored settings agree with the given
// model and dimensionality. Unset stored settings match anything.
func (s Settings) Matches(model string, dim int) bool {
	if s.EmbeddingModel == "" && s.EmbeddingDim == 0 {
		return true
	}
	return s.EmbeddingModel == model && s.EmbeddingDim == dim
}
