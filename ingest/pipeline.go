package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/jshaughn618/story-search/ai"
	"github.com/jshaughn618/story-search/canonical"
	"github.com/jshaughn618/story-search/chunk"
	"github.com/jshaughn618/story-search/classify"
	"github.com/jshaughn618/story-search/core"
	"github.com/jshaughn618/story-search/extract"
	"github.com/jshaughn618/story-search/storage"
)

// Default run parameters.
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = 2 * time.Second
	DefaultConcurrency  = 4
	DefaultMaxFileBytes = 64 * 1024 * 1024
)

// Pipeline drives one indexing run: discovery, incremental change
// detection, the per-file stage sequence, and consistency-checked
// persistence across the three stores.
type Pipeline struct {
	relational storage.RelationalStore
	objects    storage.ObjectStore
	vectors    storage.VectorIndex
	provider   ai.Provider
	logger     *slog.Logger

	splitter   *chunk.Splitter
	thresholds classify.Thresholds
	batcher    *vectorBatcher

	fullReprocess    bool
	allowModelChange bool
	maxRetries       int
	retryDelay       time.Duration
	concurrency      int
	maxFileBytes     int64
	reportsDir       string
	profile          bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFullReprocess forces the complete stage sequence even for files and
// canonical texts already indexed.
func WithFullReprocess(full bool) Option {
	return func(p *Pipeline) { p.fullReprocess = full }
}

// WithAllowModelChange permits a run whose embedding model or
// dimensionality differs from the stored corpus settings.
func WithAllowModelChange(allow bool) Option {
	return func(p *Pipeline) { p.allowModelChange = allow }
}

// WithChunking overrides the chunk target size and overlap.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) {
		p.splitter = chunk.New(chunk.WithSize(size), chunk.WithOverlap(overlap))
	}
}

// WithThresholds overrides the classifier boundaries.
func WithThresholds(th classify.Thresholds) Option {
	return func(p *Pipeline) { p.thresholds = th }
}

// WithRetry overrides the retry policy for embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) {
		if maxAttempts > 0 {
			p.maxRetries = maxAttempts
		}
		if baseDelay > 0 {
			p.retryDelay = baseDelay
		}
	}
}

// WithConcurrency bounds the raw-hash prefetch pool.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithMaxFileBytes bounds the size of files picked up by discovery.
func WithMaxFileBytes(n int64) Option {
	return func(p *Pipeline) { p.maxFileBytes = n }
}

// WithReportsDir sets where run reports are written. Empty disables
// report files; the summary is still logged.
func WithReportsDir(dir string) Option {
	return func(p *Pipeline) { p.reportsDir = dir }
}

// WithProfiling enables the per-stage timing profile in reports.
func WithProfiling(on bool) Option {
	return func(p *Pipeline) { p.profile = on }
}

// WithBatchLimits overrides the vector flush bounds.
func WithBatchLimits(maxRecords, maxBytes int) Option {
	return func(p *Pipeline) {
		p.batcher = newVectorBatcher(p.vectors, maxRecords, maxBytes)
	}
}

// NewPipeline creates a Pipeline over the given stores and AI provider.
func NewPipeline(relational storage.RelationalStore, objects storage.ObjectStore,
	vectors storage.VectorIndex, provider ai.Provider, logger *slog.Logger,
	opts ...Option) *Pipeline {

	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		relational:   relational,
		objects:      objects,
		vectors:      vectors,
		provider:     provider,
		logger:       logger.With("component", "ingest"),
		splitter:     chunk.New(),
		thresholds:   classify.DefaultThresholds(),
		maxRetries:   DefaultMaxRetries,
		retryDelay:   DefaultRetryDelay,
		concurrency:  DefaultConcurrency,
		maxFileBytes: DefaultMaxFileBytes,
	}
	p.batcher = newVectorBatcher(vectors, 0, 0)

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run indexes inputDir. The settings gate runs before any file is
// touched; a partial run still finishes its report.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (*RunReport, error) {
	report := NewRunReport(inputDir)

	model, dim, err := p.checkSettings(ctx)
	if err != nil {
		return report, err
	}

	files, err := Discover(inputDir, p.maxFileBytes, p.logger)
	if err != nil {
		return report, err
	}
	report.Scanned = len(files)
	p.logger.Info("run started", "run_id", report.RunID, "files", len(files),
		"model", model, "dimension", dim, "full", p.fullReprocess)

	prefetched := p.prefetchRawHashes(ctx, files)

	for _, file := range files {
		select {
		case <-ctx.Done():
			report.Finish()
			p.writeReports(report)
			return report, ctx.Err()
		default:
		}

		raw := prefetched[file.Path]
		if !p.fullReprocess && raw != "" {
			record, err := p.relational.GetSourceRecord(ctx, file.Path)
			if err == nil && record.RawHash == raw {
				report.Skipped++
				p.logger.Debug("unchanged, skipping", "path", file.Path)
				continue
			}
		}

		if err := p.processFile(ctx, file, raw, report); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				report.Finish()
				p.writeReports(report)
				return report, err
			}
			report.Failed++
			p.logger.Error("file failed", "path", file.Path, "error", err)
		}
	}

	if err := p.batcher.Flush(ctx); err != nil {
		report.Finish()
		p.writeReports(report)
		return report, fmt.Errorf("flushing vectors: %w", err)
	}

	err = p.relational.PutSettings(ctx, core.Settings{
		EmbeddingModel: model,
		EmbeddingDim:   dim,
		LastIndexedAt:  time.Now().UTC(),
	})
	if err != nil {
		report.Finish()
		p.writeReports(report)
		return report, fmt.Errorf("writing settings: %w", err)
	}

	report.Finish()
	p.writeReports(report)
	p.logger.Info("run finished", "run_id", report.RunID,
		"indexed", report.Indexed, "deduped", report.Deduped,
		"skipped", report.Skipped, "failed", report.Failed,
		"duration_ms", report.DurationMS)
	return report, nil
}

// checkSettings probes the embedding dimensionality and enforces the
// one-model-per-corpus invariant before any file is processed.
func (p *Pipeline) checkSettings(ctx context.Context) (model string, dim int, err error) {
	embedder := p.provider.Embedder()
	model = embedder.Model()

	dim, err = embedder.Dimension(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("probing embedding dimension: %w", err)
	}

	settings, err := p.relational.GetSettings(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("loading settings: %w", err)
	}

	if !settings.Matches(model, dim) {
		if !p.allowModelChange {
			return "", 0, fmt.Errorf(
				"%w: corpus indexed with %s (%d dims), current run uses %s (%d dims); pass --allow-model-change to migrate",
				ErrSettingsMismatch, settings.EmbeddingModel, settings.EmbeddingDim, model, dim)
		}
		p.logger.Warn("embedding settings changed, proceeding on override",
			"stored_model", settings.EmbeddingModel, "stored_dim", settings.EmbeddingDim,
			"model", model, "dim", dim)
	}
	return model, dim, nil
}

// prefetchRawHashes computes raw hashes concurrently for files that have
// an existing source record, so unchanged files can be skipped before
// extraction. In full mode no prefetch is needed.
func (p *Pipeline) prefetchRawHashes(ctx context.Context, files []SourceFile) map[string]string {
	hashes := make(map[string]string)
	if p.fullReprocess {
		return hashes
	}

	var candidates []SourceFile
	for _, file := range files {
		if _, err := p.relational.GetSourceRecord(ctx, file.Path); err == nil {
			candidates = append(candidates, file)
		}
	}
	if len(candidates) == 0 {
		return hashes
	}

	pool, err := ants.NewPool(p.concurrency)
	if err != nil {
		p.logger.Warn("hash pool unavailable, hashing inline", "error", err)
		pool = nil
	} else {
		defer pool.Release()
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, file := range candidates {
		file := file
		job := func() {
			defer wg.Done()
			data, err := os.ReadFile(file.Path)
			if err != nil {
				p.logger.Warn("hash prefetch read failed", "path", file.Path, "error", err)
				return
			}
			hash := core.RawHash(data)
			mu.Lock()
			hashes[file.Path] = hash
			mu.Unlock()
		}

		wg.Add(1)
		if pool != nil {
			if err := pool.Submit(job); err != nil {
				job()
			}
		} else {
			job()
		}
	}
	wg.Wait()
	return hashes
}

// processFile runs the full stage sequence for one file.
func (p *Pipeline) processFile(ctx context.Context, file SourceFile, rawHash string, report *RunReport) error {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if rawHash == "" {
		rawHash = core.RawHash(data)
	}

	stage := p.stageTimer(report)

	result := extract.Decode(data, file.Ext)
	stage("extract")

	canonText := canonical.Canonicalize(result.Text)
	canonHash := core.CanonHash(canonText)
	if result.Failed() {
		// Failed extractions have no canonical text; identity falls back
		// to the original bytes so distinct broken files stay distinct.
		canonHash = core.CanonHash("unextracted:" + rawHash)
	}
	storyID := core.StoryIDFromCanonHash(canonHash)
	stage("canonicalize")

	var prevStoryID string
	if record, err := p.relational.GetSourceRecord(ctx, file.Path); err == nil {
		prevStoryID = record.StoryID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("loading source record: %w", err)
	}

	existing, err := p.relational.GetStoryByCanonHash(ctx, canonHash)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("resolving canonical hash: %w", err)
	}

	// Duplicate attach: the canonical text is already indexed, so this
	// path just becomes another source of the same story.
	if existing != nil && !p.fullReprocess {
		if err := p.attachSource(ctx, file, existing.ID, rawHash, result.Method); err != nil {
			return err
		}
		if err := p.checkOrphan(ctx, prevStoryID, existing.ID); err != nil {
			return err
		}
		report.RecordDuplicate(existing.ID, file.Path)
		p.logger.Debug("duplicate attached", "path", file.Path, "story_id", existing.ID)
		return nil
	}

	status, reason := classify.Classify(classify.Input{
		Ext:           file.Ext,
		FileSize:      file.Size,
		ExtractFailed: result.Failed(),
		ExtractedText: result.Text,
		CanonicalText: canonText,
	}, p.thresholds)
	report.RecordStatus(file.Path, file.Ext, status, reason)
	stage("classify")

	notes := result.Notes
	if reason != "" {
		notes = append(notes, reason)
	}
	if result.Err != nil {
		notes = append(notes, result.Err.Error())
	}

	now := time.Now().UTC()
	story := &core.Story{
		ID:        storyID,
		CanonHash: canonHash,
		WordCount: canonical.WordCount(canonText),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		story.CreatedAt = existing.CreatedAt
	}

	metadata := p.enrich(ctx, file, canonText, status, &notes)
	p.applyMetadata(story, metadata, result.Title, file.Path)
	stage("enrich")

	var chunks []core.Chunk
	if !status.SuppressesChunking() {
		story.TextKey = core.TextObjectKey(storyID)
		story.ChunksKey = core.ChunkMapObjectKey(storyID)

		if err := p.objects.Put(ctx, story.TextKey, []byte(canonText)); err != nil {
			return fmt.Errorf("storing canonical text: %w", err)
		}
		originalKey := core.OriginalObjectKey(storyID, filepath.Base(file.Path))
		if err := p.objects.Put(ctx, originalKey, data); err != nil {
			return fmt.Errorf("archiving original: %w", err)
		}

		chunks = p.splitter.Split(canonText)
		story.ChunkCount = len(chunks)

		chunkMap, err := json.Marshal(core.ChunkMap{StoryID: storyID, Chunks: chunks})
		if err != nil {
			return fmt.Errorf("encoding chunk map: %w", err)
		}
		if err := p.objects.Put(ctx, story.ChunksKey, chunkMap); err != nil {
			return fmt.Errorf("storing chunk map: %w", err)
		}
	}
	stage("chunk")

	var vectors [][]float32
	if !status.SuppressesEmbedding() && len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		err := RetryWithBackoff(ctx, func() error {
			var embedErr error
			vectors, embedErr = p.provider.Embedder().EmbedTexts(ctx, texts)
			return embedErr
		}, p.maxRetries, p.retryDelay)
		if err != nil {
			return fmt.Errorf("embedding chunks: %w", err)
		}
	}
	stage("embed")

	story.StatusNotes = strings.Join(notes, "; ")

	// Reprocessing replaces the story's vector set wholesale so stale
	// chunks never linger in the index.
	if err := p.vectors.DeleteByStory(ctx, storyID); err != nil {
		return fmt.Errorf("clearing stale vectors: %w", err)
	}

	if err := p.relational.UpsertStory(ctx, story); err != nil {
		return fmt.Errorf("upserting story: %w", err)
	}
	if err := p.attachSource(ctx, file, storyID, rawHash, result.Method); err != nil {
		return err
	}

	for i := range vectors {
		rec := core.VectorRecord{
			ID:         core.VectorID(storyID, chunks[i].Index),
			StoryID:    storyID,
			ChunkIndex: chunks[i].Index,
			Vector:     vectors[i],
			Meta: map[string]string{
				"title":   story.Title,
				"genre":   story.Genre,
				"tone":    story.Tone,
				"status":  string(status),
				"excerpt": chunks[i].Excerpt,
			},
		}
		if err := p.batcher.Add(ctx, rec); err != nil {
			return fmt.Errorf("batching vectors: %w", err)
		}
	}

	if err := p.checkOrphan(ctx, prevStoryID, storyID); err != nil {
		return err
	}
	stage("persist")

	report.Indexed++
	p.logger.Debug("indexed", "path", file.Path, "story_id", storyID,
		"status", status, "chunks", len(chunks))
	return nil
}

// enrich calls the metadata service unless the status suppresses it,
// degrading to deterministic fallback metadata with an audit note.
func (p *Pipeline) enrich(ctx context.Context, file SourceFile, canonText string,
	status core.QualityStatus, notes *[]string) *ai.StoryMetadata {

	if status.SuppressesEnrichment() {
		*notes = append(*notes, "metadata: fallback (enrichment suppressed)")
		return fallbackMetadata(file.Path, status)
	}

	var metadata *ai.StoryMetadata
	err := RetryWithBackoff(ctx, func() error {
		var extractErr error
		metadata, extractErr = p.provider.MetadataExtractor().ExtractMetadata(ctx, filepath.Base(file.Path), canonText)
		return extractErr
	}, p.maxRetries, p.retryDelay)
	if err != nil {
		p.logger.Warn("metadata extraction failed, using fallback", "path", file.Path, "error", err)
		*notes = append(*notes, fmt.Sprintf("metadata: fallback (%v)", err))
		return fallbackMetadata(file.Path, status)
	}
	return metadata
}

// applyMetadata copies metadata onto the story, preferring the AI title,
// then a format-carried title, then the filename.
func (p *Pipeline) applyMetadata(story *core.Story, metadata *ai.StoryMetadata, extractedTitle, path string) {
	story.Title = metadata.Title
	if story.Title == "" {
		story.Title = extractedTitle
	}
	if story.Title == "" {
		story.Title = titleFromFilename(path)
	}
	story.Author = metadata.AuthorName()
	story.SummaryShort = metadata.SummaryShort
	story.SummaryLong = metadata.SummaryLong
	story.Genre = metadata.Genre
	story.Tone = metadata.Tone
	story.Setting = metadata.Setting
	story.Themes = metadata.Themes
	story.Tags = metadata.Tags
}

// attachSource records the path→story mapping and refreshes the story's
// source count.
func (p *Pipeline) attachSource(ctx context.Context, file SourceFile, storyID, rawHash, method string) error {
	record := &core.SourceRecord{
		Path:          file.Path,
		StoryID:       storyID,
		RawHash:       rawHash,
		ExtractMethod: method,
		IngestedAt:    time.Now().UTC(),
	}
	if err := p.relational.UpsertSourceRecord(ctx, record); err != nil {
		return fmt.Errorf("upserting source record: %w", err)
	}
	if _, err := p.relational.RefreshSourceCount(ctx, storyID); err != nil {
		return fmt.Errorf("refreshing source count: %w", err)
	}
	return nil
}

// checkOrphan runs after a path's mapping moved from prevStoryID to
// storyID. A story left with zero sources is removed everywhere: row,
// tags, blobs, vectors.
func (p *Pipeline) checkOrphan(ctx context.Context, prevStoryID, storyID string) error {
	if prevStoryID == "" || prevStoryID == storyID {
		return nil
	}

	count, err := p.relational.CountSources(ctx, prevStoryID)
	if err != nil {
		return fmt.Errorf("counting sources for orphan check: %w", err)
	}
	if count > 0 {
		if _, err := p.relational.RefreshSourceCount(ctx, prevStoryID); err != nil {
			return err
		}
		return nil
	}

	p.logger.Info("removing orphaned story", "story_id", prevStoryID)
	if err := p.relational.DeleteStory(ctx, prevStoryID); err != nil {
		return fmt.Errorf("deleting orphaned story: %w", err)
	}
	if err := p.objects.Delete(ctx, core.TextObjectKey(prevStoryID)); err != nil {
		return err
	}
	if err := p.objects.Delete(ctx, core.ChunkMapObjectKey(prevStoryID)); err != nil {
		return err
	}
	if err := p.objects.DeletePrefix(ctx, fmt.Sprintf("sources/original/%s/", prevStoryID)); err != nil {
		return err
	}
	if err := p.vectors.DeleteByStory(ctx, prevStoryID); err != nil {
		return err
	}
	return nil
}

// stageTimer returns a closure recording elapsed time per stage when
// profiling is enabled.
func (p *Pipeline) stageTimer(report *RunReport) func(stage string) {
	if !p.profile {
		return func(string) {}
	}
	last := time.Now()
	return func(stage string) {
		now := time.Now()
		report.RecordStage(stage, now.Sub(last))
		last = now
	}
}

// writeReports persists the report files, logging rather than failing
// when the directory is unwritable.
func (p *Pipeline) writeReports(report *RunReport) {
	if p.reportsDir == "" {
		return
	}
	if err := report.Write(p.reportsDir); err != nil {
		p.logger.Error("writing reports failed", "dir", p.reportsDir, "error", err)
	}
}

// fallbackMetadata derives a deterministic metadata record from the
// filename and status when enrichment is unavailable.
func fallbackMetadata(path string, status core.QualityStatus) *ai.StoryMetadata {
	title := titleFromFilename(path)
	return &ai.StoryMetadata{
		Title:        title,
		SummaryShort: fmt.Sprintf("%s (status: %s, metadata unavailable)", title, status),
	}
}

// titleFromFilename turns "the_old_mill-v2.txt" into "The Old Mill V2".
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}
