package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jshaughn618/story-search/core"
)

// RunReport accumulates the outcome of one indexing run and writes the
// summary and detail reports at the end. Partial runs still report.
type RunReport struct {
	RunID      string    `json:"run_id"`
	InputDir   string    `json:"input_dir"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`

	Scanned int `json:"scanned"`
	Indexed int `json:"indexed"`
	Deduped int `json:"deduped"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`

	PerStatus    map[string]int `json:"per_status"`
	PerExtension map[string]int `json:"per_extension"`

	// StageTimings holds cumulative per-stage durations when profiling
	// is enabled.
	StageTimings map[string]time.Duration `json:"-"`

	duplicates  map[string][]string // story id -> contributing paths
	nonOK       [][]string          // path, status, reason
	extractFail [][]string          // path, error
}

// NewRunReport starts a report for one run.
func NewRunReport(inputDir string) *RunReport {
	return &RunReport{
		RunID:        uuid.NewString(),
		InputDir:     inputDir,
		StartedAt:    time.Now().UTC(),
		PerStatus:    make(map[string]int),
		PerExtension: make(map[string]int),
		duplicates:   make(map[string][]string),
	}
}

// RecordStatus tallies a classified file.
func (r *RunReport) RecordStatus(path, ext string, status core.QualityStatus, reason string) {
	r.PerStatus[string(status)]++
	r.PerExtension[ext]++
	if status != core.StatusOK {
		r.nonOK = append(r.nonOK, []string{path, string(status), reason})
	}
	if status == core.StatusExtractionFailed {
		r.extractFail = append(r.extractFail, []string{path, reason})
	}
}

// RecordDuplicate tallies a path that attached to an existing story.
func (r *RunReport) RecordDuplicate(storyID, path string) {
	r.Deduped++
	r.duplicates[storyID] = append(r.duplicates[storyID], path)
}

// RecordStage adds a duration to the timing profile.
func (r *RunReport) RecordStage(stage string, d time.Duration) {
	if r.StageTimings == nil {
		r.StageTimings = make(map[string]time.Duration)
	}
	r.StageTimings[stage] += d
}

// Finish stamps the end of the run.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now().UTC()
	r.DurationMS = r.FinishedAt.Sub(r.StartedAt).Milliseconds()
}

// Write emits the summary JSON and detail CSVs into dir, one subdirectory
// per run id.
func (r *RunReport) Write(dir string) error {
	runDir := filepath.Join(dir, r.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	summary, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(runDir, "summary.json"), summary, 0644); err != nil {
		return err
	}

	if err := r.writeDuplicatesCSV(filepath.Join(runDir, "duplicate_groups.csv")); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(runDir, "non_ok_files.csv"),
		[]string{"path", "status", "reason"}, r.nonOK); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(runDir, "extraction_failures.csv"),
		[]string{"path", "error"}, r.extractFail); err != nil {
		return err
	}

	if r.StageTimings != nil {
		timings := make(map[string]int64, len(r.StageTimings))
		for stage, d := range r.StageTimings {
			timings[stage] = d.Milliseconds()
		}
		data, err := json.MarshalIndent(timings, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(runDir, "timing_profile.json"), data, 0644); err != nil {
			return err
		}
	}

	return nil
}

// writeDuplicatesCSV lists each story that gathered more than one source
// this run, one row per contributing path.
func (r *RunReport) writeDuplicatesCSV(path string) error {
	storyIDs := make([]string, 0, len(r.duplicates))
	for id := range r.duplicates {
		storyIDs = append(storyIDs, id)
	}
	sort.Strings(storyIDs)

	var rows [][]string
	for _, id := range storyIDs {
		for _, p := range r.duplicates[id] {
			rows = append(rows, []string{id, p})
		}
	}
	return writeCSV(path, []string{"story_id", "path"}, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
