// Package ingest is the run controller and persistence orchestrator.
//
// One Run walks an input directory, skips unchanged files in incremental
// mode, and drives each remaining file through a strict stage sequence:
// extract, canonicalize, hash, dedup-resolve, classify, enrich, chunk,
// embed, persist. Duplicate canonical texts attach as additional sources
// of the existing story instead of re-running the pipeline. Every run
// ends with a written report, partial runs included.
//
// The settings gate runs first: a stored embedding model or
// dimensionality differing from the current run's aborts before any file
// is touched, preventing silent mixing of incompatible embedding spaces.
package ingest
