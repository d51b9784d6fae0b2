// Package indexer coordinates the end-to-end indexing pipeline for source
// directories.
//
// The indexer discovers supported files, runs each through the segmentation
// engine, and persists the resulting chunks, managing concurrency and error
// handling along the way.
//
// # Basic Usage
//
//	idx := indexer.New(seg, store, logger)
//
//	stats, err := idx.IndexDirectory(ctx, "/path/to/project", &indexer.Config{
//	    Workers:    8,
//	    SkipHidden: true,
//	})
//
//	fmt.Printf("Indexed %d files in %v\n", stats.FilesIndexed, stats.Duration)
//
// # Incremental Indexing
//
// By default only changed files are re-segmented. Change detection uses
// SHA-256 content hashing against the stored file row:
//
//	currentHash := types.HashContent(fileContent)
//	if stored.ContentHash == currentHash {
//	    skip(file) // unchanged
//	}
//
// Force a full rebuild with Config.ForceReindex.
//
// # Concurrent Processing
//
// Files are processed by a bounded worker pool (default runtime.NumCPU()
// workers) with a semaphore limiting in-flight work. Per-file failures are
// collected into Statistics.ErrorMessages and never abort the run; only a
// canceled context stops it early.
package indexer
