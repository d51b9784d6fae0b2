package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/internal/segmenter"
	"github.com/dshills/codechunk-mcp/internal/store"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

// Indexer coordinates the indexing pipeline: discover -> segment -> store.
type Indexer struct {
	segmenter *segmenter.Segmenter
	store     store.Store
	logger    *log.Logger

	workers int
}

// Config contains configuration for one indexing run.
type Config struct {
	Workers      int   // Number of concurrent workers (default: runtime.NumCPU())
	MaxFileSize  int64 // Files over this many bytes are skipped (default: 1 MiB)
	SkipHidden   bool  // Skip dot-directories and dot-files
	ForceReindex bool  // Ignore stored hashes and re-segment everything
}

// Statistics summarizes one indexing run.
type Statistics struct {
	FilesIndexed  int
	FilesSkipped  int
	FilesFailed   int
	ChunksCreated int
	Duration      time.Duration
	ErrorMessages []string
}

// New creates an Indexer.
func New(seg *segmenter.Segmenter, st store.Store, logger *log.Logger) *Indexer {
	return &Indexer{
		segmenter: seg,
		store:     st,
		logger:    logger.With("component", "indexer"),
		workers:   runtime.NumCPU(),
	}
}

// IndexDirectory segments every supported file under rootPath and persists
// the results. Unchanged files (same content hash) are skipped unless the
// config forces a full rebuild. Per-file failures are recorded and do not
// abort the run.
func (idx *Indexer) IndexDirectory(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{SkipHidden: true}
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = 1 << 20
	}
	idx.workers = config.Workers

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	files, err := idx.discoverFiles(rootPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	if err := idx.indexFiles(ctx, files, config, stats); err != nil {
		return nil, fmt.Errorf("failed to index files: %w", err)
	}

	stats.Duration = time.Since(startTime)
	idx.logger.Info("indexing complete",
		"root", rootPath,
		"indexed", stats.FilesIndexed,
		"skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed,
		"chunks", stats.ChunksCreated,
		"duration", stats.Duration)
	return stats, nil
}

// discoverFiles finds segmentable files under rootPath.
func (idx *Indexer) discoverFiles(rootPath string, config *Config) ([]string, error) {
	var files []string

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		name := info.Name()
		if info.IsDir() {
			if config.SkipHidden && strings.HasPrefix(name, ".") && path != rootPath {
				return filepath.SkipDir
			}
			if name == "vendor" || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}

		if config.SkipHidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if info.Size() > config.MaxFileSize {
			return nil
		}
		if !parser.IsSupportedFile(path) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// indexFiles processes files concurrently with a bounded worker pool.
func (idx *Indexer) indexFiles(ctx context.Context, files []string, config *Config, stats *Statistics) error {
	semaphore := make(chan struct{}, idx.workers)

	var (
		indexed int32
		skipped int32
		failed  int32
		chunks  int32
	)

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex // Protects stats.ErrorMessages

	for _, filePath := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			err := idx.indexFile(gctx, filePath, config, &indexed, &skipped, &chunks)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
				mu.Unlock()
				idx.logger.Warn("file failed", "file", filePath, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	stats.FilesIndexed = int(indexed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.ChunksCreated = int(chunks)
	return nil
}

// indexFile segments one file and persists its chunks.
func (idx *Indexer) indexFile(ctx context.Context, filePath string, config *Config,
	indexed, skipped, chunks *int32) error {

	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	text := string(content)
	hash := types.HashContent(text)
	language := parser.DetectLanguage(filePath)

	if !config.ForceReindex {
		existing, err := idx.store.GetFile(ctx, filePath)
		if err == nil && existing.ContentHash == hash {
			atomic.AddInt32(skipped, 1)
			return nil
		}
		if err != nil && err != store.ErrNotFound {
			return err
		}
	}

	fileChunks := idx.segmenter.Split(ctx, text, filePath, language)

	fallback := false
	for i := range fileChunks {
		if fileChunks[i].Fallback {
			fallback = true
			break
		}
	}

	file := &store.File{
		FilePath:    filePath,
		Language:    language,
		ContentHash: hash,
		SizeBytes:   info.Size(),
		ModTime:     info.ModTime(),
		ChunkCount:  len(fileChunks),
		Fallback:    fallback,
	}
	if err := idx.store.UpsertFile(ctx, file); err != nil {
		return err
	}
	if err := idx.store.ReplaceChunks(ctx, file.ID, fileChunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	atomic.AddInt32(indexed, 1)
	atomic.AddInt32(chunks, int32(len(fileChunks)))
	return nil
}
