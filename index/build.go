// Copyright 2026 Docent Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/core"
	"github.com/panjf2000/ants/v2"
)

const defaultEmbedBatchSize = 16

// builder holds build configuration.
type builder struct {
	poolSize  int
	batchSize int
	logger    *slog.Logger
}

// BuildOption configures a build.
type BuildOption func(*builder)

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BuildOption {
	return func(b *builder) {
		if size < 1 {
			size = 1
		}
		b.poolSize = size
	}
}

// WithBatchSize sets how many chunks are embedded per model request.
// Default is 16.
func WithBatchSize(size int) BuildOption {
	return func(b *builder) {
		if size < 1 {
			size = 1
		}
		b.batchSize = size
	}
}

// WithBuildLogger sets a custom logger.
// Default is slog.Default().
func WithBuildLogger(logger *slog.Logger) BuildOption {
	return func(b *builder) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// Build embeds the given chunks and persists a new index at path,
// recording the embedding model identity in the manifest.
//
// Embedding runs in parallel across chunk batches; a single batch
// returning vectors of a different width than the rest fails the build
// with ErrDimensionMismatch. Persistence is atomic from the caller's
// view: the new index is staged next to the target path and swapped in
// only once complete, so a previously persisted index stays loadable
// until the swap. The build holds an exclusive lock on the path; a
// concurrent Build against the same path fails with ErrBuildInProgress.
func Build(ctx context.Context, path string, chunks []core.Chunk, embedder ai.Embedder, embeddingModel string, opts ...BuildOption) error {
	if path == "" {
		return errors.New("index path is required")
	}
	if len(chunks) == 0 {
		return ErrNoChunks
	}
	if embedder == nil {
		return errors.New("embedder is required")
	}
	if embeddingModel == "" {
		return errors.New("embedding model identity is required")
	}

	b := &builder{
		poolSize:  max(runtime.NumCPU()/2, 1),
		batchSize: defaultEmbedBatchSize,
		logger:    slog.Default().With("component", "index-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}

	unlock, err := acquireBuildLock(path)
	if err != nil {
		return err
	}
	defer unlock()

	start := time.Now()
	b.logger.Info("embedding chunks", "chunks", len(chunks), "pool", b.poolSize, "batch", b.batchSize)

	vectors, err := b.embedAll(ctx, chunks, embedder)
	if err != nil {
		return err
	}

	dimension := len(vectors[0])
	for i, vector := range vectors {
		if len(vector) != dimension {
			return fmt.Errorf("%w: chunk %d produced %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(vector), dimension)
		}
	}

	b.logger.Info("persisting index", "path", path, "dimension", dimension)
	if err := b.persist(path, chunks, vectors, embeddingModel, dimension); err != nil {
		return err
	}

	b.logger.Info("index build complete", "chunks", len(chunks), "elapsed", time.Since(start))
	return nil
}

// embedAll embeds chunks in parallel batches, preserving chunk order.
func (b *builder) embedAll(ctx context.Context, chunks []core.Chunk, embedder ai.Embedder) ([][]float32, error) {
	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	vectors := make([][]float32, len(chunks))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(chunks); start += b.batchSize {
		end := min(start+b.batchSize, len(chunks))
		batchStart, batchEnd := start, end

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				setErr(ctx.Err())
				return
			}

			texts := make([]string, batchEnd-batchStart)
			for i := batchStart; i < batchEnd; i++ {
				texts[i-batchStart] = chunks[i].Text
			}

			batch, err := embedder.EmbedTexts(ctx, texts)
			if err != nil {
				setErr(err)
				return
			}
			if len(batch) != len(texts) {
				setErr(fmt.Errorf("embedding result mismatch: expected %d, received %d", len(texts), len(batch)))
				return
			}
			for i, vector := range batch {
				vectors[batchStart+i] = vector
			}
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// persist writes chunks and vectors into a staging store, writes the
// manifest last, then atomically swaps the staging directory into place.
func (b *builder) persist(path string, chunks []core.Chunk, vectors [][]float32, embeddingModel string, dimension int) error {
	staging := path + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	db, err := openStore(staging, false)
	if err != nil {
		return err
	}

	wb := db.NewWriteBatch()
	for i := range chunks {
		rec := &record{Chunk: chunks[i], Vector: vectors[i]}
		if err := wb.Set(makeChunkKey(i), marshalRecord(rec)); err != nil {
			wb.Cancel()
			db.Close()
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		db.Close()
		return err
	}

	// The manifest is the commit marker: a store without one is treated
	// as incomplete by Load.
	m := &manifest{
		Version:        formatVersion,
		EmbeddingModel: embeddingModel,
		Dimension:      dimension,
		ChunkCount:     len(chunks),
		BuiltAt:        time.Now().UTC().UnixMicro(),
	}
	err = db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(manifestRecordKey), marshalManifest(m))
	})
	if err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}

	return swapIntoPlace(staging, path)
}

// swapIntoPlace replaces the index at path with the staged build. The
// previous index, if any, remains on disk until the staged one has taken
// its place.
func swapIntoPlace(staging, path string) error {
	previous := path + ".prev"
	hadPrevious := false

	if _, err := os.Stat(path); err == nil {
		if err := os.RemoveAll(previous); err != nil {
			return err
		}
		if err := os.Rename(path, previous); err != nil {
			return err
		}
		hadPrevious = true
	}

	if err := os.Rename(staging, path); err != nil {
		if hadPrevious {
			// Restore the previous index rather than leaving nothing.
			if restoreErr := os.Rename(previous, path); restoreErr != nil {
				return errors.Join(err, restoreErr)
			}
		}
		return err
	}

	if hadPrevious {
		return os.RemoveAll(previous)
	}
	return nil
}

// acquireBuildLock takes the exclusive build lock for an index path.
// The returned function releases it. A lock left behind by a crashed
// build (its recorded pid no longer runs) is reclaimed.
func acquireBuildLock(path string) (func(), error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	lockPath := path + ".lock"
	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		if attempt == 0 && !lockHolderAlive(lockPath) {
			slog.Default().Warn("removing stale build lock", "path", lockPath)
			if err := os.Remove(lockPath); err == nil || os.IsNotExist(err) {
				continue
			}
		}
		return nil, fmt.Errorf("%w: %s (remove the file if no build is running)",
			ErrBuildInProgress, lockPath)
	}
}

// lockHolderAlive reports whether the process recorded in the lock file
// still runs. Unreadable or malformed lock files count as alive so an
// uncertain lock is never stolen.
func lockHolderAlive(lockPath string) bool {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return true
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return true
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
