package index

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/docentlabs/docent/core"
)

// Index is a loaded, immutable vector index. Once loaded it lives
// entirely in memory, so any number of concurrent readers may search it;
// corpus changes require an explicit rebuild and reload.
type Index struct {
	path     string
	manifest manifest
	chunks   []core.Chunk
	vectors  [][]float32 // unit-normalized at load
}

// Load reconstructs an index from its persisted store.
//
// Returns ErrNotFound if nothing is persisted at path, and ErrCorrupt if
// the stored data is unreadable, incomplete, or dimension-inconsistent.
func Load(path string) (*Index, error) {
	logger := slog.Default().With("component", "index")

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	db, err := openStore(path, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer db.Close()

	idx := &Index{path: path}
	err = db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(manifestRecordKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: manifest missing, build did not complete", ErrCorrupt)
			}
			return err
		}
		err = item.Value(func(val []byte) error {
			m, err := unmarshalManifest(val)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			idx.manifest = *m
			return nil
		})
		if err != nil {
			return err
		}
		if idx.manifest.Version != formatVersion {
			return fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, idx.manifest.Version)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				rec, err := unmarshalRecord(val)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrCorrupt, err)
				}
				if len(rec.Vector) != idx.manifest.Dimension {
					return fmt.Errorf("%w: chunk %d has %d dimensions, manifest says %d",
						ErrCorrupt, rec.Chunk.Seq, len(rec.Vector), idx.manifest.Dimension)
				}
				idx.chunks = append(idx.chunks, rec.Chunk)
				idx.vectors = append(idx.vectors, normalize(rec.Vector))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(idx.chunks) != idx.manifest.ChunkCount {
		return nil, fmt.Errorf("%w: manifest records %d chunks, store holds %d",
			ErrCorrupt, idx.manifest.ChunkCount, len(idx.chunks))
	}

	logger.Info("index loaded",
		"path", path,
		"chunks", len(idx.chunks),
		"dimension", idx.manifest.Dimension,
		"model", idx.manifest.EmbeddingModel)

	return idx, nil
}

// Search returns the k chunks most similar to the query vector by cosine
// similarity, descending, with ties broken by chunk sequence. The query
// need not be pre-normalized. If fewer than k chunks exist, all of them
// are returned.
//
// Returns ErrInvalidLimit for k <= 0 and ErrDimensionMismatch when the
// query vector does not match the index dimension.
func (idx *Index) Search(query []float32, k int) (core.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, k)
	}
	if len(query) != idx.manifest.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimensionMismatch, len(query), idx.manifest.Dimension)
	}

	unit := normalize(query)

	results := make(core.RetrievalResult, 0, len(idx.chunks))
	for i := range idx.chunks {
		results = append(results, core.ScoredChunk{
			Chunk: idx.chunks[i],
			Score: dotProduct(unit, idx.vectors[i]),
		})
	}

	slices.SortFunc(results, func(a, b core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return a.Chunk.Seq - b.Chunk.Seq
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// EmbeddingModel returns the identity tag of the embedding model the
// index was built with.
func (idx *Index) EmbeddingModel() string {
	return idx.manifest.EmbeddingModel
}

// Dimension returns the vector dimensionality of the index.
func (idx *Index) Dimension() int {
	return idx.manifest.Dimension
}

// Len returns the number of chunks in the index.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Path returns the on-disk location the index was loaded from.
func (idx *Index) Path() string {
	return idx.path
}

// Files returns the distinct source file names in the index, in first-seen
// order, for display surfaces.
func (idx *Index) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for i := range idx.chunks {
		name := idx.chunks[i].FileName()
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}
	return files
}

// String describes the index for logs and error messages.
func (idx *Index) String() string {
	return fmt.Sprintf("index(%s: %d chunks, dim %d, model %s, files [%s])",
		idx.path, len(idx.chunks), idx.manifest.Dimension, idx.manifest.EmbeddingModel,
		strings.Join(idx.Files(), ", "))
}

// normalize returns the unit-length copy of a vector. Zero vectors are
// returned unchanged to keep scores finite.
func normalize(vector []float32) []float32 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return slices.Clone(vector)
	}
	norm := float32(1 / math.Sqrt(sumSquares))
	unit := make([]float32, len(vector))
	for i, v := range vector {
		unit[i] = v * norm
	}
	return unit
}

// dotProduct computes the inner product of two equal-length vectors.
// For unit vectors this is the cosine similarity.
func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
