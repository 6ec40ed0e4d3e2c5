package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/docentlabs/docent/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildValidation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	path := filepath.Join(t.TempDir(), "storage")

	t.Run("empty chunk set", func(t *testing.T) {
		err := Build(context.Background(), path, nil, embedder, "mock-embedder")
		assert.ErrorIs(t, err, ErrNoChunks)
	})

	t.Run("missing path", func(t *testing.T) {
		err := Build(context.Background(), "", testChunks(), embedder, "mock-embedder")
		assert.Error(t, err)
	})

	t.Run("missing embedder", func(t *testing.T) {
		err := Build(context.Background(), path, testChunks(), nil, "mock-embedder")
		assert.Error(t, err)
	})

	t.Run("missing model identity", func(t *testing.T) {
		err := Build(context.Background(), path, testChunks(), embedder, "")
		assert.Error(t, err)
	})
}

func TestBuildLockContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")

	// A lock held by a live process blocks the build.
	require.NoError(t, os.WriteFile(path+".lock", []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644))

	err := Build(context.Background(), path, testChunks(), mock.NewMockEmbedder(), "mock-embedder")
	assert.ErrorIs(t, err, ErrBuildInProgress)

	// Once the lock is gone the build succeeds and releases its own lock.
	require.NoError(t, os.Remove(path+".lock"))
	require.NoError(t, Build(context.Background(), path, testChunks(), mock.NewMockEmbedder(), "mock-embedder"))
	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestBuildReclaimsStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")

	// A lock whose recorded pid no longer runs must not block forever.
	// Linux pids stop well below this value.
	require.NoError(t, os.WriteFile(path+".lock", []byte("1073741824\n"), 0644))

	require.NoError(t, Build(context.Background(), path, testChunks(), mock.NewMockEmbedder(), "mock-embedder"))

	idx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestBuildKeepsUnreadableLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")

	// A lock file without a parseable pid is never stolen.
	require.NoError(t, os.WriteFile(path+".lock", []byte("not a pid"), 0644))

	err := Build(context.Background(), path, testChunks(), mock.NewMockEmbedder(), "mock-embedder")
	assert.ErrorIs(t, err, ErrBuildInProgress)
}

func TestBuildDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")

	// Each batch embeds at a different width.
	dims := []int{8, 12, 8}
	var call int
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		dim := dims[call%len(dims)]
		call++
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.DeterministicVector(text, dim)
		}
		return vectors, nil
	}

	err := Build(context.Background(), path, testChunks(), embedder, "mock-embedder",
		WithBatchSize(1), WithPoolSize(1))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	// Nothing was committed.
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildResultCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{mock.DeterministicVector("only one", 8)}, nil
	}

	err := Build(context.Background(), path, testChunks(), embedder, "mock-embedder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding result mismatch")
}

func TestBuildFailureKeepsPreviousIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")
	require.NoError(t, Build(context.Background(), path, testChunks(), mock.NewMockEmbedder(), "mock-embedder"))

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model offline")
	}

	err := Build(context.Background(), path, testChunks(), embedder, "mock-embedder")
	require.Error(t, err)

	// The failed rebuild must not disturb the committed index.
	idx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, "mock-embedder", idx.EmbeddingModel())
}

func TestBuildReplacesPreviousIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")
	chunks := testChunks()

	require.NoError(t, Build(context.Background(), path, chunks, mock.NewMockEmbedder(), "mock-embedder"))
	require.NoError(t, Build(context.Background(), path, chunks[:1], mock.NewMockEmbedder(), "mock-embedder"))

	idx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	// Neither staging nor the previous generation is left behind.
	_, err = os.Stat(path + ".staging")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".prev")
	assert.True(t, os.IsNotExist(err))
}

func TestBuildCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Build(ctx, path, testChunks(), mock.NewMockEmbedder(), "mock-embedder")
	assert.ErrorIs(t, err, context.Canceled)
}
