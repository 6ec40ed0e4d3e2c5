package corpus

import (
	"fmt"
	"strings"
	"testing"

	"github.com/docentlabs/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniqueWordsPage builds a page of n distinct words so chunk positions in
// the page text are unambiguous.
func uniqueWordsPage(n int) core.Page {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	return core.Page{File: "A.pdf", Number: 1, Text: strings.Join(words, " ")}
}

func TestChunkCoverage(t *testing.T) {
	chunker := NewChunker(120, 30)
	page := uniqueWordsPage(400)

	chunks := chunker.Chunk(page)
	require.NotEmpty(t, chunks)

	// Every chunk is a contiguous substring of the page, the first chunk
	// is a prefix, the last a suffix, and consecutive chunks overlap so
	// the union covers the page with no gaps.
	prevStart, prevEnd := -1, 0
	for i, chunk := range chunks {
		start := strings.Index(page.Text, chunk.Text)
		require.GreaterOrEqual(t, start, 0, "chunk %d not found in page", i)
		end := start + len(chunk.Text)

		if i == 0 {
			assert.Equal(t, 0, start, "first chunk must be a page prefix")
		} else {
			assert.Greater(t, start, prevStart, "chunks must advance")
			assert.LessOrEqual(t, start, prevEnd, "gap between chunks %d and %d", i-1, i)
		}
		prevStart, prevEnd = start, end
	}
	assert.Equal(t, len(page.Text), prevEnd, "last chunk must be a page suffix")
}

func TestChunkOverlapShared(t *testing.T) {
	chunker := NewChunker(120, 30)
	chunks := chunker.Chunk(uniqueWordsPage(400))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		// The next chunk starts with text the previous chunk ends with.
		head := chunks[i].Text[:6]
		assert.Contains(t, chunks[i-1].Text, head,
			"chunk %d does not share its head with chunk %d", i, i-1)
	}
}

func TestChunkDeterminism(t *testing.T) {
	chunker := NewChunker(200, 40)
	page := uniqueWordsPage(300)

	first := chunker.Chunk(page)
	second := chunker.Chunk(page)
	require.Equal(t, len(first), len(second))

	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Seq, second[i].Seq)
	}
}

func TestChunkMetadata(t *testing.T) {
	chunker := NewChunker(100, 20)
	page := core.Page{File: "B.pdf", Number: 7, Text: uniqueWordsPage(100).Text}

	chunks := chunker.Chunk(page)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, "B.pdf", chunk.File)
		assert.Equal(t, 7, chunk.Page)
		assert.Equal(t, i, chunk.Seq)
		assert.NotZero(t, chunk.Id)
	}
}

func TestChunkNeighborLinks(t *testing.T) {
	chunker := NewChunker(100, 20)
	chunks := chunker.Chunk(uniqueWordsPage(200))
	require.Greater(t, len(chunks), 2)

	assert.Zero(t, chunks[0].PrevId)
	assert.Zero(t, chunks[len(chunks)-1].NextId)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].Id, chunks[i].PrevId)
		assert.Equal(t, chunks[i].Id, chunks[i-1].NextId)
	}
}

func TestChunkEmptyPage(t *testing.T) {
	chunker := NewChunker(100, 20)

	assert.Empty(t, chunker.Chunk(core.Page{File: "A.pdf", Number: 1}))
	assert.Empty(t, chunker.Chunk(core.Page{File: "A.pdf", Number: 1, Text: "  \n\t "}))
}

func TestChunkSmallPageSingleChunk(t *testing.T) {
	chunker := NewChunker(1024, 128)
	page := core.Page{File: "A.pdf", Number: 1, Text: "short page text"}

	chunks := chunker.Chunk(page)
	require.Len(t, chunks, 1)
	assert.Equal(t, page.Text, chunks[0].Text)
}

func TestChunkPreservesWhitespace(t *testing.T) {
	chunker := NewChunker(1024, 0)
	page := core.Page{File: "A.pdf", Number: 1, Text: "  leading and\ninternal\t spacing "}

	chunks := chunker.Chunk(page)
	require.Len(t, chunks, 1)
	assert.Equal(t, page.Text, chunks[0].Text)
}

func TestNewChunkerClampsParameters(t *testing.T) {
	// Overlap at or above target size would prevent forward progress.
	chunker := NewChunker(100, 100)
	chunks := chunker.Chunk(uniqueWordsPage(200))
	assert.NotEmpty(t, chunks)

	defaults := NewChunker(0, -1)
	assert.Equal(t, DefaultChunkSize, defaults.targetSize)
	assert.Equal(t, DefaultChunkOverlap, defaults.overlap)
}
