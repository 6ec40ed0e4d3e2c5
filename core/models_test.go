package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("the definition of a martingale")
		b := IDFromContent("the definition of a martingale")
		assert.Equal(t, a, b)
	})

	t.Run("distinct content distinct ids", func(t *testing.T) {
		a := IDFromContent("risk models")
		b := IDFromContent("martingales")
		assert.NotEqual(t, a, b)
	})

	t.Run("empty content is valid", func(t *testing.T) {
		assert.NotPanics(t, func() { IDFromContent("") })
	})
}

func TestChunkID(t *testing.T) {
	t.Run("stable across calls", func(t *testing.T) {
		a := ChunkID("A.pdf", 2, 7, "ito calculus")
		b := ChunkID("A.pdf", 2, 7, "ito calculus")
		assert.Equal(t, a, b)
	})

	t.Run("sensitive to position", func(t *testing.T) {
		a := ChunkID("A.pdf", 2, 7, "ito calculus")
		b := ChunkID("A.pdf", 2, 8, "ito calculus")
		assert.NotEqual(t, a, b)
	})

	t.Run("sensitive to source file", func(t *testing.T) {
		a := ChunkID("A.pdf", 1, 0, "ito calculus")
		b := ChunkID("B.pdf", 1, 0, "ito calculus")
		assert.NotEqual(t, a, b)
	})
}

func TestChunkLabels(t *testing.T) {
	t.Run("known metadata", func(t *testing.T) {
		c := Chunk{File: "notes.pdf", Page: 12}
		assert.Equal(t, "notes.pdf", c.FileName())
		assert.Equal(t, "12", c.PageLabel())
	})

	t.Run("missing metadata falls back to defaults", func(t *testing.T) {
		c := Chunk{}
		assert.Equal(t, "Unknown", c.FileName())
		assert.Equal(t, "?", c.PageLabel())
	})
}
