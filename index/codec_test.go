package index

import (
	"testing"

	"github.com/docentlabs/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestCodec(t *testing.T) {
	in := &manifest{
		Version:        formatVersion,
		EmbeddingModel: "embeddinggemma",
		Dimension:      768,
		ChunkCount:     42,
		BuiltAt:        1767225600000000,
	}

	out, err := unmarshalManifest(marshalManifest(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = unmarshalManifest([]byte{0x01})
	assert.Error(t, err)
}

func TestRecordCodec(t *testing.T) {
	in := &record{
		Chunk: core.Chunk{
			Id:     core.ChunkID("doc.pdf", 3, 1, "chunk body"),
			File:   "doc.pdf",
			Page:   3,
			Seq:    7,
			Text:   "chunk body",
			PrevId: 11,
			NextId: 13,
		},
		Vector: []float32{0.25, -1.5, 3.0},
	}

	bs := marshalRecord(in)
	out, err := unmarshalRecord(bs)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	t.Run("truncated payload rejected", func(t *testing.T) {
		_, err := unmarshalRecord(bs[:len(bs)-5])
		assert.Error(t, err)
	})

	t.Run("implausible vector length rejected", func(t *testing.T) {
		// Cutting into the float data makes the declared length exceed
		// the remaining bytes.
		_, err := unmarshalRecord(bs[:len(bs)-11])
		assert.Error(t, err)
	})
}
