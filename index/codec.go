package index

import (
	"fmt"

	"github.com/docentlabs/docent/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// formatVersion tags the on-disk representation. Load refuses any other
// version rather than guessing at the layout.
const formatVersion uint64 = 1

// manifest records the identity of a persisted index. It is written last
// during a build, so its presence marks the index as complete.
type manifest struct {
	Version        uint64
	EmbeddingModel string
	Dimension      int
	ChunkCount     int
	BuiltAt        int64 // unix microseconds
}

// record is one persisted chunk with its embedding vector.
type record struct {
	Chunk  core.Chunk
	Vector []float32
}

func sizeManifest(m *manifest) int {
	return varint.Uint64.Size(m.Version) +
		ord.String.Size(m.EmbeddingModel) +
		varint.Int.Size(m.Dimension) +
		varint.Int.Size(m.ChunkCount) +
		varint.Int64.Size(m.BuiltAt)
}

func marshalManifest(m *manifest) []byte {
	bs := make([]byte, sizeManifest(m))
	n := varint.Uint64.Marshal(m.Version, bs)
	n += ord.String.Marshal(m.EmbeddingModel, bs[n:])
	n += varint.Int.Marshal(m.Dimension, bs[n:])
	n += varint.Int.Marshal(m.ChunkCount, bs[n:])
	varint.Int64.Marshal(m.BuiltAt, bs[n:])
	return bs
}

func unmarshalManifest(bs []byte) (*manifest, error) {
	var (
		m   manifest
		off int
		n   int
		err error
	)
	if m.Version, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return nil, fmt.Errorf("manifest version: %w", err)
	}
	off += n
	if m.EmbeddingModel, n, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("manifest model: %w", err)
	}
	off += n
	if m.Dimension, n, err = varint.Int.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("manifest dimension: %w", err)
	}
	off += n
	if m.ChunkCount, n, err = varint.Int.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("manifest chunk count: %w", err)
	}
	off += n
	if m.BuiltAt, _, err = varint.Int64.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("manifest built at: %w", err)
	}
	return &m, nil
}

func sizeRecord(r *record) int {
	size := varint.Uint64.Size(uint64(r.Chunk.Id)) +
		ord.String.Size(r.Chunk.File) +
		varint.Int.Size(r.Chunk.Page) +
		varint.Int.Size(r.Chunk.Seq) +
		varint.Uint64.Size(uint64(r.Chunk.PrevId)) +
		varint.Uint64.Size(uint64(r.Chunk.NextId)) +
		ord.String.Size(r.Chunk.Text) +
		varint.Int.Size(len(r.Vector))
	size += len(r.Vector) * raw.Float32.Size(0)
	return size
}

func marshalRecord(r *record) []byte {
	bs := make([]byte, sizeRecord(r))
	n := varint.Uint64.Marshal(uint64(r.Chunk.Id), bs)
	n += ord.String.Marshal(r.Chunk.File, bs[n:])
	n += varint.Int.Marshal(r.Chunk.Page, bs[n:])
	n += varint.Int.Marshal(r.Chunk.Seq, bs[n:])
	n += varint.Uint64.Marshal(uint64(r.Chunk.PrevId), bs[n:])
	n += varint.Uint64.Marshal(uint64(r.Chunk.NextId), bs[n:])
	n += ord.String.Marshal(r.Chunk.Text, bs[n:])
	n += varint.Int.Marshal(len(r.Vector), bs[n:])
	for _, v := range r.Vector {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	return bs
}

func unmarshalRecord(bs []byte) (*record, error) {
	var (
		r   record
		off int
		n   int
		err error
	)
	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("record id: %w", err)
	}
	r.Chunk.Id = core.ID(id)
	off += n
	if r.Chunk.File, n, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("record file: %w", err)
	}
	off += n
	if r.Chunk.Page, n, err = varint.Int.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("record page: %w", err)
	}
	off += n
	if r.Chunk.Seq, n, err = varint.Int.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("record seq: %w", err)
	}
	off += n
	if id, n, err = varint.Uint64.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("record prev id: %w", err)
	}
	r.Chunk.PrevId = core.ID(id)
	off += n
	if id, n, err = varint.Uint64.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("record next id: %w", err)
	}
	r.Chunk.NextId = core.ID(id)
	off += n
	if r.Chunk.Text, n, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return nil, fmt.Errorf("record text: %w", err)
	}
	off += n
	length, n, err := varint.Int.Unmarshal(bs[off:])
	if err != nil {
		return nil, fmt.Errorf("record vector length: %w", err)
	}
	off += n
	if length < 0 || length > (len(bs)-off)/4 {
		return nil, fmt.Errorf("record vector length %d exceeds payload", length)
	}
	r.Vector = make([]float32, length)
	for i := 0; i < length; i++ {
		if r.Vector[i], n, err = raw.Float32.Unmarshal(bs[off:]); err != nil {
			return nil, fmt.Errorf("record vector element %d: %w", i, err)
		}
		off += n
	}
	return &r, nil
}
