package core

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Chunk IDs are content-hashed so that rebuilding an index over an
// unchanged corpus yields identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Page is a single page of a source document, the unit produced by the
// corpus loader. Pages are immutable once loaded.
type Page struct {
	File   string // source file name, without directory
	Number int    // 1-based page number within the file
	Text   string
}

// Chunk is a bounded contiguous span of one page's text, the unit of
// embedding and retrieval.
type Chunk struct {
	Id   ID
	File string // source file name ("" renders as "Unknown")
	Page int    // 1-based page number (0 renders as "?")
	Seq  int    // build-order position across the whole corpus
	Text string

	// Overlap-adjacent neighbors within the same page. Informational
	// only; zero when there is no neighbor.
	PrevId ID
	NextId ID
}

// ChunkID derives the stable, content-based ID for a chunk.
func ChunkID(file string, page, seq int, text string) ID {
	return IDFromContent(fmt.Sprintf("%s\x00%d\x00%d\x00%s", file, page, seq, text))
}

// FileName returns the chunk's source file name, or "Unknown" when the
// loader could not determine one.
func (c *Chunk) FileName() string {
	if c.File == "" {
		return "Unknown"
	}
	return c.File
}

// PageLabel returns the chunk's page number as a display label, or "?"
// when the page is unknown.
func (c *Chunk) PageLabel() string {
	if c.Page <= 0 {
		return "?"
	}
	return strconv.Itoa(c.Page)
}

// Speaker identifies the source of a conversation turn.
type Speaker int

const (
	// SpeakerHuman represents the human user.
	SpeakerHuman Speaker = iota + 1
	// SpeakerAssistant represents the assistant.
	SpeakerAssistant
)

// Citation identifies the provenance of a generated answer: the source
// file, its page label, and a bounded excerpt of the passage text.
type Citation struct {
	File    string
	Page    string
	Excerpt string
}

// Turn is a single message in a conversation. Assistant turns carry the
// citations for the passages the answer was grounded in.
type Turn struct {
	Speaker   Speaker
	Text      string
	Citations []Citation
	At        time.Time
}

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// RetrievalResult is an ordered sequence of scored chunks, descending by
// similarity, ties broken by chunk sequence for determinism.
type RetrievalResult []ScoredChunk
