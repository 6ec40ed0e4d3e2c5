package corpus

import "github.com/docentlabs/docent/core"

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1024
	// DefaultChunkOverlap is the approximate character overlap shared by
	// consecutive chunks of the same page.
	DefaultChunkOverlap = 128
)

// Chunker splits page text into overlapping passages sized for embedding
// and retrieval. Splits happen only on whitespace boundaries, original
// whitespace is preserved, and the produced chunks cover the page text
// without gaps. Chunking is deterministic: identical input and parameters
// always yield identical chunks and therefore identical chunk IDs.
type Chunker struct {
	targetSize int
	overlap    int
}

// NewChunker creates a chunker with the given target chunk size and
// overlap, both in characters. Non-positive or oversized values fall back
// to defaults; overlap is clamped below the target size so every chunk
// makes forward progress.
func NewChunker(targetSize, overlap int) *Chunker {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= targetSize {
		overlap = targetSize / 4
	}
	return &Chunker{targetSize: targetSize, overlap: overlap}
}

// Chunk splits one page into chunks. A blank page produces zero chunks.
// Each chunk's Seq is its position within the page; the ingestion
// pipeline renumbers Seq globally before indexing. Chunk IDs are derived
// from content and page-local position, so they are stable across
// rebuilds of an unchanged corpus.
func (c *Chunker) Chunk(page core.Page) []core.Chunk {
	segments := splitSegments(page.Text)
	if len(segments) == 0 {
		return nil
	}

	var spans [][2]int // segment index ranges [start, end)
	start := 0
	for start < len(segments) {
		end := start
		size := 0
		for end < len(segments) && size < c.targetSize {
			size += len(segments[end])
			end++
		}
		spans = append(spans, [2]int{start, end})
		if end == len(segments) {
			break
		}

		// Walk back from the cut point until roughly `overlap` characters
		// are shared with the next chunk, always advancing past `start`.
		next := end
		carried := 0
		for next > start+1 && carried+len(segments[next-1]) <= c.overlap {
			next--
			carried += len(segments[next])
		}
		start = next
	}

	chunks := make([]core.Chunk, 0, len(spans))
	for i, span := range spans {
		text := joinSegments(segments[span[0]:span[1]])
		chunks = append(chunks, core.Chunk{
			Id:   core.ChunkID(page.File, page.Number, i, text),
			File: page.File,
			Page: page.Number,
			Seq:  i,
			Text: text,
		})
	}

	// Link overlap-adjacent neighbors within the page.
	for i := range chunks {
		if i > 0 {
			chunks[i].PrevId = chunks[i-1].Id
		}
		if i < len(chunks)-1 {
			chunks[i].NextId = chunks[i+1].Id
		}
	}

	return chunks
}

// splitSegments splits text into word segments, each carrying its
// trailing whitespace, with any leading whitespace attached to the first
// segment. Concatenating all segments reproduces the text exactly, which
// is what makes chunk coverage lossless.
func splitSegments(text string) []string {
	if len(text) == 0 {
		return nil
	}

	blank := true
	for _, r := range text {
		if !isSpace(r) {
			blank = false
			break
		}
	}
	if blank {
		return nil
	}

	var segments []string
	runes := []rune(text)
	segStart := 0
	inWord := !isSpace(runes[0])
	for i := 1; i < len(runes); i++ {
		space := isSpace(runes[i])
		if inWord && space {
			inWord = false
		} else if !inWord && !space && segStart < i {
			// whitespace→word transition ends the previous segment
			segments = append(segments, string(runes[segStart:i]))
			segStart = i
			inWord = true
		}
	}
	segments = append(segments, string(runes[segStart:]))

	// Leading whitespace forms its own pseudo-segment; fold it into the
	// first real one so chunk boundaries stay on word starts.
	if len(segments) > 1 && isSpace(runes[0]) && !inWordOnly(segments[0]) {
		segments[1] = segments[0] + segments[1]
		segments = segments[1:]
	}

	return segments
}

func joinSegments(segments []string) string {
	total := 0
	for _, s := range segments {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range segments {
		buf = append(buf, s...)
	}
	return string(buf)
}

func inWordOnly(s string) bool {
	for _, r := range s {
		if !isSpace(r) {
			return true
		}
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}
