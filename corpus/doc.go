// Package corpus turns a read-only directory of source documents into
// the page and chunk sequences the indexer consumes.
//
// The Loader produces one core.Page per physical PDF page (one per file
// for plain text), and the Chunker splits each page into overlapping
// word-boundary passages. Both are deterministic for an unchanged corpus,
// which is what keeps chunk IDs stable across index rebuilds.
package corpus
