// Package ingest wires the offline indexing pipeline: corpus loading,
// chunking and index building, with an existing-index short-circuit and
// an optional post-build verification query.
package ingest
