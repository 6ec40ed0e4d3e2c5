// Package mock provides deterministic test doubles for the ai package
// interfaces. Mock embeddings are derived from an FNV hash of the input
// text, so identical text always embeds to the identical vector without
// any model server running.
package mock
