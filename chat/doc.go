// Package chat implements the conversational pipeline over a loaded
// index: condensation of follow-up messages into standalone queries,
// top-k passage retrieval, grounded answer generation with citations,
// and the append-only conversation the exchanges are recorded in.
package chat
