// Package entityresolution resolves noisy party records drawn from
// multiple source systems into canonical entities. It wires the
// Normalizer, Exact-Match Indexer, Blocker, Clusterer, and
// Canonicalizer behind a single Resolve call; CSV ingestion, a
// graph-database backend, and wire protocols are out of scope and
// left to the caller.
package entityresolution
