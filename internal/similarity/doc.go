// Package similarity derives content-based project embeddings and the
// pairwise similarity graph built from them. Embeddings are deterministic
// token hashes rather than learned vectors, so reindexing the same corpus
// always produces the same graph. Pair computation is full O(n^2) and is
// meant for populations in the low thousands.
package similarity
