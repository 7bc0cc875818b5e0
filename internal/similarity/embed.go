package similarity

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// DefaultDim is the embedding dimensionality used when a caller does not
// override it.
const DefaultDim = 8

// Embed maps text to a deterministic vector of the given dimensionality.
// Each whitespace token is lowercased and md5-hashed; every 4-hex-char
// chunk of the digest picks a dimension (chunk value mod dim) and adds a
// pseudo-random increment ((chunk value mod 100) / 100). The result is
// L2-normalized unless it is the zero vector, which is returned as-is.
func Embed(text string, dim int) []float64 {
	vec := make([]float64, dim)
	if strings.TrimSpace(text) == "" {
		return vec
	}

	for _, token := range strings.Fields(strings.ToLower(text)) {
		sum := md5.Sum([]byte(token))
		digest := hex.EncodeToString(sum[:])
		for k := 0; k+4 <= len(digest); k += 4 {
			val, err := strconv.ParseUint(digest[k:k+4], 16, 32)
			if err != nil {
				continue
			}
			idx := int(val) % dim
			vec[idx] += float64(val%100) / 100.0
		}
	}

	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors, or 0 when either
// has zero norm. Vectors of unequal length are compared over the shorter
// prefix.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}

	var normA, normB float64
	for _, x := range a {
		normA += x * x
	}
	for _, x := range b {
		normB += x * x
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
