package simstore

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
	"strings"
)

// dimensions matches common sentence-embedding models so the index can
// later be rebuilt with a real embedder without a schema change.
const dimensions = 384

// maxWords bounds the embedding input; deployment failures show their
// signature early in the log.
const maxWords = 50

// HashEmbedder is a deterministic, dependency-free embedder. Each word
// hashes to a bucket contribution, so logs sharing error vocabulary land
// near each other. It is a stand-in with useful locality, not a semantic
// model.
type HashEmbedder struct{}

func (HashEmbedder) Dimensions() int { return dimensions }

func (HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, dimensions)

	words := strings.Fields(strings.ToLower(text))
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	for i, word := range words {
		sum := md5.Sum([]byte(word))
		h := binary.BigEndian.Uint64(sum[:8])
		vec[i%dimensions] += float32(h%100) / 100.0
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}
