package semantic

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// HashingEncoder projects word tokens into a fixed number of signed buckets.
// It needs no model and is deterministic, which makes it useful offline and
// in tests; texts only score high together when they share words.
type HashingEncoder struct {
	dim int
}

func NewHashingEncoder(dim int) *HashingEncoder {
	if dim <= 0 {
		dim = 512
	}
	return &HashingEncoder{dim: dim}
}

func (e *HashingEncoder) Dimension() int {
	return e.dim
}

func (e *HashingEncoder) Encode(ctx context.Context, texts []string) ([]Embedding, error) {
	out := make([]Embedding, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.encode(text)
	}
	return out, nil
}

func (e *HashingEncoder) encode(text string) Embedding {
	vec := make(Embedding, e.dim)
	for _, tok := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		bucket := int(sum % uint64(e.dim))
		if sum>>63 == 1 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}
	return vec
}

func tokenize(text string) []string {
	folded := cases.Fold().String(norm.NFC.String(text))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
}
