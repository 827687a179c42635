// Package semantic ranks corpus records by cosine similarity between the
// embedding of a query and precomputed embeddings of every corpus phrase.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/wgomg/aura/internal/corpus"
	"github.com/wgomg/aura/internal/utils"
	"golang.org/x/sync/errgroup"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type Options struct {
	// BatchSize is the number of phrases sent to the encoder per call.
	BatchSize int
	// Concurrency bounds the batches in flight while indexing.
	Concurrency int
}

type phrase struct {
	owner int
	lang  Language
	text  string
}

// Matcher is immutable after NewMatcher returns and safe for concurrent use.
type Matcher struct {
	logger  *utils.Logger
	encoder Encoder
	phrases []phrase
	vectors []Embedding
	norms   []float64
	dim     int
}

// NewMatcher encodes the English phrase of every record, followed by its
// Tamil phrase when present, in corpus order. When enc wraps another encoder
// (see CachedEncoder.Unwrap), queries go to the wrapped one and are never
// cached.
func NewMatcher(
	ctx context.Context,
	logger *utils.Logger,
	c *corpus.Corpus,
	enc Encoder,
	opts Options,
) (*Matcher, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	m := &Matcher{logger: logger, encoder: queryEncoder(enc)}
	for i := 0; i < c.Len(); i++ {
		m.phrases = append(m.phrases, phrase{owner: i, lang: English, text: c.English(i)})
		if tamil := c.Tamil(i); tamil != "" {
			m.phrases = append(m.phrases, phrase{owner: i, lang: Tamil, text: tamil})
		}
	}
	m.vectors = make([]Embedding, len(m.phrases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for start := 0; start < len(m.phrases); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(m.phrases))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, p := range m.phrases[start:end] {
				texts = append(texts, p.text)
			}

			vecs, err := enc.Encode(gctx, texts)
			if err != nil {
				return fmt.Errorf("encode phrases %d-%d: %w", start, end-1, err)
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("encoder returned %d embeddings for %d phrases", len(vecs), len(texts))
			}
			copy(m.vectors[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.norms = make([]float64, len(m.vectors))
	for i, v := range m.vectors {
		if i == 0 {
			m.dim = len(v)
		}
		if len(v) == 0 || len(v) != m.dim {
			return nil, fmt.Errorf("%w: phrase %d has %d values, want %d", ErrDimensionMismatch, i, len(v), m.dim)
		}
		m.norms[i] = vecNorm(v)
	}

	logger.Info(nil, "Semantic index built: %d phrases from %d records, dimension %d", len(m.phrases), c.Len(), m.dim)
	return m, nil
}

func (m *Matcher) Size() int {
	return len(m.phrases)
}

func (m *Matcher) Dimension() int {
	return m.dim
}

// Match always returns the best candidate; there is no acceptance threshold.
// Exact score ties go to the phrase indexed first.
func (m *Matcher) Match(ctx context.Context, query string) (Result, error) {
	vecs, err := m.encoder.Encode(ctx, []string{query})
	if err != nil {
		return Result{}, fmt.Errorf("encode query: %w", err)
	}
	if len(vecs) != 1 {
		return Result{}, fmt.Errorf("encoder returned %d embeddings for one query", len(vecs))
	}

	q := vecs[0]
	if len(q) != m.dim {
		return Result{}, fmt.Errorf("%w: query has %d values, want %d", ErrDimensionMismatch, len(q), m.dim)
	}
	qNorm := vecNorm(q)

	best, bestScore := -1, math.Inf(-1)
	for i, v := range m.vectors {
		score := cosine(q, v, qNorm, m.norms[i])
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Result{}, errors.New("semantic index is empty")
	}

	p := m.phrases[best]
	m.logger.Debug(utils.RequestID(ctx), "Semantic best match: record=%d lang=%s score=%.4f", p.owner, p.lang, bestScore)

	return Result{Index: p.owner, Score: bestScore, Language: p.lang}, nil
}

func queryEncoder(enc Encoder) Encoder {
	if w, ok := enc.(interface{ Unwrap() Encoder }); ok {
		return w.Unwrap()
	}
	return enc
}

func vecNorm(v Embedding) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine is zero when either vector has no magnitude.
func cosine(a, b Embedding, aNorm, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
