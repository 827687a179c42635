package semantic

import (
	"context"
	"io"
)

type Embedding []float32

// Encoder maps texts to fixed-dimension vectors, one per input, in order.
// Implementations must be safe for concurrent use.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([]Embedding, error)
}

// EncoderFunc adapts a plain function to the Encoder interface.
type EncoderFunc func(ctx context.Context, texts []string) ([]Embedding, error)

func (f EncoderFunc) Encode(ctx context.Context, texts []string) ([]Embedding, error) {
	return f(ctx, texts)
}

// Close releases the resources held by enc when it has any.
func Close(enc Encoder) error {
	if c, ok := enc.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type Language string

const (
	English Language = "english"
	Tamil   Language = "tamil"
)

type Result struct {
	Index    int
	Score    float64
	Language Language
}
