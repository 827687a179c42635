package semantic

import (
	"context"
	"fmt"

	"github.com/wgomg/aura/internal/utils"
	"google.golang.org/genai"
)

// geminiMaxBatch is the request limit of the embedContent batch endpoint.
const geminiMaxBatch = 100

// GeminiEncoder embeds text with a hosted Gemini embedding model.
type GeminiEncoder struct {
	logger *utils.Logger
	client *genai.Client
	model  string
}

func NewGeminiEncoder(ctx context.Context, logger *utils.Logger, apiKey, model string) (*GeminiEncoder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiEncoder{logger: logger, client: client, model: model}, nil
}

func (e *GeminiEncoder) Encode(ctx context.Context, texts []string) ([]Embedding, error) {
	out := make([]Embedding, 0, len(texts))

	for start := 0; start < len(texts); start += geminiMaxBatch {
		end := min(start+geminiMaxBatch, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{})
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			out = append(out, Embedding(emb.Values))
		}
	}

	e.logger.Debug(utils.RequestID(ctx), "Gemini encoded %d texts with %s", len(texts), e.model)
	return out, nil
}
