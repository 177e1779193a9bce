package driven

import "context"

// EmbeddingService turns text into vectors. Local backends use it to report a
// semantic similarity signal when a request asks for semantic matching.
// It is optional: without one, local results carry no semantic score.
//
// Implementations:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI and compatible APIs (text-embedding-3-small)
type EmbeddingService interface {
	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
