package memory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxChunkChars bounds embedding input size; longer situations are
// chunked and their per-chunk embeddings averaged, so embeddings are
// always computed at <=2500 chars per chunk.
const maxChunkChars = 2500

// Embedder produces a dense vector for a text, or reports itself
// disabled when no usable embedding backend is configured.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Enabled() bool
}

// HTTPEmbedder calls an OpenAI-compatible /embeddings endpoint
// (DashScope's compatible-mode API or OpenAI itself — DeepSeek has no
// embeddings endpoint of its own, so the decision-memory store always
// routes embedding calls through one of these two providers regardless
// of which LLM backs the agents).
type HTTPEmbedder struct {
	client  *resty.Client
	model   string
	enabled bool
}

// NewHTTPEmbedder builds an embedder bound to baseURL/apiKey/model.
// Enabled() reports false when apiKey looks like a placeholder or is
// too short to be real, mirroring the "_is_valid_api_key" screen — the
// store must not hard-fail a run merely because memory isn't configured.
func NewHTTPEmbedder(baseURL, apiKey, model string) *HTTPEmbedder {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetTimeout(30 * time.Second)
	return &HTTPEmbedder{
		client:  client,
		model:   model,
		enabled: isValidAPIKey(apiKey),
	}
}

func isValidAPIKey(key string) bool {
	if key == "" || len(key) < 20 {
		return false
	}
	lower := strings.ToLower(key)
	for _, p := range []string{"your_", "your-", "xxx", "placeholder", "api_key_here", "sk-xxx", "sk-your", "replace_", "insert_", "enter_"} {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}

// Enabled reports whether this embedder has a plausible API key.
func (e *HTTPEmbedder) Enabled() bool { return e.enabled }

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed chunks text at maxChunkChars and averages the per-chunk
// embeddings
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if !e.enabled {
		return nil, fmt.Errorf("embedding backend not configured")
	}
	chunks := chunkText(text, maxChunkChars)

	var sum []float32
	for _, chunk := range chunks {
		vec, err := e.embedOne(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if sum == nil {
			sum = make([]float32, len(vec))
		}
		for i, v := range vec {
			sum[i] += v
		}
	}
	for i := range sum {
		sum[i] /= float32(len(chunks))
	}
	return sum, nil
}

func (e *HTTPEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	var out embeddingResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: e.model, Input: []string{text}}).
		SetResult(&out).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("network: embedding request failed: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("server: embedding endpoint returned %d", resp.StatusCode())
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("embedding endpoint returned no data")
	}
	return out.Data[0].Embedding, nil
}

func chunkText(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// cosineSimilarity is computed in application code rather than via a
// pgvector operator, keeping the store's only hard dependency on
// PostgreSQL itself.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
