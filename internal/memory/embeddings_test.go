package memory

import (
	"math"
	"strings"
	"testing"
)

func TestIsValidAPIKeyRejectsEmptyAndShort(t *testing.T) {
	if isValidAPIKey("") {
		t.Error("expected empty key invalid")
	}
	if isValidAPIKey("short") {
		t.Error("expected short key invalid")
	}
}

func TestIsValidAPIKeyRejectsPlaceholders(t *testing.T) {
	for _, key := range []string{
		"your_api_key_here_padding",
		"sk-xxxxxxxxxxxxxxxxxxxx",
		"sk-your-key-goes-here-pad",
		"placeholder_value_padding",
		"replace_this_api_key_pad",
	} {
		if isValidAPIKey(key) {
			t.Errorf("expected key %q to be invalid", key)
		}
	}
}

func TestIsValidAPIKeyAcceptsPlausibleKey(t *testing.T) {
	if !isValidAPIKey("sk-a1b2c3d4e5f6g7h8i9j0k1l2") {
		t.Error("expected plausible key to be valid")
	}
}

func TestNewHTTPEmbedderEnabledReflectsKeyValidity(t *testing.T) {
	e := NewHTTPEmbedder("https://dashscope.aliyuncs.com/compatible-mode/v1", "sk-a1b2c3d4e5f6g7h8i9j0", "text-embedding-v2")
	if !e.Enabled() {
		t.Error("expected embedder enabled with a plausible key")
	}
	disabled := NewHTTPEmbedder("https://dashscope.aliyuncs.com/compatible-mode/v1", "your_api_key_here", "text-embedding-v2")
	if disabled.Enabled() {
		t.Error("expected embedder disabled with a placeholder key")
	}
}

func TestChunkTextShortTextIsSingleChunk(t *testing.T) {
	chunks := chunkText("short text", 2500)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}

func TestChunkTextSplitsLongText(t *testing.T) {
	text := strings.Repeat("a", 6000)
	chunks := chunkText(text, 2500)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 2500 || len(chunks[1]) != 2500 || len(chunks[2]) != 1000 {
		t.Errorf("unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("expected chunks to reconstruct the original text")
	}
}

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	a := []float32{1, 2, 3}
	got := cosineSimilarity(a, a)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("cosineSimilarity(a, a) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityOrthogonalVectors(t *testing.T) {
	got := cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if math.Abs(got) > 1e-9 {
		t.Errorf("cosineSimilarity(orthogonal) = %v, want 0", got)
	}
}

func TestCosineSimilarityMismatchedLengthOrEmpty(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("expected 0 for mismatched lengths, got %v", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Errorf("expected 0 for empty vectors, got %v", got)
	}
}

func TestCosineSimilarityZeroNormVector(t *testing.T) {
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("expected 0 when one vector has zero norm, got %v", got)
	}
}
