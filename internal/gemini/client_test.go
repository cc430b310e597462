package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/config"
)

func testConfig() *config.GeminiConfig {
	return &config.GeminiConfig{
		APIKey:            "test-key",
		Model:             "gemini-2.5-flash",
		TimeoutSecs:       5,
		RequestsPerMinute: 6000,
	}
}

func candidateResponse(texts ...string) map[string]any {
	parts := make([]map[string]any, len(texts))
	for i, t := range texts {
		parts[i] = map[string]any{"text": t}
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": parts}},
		},
	}
}

func TestGenerateFromPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body struct {
			Contents []struct {
				Parts []struct {
					InlineData struct {
						MimeType string `json:"mime_type"`
						Data     string `json:"data"`
					} `json:"inline_data"`
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		require.Len(t, body.Contents[0].Parts, 2)
		assert.Equal(t, "application/pdf", body.Contents[0].Parts[0].InlineData.MimeType)
		assert.Equal(t, base64.StdEncoding.EncodeToString(pdf), body.Contents[0].Parts[0].InlineData.Data)
		assert.Equal(t, "extract everything", body.Contents[0].Parts[1].Text)

		_ = json.NewEncoder(w).Encode(candidateResponse(`[{"성명": ""}]`))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testConfig(), server.URL)
	text, err := client.GenerateFromPDF(context.Background(), pdf, "extract everything")
	require.NoError(t, err)
	assert.Equal(t, `[{"성명": ""}]`, text)
}

func TestGenerateFromPDFJoinsParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candidateResponse("[{", `"성명": ""}]`))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testConfig(), server.URL)
	text, err := client.GenerateFromPDF(context.Background(), []byte("x"), "p")
	require.NoError(t, err)
	assert.Equal(t, `[{"성명": ""}]`, text)
}

func TestGenerateFromPDFAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testConfig(), server.URL)
	_, err := client.GenerateFromPDF(context.Background(), []byte("x"), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestGenerateFromPDFNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testConfig(), server.URL)
	_, err := client.GenerateFromPDF(context.Background(), []byte("x"), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
