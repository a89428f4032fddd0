package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestSearchSendsAuthAndDecodesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "quantum tunneling", req.Query)
		require.Equal(t, 3, req.MaxResults)

		_ = json.NewEncoder(w).Encode(SearchResponse{
			Query:  req.Query,
			Answer: "It is a quantum effect.",
			Results: []SearchResult{
				{Title: "Tunneling", URL: "https://example.org/qt", Content: "Particles cross barriers.", Score: 0.91},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := client.Search(context.Background(), SearchRequest{Query: "quantum tunneling", MaxResults: 3, IncludeAnswer: true})
	require.NoError(t, err)
	require.Equal(t, "It is a quantum effect.", resp.Answer)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "https://example.org/qt", resp.Results[0].URL)
}

func TestSearchSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "bad-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), SearchRequest{Query: "anything"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
