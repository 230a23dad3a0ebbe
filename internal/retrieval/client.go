package retrieval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/streed/vault-suggest/internal/config"
	apperrors "github.com/streed/vault-suggest/internal/errors"
	"github.com/streed/vault-suggest/internal/logger"
	"github.com/streed/vault-suggest/internal/suggest"
)

// Client talks to the external vector-search service over HTTP. It is a
// pass-through adapter: no scoring logic of its own, just the wire contract.
// All failures wrap ErrRetrievalUnavailable so callers can pick a
// degrade-vs-fail policy with errors.Is.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type indexRequest struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata chunkMetadata `json:"metadata"`
}

type chunkMetadata struct {
	Title     string   `json:"title"`
	Folder    string   `json:"folder,omitempty"`
	Wikilinks []string `json:"wikilinks,omitempty"`
	Backlinks []string `json:"backlinks,omitempty"`
}

type indexResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type rerankRequest struct {
	Query string         `json:"query"`
	Hits  []searchResult `json:"hits"`
	TopN  int            `json:"top_n,omitempty"`
}

type searchResult struct {
	Title    string        `json:"title"`
	Score    float64       `json:"score"`
	Metadata chunkMetadata `json:"metadata,omitempty"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

func NewClient(cfg *config.Config) *Client {
	baseURL := cfg.RetrievalURL
	if baseURL == "" {
		baseURL = "http://localhost:8081"
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Retrieve implements suggest.Retriever.
func (c *Client) Retrieve(query string, k int) ([]suggest.Hit, error) {
	logger.Debug("Searching retrieval service (limit: %d)", k)

	var resp searchResponse
	if err := c.post("/api/search", searchRequest{Query: query, Limit: k}, &resp); err != nil {
		return nil, err
	}

	logger.Debug("Retrieval service returned %d hits", len(resp.Results))
	return toHits(resp.Results), nil
}

// Rerank implements suggest.Reranker by delegating to the service's
// cross-encoder endpoint. The returned hits are a reordered subset of the
// input.
func (c *Client) Rerank(hits []suggest.Hit, query string) ([]suggest.Hit, error) {
	req := rerankRequest{Query: query, Hits: make([]searchResult, 0, len(hits))}
	for _, h := range hits {
		req.Hits = append(req.Hits, searchResult{
			Title: h.Title,
			Score: h.Score,
			Metadata: chunkMetadata{
				Folder:    h.Folder,
				Wikilinks: h.Wikilinks,
				Backlinks: h.Backlinks,
			},
		})
	}

	var resp searchResponse
	if err := c.post("/api/rerank", req, &resp); err != nil {
		return nil, err
	}

	logger.Debug("Reranker kept %d of %d hits", len(resp.Results), len(hits))
	return toHits(resp.Results), nil
}

// Index pushes one chunk into the service's vector index.
func (c *Client) Index(id, text string, meta suggest.Hit) error {
	req := indexRequest{
		ID:   id,
		Text: text,
		Metadata: chunkMetadata{
			Title:     meta.Title,
			Folder:    meta.Folder,
			Wikilinks: meta.Wikilinks,
			Backlinks: meta.Backlinks,
		},
	}

	var resp indexResponse
	if err := c.post("/api/index", req, &resp); err != nil {
		return err
	}
	if resp.Status != "" && resp.Status != "indexed" && resp.Status != "ok" {
		return fmt.Errorf("%w: index failed: %s", apperrors.ErrRetrievalUnavailable, resp.Message)
	}
	return nil
}

// IsAvailable reports whether the service answers at all.
func (c *Client) IsAvailable() bool {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		logger.Debug("Retrieval service not available at %s: %v", c.baseURL, err)
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < 500
}

func (c *Client) post(path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrRetrievalUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debug("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s returned status %d: %s",
			apperrors.ErrRetrievalUnavailable, path, resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v",
			apperrors.ErrRetrievalUnavailable, path, err)
	}
	return nil
}

func toHits(results []searchResult) []suggest.Hit {
	hits := make([]suggest.Hit, 0, len(results))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = r.Metadata.Title
		}
		hits = append(hits, suggest.Hit{
			Title:     title,
			Score:     r.Score,
			Folder:    r.Metadata.Folder,
			Wikilinks: r.Metadata.Wikilinks,
			Backlinks: r.Metadata.Backlinks,
		})
	}
	return hits
}
