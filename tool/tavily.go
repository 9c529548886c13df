package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilyClient is a SearchClient backed by the Tavily search API.
type TavilyClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// TavilyOptions configure a TavilyClient.
type TavilyOptions struct {
	// Endpoint overrides the production API URL, mainly for tests.
	Endpoint string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewTavilyClient constructs a Tavily-backed search client.
func NewTavilyClient(apiKey string, optFns ...func(o *TavilyOptions)) *TavilyClient {
	opts := TavilyOptions{
		Endpoint:   tavilyEndpoint,
		HTTPClient: http.DefaultClient,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &TavilyClient{
		apiKey:     apiKey,
		endpoint:   opts.Endpoint,
		httpClient: opts.HTTPClient,
	}
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []SearchResult `json:"results"`
}

// Search implements SearchClient.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{APIKey: c.apiKey, Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search request: status %d: %s", resp.StatusCode, payload)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return decoded.Results, nil
}
