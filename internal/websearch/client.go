// Package websearch provides a Tavily-style live web-search client.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MockResponse is returned when no web-search backend is configured.
const MockResponse = "Mock search result: No significant flight delays reported today. " +
	"(Configure WEB_SEARCH_API_KEY for live web search capability.)"

// Client is the web-search API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new web-search client. Returns nil when no API key
// is configured; callers treat a nil client as "use the mock response".
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Search queries the web-search API.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	body, err := json.Marshal(searchRequest{APIKey: c.apiKey, Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Results, nil
}

// Format renders search hits the way they are fed into a prompt.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No web results found for your query."
	}
	formatted := make([]string, 0, len(results))
	for _, r := range results {
		content := r.Content
		if len(content) > 150 {
			content = content[:150]
		}
		formatted = append(formatted, fmt.Sprintf("• %s\n  %s...\n  Source: %s", r.Title, content, r.URL))
	}
	return strings.Join(formatted, "\n\n")
}
