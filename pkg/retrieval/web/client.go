package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"fin-query-be/pkg/retrieval"
)

const defaultBaseURL = "https://api.tavily.com"

// Client fetches evidence from a Tavily-compatible web search API.
type Client struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	HTTPClient *http.Client
	logger     *log.Logger
}

var _ retrieval.Gateway = &Client{}

func NewClient(apiKey, baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		MaxResults: 3,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Fetch runs a deep web search for the keyword sequence. Short scraps are
// filtered out; the provider's own synthesized answer, when present, comes
// back as the first chunk.
func (c *Client) Fetch(ctx context.Context, keywords []string) ([]retrieval.Chunk, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	query := strings.Join(keywords, " ")
	c.logger.Printf("[WEB] Searching: %s", query)

	reqPayload := searchRequest{
		APIKey:        c.APIKey,
		Query:         query,
		SearchDepth:   "advanced",
		MaxResults:    c.MaxResults,
		IncludeAnswer: true,
	}
	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/search", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var chunks []retrieval.Chunk
	if searchResp.Answer != "" {
		chunks = append(chunks, retrieval.Chunk{
			SourceText: searchResp.Answer,
			Origin:     "web",
		})
	}
	for _, result := range searchResp.Results {
		// Very short snippets carry no usable facts
		if len(result.Content) < 50 {
			continue
		}
		chunks = append(chunks, retrieval.Chunk{
			SourceText: fmt.Sprintf("来源: %s\n内容: %s", result.URL, result.Content),
			Origin:     "web",
		})
	}

	c.logger.Printf("[WEB] %d chunks returned", len(chunks))
	return chunks, nil
}
