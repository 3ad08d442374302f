package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/daobot/internal/core"
)

const tavilyURL = "https://api.tavily.com/search"

type tavily struct {
	client *http.Client
	apiKey string
	url    string
}

func (t *tavily) name() string { return "tavily" }

func (t *tavily) search(ctx context.Context, query string) ([]core.SearchResult, error) {
	endpoint := t.url
	if endpoint == "" {
		endpoint = tavilyURL
	}

	payload, err := json.Marshal(map[string]any{
		"query":          query,
		"max_results":    maxResults,
		"include_answer": false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.StatusError{Status: resp.StatusCode, Detail: "tavily search failed"}
	}

	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			URL     string `json:"url"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	results := make([]core.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, core.SearchResult{Title: r.Title, Snippet: r.Content, URL: r.URL})
	}
	return normalize(results, t.name()), nil
}
