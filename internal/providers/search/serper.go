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

const serperURL = "https://google.serper.dev/search"

type serper struct {
	client *http.Client
	apiKey string
	url    string
}

func (s *serper) name() string { return "serper" }

func (s *serper) search(ctx context.Context, query string) ([]core.SearchResult, error) {
	endpoint := s.url
	if endpoint == "" {
		endpoint = serperURL
	}

	payload, err := json.Marshal(map[string]any{"q": query, "num": maxResults})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.StatusError{Status: resp.StatusCode, Detail: "serper search failed"}
	}

	var parsed struct {
		Organic []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"organic"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	results := make([]core.SearchResult, 0, len(parsed.Organic))
	for _, o := range parsed.Organic {
		results = append(results, core.SearchResult{Title: o.Title, Snippet: o.Snippet, URL: o.Link})
	}
	return normalize(results, s.name()), nil
}
