package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sandevgo/daobot/internal/core"
)

const ddgURL = "https://api.duckduckgo.com/"

// duckduckgo is the keyless fallback. Instant-answer data is weaker
// than a real search index but keeps grounding alive with zero config.
type duckduckgo struct {
	client *http.Client
	url    string
}

func (d *duckduckgo) name() string { return "duckduckgo" }

func (d *duckduckgo) search(ctx context.Context, query string) ([]core.SearchResult, error) {
	endpoint := d.url
	if endpoint == "" {
		endpoint = ddgURL
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.StatusError{Status: resp.StatusCode, Detail: "duckduckgo search failed"}
	}

	var parsed struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var results []core.SearchResult
	if parsed.AbstractText != "" {
		results = append(results, core.SearchResult{
			Title:   parsed.Heading,
			Snippet: parsed.AbstractText,
			URL:     parsed.AbstractURL,
		})
	}
	for _, t := range parsed.RelatedTopics {
		results = append(results, core.SearchResult{Title: t.Text, Snippet: t.Text, URL: t.FirstURL})
	}
	return normalize(results, d.name()), nil
}
