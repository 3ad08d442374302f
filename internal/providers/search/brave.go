package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sandevgo/daobot/internal/core"
)

const braveURL = "https://api.search.brave.com/res/v1/web/search"

type brave struct {
	client *http.Client
	apiKey string
	url    string
}

func (b *brave) name() string { return "brave" }

func (b *brave) search(ctx context.Context, query string) ([]core.SearchResult, error) {
	endpoint := b.url
	if endpoint == "" {
		endpoint = braveURL
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.StatusError{Status: resp.StatusCode, Detail: "brave search failed"}
	}

	var parsed struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				URL         string `json:"url"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	results := make([]core.SearchResult, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		results = append(results, core.SearchResult{Title: r.Title, Snippet: r.Description, URL: r.URL})
	}
	return normalize(results, b.name()), nil
}
