// Package search implements the web search chain: Serper, Tavily and
// Brave when keys are configured, DuckDuckGo as the keyless fallback.
// The first configured provider answers; on its failure the chain falls
// through to the next one, ending with an empty result set.
package search

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/daobot/internal/config"
	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/pkg/log"
)

const (
	maxResults     = 5
	requestTimeout = 15 * time.Second
)

type provider interface {
	name() string
	search(ctx context.Context, query string) ([]core.SearchResult, error)
}

type Chain struct {
	providers []provider
}

// NewChain builds the provider chain from configured keys. Returns nil
// when search is disabled, which the fact assembler treats as
// unavailable.
func NewChain(cfg *config.SearchConfig) *Chain {
	if !cfg.Enabled {
		return nil
	}

	client := &http.Client{Timeout: requestTimeout}

	var providers []provider
	if cfg.SerperAPIKey != "" {
		providers = append(providers, &serper{client: client, apiKey: cfg.SerperAPIKey})
	}
	if cfg.TavilyAPIKey != "" {
		providers = append(providers, &tavily{client: client, apiKey: cfg.TavilyAPIKey})
	}
	if cfg.BraveAPIKey != "" {
		providers = append(providers, &brave{client: client, apiKey: cfg.BraveAPIKey})
	}
	providers = append(providers, &duckduckgo{client: client})

	return &Chain{providers: providers}
}

func (c *Chain) Search(ctx context.Context, query string) ([]core.SearchResult, error) {
	logger := log.FromCtx(ctx)

	var lastErr error
	for _, p := range c.providers {
		results, err := p.search(ctx, query)
		if err != nil {
			logger.Debug().Err(err).Str("provider", p.name()).Msg("search provider failed, falling through")
			lastErr = err
			continue
		}
		return results, nil
	}
	return nil, lastErr
}

// normalize trims, strips HTML out of snippets and drops entries
// without a URL. Result count is capped.
func normalize(results []core.SearchResult, source string) []core.SearchResult {
	out := make([]core.SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		r.Source = source
		r.Title = strings.TrimSpace(r.Title)
		r.Snippet = flattenHTML(r.Snippet)
		out = append(out, r)
		if len(out) == maxResults {
			break
		}
	}
	return out
}

// flattenHTML renders snippet markup down to plain text. Providers
// occasionally return <b>-highlighted or entity-encoded snippets.
func flattenHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	text, err := html2text.FromString(s, html2text.Options{TextOnly: true})
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(text)
}
