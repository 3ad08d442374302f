// Package market implements the crypto data providers: CoinPaprika for
// coin resolution, quotes and the global snapshot, Dexscreener for
// token-by-contract lookups. Paprika responses are cached (coins list
// 30m, prices 60s) to stay under the keyless rate limits.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/pkg/retry"
)

const (
	paprikaURL = "https://api.coinpaprika.com"

	coinsListTTL  = 30 * time.Minute
	priceCacheTTL = 60 * time.Second
)

type paprikaCoin struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Type     string `json:"type"`
}

type cachedQuote struct {
	quote core.CoinQuote
	at    time.Time
}

type Paprika struct {
	client  *http.Client
	retrier *retry.Retrier
	baseURL string
	now     func() time.Time

	mu         sync.Mutex
	coins      []paprikaCoin
	coinsAt    time.Time
	priceCache map[string]cachedQuote
}

func NewPaprika() *Paprika {
	retryCfg := retry.NewDefaultConfig()
	retryCfg.MaxRetries = 3
	retryCfg.Retryable = core.Transient

	return &Paprika{
		client:     &http.Client{Timeout: 20 * time.Second},
		retrier:    retry.NewRetrier(retryCfg),
		baseURL:    paprikaURL,
		now:        time.Now,
		priceCache: make(map[string]cachedQuote),
	}
}

// ResolveAssetID maps "btc", "bitcoin" or a full paprika id to the
// canonical asset id. Matching order: id, symbol, name, then fuzzy
// prefix/substring, then the search API as a last resort.
func (p *Paprika) ResolveAssetID(ctx context.Context, symbolOrName string) (string, error) {
	q := strings.TrimSpace(symbolOrName)
	if q == "" {
		return "", fmt.Errorf("empty symbol: %w", core.ErrNotFound)
	}

	coins, err := p.coinsList(ctx)
	if err != nil {
		return "", err
	}

	lower := strings.ToLower(q)
	for _, c := range coins {
		if strings.ToLower(c.ID) == lower {
			return c.ID, nil
		}
	}
	for _, c := range coins {
		if strings.ToLower(c.Symbol) == lower {
			return c.ID, nil
		}
	}
	for _, c := range coins {
		if strings.ToLower(c.Name) == lower {
			return c.ID, nil
		}
	}
	for _, c := range coins {
		if strings.HasPrefix(strings.ToLower(c.Symbol), lower) {
			return c.ID, nil
		}
	}
	for _, c := range coins {
		if strings.Contains(strings.ToLower(c.Name), lower) {
			return c.ID, nil
		}
	}

	// Wider coverage through the search endpoint.
	if id, err := p.searchAssetID(ctx, q); err == nil {
		return id, nil
	}

	return "", fmt.Errorf("coin %q: %w", q, core.ErrNotFound)
}

// Quote returns the USD price and 24h change for a resolved asset id.
func (p *Paprika) Quote(ctx context.Context, assetID string) (core.CoinQuote, error) {
	p.mu.Lock()
	if c, ok := p.priceCache[assetID]; ok && p.now().Sub(c.at) < priceCacheTTL {
		p.mu.Unlock()
		return c.quote, nil
	}
	p.mu.Unlock()

	var parsed struct {
		Quotes map[string]struct {
			Price           *float64 `json:"price"`
			PercentChange24 float64  `json:"percent_change_24h"`
		} `json:"quotes"`
	}
	path := "/v1/tickers/" + url.PathEscape(assetID) + "?quotes=USD"
	if err := p.getJSON(ctx, path, &parsed); err != nil {
		return core.CoinQuote{}, err
	}

	usd, ok := parsed.Quotes["USD"]
	if !ok || usd.Price == nil {
		return core.CoinQuote{}, fmt.Errorf("price for %q: %w", assetID, core.ErrNotFound)
	}

	quote := core.CoinQuote{Price: *usd.Price, Change24Pct: usd.PercentChange24}
	p.mu.Lock()
	p.priceCache[assetID] = cachedQuote{quote: quote, at: p.now()}
	p.mu.Unlock()
	return quote, nil
}

// Global fetches the aggregate market snapshot.
func (p *Paprika) Global(ctx context.Context) (core.GlobalSnapshot, error) {
	var parsed struct {
		MarketCapUSD float64 `json:"market_cap_usd"`
		Volume24USD  float64 `json:"volume_24h_usd"`
		BTCDominance float64 `json:"bitcoin_dominance_percentage"`
	}
	if err := p.getJSON(ctx, "/v1/global", &parsed); err != nil {
		return core.GlobalSnapshot{}, err
	}
	return core.GlobalSnapshot{
		MarketCapUSD: parsed.MarketCapUSD,
		Volume24USD:  parsed.Volume24USD,
		DominancePct: parsed.BTCDominance,
	}, nil
}

func (p *Paprika) coinsList(ctx context.Context) ([]paprikaCoin, error) {
	p.mu.Lock()
	if p.coins != nil && p.now().Sub(p.coinsAt) < coinsListTTL {
		coins := p.coins
		p.mu.Unlock()
		return coins, nil
	}
	p.mu.Unlock()

	var all []paprikaCoin
	if err := p.getJSON(ctx, "/v1/coins", &all); err != nil {
		return nil, err
	}

	// Active coins only; tokens resolve through Dexscreener instead.
	filtered := all[:0]
	for _, c := range all {
		if c.IsActive && c.Type == "coin" {
			filtered = append(filtered, c)
		}
	}

	p.mu.Lock()
	p.coins = filtered
	p.coinsAt = p.now()
	p.mu.Unlock()
	return filtered, nil
}

func (p *Paprika) searchAssetID(ctx context.Context, q string) (string, error) {
	var parsed struct {
		Currencies []struct {
			ID string `json:"id"`
		} `json:"currencies"`
	}
	path := "/v1/search?" + url.Values{"q": {q}, "c": {"currencies"}, "limit": {"5"}}.Encode()
	if err := p.getJSON(ctx, path, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Currencies) == 0 {
		return "", fmt.Errorf("search %q: %w", q, core.ErrNotFound)
	}
	return parsed.Currencies[0].ID, nil
}

func (p *Paprika) getJSON(ctx context.Context, path string, out any) error {
	return p.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", core.BotUserAgent)

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return &core.StatusError{Status: resp.StatusCode, Detail: "coinpaprika " + path}
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return nil
	})
}
