package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/daobot/internal/core"
)

const dexscreenerURL = "https://api.dexscreener.com"

// Dexscreener resolves tokens by contract address. Chains are detected
// by the API itself, so EVM and Solana addresses both work.
type Dexscreener struct {
	client  *http.Client
	baseURL string
}

func NewDexscreener() *Dexscreener {
	return &Dexscreener{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: dexscreenerURL,
	}
}

type dexPair struct {
	ChainID   string `json:"chainId"`
	DexID     string `json:"dexId"`
	URL       string `json:"url"`
	PriceUSD  string `json:"priceUsd"`
	BaseToken struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"baseToken"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	FDV         float64 `json:"fdv"`
	PriceChange struct {
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
}

// TokenByContract returns the quote from the deepest-liquidity pair
// that carries a USD price.
func (d *Dexscreener) TokenByContract(ctx context.Context, address string) (core.TokenQuote, error) {
	addr := strings.TrimSpace(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.baseURL+"/latest/dex/tokens/"+url.PathEscape(addr), nil)
	if err != nil {
		return core.TokenQuote{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", core.BotUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return core.TokenQuote{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.TokenQuote{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return core.TokenQuote{}, &core.StatusError{Status: resp.StatusCode, Detail: "dexscreener lookup"}
	}

	var parsed struct {
		Pairs []dexPair `json:"pairs"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return core.TokenQuote{}, fmt.Errorf("decode: %w", err)
	}
	if len(parsed.Pairs) == 0 {
		return core.TokenQuote{}, fmt.Errorf("token %q: %w", addr, core.ErrNotFound)
	}

	var best *dexPair
	var bestPrice float64
	for i := range parsed.Pairs {
		pair := &parsed.Pairs[i]
		if pair.PriceUSD == "" {
			continue
		}
		price, err := strconv.ParseFloat(pair.PriceUSD, 64)
		if err != nil {
			continue
		}
		if best == nil || pair.Liquidity.USD > best.Liquidity.USD {
			best = pair
			bestPrice = price
		}
	}
	if best == nil {
		return core.TokenQuote{}, fmt.Errorf("token %q has no USD-priced pair: %w", addr, core.ErrNotFound)
	}

	return core.TokenQuote{
		Name:         best.BaseToken.Name,
		Symbol:       best.BaseToken.Symbol,
		PriceUSD:     bestPrice,
		Chain:        best.ChainID,
		Dex:          best.DexID,
		LiquidityUSD: best.Liquidity.USD,
		FDVUSD:       best.FDV,
		Change24Pct:  best.PriceChange.H24,
		PairURL:      best.URL,
	}, nil
}
