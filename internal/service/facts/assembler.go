// Package facts gathers best-effort grounding data for a query: web
// search results, coin and token quotes, a global market snapshot and
// the bot's static context. Every sub-lookup carries its own failure
// boundary; a dead provider costs its section, never the whole block.
package facts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/internal/service/grounding"
	"github.com/sandevgo/daobot/pkg/log"
)

const (
	maxWebResults   = 5
	maxSymbolLookup = 3

	searchTimeout = 15 * time.Second
	marketTimeout = 20 * time.Second
)

// Assembler builds the FACTS block. A nil Searcher disables web search
// (the block carries an unavailability note instead); any other nil
// provider simply skips its section.
type Assembler struct {
	searcher core.Searcher
	coins    core.CoinPricer
	tokens   core.TokenLookup
	global   core.GlobalMarket

	static []string
	now    func() time.Time
}

type Option func(*Assembler)

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func NewAssembler(
	searcher core.Searcher,
	coins core.CoinPricer,
	tokens core.TokenLookup,
	global core.GlobalMarket,
	static []string,
	opts ...Option,
) *Assembler {
	a := &Assembler{
		searcher: searcher,
		coins:    coins,
		tokens:   tokens,
		global:   global,
		static:   static,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// section is the outcome of one sub-lookup. Errors are recorded for
// logging but never propagate; the combinator keeps only lines.
type section struct {
	name  string
	lines []string
	err   error
}

// Build returns the assembled fact block, or "" when nothing was
// gathered. It never fails.
func (a *Assembler) Build(ctx context.Context, query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	cand := grounding.ExtractCandidates(query)

	var wg sync.WaitGroup
	sections := make([]section, 4)

	run := func(i int, fn func(context.Context) section) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sections[i] = fn(ctx)
		}()
	}

	if grounding.NeedsExternalData(query) {
		run(0, func(ctx context.Context) section { return a.webSection(ctx, query) })
	}
	run(1, func(ctx context.Context) section { return a.coinSection(ctx, cand.Symbols) })
	run(2, func(ctx context.Context) section { return a.tokenSection(ctx, cand.Contracts) })
	run(3, func(ctx context.Context) section { return a.globalSection(ctx) })
	wg.Wait()

	logger := log.FromCtx(ctx)
	var lines []string
	for _, s := range sections {
		if s.err != nil {
			logger.Debug().Err(s.err).Str("section", s.name).Msg("fact lookup degraded")
		}
		lines = append(lines, s.lines...)
	}

	if len(a.static) > 0 {
		lines = append(lines, core.BotName+" CONTEXT:")
		lines = append(lines, a.static...)
	}

	if len(lines) == 0 {
		return ""
	}

	block := fmt.Sprintf("FACTS @ %s:\n- ", a.now().UTC().Format(time.RFC3339))
	for i, l := range lines {
		if i > 0 {
			block += "\n- "
		}
		block += l
	}
	return block
}

func (a *Assembler) webSection(ctx context.Context, query string) section {
	s := section{name: "web"}

	if a.searcher == nil {
		s.lines = []string{"WEB RESULTS: (unavailable)"}
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	results, err := a.searcher.Search(ctx, grounding.ExpandAbbreviations(query))
	if err != nil {
		s.err = err
		s.lines = []string{"WEB RESULTS: (error)"}
		return s
	}
	if len(results) == 0 {
		return s
	}

	s.lines = append(s.lines, "WEB RESULTS:")
	for i, r := range results {
		if i == maxWebResults {
			break
		}
		s.lines = append(s.lines, fmt.Sprintf("• %s — %s (%s)", r.Title, r.Snippet, r.URL))
	}
	return s
}

func (a *Assembler) coinSection(ctx context.Context, symbols []string) section {
	s := section{name: "coins"}
	if a.coins == nil || len(symbols) == 0 {
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, marketTimeout)
	defer cancel()

	if len(symbols) > maxSymbolLookup {
		symbols = symbols[:maxSymbolLookup]
	}

	seen := make(map[string]struct{})
	for _, raw := range symbols {
		id, err := a.coins.ResolveAssetID(ctx, raw)
		if err != nil {
			s.err = err
			continue
		}
		// Two symbols resolving to the same asset produce one line.
		if _, dup := seen[id]; dup {
			continue
		}

		q, err := a.coins.Quote(ctx, id)
		if err != nil {
			s.err = err
			continue
		}
		seen[id] = struct{}{}

		arrow := "🟢"
		if q.Change24Pct < 0 {
			arrow = "🔴"
		}
		s.lines = append(s.lines, fmt.Sprintf("COIN %s: $%s (%s %s 24h)",
			strings.ToUpper(raw), fmtUSD(q.Price), arrow, fmtPct(q.Change24Pct)))
	}
	return s
}

func (a *Assembler) tokenSection(ctx context.Context, contracts []string) section {
	s := section{name: "tokens"}
	if a.tokens == nil || len(contracts) == 0 {
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, marketTimeout)
	defer cancel()

	for _, ca := range contracts {
		t, err := a.tokens.TokenByContract(ctx, ca)
		if err != nil {
			s.err = err
			continue
		}

		change := "n/a"
		if t.Change24Pct != nil {
			change = fmtPct(*t.Change24Pct)
		}
		line := fmt.Sprintf("TOKEN %s (%s • %s): $%s (24h %s), liq $%s, FDV $%s",
			t.Symbol, t.Chain, t.Dex, fmtUSD(t.PriceUSD), change,
			fmtUSD(t.LiquidityUSD), fmtUSD(t.FDVUSD))
		if t.PairURL != "" {
			line += " — " + t.PairURL
		}
		s.lines = append(s.lines, line)
	}
	return s
}

func (a *Assembler) globalSection(ctx context.Context) section {
	s := section{name: "global"}
	if a.global == nil {
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, marketTimeout)
	defer cancel()

	g, err := a.global.Global(ctx)
	if err != nil {
		s.err = err
		return s
	}
	s.lines = []string{fmt.Sprintf("GLOBAL: MCAP ~$%s, VOL24h ~$%s, BTC.D %s",
		fmtUSD(g.MarketCapUSD), fmtUSD(g.Volume24USD), fmtPct(g.DominancePct))}
	return s
}
