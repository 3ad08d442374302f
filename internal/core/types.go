package core

import "time"

const (
	BotName       = "DAOman"
	BotUserAgent  = "daobot/0.1"
	RepositoryURL = "https://github.com/sandevgo/daobot"
	Version       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SearchResult is a normalized web search hit, provider-agnostic.
type SearchResult struct {
	Title   string
	Snippet string
	URL     string
	Source  string
}

// CoinQuote is a USD quote for a listed coin.
type CoinQuote struct {
	Price       float64
	Change24Pct float64
}

// TokenQuote describes an on-chain token resolved by contract address.
type TokenQuote struct {
	Name         string
	Symbol       string
	PriceUSD     float64
	Chain        string
	Dex          string
	LiquidityUSD float64
	FDVUSD       float64
	Change24Pct  *float64
	PairURL      string
}

// GlobalSnapshot is an aggregate crypto market view.
type GlobalSnapshot struct {
	MarketCapUSD float64
	Volume24USD  float64
	DominancePct float64
}

// VoiceReference is the most recent voice sample supplied by a user,
// used to seed speech-to-speech synthesis.
type VoiceReference struct {
	OwnerID    int64
	Audio      []byte
	Filename   string
	CapturedAt time.Time
}
