package core

import "context"

// Completer sends an assembled conversation to the LLM and returns the answer text.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Searcher is a best-effort web search provider. A nil Searcher means
// search is unconfigured and grounding degrades to the unavailability note.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// CoinPricer resolves free-form symbols/names to priced assets.
type CoinPricer interface {
	ResolveAssetID(ctx context.Context, symbolOrName string) (string, error)
	Quote(ctx context.Context, assetID string) (CoinQuote, error)
}

// TokenLookup fetches token metadata and price by contract address.
type TokenLookup interface {
	TokenByContract(ctx context.Context, address string) (TokenQuote, error)
}

// GlobalMarket returns an aggregate market snapshot.
type GlobalMarket interface {
	Global(ctx context.Context) (GlobalSnapshot, error)
}

// Transcriber converts an audio attachment to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Synthesizer produces speech audio for a reply. Clone mimics the
// reference sample; Speak uses the configured default voice.
type Synthesizer interface {
	Speak(ctx context.Context, text string) ([]byte, error)
	Clone(ctx context.Context, text string, reference VoiceReference) ([]byte, error)
}
