// Package grounding classifies free-text queries: does answering need
// live external data, and which coin symbols or contract addresses does
// the text mention. Everything here is pure and never fails; an empty
// query classifies as not needing data.
package grounding

import (
	"regexp"
	"strings"
)

var (
	yearRe     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	monthDayRe = regexp.MustCompile(`\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\s+\d{1,2}(?:,\s*\d{4})?\b`)
	slashDayRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)

	// EVM addresses or base58-looking strings (Solana mints and the like).
	contractRe = regexp.MustCompile(`\b(0x[a-fA-F0-9]{40}|[1-9A-HJ-NP-Za-km-z]{32,44})\b`)
	wordRe     = regexp.MustCompile(`(?i)\b[a-z0-9.+-]{2,10}\b`)
)

// NeedsExternalData reports whether a query likely requires live web
// grounding. Biased toward over-triggering: a false positive wastes one
// search call, a false negative yields a stale answer.
func NeedsExternalData(query string) bool {
	s := strings.ToLower(query)
	if s == "" {
		return false
	}

	for _, keywords := range Categories {
		if containsAny(s, keywords) {
			return true
		}
	}

	if yearRe.MatchString(s) || monthDayRe.MatchString(s) || slashDayRe.MatchString(s) {
		return true
	}

	return strings.Contains(s, "who won") || strings.HasPrefix(s, "what happened")
}

// Candidates holds extracted lookup candidates in order of first appearance.
type Candidates struct {
	Symbols   []string
	Contracts []string
}

// ExtractCandidates pulls at most 2 contract addresses and 5 ticker-like
// tokens out of a query. Duplicates are dropped, stopwords filtered.
func ExtractCandidates(query string) Candidates {
	var c Candidates

	seenContracts := make(map[string]struct{})
	for _, m := range contractRe.FindAllString(query, -1) {
		if _, ok := seenContracts[m]; ok {
			continue
		}
		seenContracts[m] = struct{}{}
		c.Contracts = append(c.Contracts, m)
		if len(c.Contracts) == 2 {
			break
		}
	}

	seenSymbols := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(query, -1) {
		w = strings.TrimRight(w, ".")
		lower := strings.ToLower(w)
		if lower == "" {
			continue
		}
		if _, blocked := symbolBlacklist[lower]; blocked {
			continue
		}
		if _, ok := seenSymbols[lower]; ok {
			continue
		}
		seenSymbols[lower] = struct{}{}
		c.Symbols = append(c.Symbols, lower)
		if len(c.Symbols) == 5 {
			break
		}
	}

	return c
}

type abbrevRule struct {
	re   *regexp.Regexp
	full string
}

var abbrevRules = func() []abbrevRule {
	rules := make([]abbrevRule, 0, len(abbreviations))
	for _, a := range abbreviations {
		rules = append(rules, abbrevRule{
			re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(a.short) + `\b`),
			full: a.full,
		})
	}
	return rules
}()

// ExpandAbbreviations rewrites known shorthand (team, league and index
// abbreviations) to full names for better search recall. Idempotent.
func ExpandAbbreviations(query string) string {
	s := query
	lower := strings.ToLower(s)
	for _, r := range abbrevRules {
		// Skip rules whose expansion is already present, e.g. "S&P 500".
		if strings.Contains(lower, strings.ToLower(r.full)) {
			continue
		}
		s = r.re.ReplaceAllString(s, r.full)
	}
	return s
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
