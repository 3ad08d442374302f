package grounding

// Categories maps a category name to the substrings that mark a query
// as needing live data. The lists are hand-tuned and deployments are
// expected to adjust them; the matcher treats them as opaque data.
var Categories = map[string][]string{
	"temporal": {
		"today", "yesterday", "last night", "this morning", "this afternoon", "latest", "breaking",
		"update", "updated", "just now", "recent", "right now", "this week", "this month", "tonight", "live",
	},
	"sports": {
		"roster", "lineup", "starters", "injury", "score", "result", "schedule", "game", "match",
		"season", "standings", "transfer", "coach", "manager", "record", "playoffs", "final", "cup",
	},
	"leagues": {
		"nba", "euroleague", "epl", "premier league", "la liga", "mlb", "nfl", "nhl", "ucl",
		"champions league", "euros", "ncaa", "serie a", "bundesliga", "ligue 1", "f1", "formula 1", "motogp",
	},
	"teams": {
		"lakers", "warriors", "celtics", "mavericks", "real madrid", "barcelona", "olympiacos",
		"panathinaikos", "fenerbahce", "maccabi", "man city", "arsenal", "liverpool", "bayern",
		"psg", "juventus", "inter", "milan",
	},
	"finance": {
		"stock", "stocks", "dividend", "earnings", "eps", "guidance", "nasdaq", "dow", "s&p 500",
		"premarket", "after-hours", "ticker", "sec filing", "10-k", "10q", "ipo", "halt", "resume trading",
	},
	"tech": {
		"latest version", "release notes", "changelog", "patch notes", "security advisory", "cve",
		"vulnerability", "outage", "status page", "incident", "downtime",
	},
	"weather": {
		"weather", "forecast", "temperature", "rain", "snow", "storm", "hurricane", "tornado",
		"earthquake", "wildfire", "flood", "heatwave", "aqi", "tsunami",
	},
	"transport": {
		"flight", "flight status", "delayed", "train", "subway", "metro", "traffic", "road closure",
		"ferry", "airport",
	},
	"politics": {
		"election", "vote", "polls", "results", "ballot", "referendum", "candidate", "debate",
		"coalition", "turnout",
	},
	"entertainment": {
		"box office", "premiere", "release date", "episode", "season", "cast change", "trailer",
		"setlist", "tour dates",
	},
	"shopping": {
		"in stock", "restock", "availability", "preorder", "price drop", "deal", "discount", "coupon",
	},
}

// symbolBlacklist filters ticker candidates: common words plus the
// abbreviations already handled by ExpandAbbreviations.
var symbolBlacklist = map[string]struct{}{
	"the": {}, "and": {}, "you": {}, "are": {}, "with": {}, "this": {}, "that": {}, "about": {},
	"is": {}, "it": {}, "to": {}, "for": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"how": {}, "what": {}, "why": {}, "where": {}, "when": {}, "should": {}, "will": {}, "can": {},
	"do": {}, "does": {}, "did": {}, "be": {}, "am": {}, "was": {}, "were": {},
	"price": {}, "token": {}, "coin": {}, "dman": {}, "dao": {}, "man": {},
	"lal": {}, "gsw": {}, "bos": {}, "dal": {}, "nba": {}, "ucl": {}, "epl": {}, "f1": {},
}

// abbreviations expands shorthand that search providers resolve poorly.
var abbreviations = []struct{ short, full string }{
	{"LAL", "Los Angeles Lakers"},
	{"GSW", "Golden State Warriors"},
	{"BOS", "Boston Celtics"},
	{"DAL", "Dallas Mavericks"},
	{"UCL", "UEFA Champions League"},
	{"EPL", "English Premier League"},
	{"S&P", "S&P 500"},
	{"DJIA", "Dow Jones Industrial Average"},
}
