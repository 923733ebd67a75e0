package search

// Result is a single player hit returned to the caller.
type Result struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	DiscordName string `json:"discordName"`
	IngameID    string `json:"ingameId"`
	Kingdom     string `json:"kingdom"`
	TotalPoints int64  `json:"totalPoints"`
	CanMigrate  string `json:"canMigrate"`
	Snippet     string `json:"snippet,omitempty"`
}

// Query describes a roster search request.
type Query struct {
	Text            string
	FilterKingdom   string
	FilterMigration string // empty = any status
	Limit           int
	Offset          int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search over the roster.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push players into a search index.
type Indexer interface {
	IndexPlayer(p PlayerRecord) error
	DeletePlayer(id string) error
}

// PlayerRecord is the data we index for a player.
type PlayerRecord struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	DiscordName string `json:"discordName"`
	IngameID    string `json:"ingameId"`
	Kingdom     string `json:"kingdom"`
	TotalPoints int64  `json:"totalPoints"`
	CanMigrate  string `json:"canMigrate"`
}
