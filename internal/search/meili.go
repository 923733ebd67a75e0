package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxPlayers = "roster_players"

// Meili implements Searcher and Indexer via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the players index.
// The caller should proceed without Meilisearch if the instance stays unhealthy;
// the background monitor reconfigures the index once it recovers.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxPlayers,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxPlayers, err)
	}

	index := m.client.Index(idxPlayers)
	filterable := []interface{}{"kingdom", "canMigrate"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs for %s: %v", idxPlayers, err)
	}
	searchable := []string{"nickname", "discordName", "ingameId", "kingdom"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxPlayers, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries the players index.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	sr := &meili.SearchRequest{
		Limit:                 limit,
		Offset:                int64(q.Offset),
		AttributesToHighlight: []string{"*"},
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
	}

	var filters []string
	if q.FilterKingdom != "" {
		filters = append(filters, fmt.Sprintf("kingdom = %q", q.FilterKingdom))
	}
	if q.FilterMigration != "" {
		filters = append(filters, fmt.Sprintf("canMigrate = %q", q.FilterMigration))
	}
	if len(filters) > 0 {
		sr.Filter = filters
	}

	resp, err := m.client.Index(idxPlayers).Search(q.Text, sr)
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	var results []Result
	for _, hit := range resp.Hits {
		results = append(results, hitToResult(hit))
	}
	return results, int(resp.EstimatedTotalHits), nil
}

// IndexPlayer adds or replaces one player document.
func (m *Meili) IndexPlayer(p PlayerRecord) error {
	_, err := m.client.Index(idxPlayers).AddDocuments([]PlayerRecord{p}, nil)
	if err != nil {
		return fmt.Errorf("index player %s: %w", p.ID, err)
	}
	return nil
}

// IndexPlayers adds or replaces a batch of player documents.
func (m *Meili) IndexPlayers(players []PlayerRecord) error {
	_, err := m.client.Index(idxPlayers).AddDocuments(players, nil)
	if err != nil {
		return fmt.Errorf("index players: %w", err)
	}
	return nil
}

// DeletePlayer removes one player document from the index.
func (m *Meili) DeletePlayer(id string) error {
	_, err := m.client.Index(idxPlayers).DeleteDocument(id, nil)
	if err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	return nil
}

func hitToResult(hit meili.Hit) Result {
	r := Result{
		ID:          decodeString(hit, "id"),
		DiscordName: decodeString(hit, "discordName"),
		IngameID:    decodeString(hit, "ingameId"),
		Kingdom:     decodeString(hit, "kingdom"),
		CanMigrate:  decodeString(hit, "canMigrate"),
		TotalPoints: decodeInt(hit, "totalPoints"),
	}
	r.Nickname = firstNonBlank(decodeFormattedString(hit, "nickname"), decodeString(hit, "nickname"))
	r.Snippet = decodeFormattedString(hit, "discordName")
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeInt(hit meili.Hit, key string) int64 {
	raw, ok := hit[key]
	if !ok {
		return 0
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	return 0
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
