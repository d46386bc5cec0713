package model

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/soocke/pixel-scan-go/domain/decode"
)

// HistoryEntry aggregates repeated decodes of the same payload.
type HistoryEntry struct {
	Text      string    `json:"text"`
	Format    string    `json:"format"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// ResultHistory keeps the most recently seen distinct results. Safe for
// concurrent use.
type ResultHistory struct {
	mu    sync.Mutex
	cache *lru.Cache[string, HistoryEntry]
	total int
}

// NewResultHistory returns a history holding at most size distinct results.
func NewResultHistory(size int) (*ResultHistory, error) {
	if size <= 0 {
		size = 50
	}
	c, err := lru.New[string, HistoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &ResultHistory{cache: c}, nil
}

func historyKey(res decode.Result) string { return res.Format + "\x00" + res.Text }

// Add records res and reports whether its payload was new to the history.
func (h *ResultHistory) Add(res decode.Result) (HistoryEntry, bool) {
	if h == nil {
		return HistoryEntry{}, false
	}
	at := res.DecodedAt
	if at.IsZero() {
		at = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total++
	key := historyKey(res)
	e, ok := h.cache.Get(key)
	if !ok {
		e = HistoryEntry{Text: res.Text, Format: res.Format, FirstSeen: at}
	}
	e.Count++
	e.LastSeen = at
	h.cache.Add(key, e)
	return e, !ok
}

// Entries returns the history newest first.
func (h *ResultHistory) Entries() []HistoryEntry {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	vals := h.cache.Values()
	out := make([]HistoryEntry, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		out = append(out, vals[i])
	}
	return out
}

// Len returns the number of distinct results held.
func (h *ResultHistory) Len() int {
	if h == nil {
		return 0
	}
	return h.cache.Len()
}

// Total returns how many results were added, duplicates included.
func (h *ResultHistory) Total() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

// Clear drops all entries.
func (h *ResultHistory) Clear() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.cache.Purge()
	h.total = 0
	h.mu.Unlock()
}
