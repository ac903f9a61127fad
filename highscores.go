package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

const (
	maxHighScores      = 100
	defaultScoresTitle = "HIGH SCORES"
	scoreFlushInterval = time.Second
	scoreFlushBatch    = 50
)

// settings keys for the table metadata
const (
	settingScoresTitle  = "highscores_title"
	settingScoresStart  = "highscores_start"
	settingScoresEnd    = "highscores_end"
	settingScoresPrizes = "highscores_prizes"
)

// HighScoreEntry is one row of the persistent table
type HighScoreEntry struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Wallet   string `json:"ethereumAddress"`
	Position int    `json:"position"`
}

// HighScoreMeta describes the competition the table belongs to
type HighScoreMeta struct {
	Title     string          `json:"title"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	Prizes    json.RawMessage `json:"prizes"`
}

// HighScoreTable is the client-facing form of the table
type HighScoreTable struct {
	HighScoreMeta
	Scores []HighScoreEntry `json:"scores"`
}

// HighScores keeps the top table in memory and persists submissions from a
// background writer, so callers on the tick path never wait on disk.
type HighScores struct {
	db    *DB
	limit int

	mu     sync.RWMutex
	meta   HighScoreMeta
	scores []HighScoreEntry

	writes chan HighScoreRow
	clears chan chan error
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewHighScores loads the stored table and starts the writer. db may be nil,
// in which case the table lives in memory only.
func NewHighScores(db *DB, limit int) (*HighScores, error) {
	if limit <= 0 {
		limit = maxHighScores
	}
	h := &HighScores{
		db:     db,
		limit:  limit,
		writes: make(chan HighScoreRow, 256),
		clears: make(chan chan error),
		stop:   make(chan struct{}),
	}
	h.meta = h.loadMeta(time.Now().UTC())

	if db != nil {
		rows, err := db.TopHighScores(limit)
		if err != nil {
			return nil, fmt.Errorf("load high scores: %w", err)
		}
		for _, r := range rows {
			h.scores = append(h.scores, HighScoreEntry{Name: r.Name, Score: r.Score, Wallet: r.Wallet})
		}
		h.renumber()
	}

	h.wg.Add(1)
	go h.writer()
	return h, nil
}

func (h *HighScores) loadMeta(now time.Time) HighScoreMeta {
	meta := HighScoreMeta{
		Title:     defaultScoresTitle,
		StartDate: now,
		EndDate:   now.AddDate(1, 0, 0),
		Prizes:    json.RawMessage("[]"),
	}
	if h.db == nil {
		return meta
	}

	if v := h.db.GetSetting(settingScoresTitle); v != "" {
		meta.Title = v
	}
	if t, err := time.Parse(time.RFC3339, h.db.GetSetting(settingScoresStart)); err == nil {
		meta.StartDate = t
	}
	if t, err := time.Parse(time.RFC3339, h.db.GetSetting(settingScoresEnd)); err == nil {
		meta.EndDate = t
	}
	if v := h.db.GetSetting(settingScoresPrizes); v != "" && json.Valid([]byte(v)) {
		meta.Prizes = json.RawMessage(v)
	}

	// Pin the defaults so the competition window survives restarts
	if err := h.persistMeta(meta); err != nil {
		log.Printf("highscores: could not persist metadata: %v", err)
	}
	return meta
}

func (h *HighScores) persistMeta(meta HighScoreMeta) error {
	if h.db == nil {
		return nil
	}
	kv := [][2]string{
		{settingScoresTitle, meta.Title},
		{settingScoresStart, meta.StartDate.Format(time.RFC3339)},
		{settingScoresEnd, meta.EndDate.Format(time.RFC3339)},
		{settingScoresPrizes, string(meta.Prizes)},
	}
	for _, p := range kv {
		if err := h.db.SetSetting(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

// Submit records a finished run. Only runs with a valid wallet qualify, and
// only if they beat the last row or the table still has room. A score that
// ties an existing row goes below it. Returns true if the table changed.
func (h *HighScores) Submit(name, wallet string, score int) bool {
	if !ValidWallet(wallet) {
		return false
	}

	h.mu.Lock()
	idx := sort.Search(len(h.scores), func(i int) bool {
		return score > h.scores[i].Score
	})
	if idx == len(h.scores) && len(h.scores) >= h.limit {
		h.mu.Unlock()
		return false
	}
	entry := HighScoreEntry{Name: name, Score: score, Wallet: wallet}
	h.scores = append(h.scores, HighScoreEntry{})
	copy(h.scores[idx+1:], h.scores[idx:])
	h.scores[idx] = entry
	if len(h.scores) > h.limit {
		h.scores = h.scores[:h.limit]
	}
	h.renumber()
	h.mu.Unlock()

	select {
	case h.writes <- HighScoreRow{Name: name, Score: score, Wallet: wallet, CreatedAt: time.Now().UTC()}:
	default:
		// Writer is backed up; the in-memory table is still correct
		log.Printf("highscores: write queue full, dropping %s (%d)", wallet, score)
	}
	return true
}

func (h *HighScores) renumber() {
	for i := range h.scores {
		h.scores[i].Position = i + 1
	}
}

// Table returns a copy of the current table
func (h *HighScores) Table() HighScoreTable {
	h.mu.RLock()
	defer h.mu.RUnlock()
	scores := make([]HighScoreEntry, len(h.scores))
	copy(scores, h.scores)
	return HighScoreTable{HighScoreMeta: h.meta, Scores: scores}
}

// SetMeta replaces the competition metadata
func (h *HighScores) SetMeta(meta HighScoreMeta) error {
	if meta.Title == "" {
		meta.Title = defaultScoresTitle
	}
	if len(meta.Prizes) == 0 {
		meta.Prizes = json.RawMessage("[]")
	}
	if !json.Valid(meta.Prizes) {
		return errors.New("prizes must be valid JSON")
	}
	if !meta.EndDate.After(meta.StartDate) {
		return errors.New("end date must be after start date")
	}
	if err := h.persistMeta(meta); err != nil {
		return err
	}
	h.mu.Lock()
	h.meta = meta
	h.mu.Unlock()
	return nil
}

// Clear empties the table. Submissions still queued for the writer are
// discarded with it.
func (h *HighScores) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scores = nil

	done := make(chan error, 1)
	select {
	case h.clears <- done:
		return <-done
	case <-h.stop:
		return h.clearDB()
	}
}

func (h *HighScores) clearDB() error {
	if h.db == nil {
		return nil
	}
	return h.db.ClearHighScores()
}

// Stop flushes pending writes and shuts the writer down
func (h *HighScores) Stop() {
	close(h.stop)
	h.wg.Wait()
}

func (h *HighScores) writer() {
	defer h.wg.Done()

	batch := make([]HighScoreRow, 0, scoreFlushBatch)
	ticker := time.NewTicker(scoreFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case row := <-h.writes:
			batch = append(batch, row)
			if len(batch) >= scoreFlushBatch {
				h.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				h.flush(batch)
				batch = batch[:0]
			}
		case done := <-h.clears:
			batch = batch[:0]
		discard:
			for {
				select {
				case <-h.writes:
				default:
					break discard
				}
			}
			done <- h.clearDB()
		case <-h.stop:
		drain:
			for {
				select {
				case row := <-h.writes:
					batch = append(batch, row)
				default:
					break drain
				}
			}
			if len(batch) > 0 {
				h.flush(batch)
			}
			return
		}
	}
}

func (h *HighScores) flush(rows []HighScoreRow) {
	if h.db == nil || len(rows) == 0 {
		return
	}
	if err := h.db.InsertHighScores(rows, h.limit); err != nil {
		log.Printf("highscores: write %d rows: %v", len(rows), err)
	}
}
