package service

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"imagefinder/internal/history/model"
	"imagefinder/internal/history/repository"
	"imagefinder/pkg/logger"
	"imagefinder/socket"
)

var (
	// ErrFeatureUnavailable means the search_history table is missing or
	// inaccessible. Both collapse to the same caller-visible outcome; they
	// are only distinguished in the logs.
	ErrFeatureUnavailable = errors.New("search history is unavailable")
	// ErrNotAuthenticated is returned by read paths when there is no
	// principal. The write path treats a missing principal as a no-op.
	ErrNotAuthenticated = errors.New("user not authenticated")
)

const (
	historyLimit   = 20
	trendingWindow = 100
	trendingLimit  = 5
)

type HistoryService struct {
	Repo *repository.HistoryRepository
	Hub  *socket.Hub // nil disables live updates

	mu        sync.Mutex
	available bool
}

func NewHistoryService(repo *repository.HistoryRepository, hub *socket.Hub) *HistoryService {
	return &HistoryService{Repo: repo, Hub: hub}
}

// Normalize lower-cases and trims a raw search term. Terms are stored and
// tallied in this form only.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ensureAvailable probes the table on first use and caches success for the
// lifetime of the service. Failures are never cached: a table created or a
// grant fixed after startup heals on the next call without a restart.
func (s *HistoryService) ensureAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.available {
		return true
	}

	err := s.Repo.Probe()
	switch {
	case err == nil:
		s.available = true
		return true
	case errors.Is(err, repository.ErrTableMissing):
		logger.Sugar.Warn("search_history table does not exist; history features disabled")
		return false
	case errors.Is(err, repository.ErrAccessDenied):
		logger.Sugar.Warn("search_history table is not accessible; history features disabled")
		return false
	default:
		logger.Sugar.Errorf("search_history availability probe failed: %v", err)
		return false
	}
}

// RecordSearch appends one search event for userID. It never surfaces
// failure: history logging is a side channel and must not interrupt the
// search the user is running. Unauthenticated and empty-after-normalization
// searches are skipped silently.
func (s *HistoryService) RecordSearch(userID, rawTerm string, searchedAt time.Time) {
	if !s.ensureAvailable() {
		logger.Sugar.Warn("Search history unavailable; search not recorded")
		return
	}
	if userID == "" {
		return
	}
	term := Normalize(rawTerm)
	if term == "" {
		return
	}

	rec, err := s.Repo.Insert(userID, term, searchedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to record search %q for user %s: %v", term, userID, err)
		return
	}
	s.notifyRecorded(rec)
}

// GetHistory returns the user's most recent searches, newest first,
// capped at 20.
func (s *HistoryService) GetHistory(userID string) ([]model.SearchRecord, error) {
	if !s.ensureAvailable() {
		return nil, ErrFeatureUnavailable
	}
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.Repo.RecentByUser(userID, historyLimit)
}

// GetTopTerms tallies the 100 most recently inserted records across all
// users and returns the 5 most frequent terms, highest count first. Full
// recompute on every call; only the availability probe is cached.
func (s *HistoryService) GetTopTerms() ([]model.TopTerm, error) {
	if !s.ensureAvailable() {
		return nil, ErrFeatureUnavailable
	}

	terms, err := s.Repo.RecentTerms(trendingWindow)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(terms))
	order := make([]string, 0, len(terms))
	for _, term := range terms {
		if counts[term] == 0 {
			order = append(order, term)
		}
		counts[term]++
	}

	top := make([]model.TopTerm, 0, len(order))
	for _, term := range order {
		top = append(top, model.TopTerm{Term: term, Count: counts[term]})
	}
	// Equal counts keep first-seen order from the recent-first scan.
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })

	if len(top) > trendingLimit {
		top = top[:trendingLimit]
	}
	return top, nil
}

// notifyRecorded pushes the new record to the owner's sockets and a fresh
// trending ranking to everyone.
func (s *HistoryService) notifyRecorded(rec model.SearchRecord) {
	if s.Hub == nil {
		return
	}

	recPayload, _ := json.Marshal(rec)
	s.Hub.Broadcast <- socket.WSMessage{
		Type:    socket.HistoryAppendType,
		UserID:  rec.UserID,
		Payload: recPayload,
	}

	top, err := s.GetTopTerms()
	if err != nil {
		logger.Sugar.Errorf("Failed to recompute trending terms: %v", err)
		return
	}
	topPayload, _ := json.Marshal(top)
	s.Hub.Broadcast <- socket.WSMessage{
		Type:    socket.TrendingUpdateType,
		Payload: topPayload,
	}
}
