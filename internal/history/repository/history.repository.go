package repository

import (
	"database/sql"
	"errors"
	"time"

	"imagefinder/internal/history/model"
	"imagefinder/pkg/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ErrTableMissing means the search_history table has not been created yet.
	ErrTableMissing = errors.New("search_history table does not exist")
	// ErrAccessDenied means the database role cannot read the table.
	ErrAccessDenied = errors.New("access to search_history denied")
)

type HistoryRepository struct {
	DB *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

// Probe checks that the search_history table exists and is readable.
// An empty table is a successful probe.
func (r *HistoryRepository) Probe() error {
	var id string
	err := r.DB.QueryRow("SELECT id FROM search_history LIMIT 1").Scan(&id)
	if err == nil || err == sql.ErrNoRows {
		return nil
	}
	return classify(err)
}

func (r *HistoryRepository) Insert(userID, term string, searchedAt time.Time) (model.SearchRecord, error) {
	rec := model.SearchRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Term:       term,
		SearchedAt: searchedAt,
	}
	err := r.DB.QueryRow(`INSERT INTO search_history (id, user_id, term, searched_at) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		rec.ID, rec.UserID, rec.Term, rec.SearchedAt).Scan(&rec.RecordedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert search record for user %s: %v", userID, err)
		return model.SearchRecord{}, classify(err)
	}
	return rec, nil
}

func (r *HistoryRepository) RecentByUser(userID string, limit int) ([]model.SearchRecord, error) {
	rows, err := r.DB.Query(`SELECT id, user_id, term, searched_at, created_at FROM search_history WHERE user_id = $1 ORDER BY searched_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		logger.Sugar.Errorf("Failed to get search history for user %s: %v", userID, err)
		return nil, classify(err)
	}
	defer rows.Close()

	var records []model.SearchRecord
	for rows.Next() {
		var rec model.SearchRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Term, &rec.SearchedAt, &rec.RecordedAt); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentTerms returns the terms of the most recently inserted records,
// newest first. Insertion order (created_at), not searched_at, so the
// trending window reflects what the store actually received last.
func (r *HistoryRepository) RecentTerms(limit int) ([]string, error) {
	rows, err := r.DB.Query(`SELECT term FROM search_history ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		logger.Sugar.Errorf("Failed to get recent search terms: %v", err)
		return nil, classify(err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			continue
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// classify maps Postgres error codes onto the store's error taxonomy so the
// service can tell a missing table from a permissions problem.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P01": // undefined_table
			return ErrTableMissing
		case "42501": // insufficient_privilege
			return ErrAccessDenied
		}
	}
	return err
}
