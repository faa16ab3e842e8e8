package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"imagefinder/internal/history/model"
	"imagefinder/internal/history/service"
	"imagefinder/middleware"
	"imagefinder/pkg/logger"
)

type HistoryHandler struct {
	Service *service.HistoryService
}

func NewHistoryHandler(svc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{Service: svc}
}

func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())

	records, err := h.Service.GetHistory(userID)
	if err != nil {
		writeServiceError(w, "Failed to load search history", err)
		return
	}
	if records == nil {
		records = []model.SearchRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func (h *HistoryHandler) GetTopTerms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	top, err := h.Service.GetTopTerms()
	if err != nil {
		writeServiceError(w, "Failed to load trending searches", err)
		return
	}
	if top == nil {
		top = []model.TopTerm{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(top)
}

func writeServiceError(w http.ResponseWriter, msg string, err error) {
	logger.Sugar.Errorf("%s: %v", msg, err)
	switch {
	case errors.Is(err, service.ErrFeatureUnavailable):
		http.Error(w, msg, http.StatusServiceUnavailable)
	case errors.Is(err, service.ErrNotAuthenticated):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	default:
		http.Error(w, "Database error", http.StatusInternalServerError)
	}
}
