package images

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"imagefinder/internal/history/service"
	"imagefinder/middleware"
	"imagefinder/pkg/logger"
)

type Handler struct {
	Client  *Client
	History *service.HistoryService
}

func NewHandler(client *Client, history *service.HistoryService) *Handler {
	return &Handler{Client: client, History: history}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		http.Error(w, "Missing query parameter", http.StatusBadRequest)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	results, err := h.Client.Search(query, page)
	if err != nil {
		logger.Sugar.Errorf("Image search failed for %q: %v", query, err)
		http.Error(w, "Failed to fetch images", http.StatusBadGateway)
		return
	}
	if results == nil {
		results = []Image{}
	}

	// Recording the term must never delay or fail the search itself.
	// An empty userID (no or invalid token) is skipped inside the service.
	userID := middleware.UserID(r.Context())
	go h.History.RecordSearch(userID, query, time.Now())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
