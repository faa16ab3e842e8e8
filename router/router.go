package router

import (
	"database/sql"
	"net/http"

	historyHandler "imagefinder/internal/history"
	"imagefinder/internal/history/repository"
	"imagefinder/internal/history/service"
	"imagefinder/internal/images"
	"imagefinder/middleware"
	"imagefinder/socket"
)

func Setup(db *sql.DB, hub *socket.Hub, imageClient *images.Client) http.Handler {
	mux := http.NewServeMux()

	// WebSocket: live trending/history updates for the dashboard.
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", middleware.RequireAuth(wsHandler))

	// REST API
	histRepo := repository.NewHistoryRepository(db)
	histService := service.NewHistoryService(histRepo, hub)
	histHandler := historyHandler.NewHistoryHandler(histService)
	imgHandler := images.NewHandler(imageClient, histService)

	// Image search works without a session; unauthenticated searches are
	// simply not recorded.
	mux.Handle("/api/images", middleware.ResolveUser(http.HandlerFunc(imgHandler.Search)))
	mux.Handle("/api/history", middleware.RequireAuth(http.HandlerFunc(histHandler.GetHistory)))
	mux.Handle("/api/history/top", http.HandlerFunc(histHandler.GetTopTerms))

	return middleware.CORSMiddleware(mux)
}
