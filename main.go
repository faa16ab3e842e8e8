package main

import (
	"net/http"
	"os"

	"imagefinder/config/database"
	"imagefinder/internal/images"
	"imagefinder/pkg/logger"
	"imagefinder/router"
	"imagefinder/socket"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env before the logger so LOG_LEVEL from the file is honored.
	envErr := godotenv.Load()

	logger.Init()
	defer logger.Log.Sync()

	if envErr != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect()
	defer db.Close()

	hub := socket.NewHub()
	go hub.Run()

	accessKey := os.Getenv("UNSPLASH_ACCESS_KEY")
	if accessKey == "" {
		logger.Sugar.Warn("UNSPLASH_ACCESS_KEY not set; image search requests will fail")
	}
	imageClient := images.NewClient(accessKey)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	logger.Sugar.Infof("ImageFinder backend listening on %s", addr)
	if err := http.ListenAndServe(addr, router.Setup(db, hub, imageClient)); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
