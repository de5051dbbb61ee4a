package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-kiosk/wayfinder/internal/api"
	"github.com/campus-kiosk/wayfinder/internal/config"
	"github.com/campus-kiosk/wayfinder/internal/core"
	"github.com/campus-kiosk/wayfinder/internal/ingest"
	"github.com/campus-kiosk/wayfinder/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for offline spreadsheet ingestion
	ingestFile := flag.String("ingest", "", "Parse the given spreadsheet into the store and exit")
	flag.Parse()

	// Initialize the JSON document store
	dataStore, err := store.NewJSONStore(config.AppConfig.DataPath, config.AppConfig.GuidePath)
	if err != nil {
		log.Fatalf("Failed to initialize data store: %v", err)
	}

	parser := ingest.NewParser(dataStore)

	// Handle offline ingestion if the flag is set
	if *ingestFile != "" {
		log.Printf("Starting spreadsheet ingestion from %s...", *ingestFile)
		result := parser.ParseExcel(*ingestFile)
		if !result.Success {
			log.Fatalf("Spreadsheet ingestion failed: %s", result.Error)
		}
		for _, rowErr := range result.Errors {
			log.Printf("Ingestion warning: %s", rowErr)
		}
		log.Printf("Ingestion complete. Saved %d of %d rows. Exiting.", result.SavedCount, result.TotalRows)
		os.Exit(0)
	}

	// Initialize services
	pathFinder := core.NewPathFinder(dataStore)
	guideService := core.NewGuideService(dataStore)
	llmService := core.NewLLMService(dataStore)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(dataStore, parser, pathFinder, guideService, llmService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
