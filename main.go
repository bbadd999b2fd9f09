package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/alpineair/concierge/internal/agent"
	"github.com/alpineair/concierge/internal/config"
	"github.com/alpineair/concierge/internal/conversation"
	"github.com/alpineair/concierge/internal/llm"
	"github.com/alpineair/concierge/internal/policy"
	"github.com/alpineair/concierge/internal/retrieval"
	"github.com/alpineair/concierge/internal/router"
	"github.com/alpineair/concierge/internal/store"
	"github.com/alpineair/concierge/internal/tools"
	handler "github.com/alpineair/concierge/internal/transport/http"
	"github.com/alpineair/concierge/internal/transport/ws"
	"github.com/alpineair/concierge/internal/websearch"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting concierge assistant...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Primary LLM: %s (%s)", cfg.PrimaryLLMURL, cfg.PrimaryLLMModel)

	// Initialize travel inventory
	db, err := store.NewTravelStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize LLM clients: tool selection, primary generation, refiner
	routerLLM := llm.NewClient(cfg.RouterLLMURL, cfg.RouterLLMAPIKey, cfg.RouterLLMModel, cfg.LLMTimeout)
	primaryLLM := llm.NewClient(cfg.PrimaryLLMURL, "", cfg.PrimaryLLMModel, cfg.LLMTimeout)
	var refinerLLM *llm.Client
	if cfg.RefinerLLMURL != "" {
		refinerLLM = llm.NewClient(cfg.RefinerLLMURL, cfg.RefinerLLMAPIKey, cfg.RefinerLLMModel, cfg.LLMTimeout)
	}

	// Initialize policy FAQ retriever; a failed initialization degrades
	// lookups to a fixed unavailable message instead of failing startup.
	ctx := context.Background()
	faq := retrieval.FetchFAQ(cfg.FAQURL, cfg.FetchTimeout)
	retriever, err := retrieval.NewRetriever(ctx, routerLLM, cfg.EmbeddingModel, faq)
	if err != nil {
		log.Printf("ERROR: failed to initialize policy retriever: %v", err)
		retriever = nil
	}

	// Initialize booking authorization engine
	authEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize web search (nil when unconfigured; degrades to a mock)
	webClient := websearch.NewClient(cfg.WebSearchURL, cfg.WebSearchAPIKey, cfg.FetchTimeout)

	// Wire the pipeline
	registry := tools.NewRegistry(db, retriever, webClient, authEngine, cfg.PolicyTopK)
	intentRouter := router.New(registry)
	opts := agent.GenOptions{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}

	var refinerCompleter agent.Completer
	if refinerLLM != nil {
		refinerCompleter = refinerLLM
	}
	primary := agent.NewPrimary(intentRouter, primaryLLM, refinerCompleter, opts, cfg.UseRefinement)

	specialists := map[string]conversation.Responder{
		"flight":    agent.NewFlightSpecialist(routerLLM, primaryLLM, registry, opts),
		"hotel":     agent.NewHotelSpecialist(routerLLM, primaryLLM, registry, opts),
		"car":       agent.NewCarSpecialist(routerLLM, primaryLLM, registry, opts),
		"excursion": agent.NewGeneric("Excursion Query", primary),
	}

	manager := conversation.NewManager()

	// Initialize handlers
	h := handler.NewHandler(manager, primary, specialists, cfg.DefaultPassengerID)
	wsServer := ws.NewServer(manager, primary)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(e)
	e.GET("/ws", wsServer.HandleWebSocket)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Concierge API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down concierge...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Concierge stopped")
}
