package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pawfect-mate/backend/internal/api"
	"github.com/pawfect-mate/backend/internal/config"
	"github.com/pawfect-mate/backend/internal/conversation"
	"github.com/pawfect-mate/backend/internal/corpus"
	"github.com/pawfect-mate/backend/internal/engine"
	"github.com/pawfect-mate/backend/internal/provider"
	"github.com/pawfect-mate/backend/internal/search"
	"github.com/pawfect-mate/backend/internal/storage"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "pawfect-mate")

	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		entry.Fatalf("Failed to load config: %v", err)
	}
	configureLogger(logger, cfg.Log)

	entry.Info("Starting Pawfect Mate API Service")

	// 2. Corpus
	if cfg.Corpus.URL != "" {
		fetcher := corpus.NewFetcher(cfg.Corpus, entry.WithField("component", "corpus_fetcher"))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Corpus.FetchTimeout)
		err := fetcher.Download(ctx, cfg.Corpus.URL, cfg.Corpus.Path)
		cancel()
		if err != nil {
			entry.Fatalf("Failed to download corpus: %v", err)
		}
	}

	// 3. Search Index (Memory)
	idx, err := corpus.LoadIndex(cfg.Corpus.Path,
		corpus.WithTextFields(cfg.Search.TextFields...),
		corpus.WithKeywordFields(cfg.Search.KeywordFields...),
		corpus.WithMarkupStripping(cfg.Corpus.StripMarkup),
		corpus.WithLogger(entry.WithField("component", "corpus")),
	)
	if err != nil {
		entry.Fatalf("Failed to build search index: %v", err)
	}
	retriever := search.NewRetriever(idx,
		search.WithDefaultK(cfg.Search.TopK),
		search.WithBoosts(cfg.Search.Boosts),
		search.WithLogger(entry.WithField("component", "retriever")),
	)

	// 4. LLM
	llm, err := provider.New(cfg.LLM)
	if err != nil {
		entry.Fatalf("Failed to initialize LLM provider: %v", err)
	}
	llm = provider.NewLimited(llm, cfg.LLM.MaxConcurrency, cfg.LLM.MinInterval,
		entry.WithField("component", "llm_limiter"))

	// 5. Storage
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		entry.Fatalf("Failed to initialize storage: %v", err)
	}

	// 6. Engine
	eng, err := engine.NewEngine(cfg, entry, retriever, llm, conversation.NewStore(), store)
	if err != nil {
		closeStorage(store, entry)
		entry.Fatalf("Failed to initialize engine: %v", err)
	}

	// 7. API Server
	server := api.NewServer(eng, entry)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	serveErr := make(chan error, 1)

	go func() {
		entry.WithFields(logrus.Fields{
			"addr":     cfg.Server.Addr,
			"provider": llm.Name(),
			"model":    provider.ModelName(llm),
		}).Info("Pawfect Mate API ready")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		entry.Info("Shutting down")
	case err := <-serveErr:
		closeStorage(store, entry)
		entry.Fatalf("HTTP server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		entry.WithError(err).Error("Error during shutdown")
	}

	// In-flight requests are done; flush and release the conversation store.
	closeStorage(store, entry)
}

func closeStorage(store storage.ConversationStorage, entry *logrus.Entry) {
	if err := store.Close(); err != nil {
		entry.WithError(err).Error("Failed to close storage")
	}
}

func configureLogger(logger *logrus.Logger, cfg config.LogConfig) {
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}
