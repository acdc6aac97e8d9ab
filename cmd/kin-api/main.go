package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/PabloGalante/kin-agent/internal/adapters/http"
	"github.com/PabloGalante/kin-agent/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/kin-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/kin-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/kin-agent/internal/app/conversation"
	"github.com/PabloGalante/kin-agent/internal/app/persona"
	"github.com/PabloGalante/kin-agent/internal/config"
	"github.com/PabloGalante/kin-agent/internal/domain"
	"github.com/PabloGalante/kin-agent/internal/observability"
)

func main() {
	log := observability.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	observability.SetLevel(cfg.LogLevel)

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		log.Error("error initializing LLM client", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}
	log.Info("LLM client ready", "provider", cfg.Provider, "model", cfg.ModelName)

	// Storage: Firestore or Memory
	var store domain.ConversationStore
	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info("using firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Error("error initializing Firestore store", "error", err)
			os.Exit(1)
		}
		defer fsStore.Close()
		store = fsStore
	default:
		log.Info("using in-memory storage")
		store = memstore.NewConversationStore()
	}

	svc := conversation.NewService(llmClient, store, persona.NewRegistry(),
		conversation.WithModel(cfg.ModelName),
		conversation.WithProvider(string(cfg.Provider)),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpadapter.NewServer(svc, cfg.Version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("kin API listening", "addr", srv.Addr, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func newLLMClient(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderMock:
		return llm.NewMockLLM(), nil
	case config.ProviderVertex:
		return llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation)
	case config.ProviderAnthropic:
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey), nil
	default:
		return llm.NewGroqClient(cfg.GroqAPIKey, llm.WithBaseURL(cfg.GroqBaseURL)), nil
	}
}
