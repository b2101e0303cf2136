package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/mindweave/internal/adapters/http"
	"github.com/PabloGalante/mindweave/internal/adapters/llm"
	"github.com/PabloGalante/mindweave/internal/adapters/storage"
	firestorestore "github.com/PabloGalante/mindweave/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/mindweave/internal/adapters/storage/memory"
	"github.com/PabloGalante/mindweave/internal/app/companion"
	"github.com/PabloGalante/mindweave/internal/app/journal"
	"github.com/PabloGalante/mindweave/internal/app/prefs"
	"github.com/PabloGalante/mindweave/internal/app/reports"
	"github.com/PabloGalante/mindweave/internal/app/selfsage"
	"github.com/PabloGalante/mindweave/internal/app/share"
	"github.com/PabloGalante/mindweave/internal/config"
	"github.com/PabloGalante/mindweave/internal/domain"
	"github.com/PabloGalante/mindweave/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MindWeave HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configFile)
			if err != nil {
				return err
			}
			observability.Configure(os.Stdout, cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := observability.Logger()

	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init llm client: %w", err)
	}
	log.Info("llm client ready", "provider", cfg.LLM.Provider)

	kv, closeKV, err := storage.OpenKV(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init %s storage: %w", cfg.Storage.Backend, err)
	}
	defer func() { _ = closeKV() }()
	log.Info("storage ready", "backend", cfg.Storage.Backend)

	// Chats live in Firestore in gcp mode and in memory otherwise.
	var (
		chatStore    domain.ChatStore
		messageStore domain.MessageStore
	)
	if fs, ok := kv.(*firestorestore.Store); ok {
		chatStore, messageStore = fs, fs
	} else {
		chatStore, messageStore = memstore.NewChatStore(), memstore.NewMessageStore()
	}

	publicURL, err := url.Parse(cfg.PublicURL)
	if err != nil {
		return fmt.Errorf("parse public_url: %w", err)
	}

	store := journal.NewStore(llmClient)
	defer store.Close()

	handler := httpadapter.NewServer(httpadapter.Deps{
		Journal:      store,
		Codec:        share.NewCodec(),
		PublicURL:    publicURL,
		Chats:        companion.NewService(llmClient, chatStore, messageStore),
		Sage:         selfsage.NewService(llmClient),
		Reports:      reports.NewService(llmClient),
		Onboarding:   prefs.NewOnboarding(kv),
		Affirmations: prefs.NewAffirmations(kv, llmClient),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("MindWeave API listening", "addr", srv.Addr, "mode", cfg.Mode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLLMClient(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:   cfg.LLM.APIKey,
			Project:  cfg.GCP.ProjectID,
			Location: cfg.GCP.Location,
			Model:    cfg.LLM.Model,
		})
	case "openai":
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
	default:
		return llm.NewMockLLM(), nil
	}
}
