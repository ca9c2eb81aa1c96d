package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nidaan-triage/internal/audit"
	"nidaan-triage/internal/config"
	"nidaan-triage/internal/core"
	httpserver "nidaan-triage/internal/http"
	"nidaan-triage/internal/llm"
	"nidaan-triage/internal/messaging"
	"nidaan-triage/internal/translate"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// AI client is the one fatal dependency; everything else degrades.
	llmClient, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout, cfg.AITemperature)
	if err != nil {
		log.Fatalf("failed to construct AI client: %v", err)
	}

	// Translation adapter: real client when configured, no-op otherwise.
	var translator translate.Service
	if cfg.TranslationEnabled() {
		translator = translate.NewSarvamClient(cfg.SarvamAPIKey, cfg.SarvamAPIURL, cfg.TranslateTimeout)
		log.Println("translation service enabled")
	} else {
		translator = translate.Noop{}
		log.Println("SARVAM_API_KEY not set - translation disabled")
	}

	messenger := messaging.NewWhatsAppSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
	if messenger.Enabled() {
		log.Println("WhatsApp messaging enabled")
	}

	// Audit ledger: Postgres when DATABASE_URL is set, in-memory otherwise.
	ledger, backend, err := buildLedger(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to initialize audit ledger: %v", err)
	}
	log.Printf("audit ledger backend: %s", backend)

	pipeline := &core.Pipeline{
		LLM:             llmClient,
		Translator:      translator,
		Messenger:       messenger,
		Ledger:          ledger,
		ConsentRequired: cfg.ConsentRequired,
		MultiLanguage:   cfg.TranslationEnabled(),
		WhatsAppEnabled: messenger.Enabled(),
		RetentionDays:   cfg.DataRetentionDays,
	}

	srv := httpserver.NewServer(pipeline, translator, ledger, backend)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on :%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

// buildLedger selects and initializes the audit backend.
func buildLedger(databaseURL string) (audit.Ledger, string, error) {
	if databaseURL == "" {
		return audit.NewMemoryLedger(), "memory", nil
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, "", err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, "", err
	}
	if err := audit.Migrate(ctx, db); err != nil {
		return nil, "", err
	}
	return audit.NewPostgresLedger(db), "postgres", nil
}
