// Command server wires the retrieval pipeline together and serves the
// support API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/0xcro3dile/faqdesk-go/internal/adapters/agent"
	"github.com/0xcro3dile/faqdesk-go/internal/adapters/audit"
	"github.com/0xcro3dile/faqdesk-go/internal/adapters/candidates"
	"github.com/0xcro3dile/faqdesk-go/internal/adapters/embedding"
	"github.com/0xcro3dile/faqdesk-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/faqdesk-go/internal/adapters/knowledge"
	"github.com/0xcro3dile/faqdesk-go/internal/adapters/loader"
	"github.com/0xcro3dile/faqdesk-go/internal/adapters/tickets"
	"github.com/0xcro3dile/faqdesk-go/internal/config"
	"github.com/0xcro3dile/faqdesk-go/internal/domain/ports"
	"github.com/0xcro3dile/faqdesk-go/internal/domain/usecases"
	httpserver "github.com/0xcro3dile/faqdesk-go/internal/infrastructure/http"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("[INFO] Loaded .env")
	}
	cfg := config.FromEnv()

	embedder := embedding.NewOllamaAdapter(cfg.OllamaURL, cfg.EmbedModel)
	kb := knowledge.NewMemoryStore()

	index, closeIndex, err := buildIndex(cfg, embedder)
	if err != nil {
		log.Fatalf("[ERROR] Creating candidate index: %v", err)
	}
	defer closeIndex()

	auditLog := audit.NewJSONLRecorder(cfg.AuditFile)
	ticketStore := tickets.NewCSVStore(cfg.TicketsFile)

	var enrichment ports.AgentService
	if cfg.EnrichmentEnabled {
		enrichment = agent.NewOllamaAgent(cfg.OllamaURL, cfg.AgentModel)
		log.Printf("[INFO] Agent enrichment enabled (model %s)", cfg.AgentModel)
	}

	ingestUC := usecases.NewIngestUseCase(loader.NewCSVLoader(), embedder, kb, index)
	decideUC := usecases.NewDecideUseCase(embedder, kb, index, enrichment, auditLog,
		cfg.Threshold, cfg.TopK, cfg.IndexTimeout)
	escalateUC := usecases.NewEscalateUseCase(ticketStore, auditLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	count, err := ingestUC.Ingest(ctx, cfg.FAQPath)
	if err != nil {
		log.Fatalf("[ERROR] Initial ingestion: %v", err)
	}
	if count == 0 {
		log.Printf("[WARN] Knowledge base is empty; every query will take the fallback path")
	} else {
		log.Printf("[INFO] Loaded %d FAQ entries from %s", count, cfg.FAQPath)
	}

	if cfg.WatchSource {
		if err := watchSource(ctx, cfg.FAQPath, ingestUC); err != nil {
			log.Printf("[WARN] Source watch disabled: %v", err)
		}
	}

	server := httpserver.NewServer(decideUC, escalateUC, ingestUC, cfg.FAQPath, cfg.JWTSecret, cfg.Addr)
	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[ERROR] Server: %v", err)
	}
}

// buildIndex selects the candidate index backend from the configured
// location: a redis:// URL picks Redis, anything else is a SQLite directory.
func buildIndex(cfg *config.Config, embedder ports.EmbeddingService) (ports.CandidateIndex, func(), error) {
	if strings.HasPrefix(cfg.IndexLocation, "redis://") {
		idx, err := candidates.NewRedisIndex(cfg.IndexLocation, embedder)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[INFO] Candidate index: redis at %s", cfg.IndexLocation)
		return idx, func() { idx.Close() }, nil
	}

	idx, err := candidates.NewSQLiteIndex(cfg.IndexLocation, embedder)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[INFO] Candidate index: sqlite under %s", cfg.IndexLocation)
	return idx, func() { idx.Close() }, nil
}

// watchSource re-ingests whenever the FAQ source file changes. The new
// snapshot is published atomically; in-flight requests keep the old one.
func watchSource(ctx context.Context, path string, ingestUC *usecases.IngestUseCase) error {
	watcher, err := filewatcher.NewFSNotifyWatcher()
	if err != nil {
		return err
	}

	events, err := watcher.Watch(ctx, path)
	if err != nil {
		watcher.Stop()
		return err
	}

	go func() {
		defer watcher.Stop()
		for range events {
			count, err := ingestUC.Ingest(ctx, path)
			if err != nil {
				log.Printf("[ERROR] Reload after source change: %v", err)
				continue
			}
			log.Printf("[INFO] Reloaded %d FAQ entries after source change", count)
		}
	}()

	log.Printf("[INFO] Watching %s for changes", path)
	return nil
}
