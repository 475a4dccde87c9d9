package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"hrai/recruiter/internal/config"
	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/repositories"
	"hrai/recruiter/internal/services"
)

// Rebuilds the candidate index from every stored resume.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	candidateRepo := repositories.NewCandidateRepository(db)

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, log)
	if err != nil {
		log.Fatal("failed to initialize gemini", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Fatal("failed to initialize qdrant", zap.Error(err))
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatal("failed to initialize collection", zap.Error(err))
	}

	storage, err := config.InitStorage(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}

	parser := services.NewDocumentParser()
	indexer := services.NewCandidateIndexer(geminiService, qdrantService, services.NewTextChunker(), log)

	candidates, err := candidateRepo.FindAll()
	if err != nil {
		log.Fatal("failed to list candidates", zap.Error(err))
	}

	successCount := 0
	failCount := 0

	for i := range candidates {
		c := &candidates[i]
		clog := log.With(
			zap.String("candidate_id", c.ID.String()),
			zap.String("file", c.OriginalFilename),
		)

		data, err := storage.ReadFile(ctx, c.ResumeRef)
		if err != nil {
			clog.Error("failed to read resume", zap.Error(err))
			failCount++
			continue
		}

		text, _, err := parser.ExtractText(c.ResumeRef, data)
		if err != nil {
			clog.Warn("resume not parseable, skipping", zap.Error(err))
			failCount++
			continue
		}

		if err := indexer.IndexCandidate(ctx, c, text); err != nil {
			clog.Error("failed to index candidate", zap.Error(err))
			failCount++
			continue
		}

		if err := candidateRepo.MarkIndexed(c.ID); err != nil {
			clog.Error("failed to mark candidate indexed", zap.Error(err))
			failCount++
			continue
		}

		successCount++
	}

	log.Info("reindex complete",
		zap.Int("total", len(candidates)),
		zap.Int("indexed", successCount),
		zap.Int("failed", failCount),
	)

	if failCount > 0 {
		os.Exit(1)
	}
}
