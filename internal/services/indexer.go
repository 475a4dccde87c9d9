package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/models"
)

// Chunks fetched per requested candidate; several chunks of one resume
// usually rank close to each other.
const chunksPerResult = 5

type CandidateIndexer interface {
	IndexCandidate(ctx context.Context, candidate *models.Candidate, text string) error
	FindSimilar(ctx context.Context, jobID uuid.UUID, jobDescription string, limit int) ([]models.SimilarCandidate, error)
}

type candidateIndexer struct {
	gemini  GeminiService
	qdrant  QdrantService
	chunker TextChunker
	log     *zap.Logger
}

func NewCandidateIndexer(gemini GeminiService, qdrant QdrantService, chunker TextChunker, log *zap.Logger) CandidateIndexer {
	return &candidateIndexer{
		gemini:  gemini,
		qdrant:  qdrant,
		chunker: chunker,
		log:     logger.OrNop(log),
	}
}

// IndexCandidate replaces every stored chunk of the candidate's resume.
func (i *candidateIndexer) IndexCandidate(ctx context.Context, candidate *models.Candidate, text string) error {
	if err := i.qdrant.DeleteCandidate(ctx, candidate.ID); err != nil {
		return err
	}

	chunks := i.chunker.ChunkText(text, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		i.log.Info("resume has no text to index", zap.String("candidate_id", candidate.ID.String()))
		return nil
	}

	embeddings := make([][]float32, 0, len(chunks))
	for n, chunk := range chunks {
		embedding, err := i.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", n, err)
		}
		embeddings = append(embeddings, embedding)
	}

	if err := i.qdrant.UpsertChunks(ctx, candidate.ID, candidate.JobID, chunks, embeddings); err != nil {
		return err
	}

	i.log.Info("candidate indexed",
		zap.String("candidate_id", candidate.ID.String()),
		zap.Int("chunks", len(chunks)),
	)
	return nil
}

// FindSimilar ranks the job's candidates by their best matching resume chunk.
func (i *candidateIndexer) FindSimilar(ctx context.Context, jobID uuid.UUID, jobDescription string, limit int) ([]models.SimilarCandidate, error) {
	if limit <= 0 {
		limit = 10
	}

	embedding, err := i.gemini.GenerateEmbedding(ctx, jobDescription)
	if err != nil {
		return nil, err
	}

	matches, err := i.qdrant.Search(ctx, embedding, jobID, limit*chunksPerResult)
	if err != nil {
		return nil, err
	}

	return bestPerCandidate(matches, limit), nil
}

func bestPerCandidate(matches []ChunkMatch, limit int) []models.SimilarCandidate {
	best := make(map[uuid.UUID]models.SimilarCandidate)
	for _, m := range matches {
		if current, ok := best[m.CandidateID]; ok && current.Score >= m.Score {
			continue
		}
		best[m.CandidateID] = models.SimilarCandidate{
			CandidateID: m.CandidateID,
			Score:       m.Score,
			Snippet:     logger.Truncate(m.Text, 200),
		}
	}

	results := make([]models.SimilarCandidate, 0, len(best))
	for _, s := range best {
		results = append(results, s)
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].CandidateID.String() < results[b].CandidateID.String()
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
