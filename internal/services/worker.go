package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/repositories"
)

const (
	pollBatchSize = 10
	queueSize     = 100
)

// Worker indexes uploaded resumes in the background.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueCandidate(candidateID uuid.UUID)
}

type WorkerOptions struct {
	Concurrency  int
	PollInterval time.Duration
}

type worker struct {
	candidateRepo repositories.CandidateRepository
	storage       StorageService
	parser        DocumentParser
	indexer       CandidateIndexer
	log           *zap.Logger

	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewWorker(
	candidateRepo repositories.CandidateRepository,
	storage StorageService,
	parser DocumentParser,
	indexer CandidateIndexer,
	opts WorkerOptions,
	log *zap.Logger,
) Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}

	return &worker{
		candidateRepo: candidateRepo,
		storage:       storage,
		parser:        parser,
		indexer:       indexer,
		log:           logger.OrNop(log).Named("index-worker"),
		jobQueue:      make(chan uuid.UUID, queueSize),
		concurrency:   opts.Concurrency,
		pollInterval:  opts.PollInterval,
		stopChan:      make(chan struct{}),
		inFlight:      make(map[uuid.UUID]struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting index worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollUnindexed(ctx)
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping index worker")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("index worker stopped")
	})
}

// EnqueueCandidate schedules indexing unless the candidate is already queued.
// It never blocks: with a full queue the candidate is left to the poller.
func (w *worker) EnqueueCandidate(candidateID uuid.UUID) {
	w.mu.Lock()
	if _, ok := w.inFlight[candidateID]; ok {
		w.mu.Unlock()
		return
	}
	w.inFlight[candidateID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.jobQueue <- candidateID:
		w.log.Debug("candidate enqueued", zap.String("candidate_id", candidateID.String()))
	case <-w.stopChan:
		w.release(candidateID)
		w.log.Warn("worker stopped, cannot enqueue candidate", zap.String("candidate_id", candidateID.String()))
	default:
		w.release(candidateID)
		w.log.Debug("index queue full, leaving candidate to the poller", zap.String("candidate_id", candidateID.String()))
	}
}

func (w *worker) release(candidateID uuid.UUID) {
	w.mu.Lock()
	delete(w.inFlight, candidateID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case candidateID := <-w.jobQueue:
			if err := w.indexCandidate(ctx, candidateID); err != nil {
				log.Error("failed to index candidate",
					zap.String("candidate_id", candidateID.String()),
					zap.Error(err),
				)
			}
			w.release(candidateID)
		}
	}
}

func (w *worker) indexCandidate(ctx context.Context, candidateID uuid.UUID) error {
	candidate, err := w.candidateRepo.FindByID(candidateID)
	if err != nil {
		return err
	}
	if candidate.Indexed {
		return nil
	}

	data, err := w.storage.ReadFile(ctx, candidate.ResumeRef)
	if err != nil {
		return err
	}

	text, _, err := w.parser.ExtractText(candidate.ResumeRef, data)
	if err != nil {
		// Nothing to embed; mark it so the poller stops returning it.
		w.log.Warn("resume not indexable",
			zap.String("candidate_id", candidateID.String()),
			zap.Error(err),
		)
		return w.candidateRepo.MarkIndexed(candidateID)
	}

	if err := w.indexer.IndexCandidate(ctx, candidate, text); err != nil {
		return err
	}

	return w.candidateRepo.MarkIndexed(candidateID)
}

func (w *worker) pollUnindexed(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			candidates, err := w.candidateRepo.FindUnindexed(pollBatchSize)
			if err != nil {
				w.log.Warn("failed to fetch unindexed candidates", zap.Error(err))
				continue
			}

			if len(candidates) > 0 {
				w.log.Debug("found unindexed candidates", zap.Int("count", len(candidates)))
			}

			for _, c := range candidates {
				w.EnqueueCandidate(c.ID)
			}
		}
	}
}
