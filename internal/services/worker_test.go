package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrai/recruiter/internal/models"
)

type workerFixture struct {
	repo    *memoryCandidateRepo
	storage *memoryStorage
	qdrant  *fakeQdrant
	worker  *worker
}

func newWorkerFixture(texts map[string]string) *workerFixture {
	f := &workerFixture{
		repo:    newMemoryCandidateRepo(),
		storage: newMemoryStorage(),
		qdrant:  newFakeQdrant(),
	}
	indexer := NewCandidateIndexer(&fakeGemini{}, f.qdrant, NewTextChunker(), nil)
	parser := refParser{storage: f.storage, texts: texts}
	f.worker = NewWorker(f.repo, f.storage, parser, indexer, WorkerOptions{
		Concurrency:  2,
		PollInterval: 20 * time.Millisecond,
	}, nil).(*worker)
	return f
}

func (f *workerFixture) addCandidate(t *testing.T, filename string) uuid.UUID {
	t.Helper()

	ref, err := f.storage.SaveFile(context.Background(), fileHeader(filename))
	require.NoError(t, err)

	c := &models.Candidate{ID: uuid.New(), JobID: uuid.New(), ResumeRef: ref, Status: models.StatusPending}
	require.NoError(t, f.repo.Create(c))
	return c.ID
}

func (f *workerFixture) indexed(id uuid.UUID) bool {
	c, err := f.repo.FindByID(id)
	return err == nil && c.Indexed
}

func TestWorkerIndexCandidate(t *testing.T) {
	f := newWorkerFixture(map[string]string{"alice.pdf": "Alice\nGo developer"})
	id := f.addCandidate(t, "alice.pdf")

	require.NoError(t, f.worker.indexCandidate(context.Background(), id))

	assert.True(t, f.indexed(id))
	assert.Equal(t, []string{"Alice\nGo developer"}, f.qdrant.upserted[id])

	// Already indexed candidates are skipped.
	f.qdrant.deleted = nil
	require.NoError(t, f.worker.indexCandidate(context.Background(), id))
	assert.Empty(t, f.qdrant.deleted)
}

func TestWorkerIndexCandidate_UnparseableMarkedIndexed(t *testing.T) {
	f := newWorkerFixture(map[string]string{})
	id := f.addCandidate(t, "scan.pdf")

	require.NoError(t, f.worker.indexCandidate(context.Background(), id))

	assert.True(t, f.indexed(id))
	assert.Empty(t, f.qdrant.upserted)
}

func TestWorkerIndexCandidate_MissingBlob(t *testing.T) {
	f := newWorkerFixture(map[string]string{"bob.docx": "Bob"})
	id := f.addCandidate(t, "bob.docx")
	c, err := f.repo.FindByID(id)
	require.NoError(t, err)
	require.NoError(t, f.storage.DeleteFile(context.Background(), c.ResumeRef))

	assert.Error(t, f.worker.indexCandidate(context.Background(), id))
	assert.False(t, f.indexed(id))
}

func TestWorker_EnqueueAndPoll(t *testing.T) {
	f := newWorkerFixture(map[string]string{"alice.pdf": "Alice", "bob.pdf": "Bob"})
	alice := f.addCandidate(t, "alice.pdf")
	bob := f.addCandidate(t, "bob.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.worker.Start(ctx)
	defer f.worker.Stop()

	f.worker.EnqueueCandidate(alice)

	// bob is only reachable through the poller.
	assert.Eventually(t, func() bool {
		return f.indexed(alice) && f.indexed(bob)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_StopIsIdempotent(t *testing.T) {
	f := newWorkerFixture(nil)
	f.worker.Start(context.Background())

	f.worker.Stop()
	f.worker.Stop()

	f.worker.EnqueueCandidate(uuid.New())
}

func TestWorker_EnqueueDoesNotBlockOnFullQueue(t *testing.T) {
	f := newWorkerFixture(nil)

	ids := make([]uuid.UUID, queueSize+5)
	for i := range ids {
		ids[i] = uuid.New()
	}

	done := make(chan struct{})
	go func() {
		for _, id := range ids {
			f.worker.EnqueueCandidate(id)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("EnqueueCandidate blocked on a full queue")
	}

	assert.Len(t, f.worker.jobQueue, queueSize)

	f.worker.mu.Lock()
	defer f.worker.mu.Unlock()
	assert.Len(t, f.worker.inFlight, queueSize)
	_, overflowTracked := f.worker.inFlight[ids[len(ids)-1]]
	assert.False(t, overflowTracked, "overflow is released so the poller can enqueue it later")
}
