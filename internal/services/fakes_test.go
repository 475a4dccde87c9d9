package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"hrai/recruiter/internal/models"
	"hrai/recruiter/internal/repositories"
)

// wordTagger treats every alphanumeric word as a noun.
type wordTagger struct {
	err error
}

func (t wordTagger) Nouns(text string) ([]string, error) {
	if t.err != nil {
		return nil, t.err
	}
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), nil
}

// textParser returns the stored text for a name, regardless of format.
type textParser struct {
	texts map[string]string
}

func (p textParser) ExtractText(name string, _ []byte) (string, string, error) {
	text, ok := p.texts[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return text, FormatOf(name), nil
}

type fakeGemini struct {
	mu        sync.Mutex
	prompts   []string
	text      string
	err       error
	failAfter int
	embedErr  error
}

func (g *fakeGemini) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if g.embedErr != nil {
		return nil, g.embedErr
	}
	return []float32{float32(len(text)), 1}, nil
}

func (g *fakeGemini) GenerateText(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, prompt)
	if g.err != nil && len(g.prompts) > g.failAfter {
		return "", g.err
	}
	return g.text, nil
}

type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	names map[string]string
	// rejected upload names fail in SaveFile.
	rejected map[string]bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: map[string][]byte{}, names: map[string]string{}, rejected: map[string]bool{}}
}

func (s *memoryStorage) EnsureReady(context.Context) error { return nil }

func (s *memoryStorage) SaveFile(_ context.Context, file *multipart.FileHeader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejected[file.Filename] {
		return "", fmt.Errorf("upload of %s rejected", file.Filename)
	}

	ref := resumeObjectName(file.Filename)
	s.files[ref] = []byte(file.Filename)
	s.names[ref] = file.Filename
	return ref, nil
}

func (s *memoryStorage) ReadFile(_ context.Context, ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.files[ref]
	if !ok {
		return nil, fmt.Errorf("no object %s", ref)
	}
	return data, nil
}

func (s *memoryStorage) DeleteFile(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, ref)
	return nil
}

// refParser resolves stored refs back to the original upload name before
// looking up the text.
type refParser struct {
	storage *memoryStorage
	texts   map[string]string
}

func (p refParser) ExtractText(name string, _ []byte) (string, string, error) {
	p.storage.mu.Lock()
	defer p.storage.mu.Unlock()

	original, ok := p.storage.names[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	text, ok := p.texts[original]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, original)
	}
	return text, FormatOf(original), nil
}

type memoryJobRepo struct {
	jobs map[uuid.UUID]*models.JobPosting
	// candidates, when set, loses the rows of deleted postings.
	candidates *memoryCandidateRepo
}

func newMemoryJobRepo() *memoryJobRepo {
	return &memoryJobRepo{jobs: map[uuid.UUID]*models.JobPosting{}}
}

func (r *memoryJobRepo) Create(job *models.JobPosting) error {
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *memoryJobRepo) FindByID(id uuid.UUID) (*models.JobPosting, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job posting %s: %w", id, repositories.ErrNotFound)
	}
	copied := *job
	return &copied, nil
}

func (r *memoryJobRepo) Count() (int64, error) {
	return int64(len(r.jobs)), nil
}

func (r *memoryJobRepo) Delete(id uuid.UUID) error {
	delete(r.jobs, id)
	if r.candidates != nil {
		r.candidates.deleteByJob(id)
	}
	return nil
}

type memoryCandidateRepo struct {
	mu    sync.Mutex
	order []uuid.UUID
	rows  map[uuid.UUID]models.Candidate
}

func newMemoryCandidateRepo() *memoryCandidateRepo {
	return &memoryCandidateRepo{rows: map[uuid.UUID]models.Candidate{}}
}

func (r *memoryCandidateRepo) Create(c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = append(r.order, c.ID)
	r.rows[c.ID] = *c
	return nil
}

func (r *memoryCandidateRepo) deleteByJob(jobID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	for _, id := range r.order {
		if r.rows[id].JobID == jobID {
			delete(r.rows, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

func (r *memoryCandidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", id, repositories.ErrNotFound)
	}
	return &c, nil
}

func (r *memoryCandidateRepo) filter(keep func(models.Candidate) bool) []models.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Candidate
	for _, id := range r.order {
		if c := r.rows[id]; keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func byScore(candidates []models.Candidate) []models.Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Score, candidates[j].Score
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a > *b
	})
	return candidates
}

func (r *memoryCandidateRepo) FindByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	return r.filter(func(c models.Candidate) bool { return c.JobID == jobID }), nil
}

func (r *memoryCandidateRepo) FindRankedByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	return byScore(r.filter(func(c models.Candidate) bool { return c.JobID == jobID })), nil
}

func (r *memoryCandidateRepo) FindByJobAndStatus(jobID uuid.UUID, status models.CandidateStatus) ([]models.Candidate, error) {
	return byScore(r.filter(func(c models.Candidate) bool { return c.JobID == jobID && c.Status == status })), nil
}

func (r *memoryCandidateRepo) FindByStatus(status models.CandidateStatus) ([]models.Candidate, error) {
	return byScore(r.filter(func(c models.Candidate) bool { return c.Status == status })), nil
}

func (r *memoryCandidateRepo) FindAll() ([]models.Candidate, error) {
	return byScore(r.filter(func(models.Candidate) bool { return true })), nil
}

func (r *memoryCandidateRepo) CountByStatus(status models.CandidateStatus) (int64, error) {
	found, _ := r.FindByStatus(status)
	return int64(len(found)), nil
}

func (r *memoryCandidateRepo) Save(c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[c.ID]; !ok {
		return fmt.Errorf("candidate %s: %w", c.ID, repositories.ErrNotFound)
	}
	r.rows[c.ID] = *c
	return nil
}

func (r *memoryCandidateRepo) UpdateScore(id uuid.UUID, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("candidate %s: %w", id, repositories.ErrNotFound)
	}
	c.Score = &score
	r.rows[id] = c
	return nil
}

func (r *memoryCandidateRepo) FindUnindexed(limit int) ([]models.Candidate, error) {
	found := r.filter(func(c models.Candidate) bool { return !c.Indexed })
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (r *memoryCandidateRepo) MarkIndexed(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("candidate %s: %w", id, repositories.ErrNotFound)
	}
	c.Indexed = true
	r.rows[id] = c
	return nil
}

type fakeScheduler struct {
	calls  []string
	events map[string]string
}

func (s *fakeScheduler) ScheduleInterview(_ context.Context, c *models.Candidate, _ models.Slot) string {
	s.calls = append(s.calls, c.EmailAddress())
	return s.events[c.EmailAddress()]
}

type statusChange struct {
	id       uuid.UUID
	from, to models.CandidateStatus
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []statusChange
}

func (p *recordingPublisher) PublishStatus(c *models.Candidate, previous models.CandidateStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.changes = append(p.changes, statusChange{id: c.ID, from: previous, to: c.Status})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func fileHeader(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: int64(len(name))}
}

func intPtr(v int) *int { return &v }
