package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/models"
	"hrai/recruiter/internal/repositories"
)

const DefaultShortlistThreshold = 7

var (
	ErrEmptyJobDescription = errors.New("job description is required")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrIndexDisabled       = errors.New("candidate index is disabled")
	ErrSummaryUnavailable  = errors.New("summary generation failed")
)

// IndexQueue accepts candidates whose resumes should be indexed.
type IndexQueue interface {
	EnqueueCandidate(candidateID uuid.UUID)
}

type RecruitingService interface {
	SubmitJob(ctx context.Context, jobDescription string, resumes []*multipart.FileHeader) (*models.SubmitJobResponse, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.JobPosting, error)
	ReviewCandidates(ctx context.Context, jobID uuid.UUID) (*models.ReviewResponse, error)
	Shortlist(ctx context.Context, jobID uuid.UUID) ([]models.Candidate, error)
	ScheduleInterviews(ctx context.Context, jobID uuid.UUID, candidateIDs []string, slot models.Slot) (*models.ScheduleResponse, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	ListInterviews(ctx context.Context) ([]models.Candidate, error)
	UpdateStatus(ctx context.Context, candidateID uuid.UUID, status models.CandidateStatus) (*models.Candidate, error)
	Dashboard(ctx context.Context) (*models.DashboardResponse, error)
	FindSimilar(ctx context.Context, jobID uuid.UUID, limit int) ([]models.SimilarCandidate, error)
}

type RecruitingOptions struct {
	ShortlistThreshold float64
	// Indexer and Queue are nil when the candidate index is disabled.
	Indexer CandidateIndexer
	Queue   IndexQueue
}

type recruitingService struct {
	jobRepo       repositories.JobPostingRepository
	candidateRepo repositories.CandidateRepository
	storage       StorageService
	extractor     ResumeExtractor
	ranker        CandidateRanker
	summarizer    SummaryGenerator
	scheduler     InterviewScheduler
	publisher     StatusPublisher
	opts          RecruitingOptions
	log           *zap.Logger
}

func NewRecruitingService(
	jobRepo repositories.JobPostingRepository,
	candidateRepo repositories.CandidateRepository,
	storage StorageService,
	extractor ResumeExtractor,
	ranker CandidateRanker,
	summarizer SummaryGenerator,
	scheduler InterviewScheduler,
	publisher StatusPublisher,
	opts RecruitingOptions,
	log *zap.Logger,
) RecruitingService {
	if opts.ShortlistThreshold <= 0 {
		opts.ShortlistThreshold = DefaultShortlistThreshold
	}
	if publisher == nil {
		publisher = NewNopPublisher()
	}

	return &recruitingService{
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
		storage:       storage,
		extractor:     extractor,
		ranker:        ranker,
		summarizer:    summarizer,
		scheduler:     scheduler,
		publisher:     publisher,
		opts:          opts,
		log:           logger.OrNop(log),
	}
}

func (s *recruitingService) SubmitJob(ctx context.Context, jobDescription string, resumes []*multipart.FileHeader) (*models.SubmitJobResponse, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ErrEmptyJobDescription
	}

	job := &models.JobPosting{
		ID:          uuid.New(),
		Description: jobDescription,
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}

	s.log.Info("job posting created",
		zap.String("job_id", job.ID.String()),
		zap.Int("resumes", len(resumes)),
	)

	candidates := make([]models.Candidate, 0, len(resumes))
	for _, file := range resumes {
		candidate, err := s.addCandidate(ctx, job.ID, file)
		if err != nil {
			s.discardJob(ctx, job.ID, candidates)
			return nil, err
		}
		candidates = append(candidates, *candidate)
	}

	if s.opts.Queue != nil {
		for _, c := range candidates {
			s.opts.Queue.EnqueueCandidate(c.ID)
		}
	}

	return &models.SubmitJobResponse{
		JobID:      job.ID.String(),
		Candidates: candidates,
	}, nil
}

// addCandidate stores the resume and creates its candidate row. The blob is
// removed again when the row cannot be completed.
func (s *recruitingService) addCandidate(ctx context.Context, jobID uuid.UUID, file *multipart.FileHeader) (*models.Candidate, error) {
	ref, err := s.storage.SaveFile(ctx, file)
	if err != nil {
		return nil, err
	}

	candidate, err := s.createCandidate(ctx, jobID, ref, file.Filename)
	if err != nil {
		s.deleteBlob(ctx, ref)
		return nil, err
	}

	return candidate, nil
}

func (s *recruitingService) createCandidate(ctx context.Context, jobID uuid.UUID, ref, filename string) (*models.Candidate, error) {
	candidate := &models.Candidate{
		ID:               uuid.New(),
		JobID:            jobID,
		ResumeRef:        ref,
		OriginalFilename: filename,
		Name:             filename,
		Status:           models.StatusPending,
	}
	if err := s.candidateRepo.Create(candidate); err != nil {
		return nil, err
	}

	data, err := s.storage.ReadFile(ctx, ref)
	if err != nil {
		return nil, err
	}

	profile := s.extractor.Extract(ref, data)
	if profile.Unparseable {
		s.log.Warn("resume could not be parsed",
			zap.String("candidate_id", candidate.ID.String()),
			zap.String("file", filename),
		)
	}

	empty := ""
	candidate.Name = truncateName(profile.Name)
	candidate.Summary = &empty
	if profile.Email != "" {
		email := profile.Email
		candidate.Email = &email
	}

	if err := s.candidateRepo.Save(candidate); err != nil {
		return nil, err
	}

	return candidate, nil
}

// discardJob undoes a partially submitted posting: stored resumes first, then
// the posting together with its candidate rows.
func (s *recruitingService) discardJob(ctx context.Context, jobID uuid.UUID, stored []models.Candidate) {
	for _, c := range stored {
		s.deleteBlob(ctx, c.ResumeRef)
	}

	if err := s.jobRepo.Delete(jobID); err != nil {
		s.log.Error("failed to discard job posting",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
	}
}

func (s *recruitingService) deleteBlob(ctx context.Context, ref string) {
	if err := s.storage.DeleteFile(ctx, ref); err != nil {
		s.log.Warn("failed to delete stored resume", zap.String("ref", ref), zap.Error(err))
	}
}

func (s *recruitingService) GetJob(_ context.Context, jobID uuid.UUID) (*models.JobPosting, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateRepo.FindByJob(jobID)
	if err != nil {
		return nil, err
	}
	job.Candidates = candidates

	return job, nil
}

// ReviewCandidates re-extracts and ranks every candidate of the job, then
// persists score, summary and status one candidate at a time. A summary
// failure stops the review; candidates already handled keep their updates.
func (s *recruitingService) ReviewCandidates(ctx context.Context, jobID uuid.UUID) (*models.ReviewResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateRepo.FindByJob(jobID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Candidate, len(candidates))
	data := make([]models.CandidateData, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		byID[c.ID] = c

		profile, err := s.extractCandidate(ctx, c)
		if err != nil {
			return nil, err
		}
		data = append(data, models.NewCandidateData(c.ID, profile))
	}

	ranked, err := s.ranker.RankCandidates(data, job.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to rank candidates: %w", err)
	}

	for _, r := range ranked {
		if err := s.applyReview(ctx, byID[r.ID], r, job.Description); err != nil {
			return nil, err
		}
	}

	reviewed, err := s.candidateRepo.FindRankedByJob(jobID)
	if err != nil {
		return nil, err
	}

	hasShortlisted := false
	for _, c := range reviewed {
		if c.Status == models.StatusShortlisted {
			hasShortlisted = true
			break
		}
	}

	s.log.Info("candidates reviewed",
		zap.String("job_id", jobID.String()),
		zap.Int("candidates", len(reviewed)),
		zap.Bool("has_shortlisted", hasShortlisted),
	)

	return &models.ReviewResponse{
		Job:            job,
		Candidates:     reviewed,
		HasShortlisted: hasShortlisted,
	}, nil
}

func (s *recruitingService) extractCandidate(ctx context.Context, c *models.Candidate) (*models.ExtractedProfile, error) {
	data, err := s.storage.ReadFile(ctx, c.ResumeRef)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume of candidate %s: %w", c.ID, err)
	}
	return s.extractor.Extract(c.ResumeRef, data), nil
}

func (s *recruitingService) applyReview(ctx context.Context, c *models.Candidate, ranked models.CandidateData, jobDescription string) error {
	if ranked.Email != "" && c.EmailAddress() == "" {
		email := ranked.Email
		c.Email = &email
	}

	score := float64(ranked.Score)
	if err := s.candidateRepo.UpdateScore(c.ID, score); err != nil {
		return err
	}
	c.Score = &score

	summary, err := s.summarizer.GenerateSummary(ctx, ranked, jobDescription)
	if err != nil {
		s.log.Error("review stopped on summary failure",
			zap.String("candidate_id", c.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrSummaryUnavailable, err)
	}
	c.Summary = &summary

	previous := c.Status
	if previous.Reviewable() {
		next := models.StatusRejected
		if score >= s.opts.ShortlistThreshold {
			next = models.StatusShortlisted
		}
		if previous.CanTransitionTo(next) {
			c.Status = next
		}
	}

	if err := s.candidateRepo.Save(c); err != nil {
		return err
	}

	if c.Status != previous {
		s.publish(c, previous)
	}
	return nil
}

func (s *recruitingService) Shortlist(_ context.Context, jobID uuid.UUID) ([]models.Candidate, error) {
	if _, err := s.jobRepo.FindByID(jobID); err != nil {
		return nil, err
	}
	return s.candidateRepo.FindByJobAndStatus(jobID, models.StatusShortlisted)
}

// ScheduleInterviews books the slot for each selected candidate. Every
// candidate yields one result line; only calendar successes change status.
func (s *recruitingService) ScheduleInterviews(ctx context.Context, jobID uuid.UUID, candidateIDs []string, slot models.Slot) (*models.ScheduleResponse, error) {
	if _, err := s.jobRepo.FindByID(jobID); err != nil {
		return nil, err
	}

	s.log.Debug("scheduling interviews",
		zap.Strings("candidates", candidateIDs),
		zap.String("start", slot.Start),
		zap.String("end", slot.End),
	)

	resp := &models.ScheduleResponse{Slot: slot}
	for _, rawID := range candidateIDs {
		result, err := s.scheduleOne(ctx, jobID, rawID, slot)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, result)
		resp.Lines = append(resp.Lines, result.Message)
	}

	return resp, nil
}

func (s *recruitingService) scheduleOne(ctx context.Context, jobID uuid.UUID, rawID string, slot models.Slot) (models.ScheduleResult, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return models.ScheduleResult{Message: fmt.Sprintf("%s: Unknown candidate", rawID)}, nil
	}

	result := models.ScheduleResult{CandidateID: id}

	candidate, err := s.candidateRepo.FindByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		result.Message = fmt.Sprintf("%s: Unknown candidate", id)
		return result, nil
	}
	if err != nil {
		return result, err
	}

	if candidate.JobID != jobID {
		result.Message = fmt.Sprintf("%s (%s): Not an applicant for this job", candidate.Name, id)
		return result, nil
	}

	email := candidate.EmailAddress()
	if email == "" {
		s.log.Warn("candidate has no email, skipping", zap.String("candidate_id", id.String()))
		result.Message = fmt.Sprintf("%s (%s): No email, skipped", candidate.Name, id)
		return result, nil
	}

	if !candidate.Status.CanTransitionTo(models.StatusInterview) {
		result.Message = fmt.Sprintf("%s (%s): Not eligible for interview (%s)", candidate.Name, email, candidate.Status.Label())
		return result, nil
	}

	eventID := s.scheduler.ScheduleInterview(ctx, candidate, slot)
	if eventID == "" {
		s.log.Warn("failed to create interview event", zap.String("email", email))
		result.Message = fmt.Sprintf("%s (%s): Event creation failed", candidate.Name, email)
		return result, nil
	}

	previous := candidate.Status
	start, end := slot.Start, slot.End
	candidate.InterviewEventID = &eventID
	candidate.InterviewStart = &start
	candidate.InterviewEnd = &end
	candidate.Status = models.StatusInterview
	if err := s.candidateRepo.Save(candidate); err != nil {
		return result, err
	}
	if previous != candidate.Status {
		s.publish(candidate, previous)
	}

	s.log.Info("interview event created", zap.String("email", email), zap.String("event_id", eventID))

	result.EventID = eventID
	result.Scheduled = true
	result.Message = fmt.Sprintf("%s (%s): Event created successfully", candidate.Name, email)
	return result, nil
}

func (s *recruitingService) ListCandidates(_ context.Context) ([]models.Candidate, error) {
	return s.candidateRepo.FindAll()
}

func (s *recruitingService) ListInterviews(_ context.Context) ([]models.Candidate, error) {
	return s.candidateRepo.FindByStatus(models.StatusInterview)
}

func (s *recruitingService) UpdateStatus(_ context.Context, candidateID uuid.UUID, status models.CandidateStatus) (*models.Candidate, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	candidate, err := s.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, err
	}

	previous := candidate.Status
	if !previous.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, previous, status)
	}

	candidate.Status = status
	if err := s.candidateRepo.Save(candidate); err != nil {
		return nil, err
	}

	if previous != status {
		s.publish(candidate, previous)
	}
	return candidate, nil
}

func (s *recruitingService) Dashboard(_ context.Context) (*models.DashboardResponse, error) {
	totalJobs, err := s.jobRepo.Count()
	if err != nil {
		return nil, err
	}

	pending, err := s.candidateRepo.CountByStatus(models.StatusUnderReview)
	if err != nil {
		return nil, err
	}

	interviews, err := s.candidateRepo.CountByStatus(models.StatusInterview)
	if err != nil {
		return nil, err
	}

	return &models.DashboardResponse{
		TotalJobs:           totalJobs,
		PendingReviews:      pending,
		ScheduledInterviews: interviews,
	}, nil
}

func (s *recruitingService) FindSimilar(ctx context.Context, jobID uuid.UUID, limit int) ([]models.SimilarCandidate, error) {
	if s.opts.Indexer == nil {
		return nil, ErrIndexDisabled
	}

	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}

	return s.opts.Indexer.FindSimilar(ctx, job.ID, job.Description, limit)
}

func (s *recruitingService) publish(c *models.Candidate, previous models.CandidateStatus) {
	if err := s.publisher.PublishStatus(c, previous); err != nil {
		s.log.Warn("failed to publish status update",
			zap.String("candidate_id", c.ID.String()),
			zap.Error(err),
		)
	}
}

// truncateName fits the extracted first line into the name column.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) > 100 {
		return string(runes[:100])
	}
	return name
}
