package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrai/recruiter/internal/models"
)

const orderByScore = "score DESC NULLS LAST, created_at ASC"

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	FindByJob(jobID uuid.UUID) ([]models.Candidate, error)
	FindRankedByJob(jobID uuid.UUID) ([]models.Candidate, error)
	FindByJobAndStatus(jobID uuid.UUID, status models.CandidateStatus) ([]models.Candidate, error)
	FindByStatus(status models.CandidateStatus) ([]models.Candidate, error)
	FindAll() ([]models.Candidate, error)
	CountByStatus(status models.CandidateStatus) (int64, error)
	Save(candidate *models.Candidate) error
	UpdateScore(id uuid.UUID, score float64) error
	FindUnindexed(limit int) ([]models.Candidate, error)
	MarkIndexed(id uuid.UUID) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

// FindByJob returns the job's candidates in upload order.
func (r *candidateRepository) FindByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates for job: %w", err)
	}
	return candidates, nil
}

// FindRankedByJob returns the job's candidates by score, unscored last.
func (r *candidateRepository) FindRankedByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("job_id = ?", jobID).
		Order(orderByScore).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find ranked candidates for job: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) FindByJobAndStatus(jobID uuid.UUID, status models.CandidateStatus) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("job_id = ? AND status = ?", jobID, status).
		Order(orderByScore).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find %s candidates for job: %w", status, err)
	}
	return candidates, nil
}

func (r *candidateRepository) FindByStatus(status models.CandidateStatus) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("status = ?", status).
		Order(orderByScore).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find %s candidates: %w", status, err)
	}
	return candidates, nil
}

func (r *candidateRepository) FindAll() ([]models.Candidate, error) {
	var candidates []models.Candidate
	if err := r.db.Order(orderByScore).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) CountByStatus(status models.CandidateStatus) (int64, error) {
	var total int64
	err := r.db.Model(&models.Candidate{}).
		Where("status = ?", status).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s candidates: %w", status, err)
	}
	return total, nil
}

func (r *candidateRepository) Save(candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now()
	if err := r.db.Save(candidate).Error; err != nil {
		return fmt.Errorf("failed to save candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) UpdateScore(id uuid.UUID, score float64) error {
	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":      score,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update score: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *candidateRepository) FindUnindexed(limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("indexed = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find unindexed candidates: %w", err)
	}

	return candidates, nil
}

func (r *candidateRepository) MarkIndexed(id uuid.UUID) error {
	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"indexed":    true,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark candidate indexed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}

	return nil
}
