package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrai/recruiter/internal/models"
)

type JobPostingRepository interface {
	Create(job *models.JobPosting) error
	FindByID(id uuid.UUID) (*models.JobPosting, error)
	Count() (int64, error)
	Delete(id uuid.UUID) error
}

type jobPostingRepository struct {
	db *gorm.DB
}

func NewJobPostingRepository(db *gorm.DB) JobPostingRepository {
	return &jobPostingRepository{db: db}
}

// Create implements JobPostingRepository.
func (r *jobPostingRepository) Create(job *models.JobPosting) error {
	if err := r.db.Omit("Candidates").Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job posting: %w", err)
	}

	return nil
}

// FindByID implements JobPostingRepository.
func (r *jobPostingRepository) FindByID(id uuid.UUID) (*models.JobPosting, error) {
	var job models.JobPosting
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job posting %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find job posting: %w", err)
	}

	return &job, nil
}

func (r *jobPostingRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.JobPosting{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count job postings: %w", err)
	}

	return total, nil
}

// Delete removes the posting and its candidates in one transaction.
func (r *jobPostingRepository) Delete(id uuid.UUID) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.Candidate{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.JobPosting{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete job posting: %w", err)
	}

	return nil
}
