package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"hrai/recruiter/internal/models"
	"hrai/recruiter/internal/services"
)

type JobHandler struct {
	recruiting  services.RecruitingService
	maxFileSize int64
}

func NewJobHandler(recruiting services.RecruitingService, maxFileSize int64) *JobHandler {
	return &JobHandler{
		recruiting:  recruiting,
		maxFileSize: maxFileSize,
	}
}

// HandleSubmit takes a job description and the resumes submitted for it.
func (h *JobHandler) HandleSubmit(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "failed to parse multipart form")
	}

	var jobDescription string
	if values := form.Value["job_description"]; len(values) > 0 {
		jobDescription = values[0]
	}

	resumes := form.File["resumes"]
	for _, file := range resumes {
		if file.Size > h.maxFileSize {
			return badRequest(c, fmt.Sprintf("Resume %s too large. Max size: %d bytes", file.Filename, h.maxFileSize))
		}
	}

	resp, err := h.recruiting.SubmitJob(c.UserContext(), jobDescription, resumes)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	jobID, err := parseID(c, "job")
	if err != nil {
		return respondError(c, err)
	}

	job, err := h.recruiting.GetJob(c.UserContext(), jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(job)
}

func (h *JobHandler) HandleReview(c *fiber.Ctx) error {
	jobID, err := parseID(c, "job")
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.recruiting.ReviewCandidates(c.UserContext(), jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *JobHandler) HandleShortlist(c *fiber.Ctx) error {
	jobID, err := parseID(c, "job")
	if err != nil {
		return respondError(c, err)
	}

	candidates, err := h.recruiting.Shortlist(c.UserContext(), jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"job_id":     jobID,
		"candidates": emptyIfNil(candidates),
	})
}

func (h *JobHandler) HandleSimilar(c *fiber.Ctx) error {
	jobID, err := parseID(c, "job")
	if err != nil {
		return respondError(c, err)
	}

	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 100 {
		return badRequest(c, "limit must be between 1 and 100")
	}

	similar, err := h.recruiting.FindSimilar(c.UserContext(), jobID, limit)
	if err != nil {
		return respondError(c, err)
	}
	if similar == nil {
		similar = []models.SimilarCandidate{}
	}

	return c.JSON(fiber.Map{
		"job_id":     jobID,
		"candidates": similar,
	})
}

func emptyIfNil(candidates []models.Candidate) []models.Candidate {
	if candidates == nil {
		return []models.Candidate{}
	}
	return candidates
}
