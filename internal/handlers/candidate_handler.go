package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hrai/recruiter/internal/models"
	"hrai/recruiter/internal/services"
)

type CandidateHandler struct {
	recruiting services.RecruitingService
}

func NewCandidateHandler(recruiting services.RecruitingService) *CandidateHandler {
	return &CandidateHandler{
		recruiting: recruiting,
	}
}

func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	candidates, err := h.recruiting.ListCandidates(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"candidates": emptyIfNil(candidates),
	})
}

func (h *CandidateHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	candidateID, err := parseID(c, "candidate")
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	candidate, err := h.recruiting.UpdateStatus(c.UserContext(), candidateID, models.CandidateStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(candidate)
}

func (h *CandidateHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.recruiting.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dashboard)
}
