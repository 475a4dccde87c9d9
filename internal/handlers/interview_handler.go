package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hrai/recruiter/internal/models"
	"hrai/recruiter/internal/services"
)

type InterviewHandler struct {
	recruiting services.RecruitingService
}

func NewInterviewHandler(recruiting services.RecruitingService) *InterviewHandler {
	return &InterviewHandler{
		recruiting: recruiting,
	}
}

// HandleSchedule books one slot for the selected candidates of a job.
// Accepts JSON or a form post with repeated selected_candidates values.
func (h *InterviewHandler) HandleSchedule(c *fiber.Ctx) error {
	jobID, err := parseID(c, "job")
	if err != nil {
		return respondError(c, err)
	}

	var req models.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	slot, err := services.ParseSlot(req.SlotStart, req.SlotEnd)
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.recruiting.ScheduleInterviews(c.UserContext(), jobID, req.SelectedCandidates, slot)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *InterviewHandler) HandleList(c *fiber.Ctx) error {
	interviews, err := h.recruiting.ListInterviews(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"interviews": emptyIfNil(interviews),
	})
}
