package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/merchant-crm/internal/api/dto"
	"github.com/spec-kit/merchant-crm/internal/domain"
)

// CRMHandler serves the read-only task and activity listings.
type CRMHandler struct {
	tasks      TaskService
	activities ActivityService
}

// NewCRMHandler constructs handler.
func NewCRMHandler(tasks TaskService, activities ActivityService) *CRMHandler {
	return &CRMHandler{tasks: tasks, activities: activities}
}

// ListTasks GET /tasks.
func (h *CRMHandler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListTasks(c.UserContext(), parseTaskFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponses(tasks)})
}

// ListMerchantTasks GET /merchants/:id/tasks.
func (h *CRMHandler) ListMerchantTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListMerchantTasks(c.UserContext(), c.Params("id"), parseOrder(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponses(tasks)})
}

// ListActivities GET /activities.
func (h *CRMHandler) ListActivities(c *fiber.Ctx) error {
	filter, err := parseActivityFilter(c)
	if err != nil {
		return err
	}
	activities, err := h.activities.ListActivities(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(activities)})
}

// ListMerchantActivities GET /merchants/:id/activities.
func (h *CRMHandler) ListMerchantActivities(c *fiber.Ctx) error {
	activities, err := h.activities.ListMerchantActivities(c.UserContext(), c.Params("id"), parseOrder(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(activities)})
}

func taskResponses(rows []domain.EnrichedTask) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewTaskResponse(&rows[i]))
	}
	return out
}

func activityResponses(rows []domain.EnrichedActivity) []dto.ActivityResponse {
	out := make([]dto.ActivityResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewActivityResponse(&rows[i]))
	}
	return out
}
