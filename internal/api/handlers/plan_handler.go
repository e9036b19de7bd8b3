package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vissocial/pipeline/internal/queue"
)

type PlanHandler struct {
	q *queue.Client
}

func NewPlanHandler(q *queue.Client) *PlanHandler {
	return &PlanHandler{q: q}
}

// GeneratePlan kicks off asynchronous plan generation. Items appear
// incrementally as the worker progresses; there is no "pack ready" signal.
func (h *PlanHandler) GeneratePlan(c *fiber.Ctx) error {
	var body struct {
		ProjectID string `json:"project_id"`
		Month     string `json:"month"`
		Limit     int    `json:"limit"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ProjectID == "" || body.Month == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "project_id and month are required"})
	}

	if err := h.q.EnqueuePlanGenerate(c.Context(), body.ProjectID, body.Month, body.Limit); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
}
