package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vissocial/pipeline/internal/queue"
	"github.com/vissocial/pipeline/internal/repository"
)

type PublishHandler struct {
	q        *queue.Client
	projects repository.ProjectRepository
}

func NewPublishHandler(q *queue.Client, projects repository.ProjectRepository) *PublishHandler {
	return &PublishHandler{q: q, projects: projects}
}

// PublishNow enqueues an immediate publish for an item. Preconditions are
// still enforced by the publish stage itself.
func (h *PublishHandler) PublishNow(c *fiber.Ctx) error {
	var body struct {
		ContentItemID string `json:"content_item_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ContentItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content_item_id required"})
	}

	if err := h.q.EnqueuePublish(c.Context(), body.ContentItemID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
}

func (h *PublishHandler) SetPublishEnabled(c *fiber.Ctx) error {
	var body struct {
		ProjectID string `json:"project_id"`
		Enabled   bool   `json:"enabled"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ProjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "project_id required"})
	}

	if err := h.projects.SetPublishEnabled(c.Context(), body.ProjectID, body.Enabled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"ok": true, "ig_publish_enabled": body.Enabled})
}
