package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vissocial/pipeline/internal/queue"
	"github.com/vissocial/pipeline/internal/repository"
)

type ProjectHandler struct {
	q        *queue.Client
	projects repository.ProjectRepository
}

func NewProjectHandler(q *queue.Client, projects repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{q: q, projects: projects}
}

func (h *ProjectHandler) GetProjectInfo(c *fiber.Ctx) error {
	projectID := c.Query("project_id")
	if projectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "project_id required"})
	}

	project, err := h.projects.GetByID(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if project == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}

	return c.JSON(project)
}

// TriggerIngest queues an import of the project's recent Instagram media as
// reference material.
func (h *ProjectHandler) TriggerIngest(c *fiber.Ctx) error {
	var body struct {
		ProjectID string `json:"project_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ProjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "project_id required"})
	}

	if err := h.q.EnqueueIngest(c.Context(), body.ProjectID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
}
