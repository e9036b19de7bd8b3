package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/internal/service"
)

type ContentHandler struct {
	packs   repository.ContentPackRepository
	items   repository.ContentItemRepository
	renders repository.RenderRepository
	review  *service.ReviewService
}

func NewContentHandler(
	packs repository.ContentPackRepository,
	items repository.ContentItemRepository,
	renders repository.RenderRepository,
	review *service.ReviewService) *ContentHandler {
	return &ContentHandler{packs: packs, items: items, renders: renders, review: review}
}

func (h *ContentHandler) GetItem(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_id required"})
	}

	item, err := h.items.GetByID(c.Context(), itemID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
	}

	render, err := h.renders.LatestSucceeded(c.Context(), itemID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var latestRender *models.RenderOutputs
	if render != nil {
		latestRender = &render.Outputs
	}

	return c.JSON(fiber.Map{"item": item, "latest_render": latestRender})
}

func (h *ContentHandler) UpdateItem(c *fiber.Ctx) error {
	var body struct {
		ItemID string `json:"item_id"`
		models.ItemUpdate
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_id required"})
	}

	item, err := h.review.UpdateItem(c.Context(), body.ItemID, &body.ItemUpdate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
		case errors.Is(err, service.ErrNoChanges):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no_changes"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"ok": true, "item": item})
}

// GetLatestPack returns the newest pack and whatever items exist so far.
// During generation the item count converges toward the pack's target.
func (h *ContentHandler) GetLatestPack(c *fiber.Ctx) error {
	projectID := c.Query("project_id")
	if projectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "project_id required"})
	}

	pack, err := h.packs.GetLatestByProjectID(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if pack == nil {
		return c.JSON(fiber.Map{"pack": nil, "items": []any{}})
	}

	items, err := h.items.ListByPackID(c.Context(), pack.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"pack": pack, "items": items})
}
