package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vissocial/pipeline/internal/queue"
	"github.com/vissocial/pipeline/internal/repository"
)

type RenderHandler struct {
	q     *queue.Client
	items repository.ContentItemRepository
}

func NewRenderHandler(q *queue.Client, items repository.ContentItemRepository) *RenderHandler {
	return &RenderHandler{q: q, items: items}
}

// RegenRender enqueues a fresh render attempt for an item. Without an
// explicit prompt the item's stored visual brief is re-composed; explicit
// image_urls bypass the automatic reference gathering.
func (h *RenderHandler) RegenRender(c *fiber.Ctx) error {
	var body struct {
		ContentItemID string   `json:"content_item_id"`
		Prompt        string   `json:"prompt"`
		ImageURLs     []string `json:"image_urls"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ContentItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content_item_id required"})
	}

	item, err := h.items.GetByID(c.Context(), body.ContentItemID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
	}

	prompt := body.Prompt
	negative := strings.Join(item.VisualBrief.NegativePrompt, ", ")
	if prompt == "" {
		prompt = fmt.Sprintf("Photorealistic instagram-ready image. %s. On-screen text: %q.",
			item.VisualBrief.SceneDescription, item.VisualBrief.OnScreenText)
	}

	if err := h.q.EnqueueRender(c.Context(), item.ID, prompt, negative, body.ImageURLs); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
}
