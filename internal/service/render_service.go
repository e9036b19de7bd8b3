package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/pkg/utils"
)

const maxReferenceImages = 8

type RenderService struct {
	renders   repository.RenderRepository
	items     repository.ContentItemRepository
	assets    repository.AssetRepository
	generator ImageGenerator
	store     ArtifactStore
}

func NewRenderService(
	renders repository.RenderRepository,
	items repository.ContentItemRepository,
	assets repository.AssetRepository,
	generator ImageGenerator,
	store ArtifactStore) *RenderService {
	return &RenderService{
		renders:   renders,
		items:     items,
		assets:    assets,
		generator: generator,
		store:     store,
	}
}

// RenderItem runs one rendering attempt. The render row is written in
// "running" state before the external call, so a crash mid-call leaves a
// durable record of the attempt. The returned error propagates to the queue
// so its retry policy applies; the row itself is finalized either way.
func (s *RenderService) RenderItem(ctx context.Context, itemID, prompt, negativePrompt string, imageURLs []string) (*models.Render, error) {
	render := &models.Render{
		ID:            utils.NewID("rnd"),
		ContentItemID: itemID,
		Status:        models.RenderStatusRunning,
	}
	if err := s.renders.Create(ctx, render); err != nil {
		return nil, fmt.Errorf("failed to create render record: %w", err)
	}

	finalPrompt := prompt
	refs := imageURLs
	if len(refs) == 0 {
		item, err := s.items.GetByID(ctx, itemID)
		if err == nil && item != nil {
			assets, err := s.assets.ListReferences(ctx, item.ProjectID, maxReferenceImages)
			if err != nil {
				slog.Info("reference lookup failed", "content_item_id", itemID, "error", err.Error())
			} else if len(assets) > 0 {
				refs = make([]string, 0, len(assets))
				for _, a := range assets {
					refs = append(refs, a.URL)
				}
				finalPrompt = buildReferencePrompt(prompt, assets)
			}
		}
	}

	result, err := s.generator.Generate(ctx, GenerateRequest{
		Prompt:         finalPrompt,
		NegativePrompt: negativePrompt,
		ImageURLs:      refs,
	})
	if err != nil {
		outputs := models.RenderOutputs{Error: err.Error(), Refs: refs, Prompt: finalPrompt}
		if ferr := s.renders.Finalize(ctx, render.ID, models.RenderStatusFailed, outputs); ferr != nil {
			slog.Info("failed to finalize failed render", "render_id", render.ID, "error", ferr.Error())
		}
		return nil, fmt.Errorf("render failed for item %s: %w", itemID, err)
	}

	artifactURL := result.URL
	if s.store != nil {
		mirrored, err := s.store.MirrorImage(ctx, result.URL, "renders/"+render.ID)
		if err != nil {
			slog.Info("artifact mirror failed, keeping generator URL", "render_id", render.ID, "error", err.Error())
		} else {
			artifactURL = mirrored
		}
	}

	outputs := models.RenderOutputs{
		URL:       artifactURL,
		ModelUsed: result.ModelUsed,
		Refs:      refs,
		Prompt:    finalPrompt,
	}
	if err := s.renders.Finalize(ctx, render.ID, models.RenderStatusSucceeded, outputs); err != nil {
		return nil, fmt.Errorf("failed to finalize render: %w", err)
	}

	render.Status = models.RenderStatusSucceeded
	render.Outputs = outputs

	slog.Info("render succeeded", "content_item_id", itemID, "render_id", render.ID, "url", artifactURL)
	return render, nil
}

// buildReferencePrompt wraps the scene prompt with @imageN instructions so
// the edit model knows what each reference is for. References arrive
// product-first; @image indices are 1-based in the order passed to the model.
func buildReferencePrompt(prompt string, refs []*models.Asset) string {
	if len(refs) == 0 {
		return prompt
	}

	var product, style, character []string
	for i, ref := range refs {
		tag := fmt.Sprintf("@image%d", i+1)
		switch ref.Label {
		case models.AssetLabelProductReference:
			product = append(product, tag)
		case models.AssetLabelStyleReference:
			style = append(style, tag)
		case models.AssetLabelCharacterReference:
			character = append(character, tag)
		}
	}

	var parts []string
	if len(product) == 1 {
		parts = append(parts, fmt.Sprintf("Place the product from %s in the following scene", product[0]))
	} else if len(product) > 1 {
		parts = append(parts, fmt.Sprintf("Place the products from %s in the following scene", strings.Join(product, " and ")))
	}
	if len(character) == 1 {
		parts = append(parts, fmt.Sprintf("The person or character from %s should appear in the scene", character[0]))
	} else if len(character) > 1 {
		parts = append(parts, fmt.Sprintf("The people from %s should appear in the scene", strings.Join(character, " and ")))
	}
	if len(style) == 1 {
		parts = append(parts, fmt.Sprintf("Match the visual style, lighting, color palette, and mood of %s", style[0]))
	} else if len(style) > 1 {
		parts = append(parts, fmt.Sprintf("Match the visual style and aesthetic from %s", strings.Join(style, " and ")))
	}

	if len(parts) == 0 {
		return prompt
	}
	return strings.Join(parts, ". ") + ". Scene description: " + prompt
}
