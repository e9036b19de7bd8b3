package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vissocial/pipeline/internal/models"
)

func newRenderFixture() (*RenderService, *fakeRenderRepo, *fakeItemRepo, *fakeAssetRepo, *fakeGenerator, *fakeStore) {
	renders := newFakeRenderRepo()
	items := newFakeItemRepo()
	items.items["item-1"] = &models.ContentItem{ID: "item-1", ProjectID: "proj-1"}
	assets := &fakeAssetRepo{}
	generator := &fakeGenerator{result: &GenerateResult{URL: "https://fal.example.com/out.jpg", ModelUsed: "flux"}}
	store := &fakeStore{url: "https://cdn.example.com/renders/out.jpg"}
	return NewRenderService(renders, items, assets, generator, store), renders, items, assets, generator, store
}

func TestRenderItemSuccessMirrorsArtifact(t *testing.T) {
	svc, renders, _, _, generator, _ := newRenderFixture()

	render, err := svc.RenderItem(context.Background(), "item-1", "a scene", "watermark", nil)
	require.NoError(t, err)

	assert.Equal(t, models.RenderStatusSucceeded, render.Status)
	assert.Equal(t, "https://cdn.example.com/renders/out.jpg", render.Outputs.URL)
	assert.Equal(t, "flux", render.Outputs.ModelUsed)
	assert.Equal(t, models.RenderStatusSucceeded, renders.finalized[render.ID])

	require.Len(t, generator.requests, 1)
	assert.Equal(t, "a scene", generator.requests[0].Prompt)
	assert.Equal(t, "watermark", generator.requests[0].NegativePrompt)
}

func TestRenderItemMirrorFailureKeepsGeneratorURL(t *testing.T) {
	svc, _, _, _, _, store := newRenderFixture()
	store.err = errUnavailable

	render, err := svc.RenderItem(context.Background(), "item-1", "a scene", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://fal.example.com/out.jpg", render.Outputs.URL)
}

func TestRenderItemFailureFinalizesRow(t *testing.T) {
	svc, renders, _, _, generator, _ := newRenderFixture()
	generator.err = errUnavailable

	_, err := svc.RenderItem(context.Background(), "item-1", "a scene", "", nil)
	require.Error(t, err)

	require.Len(t, renders.renders, 1)
	id := renders.renders[0].ID
	assert.Equal(t, models.RenderStatusFailed, renders.finalized[id])
	assert.NotEmpty(t, renders.outputs[id].Error)
}

func TestRenderItemGathersReferences(t *testing.T) {
	svc, _, _, assets, generator, _ := newRenderFixture()
	assets.refs = []*models.Asset{
		{URL: "https://cdn.example.com/product.jpg", Label: models.AssetLabelProductReference},
		{URL: "https://cdn.example.com/style.jpg", Label: models.AssetLabelStyleReference},
	}

	render, err := svc.RenderItem(context.Background(), "item-1", "a scene", "", nil)
	require.NoError(t, err)

	require.Len(t, generator.requests, 1)
	req := generator.requests[0]
	assert.Equal(t, []string{"https://cdn.example.com/product.jpg", "https://cdn.example.com/style.jpg"}, req.ImageURLs)
	assert.Contains(t, req.Prompt, "@image1")
	assert.Contains(t, req.Prompt, "@image2")
	assert.Contains(t, req.Prompt, "Scene description: a scene")
	assert.Equal(t, req.ImageURLs, render.Outputs.Refs)
}

func TestRenderItemExplicitURLsSkipReferenceLookup(t *testing.T) {
	svc, _, _, assets, generator, _ := newRenderFixture()
	assets.refs = []*models.Asset{
		{URL: "https://cdn.example.com/product.jpg", Label: models.AssetLabelProductReference},
	}

	_, err := svc.RenderItem(context.Background(), "item-1", "a scene", "", []string{"https://example.com/explicit.jpg"})
	require.NoError(t, err)

	require.Len(t, generator.requests, 1)
	assert.Equal(t, []string{"https://example.com/explicit.jpg"}, generator.requests[0].ImageURLs)
	assert.Equal(t, "a scene", generator.requests[0].Prompt)
}

func TestBuildReferencePrompt(t *testing.T) {
	refs := []*models.Asset{
		{Label: models.AssetLabelProductReference},
		{Label: models.AssetLabelCharacterReference},
		{Label: models.AssetLabelStyleReference},
	}

	prompt := buildReferencePrompt("a scene", refs)
	assert.Contains(t, prompt, "product from @image1")
	assert.Contains(t, prompt, "character from @image2")
	assert.Contains(t, prompt, "mood of @image3")
	assert.Contains(t, prompt, "Scene description: a scene")

	// Ingested assets carry no placement instructions.
	prompt = buildReferencePrompt("a scene", []*models.Asset{{Label: models.AssetLabelIngested}})
	assert.Equal(t, "a scene", prompt)
}
