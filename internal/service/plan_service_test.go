package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/policy"
)

func testArm() *policy.Arm {
	return &policy.Arm{
		ArmID: "arm-1",
		Params: policy.ArmParams{
			Format:        models.FormatReel,
			Pillar:        "educational",
			HookType:      "question",
			CaptionLength: "medium",
			CTAType:       "comment",
			SceneTemplate: "studio_clean",
			PromoLevel:    0.3,
		},
	}
}

func newPlanService(pc policy.Client, drafter Drafter) (*PlanService, *fakePackRepo, *fakeItemRepo, *fakeFeaturesRepo, *fakeRenderEnqueuer) {
	cfg := config.Config{GenerateLimit: 30}
	packs := &fakePackRepo{}
	items := newFakeItemRepo()
	features := &fakeFeaturesRepo{}
	projects := &fakeProjectRepo{project: &models.Project{ID: "proj-1", BrandProfile: json.RawMessage(`{"name":"Acme"}`)}}
	render := &fakeRenderEnqueuer{}
	svc := NewPlanService(cfg, packs, items, features, projects, pc, drafter, render)
	return svc, packs, items, features, render
}

func TestGenerateCreatesAllSlots(t *testing.T) {
	svc, packs, items, features, render := newPlanService(&fakePolicy{arm: testArm()}, &fakeDrafter{})

	result, err := svc.Generate(context.Background(), "proj-1", "2026-09", 5)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Items)
	require.Len(t, packs.packs, 1)
	assert.Equal(t, packs.packs[0].ID, result.ContentPackID)
	assert.Equal(t, "2026-09", packs.packs[0].Month)

	assert.Len(t, items.items, 5)
	days := map[int]bool{}
	for _, it := range items.items {
		days[it.Day] = true
		assert.Equal(t, models.ItemStatusDraft, it.Status)
		assert.Equal(t, models.PublishModeExportOnly, it.PublishMode)
		assert.Equal(t, models.PublishStatusNone, it.PublishStatus)
		assert.Equal(t, result.ContentPackID, it.ContentPackID)
	}
	for d := 1; d <= 5; d++ {
		assert.True(t, days[d], "missing day %d", d)
	}

	require.Len(t, features.upserts, 5)
	for _, cf := range features.upserts {
		assert.Equal(t, "arm-1", cf.ArmID)
		var params policy.ArmParams
		require.NoError(t, json.Unmarshal(cf.Features, &params))
		assert.Equal(t, models.FormatReel, params.Format)
	}

	assert.Len(t, render.itemIDs, 5)
}

func TestGenerateFallsBackWhenPolicyDown(t *testing.T) {
	svc, _, items, features, _ := newPlanService(&fakePolicy{chooseErr: errUnavailable}, &fakeDrafter{})

	result, err := svc.Generate(context.Background(), "proj-1", "2026-09", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Items)

	for _, cf := range features.upserts {
		assert.Equal(t, "fallback", cf.ArmID)
	}

	formats := map[string]int{}
	for _, it := range items.items {
		formats[it.Format]++
	}
	assert.Equal(t, 1, formats[models.FormatReel])
	assert.Equal(t, 1, formats[models.FormatCarousel])
	assert.Equal(t, 1, formats[models.FormatFeed])
}

func TestGenerateFallsBackWhenDrafterDown(t *testing.T) {
	svc, _, items, _, render := newPlanService(&fakePolicy{arm: testArm()}, &fakeDrafter{err: errUnavailable})

	result, err := svc.Generate(context.Background(), "proj-1", "2026-09", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Items)

	for _, it := range items.items {
		assert.NotEmpty(t, it.Topic)
		assert.NotEmpty(t, it.Caption.Long)
		assert.NotEmpty(t, it.VisualBrief.SceneDescription)
	}
	assert.Len(t, render.itemIDs, 2)
}

func TestGenerateUsesConfiguredDefaultLimit(t *testing.T) {
	cfg := config.Config{GenerateLimit: 4}
	items := newFakeItemRepo()
	svc := NewPlanService(cfg, &fakePackRepo{}, items, &fakeFeaturesRepo{},
		&fakeProjectRepo{}, &fakePolicy{arm: testArm()}, &fakeDrafter{}, &fakeRenderEnqueuer{})

	result, err := svc.Generate(context.Background(), "proj-1", "2026-09", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Items)
	assert.Len(t, items.items, 4)
}

func TestGenerateStopsWhenItemWriteFails(t *testing.T) {
	items := newFakeItemRepo()
	items.createErr = errUnavailable
	svc := NewPlanService(config.Config{GenerateLimit: 30}, &fakePackRepo{}, items, &fakeFeaturesRepo{},
		&fakeProjectRepo{}, &fakePolicy{arm: testArm()}, &fakeDrafter{}, &fakeRenderEnqueuer{})

	_, err := svc.Generate(context.Background(), "proj-1", "2026-09", 3)
	assert.Error(t, err)
}
