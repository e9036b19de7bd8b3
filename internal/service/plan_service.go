package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/policy"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/pkg/utils"
)

// RenderEnqueuer submits render work for a freshly drafted item.
type RenderEnqueuer interface {
	EnqueueRender(ctx context.Context, itemID, prompt, negativePrompt string, imageURLs []string) error
}

type PlanResult struct {
	ContentPackID string `json:"content_pack_id"`
	Items         int    `json:"items"`
}

type PlanService struct {
	cfg      config.Config
	packs    repository.ContentPackRepository
	items    repository.ContentItemRepository
	features repository.ContentFeaturesRepository
	projects repository.ProjectRepository
	policy   policy.Client
	drafter  Drafter
	render   RenderEnqueuer
}

func NewPlanService(
	cfg config.Config,
	packs repository.ContentPackRepository,
	items repository.ContentItemRepository,
	features repository.ContentFeaturesRepository,
	projects repository.ProjectRepository,
	pc policy.Client,
	drafter Drafter,
	render RenderEnqueuer) *PlanService {
	return &PlanService{
		cfg:      cfg,
		packs:    packs,
		items:    items,
		features: features,
		projects: projects,
		policy:   pc,
		drafter:  drafter,
		render:   render,
	}
}

// Generate plans a full content pack for the project and month. Slots are
// drafted sequentially; each slot's render job is enqueued before the next
// slot begins. The plan never stalls on the policy or LLM being down: both
// have deterministic local fallbacks, so the pack always completes with
// exactly limit items.
func (s *PlanService) Generate(ctx context.Context, projectID, month string, limit int) (*PlanResult, error) {
	n := limit
	if n <= 0 {
		n = s.cfg.GenerateLimit
	}

	pack := &models.ContentPack{
		ID:        utils.NewID("pack"),
		ProjectID: projectID,
		Month:     month,
	}
	if err := s.packs.Create(ctx, pack); err != nil {
		return nil, fmt.Errorf("failed to create content pack: %w", err)
	}
	slog.Info("content pack created", "pack_id", pack.ID, "project_id", projectID, "month", month)

	var brand json.RawMessage
	if project, err := s.projects.GetByID(ctx, projectID); err == nil && project != nil {
		brand = project.BrandProfile
	}

	created := 0
	for i := 0; i < n; i++ {
		arm, err := s.policy.Choose(ctx, projectID, month, policy.Context{SlotIndex: i, Month: month})
		if err != nil {
			slog.Info("policy unavailable, using fallback arm", "slot", i, "error", err.Error())
			arm = fallbackArm(i)
		}

		draft, err := s.draftSlot(ctx, brand, i+1, month, arm.Params)
		if err != nil {
			slog.Info("draft generation failed, using fallback draft", "slot", i, "error", err.Error())
			draft = fallbackDraft(i+1, arm.Params)
		}

		item := &models.ContentItem{
			ID:            utils.NewID("item"),
			ContentPackID: pack.ID,
			ProjectID:     projectID,
			Day:           i + 1,
			Format:        arm.Params.Format,
			Topic:         draft.Topic,
			Caption:       draft.Caption,
			VisualBrief:   draft.Visual,
			Status:        models.ItemStatusDraft,
			PublishMode:   models.PublishModeExportOnly,
			PublishStatus: models.PublishStatusNone,
		}
		if err := s.items.Create(ctx, nil, item); err != nil {
			return nil, fmt.Errorf("failed to create content item for day %d: %w", i+1, err)
		}

		params, err := json.Marshal(arm.Params)
		if err != nil {
			return nil, err
		}
		if err := s.features.Upsert(ctx, &models.ContentFeatures{
			ContentItemID: item.ID,
			ProjectID:     projectID,
			ArmID:         arm.ArmID,
			Features:      params,
		}); err != nil {
			return nil, fmt.Errorf("failed to bind arm for day %d: %w", i+1, err)
		}

		prompt := composeRenderPrompt(draft)
		negative := strings.Join(draft.Visual.NegativePrompt, ", ")
		if err := s.render.EnqueueRender(ctx, item.ID, prompt, negative, nil); err != nil {
			return nil, fmt.Errorf("failed to enqueue render for day %d: %w", i+1, err)
		}

		created++
	}

	slog.Info("plan generation done", "pack_id", pack.ID, "items", created)
	return &PlanResult{ContentPackID: pack.ID, Items: created}, nil
}

func (s *PlanService) draftSlot(ctx context.Context, brand json.RawMessage, day int, month string, arm policy.ArmParams) (*PostDraft, error) {
	if s.drafter == nil {
		return nil, fmt.Errorf("no drafter configured")
	}
	return s.drafter.DraftPost(ctx, DraftRequest{
		BrandProfile: brand,
		Day:          day,
		Month:        month,
		Arm:          arm,
	})
}

// fallbackArm is the deterministic local choice used when the policy service
// is unreachable: the format cycles through the three base formats by slot.
func fallbackArm(slotIndex int) *policy.Arm {
	formats := []string{models.FormatReel, models.FormatCarousel, models.FormatFeed}
	return &policy.Arm{
		ArmID: "fallback",
		Params: policy.ArmParams{
			Format:        formats[slotIndex%3],
			Pillar:        "mixed",
			HookType:      "question",
			CaptionLength: "medium",
			CTAType:       "comment",
			SceneTemplate: "studio_clean",
			PromoLevel:    0.3,
		},
	}
}

// fallbackDraft synthesizes a minimal placeholder so the pack completes even
// when the LLM is down.
func fallbackDraft(day int, arm policy.ArmParams) *PostDraft {
	return &PostDraft{
		Topic: fmt.Sprintf("Topic %d", day),
		Caption: models.Caption{
			Short: fmt.Sprintf("Hook %d", day),
			Long:  fmt.Sprintf("Longer caption %d (fallback).", day),
			CTA:   "Tell us in the comments.",
		},
		Visual: models.VisualBrief{
			SceneDescription: fmt.Sprintf("Scene template: %s. Product in focus, clean background.", arm.SceneTemplate),
			OnScreenText:     fmt.Sprintf("Post %d", day),
			NegativePrompt:   []string{"watermark", "distorted text", "misspelled logo", "low-res"},
		},
	}
}

func composeRenderPrompt(draft *PostDraft) string {
	return fmt.Sprintf("Photorealistic instagram-ready image. %s. On-screen text: %q.",
		draft.Visual.SceneDescription, draft.Visual.OnScreenText)
}
