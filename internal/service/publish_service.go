package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/internal/transfer"
	"github.com/vissocial/pipeline/pkg/utils"
)

// Named precondition reasons. These are results, not errors: the caller is
// usually a background worker with nobody to show a stack trace to.
const (
	ReasonItemNotFound       = "item_not_found"
	ReasonPublishingDisabled = "publishing_disabled"
	ReasonMissingToken       = "missing_token_or_ig_user_id"
	ReasonNoRender           = "no_render"
)

type PublishResult struct {
	OK        bool   `json:"ok"`
	Reason    string `json:"error,omitempty"`
	IGMediaID string `json:"ig_media_id,omitempty"`
}

// MediaPublisher is the slice of the platform API the publish stage uses.
type MediaPublisher interface {
	CreateMediaContainer(ctx context.Context, igUserID, accessToken string, container transfer.MediaContainer) (string, error)
	PublishMedia(ctx context.Context, igUserID, accessToken, creationID string) (string, error)
}

// MetricsEnqueuer schedules a delayed engagement ingest for a project.
type MetricsEnqueuer interface {
	EnqueueMetrics(ctx context.Context, projectID, window string, delay time.Duration) error
}

var metricWindows = []struct {
	Label string
	Delay time.Duration
}{
	{"1h", time.Hour},
	{"24h", 24 * time.Hour},
	{"7d", 7 * 24 * time.Hour},
}

type PublishService struct {
	cfg      config.Config
	items    repository.ContentItemRepository
	projects repository.ProjectRepository
	renders  repository.RenderRepository
	ig       MediaPublisher
	metrics  MetricsEnqueuer
}

func NewPublishService(
	cfg config.Config,
	items repository.ContentItemRepository,
	projects repository.ProjectRepository,
	renders repository.RenderRepository,
	ig MediaPublisher,
	metrics MetricsEnqueuer) *PublishService {
	return &PublishService{
		cfg:      cfg,
		items:    items,
		projects: projects,
		renders:  renders,
		ig:       ig,
		metrics:  metrics,
	}
}

// PublishItem pushes an item to Instagram. Preconditions are checked in
// order and unmet ones come back as a non-fatal result; re-running a publish
// re-checks everything, including whether the item is already published, so
// duplicate deliveries of the job are safe. The render used is always the
// latest succeeded one at publish time, even after a prior failed attempt.
func (s *PublishService) PublishItem(ctx context.Context, itemID string) (*PublishResult, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return &PublishResult{OK: false, Reason: ReasonItemNotFound}, nil
	}
	if item.PublishStatus == models.PublishStatusPublished {
		// Redelivered job. The publish already happened; creating a second
		// media container would duplicate the post.
		return &PublishResult{OK: true, IGMediaID: item.IGMediaID}, nil
	}

	project, err := s.projects.GetByID(ctx, item.ProjectID)
	if err != nil {
		return nil, err
	}

	if !s.cfg.EnableInstagramPublish || project == nil || !project.IGPublishEnabled {
		return &PublishResult{OK: false, Reason: ReasonPublishingDisabled}, nil
	}
	if project.MetaAccessToken == "" || project.IGUserID == "" {
		return &PublishResult{OK: false, Reason: ReasonMissingToken}, nil
	}

	render, err := s.renders.LatestSucceeded(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if render == nil || render.Outputs.URL == "" {
		return &PublishResult{OK: false, Reason: ReasonNoRender}, nil
	}

	accessToken, err := utils.Decrypt(project.MetaAccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	creationID, mediaID, err := s.publishRender(ctx, project.IGUserID, accessToken, item, render)
	if err != nil {
		slog.Info("publish failed", "content_item_id", itemID, "error", err.Error())
		if serr := s.items.SetPublishStatus(ctx, models.PublishStatusFailed, itemID); serr != nil {
			slog.Info("failed to record publish failure", "content_item_id", itemID, "error", serr.Error())
		}
		return &PublishResult{OK: false, Reason: err.Error()}, nil
	}

	if err := s.items.SetPublished(ctx, itemID, creationID, mediaID); err != nil {
		return nil, fmt.Errorf("published but failed to persist platform ids: %w", err)
	}

	// Best effort: a window that cannot be scheduled must not undo the publish.
	for _, w := range metricWindows {
		if err := s.metrics.EnqueueMetrics(ctx, item.ProjectID, w.Label, w.Delay); err != nil {
			slog.Info("failed to schedule metrics window", "window", w.Label, "error", err.Error())
		}
	}

	slog.Info("item published", "content_item_id", itemID, "ig_media_id", mediaID)
	return &PublishResult{OK: true, IGMediaID: mediaID}, nil
}

func (s *PublishService) publishRender(ctx context.Context, igUserID, accessToken string, item *models.ContentItem, render *models.Render) (string, string, error) {
	creationID, err := s.ig.CreateMediaContainer(ctx, igUserID, accessToken, transfer.MediaContainer{
		ImageURL:  render.Outputs.URL,
		Caption:   item.Caption.Long,
		MediaType: "IMAGE",
	})
	if err != nil {
		return "", "", err
	}

	mediaID, err := s.ig.PublishMedia(ctx, igUserID, accessToken, creationID)
	if err != nil {
		return "", "", err
	}

	return creationID, mediaID, nil
}
