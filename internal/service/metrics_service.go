package service

import (
	"context"
	"errors"
	"log/slog"
	"math"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/policy"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/pkg/utils"
)

// ErrMissingToken means the project cannot be measured at all; the job is
// not worth retrying until the project reconnects its account.
var ErrMissingToken = errors.New("missing_token")

const metricsBatchLimit = 25

var insightMetrics = []string{"reach", "impressions", "saved", "shares", "comments", "likes"}

// InsightsFetcher is the slice of the platform API the metrics stage uses.
type InsightsFetcher interface {
	GetMediaInsights(ctx context.Context, igMediaID, accessToken string, metrics []string) (map[string]int64, error)
}

type MetricsService struct {
	cfg      config.Config
	items    repository.ContentItemRepository
	projects repository.ProjectRepository
	metrics  repository.PostMetricsRepository
	ig       InsightsFetcher
	policy   policy.Client
}

func NewMetricsService(
	cfg config.Config,
	items repository.ContentItemRepository,
	projects repository.ProjectRepository,
	metrics repository.PostMetricsRepository,
	ig InsightsFetcher,
	pc policy.Client) *MetricsService {
	return &MetricsService{
		cfg:      cfg,
		items:    items,
		projects: projects,
		metrics:  metrics,
		ig:       ig,
		policy:   pc,
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ComputeReward maps raw engagement onto [0,1]. A post with no reach gets a
// neutral 0.5 rather than a punishment; otherwise the engagement rate runs
// through a logistic curve centered at a 2% target rate, so 2% engagement is
// exactly 0.5 and the reward grows monotonically from there.
func ComputeReward(m models.EngagementMetrics) float64 {
	if m.Reach <= 0 {
		return 0.5
	}
	eng := float64(m.Likes+m.Comments+m.Saves+m.Shares) / float64(m.Reach)
	return sigmoid((eng - 0.02) / 0.02)
}

// Ingest pulls engagement for the most recently published items and feeds
// rewards back to the policy. One item's failure never aborts the batch.
func (s *MetricsService) Ingest(ctx context.Context, projectID, window string) (int, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if project == nil || project.MetaAccessToken == "" {
		return 0, ErrMissingToken
	}

	accessToken, err := utils.Decrypt(project.MetaAccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	items, err := s.items.ListPublished(ctx, projectID, metricsBatchLimit)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, it := range items {
		values, err := s.ig.GetMediaInsights(ctx, it.IGMediaID, accessToken, insightMetrics)
		if err != nil {
			slog.Info("insights fetch failed, skipping item", "ig_media_id", it.IGMediaID, "error", err.Error())
			continue
		}

		engagement := models.EngagementMetrics{
			Reach:       values["reach"],
			Impressions: values["impressions"],
			Saves:       values["saved"],
			Shares:      values["shares"],
			Comments:    values["comments"],
			Likes:       values["likes"],
		}
		reward := ComputeReward(engagement)

		if err := s.metrics.Create(ctx, &models.PostMetrics{
			ID:            utils.NewID("met"),
			ProjectID:     projectID,
			ContentItemID: it.ID,
			Window:        window,
			Metrics:       engagement,
			Reward:        reward,
		}); err != nil {
			slog.Info("failed to persist metrics, skipping item", "content_item_id", it.ID, "error", err.Error())
			continue
		}

		if it.ArmID != "" {
			err := s.policy.Update(ctx, projectID, it.Month, it.ArmID, reward, policy.UpdateMeta{
				ContentItemID: it.ID,
				Window:        window,
			})
			if err != nil {
				slog.Info("policy update failed, skipping item", "content_item_id", it.ID, "error", err.Error())
				continue
			}
		}

		updated++
	}

	return updated, nil
}
