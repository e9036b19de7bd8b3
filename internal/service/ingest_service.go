package service

import (
	"context"
	"log/slog"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/pkg/utils"
)

const ingestBatchLimit = 20

type IngestService struct {
	cfg      config.Config
	projects repository.ProjectRepository
	assets   repository.AssetRepository
	ig       InstagramService
}

func NewIngestService(cfg config.Config, projects repository.ProjectRepository, assets repository.AssetRepository, ig InstagramService) *IngestService {
	return &IngestService{cfg: cfg, projects: projects, assets: assets, ig: ig}
}

// IngestMedia imports the project's recent Instagram images as assets so
// later analysis and reference gathering have material to work with.
// Already-known URLs are skipped, which keeps re-runs idempotent.
func (s *IngestService) IngestMedia(ctx context.Context, projectID string) (int, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if project == nil || project.MetaAccessToken == "" || project.IGUserID == "" {
		return 0, ErrMissingToken
	}

	accessToken, err := utils.Decrypt(project.MetaAccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	media, err := s.ig.ListRecentMedia(ctx, project.IGUserID, accessToken, ingestBatchLimit)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, m := range media.Data {
		if m.MediaType != "IMAGE" || m.MediaURL == "" {
			continue
		}

		exists, err := s.assets.ExistsByURL(ctx, projectID, m.MediaURL)
		if err != nil || exists {
			continue
		}

		asset := &models.Asset{
			ID:        utils.NewID("ast"),
			ProjectID: projectID,
			URL:       m.MediaURL,
			Label:     models.AssetLabelIngested,
		}
		if err := s.assets.Create(ctx, asset); err != nil {
			slog.Info("failed to store ingested asset", "url", m.MediaURL, "error", err.Error())
			continue
		}
		added++
	}

	slog.Info("instagram ingest completed", "project_id", projectID, "added", added)
	return added, nil
}
