package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/internal/service"
	"github.com/vissocial/pipeline/pkg/utils"
)

// refreshWindow is how far ahead of expiry a long-lived token is renewed.
const refreshWindow = 7 * 24 * time.Hour

type TokenRefreshJob struct {
	cfg      config.Config
	projects repository.ProjectRepository
	ig       service.InstagramService
}

func NewTokenRefreshJob(cfg config.Config, projects repository.ProjectRepository, ig service.InstagramService) *TokenRefreshJob {
	return &TokenRefreshJob{cfg: cfg, projects: projects, ig: ig}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	now := time.Now()
	projects, err := j.projects.ListExpiringTokens(ctx, now, now.Add(refreshWindow))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, project := range projects {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(project *models.Project) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.refreshProject(ctx, project); err != nil {
				slog.Info("unable to refresh Instagram token", "project_id", project.ID, "error", err.Error())
			}
		}(project)
	}

	wg.Wait()
}

func (j *TokenRefreshJob) refreshProject(ctx context.Context, project *models.Project) error {
	accessToken, err := utils.Decrypt(project.MetaAccessToken, []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	token, err := j.ig.RefreshLongLivedToken(ctx, accessToken)
	if err != nil {
		return err
	}

	encrypted, err := utils.Encrypt([]byte(token.AccessToken), []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return j.projects.SetToken(ctx, project.ID, encrypted, expiresAt)
}
