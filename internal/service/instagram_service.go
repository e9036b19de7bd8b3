package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/transfer"
)

// InstagramService wraps the Graph API surface the pipeline needs: container
// creation, container publish, media listing, insights and token refresh.
type InstagramService interface {
	CreateMediaContainer(ctx context.Context, igUserID, accessToken string, container transfer.MediaContainer) (string, error)
	PublishMedia(ctx context.Context, igUserID, accessToken, creationID string) (string, error)
	GetMediaInsights(ctx context.Context, igMediaID, accessToken string, metrics []string) (map[string]int64, error)
	ListRecentMedia(ctx context.Context, igUserID, accessToken string, limit int) (*transfer.InstagramMediaListResponse, error)
	RefreshLongLivedToken(ctx context.Context, accessToken string) (*transfer.InstagramTokenResponse, error)
}

type instagramService struct {
	cfg config.Config
	hc  *http.Client
}

func NewInstagramService(cfg config.Config) InstagramService {
	return &instagramService{
		cfg: cfg,
		hc:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (ig *instagramService) base() string {
	return fmt.Sprintf("https://graph.instagram.com/%s", ig.cfg.Meta.GraphVersion)
}

func graphError(body []byte, status int) error {
	var igErr transfer.InstagramErrorResponse
	if err := json.Unmarshal(body, &igErr); err == nil && igErr.Error.Message != "" {
		return fmt.Errorf("instagram error (code %d): %s", igErr.Error.Code, igErr.Error.Message)
	}
	return fmt.Errorf("unexpected status code from Instagram: %d", status)
}

func (ig *instagramService) graphPOST(ctx context.Context, path, accessToken string, payload map[string]interface{}, out any) error {
	payload["access_token"] = accessToken

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", ig.base()+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ig.hc.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return graphError(respBody, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("error parsing response: %w", err)
		}
	}
	return nil
}

func (ig *instagramService) graphGET(ctx context.Context, path, accessToken string, params url.Values, out any) error {
	params.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, "GET", ig.base()+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := ig.hc.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return graphError(respBody, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}

func (ig *instagramService) CreateMediaContainer(ctx context.Context, igUserID, accessToken string, container transfer.MediaContainer) (string, error) {
	payload := map[string]interface{}{
		"image_url": container.ImageURL,
		"caption":   container.Caption,
	}
	if container.MediaType != "" {
		payload["media_type"] = container.MediaType
	}
	if container.IsCarouselItem {
		payload["is_carousel_item"] = true
	}

	var result transfer.InstagramMediaResponse
	if err := ig.graphPOST(ctx, fmt.Sprintf("/%s/media", igUserID), accessToken, payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("no container ID returned from Instagram")
	}
	return result.ID, nil
}

func (ig *instagramService) PublishMedia(ctx context.Context, igUserID, accessToken, creationID string) (string, error) {
	payload := map[string]interface{}{
		"creation_id": creationID,
	}

	var result transfer.InstagramMediaResponse
	if err := ig.graphPOST(ctx, fmt.Sprintf("/%s/media_publish", igUserID), accessToken, payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media ID returned from Instagram")
	}
	return result.ID, nil
}

func (ig *instagramService) GetMediaInsights(ctx context.Context, igMediaID, accessToken string, metrics []string) (map[string]int64, error) {
	params := url.Values{}
	params.Set("metric", strings.Join(metrics, ","))

	var insights transfer.InstagramInsightsResponse
	if err := ig.graphGET(ctx, fmt.Sprintf("/%s/insights", igMediaID), accessToken, params, &insights); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	values := make(map[string]int64, len(insights.Data))
	for _, m := range insights.Data {
		if len(m.Values) > 0 {
			values[m.Name] = m.Values[0].Value
		}
	}
	return values, nil
}

func (ig *instagramService) ListRecentMedia(ctx context.Context, igUserID, accessToken string, limit int) (*transfer.InstagramMediaListResponse, error) {
	params := url.Values{}
	params.Set("fields", "id,media_type,media_url,timestamp")
	params.Set("limit", strconv.Itoa(limit))

	var media transfer.InstagramMediaListResponse
	if err := ig.graphGET(ctx, fmt.Sprintf("/%s/media", igUserID), accessToken, params, &media); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &media, nil
}

// RefreshLongLivedToken extends an ig_refresh_token grant. Long-lived tokens
// last 60 days and must be refreshed before they lapse.
func (ig *instagramService) RefreshLongLivedToken(ctx context.Context, accessToken string) (*transfer.InstagramTokenResponse, error) {
	reqURL := fmt.Sprintf(
		"https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		url.QueryEscape(accessToken),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := ig.hc.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, graphError(respBody, resp.StatusCode)
	}

	var token transfer.InstagramTokenResponse
	if err := json.Unmarshal(respBody, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &token, nil
}
