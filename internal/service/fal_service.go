package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/vissocial/pipeline/configs"
)

type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	ImageURLs      []string
}

type GenerateResult struct {
	URL       string
	ModelUsed string
}

// ImageGenerator turns a composed prompt (plus optional reference images)
// into a finished visual.
type ImageGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

type falService struct {
	cfg config.Config
	hc  *http.Client
}

// NewFalService builds a fal.ai client. Model routing: text-to-image when no
// references are passed, the edit model when references exist.
func NewFalService(cfg config.Config) ImageGenerator {
	return &falService{
		cfg: cfg,
		hc:  &http.Client{Timeout: 3 * time.Minute},
	}
}

func (f *falService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	model := f.cfg.Fal.FluxModel
	if len(req.ImageURLs) > 0 {
		model = f.cfg.Fal.FluxEditModel
	}

	payload := map[string]interface{}{
		"prompt": req.Prompt,
	}
	if req.NegativePrompt != "" {
		payload["negative_prompt"] = req.NegativePrompt
	}
	if len(req.ImageURLs) > 0 {
		payload["image_urls"] = req.ImageURLs
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", "https://fal.run/fal-ai/"+model, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+f.cfg.Fal.Key)

	resp, err := f.hc.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from fal.ai: %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return nil, fmt.Errorf("no image returned from fal.ai")
	}

	return &GenerateResult{URL: result.Images[0].URL, ModelUsed: model}, nil
}
