package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client talks to the arm-selection policy service. The selection math is
// the service's business; callers only see choose/update.
type Client interface {
	Choose(ctx context.Context, projectID, period string, pc Context) (*Arm, error)
	Update(ctx context.Context, projectID, period, armID string, reward float64, meta UpdateMeta) error
}

type httpClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

type chooseRequest struct {
	ProjectID string  `json:"project_id"`
	Period    string  `json:"period"`
	Context   Context `json:"context"`
}

type updateRequest struct {
	ProjectID string     `json:"project_id"`
	Period    string     `json:"period"`
	ArmID     string     `json:"arm_id"`
	Reward    float64    `json:"reward_01"`
	Meta      UpdateMeta `json:"meta"`
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("policy request %s failed with status %d", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("error parsing policy response: %w", err)
		}
	}
	return nil
}

func (c *httpClient) Choose(ctx context.Context, projectID, period string, pc Context) (*Arm, error) {
	var arm Arm
	err := c.post(ctx, "/policy/choose", chooseRequest{ProjectID: projectID, Period: period, Context: pc}, &arm)
	if err != nil {
		return nil, err
	}
	if arm.ArmID == "" {
		return nil, fmt.Errorf("policy returned no arm")
	}
	return &arm, nil
}

func (c *httpClient) Update(ctx context.Context, projectID, period, armID string, reward float64, meta UpdateMeta) error {
	return c.post(ctx, "/policy/update", updateRequest{
		ProjectID: projectID,
		Period:    period,
		ArmID:     armID,
		Reward:    reward,
		Meta:      meta,
	}, nil)
}
