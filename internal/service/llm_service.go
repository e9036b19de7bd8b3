package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/policy"
)

const draftSystemPrompt = `You are Vissocial, a senior Instagram strategist and visual director.
Return JSON only. Create a post concept + caption + visual blueprint.
Keep on-screen text <= 6 words.
Respond with {"topic": string, "caption": {"short": string, "long": string, "cta": string}, "visual_direction": {"scene_description": string, "on_screen_text": string, "negative_prompt": [string]}}.`

type DraftRequest struct {
	BrandProfile json.RawMessage  `json:"brand_profile"`
	Day          int              `json:"day"`
	Month        string           `json:"month"`
	Arm          policy.ArmParams `json:"arm"`
}

type PostDraft struct {
	Topic   string
	Caption models.Caption
	Visual  models.VisualBrief
}

// Drafter produces one post draft for a plan slot.
type Drafter interface {
	DraftPost(ctx context.Context, req DraftRequest) (*PostDraft, error)
}

type geminiDrafter struct {
	client *genai.Client
	model  string
}

func NewGeminiDrafter(ctx context.Context, cfg config.Config) (Drafter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiDrafter{client: client, model: cfg.GeminiModel}, nil
}

func (d *geminiDrafter) DraftPost(ctx context.Context, req DraftRequest) (*PostDraft, error) {
	model := d.client.GenerativeModel(d.model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.7)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(draftSystemPrompt)},
	}

	user := map[string]interface{}{
		"brand_profile": req.BrandProfile,
		"slot":          map[string]interface{}{"day": req.Day, "month": req.Month},
		"arm":           req.Arm,
		"instruction":   "Generate one Instagram post with caption and visual_direction (scene_description, negative_prompt[], on_screen_text).",
	}
	prompt, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, err
	}

	var out struct {
		Topic           string         `json:"topic"`
		Caption         models.Caption `json:"caption"`
		VisualDirection struct {
			SceneDescription string   `json:"scene_description"`
			OnScreenText     string   `json:"on_screen_text"`
			NegativePrompt   []string `json:"negative_prompt"`
		} `json:"visual_direction"`
	}
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse draft response: %w", err)
	}

	return &PostDraft{
		Topic:   out.Topic,
		Caption: out.Caption,
		Visual: models.VisualBrief{
			SceneDescription: out.VisualDirection.SceneDescription,
			OnScreenText:     out.VisualDirection.OnScreenText,
			NegativePrompt:   out.VisualDirection.NegativePrompt,
		},
	}, nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in model response")
	}
	return sb.String(), nil
}

// cleanJSONBlock strips markdown code fences some models wrap JSON in.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
