package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Suggestion is what the model proposes for an uploaded photo.
type Suggestion struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type SuggestClient struct {
	model string
	log   *zap.SugaredLogger
}

func NewSuggestClient(model string, log *zap.SugaredLogger) *SuggestClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &SuggestClient{model: model, log: log}
}

// Suggest sends the image to Gemini and returns a proposed item name and
// category. Output parsing is tolerant: the model is asked for bare JSON but
// occasionally wraps it in prose or code fences.
func (c *SuggestClient) Suggest(ctx context.Context, imageData []byte, mimeType string) (*Suggestion, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("image is required")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini client init: %w", err)
	}

	prompt := `You are labeling a photo of a personal possession for an inventory app.
Answer with exactly one JSON object and nothing else, in the form
{"name": "<short item name>", "category": "<one-word category>"}.
Use the user's likely wording, not a product listing title.`

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(imageData, mimeType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}

	start := time.Now()
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	raw := res.Text()
	suggestion, err := ParseSuggestion(raw)
	if err != nil {
		c.log.Warnw("suggestion parse failed", "model", c.model, "len", len(raw), "error", err)
		return nil, err
	}
	c.log.Infow("suggestion generated", "model", c.model, "ms", time.Since(start).Milliseconds())
	return suggestion, nil
}
