package llm

import (
	"context"
	"fmt"

	"github.com/aaronmarkham/studioproducer/internal/errs"
	"google.golang.org/genai"
)

// GeminiDriver backs TextCompletion, VisionCompletion, and
// ImageProvider through a single google.golang.org/genai client, the
// same SDK the teacher's video-generation service used for Veo.
type GeminiDriver struct {
	apiKey     string
	textModel  string
	imageModel string
}

// NewGeminiDriver constructs a driver around the given API key.
// textModel backs text and vision completion; imageModel backs
// GenerateImage. Empty strings fall back to gemini-2.5-flash and
// gemini-3-pro-image-preview.
func NewGeminiDriver(apiKey, textModel, imageModel string) *GeminiDriver {
	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}
	if imageModel == "" {
		imageModel = "gemini-3-pro-image-preview"
	}
	return &GeminiDriver{apiKey: apiKey, textModel: textModel, imageModel: imageModel}
}

func (d *GeminiDriver) newClient(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  d.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating genai client: %v", errs.ErrProviderFailure, err)
	}
	return client, nil
}

func (d *GeminiDriver) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	client, err := d.newClient(ctx)
	if err != nil {
		return "", err
	}

	fullPrompt := prompt
	if systemPrompt != "" {
		fullPrompt = systemPrompt + "\n\n" + prompt
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: fullPrompt}},
	}}

	resp, err := client.Models.GenerateContent(ctx, d.textModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate content: %v", errs.ErrProviderFailure, err)
	}
	return textFromResponse(resp)
}

func (d *GeminiDriver) CompleteWithImages(ctx context.Context, systemPrompt, prompt string, images []Image) (string, error) {
	client, err := d.newClient(ctx)
	if err != nil {
		return "", err
	}

	fullPrompt := prompt
	if systemPrompt != "" {
		fullPrompt = systemPrompt + "\n\n" + prompt
	}
	parts := []*genai.Part{{Text: fullPrompt}}
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MimeType, Data: img.Data},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := client.Models.GenerateContent(ctx, d.textModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: gemini vision completion: %v", errs.ErrProviderFailure, err)
	}
	return textFromResponse(resp)
}

func (d *GeminiDriver) GenerateImage(ctx context.Context, prompt string, aspectRatio string) ([]byte, string, error) {
	client, err := d.newClient(ctx)
	if err != nil {
		return nil, "", err
	}

	if aspectRatio == "" {
		aspectRatio = "9:16"
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: aspectRatio},
	}

	resp, err := client.Models.GenerateContent(ctx, d.imageModel, contents, config)
	if err != nil {
		return nil, "", fmt.Errorf("%w: gemini image generation: %v", errs.ErrProviderFailure, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", fmt.Errorf("%w: gemini returned no image candidates", errs.ErrProviderFailure)
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return part.InlineData.Data, mime, nil
		}
	}
	return nil, "", fmt.Errorf("%w: gemini response had no inline image data", errs.ErrProviderFailure)
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", errs.ErrProviderFailure)
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		out += part.Text
	}
	if out == "" {
		return "", fmt.Errorf("%w: gemini candidate had no text content", errs.ErrProviderFailure)
	}
	return out, nil
}
