package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aaronmarkham/studioproducer/internal/errs"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIDriver backs TextCompletion, VisionCompletion (via GPT-4o
// vision input), and ImageProvider (via DALL-E) with the OpenAI API.
type OpenAIDriver struct {
	client     *openai.Client
	chatModel  string
	imageModel string
}

// NewOpenAIDriver constructs a driver around the given API key. model
// selects the chat/vision model; empty defaults to "gpt-4o".
func NewOpenAIDriver(apiKey, model string) *OpenAIDriver {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIDriver{
		client:     openai.NewClient(apiKey),
		chatModel:  model,
		imageModel: openai.CreateImageModelDallE3,
	}
}

func (d *OpenAIDriver) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := chatMessages(systemPrompt, prompt)
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    d.chatModel,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai chat completion: %v", errs.ErrProviderFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", errs.ErrProviderFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

func (d *OpenAIDriver) CompleteWithImages(ctx context.Context, systemPrompt, prompt string, images []Image) (string, error) {
	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: prompt}}
	for _, img := range images {
		encoded := base64.StdEncoding.EncodeToString(img.Data)
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", img.MimeType, encoded),
			},
		})
	}

	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    d.chatModel,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai vision completion: %v", errs.ErrProviderFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", errs.ErrProviderFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

func (d *OpenAIDriver) GenerateImage(ctx context.Context, prompt string, aspectRatio string) ([]byte, string, error) {
	size := openai.CreateImageSize1024x1024
	switch aspectRatio {
	case "9:16":
		size = openai.CreateImageSize1024x1792
	case "16:9":
		size = openai.CreateImageSize1792x1024
	}

	resp, err := d.client.CreateImage(ctx, openai.ImageRequest{
		Model:          d.imageModel,
		Prompt:         prompt,
		Size:           size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: openai image generation: %v", errs.ErrProviderFailure, err)
	}
	if len(resp.Data) == 0 {
		return nil, "", fmt.Errorf("%w: openai returned no image data", errs.ErrProviderFailure)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decoding openai image payload: %v", errs.ErrProviderFailure, err)
	}
	return raw, "image/png", nil
}

func chatMessages(systemPrompt, prompt string) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	return messages
}
