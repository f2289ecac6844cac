// Package llm defines provider-agnostic contracts for text generation,
// vision analysis, image generation, and JSON extraction, plus the
// concrete drivers (OpenAI, Gemini, and an offline mock) that
// implement them. Agents depend only on these interfaces so a
// production run can swap providers — or fall back to the mock driver
// entirely — without touching agent logic.
package llm

import "context"

// TextCompletion sends a prompt (with an optional system prompt) and
// returns the model's raw text response.
type TextCompletion interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// VisionCompletion sends a prompt alongside one or more images and
// returns the model's raw text response. Each Image carries the raw
// image bytes and a MIME type such as "image/png" or "image/jpeg".
type VisionCompletion interface {
	CompleteWithImages(ctx context.Context, systemPrompt, prompt string, images []Image) (string, error)
}

// Image is a single inline image passed to a vision-capable model.
type Image struct {
	Data     []byte
	MimeType string
}

// ImageProvider generates a still image from a text prompt and
// returns the raw image bytes and its MIME type.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string, aspectRatio string) ([]byte, string, error)
}

// Driver bundles everything an agent needs from one provider. The
// mock driver backs all three capabilities for offline runs; the
// OpenAI driver backs all three through the OpenAI API; the Gemini
// driver backs all three via the same underlying client.
type Driver interface {
	TextCompletion
	VisionCompletion
	ImageProvider
}
