package llm

import (
	"context"
	"sync"
)

// RecordedCall captures one call made against MockDriver, for test
// assertions on prompt content.
type RecordedCall struct {
	SystemPrompt string
	Prompt       string
	ImageCount   int
}

// MockDriver is an offline stand-in for a real provider: it answers
// from a queue of canned responses (FIFO), falling back to a fixed
// default once the queue drains, and records every call it receives.
// It mirrors the mock Claude client used in this system's test suite —
// no network calls, deterministic output, safe for concurrent use.
type MockDriver struct {
	mu              sync.Mutex
	responses       []string
	index           int
	defaultResponse string
	imageBytes      []byte
	imageMimeType   string
	Calls           []RecordedCall
}

// NewMockDriver constructs a driver whose default text response is
// defaultResponse until QueueResponse supplies more specific ones.
func NewMockDriver(defaultResponse string) *MockDriver {
	return &MockDriver{
		defaultResponse: defaultResponse,
		imageBytes:      []byte{0x89, 'P', 'N', 'G'},
		imageMimeType:   "image/png",
	}
}

// QueueResponse appends a response to the FIFO queue; the next call to
// Complete or CompleteWithImages consumes the oldest queued response
// before falling back to the default.
func (d *MockDriver) QueueResponse(response string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses = append(d.responses, response)
}

// SetImage overrides the bytes and MIME type returned by GenerateImage.
func (d *MockDriver) SetImage(data []byte, mimeType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.imageBytes = data
	d.imageMimeType = mimeType
}

func (d *MockDriver) next() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index < len(d.responses) {
		r := d.responses[d.index]
		d.index++
		return r
	}
	return d.defaultResponse
}

func (d *MockDriver) record(call RecordedCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, call)
}

func (d *MockDriver) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	d.record(RecordedCall{SystemPrompt: systemPrompt, Prompt: prompt})
	return d.next(), nil
}

func (d *MockDriver) CompleteWithImages(ctx context.Context, systemPrompt, prompt string, images []Image) (string, error) {
	d.record(RecordedCall{SystemPrompt: systemPrompt, Prompt: prompt, ImageCount: len(images)})
	return d.next(), nil
}

func (d *MockDriver) GenerateImage(ctx context.Context, prompt string, aspectRatio string) ([]byte, string, error) {
	d.record(RecordedCall{Prompt: prompt})
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.imageBytes, d.imageMimeType, nil
}
