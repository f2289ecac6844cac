package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aaronmarkham/studioproducer/internal/costmodel"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

func noSleep(time.Duration) {}

func TestVideoGeneratorStopsBeforeExceedingBudget(t *testing.T) {
	driver := llm.NewMockDriver("")
	g := NewVideoGenerator(driver, models.ProviderMock)
	g.Sleep = noSleep
	g.NumVariations = 5

	scene := models.Scene{SceneID: "scene_1", DurationSec: 5, Description: "a scene"}
	perVariation := costmodel.EstimateSceneCost(models.TierAnimated, scene.DurationSec, 1)
	budget := perVariation*2 + 0.001 // room for exactly 2 variations

	videos, spent := g.GenerateScene(context.Background(), scene, models.TierAnimated, budget, "", "")

	if len(videos) != 2 {
		t.Fatalf("expected 2 variations generated, got %d", len(videos))
	}
	expectedSpent := perVariation * 2
	if diff := spent - expectedSpent; diff > 0.0001 || diff < -0.0001 {
		t.Fatalf("expected spent %f, got %f", expectedSpent, spent)
	}
}

func TestVideoGeneratorMarksChainedFields(t *testing.T) {
	driver := llm.NewMockDriver("")
	g := NewVideoGenerator(driver, models.ProviderMock)
	g.Sleep = noSleep
	g.NumVariations = 1

	scene := models.Scene{SceneID: "scene_3", DurationSec: 10, Description: "continuity scene"}
	videos, _ := g.GenerateScene(context.Background(), scene, models.TierAnimated, 1000, "scene_2", "hero_arc")

	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
	v := videos[0]
	if !v.IsChained || !v.ContainsPrevious {
		t.Fatalf("expected chained flags set: %+v", v)
	}
	if v.ChainGroup != "hero_arc" {
		t.Fatalf("expected chain group 'hero_arc', got %q", v.ChainGroup)
	}
	if v.NewContentStart != 1.0 { // 10 * 0.1
		t.Fatalf("expected new_content_start 1.0, got %f", v.NewContentStart)
	}
	if v.TotalVideoDuration != 11.0 { // 10 * 1.1
		t.Fatalf("expected total_video_duration 11.0, got %f", v.TotalVideoDuration)
	}
}

func TestVideoGeneratorUnchainedFieldsAreZero(t *testing.T) {
	driver := llm.NewMockDriver("")
	g := NewVideoGenerator(driver, models.ProviderMock)
	g.Sleep = noSleep
	g.NumVariations = 1

	scene := models.Scene{SceneID: "scene_1", DurationSec: 5, Description: "standalone scene"}
	videos, _ := g.GenerateScene(context.Background(), scene, models.TierAnimated, 1000, "", "")

	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
	v := videos[0]
	if v.IsChained || v.ContainsPrevious || v.ChainGroup != "" {
		t.Fatalf("expected no chained fields set: %+v", v)
	}
}

type failingImageProvider struct {
	failuresBeforeSuccess int
	calls                 int
}

func (f *failingImageProvider) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, string, error) {
	f.calls++
	if f.calls <= f.failuresBeforeSuccess {
		return nil, "", errors.New("transient provider error")
	}
	return []byte{1, 2, 3}, "image/png", nil
}

func TestVideoGeneratorRetriesWithBackoff(t *testing.T) {
	provider := &failingImageProvider{failuresBeforeSuccess: 2}
	g := NewVideoGenerator(provider, models.ProviderMock)
	g.NumVariations = 1
	g.RetryAttempts = 3

	var slept []time.Duration
	g.Sleep = func(d time.Duration) { slept = append(slept, d) }

	scene := models.Scene{SceneID: "scene_1", DurationSec: 5, Description: "a scene"}
	videos, _ := g.GenerateScene(context.Background(), scene, models.TierAnimated, 1000, "", "")

	if len(videos) != 1 {
		t.Fatalf("expected the retried call to eventually succeed, got %d videos", len(videos))
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 backoff sleeps before success, got %d", len(slept))
	}
	if slept[1] <= slept[0] {
		t.Fatalf("expected exponentially increasing backoff, got %v then %v", slept[0], slept[1])
	}
}

func TestVideoGeneratorExhaustsRetriesAndSkipsVariation(t *testing.T) {
	provider := &failingImageProvider{failuresBeforeSuccess: 100}
	g := NewVideoGenerator(provider, models.ProviderMock)
	g.Sleep = noSleep
	g.NumVariations = 1
	g.RetryAttempts = 2

	scene := models.Scene{SceneID: "scene_1", DurationSec: 5, Description: "a scene"}
	videos, spent := g.GenerateScene(context.Background(), scene, models.TierAnimated, 1000, "", "")

	if len(videos) != 0 {
		t.Fatalf("expected no videos after exhausting retries, got %d", len(videos))
	}
	if spent != 0 {
		t.Fatalf("expected zero spend, got %f", spent)
	}
}
