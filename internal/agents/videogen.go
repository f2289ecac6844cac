package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aaronmarkham/studioproducer/internal/costmodel"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// VideoGenerator produces video variations for a scene through an
// ImageProvider-backed or mock driver, stopping when the next
// variation would exceed its budget limit and retrying transient
// provider failures with exponential backoff.
type VideoGenerator struct {
	Images         llm.ImageProvider
	NumVariations  int
	RetryAttempts  int
	BackoffSeconds float64
	Provider       models.VideoProvider
	Sleep          func(time.Duration)
}

func NewVideoGenerator(images llm.ImageProvider, provider models.VideoProvider) *VideoGenerator {
	return &VideoGenerator{
		Images:         images,
		NumVariations:  3,
		RetryAttempts:  3,
		BackoffSeconds: 2.0,
		Provider:       provider,
		Sleep:          time.Sleep,
	}
}

// GenerateScene produces up to NumVariations videos for scene, each
// checked against budgetLimit before it is attempted. When chainFrom
// is non-empty, every returned variation is marked as chained and
// inherits chainGroup so downstream assembly knows to offset trims by
// new_content_start rather than treat the clip as self-contained.
func (g *VideoGenerator) GenerateScene(ctx context.Context, scene models.Scene, tier models.ProductionTier, budgetLimit float64, chainFrom string, chainGroup string) ([]models.GeneratedVideo, float64) {
	variations := g.NumVariations
	if variations <= 0 {
		variations = 1
	}

	var videos []models.GeneratedVideo
	var spent float64

	for i := 0; i < variations; i++ {
		estimatedCost := costmodel.EstimateSceneCost(tier, scene.DurationSec, 1)
		if spent+estimatedCost > budgetLimit {
			break
		}

		video, err := g.generateWithRetry(ctx, scene, i, tier, chainFrom, chainGroup)
		if err != nil {
			continue
		}
		videos = append(videos, video)
		spent += video.GenerationCost
	}

	return videos, spent
}

func (g *VideoGenerator) generateWithRetry(ctx context.Context, scene models.Scene, variationID int, tier models.ProductionTier, chainFrom, chainGroup string) (models.GeneratedVideo, error) {
	attempts := g.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		video, err := g.generateSingle(ctx, scene, variationID, tier, chainFrom, chainGroup)
		if err == nil {
			return video, nil
		}
		lastErr = err
		if attempt < attempts-1 {
			delay := time.Duration(g.BackoffSeconds*pow2(attempt)*1000) * time.Millisecond
			if g.Sleep != nil {
				g.Sleep(delay)
			}
		}
	}
	return models.GeneratedVideo{}, lastErr
}

func (g *VideoGenerator) generateSingle(ctx context.Context, scene models.Scene, variationID int, tier models.ProductionTier, chainFrom, chainGroup string) (models.GeneratedVideo, error) {
	prompt := buildVideoPrompt(scene, tier)
	_, _, err := g.Images.GenerateImage(ctx, prompt, "16:9")
	if err != nil {
		return models.GeneratedVideo{}, err
	}

	cost := costmodel.EstimateSceneCost(tier, scene.DurationSec, 1)
	video := models.GeneratedVideo{
		SceneID:        scene.SceneID,
		VariationID:    variationID,
		VideoURL:       fmt.Sprintf("mock://%s/v%d.mp4", scene.SceneID, variationID),
		Duration:       scene.DurationSec,
		GenerationCost: cost,
		Provider:       g.Provider,
		Metadata:       map[string]string{"prompt": prompt, "tier": string(tier)},
	}
	if chainFrom != "" {
		video.IsChained = true
		video.ContainsPrevious = true
		video.ChainGroup = chainGroup
		video.NewContentStart = scene.DurationSec * 0.1
		video.TotalVideoDuration = scene.DurationSec * 1.1
	}
	return video, nil
}

func buildVideoPrompt(scene models.Scene, tier models.ProductionTier) string {
	var b strings.Builder
	b.WriteString(scene.Description)
	if len(scene.VisualElements) > 0 {
		fmt.Fprintf(&b, ". Visual elements: %s", strings.Join(scene.VisualElements, ", "))
	}
	fmt.Fprintf(&b, ". Style: %s", tierStyle(tier))
	if len(scene.PromptHints) > 0 {
		fmt.Fprintf(&b, ". %s", strings.Join(scene.PromptHints, ", "))
	}
	fmt.Fprintf(&b, ". Duration: %.1fs", scene.DurationSec)
	return b.String()
}

func tierStyle(tier models.ProductionTier) string {
	switch tier {
	case models.TierStaticImages:
		return "clean illustration, high contrast, professional presentation"
	case models.TierMotionGraphics:
		return "smooth motion graphics, modern design, infographic style"
	case models.TierAnimated:
		return "stylized animation, engaging movement, vibrant colors"
	case models.TierPhotorealistic:
		return "cinematic realism, natural lighting, professional cinematography"
	default:
		return ""
	}
}

func pow2(n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= 2
	}
	return result
}
