package agents

import (
	"context"
	"fmt"

	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// QAVerifier scores a generated video against its scene specification
// using a vision-capable driver, or a deterministic fake when Vision
// is a mock. The overall score is always recomputed from the four
// sub-scores via models.ComputeOverallScore — a driver that reports a
// top-level score is ignored, so Passed is auditable independent of
// the driver's own arithmetic.
type QAVerifier struct {
	Vision llm.VisionCompletion
}

func NewQAVerifier(vision llm.VisionCompletion) *QAVerifier {
	return &QAVerifier{Vision: vision}
}

type qaResponse struct {
	VisualAccuracy   float64  `json:"visual_accuracy"`
	StyleConsistency float64  `json:"style_consistency"`
	TechnicalQuality float64  `json:"technical_quality"`
	NarrativeFit     float64  `json:"narrative_fit"`
	Issues           []string `json:"issues"`
	Suggestions      []string `json:"suggestions"`
}

// VerifyVideo analyzes generatedVideo's frames (passed in by the
// caller, already extracted) against scene and returns a QAResult
// gated by the tier's threshold.
func (q *QAVerifier) VerifyVideo(ctx context.Context, scene models.Scene, video models.GeneratedVideo, originalRequest string, tier models.ProductionTier, frames []llm.Image) (models.QAResult, error) {
	prompt := buildQAPrompt(scene, originalRequest, tier, len(frames))
	response, err := q.Vision.CompleteWithImages(ctx, qaSystemPrompt, prompt, frames)
	if err != nil {
		return models.QAResult{}, err
	}

	var parsed qaResponse
	if err := llm.ExtractJSON(response, &parsed); err != nil {
		return models.QAResult{}, err
	}

	threshold := models.QAThreshold(tier)
	overall := models.ComputeOverallScore(parsed.VisualAccuracy, parsed.StyleConsistency, parsed.TechnicalQuality, parsed.NarrativeFit)

	return models.QAResult{
		SceneID:          scene.SceneID,
		VideoURL:         video.VideoURL,
		OverallScore:     overall,
		VisualAccuracy:   parsed.VisualAccuracy,
		StyleConsistency: parsed.StyleConsistency,
		TechnicalQuality: parsed.TechnicalQuality,
		NarrativeFit:     parsed.NarrativeFit,
		Issues:           parsed.Issues,
		Suggestions:      parsed.Suggestions,
		Passed:           overall >= float64(threshold),
		Threshold:        threshold,
	}, nil
}

// VerifyBatch verifies each (scene, video) pair concurrently,
// returning results in the same order as the input slices.
func (q *QAVerifier) VerifyBatch(ctx context.Context, scenes []models.Scene, videos []models.GeneratedVideo, originalRequest string, tier models.ProductionTier) ([]models.QAResult, error) {
	if len(scenes) != len(videos) {
		return nil, fmt.Errorf("scenes and videos length mismatch: %d vs %d", len(scenes), len(videos))
	}

	results := make([]models.QAResult, len(scenes))
	errs := make([]error, len(scenes))
	done := make(chan int, len(scenes))

	for i := range scenes {
		go func(i int) {
			r, err := q.VerifyVideo(ctx, scenes[i], videos[i], originalRequest, tier, nil)
			results[i] = r
			errs[i] = err
			done <- i
		}(i)
	}
	for range scenes {
		<-done
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ShouldRegenerate applies the regeneration predicate: hard-fail
// (score < 50) regenerates whenever affordable; soft-fail (failed but
// >= 50) needs 1.5x headroom; a pass under 90 needs 2.5x headroom; 90+
// never regenerates.
func ShouldRegenerate(result models.QAResult, budgetAvailable, regenerationCost float64) bool {
	switch {
	case result.OverallScore < 50:
		return budgetAvailable >= regenerationCost
	case !result.Passed:
		return budgetAvailable >= regenerationCost*1.5
	case result.OverallScore < 90:
		return budgetAvailable >= regenerationCost*2.5
	default:
		return false
	}
}

const qaSystemPrompt = "You are a video QA specialist evaluating generated content against its scene specification."

func buildQAPrompt(scene models.Scene, originalRequest string, tier models.ProductionTier, numFrames int) string {
	return fmt.Sprintf(`SCENE SPECIFICATION:
- Title: %s
- Description: %s
- Visual Elements: %v
- Duration: %.1fs
- Style: %s

ORIGINAL REQUEST CONTEXT:
%s

You are shown %d frames from the generated video (start, middle, end).

Evaluate on four criteria, each 0-100: visual accuracy (do visuals match the
description?), style consistency (does it match the %s tier?), technical
quality (artifacts, blur, smoothness), and narrative fit (does it serve the
story?).

Return ONLY valid JSON (no markdown, no explanation):
{
  "visual_accuracy": 88,
  "style_consistency": 82,
  "technical_quality": 85,
  "narrative_fit": 85,
  "issues": ["list any issues found"],
  "suggestions": ["list actionable improvements"]
}`, scene.Title, scene.Description, scene.VisualElements, scene.DurationSec, tier, originalRequest, numFrames, tier)
}
