package agents

import (
	"context"
	"testing"

	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

func TestQAVerifierComputesOverallScoreFromSubScores(t *testing.T) {
	driver := llm.NewMockDriver(`{
		"visual_accuracy": 90, "style_consistency": 80, "technical_quality": 85, "narrative_fit": 70,
		"issues": [], "suggestions": []
	}`)
	q := NewQAVerifier(driver)

	scene := models.Scene{SceneID: "scene_1", Title: "Open", Description: "a shot", DurationSec: 5}
	video := models.GeneratedVideo{SceneID: "scene_1", VideoURL: "mock://scene_1/v0.mp4"}

	result, err := q.VerifyVideo(context.Background(), scene, video, "a cooking show", models.TierAnimated, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.ComputeOverallScore(90, 80, 85, 70)
	if result.OverallScore != want {
		t.Fatalf("expected overall score %f, got %f", want, result.OverallScore)
	}
	if result.Threshold != models.QAThreshold(models.TierAnimated) {
		t.Fatalf("expected threshold %d, got %d", models.QAThreshold(models.TierAnimated), result.Threshold)
	}
	if result.Passed != (want >= float64(models.QAThreshold(models.TierAnimated))) {
		t.Fatalf("Passed mismatch: score %f threshold %d passed %v", want, result.Threshold, result.Passed)
	}
}

func TestQAVerifierIgnoresDriverSuppliedOverallScore(t *testing.T) {
	// The driver response below reports a top-level overall_score of 10;
	// the result must ignore it and be computed purely from sub-scores.
	driver := llm.NewMockDriver(`{"overall_score": 10, "visual_accuracy": 100, "style_consistency": 100, "technical_quality": 100, "narrative_fit": 100}`)
	q := NewQAVerifier(driver)

	scene := models.Scene{SceneID: "scene_1", DurationSec: 5}
	video := models.GeneratedVideo{SceneID: "scene_1"}

	result, err := q.VerifyVideo(context.Background(), scene, video, "req", models.TierStaticImages, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OverallScore != 100 {
		t.Fatalf("expected overall score 100, got %f", result.OverallScore)
	}
}

func TestQAVerifierVerifyBatchPreservesOrder(t *testing.T) {
	driver := llm.NewMockDriver(`{"visual_accuracy": 80, "style_consistency": 80, "technical_quality": 80, "narrative_fit": 80}`)
	q := NewQAVerifier(driver)

	scenes := []models.Scene{
		{SceneID: "scene_1", DurationSec: 5},
		{SceneID: "scene_2", DurationSec: 5},
		{SceneID: "scene_3", DurationSec: 5},
	}
	videos := []models.GeneratedVideo{
		{SceneID: "scene_1"}, {SceneID: "scene_2"}, {SceneID: "scene_3"},
	}

	results, err := q.VerifyBatch(context.Background(), scenes, videos, "req", models.TierAnimated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.SceneID != scenes[i].SceneID {
			t.Fatalf("result %d out of order: expected %q, got %q", i, scenes[i].SceneID, r.SceneID)
		}
	}
}

func TestQAVerifierVerifyBatchRejectsLengthMismatch(t *testing.T) {
	q := NewQAVerifier(llm.NewMockDriver("{}"))
	scenes := []models.Scene{{SceneID: "scene_1"}}
	videos := []models.GeneratedVideo{}

	_, err := q.VerifyBatch(context.Background(), scenes, videos, "req", models.TierAnimated)
	if err == nil {
		t.Fatalf("expected a length mismatch error")
	}
}

func TestShouldRegenerateHardFail(t *testing.T) {
	result := models.QAResult{OverallScore: 40, Passed: false}
	if !ShouldRegenerate(result, 10, 10) {
		t.Fatalf("expected regeneration when budget exactly covers cost on hard fail")
	}
	if ShouldRegenerate(result, 9.99, 10) {
		t.Fatalf("expected no regeneration when budget is short")
	}
}

func TestShouldRegenerateSoftFail(t *testing.T) {
	result := models.QAResult{OverallScore: 60, Passed: false}
	if ShouldRegenerate(result, 14, 10) {
		t.Fatalf("expected no regeneration below 1.5x cost")
	}
	if !ShouldRegenerate(result, 15, 10) {
		t.Fatalf("expected regeneration at exactly 1.5x cost")
	}
}

func TestShouldRegeneratePassButNotExcellent(t *testing.T) {
	result := models.QAResult{OverallScore: 85, Passed: true}
	if ShouldRegenerate(result, 24, 10) {
		t.Fatalf("expected no regeneration below 2.5x cost")
	}
	if !ShouldRegenerate(result, 25, 10) {
		t.Fatalf("expected regeneration at exactly 2.5x cost")
	}
}

func TestShouldRegenerateExcellentNeverRegenerates(t *testing.T) {
	result := models.QAResult{OverallScore: 90, Passed: true}
	if ShouldRegenerate(result, 1000, 1) {
		t.Fatalf("expected excellent scores to never trigger regeneration")
	}
}
