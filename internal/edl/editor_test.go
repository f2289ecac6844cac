package edl

import (
	"context"
	"errors"
	"testing"

	"github.com/aaronmarkham/studioproducer/internal/errs"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

func TestCreateEDLRejectsEmptyScenes(t *testing.T) {
	e := NewEditor(llm.NewMockDriver("{}"))
	_, err := e.CreateEDL(context.Background(), nil, nil, nil, nil, "a cooking show", 3)
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateEDLPicksBalancedRecommendation(t *testing.T) {
	driver := llm.NewMockDriver(`{
		"candidates": [
			{"candidate_id": "safe_cut", "name": "Safe Cut", "editorial_approach": "safe", "estimated_quality": 90,
			 "edits": [{"scene_id": "scene_1", "selected_variation": 0, "in_point": 0.0, "out_point": 5.0, "duration": 5.0}]},
			{"candidate_id": "balanced_cut", "name": "Balanced Cut", "editorial_approach": "balanced", "estimated_quality": 85,
			 "edits": [{"scene_id": "scene_1", "selected_variation": 0, "in_point": 0.0, "out_point": 5.0, "duration": 5.0}]}
		]
	}`)
	e := NewEditor(driver)

	scenes := []models.Scene{{SceneID: "scene_1", Title: "Open", Description: "intro", DurationSec: 5}}
	videoCandidates := map[string][]models.GeneratedVideo{
		"scene_1": {{SceneID: "scene_1", VideoURL: "mock://scene_1/v0.mp4", Duration: 5}},
	}

	edl, err := e.CreateEDL(context.Background(), scenes, videoCandidates, nil, nil, "a cooking show", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edl.RecommendedCandidateID != "balanced_cut" {
		t.Fatalf("expected balanced_cut recommended, got %s", edl.RecommendedCandidateID)
	}
	if len(edl.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(edl.Candidates))
	}
}

func TestSelectRecommendedFallsBackToHighestQuality(t *testing.T) {
	e := NewEditor(llm.NewMockDriver("{}"))
	candidates := []models.EditCandidate{
		{CandidateID: "safe_cut", Style: models.StyleSafe, EstimatedQuality: 70},
		{CandidateID: "creative_cut", Style: models.StyleCreative, EstimatedQuality: 92},
	}
	got := e.SelectRecommended(candidates)
	if got != "creative_cut" {
		t.Fatalf("expected creative_cut (highest quality), got %s", got)
	}
}

func TestSelectRecommendedEmptyCandidates(t *testing.T) {
	e := NewEditor(llm.NewMockDriver("{}"))
	if got := e.SelectRecommended(nil); got != "" {
		t.Fatalf("expected empty string for no candidates, got %q", got)
	}
}

func TestGenerateCandidatesOffsetsChainedVideoTrimPoints(t *testing.T) {
	driver := llm.NewMockDriver(`{
		"candidates": [
			{"candidate_id": "safe_cut", "name": "Safe Cut", "editorial_approach": "safe", "estimated_quality": 90,
			 "edits": [{"scene_id": "scene_3", "selected_variation": 0, "in_point": 0.0, "out_point": 5.0, "duration": 5.0}]}
		]
	}`)
	e := NewEditor(driver)

	scenes := []models.Scene{{SceneID: "scene_3", Title: "Continuity", Description: "chained scene", DurationSec: 5}}
	videoCandidates := map[string][]models.GeneratedVideo{
		"scene_3": {{
			SceneID: "scene_3", VideoURL: "mock://scene_3/v0.mp4", Duration: 5,
			ContainsPrevious: true, NewContentStart: 1.0, TotalVideoDuration: 5.5,
		}},
	}

	candidates, err := e.GenerateCandidates(context.Background(), scenes, videoCandidates, nil, nil, "req", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || len(candidates[0].Decisions) != 1 {
		t.Fatalf("expected 1 candidate with 1 decision, got %+v", candidates)
	}
	d := candidates[0].Decisions[0]
	if d.InPoint != 1.0 {
		t.Fatalf("expected in_point offset to 1.0, got %f", d.InPoint)
	}
	if d.OutPoint != 5.5 {
		t.Fatalf("expected out_point clamped to total video duration 5.5, got %f", d.OutPoint)
	}
}

func TestGenerateCandidatesAttachesSceneAudio(t *testing.T) {
	driver := llm.NewMockDriver(`{
		"candidates": [
			{"candidate_id": "safe_cut", "name": "Safe Cut", "editorial_approach": "safe", "estimated_quality": 90,
			 "edits": [{"scene_id": "scene_1", "selected_variation": 0, "in_point": 0.0, "out_point": 5.0, "duration": 5.0}]}
		]
	}`)
	e := NewEditor(driver)

	scenes := []models.Scene{{SceneID: "scene_1", Title: "Open", Description: "intro", DurationSec: 5}}
	videoCandidates := map[string][]models.GeneratedVideo{
		"scene_1": {{SceneID: "scene_1", VideoURL: "mock://scene_1/v0.mp4", Duration: 5}},
	}
	sceneAudio := map[string]models.SceneAudio{
		"scene_1": {SceneID: "scene_1", VoiceoverURL: "mock://scene_1/voiceover.mp3"},
	}

	candidates, err := e.GenerateCandidates(context.Background(), scenes, videoCandidates, nil, sceneAudio, "req", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Decisions[0].AudioURL != "mock://scene_1/voiceover.mp3" {
		t.Fatalf("expected audio url wired from sceneAudio, got %q", candidates[0].Decisions[0].AudioURL)
	}
}
