package pilot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aaronmarkham/studioproducer/internal/agents"
	"github.com/aaronmarkham/studioproducer/internal/budgetledger"
	"github.com/aaronmarkham/studioproducer/internal/costmodel"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

func threeSceneScriptResponse() string {
	return `{
		"scenes": [
			{"scene_id": "scene_1", "title": "Open", "description": "an opening shot", "duration": 5.0},
			{"scene_id": "scene_2", "title": "Middle", "description": "a middle shot", "duration": 5.0},
			{"scene_id": "scene_3", "title": "Close", "description": "a closing shot", "duration": 5.0}
		]
	}`
}

func highQAResponse() string {
	return `{"visual_accuracy": 90, "style_consistency": 90, "technical_quality": 90, "narrative_fit": 90}`
}

func newTestRunner(scriptResponse, qaResponse string, numVariations int) (*Runner, *budgetledger.Ledger) {
	scriptDriver := llm.NewMockDriver(scriptResponse)
	imageDriver := llm.NewMockDriver("")
	qaDriver := llm.NewMockDriver(qaResponse)

	sw := agents.NewScriptWriter(scriptDriver)
	vg := agents.NewVideoGenerator(imageDriver, models.ProviderMock)
	vg.NumVariations = numVariations
	vg.Sleep = func(time.Duration) {}
	qa := agents.NewQAVerifier(qaDriver)
	ag := agents.NewAudioGenerator()

	ledger := budgetledger.New(1000)
	r := New(sw, vg, ag, qa, ledger)
	r.Strategy = models.StrategyAllSequential
	return r, ledger
}

func TestRunTestPhaseProducesSceneResultsInOrder(t *testing.T) {
	r, ledger := newTestRunner(threeSceneScriptResponse(), highQAResponse(), 1)

	pilot := models.PilotStrategy{PilotID: "pilot_a", Tier: models.TierMotionGraphics, AllocatedBudget: 1000, TestSceneCount: 3, FullSceneCount: 3}
	result, err := r.RunTestPhase(context.Background(), pilot, "a cooking show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scenes) != 3 {
		t.Fatalf("expected 3 scene results, got %d", len(result.Scenes))
	}
	for i, sr := range result.Scenes {
		want := fmt.Sprintf("scene_%d", i+1)
		if sr.SceneID != want {
			t.Fatalf("scene result %d out of order: expected %s, got %s", i, want, sr.SceneID)
		}
		if !sr.QAPassed {
			t.Fatalf("expected scene %s to pass QA", sr.SceneID)
		}
	}
	if result.BudgetSpent <= 0 {
		t.Fatalf("expected positive budget spent")
	}
	if ledger.GetPilotSpent("pilot_a") != result.BudgetSpent {
		t.Fatalf("ledger spend %f does not match result spend %f", ledger.GetPilotSpent("pilot_a"), result.BudgetSpent)
	}
}

func TestRunTestPhaseStopsWhenBudgetExhausted(t *testing.T) {
	r, ledger := newTestRunner(threeSceneScriptResponse(), highQAResponse(), 1)

	perSceneCost := costmodel.EstimateSceneCost(models.TierMotionGraphics, 5.0, 1)
	budget := perSceneCost*2 + 0.001 // room for exactly 2 of the 3 scenes

	pilot := models.PilotStrategy{PilotID: "pilot_a", Tier: models.TierMotionGraphics, AllocatedBudget: budget, TestSceneCount: 3, FullSceneCount: 3}
	result, err := r.RunTestPhase(context.Background(), pilot, "a cooking show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scenes) != 2 {
		t.Fatalf("expected 2 scene results before budget exhaustion, got %d", len(result.Scenes))
	}
	if ledger.GetPilotSpent("pilot_a") > budget {
		t.Fatalf("ledger overspent: %f > %f", ledger.GetPilotSpent("pilot_a"), budget)
	}
}

func TestRunContinuationWritesRemainingScenes(t *testing.T) {
	scriptDriver := llm.NewMockDriver(`{"scenes": [{"scene_id": "scene_4", "title": "Extra", "description": "one more shot", "duration": 5.0}]}`)
	imageDriver := llm.NewMockDriver("")
	qaDriver := llm.NewMockDriver(highQAResponse())

	sw := agents.NewScriptWriter(scriptDriver)
	vg := agents.NewVideoGenerator(imageDriver, models.ProviderMock)
	vg.NumVariations = 1
	vg.Sleep = func(time.Duration) {}
	qa := agents.NewQAVerifier(qaDriver)
	ag := agents.NewAudioGenerator()
	ledger := budgetledger.New(1000)
	r := New(sw, vg, ag, qa, ledger)
	r.Strategy = models.StrategyAllSequential

	pilot := models.PilotStrategy{PilotID: "pilot_a", Tier: models.TierMotionGraphics, TestSceneCount: 3, FullSceneCount: 4}
	result, err := r.RunContinuation(context.Background(), pilot, "a cooking show", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scenes) != 1 {
		t.Fatalf("expected 1 continuation scene result, got %d", len(result.Scenes))
	}
	if len(scriptDriver.Calls) != 1 {
		t.Fatalf("expected scriptwriter called once, got %d", len(scriptDriver.Calls))
	}
}

func TestRunContinuationNoRemainingScenesIsNoop(t *testing.T) {
	r, _ := newTestRunner(threeSceneScriptResponse(), highQAResponse(), 1)
	pilot := models.PilotStrategy{PilotID: "pilot_a", TestSceneCount: 3, FullSceneCount: 3}
	result, err := r.RunContinuation(context.Background(), pilot, "a cooking show", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scenes) != 0 {
		t.Fatalf("expected no scenes when nothing remains, got %d", len(result.Scenes))
	}
}

func TestGenerateAllSceneAudio(t *testing.T) {
	r, _ := newTestRunner(threeSceneScriptResponse(), highQAResponse(), 1)
	scenes := []models.Scene{
		{SceneID: "scene_1", DurationSec: 5, VoiceoverText: "hello world"},
		{SceneID: "scene_2", DurationSec: 5},
	}
	audio := r.GenerateAllSceneAudio(scenes, models.AudioTierSimpleOverlay)
	if len(audio) != 2 {
		t.Fatalf("expected 2 audio entries, got %d", len(audio))
	}
	if audio[0].VoiceoverURL == "" {
		t.Fatalf("expected voiceover url for scene_1")
	}
	if audio[1].VoiceoverURL != "" {
		t.Fatalf("expected no voiceover url for scene_2 (empty voiceover text)")
	}
}
