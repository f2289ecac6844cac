package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/aaronmarkham/studioproducer/internal/agents"
	"github.com/aaronmarkham/studioproducer/internal/budgetledger"
	"github.com/aaronmarkham/studioproducer/internal/edl"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
	"github.com/aaronmarkham/studioproducer/internal/pilot"
)

const highQAResponse = `{"visual_accuracy": 90, "style_consistency": 90, "technical_quality": 90, "narrative_fit": 90}`

func sceneResponse(sceneID string) string {
	return `{"scenes": [{"scene_id": "` + sceneID + `", "title": "t", "description": "d", "duration": 5.0}]}`
}

func newTestOrchestrator(t *testing.T, planResponse, scriptResponse, criticResponse string, ledgerTotal float64, withEditor bool) (*Orchestrator, *budgetledger.Ledger, *llm.MockDriver, *llm.MockDriver) {
	t.Helper()

	producerDriver := llm.NewMockDriver(planResponse)
	scriptDriver := llm.NewMockDriver(scriptResponse)
	imageDriver := llm.NewMockDriver("")
	qaDriver := llm.NewMockDriver(highQAResponse)
	criticDriver := llm.NewMockDriver(criticResponse)

	vg := agents.NewVideoGenerator(imageDriver, models.ProviderMock)
	vg.NumVariations = 1
	vg.Sleep = func(time.Duration) {}

	ledger := budgetledger.New(ledgerTotal)
	runner := pilot.New(agents.NewScriptWriter(scriptDriver), vg, agents.NewAudioGenerator(), agents.NewQAVerifier(qaDriver), ledger)
	runner.Strategy = models.StrategyAllSequential

	var editor *edl.Editor
	if withEditor {
		editorDriver := llm.NewMockDriver(`{
			"candidates": [
				{"candidate_id": "balanced_cut", "name": "Balanced", "editorial_approach": "balanced", "estimated_quality": 88,
				 "edits": [{"scene_id": "scene_1", "selected_variation": 0, "in_point": 0.0, "out_point": 5.0, "duration": 5.0}]}
			]
		}`)
		editor = edl.NewEditor(editorDriver)
	}

	o := New(agents.NewProducer(producerDriver), agents.NewCritic(criticDriver), runner, editor, ledger)
	o.MaxConcurrentPilots = 1

	return o, ledger, scriptDriver, criticDriver
}

func TestProduceHappyPathSinglePilot(t *testing.T) {
	plan := `{"total_scenes_estimated": 1, "pilots": [
		{"pilot_id": "pilot_a", "tier": "static_images", "allocated_budget": 10.0, "test_scene_count": 1, "rationale": "baseline"}
	]}`
	critic := `{"critic_score": 95, "approved": true, "gap_analysis": "", "critic_reasoning": "solid", "adjustments_needed": []}`

	o, _, _, _ := newTestOrchestrator(t, plan, sceneResponse("scene_1"), critic, 100, true)

	result, generatedEDL, err := o.Produce(context.Background(), "a cooking show", 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("expected success, got %q (reason %q)", result.Status, result.FailureReason)
	}
	if result.BestPilot == nil || result.BestPilot.PilotID != "pilot_a" {
		t.Fatalf("expected pilot_a to win, got %+v", result.BestPilot)
	}
	if generatedEDL == nil {
		t.Fatalf("expected a generated EDL when an editor is configured")
	}
	if generatedEDL.RecommendedCandidateID != "balanced_cut" {
		t.Fatalf("expected balanced_cut recommended, got %s", generatedEDL.RecommendedCandidateID)
	}
}

func TestProduceWithoutEditorReturnsNilEDL(t *testing.T) {
	plan := `{"total_scenes_estimated": 1, "pilots": [
		{"pilot_id": "pilot_a", "tier": "static_images", "allocated_budget": 10.0, "test_scene_count": 1, "rationale": "baseline"}
	]}`
	critic := `{"critic_score": 95, "approved": true, "gap_analysis": "", "critic_reasoning": "solid", "adjustments_needed": []}`

	o, _, _, _ := newTestOrchestrator(t, plan, sceneResponse("scene_1"), critic, 100, false)

	result, generatedEDL, err := o.Produce(context.Background(), "a cooking show", 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("expected success, got %q", result.Status)
	}
	if generatedEDL != nil {
		t.Fatalf("expected nil EDL with no editor configured, got %+v", generatedEDL)
	}
}

func TestProduceFailsWhenProducerPlansZeroPilots(t *testing.T) {
	plan := `{"total_scenes_estimated": 0, "pilots": []}`
	o, _, _, _ := newTestOrchestrator(t, plan, sceneResponse("scene_1"), "{}", 100, false)

	result, generatedEDL, err := o.Produce(context.Background(), "a cooking show", 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "failed" || result.FailureReason != "producer planned zero pilots" {
		t.Fatalf("expected zero-pilot failure, got %+v", result)
	}
	if generatedEDL != nil {
		t.Fatalf("expected nil EDL on failure")
	}
}

func TestProduceFailsWhenNoPilotSurvivesTestPhase(t *testing.T) {
	plan := `{"total_scenes_estimated": 1, "pilots": [
		{"pilot_id": "pilot_a", "tier": "static_images", "allocated_budget": 10.0, "test_scene_count": 1, "rationale": "baseline"}
	]}`
	o, _, _, _ := newTestOrchestrator(t, plan, "not valid json", "{}", 100, false)

	result, _, err := o.Produce(context.Background(), "a cooking show", 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "failed" || result.FailureReason != "no pilot produced a successful test phase" {
		t.Fatalf("expected test-phase failure, got %+v", result)
	}
}

func TestProduceFailsWhenNoPilotApproved(t *testing.T) {
	plan := `{"total_scenes_estimated": 1, "pilots": [
		{"pilot_id": "pilot_a", "tier": "static_images", "allocated_budget": 10.0, "test_scene_count": 1, "rationale": "baseline"}
	]}`
	critic := `{"critic_score": 40, "approved": false, "gap_analysis": "weak", "critic_reasoning": "not good enough", "adjustments_needed": ["retry"]}`
	o, _, _, _ := newTestOrchestrator(t, plan, sceneResponse("scene_1"), critic, 100, false)

	result, _, err := o.Produce(context.Background(), "a cooking show", 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "failed" || result.FailureReason != "no pilot was approved by the critic" {
		t.Fatalf("expected no-approval failure, got %+v", result)
	}
}

// TestProduceContinuesHigherScoringPilotFirstAndCapsOnBudget exercises
// stage 4: two approved pilots, descending critic_score continuation
// order, and a shared ledger exhausted after the higher scorer's
// continuation so the lower scorer is left at its test-phase results.
func TestProduceContinuesHigherScoringPilotFirstAndCapsOnBudget(t *testing.T) {
	plan := `{"total_scenes_estimated": 2, "pilots": [
		{"pilot_id": "pilot_a", "tier": "static_images", "allocated_budget": 5.0, "test_scene_count": 1, "rationale": "cheap"},
		{"pilot_id": "pilot_b", "tier": "static_images", "allocated_budget": 5.0, "test_scene_count": 1, "rationale": "also cheap"}
	]}`

	producerDriver := llm.NewMockDriver(plan)
	scriptDriver := llm.NewMockDriver("")
	scriptDriver.QueueResponse(sceneResponse("scene_1")) // pilot_a test phase
	scriptDriver.QueueResponse(sceneResponse("scene_1")) // pilot_b test phase
	scriptDriver.QueueResponse(sceneResponse("scene_2")) // pilot_b continuation

	imageDriver := llm.NewMockDriver("")
	qaDriver := llm.NewMockDriver(highQAResponse)

	criticDriver := llm.NewMockDriver("")
	criticDriver.QueueResponse(`{"critic_score": 70, "approved": true, "gap_analysis": "", "critic_reasoning": "ok", "adjustments_needed": []}`)
	criticDriver.QueueResponse(`{"critic_score": 95, "approved": true, "gap_analysis": "", "critic_reasoning": "great", "adjustments_needed": []}`)

	vg := agents.NewVideoGenerator(imageDriver, models.ProviderMock)
	vg.NumVariations = 1
	vg.Sleep = func(time.Duration) {}

	// Each 5s scene at static_images costs 5*0.04 = 0.2. Test phase for
	// both pilots spends 0.4 total, leaving 0.21 of a 0.61 total ledger —
	// enough for pilot_b's one continuation scene and too little (0.01)
	// for pilot_a's. (A 0.6 ledger would leave 0.19999999999999996 in
	// float64, just short of one scene.)
	ledger := budgetledger.New(0.61)
	runner := pilot.New(agents.NewScriptWriter(scriptDriver), vg, agents.NewAudioGenerator(), agents.NewQAVerifier(qaDriver), ledger)
	runner.Strategy = models.StrategyAllSequential

	o := New(agents.NewProducer(producerDriver), agents.NewCritic(criticDriver), runner, nil, ledger)
	o.MaxConcurrentPilots = 1

	result, _, err := o.Produce(context.Background(), "a cooking show", 0.61, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("expected success, got %q (%q)", result.Status, result.FailureReason)
	}
	if result.BestPilot == nil || result.BestPilot.PilotID != "pilot_b" {
		t.Fatalf("expected pilot_b (higher critic score) to win, got %+v", result.BestPilot)
	}
	if len(result.BestPilot.ScenesGenerated) != 2 {
		t.Fatalf("expected pilot_b to have completed its continuation scene, got %d scenes", len(result.BestPilot.ScenesGenerated))
	}

	var pilotAResult *models.PilotResults
	for i := range result.AllPilots {
		if result.AllPilots[i].PilotID == "pilot_a" {
			pilotAResult = &result.AllPilots[i]
		}
	}
	if pilotAResult == nil {
		t.Fatalf("expected pilot_a in all-pilots results")
	}
	if len(pilotAResult.ScenesGenerated) != 1 {
		t.Fatalf("expected pilot_a to remain at its test-phase scene count (budget exhausted), got %d", len(pilotAResult.ScenesGenerated))
	}

	if remaining := ledger.GetRemaining(); remaining < 0 {
		t.Fatalf("ledger overspent: remaining %v", remaining)
	}
}
