// Package orchestrator implements the Orchestrator: the five-stage
// pipeline that turns a concept and a budget into a finished pilot's
// scenes, by planning pilots with the Producer, running their test
// phases and critiques concurrently, completing the approved winners
// in descending score order, and selecting the best result.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/aaronmarkham/studioproducer/internal/agents"
	"github.com/aaronmarkham/studioproducer/internal/budgetledger"
	"github.com/aaronmarkham/studioproducer/internal/edl"
	"github.com/aaronmarkham/studioproducer/internal/models"
	"github.com/aaronmarkham/studioproducer/internal/pilot"
)

const defaultMaxConcurrentPilots = 3

// Orchestrator drives the full multi-pilot production pipeline:
// Producer plans, pilots run their tests concurrently, the Critic
// judges each, the approved ones continue to full length in
// score order, and the best is selected.
type Orchestrator struct {
	Producer            *agents.Producer
	Critic              *agents.Critic
	Runner              *pilot.Runner
	Editor              *edl.Editor
	Ledger              *budgetledger.Ledger
	MaxConcurrentPilots int
	AudioTier           models.AudioTier
}

// New constructs an Orchestrator with the default pilot fan-out bound
// (3) and a simple_overlay audio tier for the winner's EDL.
func New(producer *agents.Producer, critic *agents.Critic, runner *pilot.Runner, editor *edl.Editor, ledger *budgetledger.Ledger) *Orchestrator {
	return &Orchestrator{
		Producer:            producer,
		Critic:              critic,
		Runner:              runner,
		Editor:              editor,
		Ledger:              ledger,
		MaxConcurrentPilots: defaultMaxConcurrentPilots,
		AudioTier:           models.AudioTierSimpleOverlay,
	}
}

func (o *Orchestrator) maxConcurrency() int {
	if o.MaxConcurrentPilots <= 0 {
		return defaultMaxConcurrentPilots
	}
	return o.MaxConcurrentPilots
}

// Produce runs the five-stage pipeline and, when a winner is found and
// an Editor is configured, builds an EDL over the winner's scenes. The
// EDL is returned alongside the ProductionResult rather than embedded
// in it, since persisting it is the worker/run-store layer's concern.
func (o *Orchestrator) Produce(ctx context.Context, userRequest string, totalBudget float64, knowledge *models.ProviderKnowledge) (models.ProductionResult, *models.EDL, error) {
	log.Printf("[Orchestrator] stage 1: planning pilots for budget $%.2f", totalBudget)
	pilots, err := o.Producer.Plan(ctx, userRequest, totalBudget, knowledge)
	if err != nil {
		return models.ProductionResult{}, nil, fmt.Errorf("orchestrator: stage 1 plan: %w", err)
	}
	if len(pilots) == 0 {
		return o.failedResult("producer planned zero pilots"), nil, nil
	}

	log.Printf("[Orchestrator] stage 2: running %d pilot test phases (max %d concurrent)", len(pilots), o.maxConcurrency())
	survivingPilots, survivingResults := o.runTestPhases(ctx, pilots, userRequest)
	if len(survivingResults) == 0 {
		return o.failedResult("no pilot produced a successful test phase"), nil, nil
	}

	log.Printf("[Orchestrator] stage 3: evaluating %d surviving pilots", len(survivingResults))
	evaluations := o.evaluatePilots(ctx, survivingPilots, survivingResults, userRequest)

	approvedCount := 0
	for _, e := range evaluations {
		if e.Approved {
			approvedCount++
		}
	}
	if approvedCount == 0 {
		return o.failedResult("no pilot was approved by the critic"), nil, nil
	}

	log.Printf("[Orchestrator] stage 4: continuing %d approved pilot(s)", approvedCount)
	finalResults, mergedRuns := o.continueApproved(ctx, survivingPilots, survivingResults, evaluations, userRequest)

	log.Printf("[Orchestrator] stage 5: selecting winner")
	best, ok := agents.ComparePilots(finalResults)
	if !ok {
		return models.ProductionResult{
			Status:          "failed",
			AllPilots:       finalResults,
			BudgetUsed:      o.Ledger.GetTotalSpent(),
			BudgetRemaining: o.Ledger.GetRemaining(),
			FailureReason:   "no pilot remained approved after continuation",
		}, nil, nil
	}

	result := models.ProductionResult{
		Status:          "success",
		BestPilot:       &best,
		AllPilots:       finalResults,
		BudgetUsed:      o.Ledger.GetTotalSpent(),
		BudgetRemaining: o.Ledger.GetRemaining(),
		TotalScenes:     len(best.ScenesGenerated),
	}

	generatedEDL := o.buildEDL(ctx, best, survivingPilots, mergedRuns, userRequest)
	return result, generatedEDL, nil
}

// runTestPhases launches every pilot's test phase concurrently,
// bounded by MaxConcurrentPilots. A pilot whose test phase errors is
// logged and dropped; it never aborts the others.
func (o *Orchestrator) runTestPhases(ctx context.Context, pilots []models.PilotStrategy, userRequest string) ([]models.PilotStrategy, []models.PilotRunResult) {
	results := make([]*models.PilotRunResult, len(pilots))
	sem := make(chan struct{}, o.maxConcurrency())
	var wg sync.WaitGroup

	for i, p := range pilots {
		i, p := i, p
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := o.Runner.RunTestPhase(ctx, p, userRequest)
			if err != nil {
				log.Printf("[Orchestrator] pilot %s test phase failed: %v", p.PilotID, err)
				return
			}
			results[i] = &res
		}()
	}
	wg.Wait()

	var survivingPilots []models.PilotStrategy
	var survivingResults []models.PilotRunResult
	for i, r := range results {
		if r != nil {
			survivingPilots = append(survivingPilots, pilots[i])
			survivingResults = append(survivingResults, *r)
		}
	}
	return survivingPilots, survivingResults
}

// evaluatePilots invokes the Critic concurrently over every surviving
// pilot, bounded by the same concurrency primitive as Stage 2. A
// driver error produces a conservative not-approved evaluation rather
// than failing the whole stage.
func (o *Orchestrator) evaluatePilots(ctx context.Context, pilots []models.PilotStrategy, results []models.PilotRunResult, userRequest string) []models.PilotResults {
	evaluations := make([]models.PilotResults, len(pilots))
	sem := make(chan struct{}, o.maxConcurrency())
	var wg sync.WaitGroup

	for i := range pilots {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			ev, err := o.Critic.EvaluatePilot(ctx, pilots[i], results[i].Scenes, results[i].BudgetSpent, pilots[i].AllocatedBudget, userRequest)
			if err != nil {
				log.Printf("[Orchestrator] pilot %s critic evaluation failed: %v", pilots[i].PilotID, err)
				ev = models.PilotResults{
					PilotID:         pilots[i].PilotID,
					Tier:            pilots[i].Tier,
					ScenesGenerated: results[i].Scenes,
					TotalCost:       results[i].BudgetSpent,
					Approved:        false,
					CriticReasoning: "critic evaluation failed: " + err.Error(),
				}
			}
			evaluations[i] = ev
		}()
	}
	wg.Wait()
	return evaluations
}

// continueApproved completes approved pilots to full length, in
// descending critic_score order (ties keep the Producer's plan
// order), debiting the shared ledger as each one lands so a later,
// lower-scoring pilot sees whatever budget remains after earlier ones.
// Continuation stops being scheduled once the ledger is exhausted, but
// pilots already merged keep their results.
func (o *Orchestrator) continueApproved(ctx context.Context, pilots []models.PilotStrategy, testResults []models.PilotRunResult, evaluations []models.PilotResults, userRequest string) ([]models.PilotResults, []models.PilotRunResult) {
	final := make([]models.PilotResults, len(evaluations))
	copy(final, evaluations)

	mergedRuns := make([]models.PilotRunResult, len(testResults))
	copy(mergedRuns, testResults)

	type approvedPilot struct {
		idx   int
		pilot models.PilotStrategy
		eval  models.PilotResults
	}
	var approved []approvedPilot
	for i, e := range evaluations {
		if e.Approved && e.BudgetRemaining > 0 {
			approved = append(approved, approvedPilot{idx: i, pilot: pilots[i], eval: e})
		}
	}
	sort.SliceStable(approved, func(a, b int) bool {
		return approved[a].eval.CriticScore > approved[b].eval.CriticScore
	})

	for _, a := range approved {
		remaining := o.Ledger.GetRemaining()
		if remaining <= 0 {
			log.Printf("[Orchestrator] stage 4: global budget exhausted, leaving %s at test-phase results", a.pilot.PilotID)
			continue
		}

		continuationBudget := a.eval.BudgetRemaining
		if remaining < continuationBudget {
			continuationBudget = remaining
		}
		if continuationBudget <= 0 {
			continue
		}

		contResult, err := o.Runner.RunContinuation(ctx, a.pilot, userRequest, continuationBudget)
		if err != nil {
			log.Printf("[Orchestrator] pilot %s continuation failed: %v", a.pilot.PilotID, err)
			continue
		}

		allScenes := append(append([]models.SceneResult{}, a.eval.ScenesGenerated...), contResult.Scenes...)
		var sumQA float64
		for _, s := range allScenes {
			sumQA += s.QAScore
		}
		avgQA := 0.0
		if len(allScenes) > 0 {
			avgQA = sumQA / float64(len(allScenes))
		}

		merged := a.eval
		merged.ScenesGenerated = allScenes
		merged.TotalCost = a.eval.TotalCost + contResult.BudgetSpent
		merged.AvgQAScore = avgQA
		final[a.idx] = merged

		mergedRun := mergedRuns[a.idx]
		mergedRun.Scenes = allScenes
		mergedRun.BudgetSpent += contResult.BudgetSpent
		mergedRun.RawVideos = append(mergedRun.RawVideos, contResult.RawVideos...)
		mergedRun.RawQA = append(mergedRun.RawQA, contResult.RawQA...)
		mergedRun.InputScenes = append(mergedRun.InputScenes, contResult.InputScenes...)
		mergedRuns[a.idx] = mergedRun
	}

	return final, mergedRuns
}

// buildEDL generates audio for the winning pilot's final scenes and
// hands it, along with every variation and QA result the pilot
// produced, to the Editor. Returns nil if no Editor is configured or
// the winner's scene data couldn't be located.
func (o *Orchestrator) buildEDL(ctx context.Context, best models.PilotResults, pilots []models.PilotStrategy, mergedRuns []models.PilotRunResult, userRequest string) *models.EDL {
	if o.Editor == nil {
		return nil
	}

	var winnerRun *models.PilotRunResult
	for i, p := range pilots {
		if p.PilotID == best.PilotID {
			winnerRun = &mergedRuns[i]
			break
		}
	}
	if winnerRun == nil || len(winnerRun.InputScenes) == 0 {
		return nil
	}

	videoCandidates := make(map[string][]models.GeneratedVideo)
	for _, v := range winnerRun.RawVideos {
		videoCandidates[v.SceneID] = append(videoCandidates[v.SceneID], v)
	}
	qaResults := make(map[string][]models.QAResult)
	for _, q := range winnerRun.RawQA {
		qaResults[q.SceneID] = append(qaResults[q.SceneID], q)
	}

	audioList := o.Runner.GenerateAllSceneAudio(winnerRun.InputScenes, o.audioTier())
	sceneAudio := make(map[string]models.SceneAudio, len(audioList))
	for _, a := range audioList {
		sceneAudio[a.SceneID] = a
	}

	generatedEDL, err := o.Editor.CreateEDL(ctx, winnerRun.InputScenes, videoCandidates, qaResults, sceneAudio, userRequest, 3)
	if err != nil {
		log.Printf("[Orchestrator] EDL generation for winner %s failed: %v", best.PilotID, err)
		return nil
	}
	return &generatedEDL
}

func (o *Orchestrator) audioTier() models.AudioTier {
	if o.AudioTier == "" {
		return models.AudioTierSimpleOverlay
	}
	return o.AudioTier
}

func (o *Orchestrator) failedResult(reason string) models.ProductionResult {
	return models.ProductionResult{
		Status:          "failed",
		BudgetUsed:      o.Ledger.GetTotalSpent(),
		BudgetRemaining: o.Ledger.GetRemaining(),
		FailureReason:   reason,
	}
}
