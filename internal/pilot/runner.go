// Package pilot implements the Pilot Runner: it drives one pilot's
// scenes end to end through the Execution Graph, VideoGenerator,
// QAVerifier, and AudioGenerator, debiting the shared Budget Ledger as
// it goes.
package pilot

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aaronmarkham/studioproducer/internal/agents"
	"github.com/aaronmarkham/studioproducer/internal/budgetledger"
	"github.com/aaronmarkham/studioproducer/internal/costmodel"
	"github.com/aaronmarkham/studioproducer/internal/execgraph"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Runner executes one pilot's scenes — either its test phase or a
// continuation to full length — against a shared Budget Ledger.
type Runner struct {
	ScriptWriter *agents.ScriptWriter
	VideoGen     *agents.VideoGenerator
	AudioGen     *agents.AudioGenerator
	QA           *agents.QAVerifier
	Ledger       *budgetledger.Ledger
	Strategy     models.ExecutionStrategy
}

func New(scriptWriter *agents.ScriptWriter, videoGen *agents.VideoGenerator, audioGen *agents.AudioGenerator, qa *agents.QAVerifier, ledger *budgetledger.Ledger) *Runner {
	return &Runner{
		ScriptWriter: scriptWriter,
		VideoGen:     videoGen,
		AudioGen:     audioGen,
		QA:           qa,
		Ledger:       ledger,
		Strategy:     models.StrategyAuto,
	}
}

// RunTestPhase writes pilot.TestSceneCount scenes targeting
// test_scene_count*5.0 seconds and runs them end to end within
// pilot.AllocatedBudget.
func (r *Runner) RunTestPhase(ctx context.Context, pilot models.PilotStrategy, originalRequest string) (models.PilotRunResult, error) {
	testDuration := float64(pilot.TestSceneCount) * 5.0
	scenes, err := r.ScriptWriter.Write(ctx, originalRequest, testDuration, pilot.Tier, pilot.TestSceneCount)
	if err != nil {
		return models.PilotRunResult{}, err
	}
	return r.runScenes(ctx, scenes, pilot.Tier, pilot.PilotID, pilot.AllocatedBudget, originalRequest)
}

// RunContinuation writes the remaining scenes (full_scene_count minus
// the scenes already produced by the test phase) and runs them within
// budgetLimit.
func (r *Runner) RunContinuation(ctx context.Context, pilot models.PilotStrategy, originalRequest string, budgetLimit float64) (models.PilotRunResult, error) {
	remaining := pilot.FullSceneCount - pilot.TestSceneCount
	if remaining <= 0 {
		return models.PilotRunResult{PilotID: pilot.PilotID}, nil
	}
	targetDuration := float64(remaining) * 5.0
	scenes, err := r.ScriptWriter.Write(ctx, originalRequest, targetDuration, pilot.Tier, remaining)
	if err != nil {
		return models.PilotRunResult{}, err
	}
	return r.runScenes(ctx, scenes, pilot.Tier, pilot.PilotID, budgetLimit, originalRequest)
}

// sceneOutcome is one wave-member's completed work, collected under a
// mutex since waves run their scenes concurrently.
type sceneOutcome struct {
	sceneID string
	result  *models.SceneResult
	videos  []models.GeneratedVideo
	qa      []models.QAResult
	spent   float64
}

// runScenes builds the Execution Graph for scenes, walks its waves —
// concurrent within a wave, sequential between waves — and stops
// scheduling new scenes (without aborting in-flight ones) once the
// next scene would exceed budgetLimit or the shared ledger's
// remaining.
func (r *Runner) runScenes(ctx context.Context, scenes []models.Scene, tier models.ProductionTier, pilotID string, budgetLimit float64, originalRequest string) (models.PilotRunResult, error) {
	graph := execgraph.Build(scenes, r.Strategy)
	waves := execgraph.GetExecutionWaves(graph)

	sceneByID := make(map[string]models.Scene, len(scenes))
	order := make(map[string]int, len(scenes))
	for i, s := range scenes {
		sceneByID[s.SceneID] = s
		order[s.SceneID] = i
	}
	chainFrom, chainGroup := buildChainInfo(graph)

	var (
		outcomes      []sceneOutcome
		mu            sync.Mutex
		stopped       bool
		spentThisCall float64
	)

	for _, wave := range waves {
		if stopped {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, sceneID := range wave.SceneIDs {
			sceneID := sceneID
			scene, ok := sceneByID[sceneID]
			if !ok {
				continue
			}

			estimatedCost := costmodel.EstimateSceneCost(tier, scene.DurationSec, 1)
			mu.Lock()
			spentSoFar := spentThisCall
			mu.Unlock()
			if spentSoFar+estimatedCost > budgetLimit || !r.Ledger.CanAfford(estimatedCost) {
				log.Printf("[PilotRunner] pilot %s stopping before scene %s: budget exhausted (spent %.2f, limit %.2f)", pilotID, sceneID, spentSoFar, budgetLimit)
				stopped = true
				continue
			}

			g.Go(func() error {
				mu.Lock()
				remaining := budgetLimit - spentThisCall
				mu.Unlock()
				outcome := r.generateScene(gctx, scene, tier, chainFrom[sceneID], chainGroup[sceneID], originalRequest, remaining)
				if outcome.spent > 0 {
					if err := r.Ledger.RecordSpend(pilotID, outcome.spent); err != nil {
						return err
					}
				}
				mu.Lock()
				outcomes = append(outcomes, outcome)
				spentThisCall += outcome.spent
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return models.PilotRunResult{}, fmt.Errorf("pilot %s: %w", pilotID, err)
		}
	}

	result := assembleResult(pilotID, outcomes, order)
	result.InputScenes = scenes
	return result, nil
}

// generateScene produces every variation for one scene, QA-verifies
// each concurrently, and keeps the highest-scoring variation. A scene
// that produces zero successful variations returns a zero-value
// result — the caller omits it rather than failing the pilot.
func (r *Runner) generateScene(ctx context.Context, scene models.Scene, tier models.ProductionTier, chainFrom, chainGroup, originalRequest string, budgetLimit float64) sceneOutcome {
	videos, spent := r.VideoGen.GenerateScene(ctx, scene, tier, budgetLimit, chainFrom, chainGroup)
	outcome := sceneOutcome{sceneID: scene.SceneID, videos: videos, spent: spent}
	if len(videos) == 0 {
		return outcome
	}

	sceneCopies := make([]models.Scene, len(videos))
	for i := range videos {
		sceneCopies[i] = scene
	}

	qaResults, err := r.QA.VerifyBatch(ctx, sceneCopies, videos, originalRequest, tier)
	if err != nil {
		return outcome
	}
	outcome.qa = qaResults

	bestIdx := 0
	for i, qa := range qaResults {
		if qa.OverallScore > qaResults[bestIdx].OverallScore {
			bestIdx = i
		}
	}

	best := videos[bestIdx]
	bestQA := qaResults[bestIdx]
	outcome.result = &models.SceneResult{
		SceneID:        scene.SceneID,
		Description:    scene.Description,
		VideoURL:       best.VideoURL,
		QAScore:        bestQA.OverallScore,
		QAPassed:       bestQA.Passed,
		QAThreshold:    bestQA.Threshold,
		QAIssues:       bestQA.Issues,
		GenerationCost: spent,
	}
	return outcome
}

func assembleResult(pilotID string, outcomes []sceneOutcome, order map[string]int) models.PilotRunResult {
	sortOutcomes(outcomes, order)

	result := models.PilotRunResult{PilotID: pilotID}
	for _, o := range outcomes {
		if o.result != nil {
			result.Scenes = append(result.Scenes, *o.result)
		}
		result.RawVideos = append(result.RawVideos, o.videos...)
		result.RawQA = append(result.RawQA, o.qa...)
		result.BudgetSpent += o.spent
	}
	return result
}

// sortOutcomes restores original ScriptWriter order regardless of wave
// completion order.
func sortOutcomes(outcomes []sceneOutcome, order map[string]int) {
	for i := 1; i < len(outcomes); i++ {
		for j := i; j > 0 && order[outcomes[j-1].sceneID] > order[outcomes[j].sceneID]; j-- {
			outcomes[j-1], outcomes[j] = outcomes[j], outcomes[j-1]
		}
	}
}

// GenerateAllSceneAudio produces SceneAudio for every scene at the
// given audio tier. The Pilot Runner's own return contract carries no
// audio field — audio is generated once, over the winning pilot's
// final scenes, right before the Editor builds its EDL.
func (r *Runner) GenerateAllSceneAudio(scenes []models.Scene, tier models.AudioTier) []models.SceneAudio {
	audio := make([]models.SceneAudio, len(scenes))
	for i, s := range scenes {
		audio[i] = r.AudioGen.GenerateSceneAudio(s, tier)
	}
	return audio
}

// buildChainInfo derives, per scene, the scene it chains its
// generation from and the chain group label to annotate the resulting
// video with. Only scenes in a sequential group chain; the first scene
// of a sequential group chains from the last scene of the group it
// chains from, if any.
func buildChainInfo(graph models.ExecutionGraph) (chainFrom map[string]string, chainGroup map[string]string) {
	chainFrom = make(map[string]string)
	chainGroup = make(map[string]string)

	lastSceneOfGroup := make(map[string]string)
	for _, g := range graph.Groups {
		if len(g.SceneIDs) > 0 {
			lastSceneOfGroup[g.GroupID] = g.SceneIDs[len(g.SceneIDs)-1]
		}
	}

	for _, g := range graph.Groups {
		if g.Mode != models.ModeSequential {
			continue
		}
		for i, sceneID := range g.SceneIDs {
			chainGroup[sceneID] = g.GroupID
			if i > 0 {
				chainFrom[sceneID] = g.SceneIDs[i-1]
				continue
			}
			if g.ChainFromGroup != "" {
				if prev, ok := lastSceneOfGroup[g.ChainFromGroup]; ok {
					chainFrom[sceneID] = prev
				}
			} else if g.ChainFromScene != "" {
				chainFrom[sceneID] = g.ChainFromScene
			}
		}
	}

	return chainFrom, chainGroup
}
