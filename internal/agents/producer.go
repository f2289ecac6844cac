// Package agents implements the Producer, ScriptWriter, VideoGenerator,
// AudioGenerator, QAVerifier, and Critic contracts: the LLM- and
// provider-backed roles a pilot run and the orchestrator drive. Every
// agent depends only on the llm package's driver interfaces, so tests
// exercise them against llm.MockDriver without a network call.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/costmodel"
	"github.com/aaronmarkham/studioproducer/internal/errs"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Producer turns a concept and a budget into competing pilot
// strategies.
type Producer struct {
	Text llm.TextCompletion
}

func NewProducer(text llm.TextCompletion) *Producer {
	return &Producer{Text: text}
}

type producerPlanResponse struct {
	TotalScenesEstimated int `json:"total_scenes_estimated"`
	Pilots               []struct {
		PilotID         string  `json:"pilot_id"`
		Tier            string  `json:"tier"`
		AllocatedBudget float64 `json:"allocated_budget"`
		TestSceneCount  int     `json:"test_scene_count"`
		Rationale       string  `json:"rationale"`
	} `json:"pilots"`
}

// Plan analyzes the request and total budget and asks the driver for
// 2-3 pilot strategies with different tiers. Pilots whose tier is not
// a known ProductionTier are dropped; the rest are returned as the
// driver sent them, without checking how many there are or whether
// their tiers are distinct. provider knowledge, when supplied,
// is folded into the prompt as learned guidance; it never changes the
// budget constraint.
func (p *Producer) Plan(ctx context.Context, userRequest string, totalBudget float64, knowledge *models.ProviderKnowledge) ([]models.PilotStrategy, error) {
	if totalBudget <= 0 {
		return nil, fmt.Errorf("%w: total budget must be positive", errs.ErrInvalidInput)
	}
	if strings.TrimSpace(userRequest) == "" {
		return nil, fmt.Errorf("%w: user request must not be empty", errs.ErrInvalidInput)
	}

	prompt := buildProducerPrompt(userRequest, totalBudget, knowledge)
	response, err := p.Text.Complete(ctx, producerSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var parsed producerPlanResponse
	if err := llm.ExtractJSON(response, &parsed); err != nil {
		return nil, err
	}

	pilots := make([]models.PilotStrategy, 0, len(parsed.Pilots))
	for _, pp := range parsed.Pilots {
		tier := models.ProductionTier(pp.Tier)
		if !tier.Valid() {
			continue
		}
		pilots = append(pilots, models.PilotStrategy{
			PilotID:         pp.PilotID,
			Tier:            tier,
			AllocatedBudget: pp.AllocatedBudget,
			TestSceneCount:  pp.TestSceneCount,
			FullSceneCount:  parsed.TotalScenesEstimated,
			Rationale:       pp.Rationale,
		})
	}

	return pilots, nil
}

// EstimatePilotCost prices a pilot's test phase using the shared cost
// model, rounded to the cent.
func (p *Producer) EstimatePilotCost(pilot models.PilotStrategy, numVariations int, avgSceneDuration float64) float64 {
	cost := costmodel.EstimatePilotTestCost(pilot, numVariations, avgSceneDuration)
	return roundCents(cost)
}

const producerSystemPrompt = "You are a video production planner who designs competitive pilot strategies under a fixed budget."

func buildProducerPrompt(userRequest string, totalBudget float64, knowledge *models.ProviderKnowledge) string {
	var guidance strings.Builder
	if knowledge != nil {
		fmt.Fprintf(&guidance, "\nPROVIDER LEARNINGS (%d prior runs with %s, avg QA %.0f/100, avg cost $%.2f):\n%s\n",
			knowledge.SampleCount, knowledge.Provider, knowledge.AvgQAScore, knowledge.AvgCost, knowledge.Notes)
	}

	return fmt.Sprintf(`REQUEST: %s
BUDGET: $%.2f
%s
Available production tiers:
- static_images: $0.04/sec (quality ceiling 75)
- motion_graphics: $0.15/sec (quality ceiling 85)
- animated: $0.25/sec (quality ceiling 90)
- photorealistic: $0.50/sec (quality ceiling 95)

Create 2-3 pilot strategies with different tiers for competitive testing.
Each pilot gets an initial budget and produces 2-4 test scenes first.
Assume a video of roughly 60 seconds maps to 10-15 scenes total.

Return ONLY valid JSON (no markdown, no explanation):
{
  "total_scenes_estimated": 12,
  "pilots": [
    {"pilot_id": "pilot_a", "tier": "motion_graphics", "rationale": "Cost-effective baseline", "allocated_budget": 60.0, "test_scene_count": 3}
  ]
}`, userRequest, totalBudget, guidance.String())
}

func roundCents(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
