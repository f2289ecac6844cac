package agents

import (
	"context"
	"fmt"

	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Critic judges a pilot's test-phase results against the original
// request, deciding whether the pilot continues to full production
// and, if several pilots are approved, which one wins.
type Critic struct {
	Text llm.TextCompletion
}

func NewCritic(text llm.TextCompletion) *Critic {
	return &Critic{Text: text}
}

type criticResponse struct {
	CriticScore         float64  `json:"critic_score"`
	Approved            bool     `json:"approved"`
	GapAnalysis         string   `json:"gap_analysis"`
	CriticReasoning     string   `json:"critic_reasoning"`
	AdjustmentsNeeded   []string `json:"adjustments_needed"`
	QAOverrideReasoning string   `json:"qa_override_reasoning"`
}

// ContinuationBudgetFraction maps a critic_score band to the fraction
// of the pilot's remaining budget it is allowed to spend on full
// production: 90-100 gets everything, 75-89 three quarters, 65-74
// half, and below 65 the pilot is cancelled outright.
func ContinuationBudgetFraction(criticScore float64) float64 {
	switch {
	case criticScore >= 90:
		return 1.0
	case criticScore >= 75:
		return 0.75
	case criticScore >= 65:
		return 0.5
	default:
		return 0.0
	}
}

// EvaluatePilot scores a pilot's test-phase scenes against the
// original request and budget context, and recommends a continuation
// budget drawn from ContinuationBudgetFraction applied to whatever
// remains of the pilot's allocation. When any scene failed QA and the
// driver approves anyway, qa_override_reasoning is required: a first
// response that approves with qa_failures_count>0 and an empty
// override is retried once with a more explicit prompt; if the retry
// still comes back empty, a conservative fallback reasoning string is
// synthesized rather than ever surfacing an empty override on an
// approved, QA-failing pilot.
func (c *Critic) EvaluatePilot(ctx context.Context, pilot models.PilotStrategy, sceneResults []models.SceneResult, budgetSpent, budgetAllocated float64, originalRequest string) (models.PilotResults, error) {
	if len(sceneResults) == 0 {
		return models.PilotResults{
			PilotID:         pilot.PilotID,
			Tier:            pilot.Tier,
			ScenesGenerated: sceneResults,
			TotalCost:       budgetSpent,
			AvgQAScore:      0,
			CriticScore:     0,
			Approved:        false,
			BudgetRemaining: budgetAllocated - budgetSpent,
			CriticReasoning: "no scenes were generated; video generation failed",
		}, nil
	}

	qaFailures := 0
	var sumQA float64
	for _, sr := range sceneResults {
		if !sr.QAPassed {
			qaFailures++
		}
		sumQA += sr.QAScore
	}
	avgQA := sumQA / float64(len(sceneResults))
	budgetRemaining := budgetAllocated - budgetSpent

	prompt := buildCriticPrompt(pilot, sceneResults, budgetSpent, budgetAllocated, originalRequest, qaFailures, avgQA)
	response, err := c.Text.Complete(ctx, criticSystemPrompt, prompt)
	if err != nil {
		return models.PilotResults{}, err
	}

	var parsed criticResponse
	if err := llm.ExtractJSON(response, &parsed); err != nil {
		return models.PilotResults{}, err
	}

	if qaFailures > 0 && parsed.Approved && parsed.QAOverrideReasoning == "" {
		retryPrompt := buildCriticOverrideRetryPrompt(pilot, qaFailures, len(sceneResults))
		if retryResponse, retryErr := c.Text.Complete(ctx, criticSystemPrompt, retryPrompt); retryErr == nil {
			var retryParsed criticResponse
			if llm.ExtractJSON(retryResponse, &retryParsed) == nil && retryParsed.QAOverrideReasoning != "" {
				parsed.QAOverrideReasoning = retryParsed.QAOverrideReasoning
			}
		}
		if parsed.QAOverrideReasoning == "" {
			parsed.QAOverrideReasoning = fmt.Sprintf("approved despite %d QA failure(s); no reasoning supplied by evaluator", qaFailures)
		}
	}

	recommendedBudget := 0.0
	if parsed.Approved {
		recommendedBudget = budgetRemaining * ContinuationBudgetFraction(parsed.CriticScore)
	}

	return models.PilotResults{
		PilotID:             pilot.PilotID,
		Tier:                pilot.Tier,
		ScenesGenerated:     sceneResults,
		TotalCost:           budgetSpent,
		AvgQAScore:          avgQA,
		CriticScore:         parsed.CriticScore,
		Approved:            parsed.Approved,
		BudgetRemaining:     recommendedBudget,
		GapAnalysis:         parsed.GapAnalysis,
		CriticReasoning:     parsed.CriticReasoning,
		AdjustmentsNeeded:   parsed.AdjustmentsNeeded,
		QAFailuresCount:     qaFailures,
		QAOverrideReasoning: parsed.QAOverrideReasoning,
	}, nil
}

// ComparePilots selects the winner among approved pilots: highest
// critic_score first, with avg_qa_score/total_cost as the tie-break so
// that a higher-scoring but far more expensive pilot doesn't
// automatically beat a nearly-as-good, much cheaper one. Pilots that
// were not approved are never candidates, even if every other pilot
// also failed to approve. Returns false if no pilot was approved.
func ComparePilots(results []models.PilotResults) (models.PilotResults, bool) {
	var best models.PilotResults
	found := false

	for _, r := range results {
		if !r.Approved {
			continue
		}
		if !found {
			best = r
			found = true
			continue
		}
		if better(r, best) {
			best = r
		}
	}

	return best, found
}

func better(a, b models.PilotResults) bool {
	if a.CriticScore != b.CriticScore {
		return a.CriticScore > b.CriticScore
	}
	return efficiency(a) > efficiency(b)
}

func efficiency(r models.PilotResults) float64 {
	if r.TotalCost <= 0 {
		return 0
	}
	return r.AvgQAScore / r.TotalCost
}

const criticSystemPrompt = "You are a demanding creative director evaluating pilot test scenes before committing to full production."

func buildCriticPrompt(pilot models.PilotStrategy, sceneResults []models.SceneResult, budgetSpent, budgetAllocated float64, originalRequest string, qaFailures int, avgQA float64) string {
	return fmt.Sprintf(`ORIGINAL REQUEST: %s

PILOT: %s (tier: %s)
RATIONALE: %s
TEST SCENES: %d generated, budget allocated $%.2f, spent so far $%.2f
QA RESULTS: avg score %.1f/100, %d of %d scenes failed QA

Evaluate whether this pilot's test scenes deliver on the request well
enough to justify continuing to full production. If any scenes failed
QA, you must either explain in "qa_override_reasoning" why the pilot
should proceed anyway, or leave it empty and set approved to false.

SCORING RUBRIC: 90-100 excellent, 75-89 good, 65-74 acceptable, below
65 poor and should not be approved.

Return ONLY valid JSON (no markdown, no explanation):
{
  "critic_score": 82,
  "approved": true,
  "gap_analysis": "what's missing relative to the request",
  "critic_reasoning": "why this score",
  "adjustments_needed": ["list of concrete adjustments for full production"],
  "qa_override_reasoning": "required if any scene failed QA and approved is true, else empty string"
}`, originalRequest, pilot.PilotID, pilot.Tier, pilot.Rationale, len(sceneResults), budgetAllocated, budgetSpent, avgQA, qaFailures, len(sceneResults))
}

// buildCriticOverrideRetryPrompt re-asks narrowly for the missing
// override reasoning after a first response approved a pilot with QA
// failures but left qa_override_reasoning empty.
func buildCriticOverrideRetryPrompt(pilot models.PilotStrategy, qaFailures, totalScenes int) string {
	return fmt.Sprintf(`You approved pilot %s for continuation even though %d of %d
test scenes failed QA verification, but you did not explain why. You
must justify that decision.

Return ONLY valid JSON:
{
  "qa_override_reasoning": "why the QA failures don't outweigh approving this pilot"
}`, pilot.PilotID, qaFailures, totalScenes)
}
