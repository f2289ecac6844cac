// Package costmodel prices generation work by production tier: video
// seconds, LLM tokens, and a failure buffer, plus a tier-scaled audio
// estimator.
package costmodel

import "github.com/aaronmarkham/studioproducer/internal/models"

// tokenPricePerToken is the blended per-token price used to turn an
// LLM-token estimate into a dollar figure.
const tokenPricePerToken = 0.00001

// failureBufferRatio is the fraction of video cost reserved for
// retried/failed generations.
const failureBufferRatio = 0.20

// table is the authoritative tier pricing table.
var table = map[models.ProductionTier]models.CostModel{
	models.TierStaticImages: {
		Tier: models.TierStaticImages, CostPerSecond: 0.04, CostPerVariation: 0.02,
		EstimatedLLMTokens: 5000, QualityCeiling: 75,
	},
	models.TierMotionGraphics: {
		Tier: models.TierMotionGraphics, CostPerSecond: 0.15, CostPerVariation: 0.10,
		EstimatedLLMTokens: 8000, QualityCeiling: 85,
	},
	models.TierAnimated: {
		Tier: models.TierAnimated, CostPerSecond: 0.25, CostPerVariation: 0.20,
		EstimatedLLMTokens: 10000, QualityCeiling: 90,
	},
	models.TierPhotorealistic: {
		Tier: models.TierPhotorealistic, CostPerSecond: 0.50, CostPerVariation: 0.40,
		EstimatedLLMTokens: 15000, QualityCeiling: 95,
	},
}

// Get returns the pricing row for a tier and whether it was found.
func Get(tier models.ProductionTier) (models.CostModel, bool) {
	cm, ok := table[tier]
	return cm, ok
}

// EstimateSceneCost prices one scene: duration * numVariations *
// cost-per-second for the tier.
func EstimateSceneCost(tier models.ProductionTier, durationSec float64, numVariations int) float64 {
	cm, ok := table[tier]
	if !ok {
		return 0
	}
	return durationSec * float64(numVariations) * cm.CostPerSecond
}

// EstimatePilotTestCost prices a pilot's test phase: scene cost times
// the test scene count, plus an LLM-token estimate priced per scene.
func EstimatePilotTestCost(pilot models.PilotStrategy, numVariations int, avgSceneDuration float64) float64 {
	cm, ok := table[pilot.Tier]
	if !ok {
		return 0
	}
	sceneCost := EstimateSceneCost(pilot.Tier, avgSceneDuration, numVariations) * float64(pilot.TestSceneCount)
	llmCost := float64(cm.EstimatedLLMTokens) * tokenPricePerToken * float64(pilot.TestSceneCount)
	return sceneCost + llmCost
}

// RealisticCostBreakdown is the itemized output of EstimateRealisticCost.
type RealisticCostBreakdown struct {
	Video          float64
	LLM            float64
	FailureBuffer  float64
	Total          float64
	PerScene       float64
}

// EstimateRealisticCost prices a full production: video cost across
// all scenes/variations, LLM cost, and a 20% failure buffer on video
// cost.
func EstimateRealisticCost(tier models.ProductionTier, numScenes, numVariations int, avgSceneDuration float64) RealisticCostBreakdown {
	cm, ok := table[tier]
	if !ok || numScenes <= 0 {
		return RealisticCostBreakdown{}
	}
	video := EstimateSceneCost(tier, avgSceneDuration, numVariations) * float64(numScenes)
	llm := float64(cm.EstimatedLLMTokens) * tokenPricePerToken * float64(numScenes)
	buffer := video * failureBufferRatio
	total := video + llm + buffer
	return RealisticCostBreakdown{
		Video:         video,
		LLM:           llm,
		FailureBuffer: buffer,
		Total:         total,
		PerScene:      total / float64(numScenes),
	}
}

// EstimateAudioCost prices tier-scaled audio production.
func EstimateAudioCost(tier models.AudioTier, durationSec float64, numScenes int) float64 {
	var perSecond float64
	switch tier {
	case models.AudioTierNone:
		return 0
	case models.AudioTierMusicOnly:
		perSecond = 0.01
	case models.AudioTierSimpleOverlay:
		perSecond = 0.03
	case models.AudioTierTimeSynced:
		perSecond = 0.05
	case models.AudioTierFullProduction:
		perSecond = 0.08
	default:
		return 0
	}
	return perSecond * durationSec * float64(numScenes)
}
