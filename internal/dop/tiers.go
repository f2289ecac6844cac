package dop

import "github.com/aaronmarkham/studioproducer/internal/models"

// TierConfig is a budget tier's image-vs-text-overlay configuration.
type TierConfig struct {
	ImageRatio     float64
	TextOverlayAll bool
}

// tierTable is the DoP's budget-tier configuration. The module that
// literally defines this table in the reference lineage this planner
// is ported from was not available to consult; these values are
// derived directly from this system's own description of tier
// semantics (micro = captions only, full = an image on every segment)
// and kept strictly monotonic in image_ratio.
var tierTable = map[models.BudgetTierName]TierConfig{
	models.BudgetTierMicro:  {ImageRatio: 0.0, TextOverlayAll: true},
	models.BudgetTierLow:    {ImageRatio: 0.25, TextOverlayAll: false},
	models.BudgetTierMedium: {ImageRatio: 0.45, TextOverlayAll: false},
	models.BudgetTierHigh:   {ImageRatio: 0.70, TextOverlayAll: false},
	models.BudgetTierFull:   {ImageRatio: 1.0, TextOverlayAll: false},
}

// TierConfigFor returns the configuration for a budget tier.
func TierConfigFor(tier models.BudgetTierName) TierConfig {
	if cfg, ok := tierTable[tier]; ok {
		return cfg
	}
	return tierTable[models.BudgetTierMedium]
}
