// Package dop implements the Director of Photography: a deterministic,
// no-LLM planner that assigns a display mode and visual direction to
// every segment of a structured script, given a budget tier and the
// current state of the content library.
package dop

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/library"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// dalleUnitCost is the flat per-image cost used for the DoP's own
// cost estimate, independent of the Cost Model's per-second video
// pricing.
const dalleUnitCost = 0.04

// Plan assigns DisplayMode (and, where applicable, VisualAssetID and
// VisualDirection) to every segment of script, returning an updated
// copy. It never calls out to an LLM and is a pure function of its
// inputs: re-running it against unchanged inputs yields the same
// assignment.
func Plan(script models.StructuredScript, lib *library.Library, tier models.BudgetTierName) (models.StructuredScript, Summary) {
	cfg := TierConfigFor(tier)
	segments := make([]models.StructuredScriptSegment, len(script.Segments))
	copy(segments, script.Segments)
	total := len(segments)

	// Phase 1: figure priority, regardless of tier.
	for i := range segments {
		if len(segments[i].FigureRefs) > 0 && segments[i].DisplayMode == "" {
			segments[i].DisplayMode = models.DisplayFigureSync
			if lib != nil {
				figNum := segments[i].FigureRefs[0]
				if rec, ok := lib.GetApprovedForSegment(segments[i].Idx, models.AssetTypeFigure); ok && rec.FigureNumber != nil && *rec.FigureNumber == figNum {
					segments[i].VisualAssetID = rec.AssetID
				}
			}
		}
	}

	// Phase 2: micro tier short-circuits everything else to text_only.
	if cfg.TextOverlayAll {
		for i := range segments {
			if segments[i].DisplayMode == "" {
				segments[i].DisplayMode = models.DisplayTextOnly
			}
		}
		finalizeDirections(segments)
		return finish(script, segments), summarize(segments)
	}

	// Phase 3: compute the DALL-E budget.
	dalleBudget := 0
	if cfg.ImageRatio > 0 {
		dalleBudget = int(math.Floor(float64(total) * cfg.ImageRatio))
		if dalleBudget < 1 {
			dalleBudget = 1
		}
	}

	// Phase 4: transitions always go to text_only.
	for i := range segments {
		if segments[i].Intent == models.IntentTransition && segments[i].DisplayMode == "" {
			segments[i].DisplayMode = models.DisplayTextOnly
		}
	}

	// Phase 5: sort remaining unassigned segments and assign the
	// top-K to an image mode; the remainder carries forward.
	var unassigned []int
	for i := range segments {
		if segments[i].DisplayMode == "" {
			unassigned = append(unassigned, i)
		}
	}
	sort.SliceStable(unassigned, func(a, b int) bool {
		ia, ib := unassigned[a], unassigned[b]
		haveA := lib != nil && lib.HasApprovedAssetFor(segments[ia].Idx, models.AssetTypeImage)
		haveB := lib != nil && lib.HasApprovedAssetFor(segments[ib].Idx, models.AssetTypeImage)
		if haveA != haveB {
			return haveA && !haveB
		}
		return segments[ia].ImportanceScore > segments[ib].ImportanceScore
	})

	for rank, i := range unassigned {
		if rank < dalleBudget {
			// Phase 6: choose between dall_e and web_image.
			if shouldUseWebImage(segments[i]) {
				segments[i].DisplayMode = models.DisplayWebImage
			} else {
				segments[i].DisplayMode = models.DisplayDallE
			}
		} else {
			segments[i].DisplayMode = models.DisplayCarryForward
		}
	}

	// Phase 7: an already-approved image means "static image hold" —
	// no regeneration needed, regardless of what phases 5/6 picked.
	if lib != nil {
		for i := range segments {
			if rec, ok := lib.GetApprovedForSegment(segments[i].Idx, models.AssetTypeImage); ok {
				segments[i].DisplayMode = models.DisplayDallE
				segments[i].VisualAssetID = rec.AssetID
			}
		}
	}

	finalizeDirections(segments)
	return finish(script, segments), summarize(segments)
}

func finish(original models.StructuredScript, segments []models.StructuredScriptSegment) models.StructuredScript {
	return models.StructuredScript{
		Segments:        segments,
		FigureInventory: original.FigureInventory,
	}
}

// finalizeDirections implements phase 8: synthesize visual_direction
// for every segment whose final mode calls for one.
func finalizeDirections(segments []models.StructuredScriptSegment) {
	for i := range segments {
		seg := &segments[i]
		switch seg.DisplayMode {
		case models.DisplayDallE, models.DisplayWebImage, models.DisplayFigureSync:
		default:
			continue
		}

		var parts []string
		if tmpl, ok := intentDirections[seg.Intent]; ok {
			parts = append(parts, tmpl)
		}
		if len(seg.KeyConcepts) > 0 {
			n := len(seg.KeyConcepts)
			if n > 3 {
				n = 3
			}
			parts = append(parts, fmt.Sprintf("featuring: %s", strings.Join(seg.KeyConcepts[:n], ", ")))
		}
		if seg.DisplayMode == models.DisplayFigureSync && len(seg.Text) > 0 {
			excerpt := seg.Text
			if len(excerpt) > 80 {
				excerpt = excerpt[:80]
			}
			parts = append(parts, fmt.Sprintf("caption excerpt: %q", excerpt))
		}
		switch {
		case seg.ImportanceScore >= 0.8:
			parts = append(parts, "high-priority segment — invest extra polish")
		case seg.ImportanceScore >= 0.6:
			parts = append(parts, "above-average importance")
		}
		if seg.DisplayMode == models.DisplayDallE && seg.ImportanceScore >= 0.6 {
			parts = append(parts, "apply a slow Ken Burns pan/zoom")
		}
		seg.VisualDirection = strings.Join(parts, "; ")
	}
}

// Summary reports the DoP's per-mode counts and cost estimate.
type Summary struct {
	ModeCounts    map[models.DisplayMode]int
	EstimatedCost float64
}

func summarize(segments []models.StructuredScriptSegment) Summary {
	counts := make(map[models.DisplayMode]int)
	for _, seg := range segments {
		counts[seg.DisplayMode]++
	}
	return Summary{
		ModeCounts:    counts,
		EstimatedCost: float64(counts[models.DisplayDallE]) * dalleUnitCost,
	}
}
