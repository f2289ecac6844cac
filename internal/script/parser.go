// Package script parses flat narration text into a StructuredScript:
// ordered, typed segments with figure references, key concepts, an
// intent classification, an importance score, and an estimated
// duration — plus the inverse figure inventory built from them.
package script

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

const wordsPerMinute = 150

// capitalizedPhrase picks out runs of Title-Case words as a cheap
// proxy for key concepts worth calling out in visual direction.
var capitalizedPhrase = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]+(?:\s+[A-Z][a-zA-Z0-9]+)*)\b`)

// Parse splits text on blank lines into ordered segments and builds
// the structured script per §4.3.
func Parse(text string) models.StructuredScript {
	paragraphs := splitParagraphs(text)
	segments := make([]models.StructuredScriptSegment, 0, len(paragraphs))
	lastIdx := len(paragraphs) - 1

	for idx, p := range paragraphs {
		figureRefs := extractFigureRefs(p)
		intent := classifyIntent(p, idx, lastIdx, figureRefs)
		wordCount := len(strings.Fields(p))
		duration := float64(wordCount) / wordsPerMinute * 60.0

		score := importanceFor(intent)
		if len(figureRefs) > 0 {
			score += 0.2
		}
		if wordCount > 150 {
			score += 0.1
		}
		score = clamp01(score)
		score = math.Round(score*100) / 100

		segments = append(segments, models.StructuredScriptSegment{
			Idx:                  idx,
			Text:                 p,
			Intent:               intent,
			FigureRefs:           figureRefs,
			KeyConcepts:          extractKeyConcepts(p),
			ImportanceScore:      score,
			EstimatedDurationSec: duration,
		})
	}

	return models.StructuredScript{
		Segments:        segments,
		FigureInventory: buildFigureInventory(segments),
	}
}

func splitParagraphs(text string) []string {
	raw := regexp.MustCompile(`\n\s*\n`).Split(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// extractKeyConcepts returns up to three distinct Title-Case phrases
// found in the segment text, in first-seen order.
func extractKeyConcepts(text string) []string {
	matches := capitalizedPhrase.FindAllString(text, -1)
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// buildFigureInventory is the inverse index of every segment's
// figure_refs, keyed by figure number as a string per the JSON
// artifact convention in §6.
func buildFigureInventory(segments []models.StructuredScriptSegment) map[string]*models.FigureEntry {
	inv := make(map[string]*models.FigureEntry)
	for _, seg := range segments {
		for _, n := range seg.FigureRefs {
			key := fmt.Sprintf("%d", n)
			entry, ok := inv[key]
			if !ok {
				entry = &models.FigureEntry{}
				inv[key] = entry
			}
			entry.DiscussedInSegments = append(entry.DiscussedInSegments, seg.Idx)
		}
	}
	return inv
}
