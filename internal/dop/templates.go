package dop

import "github.com/aaronmarkham/studioproducer/internal/models"

// intentDirections is the default visual-direction template per
// intent, concatenated with key concepts and supplemental notes in
// finalizeDirections.
var intentDirections = map[models.SegmentIntent]string{
	models.IntentIntro:           "Bold, attention-grabbing opening visual that establishes tone",
	models.IntentContext:         "Establishing shot or scene-setting imagery that grounds the viewer",
	models.IntentExplanation:     "Clear, diagrammatic visual that walks through a process or method",
	models.IntentDefinition:      "Clean, text-forward visual that isolates a single concept",
	models.IntentNarrative:       "Story-driven imagery that follows a character or sequence of events",
	models.IntentClaim:          "Confident, declarative visual that foregrounds the stated result",
	models.IntentEvidence:        "Supporting visual that reinforces a claim with concrete detail",
	models.IntentDataWalkthrough: "Chart- or data-forward visual that makes numbers legible at a glance",
	models.IntentFigureReference: "Direct reproduction of the referenced figure, captioned",
	models.IntentAnalysis:        "Layered visual that breaks a topic into its component parts",
	models.IntentComparison:      "Side-by-side or before/after visual that contrasts two things",
	models.IntentCounterpoint:    "Visual that signals tension or a shift in perspective",
	models.IntentSynthesis:       "Unifying visual that pulls prior threads into one frame",
	models.IntentCommentary:      "Reflective, editorial visual with a personal point of view",
	models.IntentQuestion:        "Open, exploratory visual that invites curiosity",
	models.IntentSpeculation:     "Forward-looking, slightly abstract visual suggesting possibility",
	models.IntentTransition:      "Minimal bridging visual, or none — handled as a cut",
	models.IntentRecap:           "Summary visual that echoes earlier imagery",
	models.IntentOutro:           "Memorable closing visual with a clear call to action",
}

// webImagePreferred is the set of intents that prefer a sourced web
// image over an AI-generated one, per §4.5 step 6.
var webImagePreferred = map[models.SegmentIntent]bool{
	models.IntentContext:         true,
	models.IntentExplanation:     true,
	models.IntentEvidence:        true,
	models.IntentDataWalkthrough: true,
	models.IntentNarrative:       true,
	models.IntentComparison:      true,
}

// dallEPreferred is the set of intents that prefer an AI-generated
// image, per §4.5 step 6.
var dallEPreferred = map[models.SegmentIntent]bool{
	models.IntentIntro:       true,
	models.IntentOutro:       true,
	models.IntentCommentary:  true,
	models.IntentSpeculation: true,
	models.IntentQuestion:    true,
	models.IntentSynthesis:   true,
}

// shouldUseWebImage implements the closed-form predicate from step 6:
// web image if the intent prefers it or there are >=2 key concepts;
// dall-e if the intent prefers it; web image by default otherwise.
func shouldUseWebImage(seg models.StructuredScriptSegment) bool {
	if webImagePreferred[seg.Intent] || len(seg.KeyConcepts) >= 2 {
		return true
	}
	if dallEPreferred[seg.Intent] {
		return false
	}
	return true
}
