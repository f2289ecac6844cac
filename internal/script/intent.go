package script

import (
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Keyword sets used by classifyIntent. The reference keyword-based
// classifier this module descends from recognizes ten narrative roles;
// this module's SegmentIntent has nineteen. Each of these sets maps a
// keyword family onto the closest-matching intent in the larger set:
// methodology language becomes "explanation", key-finding language
// becomes "claim", data language becomes "data_walkthrough", and
// background language becomes "context". The remaining intents
// (definition, narrative, counterpoint, synthesis, commentary,
// question, speculation, analysis) are reachable only via their own
// dedicated keyword families or the structural rules (figure_refs,
// idx==0, idx==last).
var (
	explanationKeywords = []string{"method", "approach", "process", "technique", "how it works", "algorithm", "procedure"}
	claimKeywords       = []string{"discovered", "found that", "result", "finding", "breakthrough", "conclude", "concluded"}
	dataKeywords        = []string{"percent", "%", "statistic", "measured", "data show", "数据", "chart", "graph", "figure shows"}
	comparisonKeywords  = []string{"compared to", "versus", "whereas", "in contrast", "on the other hand", "unlike"}
	transitionKeywords  = []string{"meanwhile", "next", "moving on", "now let's", "turning to", "shifting to"}
	contextKeywords     = []string{"background", "history", "previously", "context", "originally"}
	definitionKeywords  = []string{"is defined as", "refers to", "means that", "definition of"}
	counterpointKeywords = []string{"however", "critics argue", "on the contrary", "challenges this", "disputed"}
	synthesisKeywords   = []string{"taken together", "in summary", "combining", "overall this suggests"}
	commentaryKeywords  = []string{"interestingly", "notably", "it is worth noting", "surprisingly"}
	questionKeywords    = []string{"?", "why does", "what if", "how might"}
	speculationKeywords = []string{"might", "could potentially", "it is possible that", "may eventually"}
	analysisKeywords    = []string{"analysis shows", "breaking this down", "examining"}
	narrativeKeywords   = []string{"one day", "imagine", "story begins", "picture this"}
)

func containsAny(haystack string, needles []string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// classifyIntent implements the deterministic priority order from
// §4.3: positional rules first, then figure presence, then keyword
// lookup across the full intent set, then a last-resort recap/context
// split.
func classifyIntent(text string, idx, lastIdx int, figureRefs []int) models.SegmentIntent {
	if idx == 0 {
		return models.IntentIntro
	}
	if idx == lastIdx {
		return models.IntentOutro
	}
	if len(figureRefs) > 0 {
		return models.IntentFigureReference
	}

	switch {
	case containsAny(text, explanationKeywords):
		return models.IntentExplanation
	case containsAny(text, claimKeywords):
		return models.IntentClaim
	case containsAny(text, dataKeywords):
		return models.IntentDataWalkthrough
	case containsAny(text, comparisonKeywords):
		return models.IntentComparison
	case containsAny(text, transitionKeywords):
		return models.IntentTransition
	case containsAny(text, definitionKeywords):
		return models.IntentDefinition
	case containsAny(text, counterpointKeywords):
		return models.IntentCounterpoint
	case containsAny(text, synthesisKeywords):
		return models.IntentSynthesis
	case containsAny(text, commentaryKeywords):
		return models.IntentCommentary
	case containsAny(text, questionKeywords):
		return models.IntentQuestion
	case containsAny(text, speculationKeywords):
		return models.IntentSpeculation
	case containsAny(text, analysisKeywords):
		return models.IntentAnalysis
	case containsAny(text, narrativeKeywords):
		return models.IntentNarrative
	case containsAny(text, contextKeywords):
		return models.IntentContext
	}

	if idx == lastIdx-1 {
		return models.IntentRecap
	}
	return models.IntentContext
}

// baseImportance is the per-intent base weight from §4.3. Intents not
// named by a literal keyword rule in the source default to 0.5, a
// neutral mid-weight consistent with the source's own unlisted-intent
// behavior.
var baseImportance = map[models.SegmentIntent]float64{
	models.IntentIntro:           0.8,
	models.IntentClaim:           0.9,
	models.IntentEvidence:        0.9,
	models.IntentFigureReference: 1.0,
	models.IntentExplanation:     0.7,
	models.IntentDataWalkthrough: 0.6,
	models.IntentComparison:      0.7,
	models.IntentContext:         0.4,
	models.IntentTransition:      0.2,
	models.IntentRecap:           0.5,
	models.IntentOutro:           0.6,
}

func importanceFor(intent models.SegmentIntent) float64 {
	if v, ok := baseImportance[intent]; ok {
		return v
	}
	return 0.5
}
