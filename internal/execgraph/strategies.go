package execgraph

import (
	"fmt"
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

// parallelKeywords mark a scene as independent of its neighbors.
var parallelKeywords = []string{
	"b-roll", "establishing", "cutaway", "montage", "insert", "overlay",
	"transition", "title", "logo", "product shot", "detail shot",
	"ambient", "background",
}

// continuityKeywords mark a scene as needing to continue visually
// from its neighbor.
var continuityKeywords = []string{
	"continues", "continuous", "same", "character", "person",
	"protagonist", "hero", "actor", "follow", "tracking", "interview",
	"conversation", "dialogue", "reaction",
}

func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func sceneText(s models.Scene) string {
	return s.Title + " " + s.Description
}

// BuildAllParallel puts every scene into a single parallel group.
func BuildAllParallel(scenes []models.Scene) models.ExecutionGraph {
	ids := sceneIDs(scenes)
	return models.ExecutionGraph{Groups: []models.SceneGroup{
		{GroupID: "all_parallel", SceneIDs: ids, Mode: models.ModeParallel},
	}}
}

// BuildAllSequential puts every scene into a single sequential group,
// in scene order.
func BuildAllSequential(scenes []models.Scene) models.ExecutionGraph {
	ids := sceneIDs(scenes)
	return models.ExecutionGraph{Groups: []models.SceneGroup{
		{GroupID: "all_sequential", SceneIDs: ids, Mode: models.ModeSequential},
	}}
}

// BuildManual honors each scene's ContinuityGroup: ungrouped scenes
// form a single parallel group "default_parallel"; grouped scenes
// form sequential groups preserving first-seen group order, each
// chained from the previous sequential group.
func BuildManual(scenes []models.Scene) models.ExecutionGraph {
	var ungrouped []string
	order := []string{}
	byGroup := map[string][]string{}

	for _, s := range scenes {
		if s.ContinuityGroup == "" {
			ungrouped = append(ungrouped, s.SceneID)
			continue
		}
		if _, seen := byGroup[s.ContinuityGroup]; !seen {
			order = append(order, s.ContinuityGroup)
		}
		byGroup[s.ContinuityGroup] = append(byGroup[s.ContinuityGroup], s.SceneID)
	}

	var groups []models.SceneGroup
	if len(ungrouped) > 0 {
		groups = append(groups, models.SceneGroup{
			GroupID: "default_parallel", SceneIDs: ungrouped, Mode: models.ModeParallel,
		})
	}

	prevGroupID := ""
	for _, name := range order {
		g := models.SceneGroup{
			GroupID:  fmt.Sprintf("seq_%s", name),
			SceneIDs: byGroup[name],
			Mode:     models.ModeSequential,
		}
		if prevGroupID != "" {
			g.ChainFromGroup = prevGroupID
		}
		groups = append(groups, g)
		prevGroupID = g.GroupID
	}

	return models.ExecutionGraph{Groups: groups}
}

// BuildAuto classifies each scene by keyword analysis and a simple
// consecutive-pairing heuristic: independent scenes aggregate into one
// parallel group; adjacent continuity scenes sharing an extracted
// character or location join the same sequential group; an ambiguous
// scene extends the currently open sequential group, if any.
func BuildAuto(scenes []models.Scene) models.ExecutionGraph {
	var parallelIDs []string
	var groups []models.SceneGroup
	var currentSeq *models.SceneGroup
	prevEntities := map[string]bool{}
	seqIndex := 0
	lastSeqGroupID := ""

	flushSeq := func() {
		if currentSeq != nil && len(currentSeq.SceneIDs) > 0 {
			groups = append(groups, *currentSeq)
			lastSeqGroupID = currentSeq.GroupID
			currentSeq = nil
		}
	}

	for _, s := range scenes {
		text := sceneText(s)
		isParallel := matchesAny(text, parallelKeywords)
		isContinuity := matchesAny(text, continuityKeywords)
		entities := extractEntities(text)

		switch {
		case isParallel && !isContinuity:
			flushSeq()
			parallelIDs = append(parallelIDs, s.SceneID)
			prevEntities = map[string]bool{}

		case isContinuity:
			sharesEntity := false
			for e := range entities {
				if prevEntities[e] {
					sharesEntity = true
					break
				}
			}
			if currentSeq != nil && sharesEntity {
				currentSeq.SceneIDs = append(currentSeq.SceneIDs, s.SceneID)
			} else {
				flushSeq()
				seqIndex++
				currentSeq = &models.SceneGroup{
					GroupID:  fmt.Sprintf("auto_seq_%d", seqIndex),
					SceneIDs: []string{s.SceneID},
					Mode:     models.ModeSequential,
				}
				if lastSeqGroupID != "" {
					currentSeq.ChainFromGroup = lastSeqGroupID
				}
			}
			prevEntities = entities

		default:
			// Ambiguous: extend the open sequential group if one
			// exists, else treat as independent.
			if currentSeq != nil {
				currentSeq.SceneIDs = append(currentSeq.SceneIDs, s.SceneID)
			} else {
				parallelIDs = append(parallelIDs, s.SceneID)
			}
		}
	}
	flushSeq()

	var out []models.SceneGroup
	if len(parallelIDs) > 0 {
		out = append(out, models.SceneGroup{
			GroupID: "auto_parallel", SceneIDs: parallelIDs, Mode: models.ModeParallel,
		})
	}
	out = append(out, groups...)

	return models.ExecutionGraph{Groups: out}
}

// extractEntities is a simple character/location extractor: it treats
// each Title-Case word in the scene text as a candidate entity.
func extractEntities(text string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,!?;:\"'")
		if len(w) > 1 && w[0] >= 'A' && w[0] <= 'Z' {
			out[strings.ToLower(w)] = true
		}
	}
	return out
}

func sceneIDs(scenes []models.Scene) []string {
	ids := make([]string, len(scenes))
	for i, s := range scenes {
		ids[i] = s.SceneID
	}
	return ids
}

// Build dispatches to the strategy named by strategy.
func Build(scenes []models.Scene, strategy models.ExecutionStrategy) models.ExecutionGraph {
	switch strategy {
	case models.StrategyAllParallel:
		return BuildAllParallel(scenes)
	case models.StrategyAllSequential:
		return BuildAllSequential(scenes)
	case models.StrategyManual:
		return BuildManual(scenes)
	case models.StrategyAuto:
		return BuildAuto(scenes)
	default:
		return BuildAuto(scenes)
	}
}
