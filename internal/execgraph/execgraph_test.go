package execgraph

import (
	"testing"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

func scene(id, continuityGroup string) models.Scene {
	return models.Scene{SceneID: id, ContinuityGroup: continuityGroup}
}

func TestManualStrategyMixedExecutionGraph(t *testing.T) {
	// Scenario D: scenes 3,4,5 share continuity_group "hero_arc";
	// scenes 1,2,6,7,8 are ungrouped.
	scenes := []models.Scene{
		scene("1", ""), scene("2", ""),
		scene("3", "hero_arc"), scene("4", "hero_arc"), scene("5", "hero_arc"),
		scene("6", ""), scene("7", ""), scene("8", ""),
	}
	graph := BuildManual(scenes)
	if problems := Validate(graph); len(problems) != 0 {
		t.Fatalf("unexpected validation problems: %v", problems)
	}

	waves := GetExecutionWaves(graph)
	if len(waves) != 4 {
		t.Fatalf("got %d waves, want 4 (one parallel + three sequential)", len(waves))
	}
	parallelWave := waves[0].SceneIDs
	want := map[string]bool{"1": true, "2": true, "6": true, "7": true, "8": true}
	if len(parallelWave) != 5 {
		t.Fatalf("first wave = %v, want 5 scenes", parallelWave)
	}
	for _, id := range parallelWave {
		if !want[id] {
			t.Fatalf("unexpected scene %q in parallel wave", id)
		}
	}
	if waves[1].SceneIDs[0] != "3" || waves[2].SceneIDs[0] != "4" || waves[3].SceneIDs[0] != "5" {
		t.Fatalf("sequential waves out of order: %+v", waves[1:])
	}
}

func TestValidateDetectsDuplicateScene(t *testing.T) {
	graph := models.ExecutionGraph{Groups: []models.SceneGroup{
		{GroupID: "a", SceneIDs: []string{"1", "2"}, Mode: models.ModeParallel},
		{GroupID: "b", SceneIDs: []string{"2"}, Mode: models.ModeSequential},
	}}
	problems := Validate(graph)
	if len(problems) == 0 {
		t.Fatal("expected a duplicate-scene problem")
	}
}

func TestValidateDetectsDanglingGroupReference(t *testing.T) {
	graph := models.ExecutionGraph{Groups: []models.SceneGroup{
		{GroupID: "a", SceneIDs: []string{"1"}, Mode: models.ModeSequential, ChainFromGroup: "ghost"},
	}}
	problems := Validate(graph)
	if len(problems) == 0 {
		t.Fatal("expected a dangling-reference problem")
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	graph := models.ExecutionGraph{Groups: []models.SceneGroup{
		{GroupID: "a", SceneIDs: []string{"1"}, Mode: models.ModeSequential, ChainFromGroup: "b"},
		{GroupID: "b", SceneIDs: []string{"2"}, Mode: models.ModeSequential, ChainFromGroup: "a"},
	}}
	problems := Validate(graph)
	if len(problems) == 0 {
		t.Fatal("expected a cycle problem")
	}
}

func TestAllParallelSingleWave(t *testing.T) {
	scenes := []models.Scene{scene("1", ""), scene("2", ""), scene("3", "")}
	graph := BuildAllParallel(scenes)
	waves := GetExecutionWaves(graph)
	if len(waves) != 1 || len(waves[0].SceneIDs) != 3 {
		t.Fatalf("got waves %+v, want one wave of 3", waves)
	}
}

func TestAllSequentialOneWavePerScene(t *testing.T) {
	scenes := []models.Scene{scene("1", ""), scene("2", ""), scene("3", "")}
	graph := BuildAllSequential(scenes)
	waves := GetExecutionWaves(graph)
	if len(waves) != 3 {
		t.Fatalf("got %d waves, want 3", len(waves))
	}
	for i, w := range waves {
		if len(w.SceneIDs) != 1 {
			t.Fatalf("wave %d has %d scenes, want 1", i, len(w.SceneIDs))
		}
	}
}

func TestEverySceneAppearsInExactlyOneGroup(t *testing.T) {
	scenes := []models.Scene{
		scene("1", ""), scene("2", "g1"), scene("3", "g1"), scene("4", ""),
	}
	for _, strat := range []models.ExecutionStrategy{
		models.StrategyAllParallel, models.StrategyAllSequential, models.StrategyManual, models.StrategyAuto,
	} {
		graph := Build(scenes, strat)
		seen := map[string]int{}
		for _, g := range graph.Groups {
			for _, id := range g.SceneIDs {
				seen[id]++
			}
		}
		for _, s := range scenes {
			if seen[s.SceneID] != 1 {
				t.Fatalf("strategy %v: scene %q appears %d times, want 1", strat, s.SceneID, seen[s.SceneID])
			}
		}
	}
}
