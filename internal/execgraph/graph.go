// Package execgraph turns a flat scene list into a partial order of
// parallel waves that respects continuity groups, via four
// strategies: all_parallel, all_sequential, manual, and auto.
package execgraph

import (
	"fmt"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Validate detects duplicate scene IDs, references to unknown
// groups/scenes, and dependency cycles. It returns every problem
// found rather than stopping at the first one, and never panics or
// returns an error type — validation failures are data, not
// exceptions.
func Validate(graph models.ExecutionGraph) []string {
	var problems []string

	groupByID := make(map[string]models.SceneGroup, len(graph.Groups))
	sceneOwner := make(map[string]string)

	for _, g := range graph.Groups {
		if _, dup := groupByID[g.GroupID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate group id %q", g.GroupID))
		}
		groupByID[g.GroupID] = g
		for _, sceneID := range g.SceneIDs {
			if owner, seen := sceneOwner[sceneID]; seen {
				problems = append(problems, fmt.Sprintf("duplicate scene id %q (in groups %q and %q)", sceneID, owner, g.GroupID))
				continue
			}
			sceneOwner[sceneID] = g.GroupID
		}
	}

	for _, g := range graph.Groups {
		if g.ChainFromGroup != "" {
			if _, ok := groupByID[g.ChainFromGroup]; !ok {
				problems = append(problems, fmt.Sprintf("group %q chains from unknown group %q", g.GroupID, g.ChainFromGroup))
			}
		}
		if g.ChainFromScene != "" {
			if _, ok := sceneOwner[g.ChainFromScene]; !ok {
				problems = append(problems, fmt.Sprintf("group %q chains from unknown scene %q", g.GroupID, g.ChainFromScene))
			}
		}
	}

	if cycle := findCycle(graph.Groups); cycle != "" {
		problems = append(problems, fmt.Sprintf("dependency cycle detected: %s", cycle))
	}

	return problems
}

// findCycle runs a DFS with an explicit path set over the
// chain_from_group edges and returns a description of the first cycle
// found, or "" if the graph is acyclic.
func findCycle(groups []models.SceneGroup) string {
	byID := make(map[string]models.SceneGroup, len(groups))
	for _, g := range groups {
		byID[g.GroupID] = g
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(groups))
	var path []string

	var visit func(id string) string
	visit = func(id string) string {
		switch state[id] {
		case done:
			return ""
		case visiting:
			return fmt.Sprintf("%v -> %s", path, id)
		}
		state[id] = visiting
		path = append(path, id)
		g, ok := byID[id]
		if ok && g.ChainFromGroup != "" {
			if _, exists := byID[g.ChainFromGroup]; exists {
				if cyc := visit(g.ChainFromGroup); cyc != "" {
					return cyc
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return ""
	}

	for _, g := range groups {
		if state[g.GroupID] == unvisited {
			if cyc := visit(g.GroupID); cyc != "" {
				return cyc
			}
		}
	}
	return ""
}

// Wave is a maximal set of scene IDs safe to generate concurrently at
// one point in time.
type Wave struct {
	SceneIDs []string
}

// GetExecutionWaves returns an ordered list of waves honoring group
// dependencies: a parallel group contributes one wave with all its
// scenes (adjacent parallel groups may merge into one wave); a
// sequential group contributes one wave per scene, in order; a
// group's first wave runs only after every group it chains from has
// completed.
func GetExecutionWaves(graph models.ExecutionGraph) []Wave {
	ordered := topoSort(graph.Groups)

	var waves []Wave
	var parallelBuffer []string

	flush := func() {
		if len(parallelBuffer) > 0 {
			waves = append(waves, Wave{SceneIDs: parallelBuffer})
			parallelBuffer = nil
		}
	}

	for _, g := range ordered {
		if g.Mode == models.ModeParallel {
			parallelBuffer = append(parallelBuffer, g.SceneIDs...)
			continue
		}
		flush()
		for _, sceneID := range g.SceneIDs {
			waves = append(waves, Wave{SceneIDs: []string{sceneID}})
		}
	}
	flush()

	return waves
}

// topoSort orders groups so that every group appears after every
// group it chains from, using Kahn's algorithm and preserving the
// original relative order among groups with no dependency between
// them.
func topoSort(groups []models.SceneGroup) []models.SceneGroup {
	byID := make(map[string]models.SceneGroup, len(groups))
	indegree := make(map[string]int, len(groups))
	for _, g := range groups {
		byID[g.GroupID] = g
		if _, ok := indegree[g.GroupID]; !ok {
			indegree[g.GroupID] = 0
		}
	}
	for _, g := range groups {
		if g.ChainFromGroup != "" {
			if _, ok := byID[g.ChainFromGroup]; ok {
				indegree[g.GroupID]++
			}
		}
	}

	// dependents maps a group to the groups that chain from it.
	dependents := make(map[string][]string)
	for _, g := range groups {
		if g.ChainFromGroup != "" {
			dependents[g.ChainFromGroup] = append(dependents[g.ChainFromGroup], g.GroupID)
		}
	}

	var ready []string
	for _, g := range groups {
		if indegree[g.GroupID] == 0 {
			ready = append(ready, g.GroupID)
		}
	}

	var out []models.SceneGroup
	visited := make(map[string]bool)
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		out = append(out, byID[id])
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	// Any group left unvisited is part of a cycle; append it in
	// original order so GetExecutionWaves still produces output for
	// callers that skip Validate — callers that care about cycles use
	// Validate, which reports them explicitly.
	for _, g := range groups {
		if !visited[g.GroupID] {
			out = append(out, g)
		}
	}

	return out
}
