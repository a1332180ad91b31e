package transform

import "github.com/matzehuels/loadorder/pkg/dag"

// Levels assigns every node its dependency level: the number of edges on the
// longest path from the node down to a module without dependencies.
//
// Levels uses a longest-path pass via Kahn's algorithm, run from the sinks
// upward:
//  1. Initialize all sink nodes (out-degree 0) at level 0 and add to queue
//  2. For each dequeued node, raise each dependent to max(level + 1)
//  3. Decrement the dependent's remaining out-degree; enqueue it at zero
//
// Nodes on a cycle never reach zero remaining out-degree and are omitted
// from the result.
//
// Time complexity is O(V + E).
func Levels(g *dag.DAG) map[string]int {
	nodes := g.Nodes()
	remaining := make(map[string]int, len(nodes))
	levels := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.OutDegree(n.ID)
		remaining[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
			levels[n.ID] = 0
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, parent := range g.Parents(curr) {
			if level := levels[curr] + 1; level > levels[parent] {
				levels[parent] = level
			}
			remaining[parent]--
			if remaining[parent] == 0 {
				queue = append(queue, parent)
			}
		}
	}

	for id, r := range remaining {
		if r > 0 {
			delete(levels, id)
		}
	}
	return levels
}

// MaxLevel returns the highest value in levels, or 0 if levels is empty.
func MaxLevel(levels map[string]int) int {
	highest := 0
	for _, l := range levels {
		highest = max(highest, l)
	}
	return highest
}
