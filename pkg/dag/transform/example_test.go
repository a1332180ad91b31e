package transform_test

import (
	"fmt"

	"github.com/matzehuels/loadorder/pkg/dag"
	"github.com/matzehuels/loadorder/pkg/dag/transform"
)

func ExampleTransitiveReduction() {
	// game → physics → core with transitive edge game → core
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "game"})
	_ = g.AddNode(dag.Node{ID: "physics"})
	_ = g.AddNode(dag.Node{ID: "core"})
	_ = g.AddEdge(dag.Edge{From: "game", To: "physics"})
	_ = g.AddEdge(dag.Edge{From: "physics", To: "core"})
	_ = g.AddEdge(dag.Edge{From: "game", To: "core"})

	removed := transform.TransitiveReduction(g)

	fmt.Println("Removed:", removed)
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("game → core:", g.HasEdge("game", "core"))
	// Output:
	// Removed: 1
	// Edges: 2
	// game → core: false
}

func ExampleLevels() {
	// Diamond: game needs audio and render, both need core
	g := dag.New(nil)
	for _, id := range []string{"game", "audio", "render", "core"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "game", To: "audio"})
	_ = g.AddEdge(dag.Edge{From: "game", To: "render"})
	_ = g.AddEdge(dag.Edge{From: "audio", To: "core"})
	_ = g.AddEdge(dag.Edge{From: "render", To: "core"})

	levels := transform.Levels(g)
	fmt.Println("core:", levels["core"])
	fmt.Println("audio:", levels["audio"])
	fmt.Println("game:", levels["game"])
	fmt.Println("max:", transform.MaxLevel(levels))
	// Output:
	// core: 0
	// audio: 1
	// game: 2
	// max: 2
}
