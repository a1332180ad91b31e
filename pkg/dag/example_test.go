package dag_test

import (
	"fmt"

	"github.com/matzehuels/loadorder/pkg/dag"
)

func ExampleDAG_basic() {
	// Create a simple dependency graph: game → physics → core
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "game"})
	_ = g.AddNode(dag.Node{ID: "physics"})
	_ = g.AddNode(dag.Node{ID: "core"})
	_ = g.AddEdge(dag.Edge{From: "game", To: "physics"})
	_ = g.AddEdge(dag.Edge{From: "physics", To: "core"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Nodes: 3
	// Edges: 2
	// Valid: true
}

func ExampleDAG_traversal() {
	// game depends on audio and render
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "game"})
	_ = g.AddNode(dag.Node{ID: "audio"})
	_ = g.AddNode(dag.Node{ID: "render"})
	_ = g.AddEdge(dag.Edge{From: "game", To: "audio"})
	_ = g.AddEdge(dag.Edge{From: "game", To: "render"})

	fmt.Println("Children of game:", g.Children("game"))
	fmt.Println("Parents of audio:", g.Parents("audio"))
	fmt.Println("Out-degree of game:", g.OutDegree("game"))
	// Output:
	// Children of game: [audio render]
	// Parents of audio: [game]
	// Out-degree of game: 2
}

func ExampleDAG_Sinks() {
	// Modules without dependencies can load first
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "game"})
	_ = g.AddNode(dag.Node{ID: "core"})
	_ = g.AddNode(dag.Node{ID: "math"})
	_ = g.AddEdge(dag.Edge{From: "game", To: "core"})
	_ = g.AddEdge(dag.Edge{From: "game", To: "math"})

	fmt.Println("Sinks:", dag.NodeIDs(g.Sinks()))
	fmt.Println("Sources:", dag.NodeIDs(g.Sources()))
	// Output:
	// Sinks: [core math]
	// Sources: [game]
}

func ExampleDAG_FindCycle() {
	g := dag.New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "c"})
	_ = g.AddEdge(dag.Edge{From: "c", To: "a"})

	fmt.Println(g.FindCycle())
	fmt.Println(g.Validate())
	// Output:
	// [a b c a]
	// graph contains a cycle
}
