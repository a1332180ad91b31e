// Package dag provides the directed graph that module load orders are
// computed over.
//
// # Overview
//
// The graph is an explicit id-keyed node table with outgoing and incoming
// adjacency lists. Nodes never point at each other; every relationship is a
// pair of IDs. That keeps the structure free of ownership cycles and easy to
// dump when a resolution fails.
//
// An edge From → To reads "From depends on To": To must be loaded first.
// Modules with no outgoing edges ([DAG.Sinks]) are the roots of a load order.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "game"})
//	g.AddNode(dag.Node{ID: "core"})
//	g.AddEdge(dag.Edge{From: "game", To: "core"})
//
// Query the graph structure with [DAG.Children] (dependencies),
// [DAG.Parents] (dependents), [DAG.HasEdge] and related methods. Use
// [DAG.Validate] to verify structural integrity and [DAG.FindCycle] to
// explain why no order exists.
//
// # Metadata
//
// Nodes, edges and the graph itself carry [Metadata] maps. The solver stores
// the module descriptor under "descriptor" on each node and the declaring
// relation under "relation" on each edge; renderers read both.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
//
// # Related Packages
//
// The [transform] subpackage provides read-only analyses and rewrites used
// for presentation: transitive reduction and dependency levels.
//
// [transform]: github.com/matzehuels/loadorder/pkg/dag/transform
package dag
