// Package transform provides graph analyses and rewrites used when
// presenting a solved module graph.
//
// # Transitive Reduction
//
// [TransitiveReduction] removes redundant edges that can be inferred through
// other paths. If A→B and B→C exist, then A→C is redundant and removed.
// The load order is unaffected; the rendered graph becomes much easier to
// read for modules that list every transitive dependency explicitly.
//
// # Dependency Levels
//
// [Levels] assigns each node the length of its longest dependency chain:
// modules without dependencies are level 0, a module depending only on
// level-0 modules is level 1, and so on. Modules on the same level never
// depend on each other.
//
// Both functions assume an acyclic graph. The solver rejects cyclic graphs
// before either is called.
package transform
