// Package render draws a solved plan as a node-link diagram.
//
// [ToDOT] produces Graphviz DOT source for the resolution graph; [RenderSVG]
// lays it out in-process with [github.com/goccy/go-graphviz]. Edges point
// from a module to what it loads after, styled by relation:
//
//   - required:   solid
//   - loadAfter:  dashed
//   - loadBefore: dotted
//
// Nodes sharing a dependency level are placed on the same rank, so the
// bottom row holds the modules that load first.
//
//	dot := render.ToDOT(plan, render.Options{Detailed: true, Reduce: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// With Reduce set, edges implied by longer paths are dropped from the
// drawing (the plan itself is not modified).
package render
