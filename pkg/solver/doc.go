// Package solver turns a set of module descriptors into a load order.
//
// # Graph Construction
//
// Each descriptor becomes one node keyed by its case-folded id. For every
// spec a module declares, the solver looks for a different module that
// matches it and records an edge "dependent → dependency":
//
//   - loadAfter X:  module → X, skipped silently when X is absent
//   - loadBefore X: X → module, skipped silently when X is absent
//   - required X:   module → X, [*MissingRequiredError] when X is absent
//
// An edge whose reverse already exists fails with
// [*ConflictingDirectionError]: two modules cannot each load first.
//
// Matching is controlled by [MatchPolicy]. The default,
// [MatchIDAndRange], requires the spec id and range to both match.
// [MatchRangeOnly] ignores the id when building edges and is kept only for
// reproducing historical orders.
//
// # Ordering
//
// Modules without dependencies load first; if there are none,
// resolution fails with [*NoRootModuleError]. After each pass, the
// dependents of newly placed modules are examined: a dependent becomes ready
// when each of its required specs, and each loadAfter spec naming a module
// that is present at any version, is satisfied by an already placed module,
// and all of its graph dependencies are placed. Modules readied in the same
// pass are emitted in id order. When a pass readies nothing, any module not
// yet placed is reported in [*UnsatisfiedError].
//
// A consequence worth knowing: a loadAfter spec whose target is present at a
// version outside the range can never be satisfied, and the declaring module
// ends up unsatisfied rather than ignored.
//
// # Usage
//
//	entries := map[string]solver.Entry[*Plugin]{
//	    "core":    {Descriptor: coreDesc, Payload: corePlugin},
//	    "physics": {Descriptor: physicsDesc, Payload: physicsPlugin},
//	}
//	plugins, err := solver.Solve(ctx, solver.New(), entries)
//
// Use [Solver.Plan] directly to get descriptors and the resolution graph.
package solver
