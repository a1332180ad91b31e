// Package loader constructs modules in dependency order and drives their
// lifecycle.
//
// A [Context] collects [Registration] values, solves their load order with
// the solver package and calls each registration's [Factory] once every
// module it declared has been constructed. Factories receive their
// dependencies through [Refs] instead of having them assigned afterwards:
//
//	lc := loader.New(loader.WithLogger(logger))
//	lc.Register(loader.Registration{Descriptor: coreDesc, Factory: newCore})
//	lc.Register(loader.Registration{
//	    Descriptor: physicsDesc,
//	    Needs:      []string{"core"},
//	    Factory: func(ctx context.Context, refs loader.Refs) (any, error) {
//	        core, _ := loader.Lookup[*Core](refs, "core")
//	        return &Physics{core: core}, nil
//	    },
//	})
//	if err := lc.Resolve(ctx); err != nil { ... }
//	defer lc.Teardown(ctx)
//
// A module may only need ids it declares in its loadAfter or required
// specs; anything else fails with [*IllegalDependencyError] before a single
// factory runs.
//
// After construction every module implementing [PreIniter] is pre-initialized
// in load order, then every [Initer] is initialized. Callback failures are
// logged and do not stop the sequence. [Context.Teardown] closes [Closer]
// modules in reverse order.
package loader
