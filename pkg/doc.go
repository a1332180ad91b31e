// Package pkg holds the libraries behind the loadorder command.
//
// # Overview
//
// loadorder takes a set of module descriptors, each naming the modules it
// loads after, loads before or requires, and computes a sequential order in
// which every module loads after its dependencies. The pkg directory is
// organized into four areas:
//
//  1. Domain: [semver], [module], [solver] and the [dag] it builds
//  2. Inputs: [registry] discovers descriptor files, [io] reads and writes
//     JSON documents, [lint] reports suspicious descriptors
//  3. Runtime: [loader] constructs and initializes modules in solved order
//  4. Infrastructure: [pipeline], [cache], [history], [render], [server],
//     [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	descriptor files (.toml / .json)
//	         ↓
//	    [registry] (conditions, duplicate ids)
//	         ↓
//	    [solver] (graph construction + ordering)
//	         ↓
//	    [pipeline] (cache, render) → text / JSON / DOT / SVG
//
// # Quick Start
//
//	table, err := registry.Discover("./mods")
//	if err != nil {
//	    return err
//	}
//	plan, err := solver.New().Plan(ctx, table.Descriptors())
//	if err != nil {
//	    return err // *solver.MissingRequiredError, *solver.UnsatisfiedError, ...
//	}
//	fmt.Println(plan.IDs())
//
// [semver]: github.com/matzehuels/loadorder/pkg/semver
// [module]: github.com/matzehuels/loadorder/pkg/module
// [solver]: github.com/matzehuels/loadorder/pkg/solver
// [dag]: github.com/matzehuels/loadorder/pkg/dag
// [registry]: github.com/matzehuels/loadorder/pkg/registry
// [io]: github.com/matzehuels/loadorder/pkg/io
// [lint]: github.com/matzehuels/loadorder/pkg/lint
// [loader]: github.com/matzehuels/loadorder/pkg/loader
// [pipeline]: github.com/matzehuels/loadorder/pkg/pipeline
// [cache]: github.com/matzehuels/loadorder/pkg/cache
// [history]: github.com/matzehuels/loadorder/pkg/history
// [render]: github.com/matzehuels/loadorder/pkg/render
// [server]: github.com/matzehuels/loadorder/pkg/server
// [observability]: github.com/matzehuels/loadorder/pkg/observability
// [errors]: github.com/matzehuels/loadorder/pkg/errors
// [buildinfo]: github.com/matzehuels/loadorder/pkg/buildinfo
package pkg
