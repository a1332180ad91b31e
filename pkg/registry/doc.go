// Package registry collects module descriptors before they are solved.
//
// A [Table] maps case-insensitive module ids to descriptors and a payload.
// When two registrations share an id, the first one wins and the second is
// reported as a [Collision] rather than an error: hosts typically log the
// collision and carry on with the modules they have.
//
// # Manifest Files
//
// [Discover] walks a directory for manifest files. TOML manifests declare
// one or more modules:
//
//	[[module]]
//	id = "physics"
//	name = "Physics"
//	version = "1.2.0"
//	required = ["core:[1.0.0,2.0.0)"]
//	loadAfter = ["audio;math:*"]
//	loadBefore = ["render"]
//	when = "os != 'windows' && vars.physics != 'off'"
//
// JSON manifests use the descriptor document format of package io.
//
// # Conditions
//
// The optional when expression is evaluated with
// [github.com/expr-lang/expr] against os, arch and vars (see [Env]). A
// module whose condition is false is left out of the table. A condition
// that fails to compile, or does not produce a boolean, is a manifest error.
package registry
