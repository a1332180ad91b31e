package solver_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/semver"
	"github.com/matzehuels/loadorder/pkg/solver"
)

func Example() {
	core := module.NewBuilder("core").Version(semver.MustParse("1.2.0")).MustBuild()
	physics := module.NewBuilder("physics").
		Version(semver.MustParse("0.4.0")).
		Require(module.MustParseSpec("core:[1.0.0,2.0.0)")).
		MustBuild()
	ui := module.NewBuilder("ui").
		Version(semver.MustParse("2.0.0")).
		LoadAfter(module.MustParseSpec("physics")).
		LoadBefore(module.MustParseSpec("hud")).
		MustBuild()

	plan, err := solver.New().Plan(context.Background(), []module.Descriptor{ui, physics, core})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(plan.IDs())
	// Output: [core physics ui]
}

func ExampleSolve() {
	entries := map[string]solver.Entry[string]{
		"base": {
			Descriptor: module.NewBuilder("base").Version(semver.MustParse("1.0.0")).MustBuild(),
			Payload:    "base.so",
		},
		"extra": {
			Descriptor: module.NewBuilder("extra").
				Version(semver.MustParse("1.0.0")).
				Require(module.MustParseSpec("base")).
				MustBuild(),
			Payload: "extra.so",
		},
	}

	libs, err := solver.Solve(context.Background(), solver.New(), entries)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(libs)
	// Output: [base.so extra.so]
}

func ExampleMissingRequiredError() {
	game := module.NewBuilder("game").
		Version(semver.MustParse("1.0.0")).
		Require(module.MustParseSpec("engine:[3.0.0,)")).
		MustBuild()

	_, err := solver.New().Plan(context.Background(), []module.Descriptor{game})
	fmt.Println(err)
	// Output: module game requires engine:[3.0.0,), which is not present
}
