package registry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/semver"
	"github.com/matzehuels/loadorder/pkg/solver"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTableCollisions(t *testing.T) {
	var table Table[int]
	first := module.NewBuilder("Core").Version(semver.MustParse("1.0.0")).MustBuild()
	second := module.NewBuilder("core").Version(semver.MustParse("2.0.0")).MustBuild()

	if _, collided := table.Add(first, 1, "a.toml"); collided {
		t.Fatal("first registration should not collide")
	}
	c, collided := table.Add(second, 2, "b.toml")
	if !collided {
		t.Fatal("second registration should collide")
	}
	if !c.Kept.Equal(first) || !c.Rejected.Equal(second) {
		t.Errorf("collision = %+v", c)
	}
	for _, want := range []string{"Core[Core@1.0.0]", "core[core@2.0.0]", "a.toml", "b.toml"} {
		if !strings.Contains(c.String(), want) {
			t.Errorf("collision message %q missing %q", c, want)
		}
	}

	d, payload, ok := table.Get("CORE")
	if !ok || payload != 1 || !d.Equal(first) {
		t.Errorf("Get(CORE) = %v, %d, %v; first registration should win", d, payload, ok)
	}
	if table.Len() != 1 || len(table.Collisions()) != 1 {
		t.Errorf("Len=%d Collisions=%d", table.Len(), len(table.Collisions()))
	}
	if table.Source("core") != "a.toml" {
		t.Errorf("Source = %q", table.Source("core"))
	}
}

func TestTableEntriesFeedSolver(t *testing.T) {
	table := NewTable[string]()
	v := semver.MustParse("1.0.0")
	table.Add(module.NewBuilder("game").Version(v).Require(module.NewSpec("core")).MustBuild(), "game.so", "")
	table.Add(module.NewBuilder("core").Version(v).MustBuild(), "core.so", "")

	got, err := solver.Solve(context.Background(), solver.New(), table.Entries())
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if !slices.Equal(got, []string{"core.so", "game.so"}) {
		t.Errorf("Solve() = %v", got)
	}

	ids := make([]string, 0, 2)
	for _, d := range table.Descriptors() {
		ids = append(ids, d.ID())
	}
	if !slices.Equal(ids, []string{"core", "game"}) {
		t.Errorf("Descriptors() = %v", ids)
	}
}

func TestDecode(t *testing.T) {
	const manifest = `
[[module]]
id = "physics"
name = "Physics"
version = "1.2.0"
required = ["core:[1.0.0,2.0.0)"]
loadAfter = ["audio;math:*"]
loadBefore = ["render"]
when = "os == 'linux'"

[[module]]
id = "core"
version = "1.0.0"
`
	ms, err := Decode(strings.NewReader(manifest), "mods.toml")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("got %d modules", len(ms))
	}
	p := ms[0]
	if p.Descriptor.Name() != "Physics" || p.Source != "mods.toml" {
		t.Errorf("physics = %v from %s", p.Descriptor, p.Source)
	}
	if p.Descriptor.LoadAfter().Len() != 2 || p.Descriptor.Required().Len() != 1 || p.Descriptor.LoadBefore().Len() != 1 {
		t.Errorf("relations = %v / %v / %v", p.Descriptor.LoadAfter(), p.Descriptor.Required(), p.Descriptor.LoadBefore())
	}
	if p.When == nil || p.When.String() != "os == 'linux'" {
		t.Errorf("When = %v", p.When)
	}
	if ms[1].When != nil {
		t.Error("core should be unconditional")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"syntax", "[[module]\nid = 1"},
		{"unknown key", "[[module]]\nid = \"a\"\nversion = \"1.0.0\"\nrequires = [\"b\"]"},
		{"bad version", "[[module]]\nid = \"a\"\nversion = \"one\""},
		{"bad spec", "[[module]]\nid = \"a\"\nversion = \"1.0.0\"\nrequired = [\"b:[1.0.0\"]"},
		{"bad condition", "[[module]]\nid = \"a\"\nversion = \"1.0.0\"\nwhen = \"os ==\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.manifest), "bad.toml")
			if !errs.Is(err, errs.ErrCodeInvalidManifest) {
				t.Fatalf("err = %v, want INVALID_MANIFEST", err)
			}
			if !strings.Contains(err.Error(), "bad.toml") {
				t.Errorf("error %q does not name the file", err)
			}
		})
	}
}

func TestCondition(t *testing.T) {
	env := Env{OS: "linux", Arch: "amd64", Vars: map[string]string{"gpu": "on"}}
	tests := []struct {
		expr    string
		want    bool
		wantErr bool
	}{
		{"os == 'linux'", true, false},
		{"arch == 'arm64'", false, false},
		{"vars.gpu == 'on' && os != 'windows'", true, false},
		{"vars.missing == nil", true, false},
		{"'linux'", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c, err := CompileCondition(tt.expr)
			if err != nil {
				t.Fatalf("CompileCondition() error: %v", err)
			}
			got, err := c.Eval(env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Eval() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvWithVars(t *testing.T) {
	base := Env{OS: "linux", Vars: map[string]string{"a": "1"}}
	layered := base.WithVars(map[string]string{"b": "2", "a": "3"})
	if layered.Vars["a"] != "3" || layered.Vars["b"] != "2" {
		t.Errorf("layered vars = %v", layered.Vars)
	}
	if base.Vars["a"] != "1" || len(base.Vars) != 1 {
		t.Errorf("WithVars modified the original: %v", base.Vars)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-core.toml", `
[[module]]
id = "core"
version = "1.0.0"
`)
	writeFile(t, dir, "b-extras.toml", `
[[module]]
id = "Core"
version = "9.9.9"

[[module]]
id = "windows-only"
version = "1.0.0"
when = "os == 'windows'"

[[module]]
id = "gpu"
version = "1.0.0"
required = ["core"]
when = "vars.gpu == 'on'"
`)
	writeFile(t, dir, "nested/c.json", `{"modules": [{"id": "audio", "version": "0.1.0"}]}`)
	writeFile(t, dir, ".hidden.toml", `not toml at all`)
	writeFile(t, dir, ".git/config.toml", `not toml at all`)
	writeFile(t, dir, "README.md", `# mods`)

	var logs bytes.Buffer
	table, err := Discover(dir,
		WithEnv(Env{OS: "linux", Arch: "amd64", Vars: map[string]string{"gpu": "on"}}),
		WithLogger(log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})),
	)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	var ids []string
	for _, d := range table.Descriptors() {
		ids = append(ids, d.ID())
	}
	if !slices.Equal(ids, []string{"audio", "core", "gpu"}) {
		t.Errorf("discovered %v, want [audio core gpu]", ids)
	}
	if d, _, _ := table.Get("core"); d.Version().String() != "1.0.0" {
		t.Errorf("core version = %s, first file should win", d.Version())
	}
	if len(table.Collisions()) != 1 {
		t.Errorf("collisions = %v", table.Collisions())
	}
	if !strings.Contains(logs.String(), "skipping module") || !strings.Contains(logs.String(), "windows-only") {
		t.Errorf("expected skip to be logged:\n%s", logs.String())
	}
}

func TestDiscoverPropagatesManifestErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.toml", "[[module]]\nid = \"a\"\nversion = \"1.0.0\"\nwhen = \"'yes'\"")

	_, err := Discover(dir)
	if !errs.Is(err, errs.ErrCodeInvalidManifest) {
		t.Errorf("err = %v, want INVALID_MANIFEST for non-bool condition", err)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mods.toml", `
[[module]]
id = "core"
version = "1.0.0"

[[module]]
id = "debug-overlay"
version = "1.0.0"
when = "vars.profile == 'dev'"
`)
	table, err := Discover(filepath.Join(dir, "mods.toml"), WithEnv(DefaultEnv(map[string]string{"profile": "release"})))
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
	if _, _, ok := table.Get("core"); !ok {
		t.Error("core not discovered")
	}
}
