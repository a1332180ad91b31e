package transform

import (
	"testing"

	"github.com/matzehuels/loadorder/pkg/dag"
)

func build(t *testing.T, ids []string, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, id := range ids {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestTransitiveReduction_Empty(t *testing.T) {
	if n := TransitiveReduction(dag.New(nil)); n != 0 {
		t.Errorf("removed %d edges from empty graph", n)
	}
}

func TestTransitiveReduction_KeepsDirectEdges(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}})
	if n := TransitiveReduction(g); n != 0 {
		t.Errorf("removed %d edges, want 0", n)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestTransitiveReduction_LongChain(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "c"}, {"a", "d"}, {"b", "d"}},
	)
	if n := TransitiveReduction(g); n != 3 {
		t.Errorf("removed %d edges, want 3", n)
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}} {
		if !g.HasEdge(e[0], e[1]) {
			t.Errorf("direct edge %s→%s was removed", e[0], e[1])
		}
	}
}

func TestTransitiveReduction_PreservesMetadata(t *testing.T) {
	g := build(t, []string{"a", "b"}, nil)
	_ = g.AddEdge(dag.Edge{From: "a", To: "b", Meta: dag.Metadata{"relation": "required"}})
	TransitiveReduction(g)
	if e, ok := g.Edge("a", "b"); !ok || e.Meta["relation"] != "required" {
		t.Errorf("edge metadata lost: %v %v", e, ok)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  map[string]int
	}{
		{
			name: "isolated",
			ids:  []string{"a", "b"},
			want: map[string]int{"a": 0, "b": 0},
		},
		{
			name:  "chain",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  map[string]int{"a": 2, "b": 1, "c": 0},
		},
		{
			name:  "longest path wins",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}},
			want:  map[string]int{"a": 2, "b": 1, "c": 0},
		},
		{
			name:  "cycle omitted",
			ids:   []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}},
			want:  map[string]int{"d": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Levels(build(t, tt.ids, tt.edges))
			if len(got) != len(tt.want) {
				t.Fatalf("Levels() = %v, want %v", got, tt.want)
			}
			for id, l := range tt.want {
				if got[id] != l {
					t.Errorf("level[%s] = %d, want %d", id, got[id], l)
				}
			}
		})
	}
}

func TestMaxLevel(t *testing.T) {
	if MaxLevel(nil) != 0 {
		t.Error("MaxLevel(nil) != 0")
	}
	if MaxLevel(map[string]int{"a": 3, "b": 1}) != 3 {
		t.Error("MaxLevel wrong")
	}
}
