package dag

import (
	"errors"
	"slices"
	"testing"
)

func newGraph(t *testing.T, ids ...string) *DAG {
	t.Helper()
	g := New(nil)
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%q): %v", id, err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New(nil)

	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) twice = %v, want ErrDuplicateNodeID", err)
	}

	n, ok := g.Node("a")
	if !ok || n.Meta == nil {
		t.Errorf("Node(a) = %v, %v; want initialized meta", n, ok)
	}
}

func TestAddEdge(t *testing.T) {
	g := newGraph(t, "a", "b")

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"unknown source", Edge{From: "x", To: "a"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
		{"self loop", Edge{From: "a", To: "a"}, ErrSelfLoop},
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"duplicate", Edge{From: "a", To: "b"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge(%v) = %v, want %v", tt.edge, err, tt.want)
			}
		})
	}

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1 (duplicates collapse)", g.EdgeCount())
	}
	if !g.HasEdge("a", "b") || g.HasEdge("b", "a") {
		t.Error("HasEdge is not directional")
	}
}

func TestEdgeMetadata(t *testing.T) {
	g := newGraph(t, "a", "b")
	_ = g.AddEdge(Edge{From: "a", To: "b", Meta: Metadata{"relation": "required"}})
	_ = g.AddEdge(Edge{From: "a", To: "b", Meta: Metadata{"relation": "loadAfter"}})

	e, ok := g.Edge("a", "b")
	if !ok {
		t.Fatal("Edge(a, b) not found")
	}
	if e.Meta["relation"] != "required" {
		t.Errorf("relation = %v, want first edge's metadata", e.Meta["relation"])
	}
	if _, ok := g.Edge("b", "a"); ok {
		t.Error("Edge(b, a) should not exist")
	}
}

func TestRemoveEdge(t *testing.T) {
	g := newGraph(t, "a", "b", "c")
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "c"})

	g.RemoveEdge("a", "b")
	g.RemoveEdge("b", "c") // missing: no-op

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if !slices.Equal(g.Children("a"), []string{"c"}) {
		t.Errorf("Children(a) = %v", g.Children("a"))
	}
	if len(g.Parents("b")) != 0 {
		t.Errorf("Parents(b) = %v", g.Parents("b"))
	}
}

func TestNodesSorted(t *testing.T) {
	g := newGraph(t, "zeta", "alpha", "mid")
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("Nodes() = %v, want sorted", got)
	}
}

func TestFindCycle(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		g := newGraph(t, "a", "b", "c")
		_ = g.AddEdge(Edge{From: "a", To: "b"})
		_ = g.AddEdge(Edge{From: "a", To: "c"})
		_ = g.AddEdge(Edge{From: "b", To: "c"})
		if c := g.FindCycle(); c != nil {
			t.Errorf("FindCycle() = %v, want nil", c)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("two cycle", func(t *testing.T) {
		g := newGraph(t, "a", "b")
		_ = g.AddEdge(Edge{From: "a", To: "b"})
		_ = g.AddEdge(Edge{From: "b", To: "a"})
		if c := g.FindCycle(); !slices.Equal(c, []string{"a", "b", "a"}) {
			t.Errorf("FindCycle() = %v", c)
		}
	})

	t.Run("cycle off the first path", func(t *testing.T) {
		g := newGraph(t, "a", "x", "y", "z")
		_ = g.AddEdge(Edge{From: "x", To: "y"})
		_ = g.AddEdge(Edge{From: "y", To: "z"})
		_ = g.AddEdge(Edge{From: "z", To: "y"})
		c := g.FindCycle()
		if !slices.Equal(c, []string{"y", "z", "y"}) {
			t.Errorf("FindCycle() = %v, want [y z y]", c)
		}
		if err := g.Validate(); !errors.Is(err, ErrGraphHasCycle) {
			t.Errorf("Validate() = %v, want ErrGraphHasCycle", err)
		}
	})
}

func TestPosMap(t *testing.T) {
	m := PosMap([]string{"core", "physics", "game"})
	if m["core"] != 0 || m["game"] != 2 {
		t.Errorf("PosMap = %v", m)
	}
}

func TestClone(t *testing.T) {
	g := newGraph(t, "a", "b", "c")
	_ = g.AddEdge(Edge{From: "a", To: "b", Meta: Metadata{"relation": "required"}})
	_ = g.AddEdge(Edge{From: "b", To: "c"})

	c := g.Clone()
	c.RemoveEdge("a", "b")
	c.Meta()["policy"] = "range-only"

	if !g.HasEdge("a", "b") || g.OutDegree("a") != 1 {
		t.Error("removing an edge from the clone changed the original")
	}
	if _, ok := g.Meta()["policy"]; ok {
		t.Error("clone shares graph metadata with the original")
	}
	if c.NodeCount() != 3 || c.EdgeCount() != 1 || !c.HasEdge("b", "c") {
		t.Errorf("clone has %d nodes, %d edges", c.NodeCount(), c.EdgeCount())
	}
}
