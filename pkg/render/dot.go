package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/loadorder/pkg/dag"
	"github.com/matzehuels/loadorder/pkg/dag/transform"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds versions and load positions to node labels and specs
	// to edge labels.
	Detailed bool

	// Reduce drops transitively implied edges before drawing.
	Reduce bool
}

var edgeStyles = map[module.Relation]string{
	module.RelationRequired:   "solid",
	module.RelationLoadAfter:  "dashed",
	module.RelationLoadBefore: "dotted",
}

// ToDOT converts a plan's resolution graph to DOT source.
func ToDOT(p *solver.Plan, opts Options) string {
	g := p.Graph
	if opts.Reduce {
		g = g.Clone()
		transform.TransitiveReduction(g)
	}
	position := make(map[string]int, len(p.Order))
	for i, d := range p.Order {
		position[d.Key()] = i + 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph loadorder {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		d, _ := solver.Descriptor(g, n.ID)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, nodeLabel(d, position[n.ID], opts.Detailed))
	}

	buf.WriteString("\n")
	levels := transform.Levels(g)
	for _, ids := range rankGroups(levels) {
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = fmt.Sprintf("%q", id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e, opts.Detailed), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(d module.Descriptor, position int, detailed bool) string {
	if !detailed {
		return d.Name()
	}
	label := fmt.Sprintf("%s\n%s@%s", d.Name(), d.ID(), d.Version())
	if position > 0 {
		label = fmt.Sprintf("#%d %s", position, label)
	}
	return label
}

func edgeAttrs(e dag.Edge, detailed bool) []string {
	rel, _ := e.Meta[solver.MetaRelation].(module.Relation)
	style, ok := edgeStyles[rel]
	if !ok {
		style = "solid"
	}
	attrs := []string{"style=" + style}
	if detailed {
		if spec, ok := e.Meta[solver.MetaSpec].(module.Spec); ok && !spec.Range.IsAny() {
			attrs = append(attrs, fmt.Sprintf("label=%q", spec.Range.String()), "fontsize=10")
		}
	}
	return attrs
}

// rankGroups returns node ids grouped by level, lowest level first, with
// single-node levels omitted.
func rankGroups(levels map[string]int) [][]string {
	byLevel := make(map[int][]string)
	for id, l := range levels {
		byLevel[l] = append(byLevel[l], id)
	}
	var groups [][]string
	for _, l := range slices.Sorted(maps.Keys(byLevel)) {
		if ids := byLevel[l]; len(ids) > 1 {
			slices.Sort(ids)
			groups = append(groups, ids)
		}
	}
	return groups
}
