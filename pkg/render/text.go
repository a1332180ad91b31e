package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// WriteText writes the load order as a numbered list, one module per line,
// each followed by the modules it loads after.
func WriteText(w io.Writer, p *solver.Plan) error {
	width := len(fmt.Sprint(len(p.Order)))
	for i, d := range p.Order {
		line := fmt.Sprintf("%*d. %s@%s", width, i+1, d.ID(), d.Version())
		if deps := dependencies(p, d); len(deps) > 0 {
			line += "  ← " + strings.Join(deps, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func dependencies(p *solver.Plan, d module.Descriptor) []string {
	children := p.Graph.Children(d.Key())
	out := make([]string, 0, len(children))
	for _, id := range children {
		dep, _ := solver.Descriptor(p.Graph, id)
		out = append(out, dep.ID())
	}
	return out
}
