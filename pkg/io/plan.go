package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/loadorder/pkg/dag"
	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// PlanDocument is the wire form of a solved plan.
type PlanDocument struct {
	Policy string         `json:"policy,omitempty"`
	Order  []string       `json:"order"`
	Edges  []EdgeDocument `json:"edges"`
}

// EdgeDocument is one resolution edge, dependent to dependency.
type EdgeDocument struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Relation module.Relation `json:"relation"`
	Spec     string          `json:"spec,omitempty"`
}

// NewPlanDocument converts p. Ids are the declared ids, not the folded
// graph keys.
func NewPlanDocument(p *solver.Plan) PlanDocument {
	doc := PlanDocument{Order: p.IDs(), Edges: []EdgeDocument{}}
	if policy, ok := p.Graph.Meta()[solver.MetaPolicy].(string); ok {
		doc.Policy = policy
	}
	for _, e := range p.Graph.Edges() {
		from, _ := solver.Descriptor(p.Graph, e.From)
		to, _ := solver.Descriptor(p.Graph, e.To)
		ed := EdgeDocument{From: from.ID(), To: to.ID()}
		if rel, ok := e.Meta[solver.MetaRelation].(module.Relation); ok {
			ed.Relation = rel
		}
		if spec, ok := e.Meta[solver.MetaSpec].(module.Spec); ok {
			ed.Spec = spec.String()
		}
		doc.Edges = append(doc.Edges, ed)
	}
	return doc
}

// Restore rebuilds the plan from the descriptors it was solved from. It
// fails if the document names a module missing from descriptors.
func (doc PlanDocument) Restore(descriptors []module.Descriptor) (*solver.Plan, error) {
	byKey := make(map[string]module.Descriptor, len(descriptors))
	for _, d := range descriptors {
		byKey[d.Key()] = d
	}

	g := dag.New(dag.Metadata{solver.MetaPolicy: doc.Policy})
	order := make([]module.Descriptor, 0, len(doc.Order))
	for _, id := range doc.Order {
		d, ok := byKey[module.Fold(id)]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "plan names unknown module %q", id)
		}
		order = append(order, d)
		if err := g.AddNode(dag.Node{ID: d.Key(), Meta: dag.Metadata{solver.MetaDescriptor: d}}); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "plan module %q", id)
		}
	}
	if len(order) != len(descriptors) {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "plan covers %d of %d modules", len(order), len(descriptors))
	}

	for _, e := range doc.Edges {
		meta := dag.Metadata{solver.MetaRelation: e.Relation}
		if e.Spec != "" {
			spec, err := module.ParseSpec(e.Spec)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "edge %s → %s", e.From, e.To)
			}
			meta[solver.MetaSpec] = spec
		}
		err := g.AddEdge(dag.Edge{From: module.Fold(e.From), To: module.Fold(e.To), Meta: meta})
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "edge %s → %s", e.From, e.To)
		}
	}
	return &solver.Plan{Order: order, Graph: g}, nil
}

// WritePlan encodes p as an indented plan document.
func WritePlan(w io.Writer, p *solver.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewPlanDocument(p)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadPlan decodes a plan document.
func ReadPlan(r io.Reader) (PlanDocument, error) {
	var doc PlanDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return PlanDocument{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode plan")
	}
	return doc, nil
}
