package solver

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/loadorder/pkg/dag"
	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/observability"
)

// Metadata keys written to the resolution graph.
const (
	MetaDescriptor = "descriptor" // node: module.Descriptor
	MetaRelation   = "relation"   // edge: module.Relation
	MetaSpec       = "spec"       // edge: module.Spec that produced it
	MetaPolicy     = "policy"     // graph: MatchPolicy.String()
)

// MatchPolicy decides which module satisfies a dependency spec while the
// graph is being built.
type MatchPolicy int

const (
	// MatchIDAndRange requires the candidate's id to equal the spec id
	// (ignoring case) and its version to lie in the spec range.
	MatchIDAndRange MatchPolicy = iota

	// MatchRangeOnly accepts the first module, in sorted id order, whose
	// version lies in the spec range, whatever its id. Satisfaction during
	// ordering still checks ids, so this policy exists only to reproduce
	// historical load orders.
	MatchRangeOnly
)

func (p MatchPolicy) String() string {
	switch p {
	case MatchRangeOnly:
		return "range-only"
	default:
		return "id-and-range"
	}
}

// ParseMatchPolicy parses the names produced by [MatchPolicy.String].
// The empty string selects [MatchIDAndRange].
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(s) {
	case "", "id-and-range":
		return MatchIDAndRange, nil
	case "range-only":
		return MatchRangeOnly, nil
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "unknown match policy %q (want id-and-range or range-only)", s)
}

// Option configures a [Solver].
type Option func(*Solver)

// WithMatchPolicy selects how dependency targets are matched.
func WithMatchPolicy(p MatchPolicy) Option {
	return func(s *Solver) { s.policy = p }
}

// Solver computes load orders. A Solver holds only configuration; every
// call builds a private graph, so one Solver may be shared between
// goroutines.
type Solver struct {
	policy MatchPolicy
}

// New returns a solver using [MatchIDAndRange] unless configured otherwise.
func New(opts ...Option) *Solver {
	s := &Solver{policy: MatchIDAndRange}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Policy returns the configured match policy.
func (s *Solver) Policy() MatchPolicy { return s.policy }

// Plan is a successful resolution.
type Plan struct {
	// Order lists descriptors so that every dependency precedes its
	// dependents.
	Order []module.Descriptor

	// Graph is the resolution graph. Node IDs are case-folded module ids;
	// see the Meta* constants for the metadata stored on it.
	Graph *dag.DAG
}

// IDs returns the declared ids in load order.
func (p *Plan) IDs() []string {
	ids := make([]string, len(p.Order))
	for i, d := range p.Order {
		ids[i] = d.ID()
	}
	return ids
}

// Entry pairs a descriptor with the caller's payload for that module.
type Entry[T any] struct {
	Descriptor module.Descriptor
	Payload    T
}

// Solve orders the payloads of entries so that every module's
// dependencies come first. Map keys are compared case-insensitively and
// must name the entry's descriptor.
func Solve[T any](ctx context.Context, s *Solver, entries map[string]Entry[T]) ([]T, error) {
	keys := slices.Sorted(maps.Keys(entries))
	byKey := make(map[string]T, len(entries))
	descriptors := make([]module.Descriptor, 0, len(entries))
	for _, k := range keys {
		e := entries[k]
		folded := module.Fold(k)
		if folded != e.Descriptor.Key() {
			return nil, errs.New(errs.ErrCodeInvalidInput, "entry %q holds descriptor %s", k, e.Descriptor)
		}
		if _, dup := byKey[folded]; dup {
			return nil, &DuplicateModuleError{ID: k, Existing: firstKeyFolding(keys, folded)}
		}
		byKey[folded] = e.Payload
		descriptors = append(descriptors, e.Descriptor)
	}

	plan, err := s.Plan(ctx, descriptors)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(plan.Order))
	for i, d := range plan.Order {
		out[i] = byKey[d.Key()]
	}
	return out, nil
}

func firstKeyFolding(keys []string, folded string) string {
	for _, k := range keys {
		if module.Fold(k) == folded {
			return k
		}
	}
	return folded
}

// Plan resolves a load order for descriptors. The result is a pure function
// of the input set; the order of descriptors does not matter.
//
// Failures are one of [*DuplicateModuleError], [*MissingRequiredError],
// [*ConflictingDirectionError], [*NoRootModuleError] or [*UnsatisfiedError],
// or ctx.Err() if ctx is done before resolution starts.
func (s *Solver) Plan(ctx context.Context, descriptors []module.Descriptor) (plan *Plan, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks := observability.Solver()
	hooks.OnSolveStart(ctx, len(descriptors))
	start := time.Now()
	defer func() {
		hooks.OnSolveComplete(ctx, len(descriptors), time.Since(start), err)
	}()

	g, err := s.build(descriptors)
	if err != nil {
		return nil, err
	}
	order, err := s.order(g)
	if err != nil {
		return nil, err
	}
	return &Plan{Order: order, Graph: g}, nil
}

// =============================================================================
// Graph construction
// =============================================================================

func (s *Solver) build(descriptors []module.Descriptor) (*dag.DAG, error) {
	g := dag.New(dag.Metadata{MetaPolicy: s.policy.String()})
	for _, d := range descriptors {
		if n, exists := g.Node(d.Key()); exists {
			return nil, &DuplicateModuleError{ID: d.ID(), Existing: descriptorOf(n).ID()}
		}
		if err := g.AddNode(dag.Node{ID: d.Key(), Meta: dag.Metadata{MetaDescriptor: d}}); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "add module %s", d)
		}
	}

	b := &builder{g: g, ids: g.IDs(), policy: s.policy}
	for _, id := range b.ids {
		if err := b.addModule(descriptor(g, id)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

type builder struct {
	g      *dag.DAG
	ids    []string // sorted node ids
	policy MatchPolicy
}

func (b *builder) addModule(d module.Descriptor) error {
	for _, spec := range d.LoadAfter().Specs() {
		if m, ok := b.find(d, spec); ok {
			if err := b.addEdge(d.Key(), m, module.RelationLoadAfter, spec); err != nil {
				return err
			}
		}
	}
	for _, spec := range d.LoadBefore().Specs() {
		if m, ok := b.find(d, spec); ok {
			if err := b.addEdge(m, d.Key(), module.RelationLoadBefore, spec); err != nil {
				return err
			}
		}
	}
	for _, spec := range d.Required().Specs() {
		m, ok := b.find(d, spec)
		if !ok {
			return &MissingRequiredError{Module: d.ID(), Spec: spec}
		}
		if err := b.addEdge(d.Key(), m, module.RelationRequired, spec); err != nil {
			return err
		}
	}
	return nil
}

// find returns the node satisfying spec on behalf of d. A module never
// satisfies its own specs.
func (b *builder) find(d module.Descriptor, spec module.Spec) (string, bool) {
	if b.policy == MatchRangeOnly {
		for _, id := range b.ids {
			if id == d.Key() {
				continue
			}
			if spec.Range.Contains(descriptor(b.g, id).Version()) {
				return id, true
			}
		}
		return "", false
	}

	id := spec.Key()
	if id == d.Key() {
		return "", false
	}
	n, ok := b.g.Node(id)
	if !ok || !spec.Range.Contains(descriptorOf(n).Version()) {
		return "", false
	}
	return id, true
}

func (b *builder) addEdge(from, to string, rel module.Relation, spec module.Spec) error {
	if b.g.HasEdge(to, from) {
		return &ConflictingDirectionError{
			From:     descriptor(b.g, from).ID(),
			To:       descriptor(b.g, to).ID(),
			Relation: rel,
			Spec:     spec,
		}
	}
	if b.g.HasEdge(from, to) {
		return nil
	}
	err := b.g.AddEdge(dag.Edge{
		From: from,
		To:   to,
		Meta: dag.Metadata{MetaRelation: rel, MetaSpec: spec},
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "add edge %s → %s", from, to)
	}
	return nil
}

// =============================================================================
// Ordering
// =============================================================================

// order runs the worklist: modules without dependencies are ready first;
// placing a module makes its dependents "encountered"; an encountered module
// becomes ready once its own constraints are met by placed modules. The loop
// stops at the first pass that readies nothing.
func (s *Solver) order(g *dag.DAG) ([]module.Descriptor, error) {
	if g.NodeCount() == 0 {
		return []module.Descriptor{}, nil
	}

	ready := dag.NodeIDs(g.Sinks())
	if len(ready) == 0 {
		return nil, &NoRootModuleError{
			Modules: declaredIDs(g, g.IDs()),
			Cycle:   declaredIDs(g, g.FindCycle()),
		}
	}

	placed := make(map[string]bool, g.NodeCount())
	encountered := make(map[string]bool)
	order := make([]module.Descriptor, 0, g.NodeCount())

	for len(ready) > 0 {
		for _, id := range ready {
			order = append(order, descriptor(g, id))
			placed[id] = true
			delete(encountered, id)
		}
		for _, id := range ready {
			for _, dependent := range g.Parents(id) {
				if !placed[dependent] {
					encountered[dependent] = true
				}
			}
		}

		var next []string
		for _, id := range slices.Sorted(maps.Keys(encountered)) {
			if len(unmet(g, id, placed)) == 0 {
				next = append(next, id)
				delete(encountered, id)
			}
		}
		ready = next
	}

	if len(order) == g.NodeCount() {
		return order, nil
	}

	var remaining []string
	blocked := make(map[string][]string)
	for _, id := range g.IDs() {
		if placed[id] {
			continue
		}
		remaining = append(remaining, id)
		blocked[descriptor(g, id).ID()] = unmet(g, id, placed)
	}
	return nil, &UnsatisfiedError{
		Modules: declaredIDs(g, remaining),
		Blocked: blocked,
		Cycle:   declaredIDs(g, g.FindCycle()),
	}
}

// unmet lists what keeps id from being placed: loadAfter specs whose target
// id is present at any version and required specs that no placed module
// satisfies, then dependencies in the graph that are not placed yet.
func unmet(g *dag.DAG, id string, placed map[string]bool) []string {
	d := descriptor(g, id)
	var reasons []string

	var specs []module.Spec
	for _, spec := range d.LoadAfter().Specs() {
		if _, present := g.Node(spec.Key()); present {
			specs = append(specs, spec)
		}
	}
	specs = append(specs, d.Required().Specs()...)

	for _, spec := range specs {
		if !satisfiedByPlaced(g, spec, placed) {
			reasons = append(reasons, spec.String())
		}
	}
	for _, dep := range g.Children(id) {
		if !placed[dep] {
			reasons = append(reasons, fmt.Sprintf("%s (not loaded)", descriptor(g, dep).ID()))
		}
	}
	return reasons
}

func satisfiedByPlaced(g *dag.DAG, spec module.Spec, placed map[string]bool) bool {
	n, ok := g.Node(spec.Key())
	if !ok || !placed[n.ID] {
		return false
	}
	d := descriptorOf(n)
	return spec.Matches(d.ID(), d.Version())
}

// =============================================================================
// Helpers
// =============================================================================

func descriptor(g *dag.DAG, id string) module.Descriptor {
	n, _ := g.Node(id)
	return descriptorOf(n)
}

func descriptorOf(n *dag.Node) module.Descriptor {
	d, _ := n.Meta[MetaDescriptor].(module.Descriptor)
	return d
}

// Descriptor returns the descriptor stored on a resolution graph node.
func Descriptor(g *dag.DAG, id string) (module.Descriptor, bool) {
	n, ok := g.Node(id)
	if !ok {
		return module.Descriptor{}, false
	}
	d, ok := n.Meta[MetaDescriptor].(module.Descriptor)
	return d, ok
}

func declaredIDs(g *dag.DAG, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = descriptor(g, id).ID()
	}
	return out
}
