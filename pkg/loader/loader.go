package loader

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/registry"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// Factory constructs a module. refs holds the already constructed modules
// named in the registration's Needs.
type Factory func(ctx context.Context, refs Refs) (any, error)

// Registration describes one module to construct.
type Registration struct {
	Descriptor module.Descriptor
	// Needs lists ids whose constructed modules the factory receives. Each
	// must be declared in the descriptor's loadAfter or required specs.
	Needs   []string
	Factory Factory
}

// PreIniter is implemented by modules that want a callback once every
// module they depend on has been constructed and pre-initialized.
type PreIniter interface {
	PreInit(ctx context.Context) error
}

// Initer is implemented by modules that want a callback once every module
// has been pre-initialized.
type Initer interface {
	Init(ctx context.Context) error
}

// Closer is implemented by modules that hold resources released at
// [Context.Teardown].
type Closer interface {
	Close(ctx context.Context) error
}

// Refs gives a factory access to the modules it needs.
type Refs struct {
	modules map[string]any
}

// Get returns the constructed module registered under id. It reports false
// when id is a soft dependency that is not present.
func (r Refs) Get(id string) (any, bool) {
	m, ok := r.modules[module.Fold(id)]
	return m, ok
}

// Lookup returns the module registered under id as a T. It reports false
// when the module is absent or is not a T.
func Lookup[T any](r Refs, id string) (T, bool) {
	m, ok := r.Get(id)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := m.(T)
	return t, ok
}

type state int

const (
	stateCreated state = iota
	stateResolving
	stateResolved
	stateTornDown
)

// Option configures a [Context].
type Option func(*Context)

// WithSolver sets the solver used by [Context.Resolve].
func WithSolver(s *solver.Solver) Option {
	return func(c *Context) { c.solver = s }
}

// WithLogger sets the logger for lifecycle events and callback failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// Context owns a set of registrations and the modules built from them.
// It is safe for concurrent use.
type Context struct {
	mu      sync.Mutex
	solver  *solver.Solver
	logger  *log.Logger
	table   registry.Table[Registration]
	state   state
	order   []Registration
	modules map[string]any
}

// New returns an empty loader context.
func New(opts ...Option) *Context {
	c := &Context{
		solver: solver.New(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register adds a module. When its id is already taken the first
// registration is kept and the collision is logged.
func (c *Context) Register(r Registration) error {
	if r.Factory == nil {
		return errs.New(errs.ErrCodeInvalidInput, "module %s has no factory", r.Descriptor)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateCreated {
		return ErrAlreadyResolved
	}
	if col, taken := c.table.Add(r.Descriptor, r, ""); taken {
		c.logger.Warn(col.String())
	}
	return nil
}

// Resolve validates every registration, solves the load order and
// constructs each module in it. If a factory fails, the modules already
// constructed are closed and the context may be resolved again.
//
// The context is not locked while factories and lifecycle callbacks run.
// Factories see [ErrNotResolved] from [Context.Module] and [Context.Order];
// PreInit and Init callbacks see the resolved modules.
func (c *Context) Resolve(ctx context.Context) error {
	c.mu.Lock()
	if c.state != stateCreated {
		c.mu.Unlock()
		return ErrAlreadyResolved
	}
	c.state = stateResolving
	c.mu.Unlock()

	order, modules, err := c.construct(ctx)

	c.mu.Lock()
	if err != nil {
		c.state = stateCreated
		c.mu.Unlock()
		return err
	}
	c.order = order
	c.modules = modules
	c.state = stateResolved
	c.mu.Unlock()

	c.logger.Debug("firing pre-init")
	for _, r := range order {
		if p, ok := modules[r.Descriptor.Key()].(PreIniter); ok {
			if err := p.PreInit(ctx); err != nil {
				c.logger.Error("pre-init failed", "module", r.Descriptor.ID(), "err", err)
			}
		}
	}
	c.logger.Debug("firing init")
	for _, r := range order {
		if p, ok := modules[r.Descriptor.Key()].(Initer); ok {
			if err := p.Init(ctx); err != nil {
				c.logger.Error("init failed", "module", r.Descriptor.ID(), "err", err)
			}
		}
	}
	c.logger.Info("modules ready", "count", len(order))
	return nil
}

// construct checks injection legality, solves and runs the factories. The
// table is stable while the context is resolving, since Register rejects
// every state but created.
func (c *Context) construct(ctx context.Context) ([]Registration, map[string]any, error) {
	for _, d := range c.table.Descriptors() {
		_, r, _ := c.table.Get(d.ID())
		for _, need := range r.Needs {
			if !d.Declares(need) {
				return nil, nil, &IllegalDependencyError{Module: d.ID(), Target: need}
			}
		}
	}

	c.logger.Info("resolving modules", "count", c.table.Len())
	order, err := solver.Solve(ctx, c.solver, c.table.Entries())
	if err != nil {
		return nil, nil, err
	}

	modules := make(map[string]any, len(order))
	for i, r := range order {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Join(err, c.closeAll(ctx, order[:i], modules))
		}
		refs := Refs{modules: make(map[string]any, len(r.Needs))}
		for _, need := range r.Needs {
			if m, ok := modules[module.Fold(need)]; ok {
				refs.modules[module.Fold(need)] = m
			}
		}
		m, err := r.Factory(ctx, refs)
		if err != nil {
			ferr := &FactoryError{Module: r.Descriptor.ID(), Err: err}
			return nil, nil, errors.Join(ferr, c.closeAll(ctx, order[:i], modules))
		}
		modules[r.Descriptor.Key()] = m
		c.logger.Debug("constructed module", "module", r.Descriptor.String())
	}
	return order, modules, nil
}

// Module returns the constructed module registered under id.
func (c *Context) Module(id string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateResolved {
		return nil, ErrNotResolved
	}
	m, ok := c.modules[module.Fold(id)]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "no module with id %q", id)
	}
	return m, nil
}

// Order returns the descriptors in load order.
func (c *Context) Order() ([]module.Descriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateResolved {
		return nil, ErrNotResolved
	}
	out := make([]module.Descriptor, len(c.order))
	for i, r := range c.order {
		out[i] = r.Descriptor
	}
	return out, nil
}

// Teardown closes every [Closer] module in reverse load order and returns
// the joined close errors. The context cannot be used afterwards, including
// from the Close callbacks themselves.
func (c *Context) Teardown(ctx context.Context) error {
	c.mu.Lock()
	if c.state != stateResolved {
		c.mu.Unlock()
		return ErrNotResolved
	}
	order, modules := c.order, c.modules
	c.state = stateTornDown
	c.order, c.modules = nil, nil
	c.mu.Unlock()
	return c.closeAll(ctx, order, modules)
}

func (c *Context) closeAll(ctx context.Context, order []Registration, modules map[string]any) error {
	var errList []error
	for _, r := range slices.Backward(order) {
		cl, ok := modules[r.Descriptor.Key()].(Closer)
		if !ok {
			continue
		}
		if err := cl.Close(ctx); err != nil {
			c.logger.Warn("close failed", "module", r.Descriptor.ID(), "err", err)
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
