package loader

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/semver"
	"github.com/matzehuels/loadorder/pkg/solver"
)

type recorder struct {
	events []string
}

func (r *recorder) add(e string) { r.events = append(r.events, e) }

type testModule struct {
	id      string
	rec     *recorder
	deps    map[string]*testModule
	failPre bool
	failEnd bool
}

func (m *testModule) PreInit(context.Context) error {
	m.rec.add("preinit:" + m.id)
	if m.failPre {
		return errors.New("boom")
	}
	return nil
}

func (m *testModule) Init(context.Context) error {
	m.rec.add("init:" + m.id)
	return nil
}

func (m *testModule) Close(context.Context) error {
	m.rec.add("close:" + m.id)
	if m.failEnd {
		return errors.New("close " + m.id)
	}
	return nil
}

func descriptor(t *testing.T, id string, required, after []string) module.Descriptor {
	t.Helper()
	b := module.NewBuilder(id).Version(semver.MustParse("1.0.0"))
	for _, s := range required {
		b.Require(module.MustParseSpec(s))
	}
	for _, s := range after {
		b.LoadAfter(module.MustParseSpec(s))
	}
	d, err := b.Build()
	if err != nil {
		t.Fatalf("build %s: %v", id, err)
	}
	return d
}

func factory(rec *recorder, id string, needs ...string) Factory {
	return func(_ context.Context, refs Refs) (any, error) {
		rec.add("new:" + id)
		m := &testModule{id: id, rec: rec, deps: map[string]*testModule{}}
		for _, n := range needs {
			if dep, ok := Lookup[*testModule](refs, n); ok {
				m.deps[n] = dep
			}
		}
		return m, nil
	}
}

func mustRegister(t *testing.T, c *Context, r Registration) {
	t.Helper()
	if err := c.Register(r); err != nil {
		t.Fatalf("Register(%s): %v", r.Descriptor, err)
	}
}

func TestResolveInjectsDeclaredDependency(t *testing.T) {
	rec := &recorder{}
	c := New()
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "target", []string{"decl"}, nil),
		Needs:      []string{"decl"},
		Factory:    factory(rec, "target", "decl"),
	})
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "decl", nil, nil),
		Factory:    factory(rec, "decl"),
	})

	if err := c.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	got, err := c.Module("TARGET")
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	target := got.(*testModule)
	decl, err := c.Module("decl")
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	if target.deps["decl"] != decl {
		t.Errorf("target.deps[decl] = %v, want %v", target.deps["decl"], decl)
	}
}

func TestResolveRejectsUndeclaredNeed(t *testing.T) {
	rec := &recorder{}
	c := New()
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "target", nil, nil),
		Needs:      []string{"other"},
		Factory:    factory(rec, "target", "other"),
	})
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "other", nil, nil),
		Factory:    factory(rec, "other"),
	})

	err := c.Resolve(context.Background())
	var ill *IllegalDependencyError
	if !errors.As(err, &ill) {
		t.Fatalf("Resolve error = %v, want IllegalDependencyError", err)
	}
	if ill.Module != "target" || ill.Target != "other" {
		t.Errorf("got %+v", ill)
	}
	if !errs.Is(err, errs.ErrCodeIllegalDependency) {
		t.Errorf("code = %s, want %s", errs.GetCode(err), errs.ErrCodeIllegalDependency)
	}
	if len(rec.events) != 0 {
		t.Errorf("factories ran before validation: %v", rec.events)
	}
}

func TestSoftNeedAbsent(t *testing.T) {
	rec := &recorder{}
	c := New()
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "ui", nil, []string{"theme"}),
		Needs:      []string{"theme"},
		Factory:    factory(rec, "ui", "theme"),
	})

	if err := c.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m, _ := c.Module("ui")
	if len(m.(*testModule).deps) != 0 {
		t.Errorf("deps = %v, want none", m.(*testModule).deps)
	}
	if _, err := c.Module("theme"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Module(theme) error = %v, want NOT_FOUND", err)
	}
}

func TestLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	c := New()
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "app", []string{"db"}, nil),
		Needs:      []string{"db"},
		Factory:    factory(rec, "app", "db"),
	})
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "db", nil, nil),
		Factory:    factory(rec, "db"),
	})

	ctx := context.Background()
	if err := c.Resolve(ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := c.Teardown(ctx); err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	want := []string{
		"new:db", "new:app",
		"preinit:db", "preinit:app",
		"init:db", "init:app",
		"close:app", "close:db",
	}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events = %v\nwant %v", rec.events, want)
	}
}

func TestCallbackErrorsDoNotStopSequence(t *testing.T) {
	rec := &recorder{}
	c := New()
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "a", nil, nil),
		Factory: func(context.Context, Refs) (any, error) {
			return &testModule{id: "a", rec: rec, failPre: true, failEnd: true}, nil
		},
	})
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "b", []string{"a"}, nil),
		Factory: func(context.Context, Refs) (any, error) {
			return &testModule{id: "b", rec: rec}, nil
		},
	})

	ctx := context.Background()
	if err := c.Resolve(ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"preinit:a", "preinit:b", "init:a", "init:b"}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}

	err := c.Teardown(ctx)
	if err == nil || err.Error() != "close a" {
		t.Errorf("Teardown error = %v, want close a", err)
	}
}

func TestFactoryFailureClosesConstructed(t *testing.T) {
	rec := &recorder{}
	cause := errors.New("no disk")
	c := New()
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "base", nil, nil),
		Factory:    factory(rec, "base"),
	})
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "store", []string{"base"}, nil),
		Factory:    func(context.Context, Refs) (any, error) { return nil, cause },
	})

	err := c.Resolve(context.Background())
	var ferr *FactoryError
	if !errors.As(err, &ferr) || ferr.Module != "store" {
		t.Fatalf("Resolve error = %v, want FactoryError for store", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not wrap cause")
	}
	want := []string{"new:base", "close:base"}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
	if _, err := c.Module("base"); !errors.Is(err, ErrNotResolved) {
		t.Errorf("Module after failure = %v, want ErrNotResolved", err)
	}
}

func TestResolveSolverFailure(t *testing.T) {
	c := New()
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "game", []string{"engine"}, nil),
		Factory:    factory(&recorder{}, "game"),
	})
	err := c.Resolve(context.Background())
	if !errors.Is(err, solver.ErrMissingRequired) {
		t.Errorf("Resolve error = %v, want ErrMissingRequired", err)
	}
}

func TestLifecycleStates(t *testing.T) {
	ctx := context.Background()
	c := New()

	if _, err := c.Order(); !errors.Is(err, ErrNotResolved) {
		t.Errorf("Order before Resolve = %v, want ErrNotResolved", err)
	}
	if err := c.Teardown(ctx); !errors.Is(err, ErrNotResolved) {
		t.Errorf("Teardown before Resolve = %v, want ErrNotResolved", err)
	}
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "solo", nil, nil),
		Factory:    factory(&recorder{}, "solo"),
	})
	if err := c.Resolve(ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := c.Resolve(ctx); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("second Resolve = %v, want ErrAlreadyResolved", err)
	}
	err := c.Register(Registration{
		Descriptor: descriptor(t, "late", nil, nil),
		Factory:    factory(&recorder{}, "late"),
	})
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("Register after Resolve = %v, want ErrAlreadyResolved", err)
	}
	order, err := c.Order()
	if err != nil || len(order) != 1 || order[0].ID() != "solo" {
		t.Errorf("Order = %v, %v", order, err)
	}
	if err := c.Teardown(ctx); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if _, err := c.Module("solo"); !errors.Is(err, ErrNotResolved) {
		t.Errorf("Module after Teardown = %v, want ErrNotResolved", err)
	}
}

func TestRegisterDuplicateKeepsFirst(t *testing.T) {
	rec := &recorder{}
	c := New()
	mustRegister(t, c, Registration{Descriptor: descriptor(t, "dup", nil, nil), Factory: factory(rec, "first")})
	mustRegister(t, c, Registration{Descriptor: descriptor(t, "DUP", nil, nil), Factory: factory(rec, "second")})

	if err := c.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"new:first", "preinit:first", "init:first"}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
	if slices.ContainsFunc(rec.events, func(e string) bool { return strings.HasSuffix(e, ":second") }) {
		t.Errorf("rejected registration was constructed: %v", rec.events)
	}
}

func TestRegisterRequiresFactory(t *testing.T) {
	err := New().Register(Registration{Descriptor: descriptor(t, "x", nil, nil)})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Register error = %v, want INVALID_INPUT", err)
	}
}

// lookupModule queries its own context from every lifecycle stage.
type lookupModule struct {
	c      *Context
	target string
	seen   []string
}

func (m *lookupModule) PreInit(context.Context) error {
	_, err := m.c.Module(m.target)
	m.seen = append(m.seen, "preinit:"+errString(err))
	return nil
}

func (m *lookupModule) Init(context.Context) error {
	order, err := m.c.Order()
	m.seen = append(m.seen, "init:"+errString(err)+":"+strconv.Itoa(len(order)))
	return nil
}

func (m *lookupModule) Close(context.Context) error {
	_, err := m.c.Module(m.target)
	m.seen = append(m.seen, "close:"+errString(err))
	return nil
}

func errString(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, ErrNotResolved) {
		return "not-resolved"
	}
	return err.Error()
}

func TestCallbacksMayQueryContext(t *testing.T) {
	ctx := context.Background()
	c := New()
	var factoryErr error
	m := &lookupModule{c: c, target: "base"}
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "base", nil, nil),
		Factory:    factory(&recorder{}, "base"),
	})
	mustRegister(t, c, Registration{
		Descriptor: descriptor(t, "watcher", []string{"base"}, nil),
		Factory: func(context.Context, Refs) (any, error) {
			_, factoryErr = c.Module("base")
			return m, nil
		},
	})

	done := make(chan error, 1)
	go func() {
		if err := c.Resolve(ctx); err != nil {
			done <- err
			return
		}
		done <- c.Teardown(ctx)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Resolve/Teardown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("context deadlocked while a callback queried it")
	}

	if !errors.Is(factoryErr, ErrNotResolved) {
		t.Errorf("Module from factory = %v, want ErrNotResolved", factoryErr)
	}
	want := []string{"preinit:ok", "init:ok:2", "close:not-resolved"}
	if !slices.Equal(m.seen, want) {
		t.Errorf("seen = %v, want %v", m.seen, want)
	}
}
