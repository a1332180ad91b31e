package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/loadorder/pkg/cache"
	pkgio "github.com/matzehuels/loadorder/pkg/io"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/observability"
	"github.com/matzehuels/loadorder/pkg/render"
	"github.com/matzehuels/loadorder/pkg/solver"
)

const planKeyType = "plan"

// Runner solves and renders with caching.
//
// A Runner holds no per-run state, so one Runner may serve concurrent
// requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Solver *solver.Solver
	Logger *log.Logger

	// TTL is how long solved plans stay cached; zero means cache.TTLPlan.
	TTL time.Duration
}

// NewRunner fills in defaults for nil arguments: a [cache.NullCache], the
// default keyer, a default solver and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, s *solver.Solver, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if s == nil {
		s = solver.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Solver: s, Logger: logger}
}

// Execute solves descriptors and renders every requested format.
func (r *Runner) Execute(ctx context.Context, descriptors []module.Descriptor, opts Options) (*Result, error) {
	if err := opts.validateAndSetDefaults(); err != nil {
		return nil, err
	}

	solveStart := time.Now()
	plan, hash, hit, err := r.solve(ctx, descriptors, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result := &Result{Plan: plan, InputHash: hash, CacheHit: hit}
	result.Stats.Modules = len(plan.Order)
	result.Stats.Edges = plan.Graph.EdgeCount()
	result.Stats.SolveTime = time.Since(solveStart)

	r.Logger.Info("solved load order",
		"modules", result.Stats.Modules,
		"edges", result.Stats.Edges,
		"cached", hit,
		"duration", result.Stats.SolveTime)

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, plan, opts.Formats, opts.Render)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Solve returns the plan for descriptors and whether it came from the cache.
func (r *Runner) Solve(ctx context.Context, descriptors []module.Descriptor, refresh bool) (*solver.Plan, bool, error) {
	plan, _, hit, err := r.solve(ctx, descriptors, refresh)
	return plan, hit, err
}

func (r *Runner) solve(ctx context.Context, descriptors []module.Descriptor, refresh bool) (*solver.Plan, string, bool, error) {
	canonical, err := pkgio.MarshalCanonical(descriptors)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash descriptors: %w", err)
	}
	hash := cache.Hash(canonical)
	key := r.Keyer.PlanKey(hash, r.Solver.Policy().String())
	hooks := observability.Cache()

	if !refresh {
		if plan, ok := r.cached(ctx, key, descriptors); ok {
			hooks.OnCacheHit(ctx, planKeyType)
			return plan, hash, true, nil
		}
		hooks.OnCacheMiss(ctx, planKeyType)
	}

	plan, err := r.Solver.Plan(ctx, descriptors)
	if err != nil {
		return nil, hash, false, err
	}

	var buf bytes.Buffer
	if err := pkgio.WritePlan(&buf, plan); err == nil {
		ttl := r.TTL
		if ttl <= 0 {
			ttl = cache.TTLPlan
		}
		if err := r.Cache.Set(ctx, key, buf.Bytes(), ttl); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, planKeyType, buf.Len())
		}
	}
	return plan, hash, false, nil
}

// cached returns the stored plan for key. Unreadable entries are treated
// as misses.
func (r *Runner) cached(ctx context.Context, key string, descriptors []module.Descriptor) (*solver.Plan, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	doc, err := pkgio.ReadPlan(bytes.NewReader(data))
	if err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	plan, err := doc.Restore(descriptors)
	if err != nil {
		r.Logger.Debug("discarding stale cache entry", "key", key, "error", err)
		return nil, false
	}
	return plan, true
}

// Render produces each format from plan.
func (r *Runner) Render(ctx context.Context, plan *solver.Plan, formats []string, opts render.Options) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(formats))
	var dot string
	for _, format := range formats {
		var buf bytes.Buffer
		switch format {
		case FormatText:
			if err := render.WriteText(&buf, plan); err != nil {
				return nil, err
			}
		case FormatJSON:
			if err := pkgio.WritePlan(&buf, plan); err != nil {
				return nil, err
			}
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = render.ToDOT(plan, opts)
			}
			if format == FormatDOT {
				buf.WriteString(dot)
				break
			}
			svg, err := render.RenderSVG(ctx, dot)
			if err != nil {
				return nil, err
			}
			buf.Write(svg)
		}
		artifacts[format] = buf.Bytes()
	}
	return artifacts, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
