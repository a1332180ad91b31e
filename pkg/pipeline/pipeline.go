// Package pipeline runs the solve → render sequence shared by the CLI and
// the HTTP server.
//
// # Stages
//
//  1. Solve: order the descriptors, reusing a cached plan when the same
//     descriptor set was solved before under the same match policy
//  2. Render: produce the requested output formats from the plan
//
// Failed resolutions are never cached, so fixing a descriptor always takes
// effect on the next run.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, solver.New(), logger)
//	result, err := runner.Execute(ctx, descriptors, pipeline.Options{
//	    Formats: []string{pipeline.FormatText, pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Artifacts[pipeline.FormatText])
package pipeline

import (
	"strings"
	"time"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/render"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !ValidFormats[f] {
			return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: text, json, dot, svg)", f)
		}
	}
	return nil
}

// Options configures a pipeline run.
type Options struct {
	// Refresh skips the cache lookup. The fresh plan is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Formats lists the artifacts to render; defaults to text.
	Formats []string `json:"formats,omitempty"`

	// Render controls DOT and SVG output.
	Render render.Options `json:"-"`
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (o *Options) validateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	return ValidateFormats(o.Formats)
}

// Result holds the outputs of a pipeline run.
type Result struct {
	// Plan is the solved plan.
	Plan *solver.Plan

	// InputHash identifies the descriptor set.
	InputHash string

	// CacheHit reports whether Plan came from the cache.
	CacheHit bool

	// Artifacts maps each requested format to its bytes.
	Artifacts map[string][]byte

	Stats Stats
}

// Stats records sizes and durations of a run.
type Stats struct {
	Modules    int
	Edges      int
	SolveTime  time.Duration
	RenderTime time.Duration
}
