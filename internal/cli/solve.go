package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/pipeline"
	"github.com/matzehuels/loadorder/pkg/render"
)

// solveOpts holds the flags shared by solve and graph.
type solveOpts struct {
	formats     string
	output      string
	policy      string
	vars        []string
	noCache     bool
	refresh     bool
	interactive bool
	detailed    bool
	reduce      bool
}

func (o *solveOpts) bind(cmd *cobra.Command, defaultOutput string) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", defaultOutput, "output file (- or empty for stdout)")
	f.StringVar(&o.policy, "policy", "", "match policy: id-and-range or range-only (default from config)")
	f.StringArrayVar(&o.vars, "set", nil, "condition variable as key=value (repeatable)")
	f.BoolVar(&o.noCache, "no-cache", false, "disable the plan cache")
	f.BoolVar(&o.refresh, "refresh", false, "ignore cached plans and store a fresh one")
	f.BoolVar(&o.detailed, "detailed", false, "show versions and relations in graph output")
	f.BoolVar(&o.reduce, "reduce", false, "apply transitive reduction to graph output")
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	opts := &solveOpts{}
	cmd := &cobra.Command{
		Use:   "solve [path]",
		Short: "Print the load order of the modules at path",
		Long: `Solve discovers module descriptors in a directory (or a single manifest file),
resolves them and prints the load order.

Output formats: text (default), json, dot, svg. Several formats may be given
as a comma-separated list; with --output each is written next to the named
file using its own extension.`,
		Example: `  loadorder solve ./mods
  loadorder solve ./mods -f json -o plan.json
  loadorder solve ./mods --set profile=dev -i`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd, pathArg(args), opts, pipeline.FormatText)
		},
	}
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: text, json, dot, svg")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the plan in a terminal UI")
	opts.bind(cmd, "")
	return cmd
}

// graphCommand creates the graph command, a shortcut for solve with graph
// output that defaults to an SVG file.
func (c *CLI) graphCommand() *cobra.Command {
	opts := &solveOpts{}
	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Render the resolution graph as DOT or SVG",
		Example: `  loadorder graph ./mods
  loadorder graph ./mods -f dot -o - --reduce`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range pipeline.ParseFormats(opts.formats) {
				if f != pipeline.FormatDOT && f != pipeline.FormatSVG {
					return errs.New(errs.ErrCodeInvalidInput, "graph: unsupported format %q (want dot or svg)", f)
				}
			}
			return c.runSolve(cmd, pathArg(args), opts, pipeline.FormatSVG)
		},
	}
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: dot, svg")
	opts.bind(cmd, appName+".svg")
	return cmd
}

func (c *CLI) runSolve(cmd *cobra.Command, path string, opts *solveOpts, defaultFormat string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats := pipeline.ParseFormats(opts.formats)
	if len(formats) == 0 {
		formats = []string{defaultFormat}
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	policy, err := c.policy(opts.policy)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	descriptors, err := c.loadDescriptors(ctx, path, opts.vars)
	if err != nil {
		return err
	}
	prog.done("discovered modules", "path", path, "count", len(descriptors))

	runner, err := c.newRunner(ctx, opts.noCache, policy)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, descriptors, pipeline.Options{
		Refresh: opts.refresh,
		Formats: formats,
		Render:  render.Options{Detailed: opts.detailed, Reduce: opts.reduce},
	})
	if err != nil {
		return err
	}
	logger.Debug("solved", "modules", result.Stats.Modules, "edges", result.Stats.Edges,
		"solve", result.Stats.SolveTime, "render", result.Stats.RenderTime, "cached", result.CacheHit)

	if opts.interactive {
		return runPlanTUI(result.Plan)
	}

	if opts.output == "" || opts.output == "-" {
		return writeArtifacts(cmd.OutOrStdout(), result.Artifacts, formats)
	}
	paths, err := writeArtifactFiles(opts.output, result.Artifacts, formats)
	if err != nil {
		return err
	}
	printSuccess("Resolved %d modules", len(result.Plan.Order))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheHit)
	if cmd.Name() == "solve" {
		printNextStep("Browse interactively", fmt.Sprintf("%s solve -i %s", appName, path))
	}
	return nil
}

// writeArtifacts writes each artifact to w in format order.
func writeArtifacts(w io.Writer, artifacts map[string][]byte, formats []string) error {
	for _, f := range formats {
		data := artifacts[f]
		if _, err := w.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeArtifactFiles writes artifacts to output. With several formats the
// extension of output is replaced by each format's extension.
func writeArtifactFiles(output string, artifacts map[string][]byte, formats []string) ([]string, error) {
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "create output directory")
		}
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	var paths []string
	for _, f := range slices.Compact(slices.Clone(formats)) {
		path := output
		if len(formats) > 1 {
			path = base + "." + extension(f)
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func extension(format string) string {
	if format == pipeline.FormatText {
		return "txt"
	}
	return format
}
