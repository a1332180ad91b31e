package cli

import (
	"context"
	"io"
	"maps"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/loadorder/internal/config"
	"github.com/matzehuels/loadorder/pkg/buildinfo"
	"github.com/matzehuels/loadorder/pkg/cache"
	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/pipeline"
	"github.com/matzehuels/loadorder/pkg/registry"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "loadorder"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configFile string
	loader     *config.Loader
}

// New creates a new CLI instance with a default logger and default
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Config{}.WithDefaults(),
		loader: config.NewLoader(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "loadorder computes the order in which modules must load",
		Long: `loadorder reads module descriptors (id, version, loadAfter, loadBefore and
required specs), resolves them into a dependency graph and prints an order in
which every module loads after the modules it depends on.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loader.LoadWithDefaults(c.configFile)
			if err != nil {
				return err
			}
			c.Config = cfg
			c.Logger.SetLevel(cfg.Level())
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/loadorder/config.toml)")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool, policy solver.MatchPolicy) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns+":")
	}
	r := pipeline.NewRunner(ch, keyer, solver.New(solver.WithMatchPolicy(policy)), c.Logger)
	r.TTL = c.Config.Cache.TTL
	return r, nil
}

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		if cfg.Dir == "" {
			c.Logger.Warn("no cache directory available, caching disabled")
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(cfg.Dir)
	}
}

// =============================================================================
// Input Helpers
// =============================================================================

// policy returns the match policy named by flag, or the configured one.
func (c *CLI) policy(flag string) (solver.MatchPolicy, error) {
	if flag == "" {
		flag = c.Config.MatchPolicy
	}
	return solver.ParseMatchPolicy(flag)
}

// loadDescriptors discovers the modules at path whose conditions hold.
func (c *CLI) loadDescriptors(ctx context.Context, path string, setVars []string) ([]module.Descriptor, error) {
	vars, err := parseVars(setVars)
	if err != nil {
		return nil, err
	}
	env := registry.DefaultEnv(maps.Clone(c.Config.Vars)).WithVars(vars)
	table, err := registry.Discover(path,
		registry.WithEnv(env),
		registry.WithLogger(loggerFromContext(ctx)),
	)
	if err != nil {
		return nil, err
	}
	return table.Descriptors(), nil
}

// parseVars parses repeated key=value flags.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "--set %q: want key=value", p)
		}
		vars[k] = v
	}
	return vars, nil
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
