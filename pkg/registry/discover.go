package registry

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/loadorder/pkg/errors"
)

// Option configures [Discover].
type Option func(*discoverer)

type discoverer struct {
	env    Env
	logger *log.Logger
}

// WithEnv sets the environment conditions are evaluated in. Defaults to
// [DefaultEnv] with no variables.
func WithEnv(env Env) Option {
	return func(d *discoverer) { d.env = env }
}

// WithLogger sets the logger used for skipped modules and collisions.
func WithLogger(l *log.Logger) Option {
	return func(d *discoverer) { d.logger = l }
}

// Discover parses every manifest below dir, in lexical path order, and
// returns the modules whose conditions hold. Hidden files and files that
// are not .toml or .json are ignored. Duplicate ids are recorded as
// collisions on the returned table. dir may also name a single manifest.
func Discover(dir string, opts ...Option) (*Table[Manifest], error) {
	d := &discoverer{
		env:    DefaultEnv(nil),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "scan %s", dir)
	}
	var paths []string
	if !info.IsDir() {
		paths = []string{dir}
	} else {
		paths, err = manifestPaths(dir)
		if err != nil {
			return nil, err
		}
	}

	table := NewTable[Manifest]()
	for _, path := range paths {
		manifests, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		for _, m := range manifests {
			if err := d.add(table, m); err != nil {
				return nil, err
			}
		}
	}
	d.logger.Debug("discovered modules", "path", dir, "files", len(paths), "modules", table.Len())
	return table, nil
}

func manifestPaths(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != dir && entry.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if errs.ValidateManifestFilename(entry.Name()) != nil {
			return nil
		}
		if rel, err := filepath.Rel(dir, path); err != nil || errs.ValidatePath(filepath.ToSlash(rel)) != nil {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "scan %s", dir)
	}
	return paths, nil
}

func (d *discoverer) add(table *Table[Manifest], m Manifest) error {
	if m.When != nil {
		ok, err := m.When.Eval(d.env)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidManifest, err, "%s: module %s", m.Source, m.Descriptor.ID())
		}
		if !ok {
			d.logger.Debug("skipping module", "module", m.Descriptor.ID(), "when", m.When.String())
			return nil
		}
	}
	if c, collided := table.Add(m.Descriptor, m, m.Source); collided {
		d.logger.Warn(c.String())
	}
	return nil
}
