package registry

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	pkgio "github.com/matzehuels/loadorder/pkg/io"
	"github.com/matzehuels/loadorder/pkg/module"
)

// Manifest is one module declared in a manifest file.
type Manifest struct {
	Descriptor module.Descriptor
	Source     string     // file the module was read from
	When       *Condition // nil when unconditional
}

type manifestFile struct {
	Module []manifestModule `toml:"module"`
}

type manifestModule struct {
	ID         string   `toml:"id"`
	Name       string   `toml:"name"`
	Version    string   `toml:"version"`
	LoadAfter  []string `toml:"loadAfter"`
	LoadBefore []string `toml:"loadBefore"`
	Required   []string `toml:"required"`
	When       string   `toml:"when"`
}

// ParseFile reads a .toml or .json manifest.
func ParseFile(path string) ([]Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "open %s", path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return decodeJSON(f, path)
	}
	return Decode(f, path)
}

// Decode parses a TOML manifest. source labels errors and results.
func Decode(r io.Reader, source string) ([]Manifest, error) {
	var file manifestFile
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "%s", source)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "%s: unknown key %s", source, undecoded[0])
	}

	out := make([]Manifest, 0, len(file.Module))
	for i, m := range file.Module {
		doc := pkgio.ModuleDocument{
			ID:         m.ID,
			Name:       m.Name,
			Version:    m.Version,
			LoadAfter:  m.LoadAfter,
			LoadBefore: m.LoadBefore,
			Required:   m.Required,
		}
		d, err := doc.Descriptor()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "%s: module[%d]", source, i)
		}
		entry := Manifest{Descriptor: d, Source: source}
		if strings.TrimSpace(m.When) != "" {
			cond, err := CompileCondition(m.When)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "%s: module %s: when", source, d.ID())
			}
			entry.When = cond
		}
		out = append(out, entry)
	}
	return out, nil
}

func decodeJSON(r io.Reader, source string) ([]Manifest, error) {
	ds, err := pkgio.ReadDescriptors(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "%s", source)
	}
	out := make([]Manifest, len(ds))
	for i, d := range ds {
		out[i] = Manifest{Descriptor: d, Source: source}
	}
	return out, nil
}
