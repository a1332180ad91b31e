package io

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/semver"
)

// DescriptorsDocument is the wire form of a descriptor set.
type DescriptorsDocument struct {
	Modules []ModuleDocument `json:"modules"`
}

// ModuleDocument is the wire form of one descriptor.
type ModuleDocument struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Version    string   `json:"version"`
	LoadAfter  []string `json:"loadAfter,omitempty"`
	LoadBefore []string `json:"loadBefore,omitempty"`
	Required   []string `json:"required,omitempty"`
}

// NewModuleDocument converts d to its wire form.
func NewModuleDocument(d module.Descriptor) ModuleDocument {
	doc := ModuleDocument{ID: d.ID(), Version: d.Version().String()}
	if d.Name() != d.ID() {
		doc.Name = d.Name()
	}
	doc.LoadAfter = specStrings(d.LoadAfter())
	doc.LoadBefore = specStrings(d.LoadBefore())
	doc.Required = specStrings(d.Required())
	return doc
}

// Descriptor parses the document into a descriptor.
func (m ModuleDocument) Descriptor() (module.Descriptor, error) {
	if m.Version == "" {
		return module.Descriptor{}, errs.New(errs.ErrCodeInvalidFormat, "module %q: missing version", m.ID)
	}
	v, err := semver.Parse(m.Version)
	if err != nil {
		return module.Descriptor{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "module %q", m.ID)
	}

	b := module.NewBuilder(m.ID).Name(m.Name).Version(v)
	lists := map[module.Relation][]string{
		module.RelationLoadAfter:  m.LoadAfter,
		module.RelationLoadBefore: m.LoadBefore,
		module.RelationRequired:   m.Required,
	}
	for _, rel := range module.Relations {
		specs, err := ParseSpecEntries(lists[rel])
		if err != nil {
			return module.Descriptor{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "module %q %s", m.ID, rel)
		}
		b.Add(rel, specs...)
	}
	return b.Build()
}

// ParseSpecEntries parses relation entries, each a spec or a ';' list.
func ParseSpecEntries(entries []string) ([]module.Spec, error) {
	var out []module.Spec
	for _, e := range entries {
		set, err := module.ParseSpecList(e)
		if err != nil {
			return nil, err
		}
		out = append(out, set.Specs()...)
	}
	return out, nil
}

func specStrings(set module.SpecSet) []string {
	if set.Len() == 0 {
		return nil
	}
	specs := set.Specs()
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.String()
	}
	return out
}

// ReadDescriptors decodes a descriptor document. Unknown fields are
// rejected so that typos in relation names do not silently drop constraints.
func ReadDescriptors(r io.Reader) ([]module.Descriptor, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc DescriptorsDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode descriptors")
	}
	return doc.Descriptors()
}

// Descriptors parses every module in the document.
func (doc DescriptorsDocument) Descriptors() ([]module.Descriptor, error) {
	out := make([]module.Descriptor, 0, len(doc.Modules))
	for i, m := range doc.Modules {
		d, err := m.Descriptor()
		if err != nil {
			return nil, fmt.Errorf("modules[%d]: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// ImportDescriptors reads a descriptor document from path.
func ImportDescriptors(path string) ([]module.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDescriptors(f)
}

// WriteDescriptors encodes ds as an indented descriptor document.
func WriteDescriptors(w io.Writer, ds []module.Descriptor) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDescriptorsDocument(ds)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalCanonical encodes ds sorted by folded id, so equal sets produce
// equal bytes regardless of input order.
func MarshalCanonical(ds []module.Descriptor) ([]byte, error) {
	sorted := slices.Clone(ds)
	slices.SortFunc(sorted, func(a, b module.Descriptor) int {
		return cmp.Compare(a.Key(), b.Key())
	})
	return json.Marshal(newDescriptorsDocument(sorted))
}

func newDescriptorsDocument(ds []module.Descriptor) DescriptorsDocument {
	doc := DescriptorsDocument{Modules: make([]ModuleDocument, len(ds))}
	for i, d := range ds {
		doc.Modules[i] = NewModuleDocument(d)
	}
	return doc
}
