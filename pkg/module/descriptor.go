// Package module defines module identity records and the dependency-spec
// grammar they are declared with.
//
// A [Descriptor] is built once by whatever registers the module, through a
// [Builder], and is read-only afterwards:
//
//	d, err := module.NewBuilder("physics").
//		Name("Physics").
//		Version(semver.MustParse("1.2.0")).
//		Require(module.MustParseSpec("core:[1.0.0,2.0.0)")).
//		LoadAfter(module.NewSpec("audio")).
//		Build()
//
// Dependency specs use ID[:RANGE]; lists join entries with ';':
//
//	core:[1.0.0,2.0.0);math;audio:*
package module

import (
	"fmt"
	"slices"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/semver"
)

// Relation names one of the three ways a module can constrain the order.
type Relation string

const (
	// RelationLoadAfter is a soft "load me after X if X is present".
	RelationLoadAfter Relation = "loadAfter"
	// RelationLoadBefore is a soft "load me before X if X is present".
	RelationLoadBefore Relation = "loadBefore"
	// RelationRequired is a hard dependency on a matching X.
	RelationRequired Relation = "required"
)

// Relations lists every relation in declaration order.
var Relations = []Relation{RelationLoadAfter, RelationLoadBefore, RelationRequired}

// Descriptor is the immutable identity record of one module.
type Descriptor struct {
	id         string
	name       string
	version    semver.Version
	loadAfter  SpecSet
	loadBefore SpecSet
	required   SpecSet
}

// ID returns the module id as declared.
func (d Descriptor) ID() string { return d.id }

// Key returns the case-folded id used as the graph key.
func (d Descriptor) Key() string { return Fold(d.id) }

// Name returns the display name, which defaults to the id.
func (d Descriptor) Name() string { return d.name }

// Version returns the module version.
func (d Descriptor) Version() semver.Version { return d.version }

// LoadAfter returns the soft "load after" specs.
func (d Descriptor) LoadAfter() SpecSet { return d.loadAfter }

// LoadBefore returns the soft "load before" specs.
func (d Descriptor) LoadBefore() SpecSet { return d.loadBefore }

// Required returns the hard dependency specs.
func (d Descriptor) Required() SpecSet { return d.required }

// Specs returns the specs declared for rel.
func (d Descriptor) Specs(rel Relation) SpecSet {
	switch rel {
	case RelationLoadAfter:
		return d.loadAfter
	case RelationLoadBefore:
		return d.loadBefore
	case RelationRequired:
		return d.required
	}
	return SpecSet{}
}

// Declares reports whether id appears in the module's loadAfter or required
// specs. Only declared ids may be referenced by the module at construction.
func (d Descriptor) Declares(id string) bool {
	return d.loadAfter.HasID(id) || d.required.HasID(id)
}

// Equal reports structural equality of two descriptors.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.id == o.id &&
		d.name == o.name &&
		d.version.Equal(o.version) &&
		d.loadAfter.Equal(o.loadAfter) &&
		d.loadBefore.Equal(o.loadBefore) &&
		d.required.Equal(o.required)
}

// String renders Name[id@version].
func (d Descriptor) String() string {
	return fmt.Sprintf("%s[%s@%s]", d.name, d.id, d.version)
}

// Builder assembles a [Descriptor]. Builders are single-use and not safe for
// concurrent use.
type Builder struct {
	d Descriptor
}

// NewBuilder starts a descriptor for id at version 0.0.0.
func NewBuilder(id string) *Builder {
	return &Builder{d: Descriptor{id: id, version: semver.Zero}}
}

// Name sets the display name.
func (b *Builder) Name(name string) *Builder {
	b.d.name = name
	return b
}

// Version sets the module version.
func (b *Builder) Version(v semver.Version) *Builder {
	b.d.version = v
	return b
}

// LoadAfter adds soft "load after" specs.
func (b *Builder) LoadAfter(specs ...Spec) *Builder {
	for _, s := range specs {
		b.d.loadAfter.Add(s)
	}
	return b
}

// LoadBefore adds soft "load before" specs.
func (b *Builder) LoadBefore(specs ...Spec) *Builder {
	for _, s := range specs {
		b.d.loadBefore.Add(s)
	}
	return b
}

// Require adds hard dependency specs.
func (b *Builder) Require(specs ...Spec) *Builder {
	for _, s := range specs {
		b.d.required.Add(s)
	}
	return b
}

// Add adds specs under the given relation.
func (b *Builder) Add(rel Relation, specs ...Spec) *Builder {
	switch rel {
	case RelationLoadAfter:
		return b.LoadAfter(specs...)
	case RelationLoadBefore:
		return b.LoadBefore(specs...)
	default:
		return b.Require(specs...)
	}
}

// Build validates the id and returns the descriptor. The display name
// defaults to the id.
func (b *Builder) Build() (Descriptor, error) {
	if err := errs.ValidateModuleID(b.d.id); err != nil {
		return Descriptor{}, err
	}
	for _, rel := range Relations {
		for _, s := range b.d.Specs(rel).specs {
			if err := errs.ValidateModuleID(s.ID); err != nil {
				return Descriptor{}, errs.Wrap(errs.ErrCodeInvalidModuleID, err, "module %q: %s spec %q", b.d.id, rel, s)
			}
		}
	}
	d := b.d
	if d.name == "" {
		d.name = d.id
	}
	// Clipped copies: appending to an accessor's result never writes into
	// the descriptor's backing arrays.
	d.loadAfter.specs = slices.Clip(slices.Clone(d.loadAfter.specs))
	d.loadBefore.specs = slices.Clip(slices.Clone(d.loadBefore.specs))
	d.required.specs = slices.Clip(slices.Clone(d.required.specs))
	return d, nil
}

// MustBuild is like [Builder.Build] but panics on error.
func (b *Builder) MustBuild() Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
