package registry

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// Collision records a registration that was dropped because its id was
// already taken.
type Collision struct {
	ID       string
	Kept     module.Descriptor
	Rejected module.Descriptor
	KeptFrom string // source of the kept registration, if known
	From     string // source of the rejected registration, if known
}

func (c Collision) String() string {
	msg := fmt.Sprintf("module id %q is used by both %s and %s; keeping %s", c.ID, c.Kept, c.Rejected, c.Kept)
	if c.KeptFrom != "" && c.From != "" {
		msg += fmt.Sprintf(" (from %s, ignoring %s)", c.KeptFrom, c.From)
	}
	return msg
}

type record[T any] struct {
	descriptor module.Descriptor
	payload    T
	source     string
}

// Table is a case-insensitive id → (descriptor, payload) table. The zero
// value is ready to use. Table is not safe for concurrent use.
type Table[T any] struct {
	records    map[string]record[T]
	collisions []Collision
}

// NewTable returns an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{}
}

// Add registers d with payload. source names where the registration came
// from and is only used in collision reports. If the id is taken, Add keeps
// the existing registration and returns the collision.
func (t *Table[T]) Add(d module.Descriptor, payload T, source string) (Collision, bool) {
	if t.records == nil {
		t.records = make(map[string]record[T])
	}
	if existing, taken := t.records[d.Key()]; taken {
		c := Collision{
			ID:       d.ID(),
			Kept:     existing.descriptor,
			Rejected: d,
			KeptFrom: existing.source,
			From:     source,
		}
		t.collisions = append(t.collisions, c)
		return c, true
	}
	t.records[d.Key()] = record[T]{descriptor: d, payload: payload, source: source}
	return Collision{}, false
}

// Get returns the descriptor and payload registered under id.
func (t *Table[T]) Get(id string) (module.Descriptor, T, bool) {
	r, ok := t.records[module.Fold(id)]
	return r.descriptor, r.payload, ok
}

// Source returns where id was registered from.
func (t *Table[T]) Source(id string) string {
	return t.records[module.Fold(id)].source
}

// Len returns the number of registered modules.
func (t *Table[T]) Len() int { return len(t.records) }

// Collisions returns every rejected registration in the order they
// happened.
func (t *Table[T]) Collisions() []Collision { return slices.Clone(t.collisions) }

// Descriptors returns the registered descriptors sorted by folded id.
func (t *Table[T]) Descriptors() []module.Descriptor {
	out := make([]module.Descriptor, 0, len(t.records))
	for _, k := range slices.Sorted(maps.Keys(t.records)) {
		out = append(out, t.records[k].descriptor)
	}
	return out
}

// Entries returns the table as solver input.
func (t *Table[T]) Entries() map[string]solver.Entry[T] {
	out := make(map[string]solver.Entry[T], len(t.records))
	for k, r := range t.records {
		out[k] = solver.Entry[T]{Descriptor: r.descriptor, Payload: r.payload}
	}
	return out
}
