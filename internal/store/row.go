package store

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/cloudcache/fleetstore/pkg"
)

// State selects one of the two row parts.
type State string

const (
	StateDesired State = "desired"
	StateCurrent State = "current"
)

// States lists both state tags in precedence order.
var States = [2]State{StateDesired, StateCurrent}

// Part is one state part of a row: an open field -> value mapping.
// Unknown fields are carried as-is.
type Part = pkg.Map[string, any]

// PKey identifies a row within its table. Composite keys are encoded
// into a single ordered scalar so they remain usable as map keys and
// survive dump/load round-trips unchanged.
type PKey string

const pkeySep = "\x1f"

func MakePKey(parts ...any) PKey {
	if len(parts) == 1 {
		return PKey(formatValue(parts[0]))
	}
	enc := make([]string, len(parts))
	for i, p := range parts {
		enc[i] = formatValue(p)
	}
	return PKey(strings.Join(enc, pkeySep))
}

func formatValue(v any) string {
	return fmt.Sprintf("%v", v)
}

// Row holds the desired and current parts for one primary key. A row
// exists in its table exactly as long as at least one part is non-nil.
type Row struct {
	Pkey    PKey `json:"pkey"`
	Desired Part `json:"desired"`
	Current Part `json:"current"`
}

func NewRow(pkey PKey) *Row {
	return &Row{Pkey: pkey}
}

func (r *Row) Part(state State) Part {
	switch state {
	case StateDesired:
		return r.Desired
	case StateCurrent:
		return r.Current
	}
	panic(fmt.Sprintf("store: unknown state tag %q", state))
}

func (r *Row) setPart(state State, part Part) {
	switch state {
	case StateDesired:
		r.Desired = part
	case StateCurrent:
		r.Current = part
	default:
		panic(fmt.Sprintf("store: unknown state tag %q", state))
	}
}

// Get returns the field from either part, desired first.
func (r *Row) Get(field string) (any, error) {
	if r.Desired != nil && r.Desired.Has(field) {
		return r.Desired.Get(field), nil
	}
	if r.Current != nil && r.Current.Has(field) {
		return r.Current.Get(field), nil
	}
	return nil, errors.Wrapf(ErrFieldNotFound, "field %q in row %s", field, r.Pkey)
}

// Index adds the row's contributions to the table's own indexes.
func (r *Row) Index(t *Table) {
	for _, state := range States {
		part := r.Part(state)
		if part == nil {
			continue
		}
		for _, field := range t.Indexes {
			v, ok := part[field]
			if !ok {
				continue
			}
			buckets := t.index.Get(field)[state]
			key := formatValue(v)
			members := buckets.Get(key)
			if members == nil {
				members = pkg.Set[PKey]{}
				buckets.Set(key, members)
			}
			members.Add(r.Pkey)
		}
	}
}

// Unindex removes the row's contributions from the table's own
// indexes. Removing a contribution that is not there means index
// maintenance has gone wrong somewhere, so it panics rather than
// letting queries silently rot.
func (r *Row) Unindex(t *Table) {
	for _, state := range States {
		part := r.Part(state)
		if part == nil {
			continue
		}
		for _, field := range t.Indexes {
			v, ok := part[field]
			if !ok {
				continue
			}
			buckets := t.index.Get(field)[state]
			key := formatValue(v)
			members := buckets.Get(key)
			if members == nil || !members.Remove(r.Pkey) {
				panic(fmt.Sprintf("store: table %s: row %s not indexed under %s/%s=%s",
					t.Name, r.Pkey, field, state, key))
			}
			if len(members) == 0 {
				buckets.Delete(key)
			}
		}
	}
}
