package store

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/cloudcache/fleetstore/pkg"
)

// Model is the fixed registry of tables. The table set is static
// after construction; table contents are fully dynamic.
type Model struct {
	tables pkg.Map[string, *Table]
}

// NewModel builds the model from the fleet schema declarations.
func NewModel() *Model {
	return BuildModel(TableSpecs)
}

// BuildModel constructs tables from the given specs and wires the
// join-index watches between them. Specs are trusted configuration;
// a duplicate or dangling declaration panics.
func BuildModel(specs []TableSpec) *Model {
	m := &Model{tables: pkg.Map[string, *Table]{}}

	for _, spec := range specs {
		if m.tables.Has(spec.Name) {
			panic(fmt.Sprintf("store: duplicate table %q", spec.Name))
		}
		m.tables.Set(spec.Name, NewTable(spec))
	}

	// Let tables watch the relation tables their join indexes feed on.
	for _, table := range m.tables {
		table.AddWatches(m)
	}

	return m
}

func (m *Model) Table(name string) (*Table, error) {
	table := m.tables.Get(name)
	if table == nil {
		return nil, errors.Wrap(ErrTableNotFound, name)
	}
	return table, nil
}

// MustTable is Table for statically known names; an unknown name is a
// wiring bug and panics.
func (m *Model) MustTable(name string) *Table {
	table := m.tables.Get(name)
	if table == nil {
		panic(fmt.Sprintf("store: unknown table %q", name))
	}
	return table
}

func (m *Model) Has(name string) bool {
	return m.tables.Has(name)
}

// Names returns all table names, sorted.
func (m *Model) Names() []string {
	names := m.tables.Keys()
	sort.Strings(names)
	return names
}

// Apply patches one row part in the named table.
func (m *Model) Apply(table string, pkey PKey, state State, part Part) error {
	t, err := m.Table(table)
	if err != nil {
		return err
	}
	t.UpdateRow(pkey, state, part)
	return nil
}

// Entry is one dumped row part. A sequence of entries doubles as a
// snapshot and as a patch stream: loading into an empty model rebuilds
// it, loading into a live one merges.
type Entry struct {
	Table string `json:"table"`
	Pkey  PKey   `json:"pkey"`
	State State  `json:"state"`
	Part  Part   `json:"part"`
}

// Dump emits every present row part for the requested states, both
// when none are given. Callers must treat the output as a set.
func (m *Model) Dump(states ...State) []Entry {
	if len(states) == 0 {
		states = States[:]
	}

	out := []Entry{}
	for _, name := range m.Names() {
		table := m.tables.Get(name)
		for _, row := range table.Rows() {
			for _, state := range states {
				if part := row.Part(state); part != nil {
					out = append(out, Entry{name, row.Pkey, state, part})
				}
			}
		}
	}
	return out
}

// Load replays dumped entries through the ordinary row update path.
func (m *Model) Load(entries []Entry) error {
	for _, e := range entries {
		table, err := m.Table(e.Table)
		if err != nil {
			return err
		}
		table.UpdateRow(e.Pkey, e.State, e.Part)
	}
	return nil
}
