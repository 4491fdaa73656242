package store

import (
	"fmt"

	"github.com/pkg/errors"
	sorted "github.com/tobshub/go-sortedmap"

	"github.com/cloudcache/fleetstore/pkg"
)

// NMSpec declares a join index fed by a relation table: Local names
// the relation column holding this table's primary key, Remote the
// column the index is keyed by.
type NMSpec struct {
	Local  string
	Remote string
}

// TableSpec is the static declaration a table is built from. An empty
// Pkey defaults to the single column "uuid".
type TableSpec struct {
	Name      string
	Virtual   bool
	Pkey      []string
	Indexes   []string
	NMIndexes map[string]NMSpec
}

// UpdateHook observes a row transition on a table. Before-hooks see
// the pre-patch row and must not assume index consistency; after-hooks
// see the settled result.
type UpdateHook func(*Table, *Row)

// value -> member set, one bucket map per state
type indexBuckets map[State]pkg.Map[string, pkg.Set[PKey]]

func newIndexBuckets() indexBuckets {
	return indexBuckets{
		StateDesired: pkg.Map[string, pkg.Set[PKey]]{},
		StateCurrent: pkg.Map[string, pkg.Set[PKey]]{},
	}
}

// Table owns rows keyed by primary key plus the indexes derived from
// them. It has no locking of its own: the model is built for a single
// logical writer and callers serialize access outside the store.
type Table struct {
	Name       string
	Virtual    bool
	PkeyFields []string
	Indexes    []string
	NMIndexes  map[string]NMSpec

	rows *sorted.SortedMap[PKey, *Row]
	// field -> state -> value -> row pkeys
	index pkg.Map[string, indexBuckets]
	// remote field -> state -> value -> local pkeys
	nmIndex pkg.Map[string, indexBuckets]

	before_update []UpdateHook
	after_update  []UpdateHook
}

func rowOrder(a, b *Row) bool { return a.Pkey < b.Pkey }

func NewTable(spec TableSpec) *Table {
	pkey := spec.Pkey
	if len(pkey) == 0 {
		pkey = []string{"uuid"}
	}

	t := &Table{
		Name:       spec.Name,
		Virtual:    spec.Virtual,
		PkeyFields: pkey,
		Indexes:    spec.Indexes,
		NMIndexes:  spec.NMIndexes,
		rows:       sorted.New[PKey, *Row](0, rowOrder),
		index:      pkg.Map[string, indexBuckets]{},
		nmIndex:    pkg.Map[string, indexBuckets]{},
	}
	for _, field := range spec.Indexes {
		t.index.Set(field, newIndexBuckets())
	}
	for _, nm := range spec.NMIndexes {
		t.nmIndex.Set(nm.Remote, newIndexBuckets())
	}
	return t
}

// PrimaryKey projects the table's key definition out of a row part.
// A part that cannot identify its row is a caller bug and panics.
func (t *Table) PrimaryKey(part Part) PKey {
	vals := make([]any, len(t.PkeyFields))
	for i, field := range t.PkeyFields {
		v, ok := part[field]
		if !ok {
			panic(fmt.Sprintf("store: table %s: part missing primary key field %q", t.Name, field))
		}
		vals[i] = v
	}
	return MakePKey(vals...)
}

func (t *Table) OnBeforeRowUpdate(hook UpdateHook) {
	t.before_update = append(t.before_update, hook)
}

func (t *Table) OnAfterRowUpdate(hook UpdateHook) {
	t.after_update = append(t.after_update, hook)
}

// AddWatches subscribes the table's join-index maintenance hooks to
// every relation table it declares. Called once by the model.
func (t *Table) AddWatches(m *Model) {
	for rel := range t.NMIndexes {
		watched := m.tables.Get(rel)
		if watched == nil {
			panic(fmt.Sprintf("store: table %s: unknown relation table %q", t.Name, rel))
		}
		watched.OnBeforeRowUpdate(t.nmUnindexRow)
		watched.OnAfterRowUpdate(t.nmIndexRow)
	}
}

// UpdateRow patches one state part of a row, creating the row on
// first contact and dropping it when both parts are gone. A nil part
// clears the named state. Hooks fire around the patch so watchers see
// both the old and the new contents.
func (t *Table) UpdateRow(pkey PKey, state State, part Part) {
	row, exists := t.rows.Get(pkey)
	if exists {
		row.Unindex(t)
	} else {
		row = NewRow(pkey)
		if !t.rows.Insert(pkey, row) {
			panic(fmt.Sprintf("store: table %s: duplicate insert of %s", t.Name, pkey))
		}
	}

	for _, hook := range t.before_update {
		hook(t, row)
	}

	if part == nil {
		row.setPart(state, nil)
	} else if existing := row.Part(state); existing == nil {
		row.setPart(state, part.Clone())
	} else {
		for field, v := range part {
			existing[field] = v
		}
	}

	if row.Desired == nil && row.Current == nil {
		t.rows.Delete(pkey)
	} else {
		row.Index(t)
	}

	for _, hook := range t.after_update {
		hook(t, row)
	}
}

// nmUnindexRow drops the relation row's pre-patch contribution from
// the join index. Registered as a before-hook on the relation table.
func (t *Table) nmUnindexRow(rel *Table, row *Row) {
	spec := t.NMIndexes[rel.Name]

	for _, state := range States {
		part := row.Part(state)
		if part == nil {
			continue
		}
		local, lok := part[spec.Local]
		remote, rok := part[spec.Remote]
		if !lok || !rok {
			continue
		}
		buckets := t.nmIndex.Get(spec.Remote)[state]
		key := formatValue(remote)
		members := buckets.Get(key)
		if members == nil || !members.Remove(MakePKey(local)) {
			panic(fmt.Sprintf("store: table %s: %v not in join index %s/%s=%s",
				t.Name, local, spec.Remote, state, key))
		}
		if len(members) == 0 {
			buckets.Delete(key)
		}
	}
}

// nmIndexRow inserts the relation row's post-patch contribution.
// Registered as an after-hook on the relation table.
func (t *Table) nmIndexRow(rel *Table, row *Row) {
	spec := t.NMIndexes[rel.Name]

	for _, state := range States {
		part := row.Part(state)
		if part == nil {
			continue
		}
		local, lok := part[spec.Local]
		remote, rok := part[spec.Remote]
		if !lok || !rok {
			continue
		}
		buckets := t.nmIndex.Get(spec.Remote)[state]
		key := formatValue(remote)
		members := buckets.Get(key)
		if members == nil {
			members = pkg.Set[PKey]{}
			buckets.Set(key, members)
		}
		members.Add(MakePKey(local))
	}
}

// IndexMembers returns the pkeys indexed under field=value in the
// given state, nil when no such bucket exists.
func (t *Table) IndexMembers(field string, state State, value any) pkg.Set[PKey] {
	buckets := t.index.Get(field)
	if buckets == nil {
		return nil
	}
	return buckets[state].Get(formatValue(value))
}

// JoinMembers is IndexMembers for the join index: the local pkeys
// related to remote field=value in the given state.
func (t *Table) JoinMembers(field string, state State, value any) pkg.Set[PKey] {
	buckets := t.nmIndex.Get(field)
	if buckets == nil {
		return nil
	}
	return buckets[state].Get(formatValue(value))
}

func (t *Table) Get(pkey PKey) (*Row, error) {
	row, ok := t.rows.Get(pkey)
	if !ok {
		return nil, errors.Wrapf(ErrRowNotFound, "%s[%s]", t.Name, pkey)
	}
	return row, nil
}

func (t *Table) Has(pkey PKey) bool {
	return t.rows.Has(pkey)
}

func (t *Table) Len() int {
	return t.rows.Len()
}

// Rows returns every row in primary key order.
func (t *Table) Rows() []*Row {
	out := make([]*Row, 0, t.rows.Len())
	iter, err := t.rows.IterCh()
	if err != nil {
		// empty table
		return out
	}
	for rec := range iter.Records() {
		out = append(out, rec.Val)
	}
	return out
}

// List returns rows whose indexed columns match all given criteria.
// A criterion matches when either state satisfies it; criteria on
// columns that are not indexed (self or join) are ignored, which
// callers rely on when probing several possible filter fields. No
// recognized criteria means every row.
func (t *Table) List(criteria map[string]any) []*Row {
	// nil means all rows, sparing a redundant index of every pkey
	var selection pkg.Set[PKey]

	for field, want := range criteria {
		if !t.index.Has(field) && !t.nmIndex.Has(field) {
			continue
		}

		sub := pkg.Set[PKey]{}
		key := formatValue(want)
		for _, idx := range []pkg.Map[string, indexBuckets]{t.index, t.nmIndex} {
			buckets, ok := idx[field]
			if !ok {
				continue
			}
			for _, state := range States {
				if members := buckets[state].Get(key); members != nil {
					sub.Union(members)
				}
			}
		}

		if selection == nil {
			selection = sub
		} else {
			selection.Intersect(sub)
		}
	}

	if selection == nil {
		return t.Rows()
	}

	out := make([]*Row, 0, len(selection))
	for pkey := range selection {
		if row, ok := t.rows.Get(pkey); ok {
			out = append(out, row)
		}
	}
	return out
}
