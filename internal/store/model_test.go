package store_test

import (
	"errors"
	"testing"

	. "github.com/cloudcache/fleetstore/internal/store"
	"gotest.tools/assert"
)

func TestModelWiring(t *testing.T) {
	m := NewModel()

	assert.Assert(t, m.Has("host"))
	assert.Assert(t, m.Has("host_disk"))
	assert.Assert(t, !m.Has("nonsense"))
	assert.Equal(t, len(m.Names()), 30)

	t.Run("fleet schema join scenario", func(t *testing.T) {
		disk := mustTable(t, m, "disk")
		hd := mustTable(t, m, "host_disk")

		disk.UpdateRow("d1", StateDesired, Part{"id": "d1"})
		hd.UpdateRow(MakePKey("h1", "d1"), StateDesired, Part{"host": "h1", "disk": "d1"})

		rows := disk.List(map[string]any{"host": "h1"})
		assert.Equal(t, len(rows), 1)
		assert.Equal(t, rows[0].Pkey, PKey("d1"))
	})
}

func TestModelApply(t *testing.T) {
	m := testModel()

	err := m.Apply("disk", "d1", StateCurrent, Part{"id": "d1"})
	assert.NilError(t, err)
	assert.Assert(t, mustTable(t, m, "disk").Has("d1"))

	err = m.Apply("nonsense", "d1", StateCurrent, Part{})
	assert.Assert(t, errors.Is(err, ErrTableNotFound))
}

func seedModel(m *Model) {
	host := m.MustTable("host")
	disk := m.MustTable("disk")
	hd := m.MustTable("host_disk")

	host.UpdateRow("h1", StateDesired, Part{"uuid": "h1", "name": "alpha"})
	host.UpdateRow("h1", StateCurrent, Part{"uuid": "h1", "state": "online"})
	disk.UpdateRow("d1", StateDesired, Part{"id": "d1", "raid": "r1"})
	disk.UpdateRow("d2", StateCurrent, Part{"id": "d2", "raid": "r1"})
	hd.UpdateRow(MakePKey("h1", "d1"), StateDesired, Part{"host": "h1", "disk": "d1"})
}

func TestDumpLoadRoundTrip(t *testing.T) {
	m := testModel()
	seedModel(m)

	dump := m.Dump()

	fresh := testModel()
	assert.NilError(t, fresh.Load(dump))
	assert.DeepEqual(t, fresh.Dump(), dump)

	t.Run("indexes rebuilt through load", func(t *testing.T) {
		disk := mustTable(t, fresh, "disk")
		assert.Equal(t, len(disk.List(map[string]any{"raid": "r1"})), 2)
		assert.Equal(t, len(disk.List(map[string]any{"host": "h1"})), 1)
	})
}

func TestDumpIsIdempotent(t *testing.T) {
	m := testModel()
	seedModel(m)

	assert.DeepEqual(t, m.Dump(), m.Dump())
}

func TestDumpSelectsStates(t *testing.T) {
	m := testModel()
	seedModel(m)

	for _, e := range m.Dump(StateDesired) {
		assert.Equal(t, e.State, StateDesired)
	}

	desired := len(m.Dump(StateDesired))
	current := len(m.Dump(StateCurrent))
	assert.Equal(t, desired+current, len(m.Dump()))
}

func TestLoadMerges(t *testing.T) {
	m := testModel()
	seedModel(m)

	other := testModel()
	other.MustTable("host").UpdateRow("h1", StateDesired, Part{"extra": true})
	other.MustTable("host").UpdateRow("h9", StateCurrent, Part{"uuid": "h9"})

	assert.NilError(t, other.Load(m.Dump()))

	host := mustTable(t, other, "host")
	row, err := host.Get("h1")
	assert.NilError(t, err)
	// merged, not replaced
	assert.Equal(t, row.Desired.Get("extra"), true)
	assert.Equal(t, row.Desired.Get("name"), "alpha")
	assert.Assert(t, host.Has("h9"))
}

func TestLoadUnknownTable(t *testing.T) {
	m := testModel()
	err := m.Load([]Entry{{Table: "nonsense", Pkey: "x", State: StateDesired, Part: Part{}}})
	assert.Assert(t, errors.Is(err, ErrTableNotFound))
}
