package pkg_test

import (
	"testing"

	. "github.com/cloudcache/fleetstore/pkg"
	"gotest.tools/assert"
)

func TestMap(t *testing.T) {
	m := Map[string, int]{}
	m.Set("a", 1)

	assert.Assert(t, m.Has("a"))
	assert.Equal(t, m.Get("a"), 1)
	assert.Equal(t, m.Get("b"), 0)

	c := m.Clone()
	c.Set("a", 2)
	assert.Equal(t, m.Get("a"), 1)

	m.Delete("a")
	assert.Assert(t, !m.Has("a"))
}

func TestSet(t *testing.T) {
	s := Set[string]{}
	s.Add("a")
	s.Add("b")

	assert.Assert(t, s.Has("a"))
	assert.Assert(t, s.Remove("a"))
	assert.Assert(t, !s.Remove("a"), "removing twice reports false")

	t.Run("union and intersect", func(t *testing.T) {
		a := Set[int]{1: {}, 2: {}}
		a.Union(Set[int]{3: {}})
		assert.Equal(t, len(a), 3)

		a.Intersect(Set[int]{2: {}, 3: {}})
		assert.Equal(t, len(a), 2)
		assert.Assert(t, !a.Has(1))
	})
}
