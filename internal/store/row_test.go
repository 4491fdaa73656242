package store_test

import (
	"errors"
	"testing"

	. "github.com/cloudcache/fleetstore/internal/store"
	"gotest.tools/assert"
)

func TestRowGet(t *testing.T) {
	t.Run("desired wins over current", func(t *testing.T) {
		row := NewRow("r1")
		row.Desired = Part{"x": 1}
		row.Current = Part{"x": 2}

		v, err := row.Get("x")
		assert.NilError(t, err)
		assert.Equal(t, v, 1)
	})

	t.Run("falls back to current", func(t *testing.T) {
		row := NewRow("r1")
		row.Desired = Part{"y": 1}
		row.Current = Part{"x": 2}

		v, err := row.Get("x")
		assert.NilError(t, err)
		assert.Equal(t, v, 2)
	})

	t.Run("missing everywhere", func(t *testing.T) {
		row := NewRow("r1")
		row.Current = Part{"x": 2}

		_, err := row.Get("z")
		assert.Assert(t, errors.Is(err, ErrFieldNotFound))
	})

	t.Run("nil parts", func(t *testing.T) {
		row := NewRow("r1")
		_, err := row.Get("x")
		assert.Assert(t, errors.Is(err, ErrFieldNotFound))
	})
}

func TestMakePKey(t *testing.T) {
	assert.Equal(t, MakePKey("a"), PKey("a"))
	assert.Equal(t, MakePKey(42), PKey("42"))
	// json decodes numbers as float64; both spellings must collide
	assert.Equal(t, MakePKey(float64(42)), MakePKey(42))

	t.Run("composite keys are order sensitive", func(t *testing.T) {
		assert.Assert(t, MakePKey("a", "b") != MakePKey("b", "a"))
		assert.Equal(t, MakePKey("a", "b"), MakePKey("a", "b"))
	})
}
