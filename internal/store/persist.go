package store

import (
	"bytes"
	"encoding/gob"
	"os"
	"time"

	"github.com/pkg/errors"
)

// GobRegisterTypes registers the concrete value types that may appear
// inside row parts. Call once before encoding or decoding snapshots.
func GobRegisterTypes() {
	gob.Register(int(0))
	gob.Register(float64(0.))
	gob.Register(string(""))
	gob.Register(time.Time{})
	gob.Register(bool(false))
	gob.Register([]any{})
	gob.Register(map[string]any{})
}

// WriteToFile snapshots both states of every table into path.
func (m *Model) WriteToFile(path string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m.Dump()); err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "writing snapshot")
	}
	return nil
}

// ReadFromFile merges a snapshot written by WriteToFile into the
// model. Loading into a fresh model reconstructs the dumped state.
func (m *Model) ReadFromFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading snapshot")
	}
	var entries []Entry
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&entries); err != nil {
		return errors.Wrap(err, "decoding snapshot")
	}
	return m.Load(entries)
}
