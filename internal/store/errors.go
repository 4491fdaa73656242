package store

import "github.com/pkg/errors"

// Recoverable lookup failures. Everything else that can go wrong in
// here (bad composite key arity, index corruption) is a programming
// error and panics instead.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrRowNotFound   = errors.New("row not found")
	ErrFieldNotFound = errors.New("field not found")
)
