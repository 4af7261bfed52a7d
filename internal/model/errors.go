package model

import (
	"errors"
	"fmt"
)

// ErrUnknownEntity marks a record or request naming an entity outside the
// configured set. Match with errors.Is.
var ErrUnknownEntity = errors.New("unknown entity")

// InvariantError describes a violated engine invariant on a specific
// record. The engine never clamps or coerces a bad value; it returns one
// of these instead.
type InvariantError struct {
	Invariant string // short name of the violated rule
	Record    string // offending record, e.g. `customer 12 "ACME"`
	Detail    string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant %s [%s]: %s", e.Invariant, e.Record, e.Detail)
}
