package seed

import "fmt"

// FormatError means an entity source could not be parsed at the structural
// level (bad header, inconsistent column counts). Fatal for the run; there
// is no per-row recovery at the reader layer.
type FormatError struct {
	Entity Entity
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: malformed source: %v", e.Entity, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// EmptyResultError means an entity had no accepted rows left after
// filtering. Raised for addresses, carts, orders and order line items;
// products and users may legitimately import zero rows.
type EmptyResultError struct {
	Entity Entity
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: no valid rows to import", e.Entity)
}
