// Package seed implements the import pipeline that turns six delimited
// commerce sources (products, users, addresses, carts, orders, order line
// items) into a consistent relational snapshot.
//
// Every run is a full replace: all six tables are cleared in reverse
// dependency order, then repopulated entity by entity in dependency order.
// Child rows whose foreign keys do not match an identifier accepted earlier
// in the same run are dropped with a warning. The whole run executes inside
// a single transaction, so a failed run leaves the store untouched.
package seed
