// Package store persists [frame.Series] and [frame.Table] values in an
// HDF5 container.
//
// Each logical key maps to a group holding co-located datasets:
//
//	<key>/index    row labels (1-D strings, or 2-D labels x levels)
//	<key>/columns  column labels, tables only
//	<key>/data     values, text by default
//	<key>/dtype    declared element type, series only
//
// Label datasets carry label_kind ("flat" or "composite") and width
// attributes; data carries encoding ("text" or "typed") and, for tables,
// dtype. Containers written without these tags still read back, with the
// label kind inferred from the dataset rank and series values defaulting
// to int64.
//
// A [Store] opens and closes the container around every call unless the
// call supplies a [Handle] with [WithHandle]; a supplied handle is never
// opened or closed by the store.
package store
