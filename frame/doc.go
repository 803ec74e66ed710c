// Package frame holds labeled data in memory: a [Series] is a typed value
// sequence with an [Index] of row labels, and a [Table] is a matrix of
// cells addressed by row and column labels.
//
// A [Label] is either flat (one string) or composite (a fixed-width tuple
// of strings, i.e. a multi-level label). Every label of an Index has the
// same kind and width.
//
// Values are plain Go values (int64, float64, bool, time.Time, string or
// nil). [FormatValue] renders them as the text numpy produces for
// astype(str), which is how they are persisted, and [ParseValue] reads that
// text back as a declared [DType].
package frame
