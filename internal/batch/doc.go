// Package batch drives a feature-extraction run: it asks a metadata store
// for the units to process, extracts a table per unit, pushes each table
// into one open container and records every unit that failed.
//
// A failing unit never stops the run. The failure log is written exactly
// once, at the end, tagged with the run's id.
package batch
