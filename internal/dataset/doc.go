// Package dataset implements the data-shaping pipeline for the annual regional
// renewable-energy production CSV published on data.gouv.fr.
//
// # Architecture
//
// The pipeline runs in three stages, each a pure function over the previous
// stage's output:
//
// 1. Loader: reads the semicolon-delimited UTF-8 source file into raw rows
// 2. Cleaner: applies the missing-value policy and enforces dataset invariants
// 3. Transformer: converts GWh to MWh and melts the wide table into long form
//
// A Store owns the resulting Snapshot for the process lifetime and swaps it
// atomically on reload, so a request always sees a single consistent dataset.
//
// # Data Flow
//
//	CSV File → Loader → []WideRow → Cleaner → []WideRow → Transformer → []Observation
//
// # Error Handling
//
// Loader, cleaner and transformer return *errors.AppError values typed LOAD,
// FORMAT, SCHEMA or VALIDATION; all four abort startup. Row and column context
// is attached for diagnostics. The cleaner is the only place invariants are
// enforced; downstream components assume a clean table.
package dataset
