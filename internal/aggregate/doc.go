// Package aggregate implements the filter engine over the long-form
// observation table: filtered views, grouped totals, year-over-year growth
// and two-dimensional pivots.
//
// Filtering is AND across the year, region and energy-type dimensions and
// membership within each; an empty set means no constraint. Every exposed
// ordering is sorted (year, then region code, then energy type) so identical
// inputs produce bit-identical output.
//
// The engine keeps a single explicit cache keyed by the canonical filter-spec
// string. A new engine is built per dataset snapshot, so reload naturally
// evicts every cached view.
package aggregate
