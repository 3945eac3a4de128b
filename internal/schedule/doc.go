// Package schedule expands recurring show rules into the concrete,
// date-ordered list of airings a batch run processes.
//
// Expansion is a pure function of the rules and the resume cutoff, so
// re-running it always yields the same plan. The cutoff drops airings
// before a given date and is how interrupted batches resume.
package schedule
