// Package diag holds the diagnostic model shared by every analysis phase.
//
// Phases never return language errors as Go errors. They emit through a
// Reporter, usually a BagReporter bound to the Bag of the unit being
// analyzed, and keep going. Builders (ReportError and friends) let a phase
// attach notes such as "previous declaration here" before emitting.
//
// Codes are grouped by range: 1xxx lexer, 2xxx parser, 3xxx semantic
// analysis and 4xxx project graph. Code.ID gives the stable short form used
// in CLI output and caches.
package diag
