// Package trace records what the analyzer is doing as a stream of span and
// point events.
//
// Spans nest: the driver opens one span per project run, one per unit and
// one per semantic pass inside a unit. Levels cut the stream by scope:
//
//	off     nothing
//	error   nothing is streamed; a ring tracer still keeps recent events
//	phase   driver and pass spans
//	detail  plus per-unit spans and publish points
//	debug   everything
//
// A Tracer travels in a context.Context (WithTracer / FromContext) together
// with the id of the enclosing span (WithSpanContext / CurrentSpan).
//
// Example:
//
//	balsa check --trace=- --trace-level=detail
//	balsa check --trace=run.ndjson --trace-mode=both
package trace
