// Package trace records where a docgap run spends its time: spawning clippy,
// decoding its stream, aggregating entries and rendering the report. It is
// the structured log of the tool; the report itself never depends on it.
//
// Tracing is off unless --trace names an output:
//
//	docgap --trace=- --trace-level=phase
//	docgap --trace=run.ndjson --trace-level=debug
//
// Each Level lets through the scopes up to a bound: error shows driver
// events, phase adds cargo/decode/aggregate/render, detail adds per-file
// events and debug adds every diagnostic node.
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartSpan(ctx, trace.ScopePhase, "aggregate")
//	defer span.End("")
//
// Code that is handed a Tracer directly uses Begin and Point.
package trace
