// Package trace records what a lint run is doing: spans around passes
// and files, instant points, and a heartbeat for runs that seem stuck.
//
// Enable it from the command line:
//
//	bugfree lint --trace=- --trace-level=detail src/
//
// Tracers:
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: buffered writer of text or NDJSON lines
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// Levels select scopes: phase emits driver and pass spans, detail and
// debug add per-file spans.
//
// Tracers travel through context, and so does the file being worked on:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartFile(ctx, "check", "src/App.php")
//	defer span.End("")
//	trace.Note(ctx, trace.ScopeFile, "cache write failed", err.Error())
//
// The heartbeat names the oldest open file span, which is usually the
// file a hung run is stuck on.
package trace
