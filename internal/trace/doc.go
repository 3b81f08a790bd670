// Package trace records what the generator is doing so slow or failing runs
// can be diagnosed after the fact.
//
// # Usage
//
//	dispatchgen generate --trace=- --trace-level=phase --dir out gl.xml
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump when generation fails
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Events carry a Scope; the Level decides which scopes are kept:
//
//   - LevelPhase keeps ScopeRun and ScopeDocument
//   - LevelDetail adds ScopePhase (load, build, emit, write)
//   - LevelDebug adds ScopeFunction
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "emit", parentID)
//	defer span.End("")
package trace
