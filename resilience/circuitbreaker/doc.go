// Package circuitbreaker provides per-operation circuit breaker management
// and health-check-driven recovery helpers.
//
// Use NewManager to create and manage one breaker per upstream operation
// category, then run calls through Manager.Execute so failures are tracked
// consistently across callers. A breaker that has tripped rejects calls with
// an OpenError until its reset timeout elapses, after which a limited number
// of probe calls decide whether it closes again.
//
// Optional health-check integration can reset breakers automatically once a
// downstream dependency recovers, and a metrics listener can export state
// transitions through OpenTelemetry.
package circuitbreaker
