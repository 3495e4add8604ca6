// Package safecall composes circuit breaking, retries, and fallback
// substitution into a single call contract that never panics and always
// returns a usable value.
//
// A Caller is configured with chained setters and then invoked:
//
//	caller := safecall.New[string]("gemini-generate").
//		WithFallback("I'm sorry, I couldn't generate a response.").
//		WithRetry(retry.RateLimitPolicy()).
//		WithBreaker(manager, circuitbreaker.GenerativeAPIConfig())
//
//	answer, err := caller.Call(ctx, func(ctx context.Context) (string, error) {
//		return client.Generate(ctx, prompt)
//	})
//
// The breaker gates entry; if the call is admitted, the retry executor
// governs attempts. Any terminal failure is converted into the fallback
// value paired with a non-nil error, so callers distinguish a genuine result
// from a substituted one by inspecting the error, never by handling a panic.
package safecall
