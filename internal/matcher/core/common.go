package core

const maxConcurrentAPICalls = 40

// RequestLimiter bounds outbound calls across all concurrently running flows.
var RequestLimiter = make(chan struct{}, maxConcurrentAPICalls)

// RunWithRateLimitedConcurrency executes fn under the limiter, releasing the
// slot exactly once even when fn panics.
func RunWithRateLimitedConcurrency(fn func()) {
	RequestLimiter <- struct{}{}
	defer func() { <-RequestLimiter }()
	fn()
}
