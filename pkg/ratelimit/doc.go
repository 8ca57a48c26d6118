// Package ratelimit bounds the outbound request rate to the upstream
// statistics API.
//
// The limiter keeps a log of admission timestamps inside a trailing
// window (sliding window log). Wait blocks the caller until one more
// admission fits under the ceiling, then records it and returns. This
// gives a strict bound — at no instant do more than Limit admissions
// fall inside the window — which fixed windows and token buckets do
// not guarantee.
//
// # Basic Usage
//
//	limiter, err := ratelimit.NewSlidingWindow(ratelimit.Config{Limit: 10})
//	if err != nil {
//	    // handle invalid config
//	}
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // context cancelled while waiting
//	}
//	// safe to issue one upstream call
//
// The limiter is safe for concurrent use. Waiters are admitted in
// arrival order at the mutex; no stronger fairness is provided.
package ratelimit
