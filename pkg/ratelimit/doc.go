// Package ratelimit provides a fixed-window rate limiter with pluggable
// counter backends and HTTP middleware.
//
// The MFA verification endpoints are the textbook target for online
// code-guessing, and throttling attempts is a transport concern rather than
// part of the verification logic itself, so the limiter is applied as
// middleware in the server wiring:
//
//	store := ratelimit.NewMemoryStore() // or NewRedisStore(client, "")
//	limiter, _ := ratelimit.NewFixedWindow(store, 10, time.Minute)
//
//	r.Use(ratelimit.Middleware(limiter, keyByUser))
//
// The middleware fails open on store errors: a broken Redis must not lock
// every user out of login.
package ratelimit
