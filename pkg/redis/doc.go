// Package redis provides Redis connectivity with startup retries.
//
// In this application Redis is optional: it backs the distributed
// rate-limit store when REDIS_URL is configured, and the server falls back
// to an in-memory store when it is not. Config.Enabled reports which case
// applies.
package redis
