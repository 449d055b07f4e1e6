// Package ratelimit implements a process-local fixed-window counter.
//
// Each distinct key owns one bucket. The limiter is best-effort by design:
// state lives in memory only and is rebuilt from zero on restart. It never
// blocks and performs no I/O, so it is safe to call on hot paths.
package ratelimit
