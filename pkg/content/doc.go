// ABOUTME: Content resolution package
// ABOUTME: Fetches content-addressed audio, decodes it and caches the result
// Package content turns content identifiers into playable decoded audio.
//
// A Store fetches raw container bytes by identifier. The Resolver sits on top
// of a Store: it checks its cache, fetches on a miss, decodes the container,
// checks the sample rate against the session and caches the shared buffer for
// the lifetime of the process. Concurrent resolves of the same identifier
// share one fetch.
//
// Identifiers that look like a SHA-256 hex digest are verified against the
// fetched bytes.
//
// The cache never evicts. The working set of a session is small compared to
// memory, so this is a known limitation rather than a leak.
package content
