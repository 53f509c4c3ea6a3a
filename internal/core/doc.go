// Package core provides the integration, sampling and sync logic around the
// mapping engine.
//
// This package has no UI dependencies. It can be used by web handlers, the
// CLI, or tests without modification.
//
// # Architecture
//
//   - Store: persistence for integrations, the entity directory and sync
//     history. [PgStore] is the PostgreSQL implementation.
//   - Service: the entry point for every operation. It owns the fetch
//     limiter and the sample cache.
//   - Fetcher: outbound HTTP requests to data sources, with auth, a body
//     limit and BOM stripping.
//
// # Wizard Flow
//
// The mapping wizard walks a user from a source to a saved integration:
//
//  1. [Service.FetchSample] retrieves and decodes a response. Bodies are
//     cached per source so later steps don't refetch.
//  2. [Inspect] lists addressable paths and suggests keyed or positional
//     addressing.
//  3. [Service.Preview] evaluates a draft mapping. Problems in the draft are
//     returned as warnings rather than errors.
//  4. [Service.CreateIntegration] normalizes and validates the mapping
//     before storing it.
//
// # Sync
//
// [Service.StartSyncScheduler] runs due integrations on their interval.
// Each run fetches fresh data, bypassing the sample cache, and is recorded
// in the sync history whether it succeeds or fails.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code prefix for support reference:
//
//   - DOC: the response could not be decoded
//   - SRC: source settings or fetch failures
//   - INT: integrations and entities
//   - MAP: validation failures
//   - DB: database errors
//   - REQ, RATE: request cancelled, too large or rate limited
package core
