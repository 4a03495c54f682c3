// Package session holds the authoritative copy of the signed-in therapist's
// session and mirrors it to durable storage.
//
// # Overview
//
// A Store owns four fields: the access token, the refresh token, the user
// profile and the derived logged-in flag. Every mutation is applied under a
// write lock, serialized as JSON and written to a single slot of a Persister
// under the fixed key types.StorageKey before the lock is released, so the
// persisted copy never lags behind a reader's view.
//
//	Gateway / services:            Consumers:
//	┌──────────────────┐          ┌─────────────────┐
//	│ SetToken()       │          │ Snapshot()      │
//	│ SetUserData()    │──lock───→│ Subscribe(fn)   │
//	│ Logout()         │          │                 │
//	│   ↓ persist      │          │                 │
//	└──────────────────┘          └─────────────────┘
//
// # Restart
//
// New reads the slot once. A missing slot yields the empty session. A slot
// that cannot be decoded is logged and also yields the empty session; the
// error never reaches the caller.
//
// # Logout
//
// Logout resets all four fields in one write, so no reader can observe a
// cleared token next to a populated profile. Calling it twice is the same as
// calling it once.
//
// # Testing Considerations
//
// The zero Store is usable and keeps state in memory only. MemoryPersister
// gives tests a durable slot without touching the filesystem.
package session
