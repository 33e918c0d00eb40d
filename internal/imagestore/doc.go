// Package imagestore persists labeling images in SQLite and owns the
// allocation lease lifecycle.
//
// The Store manages database connections, schema migration, the allocation
// scan that hands unlabeled images to labelers, label writes, image lifecycle
// mutations (import, delete, project moves), and the read accessors feeding
// the API. The lease is a data convention, not a lock: an allocated image is
// simply one whose last_edited stamp is younger than the lease window, so a
// labeler that disconnects releases its claim by doing nothing.
//
// Treat this package as the single source of truth for image semantics; when
// you add columns, update migrations/ and keep scanImage in sync.
package imagestore
