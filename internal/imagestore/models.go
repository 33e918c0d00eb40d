package imagestore

import (
	"time"
)

// LinkStub is the placeholder stored in an image's link column until the
// binary is materialized and the final storage path is computed.
const LinkStub = "stub"

// Image is the sole entity the store manages.
type Image struct {
	ID           int64
	ProjectID    int64
	OriginalName string
	Link         string
	ExternalLink string
	LocalPath    string
	CallbackURL  string
	Labeled      bool
	LabelData    map[string]any
	LastEdited   time.Time
	CreatedAt    time.Time
}

// Touched reports whether the image has ever been allocated or labeled.
func (i Image) Touched() bool {
	return !i.LastEdited.IsZero()
}

// Stub is the trimmed listing row for unlabeled images, enough for queue-depth
// and preview displays.
type Stub struct {
	ID           int64
	ExternalLink string
}

// Lease is an allocation grant: the image now reserved for the requester and
// the stamp that reserves it. Ownership is anonymous; the grant expires when
// the stamp ages past the lease window.
type Lease struct {
	ImageID    int64
	ProjectID  int64
	LastEdited time.Time
}

// ImportEntry is one element of a batch import carrying provenance beyond a
// bare URL.
type ImportEntry struct {
	URL         string
	CallbackURL string
}

// RehomeEntry re-homes an existing image onto a new project with refreshed
// provenance.
type RehomeEntry struct {
	ID          int64
	URL         string
	CallbackURL string
}

// CreatedImage describes a single successfully imported image.
type CreatedImage struct {
	ID   int64
	Name string
	Link string
}

// BatchError records one failed element of a batch operation.
type BatchError struct {
	Index int
	URL   string
	Err   error
}

// BatchResult reports per-element outcomes of a batch operation. Batches are
// best-effort: failed elements never roll back their siblings.
type BatchResult struct {
	BatchID string
	Created []CreatedImage
	Failed  []BatchError
}

// Summary aggregates per-project image counts for status output. Leased
// counts unlabeled images whose last touch is still inside the lease window.
type Summary struct {
	Total     int
	Labeled   int
	Unlabeled int
	Leased    int
}
