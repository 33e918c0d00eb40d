package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Image describes a stored image in a transport-friendly format.
type Image struct {
	ID           int64           `json:"id"`
	ProjectID    int64           `json:"projectId"`
	OriginalName string          `json:"originalName"`
	Link         string          `json:"link"`
	ExternalLink string          `json:"externalLink,omitempty"`
	LocalPath    string          `json:"localPath,omitempty"`
	CallbackURL  string          `json:"callbackUrl,omitempty"`
	Labeled      bool            `json:"labeled"`
	LabelData    json.RawMessage `json:"labelData,omitempty"`
	LastEdited   string          `json:"lastEdited,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
}

// Stub is the trimmed unlabeled-image row for queue-depth listings.
type Stub struct {
	ID           int64  `json:"id"`
	ExternalLink string `json:"externalLink,omitempty"`
}

// Lease is an allocation grant handed to a labeling client.
type Lease struct {
	ImageID    int64  `json:"imageId"`
	ProjectID  int64  `json:"projectId"`
	LastEdited string `json:"lastEdited"`
}

// CreatedImage describes one successfully imported image.
type CreatedImage struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Link string `json:"link"`
}

// BatchFailure records one failed element of a batch operation.
type BatchFailure struct {
	Index int    `json:"index"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// BatchResult reports per-element outcomes of a batch operation.
type BatchResult struct {
	BatchID string         `json:"batchId"`
	Created []CreatedImage `json:"created"`
	Failed  []BatchFailure `json:"failed,omitempty"`
}

// ProjectSummary aggregates per-project image counts.
type ProjectSummary struct {
	ProjectID int64 `json:"projectId"`
	Total     int   `json:"total"`
	Labeled   int   `json:"labeled"`
	Unlabeled int   `json:"unlabeled"`
	Leased    int   `json:"leased"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid"`
	DatabasePath  string `json:"databasePath"`
	LockFilePath  string `json:"lockFilePath"`
	LeaseTimeout  string `json:"leaseTimeout"`
	UploadsBase   string `json:"uploadsBase"`
	StartedAt     string `json:"startedAt,omitempty"`
	AuthConfigred bool   `json:"authConfigured"`
}

// ImageListResponse wraps a collection of images for API responses.
type ImageListResponse struct {
	Images []Image `json:"images"`
}

// StubListResponse wraps the unlabeled-queue listing.
type StubListResponse struct {
	Stubs []Stub `json:"stubs"`
}

// DeleteResponse reports how many rows a bulk delete removed.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// MoveResponse reports how many rows a project move affected.
type MoveResponse struct {
	Moved int64 `json:"moved"`
}

// AllocateRequest is the allocation request body; ImageID > 0 bypasses the
// scan and hands out that image directly.
type AllocateRequest struct {
	ImageID int64 `json:"imageId,omitempty"`
}

// ImportRequest carries a batch import: bare URLs or entries with provenance.
type ImportRequest struct {
	URLs    []string      `json:"urls,omitempty"`
	Entries []ImportEntry `json:"entries,omitempty"`
}

// ImportEntry is one element of a provenance-carrying batch import.
type ImportEntry struct {
	URL         string `json:"url"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// StubRequest registers an image whose binary already sits on local disk.
type StubRequest struct {
	Filename  string `json:"filename"`
	LocalPath string `json:"localPath"`
}

// LabelRequest carries a label document write.
type LabelRequest struct {
	LabelData json.RawMessage `json:"labelData"`
}

// LabeledRequest flips the completion flag.
type LabeledRequest struct {
	Labeled bool `json:"labeled"`
}

// IDsRequest carries an id set for membership queries and bulk deletes.
type IDsRequest struct {
	IDs []int64 `json:"ids"`
}

// MoveRequest reassigns images from one project to another.
type MoveRequest struct {
	IDs          []int64 `json:"ids"`
	NewProjectID int64   `json:"newProjectId"`
}

// RehomeRequest re-homes existing images with refreshed provenance.
type RehomeRequest struct {
	Entries []RehomeEntry `json:"entries"`
}

// RehomeEntry is one element of a rehome batch.
type RehomeEntry struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
