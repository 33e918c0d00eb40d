// Package api defines wire-format types and converters for the HTTP API
// layer. It translates imagestore models into transport-friendly DTOs so the
// daemon handlers and labelctl can share one representation without coupling
// to internal types.
//
// # Key Types
//
// Image: transport representation of a stored image with its label document.
//
// Lease: an allocation grant (image id, project id, lease stamp).
//
// BatchResult: per-element outcome report for imports, rehomes, and bulk
// deletes.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Label documents ride as json.RawMessage to avoid double-encoding. The
// ImageService wraps a narrow Store interface so handler tests can stub
// persistence.
package api
