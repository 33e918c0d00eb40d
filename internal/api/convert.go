package api

import (
	"encoding/json"

	"labeld/internal/imagestore"
)

// FromImage converts a store record to its API representation.
func FromImage(image *imagestore.Image) Image {
	if image == nil {
		return Image{}
	}
	dto := Image{
		ID:           image.ID,
		ProjectID:    image.ProjectID,
		OriginalName: image.OriginalName,
		Link:         image.Link,
		ExternalLink: image.ExternalLink,
		LocalPath:    image.LocalPath,
		CallbackURL:  image.CallbackURL,
		Labeled:      image.Labeled,
	}
	if len(image.LabelData) > 0 {
		if raw, err := json.Marshal(image.LabelData); err == nil {
			dto.LabelData = raw
		}
	}
	if image.Touched() {
		dto.LastEdited = image.LastEdited.UTC().Format(dateTimeFormat)
	}
	if !image.CreatedAt.IsZero() {
		dto.CreatedAt = image.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromImages converts a slice of store records into API DTOs.
func FromImages(images []*imagestore.Image) []Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]Image, 0, len(images))
	for _, image := range images {
		out = append(out, FromImage(image))
	}
	return out
}

// FromStubs converts trimmed unlabeled rows into API DTOs.
func FromStubs(stubs []imagestore.Stub) []Stub {
	if len(stubs) == 0 {
		return nil
	}
	out := make([]Stub, 0, len(stubs))
	for _, stub := range stubs {
		out = append(out, Stub{ID: stub.ID, ExternalLink: stub.ExternalLink})
	}
	return out
}

// FromLease converts an allocation grant into its API representation.
func FromLease(lease *imagestore.Lease) *Lease {
	if lease == nil {
		return nil
	}
	return &Lease{
		ImageID:    lease.ImageID,
		ProjectID:  lease.ProjectID,
		LastEdited: lease.LastEdited.UTC().Format(dateTimeFormat),
	}
}

// FromBatchResult converts a batch outcome report into its API representation.
func FromBatchResult(result imagestore.BatchResult) BatchResult {
	dto := BatchResult{BatchID: result.BatchID, Created: []CreatedImage{}}
	for _, created := range result.Created {
		dto.Created = append(dto.Created, CreatedImage{ID: created.ID, Name: created.Name, Link: created.Link})
	}
	for _, failed := range result.Failed {
		msg := "unknown error"
		if failed.Err != nil {
			msg = failed.Err.Error()
		}
		dto.Failed = append(dto.Failed, BatchFailure{Index: failed.Index, URL: failed.URL, Error: msg})
	}
	return dto
}

// FromSummary converts per-project counts into their API representation.
func FromSummary(projectID int64, summary imagestore.Summary) ProjectSummary {
	return ProjectSummary{
		ProjectID: projectID,
		Total:     summary.Total,
		Labeled:   summary.Labeled,
		Unlabeled: summary.Unlabeled,
		Leased:    summary.Leased,
	}
}

// ToImportEntries converts request entries into store import entries.
func ToImportEntries(entries []ImportEntry) []imagestore.ImportEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]imagestore.ImportEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, imagestore.ImportEntry{URL: entry.URL, CallbackURL: entry.CallbackURL})
	}
	return out
}

// ToRehomeEntries converts request entries into store rehome entries.
func ToRehomeEntries(entries []RehomeEntry) []imagestore.RehomeEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]imagestore.RehomeEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, imagestore.RehomeEntry{ID: entry.ID, URL: entry.URL, CallbackURL: entry.CallbackURL})
	}
	return out
}
