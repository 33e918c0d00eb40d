package api

import (
	"context"
	"encoding/json"
	"fmt"

	"labeld/internal/imagestore"
)

// ImageStore abstracts the persistence interactions the API layer needs.
// *imagestore.Store satisfies it; handler tests may substitute stubs.
type ImageStore interface {
	Allocate(ctx context.Context, projectID, imageID int64) (*imagestore.Lease, error)
	UpdateLabel(ctx context.Context, imageID int64, labelData map[string]any) error
	SetLabeled(ctx context.Context, imageID int64, labeled bool) error
	AddImageURLs(ctx context.Context, projectID int64, urls []string) (imagestore.BatchResult, error)
	AddImageBatch(ctx context.Context, projectID int64, entries []imagestore.ImportEntry) (imagestore.BatchResult, error)
	AddImageStub(ctx context.Context, projectID int64, filename, localPath string) (int64, error)
	Delete(ctx context.Context, imageID int64) (bool, error)
	DeleteByIDs(ctx context.Context, projectID int64, ids []int64) (int64, error)
	MoveToProject(ctx context.Context, ids []int64, newProjectID, oldProjectID int64) (int64, error)
	RehomeImages(ctx context.Context, projectID int64, entries []imagestore.RehomeEntry) (imagestore.BatchResult, error)
	GetByID(ctx context.Context, id int64) (*imagestore.Image, error)
	GetForProject(ctx context.Context, projectID int64) ([]*imagestore.Image, error)
	GetForImport(ctx context.Context, projectID int64, originalName string) (*imagestore.Image, error)
	GetLabeledByProject(ctx context.Context, projectID int64, page, limit int) ([]*imagestore.Image, error)
	GetUnlabeledByProject(ctx context.Context, projectID int64, limit int) ([]imagestore.Stub, error)
	GetAllByIDs(ctx context.Context, projectID int64, ids []int64) ([]*imagestore.Image, error)
	Stats(ctx context.Context, projectID int64) (imagestore.Summary, error)
}

// ImageService exposes image operations returning API DTOs.
type ImageService struct {
	store ImageStore
}

// NewImageService constructs an ImageService around the provided store.
func NewImageService(store ImageStore) *ImageService {
	if store == nil {
		return nil
	}
	return &ImageService{store: store}
}

// Allocate grants a lease; nil means no eligible work.
func (s *ImageService) Allocate(ctx context.Context, projectID, imageID int64) (*Lease, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	lease, err := s.store.Allocate(ctx, projectID, imageID)
	if err != nil {
		return nil, err
	}
	return FromLease(lease), nil
}

// SubmitLabel decodes and persists a label document, renewing the lease.
func (s *ImageService) SubmitLabel(ctx context.Context, imageID int64, raw json.RawMessage) error {
	if s == nil || s.store == nil {
		return nil
	}
	var doc map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("%w: decode label document: %v", imagestore.ErrMalformedPayload, err)
		}
	}
	return s.store.UpdateLabel(ctx, imageID, doc)
}

// SetLabeled flips the completion flag without touching the lease stamp.
func (s *ImageService) SetLabeled(ctx context.Context, imageID int64, labeled bool) error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.SetLabeled(ctx, imageID, labeled)
}

// Import registers a batch of images from URLs or provenance entries.
func (s *ImageService) Import(ctx context.Context, projectID int64, req ImportRequest) (BatchResult, error) {
	if s == nil || s.store == nil {
		return BatchResult{}, nil
	}
	var (
		result imagestore.BatchResult
		err    error
	)
	if len(req.Entries) > 0 {
		result, err = s.store.AddImageBatch(ctx, projectID, ToImportEntries(req.Entries))
	} else {
		result, err = s.store.AddImageURLs(ctx, projectID, req.URLs)
	}
	if err != nil {
		return BatchResult{}, err
	}
	return FromBatchResult(result), nil
}

// RegisterStub records an image already materialized on local disk.
func (s *ImageService) RegisterStub(ctx context.Context, projectID int64, req StubRequest) (*Image, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	id, err := s.store.AddImageStub(ctx, projectID, req.Filename, req.LocalPath)
	if err != nil {
		return nil, err
	}
	image, err := s.store.GetByID(ctx, id)
	if err != nil || image == nil {
		return nil, err
	}
	dto := FromImage(image)
	return &dto, nil
}

// Delete removes a single image; the bool reports whether it existed.
func (s *ImageService) Delete(ctx context.Context, imageID int64) (bool, error) {
	if s == nil || s.store == nil {
		return false, nil
	}
	return s.store.Delete(ctx, imageID)
}

// DeleteByIDs removes the given images, scoped to the project.
func (s *ImageService) DeleteByIDs(ctx context.Context, projectID int64, ids []int64) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.DeleteByIDs(ctx, projectID, ids)
}

// Move reassigns images from one project to another.
func (s *ImageService) Move(ctx context.Context, oldProjectID int64, req MoveRequest) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.MoveToProject(ctx, req.IDs, req.NewProjectID, oldProjectID)
}

// Rehome refreshes provenance on existing images and moves them in.
func (s *ImageService) Rehome(ctx context.Context, projectID int64, req RehomeRequest) (BatchResult, error) {
	if s == nil || s.store == nil {
		return BatchResult{}, nil
	}
	result, err := s.store.RehomeImages(ctx, projectID, ToRehomeEntries(req.Entries))
	if err != nil {
		return BatchResult{}, err
	}
	return FromBatchResult(result), nil
}

// Describe fetches a single image; nil means not found.
func (s *ImageService) Describe(ctx context.Context, imageID int64) (*Image, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	image, err := s.store.GetByID(ctx, imageID)
	if err != nil || image == nil {
		return nil, err
	}
	dto := FromImage(image)
	return &dto, nil
}

// List returns every image in the project.
func (s *ImageService) List(ctx context.Context, projectID int64) ([]Image, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	images, err := s.store.GetForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return FromImages(images), nil
}

// Lookup finds an image by its original name for import reconciliation.
func (s *ImageService) Lookup(ctx context.Context, projectID int64, name string) (*Image, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	image, err := s.store.GetForImport(ctx, projectID, name)
	if err != nil {
		return nil, err
	}
	dto := FromImage(image)
	return &dto, nil
}

// ListLabeled returns a page of completed images, most recently edited first.
func (s *ImageService) ListLabeled(ctx context.Context, projectID int64, page, limit int) ([]Image, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	images, err := s.store.GetLabeledByProject(ctx, projectID, page, limit)
	if err != nil {
		return nil, err
	}
	return FromImages(images), nil
}

// ListUnlabeled returns trimmed rows for the pending queue.
func (s *ImageService) ListUnlabeled(ctx context.Context, projectID int64, limit int) ([]Stub, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stubs, err := s.store.GetUnlabeledByProject(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}
	return FromStubs(stubs), nil
}

// Membership fetches the subset of ids that belong to the project.
func (s *ImageService) Membership(ctx context.Context, projectID int64, ids []int64) ([]Image, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	images, err := s.store.GetAllByIDs(ctx, projectID, ids)
	if err != nil {
		return nil, err
	}
	return FromImages(images), nil
}

// Stats returns per-project counts.
func (s *ImageService) Stats(ctx context.Context, projectID int64) (ProjectSummary, error) {
	if s == nil || s.store == nil {
		return ProjectSummary{}, nil
	}
	summary, err := s.store.Stats(ctx, projectID)
	if err != nil {
		return ProjectSummary{}, err
	}
	return FromSummary(projectID, summary), nil
}
