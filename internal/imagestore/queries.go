package imagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// GetByID fetches an image by identifier. A missing id yields (nil, nil); a
// label payload that no longer parses yields ErrMalformedPayload.
func (s *Store) GetByID(ctx context.Context, id int64) (*Image, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	image, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			return nil, err
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return image, nil
}

// GetForProject returns every image in a project with parsed label payloads.
func (s *Store) GetForProject(ctx context.Context, projectID int64) ([]*Image, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+imageColumns+` FROM images WHERE projects_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query project images: %w", err)
	}
	defer rows.Close()

	var images []*Image
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

// GetForImport looks up an image by project and original name for import
// reconciliation. This is the one read path where absence is a failure: the
// caller is reconciling against a source it expects to exist, so a missing
// record surfaces as ErrNotFound rather than an empty result.
func (s *Store) GetForImport(ctx context.Context, projectID int64, originalName string) (*Image, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM images WHERE projects_id = ? AND original_name = ?`,
		projectID, originalName,
	)
	image, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no image named %q in project %d", ErrNotFound, originalName, projectID)
	}
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			return nil, err
		}
		return nil, fmt.Errorf("get image for import: %w", err)
	}
	return image, nil
}

// GetLabeledByProject returns one page of completed images, most recently
// edited first. Rows whose label payload fails to parse are skipped and
// logged instead of failing the page; the data fault belongs to one record,
// not to the listing.
func (s *Store) GetLabeledByProject(ctx context.Context, projectID int64, page, limit int) ([]*Image, error) {
	if limit <= 0 {
		return nil, nil
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM images
         WHERE projects_id = ? AND labeled = 1
         ORDER BY last_edited DESC
         LIMIT ? OFFSET ?`,
		projectID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query labeled images: %w", err)
	}
	defer rows.Close()

	images := make([]*Image, 0, limit)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			if errors.Is(err, ErrMalformedPayload) {
				s.logger.Warn("skipping image with malformed label payload",
					slog.Int64("project_id", projectID),
					slog.Int64("image_id", image.ID),
				)
				continue
			}
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

// GetUnlabeledByProject returns up to limit unlabeled image stubs, newest
// first, for queue-depth and preview purposes.
func (s *Store) GetUnlabeledByProject(ctx context.Context, projectID int64, limit int) ([]Stub, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_link FROM images
         WHERE projects_id = ? AND labeled = 0
         ORDER BY id DESC
         LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query unlabeled images: %w", err)
	}
	defer rows.Close()

	var stubs []Stub
	for rows.Next() {
		var stub Stub
		var externalLink sql.NullString
		if err := rows.Scan(&stub.ID, &externalLink); err != nil {
			return nil, err
		}
		stub.ExternalLink = externalLink.String
		stubs = append(stubs, stub)
	}
	return stubs, rows.Err()
}

// GetAllByIDs fetches the subset of the given ids that belong to a project.
func (s *Store) GetAllByIDs(ctx context.Context, projectID int64, ids []int64) ([]*Image, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + imageColumns + ` FROM images
        WHERE projects_id = ? AND id IN (` + makePlaceholders(len(ids)) + `)`
	args := append([]any{projectID}, idArgs(ids)...)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query images by ids: %w", err)
	}
	defer rows.Close()

	var images []*Image
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

// Stats aggregates per-project image counts for status output.
func (s *Store) Stats(ctx context.Context, projectID int64) (Summary, error) {
	cutoff := s.now().Add(-s.leaseTimeout).UnixMilli()
	row := s.db.QueryRowContext(ctx,
		`SELECT
            COUNT(1),
            COALESCE(SUM(labeled), 0),
            COALESCE(SUM(CASE WHEN labeled = 0 AND last_edited >= ? THEN 1 ELSE 0 END), 0)
         FROM images WHERE projects_id = ?`,
		cutoff, projectID,
	)

	var summary Summary
	if err := row.Scan(&summary.Total, &summary.Labeled, &summary.Leased); err != nil {
		return Summary{}, fmt.Errorf("project stats: %w", err)
	}
	summary.Unlabeled = summary.Total - summary.Labeled
	return summary, nil
}
