package imagestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"labeld/internal/naming"
)

// AddImageURLs imports a batch of remote images by URL. Each element is
// processed independently: the record is inserted with the stub link, then
// patched with the final storage link once the store has assigned an id.
// A failing element is reported in the result and does not undo siblings.
func (s *Store) AddImageURLs(ctx context.Context, projectID int64, urls []string) (BatchResult, error) {
	result := BatchResult{BatchID: uuid.NewString()}
	for i, url := range urls {
		name := naming.FromURL(url)
		created, err := s.createLinkedImage(ctx, projectID, name, url, "", "")
		if err != nil {
			result.Failed = append(result.Failed, BatchError{Index: i, URL: url, Err: err})
			s.logBatchFailure(result.BatchID, projectID, url, err)
			continue
		}
		result.Created = append(result.Created, created)
	}
	return result, nil
}

// AddImageBatch imports a batch of entries carrying provenance beyond a bare
// URL. The recorded original name keeps the full URL path, so objects pulled
// from bucket storage stay distinguishable when their basenames collide.
func (s *Store) AddImageBatch(ctx context.Context, projectID int64, entries []ImportEntry) (BatchResult, error) {
	result := BatchResult{BatchID: uuid.NewString()}
	for i, entry := range entries {
		name := naming.PathFromURL(entry.URL)
		created, err := s.createLinkedImage(ctx, projectID, name, entry.URL, "", entry.CallbackURL)
		if err != nil {
			result.Failed = append(result.Failed, BatchError{Index: i, URL: entry.URL, Err: err})
			s.logBatchFailure(result.BatchID, projectID, entry.URL, err)
			continue
		}
		result.Created = append(result.Created, created)
	}
	return result, nil
}

// AddImageStub creates a record for an image whose bytes arrive from the
// local filesystem, assigning the storage link immediately.
func (s *Store) AddImageStub(ctx context.Context, projectID int64, filename, localPath string) (int64, error) {
	id, err := s.insertImage(ctx, projectID, filename, "", localPath, "")
	if err != nil {
		return 0, err
	}
	if _, err := s.UpdateLink(ctx, id, projectID, filename); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateLink computes and persists the final storage link for an image. The
// link depends on the store-assigned id, which is why creation is a
// create-then-patch sequence. Returns the bare filename, "{id}{ext}".
func (s *Store) UpdateLink(ctx context.Context, imageID, projectID int64, filename string) (string, error) {
	ext := naming.Ext(filename)
	link := fmt.Sprintf("%s/%d/%d%s", s.uploadsBase, projectID, imageID, ext)
	_, err := s.db.ExecContext(ctx,
		`UPDATE images SET link = ? WHERE id = ?`,
		link, imageID,
	)
	if err != nil {
		return "", fmt.Errorf("update link: %w", err)
	}
	return fmt.Sprintf("%d%s", imageID, ext), nil
}

// Delete removes an image by identifier.
func (s *Store) Delete(ctx context.Context, imageID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, imageID)
	if err != nil {
		return false, fmt.Errorf("delete image: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteByIDs removes a set of images, but only those owned by the given
// project. Ownership is enforced in the statement itself: ids belonging to
// another project silently match zero rows rather than erroring, defending
// against stale client-side id sets.
func (s *Store) DeleteByIDs(ctx context.Context, projectID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM images WHERE id IN (` + makePlaceholders(len(ids)) + `) AND projects_id = ?`
	args := append(idArgs(ids), projectID)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete images: %w", err)
	}
	return res.RowsAffected()
}

// MoveToProject transfers ownership of a set of images from one project to
// another in a single guarded statement. Ids not currently in the source
// project stay where they are.
func (s *Store) MoveToProject(ctx context.Context, ids []int64, newProjectID, oldProjectID int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE images SET projects_id = ?
        WHERE id IN (` + makePlaceholders(len(ids)) + `) AND projects_id = ?`
	args := append([]any{newProjectID}, idArgs(ids)...)
	args = append(args, oldProjectID)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("move images: %w", err)
	}
	return res.RowsAffected()
}

// RehomeImages re-homes existing images onto a project with refreshed
// provenance (name, external link, callback). Best-effort per element, like
// the import batches. Labeling state is left untouched.
func (s *Store) RehomeImages(ctx context.Context, projectID int64, entries []RehomeEntry) (BatchResult, error) {
	result := BatchResult{BatchID: uuid.NewString()}
	for i, entry := range entries {
		name := naming.PathFromURL(entry.URL)
		_, err := s.db.ExecContext(ctx,
			`UPDATE images
             SET projects_id = ?, original_name = ?, external_link = ?, callback_url = ?
             WHERE id = ?`,
			projectID, name, nullableString(entry.URL), nullableString(entry.CallbackURL), entry.ID,
		)
		if err != nil {
			result.Failed = append(result.Failed, BatchError{Index: i, URL: entry.URL, Err: fmt.Errorf("rehome image: %w", err)})
			s.logBatchFailure(result.BatchID, projectID, entry.URL, err)
			continue
		}
		result.Created = append(result.Created, CreatedImage{ID: entry.ID, Name: name})
	}
	return result, nil
}

func (s *Store) createLinkedImage(ctx context.Context, projectID int64, name, externalLink, localPath, callbackURL string) (CreatedImage, error) {
	id, err := s.insertImage(ctx, projectID, name, externalLink, localPath, callbackURL)
	if err != nil {
		return CreatedImage{}, err
	}
	if _, err := s.UpdateLink(ctx, id, projectID, name); err != nil {
		return CreatedImage{}, err
	}
	link := fmt.Sprintf("%s/%d/%d%s", s.uploadsBase, projectID, id, naming.Ext(name))
	return CreatedImage{ID: id, Name: name, Link: link}, nil
}

func (s *Store) insertImage(ctx context.Context, projectID int64, originalName, externalLink, localPath, callbackURL string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO images (
            projects_id, original_name, link, external_link, local_path,
            callback_url, labeled, label_data, last_edited, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, 0, '{}', 0, ?)`,
		projectID,
		originalName,
		LinkStub,
		nullableString(externalLink),
		nullableString(localPath),
		nullableString(callbackURL),
		s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (s *Store) logBatchFailure(batchID string, projectID int64, url string, err error) {
	s.logger.Warn("batch element failed",
		slog.String("batch_id", batchID),
		slog.Int64("project_id", projectID),
		slog.String("url", url),
		slog.String("error", err.Error()),
	)
}
