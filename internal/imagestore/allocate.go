package imagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Allocate reserves an unlabeled image for a requesting labeler.
//
// When imageID is positive the caller asks for that specific image: it is
// stamped unconditionally, with no eligibility or ownership check, so a
// labeler can keep touching an image it is already working on. Otherwise the
// project is scanned for the oldest unlabeled image whose last touch fell out
// of the lease window, and that image is claimed.
//
// The claim is a conditional update re-checking eligibility, so two scans
// racing on the same candidate cannot both win: the loser's update matches
// zero rows and the scan reports no work. A nil lease with a nil error means
// nothing is available; it is a normal outcome, not a failure.
func (s *Store) Allocate(ctx context.Context, projectID, imageID int64) (*Lease, error) {
	now := s.now()
	stamp := now.UnixMilli()
	cutoff := now.Add(-s.leaseTimeout).UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin allocate tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if imageID > 0 {
		res, err := tx.ExecContext(ctx,
			`UPDATE images SET last_edited = ? WHERE id = ?`,
			stamp, imageID,
		)
		if err != nil {
			return nil, fmt.Errorf("stamp requested image: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return nil, nil
		}
	} else {
		row := tx.QueryRowContext(ctx,
			`SELECT id FROM images
             WHERE projects_id = ? AND labeled = 0 AND last_edited < ?
             ORDER BY last_edited, id LIMIT 1`,
			projectID, cutoff,
		)
		if err := row.Scan(&imageID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE images SET last_edited = ?
             WHERE id = ? AND labeled = 0 AND last_edited < ?`,
			stamp, imageID, cutoff,
		)
		if err != nil {
			return nil, fmt.Errorf("claim candidate: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			// Claimed by a concurrent allocator between select and update.
			return nil, nil
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit allocate tx: %w", err)
	}

	s.logger.Debug("allocation granted",
		slog.Int64("project_id", projectID),
		slog.Int64("image_id", imageID),
	)
	return &Lease{ImageID: imageID, ProjectID: projectID, LastEdited: time.UnixMilli(stamp).UTC()}, nil
}
