package imagestore

import (
	"context"
	"encoding/json"
	"fmt"
)

// UpdateLabel persists a label document for an image and refreshes its
// last_edited stamp in the same statement. The stamp doubles as lease
// renewal: an actively saving labeler is never preempted by the allocation
// scan. Marking an image complete is a separate step; see SetLabeled.
func (s *Store) UpdateLabel(ctx context.Context, imageID int64, labelData map[string]any) error {
	if labelData == nil {
		labelData = map[string]any{}
	}
	payload, err := json.Marshal(labelData)
	if err != nil {
		return fmt.Errorf("serialize label payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE images SET label_data = ?, last_edited = ? WHERE id = ?`,
		string(payload), s.now().UnixMilli(), imageID,
	)
	if err != nil {
		return fmt.Errorf("update label: %w", err)
	}
	return nil
}

// SetLabeled flips only the completion flag. It deliberately leaves
// last_edited alone, so marking complete does not renew a lease, and calling
// it twice is harmless.
func (s *Store) SetLabeled(ctx context.Context, imageID int64, labeled bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE images SET labeled = ? WHERE id = ?`,
		boolToInt(labeled), imageID,
	)
	if err != nil {
		return fmt.Errorf("set labeled: %w", err)
	}
	return nil
}
