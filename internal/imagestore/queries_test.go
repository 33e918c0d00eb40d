package imagestore_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"labeld/internal/imagestore"
	"labeld/internal/testsupport"
)

// corruptLabelData writes an unparseable payload straight into the database,
// simulating a data-layer fault the store must tolerate.
func corruptLabelData(t *testing.T, dbPath string, id int64) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db for corruption: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`UPDATE images SET label_data = '{truncated' WHERE id = ?`, id); err != nil {
		t.Fatalf("corrupt label data: %v", err)
	}
}

func TestGetForImport(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seeded, err := store.AddImageURLs(ctx, 1, []string{"http://x/frame.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}

	image, err := store.GetForImport(ctx, 1, "frame.png")
	if err != nil {
		t.Fatalf("GetForImport failed: %v", err)
	}
	if image.ID != seeded.Created[0].ID {
		t.Fatalf("unexpected image: %#v", image)
	}

	if _, err := store.GetForImport(ctx, 1, "missing.png"); !errors.Is(err, imagestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetForImport(ctx, 2, "frame.png"); !errors.Is(err, imagestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound across projects, got %v", err)
	}
}

func TestGetLabeledByProjectOrderAndPagination(t *testing.T) {
	store, clock := newLeaseStore(t)
	ctx := context.Background()

	var ids []int64
	for _, url := range []string{"http://x/1.png", "http://x/2.png", "http://x/3.png"} {
		id := seedImage(t, store, 1, url)
		if err := store.UpdateLabel(ctx, id, map[string]any{"n": float64(id)}); err != nil {
			t.Fatalf("UpdateLabel failed: %v", err)
		}
		if err := store.SetLabeled(ctx, id, true); err != nil {
			t.Fatalf("SetLabeled failed: %v", err)
		}
		ids = append(ids, id)
		clock.Advance(time.Minute)
	}

	page, err := store.GetLabeledByProject(ctx, 1, 1, 2)
	if err != nil {
		t.Fatalf("GetLabeledByProject failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected two rows on first page, got %d", len(page))
	}
	// Most recently edited first.
	if page[0].ID != ids[2] || page[1].ID != ids[1] {
		t.Fatalf("unexpected ordering: got [%d %d], want [%d %d]", page[0].ID, page[1].ID, ids[2], ids[1])
	}

	rest, err := store.GetLabeledByProject(ctx, 1, 2, 2)
	if err != nil {
		t.Fatalf("GetLabeledByProject failed: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != ids[0] {
		t.Fatalf("unexpected second page: %#v", rest)
	}

	empty, err := store.GetLabeledByProject(ctx, 1, 3, 2)
	if err != nil {
		t.Fatalf("GetLabeledByProject failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page past the end, got %d rows", len(empty))
	}
}

func TestGetLabeledByProjectIncludesDocument(t *testing.T) {
	// Scenario: submit a box document, mark complete, list labeled; the
	// listing carries the exact document.
	store, _ := newLeaseStore(t)
	ctx := context.Background()
	id := seedImage(t, store, 1, "http://x/a.png")

	doc := map[string]any{"box": []any{1.0, 2.0, 3.0, 4.0}}
	if err := store.UpdateLabel(ctx, id, doc); err != nil {
		t.Fatalf("UpdateLabel failed: %v", err)
	}
	if err := store.SetLabeled(ctx, id, true); err != nil {
		t.Fatalf("SetLabeled failed: %v", err)
	}

	images, err := store.GetLabeledByProject(ctx, 1, 1, 10)
	if err != nil {
		t.Fatalf("GetLabeledByProject failed: %v", err)
	}
	if len(images) != 1 || images[0].ID != id {
		t.Fatalf("expected the labeled image, got %#v", images)
	}
	if !reflect.DeepEqual(images[0].LabelData, doc) {
		t.Fatalf("document mismatch:\n got  %#v\n want %#v", images[0].LabelData, doc)
	}
}

func TestGetLabeledByProjectSkipsMalformedRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seeded, err := store.AddImageURLs(ctx, 1, []string{"http://x/good.png", "http://x/bad.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	good := seeded.Created[0].ID
	bad := seeded.Created[1].ID
	for _, id := range []int64{good, bad} {
		if err := store.SetLabeled(ctx, id, true); err != nil {
			t.Fatalf("SetLabeled failed: %v", err)
		}
	}
	corruptLabelData(t, store.Path(), bad)

	images, err := store.GetLabeledByProject(ctx, 1, 1, 10)
	if err != nil {
		t.Fatalf("GetLabeledByProject failed: %v", err)
	}
	if len(images) != 1 || images[0].ID != good {
		t.Fatalf("expected only the parseable row, got %#v", images)
	}
}

func TestGetByIDMalformedPayloadFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seeded, err := store.AddImageURLs(ctx, 1, []string{"http://x/a.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	id := seeded.Created[0].ID
	corruptLabelData(t, store.Path(), id)

	if _, err := store.GetByID(ctx, id); !errors.Is(err, imagestore.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestGetUnlabeledByProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seeded, err := store.AddImageURLs(ctx, 1, []string{"http://x/1.png", "http://x/2.png", "http://x/3.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	if err := store.SetLabeled(ctx, seeded.Created[0].ID, true); err != nil {
		t.Fatalf("SetLabeled failed: %v", err)
	}

	stubs, err := store.GetUnlabeledByProject(ctx, 1, 10)
	if err != nil {
		t.Fatalf("GetUnlabeledByProject failed: %v", err)
	}
	if len(stubs) != 2 {
		t.Fatalf("expected two unlabeled stubs, got %d", len(stubs))
	}
	// Most recent id first.
	if stubs[0].ID != seeded.Created[2].ID || stubs[1].ID != seeded.Created[1].ID {
		t.Fatalf("unexpected stub order: %#v", stubs)
	}
	if stubs[0].ExternalLink != "http://x/3.png" {
		t.Fatalf("unexpected external link: %q", stubs[0].ExternalLink)
	}

	bounded, err := store.GetUnlabeledByProject(ctx, 1, 1)
	if err != nil {
		t.Fatalf("GetUnlabeledByProject failed: %v", err)
	}
	if len(bounded) != 1 {
		t.Fatalf("expected limit to bound results, got %d", len(bounded))
	}
}

func TestGetAllByIDsScopedToProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	mine, err := store.AddImageURLs(ctx, 1, []string{"http://x/a.png", "http://x/b.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	theirs, err := store.AddImageURLs(ctx, 2, []string{"http://x/c.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}

	ids := []int64{mine.Created[0].ID, mine.Created[1].ID, theirs.Created[0].ID}
	images, err := store.GetAllByIDs(ctx, 1, ids)
	if err != nil {
		t.Fatalf("GetAllByIDs failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected two in-project images, got %d", len(images))
	}
	for _, image := range images {
		if image.ProjectID != 1 {
			t.Fatalf("fetched image from wrong project: %#v", image)
		}
	}
}

func TestGetForProjectParsesPayloads(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seeded, err := store.AddImageURLs(ctx, 1, []string{"http://x/a.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	doc := map[string]any{"points": []any{map[string]any{"x": 1.0, "y": 2.0}}}
	if err := store.UpdateLabel(ctx, seeded.Created[0].ID, doc); err != nil {
		t.Fatalf("UpdateLabel failed: %v", err)
	}

	images, err := store.GetForProject(ctx, 1)
	if err != nil {
		t.Fatalf("GetForProject failed: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("expected one image, got %d", len(images))
	}
	if !reflect.DeepEqual(images[0].LabelData, doc) {
		t.Fatalf("payload mismatch: %#v", images[0].LabelData)
	}
}

func TestStatsCountsLeases(t *testing.T) {
	store, clock := newLeaseStore(t)
	ctx := context.Background()

	labeled := seedImage(t, store, 1, "http://x/done.png")
	if err := store.SetLabeled(ctx, labeled, true); err != nil {
		t.Fatalf("SetLabeled failed: %v", err)
	}
	leased := seedImage(t, store, 1, "http://x/busy.png")
	stampImage(t, store, leased)
	seedImage(t, store, 1, "http://x/waiting.png")

	summary, err := store.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := imagestore.Summary{Total: 3, Labeled: 1, Unlabeled: 2, Leased: 1}
	if summary != want {
		t.Fatalf("unexpected summary: got %+v want %+v", summary, want)
	}

	// After the lease window passes the leased count drains.
	clock.Advance(16 * time.Minute)
	summary, err = store.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if summary.Leased != 0 {
		t.Fatalf("expected no live leases after the window, got %d", summary.Leased)
	}
}
