package imagestore_test

import (
	"context"
	"fmt"
	"testing"

	"labeld/internal/imagestore"
	"labeld/internal/testsupport"
)

func TestAddImageURLsAssignsLinks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	const projectID = 3
	result, err := store.AddImageURLs(ctx, projectID, []string{"http://x/a.png", "http://x/b.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	if len(result.Created) != 2 || len(result.Failed) != 0 {
		t.Fatalf("unexpected batch result: %+v", result)
	}
	if result.Created[0].ID == result.Created[1].ID {
		t.Fatal("expected distinct ids")
	}

	wantNames := []string{"a.png", "b.png"}
	for i, created := range result.Created {
		image, err := store.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if image.OriginalName != wantNames[i] {
			t.Fatalf("unexpected original name: got %q want %q", image.OriginalName, wantNames[i])
		}
		wantLink := fmt.Sprintf("/uploads/%d/%d.png", projectID, created.ID)
		if image.Link != wantLink {
			t.Fatalf("unexpected link: got %q want %q", image.Link, wantLink)
		}
		if image.Labeled {
			t.Fatal("imported image should start unlabeled")
		}
		if image.ExternalLink == "" {
			t.Fatal("imported image should record its source URL")
		}
	}
}

func TestAddImageBatchKeepsFullPathAndCallback(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entries := []imagestore.ImportEntry{
		{
			URL:         "https://s3.ap-south-1.amazonaws.com/ml-data/before/3yyp1XGkk8.png",
			CallbackURL: "https://hooks.example/done",
		},
	}
	result, err := store.AddImageBatch(ctx, 5, entries)
	if err != nil {
		t.Fatalf("AddImageBatch failed: %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	image, err := store.GetByID(ctx, result.Created[0].ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if image.OriginalName != "/ml-data/before/3yyp1XGkk8.png" {
		t.Fatalf("batch entries keep the full URL path, got %q", image.OriginalName)
	}
	if image.CallbackURL != "https://hooks.example/done" {
		t.Fatalf("unexpected callback url: %q", image.CallbackURL)
	}
	wantLink := fmt.Sprintf("/uploads/5/%d.png", image.ID)
	if image.Link != wantLink {
		t.Fatalf("unexpected link: got %q want %q", image.Link, wantLink)
	}
}

func TestAddImageStubAssignsLinkImmediately(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id, err := store.AddImageStub(ctx, 2, "scan.jpeg", "/var/incoming/scan.jpeg")
	if err != nil {
		t.Fatalf("AddImageStub failed: %v", err)
	}

	image, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if image.LocalPath != "/var/incoming/scan.jpeg" {
		t.Fatalf("unexpected local path: %q", image.LocalPath)
	}
	wantLink := fmt.Sprintf("/uploads/2/%d.jpeg", id)
	if image.Link != wantLink {
		t.Fatalf("unexpected link: got %q want %q", image.Link, wantLink)
	}
}

func TestDeleteByIDsScopedToProject(t *testing.T) {
	// Scenario: delete [mine, theirs] scoped to project A; only the record A
	// owns goes away.
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	mineResult, err := store.AddImageURLs(ctx, 1, []string{"http://x/mine.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	theirsResult, err := store.AddImageURLs(ctx, 2, []string{"http://x/theirs.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	mine := mineResult.Created[0].ID
	theirs := theirsResult.Created[0].ID

	deleted, err := store.DeleteByIDs(ctx, 1, []int64{mine, theirs})
	if err != nil {
		t.Fatalf("DeleteByIDs failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected exactly one deletion, got %d", deleted)
	}

	if image, err := store.GetByID(ctx, mine); err != nil || image != nil {
		t.Fatalf("expected own image deleted, got %#v (err %v)", image, err)
	}
	untouched, err := store.GetByID(ctx, theirs)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched == nil || untouched.ProjectID != 2 {
		t.Fatalf("foreign image must be untouched, got %#v", untouched)
	}
}

func TestDeleteByIDsEmptySetIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	deleted, err := store.DeleteByIDs(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("DeleteByIDs failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected zero deletions, got %d", deleted)
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	result, err := store.AddImageURLs(ctx, 1, []string{"http://x/a.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	id := result.Created[0].ID

	ok, err := store.Delete(ctx, id)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !ok {
		t.Fatal("expected delete of existing image to report true")
	}
	ok, err = store.Delete(ctx, id)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if ok {
		t.Fatal("expected delete of missing image to report false")
	}
}

func TestMoveToProjectScopedToSource(t *testing.T) {
	// Scenario: move [1, 2] from A to B where 2 actually belongs to C; only
	// 1 moves, 2 stays in C.
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	const projectA, projectB, projectC = int64(10), int64(11), int64(12)
	inA, err := store.AddImageURLs(ctx, projectA, []string{"http://x/a.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	inC, err := store.AddImageURLs(ctx, projectC, []string{"http://x/c.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	idA := inA.Created[0].ID
	idC := inC.Created[0].ID

	moved, err := store.MoveToProject(ctx, []int64{idA, idC}, projectB, projectA)
	if err != nil {
		t.Fatalf("MoveToProject failed: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected exactly one move, got %d", moved)
	}

	movedImage, err := store.GetByID(ctx, idA)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if movedImage.ProjectID != projectB {
		t.Fatalf("expected image %d in project %d, got %d", idA, projectB, movedImage.ProjectID)
	}
	stayed, err := store.GetByID(ctx, idC)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stayed.ProjectID != projectC {
		t.Fatalf("image outside the source project must stay put, got project %d", stayed.ProjectID)
	}
}

func TestRehomeImagesRefreshesProvenance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seeded, err := store.AddImageURLs(ctx, 1, []string{"http://x/old.png"})
	if err != nil {
		t.Fatalf("AddImageURLs failed: %v", err)
	}
	id := seeded.Created[0].ID
	if err := store.SetLabeled(ctx, id, true); err != nil {
		t.Fatalf("SetLabeled failed: %v", err)
	}

	result, err := store.RehomeImages(ctx, 9, []imagestore.RehomeEntry{
		{ID: id, URL: "https://bucket.example/new/home.png", CallbackURL: "https://hooks.example/cb"},
	})
	if err != nil {
		t.Fatalf("RehomeImages failed: %v", err)
	}
	if len(result.Created) != 1 || len(result.Failed) != 0 {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	image, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if image.ProjectID != 9 {
		t.Fatalf("expected project 9, got %d", image.ProjectID)
	}
	if image.OriginalName != "/new/home.png" {
		t.Fatalf("unexpected original name: %q", image.OriginalName)
	}
	if image.CallbackURL != "https://hooks.example/cb" {
		t.Fatalf("unexpected callback: %q", image.CallbackURL)
	}
	if !image.Labeled {
		t.Fatal("rehoming must not alter labeling state")
	}
}
