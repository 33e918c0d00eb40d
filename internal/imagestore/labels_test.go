package imagestore_test

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestUpdateLabelRoundTrip(t *testing.T) {
	store, _ := newLeaseStore(t)
	ctx := context.Background()
	id := seedImage(t, store, 1, "http://x/a.png")

	doc := map[string]any{
		"box": []any{1.0, 2.0, 3.0, 4.0},
		"tags": map[string]any{
			"occluded": true,
			"class":    "pedestrian",
		},
	}
	if err := store.UpdateLabel(ctx, id, doc); err != nil {
		t.Fatalf("UpdateLabel failed: %v", err)
	}

	image, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !reflect.DeepEqual(image.LabelData, doc) {
		t.Fatalf("label round-trip mismatch:\n got  %#v\n want %#v", image.LabelData, doc)
	}
}

func TestUpdateLabelRenewsLease(t *testing.T) {
	store, clock := newLeaseStore(t)
	ctx := context.Background()
	id := seedImage(t, store, 1, "http://x/a.png")
	stampImage(t, store, id)

	// Keep saving drafts every ten minutes; the image must never fall back
	// into the allocation pool while edits keep landing.
	for i := 0; i < 3; i++ {
		clock.Advance(10 * time.Minute)
		if err := store.UpdateLabel(ctx, id, map[string]any{"draft": float64(i)}); err != nil {
			t.Fatalf("UpdateLabel failed: %v", err)
		}
		lease, err := store.Allocate(ctx, 1, 0)
		if err != nil {
			t.Fatalf("Allocate failed: %v", err)
		}
		if lease != nil {
			t.Fatalf("actively edited image must not be re-allocated, got %#v", lease)
		}
	}
}

func TestSetLabeledIsIdempotent(t *testing.T) {
	store, clock := newLeaseStore(t)
	ctx := context.Background()
	id := seedImage(t, store, 1, "http://x/a.png")

	doc := map[string]any{"box": []any{1.0, 2.0, 3.0, 4.0}}
	if err := store.UpdateLabel(ctx, id, doc); err != nil {
		t.Fatalf("UpdateLabel failed: %v", err)
	}
	stampAt := clock.Now()
	clock.Advance(time.Hour)

	if err := store.SetLabeled(ctx, id, true); err != nil {
		t.Fatalf("first SetLabeled failed: %v", err)
	}
	if err := store.SetLabeled(ctx, id, true); err != nil {
		t.Fatalf("second SetLabeled failed: %v", err)
	}

	image, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !image.Labeled {
		t.Fatal("image should be labeled")
	}
	if !reflect.DeepEqual(image.LabelData, doc) {
		t.Fatalf("SetLabeled must not alter label data, got %#v", image.LabelData)
	}
	if !image.LastEdited.Equal(stampAt) {
		t.Fatalf("SetLabeled must not touch last_edited: %v changed to %v", stampAt, image.LastEdited)
	}
}

func TestLabeledImageLeavesAllocationPool(t *testing.T) {
	store, clock := newLeaseStore(t)
	ctx := context.Background()
	id := seedImage(t, store, 1, "http://x/a.png")
	if err := store.SetLabeled(ctx, id, true); err != nil {
		t.Fatalf("SetLabeled failed: %v", err)
	}

	clock.Advance(24 * time.Hour)
	lease, err := store.Allocate(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if lease != nil {
		t.Fatalf("labeled image must never be allocated, got %#v", lease)
	}

	// Un-marking puts it back in the pool.
	if err := store.SetLabeled(ctx, id, false); err != nil {
		t.Fatalf("SetLabeled(false) failed: %v", err)
	}
	lease, err = store.Allocate(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if lease == nil || lease.ImageID != id {
		t.Fatalf("expected un-marked image to be eligible again, got %#v", lease)
	}
}

func TestUpdateLabelRejectsUnserializablePayload(t *testing.T) {
	store, _ := newLeaseStore(t)
	ctx := context.Background()
	id := seedImage(t, store, 1, "http://x/a.png")

	if err := store.UpdateLabel(ctx, id, map[string]any{"bad": math.NaN()}); err == nil {
		t.Fatal("expected serialization error for NaN payload")
	}

	image, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(image.LabelData) != 0 {
		t.Fatalf("rejected payload must not reach storage, got %#v", image.LabelData)
	}
}
