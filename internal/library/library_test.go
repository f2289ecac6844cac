package library

import (
	"sync"
	"testing"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

func TestRegisterAssignsMonotonicTypeScopedIDs(t *testing.T) {
	lib := New("proj-1")
	id1 := lib.Register(models.AssetRecord{Type: models.AssetTypeImage, Source: models.SourceDallE})
	id2 := lib.Register(models.AssetRecord{Type: models.AssetTypeImage, Source: models.SourceDallE})
	id3 := lib.Register(models.AssetRecord{Type: models.AssetTypeAudio, Source: models.SourceOpenAITTS})

	if id1 != "img_0001" || id2 != "img_0002" {
		t.Fatalf("got ids %q, %q, want img_0001, img_0002", id1, id2)
	}
	if id3 != "aud_0001" {
		t.Fatalf("got id %q, want aud_0001 (separate counter per type)", id3)
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	lib := New("proj-1")
	id := lib.Register(models.AssetRecord{Type: models.AssetTypeImage})
	if err := lib.Approve(id); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	first, _ := lib.Get(id)
	if err := lib.Approve(id); err != nil {
		t.Fatalf("second Approve: %v", err)
	}
	second, _ := lib.Get(id)
	if second.Status != models.AssetStatusApproved {
		t.Fatalf("status = %v, want approved", second.Status)
	}
	if first.ApprovedAt == nil || second.ApprovedAt == nil {
		t.Fatal("expected ApprovedAt to be set")
	}
}

func TestHasApprovedAssetForRespectsSegmentAndType(t *testing.T) {
	lib := New("proj-1")
	idx := 3
	id := lib.Register(models.AssetRecord{Type: models.AssetTypeImage, SegmentIdx: &idx})
	if lib.HasApprovedAssetFor(3, models.AssetTypeImage) {
		t.Fatal("should be false before approval")
	}
	if err := lib.Approve(id); err != nil {
		t.Fatal(err)
	}
	if !lib.HasApprovedAssetFor(3, models.AssetTypeImage) {
		t.Fatal("should be true after approval")
	}
	if lib.HasApprovedAssetFor(3, models.AssetTypeAudio) {
		t.Fatal("should not match a different asset type")
	}
	if lib.HasApprovedAssetFor(4, models.AssetTypeImage) {
		t.Fatal("should not match a different segment")
	}
}

func TestQueryByStatusAndType(t *testing.T) {
	lib := New("proj-1")
	id1 := lib.Register(models.AssetRecord{Type: models.AssetTypeImage})
	lib.Register(models.AssetRecord{Type: models.AssetTypeAudio})
	lib.Approve(id1)

	results := lib.Query(Query{Type: models.AssetTypeImage, Status: models.AssetStatusApproved})
	if len(results) != 1 || results[0].AssetID != id1 {
		t.Fatalf("query results = %+v, want just %q", results, id1)
	}
}

func TestConcurrentRegisterProducesUniqueIDs(t *testing.T) {
	lib := New("proj-1")
	var wg sync.WaitGroup
	ids := make(chan string, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- lib.Register(models.AssetRecord{Type: models.AssetTypeVideo})
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q under concurrent registration", id)
		}
		seen[id] = true
	}
	if len(seen) != 200 {
		t.Fatalf("got %d unique ids, want 200", len(seen))
	}
}
