// Package library implements the Content Library: a concurrency-safe
// registry of generated/approved assets keyed by type-scoped
// monotonic IDs, with query, approve, reject, and flag-for-review
// operations.
package library

import (
	"fmt"
	"sync"
	"time"

	"github.com/aaronmarkham/studioproducer/internal/errs"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Library is a per-project registry of AssetRecords. It is safe for
// concurrent use: every read (HasApprovedAssetFor, Query) and write
// (Register, Approve) takes the registry's read/write lock.
type Library struct {
	mu        sync.RWMutex
	projectID string
	assets    map[string]*models.AssetRecord
	counters  map[models.AssetType]int
}

// New creates an empty library for a project.
func New(projectID string) *Library {
	return &Library{
		projectID: projectID,
		assets:    make(map[string]*models.AssetRecord),
		counters:  make(map[models.AssetType]int),
	}
}

// Register assigns an ID if record.AssetID is empty, stamps
// GeneratedAt if zero, and stores the record. Returns the assigned ID.
func (l *Library) Register(record models.AssetRecord) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if record.AssetID == "" {
		l.counters[record.Type]++
		record.AssetID = fmt.Sprintf("%s_%04d", record.Type.Prefix(), l.counters[record.Type])
	}
	if record.GeneratedAt.IsZero() {
		record.GeneratedAt = time.Now()
	}
	if record.Status == "" {
		record.Status = models.AssetStatusDraft
	}
	rec := record
	l.assets[rec.AssetID] = &rec
	return rec.AssetID
}

// Get returns a copy of the record for id.
func (l *Library) Get(id string) (models.AssetRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.assets[id]
	if !ok {
		return models.AssetRecord{}, fmt.Errorf("%w: asset %s", errs.ErrNotFound, id)
	}
	return *rec, nil
}

// Query is the filter criteria for Query. Zero-valued fields are not
// applied as filters, except Tags which matches if any tag is present.
type Query struct {
	Type         models.AssetType
	Status       models.AssetStatus
	SegmentIdx   *int
	FigureNumber *int
	Source       models.AssetSource
	Tags         []string
}

// Query returns every asset matching every non-zero criterion.
// SegmentIdx matches both the record's primary SegmentIdx and
// membership in UsedInSegments.
func (l *Library) Query(q Query) []models.AssetRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.AssetRecord
	for _, rec := range l.assets {
		if q.Type != "" && rec.Type != q.Type {
			continue
		}
		if q.Status != "" && rec.Status != q.Status {
			continue
		}
		if q.Source != "" && rec.Source != q.Source {
			continue
		}
		if q.FigureNumber != nil {
			if rec.FigureNumber == nil || *rec.FigureNumber != *q.FigureNumber {
				continue
			}
		}
		if q.SegmentIdx != nil && !segmentMatches(rec, *q.SegmentIdx) {
			continue
		}
		if len(q.Tags) > 0 && !hasAnyTag(rec.Tags, q.Tags) {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func segmentMatches(rec *models.AssetRecord, idx int) bool {
	if rec.SegmentIdx != nil && *rec.SegmentIdx == idx {
		return true
	}
	for _, u := range rec.UsedInSegments {
		if u == idx {
			return true
		}
	}
	return false
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Approve transitions id to approved from any non-approved state and
// stamps ApprovedAt. Idempotent: approving an already-approved asset
// is a no-op that still succeeds.
func (l *Library) Approve(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.assets[id]
	if !ok {
		return fmt.Errorf("%w: asset %s", errs.ErrNotFound, id)
	}
	if rec.Status == models.AssetStatusApproved {
		return nil
	}
	now := time.Now()
	rec.Status = models.AssetStatusApproved
	rec.ApprovedAt = &now
	return nil
}

// Reject transitions id to rejected and records reason.
func (l *Library) Reject(id, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.assets[id]
	if !ok {
		return fmt.Errorf("%w: asset %s", errs.ErrNotFound, id)
	}
	rec.Status = models.AssetStatusRejected
	rec.RejectedReason = reason
	return nil
}

// FlagForReview transitions id to review.
func (l *Library) FlagForReview(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.assets[id]
	if !ok {
		return fmt.Errorf("%w: asset %s", errs.ErrNotFound, id)
	}
	rec.Status = models.AssetStatusReview
	return nil
}

// HasApprovedAssetFor is the generation-skip predicate the DoP
// consults in phase 5 of its algorithm (phases 1 and 7 use
// GetApprovedForSegment).
func (l *Library) HasApprovedAssetFor(segmentIdx int, assetType models.AssetType) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, rec := range l.assets {
		if rec.Type == assetType && rec.Status == models.AssetStatusApproved && segmentMatches(rec, segmentIdx) {
			return true
		}
	}
	return false
}

// GetApprovedForSegment returns the first approved asset of assetType
// for segmentIdx, if any: the match with the lowest asset ID, so the
// same library contents always yield the same record.
func (l *Library) GetApprovedForSegment(segmentIdx int, assetType models.AssetType) (models.AssetRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var first *models.AssetRecord
	for _, rec := range l.assets {
		if rec.Type == assetType && rec.Status == models.AssetStatusApproved && segmentMatches(rec, segmentIdx) {
			if first == nil || rec.AssetID < first.AssetID {
				first = rec
			}
		}
	}
	if first == nil {
		return models.AssetRecord{}, false
	}
	return *first, true
}

// Snapshot returns an independently-owned copy of every asset, for
// JSON serialization or Postgres persistence.
func (l *Library) Snapshot() []models.AssetRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.AssetRecord, 0, len(l.assets))
	for _, rec := range l.assets {
		out = append(out, *rec)
	}
	return out
}

// ProjectID returns the library's owning project ID.
func (l *Library) ProjectID() string {
	return l.projectID
}
