// Package colstore implements the wide-column side of the benchmark pair:
// an in-memory memtable in front of immutable, bloom-filtered segments
// persisted through object storage. Writes overwrite by row key; reads and
// scans always observe the newest value for a key.
package colstore

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/engagemark/engagemark/internal/storage"
	"github.com/engagemark/engagemark/pkg/types"
)

// DefaultFlushThreshold is the memtable size at which a flush is triggered.
const DefaultFlushThreshold = 10000

// segmentPrefix is the object storage prefix for persisted segments.
const segmentPrefix = "segments"

// Store is the wide-column store. Safe for concurrent use.
type Store struct {
	mu             sync.RWMutex
	memtable       map[string]types.ShapedRecord
	segments       []*Segment // oldest first
	objects        storage.ObjectStorage
	flushThreshold int
	nextSeq        int
}

// Open creates a store backed by the given object storage and recovers any
// previously persisted segments. Recovery fetches segments in parallel but
// applies them in name order, which is creation order, so overwrite
// semantics survive a restart.
func Open(ctx context.Context, objects storage.ObjectStorage, flushThreshold int) (*Store, error) {
	if flushThreshold <= 0 {
		flushThreshold = DefaultFlushThreshold
	}

	paths, err := objects.List(ctx, segmentPrefix)
	if err != nil {
		return nil, fmt.Errorf("colstore: failed to list segments: %w", err)
	}

	s := &Store{
		memtable:       make(map[string]types.ShapedRecord),
		objects:        objects,
		flushThreshold: flushThreshold,
	}

	if len(paths) > 0 {
		fetcher := storage.NewBatchFetcher(objects, 4)
		result, err := fetcher.Fetch(ctx, paths)
		if err != nil {
			return nil, fmt.Errorf("colstore: failed to fetch segments: %w", err)
		}

		for _, path := range paths {
			data, ok := result.Objects[path]
			if !ok {
				return nil, fmt.Errorf("colstore: failed to fetch segment %s: %w", path, result.Errors[path])
			}
			seg, err := DecodeSegment(segmentID(path), data)
			if err != nil {
				return nil, err
			}
			s.segments = append(s.segments, seg)
			if seq, ok := segmentSeq(path); ok && seq >= s.nextSeq {
				s.nextSeq = seq + 1
			}
		}
		log.Printf("colstore: recovered %d segments", len(s.segments))
	}

	return s, nil
}

// WriteBatch applies a batch of records to the memtable, flushing to a new
// segment whenever the memtable reaches the threshold.
func (s *Store) WriteBatch(ctx context.Context, records []types.ShapedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		s.memtable[rec.Key] = rec
		if len(s.memtable) >= s.flushThreshold {
			if err := s.flushLocked(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Put applies a single record.
func (s *Store) Put(ctx context.Context, rec types.ShapedRecord) error {
	return s.WriteBatch(ctx, []types.ShapedRecord{rec})
}

// Get returns the newest record for the given key.
func (s *Store) Get(ctx context.Context, key string) (types.ShapedRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.ShapedRecord{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.memtable[key]; ok {
		return rec, true, nil
	}

	// Newest segment first; the first hit wins.
	for i := len(s.segments) - 1; i >= 0; i-- {
		seg := s.segments[i]
		if !seg.MayContain(key) {
			continue
		}
		if rec, ok := seg.Get(key); ok {
			return rec, true, nil
		}
	}

	return types.ShapedRecord{}, false, nil
}

// Scan returns up to limit records in ascending key order, newest value per
// key. limit <= 0 means no limit.
func (s *Store) Scan(ctx context.Context, limit int) ([]types.ShapedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := s.mergedLocked()

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}

	out := make([]types.ShapedRecord, len(keys))
	for i, key := range keys {
		out[i] = merged[key]
	}
	return out, nil
}

// Count returns the number of distinct row keys in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mergedLocked())
}

// SegmentCount returns the number of sealed segments.
func (s *Store) SegmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}

// Flush seals the current memtable into a segment and persists it.
// Flushing an empty memtable is a no-op.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

// Close flushes any buffered records.
func (s *Store) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

// Reset drops all data: the memtable, in-memory segments, and every
// persisted segment object. The store is reusable afterwards.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := s.objects.List(ctx, segmentPrefix)
	if err != nil {
		return fmt.Errorf("colstore: failed to list segments: %w", err)
	}
	for _, path := range paths {
		if err := s.objects.Delete(ctx, path); err != nil {
			return fmt.Errorf("colstore: failed to delete segment %s: %w", path, err)
		}
	}

	s.memtable = make(map[string]types.ShapedRecord)
	s.segments = nil
	s.nextSeq = 0
	return nil
}

func (s *Store) flushLocked(ctx context.Context) error {
	if len(s.memtable) == 0 {
		return nil
	}

	records := make([]types.ShapedRecord, 0, len(s.memtable))
	for _, rec := range s.memtable {
		records = append(records, rec)
	}

	id := uuid.New().String()[:8]
	seg := BuildSegment(id, records)

	data, err := seg.Encode()
	if err != nil {
		return err
	}

	path := segmentPath(s.nextSeq, id)
	if err := s.objects.Put(ctx, path, data); err != nil {
		return fmt.Errorf("colstore: failed to persist segment %s: %w", path, err)
	}

	s.segments = append(s.segments, seg)
	s.nextSeq++
	s.memtable = make(map[string]types.ShapedRecord)

	log.Printf("colstore: flushed segment %s (%d records)", path, seg.Len())
	return nil
}

// mergedLocked folds segments oldest-to-newest, then the memtable, into a
// key-to-record map. Callers must hold at least a read lock.
func (s *Store) mergedLocked() map[string]types.ShapedRecord {
	merged := make(map[string]types.ShapedRecord)
	for _, seg := range s.segments {
		for _, rec := range seg.Records() {
			merged[rec.Key] = rec
		}
	}
	for key, rec := range s.memtable {
		merged[key] = rec
	}
	return merged
}

// segmentPath builds the object path for a new segment. The zero-padded
// sequence keeps lexical listing order equal to creation order.
func segmentPath(seq int, id string) string {
	return fmt.Sprintf("%s/seg-%06d-%s.egs", segmentPrefix, seq, id)
}

// segmentID extracts the segment identifier from its object path.
func segmentID(path string) string {
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".egs")
}

// segmentSeq parses the sequence number out of a segment path.
func segmentSeq(path string) (int, bool) {
	parts := strings.Split(segmentID(path), "-")
	if len(parts) < 3 {
		return 0, false
	}
	seq, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return seq, true
}
