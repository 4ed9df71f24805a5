package colstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"log"
	"sort"

	"github.com/golang/snappy"

	"github.com/engagemark/engagemark/internal/bloom"
	"github.com/engagemark/engagemark/pkg/types"
)

// Segment file format:
//   - 4 bytes: magic "EGS1"
//   - 4 bytes: record count (uint32, little-endian)
//   - per record: 4 bytes payload length + 4 bytes CRC32 (IEEE) of the
//     payload + snappy-compressed JSON of the record
//   - 4 bytes: bloom filter length + serialized bloom filter
//
// Records are stored in ascending key order so scans can stream without
// re-sorting.
const segmentMagic = "EGS1"

// segmentBloomFPR is the target false positive rate for per-segment filters.
const segmentBloomFPR = 0.01

// Segment is an immutable, sorted run of shaped records plus a bloom filter
// over its keys. Segments are built from a flushed memtable and never
// modified afterwards.
type Segment struct {
	id      string
	records []types.ShapedRecord
	filter  *bloom.Filter
}

// BuildSegment sorts the given records by key and seals them into a segment.
// Duplicate keys must already be resolved by the caller.
func BuildSegment(id string, records []types.ShapedRecord) *Segment {
	sorted := make([]types.ShapedRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	filter := bloom.NewWithEstimates(len(sorted), segmentBloomFPR)
	for _, rec := range sorted {
		filter.Add([]byte(rec.Key))
	}

	return &Segment{id: id, records: sorted, filter: filter}
}

// ID returns the segment identifier.
func (s *Segment) ID() string {
	return s.id
}

// Len returns the number of records in the segment.
func (s *Segment) Len() int {
	return len(s.records)
}

// MayContain reports whether the segment might hold the given key.
// A false result is definitive.
func (s *Segment) MayContain(key string) bool {
	return s.filter.Contains([]byte(key))
}

// Get looks up a record by exact key using binary search.
func (s *Segment) Get(key string) (types.ShapedRecord, bool) {
	idx := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Key >= key
	})
	if idx < len(s.records) && s.records[idx].Key == key {
		return s.records[idx], true
	}
	return types.ShapedRecord{}, false
}

// Records returns the segment's records in ascending key order.
// The returned slice is shared; callers must not modify it.
func (s *Segment) Records() []types.ShapedRecord {
	return s.records
}

// Encode serializes the segment to its on-disk representation.
func (s *Segment) Encode() ([]byte, error) {
	buf := make([]byte, 0, 8+len(s.records)*64)
	buf = append(buf, segmentMagic...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.records)))

	for _, rec := range s.records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("colstore: failed to marshal record %q: %w", rec.Key, err)
		}
		compressed := snappy.Encode(nil, payload)

		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(compressed)))
		buf = binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(compressed))
		buf = append(buf, compressed...)
	}

	filterData := s.filter.Serialize()
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(filterData)))
	buf = append(buf, filterData...)

	return buf, nil
}

// DecodeSegment reconstructs a segment from Encode output. Records whose
// CRC does not match are skipped with a log warning rather than failing the
// whole segment; the bloom filter from the footer is kept as written, so a
// skipped record may still probe positive.
func DecodeSegment(id string, data []byte) (*Segment, error) {
	if len(data) < 8 || string(data[:4]) != segmentMagic {
		return nil, fmt.Errorf("colstore: segment %s: bad magic", id)
	}
	count := binary.LittleEndian.Uint32(data[4:8])
	offset := 8

	records := make([]types.ShapedRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+8 > len(data) {
			return nil, fmt.Errorf("colstore: segment %s: truncated at record %d", id, i)
		}
		length := binary.LittleEndian.Uint32(data[offset : offset+4])
		checksum := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		if offset+int(length) > len(data) {
			return nil, fmt.Errorf("colstore: segment %s: truncated payload at record %d", id, i)
		}
		compressed := data[offset : offset+int(length)]
		offset += int(length)

		if crc32.ChecksumIEEE(compressed) != checksum {
			log.Printf("colstore: segment %s: CRC mismatch at record %d, skipping", id, i)
			continue
		}

		payload, err := snappy.Decode(nil, compressed)
		if err != nil {
			log.Printf("colstore: segment %s: decompress failed at record %d, skipping: %v", id, i, err)
			continue
		}

		var rec types.ShapedRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			log.Printf("colstore: segment %s: unmarshal failed at record %d, skipping: %v", id, i, err)
			continue
		}
		records = append(records, rec)
	}

	if offset+4 > len(data) {
		return nil, fmt.Errorf("colstore: segment %s: missing bloom footer", id)
	}
	filterLen := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4
	if offset+int(filterLen) > len(data) {
		return nil, fmt.Errorf("colstore: segment %s: truncated bloom footer", id)
	}

	filter, err := bloom.Deserialize(data[offset : offset+int(filterLen)])
	if err != nil {
		return nil, fmt.Errorf("colstore: segment %s: %w", id, err)
	}

	return &Segment{id: id, records: records, filter: filter}, nil
}
