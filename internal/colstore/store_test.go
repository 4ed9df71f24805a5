package colstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagemark/engagemark/internal/storage"
	"github.com/engagemark/engagemark/pkg/types"
)

func newTestStore(t *testing.T, flushThreshold int) (*Store, storage.ObjectStorage) {
	t.Helper()
	objects, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store, err := Open(context.Background(), objects, flushThreshold)
	require.NoError(t, err)
	return store, objects
}

func record(key string, likes int) types.ShapedRecord {
	return types.ShapedRecord{
		Key: key,
		Columns: map[string]string{
			"cf:platform":   "Twitter",
			"metrics:likes": fmt.Sprintf("%d", likes),
		},
	}
}

func TestStore_PutGet(t *testing.T) {
	store, _ := newTestStore(t, 100)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, record("a", 1)))

	rec, found, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1", rec.Columns["metrics:likes"])

	_, found, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_OverwriteByKey(t *testing.T) {
	store, _ := newTestStore(t, 100)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, record("a", 1)))
	require.NoError(t, store.Put(ctx, record("a", 2)))

	rec, found, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2", rec.Columns["metrics:likes"])
	assert.Equal(t, 1, store.Count())
}

func TestStore_OverwriteAcrossFlush(t *testing.T) {
	store, _ := newTestStore(t, 100)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, record("a", 1)))
	require.NoError(t, store.Flush(ctx))
	require.NoError(t, store.Put(ctx, record("a", 2)))

	// Newest value wins whether the older copy is in a segment or not.
	rec, found, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2", rec.Columns["metrics:likes"])

	records, err := store.Scan(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].Columns["metrics:likes"])
}

func TestStore_FlushAtThreshold(t *testing.T) {
	store, _ := newTestStore(t, 10)
	ctx := context.Background()

	var batch []types.ShapedRecord
	for i := 0; i < 25; i++ {
		batch = append(batch, record(fmt.Sprintf("key-%03d", i), i))
	}
	require.NoError(t, store.WriteBatch(ctx, batch))

	assert.Equal(t, 2, store.SegmentCount())
	assert.Equal(t, 25, store.Count())
}

func TestStore_ScanOrderAndLimit(t *testing.T) {
	store, _ := newTestStore(t, 5)
	ctx := context.Background()

	for _, key := range []string{"c", "a", "e", "b", "d"} {
		require.NoError(t, store.Put(ctx, record(key, 0)))
	}

	records, err := store.Scan(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, want, records[i].Key)
	}

	records, err = store.Scan(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[2].Key)
}

func TestStore_Recovery(t *testing.T) {
	objects, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	store, err := Open(ctx, objects, 10)
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		require.NoError(t, store.Put(ctx, record(fmt.Sprintf("key-%03d", i), i)))
	}
	require.NoError(t, store.Close(ctx))

	// Reopen against the same storage.
	reopened, err := Open(ctx, objects, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, reopened.Count())

	rec, found, err := reopened.Get(ctx, "key-013")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "13", rec.Columns["metrics:likes"])

	// New flushes must not collide with recovered segment names.
	require.NoError(t, reopened.Put(ctx, record("zzz", 99)))
	require.NoError(t, reopened.Close(ctx))

	again, err := Open(ctx, objects, 10)
	require.NoError(t, err)
	assert.Equal(t, 26, again.Count())
}

func TestStore_Reset(t *testing.T) {
	store, objects := newTestStore(t, 5)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, store.Put(ctx, record(fmt.Sprintf("key-%03d", i), i)))
	}
	require.NoError(t, store.Flush(ctx))
	require.NotZero(t, store.SegmentCount())

	require.NoError(t, store.Reset(ctx))
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, 0, store.SegmentCount())

	paths, err := objects.List(ctx, "segments")
	require.NoError(t, err)
	assert.Empty(t, paths)

	// Store stays usable after a reset.
	require.NoError(t, store.Put(ctx, record("fresh", 1)))
	assert.Equal(t, 1, store.Count())
}

func TestStore_FlushEmptyIsNoop(t *testing.T) {
	store, _ := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 0, store.SegmentCount())
}

func TestSegment_EncodeDecodeRoundTrip(t *testing.T) {
	var records []types.ShapedRecord
	for i := 0; i < 50; i++ {
		records = append(records, record(fmt.Sprintf("key-%03d", i), i))
	}

	seg := BuildSegment("test", records)
	data, err := seg.Encode()
	require.NoError(t, err)

	decoded, err := DecodeSegment("test", data)
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Len())

	rec, ok := decoded.Get("key-042")
	require.True(t, ok)
	assert.Equal(t, "42", rec.Columns["metrics:likes"])

	assert.True(t, decoded.MayContain("key-007"))
}

func TestSegment_DecodeBadMagic(t *testing.T) {
	_, err := DecodeSegment("bad", []byte("NOPE1234"))
	assert.Error(t, err)
}

func TestSegment_DecodeCorruptRecordIsSkipped(t *testing.T) {
	seg := BuildSegment("test", []types.ShapedRecord{
		record("a", 1),
		record("b", 2),
	})
	data, err := seg.Encode()
	require.NoError(t, err)

	// Flip a byte inside the first record payload. The record is dropped,
	// the rest of the segment survives.
	data[20] ^= 0xFF

	decoded, err := DecodeSegment("test", data)
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.Len())
}
