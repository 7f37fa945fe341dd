package binarchive

import (
	"bytes"
	"io"

	"github.com/aalhour/binarchive/internal/checksum"
	"github.com/aalhour/binarchive/internal/compression"
	"github.com/aalhour/binarchive/internal/objectcache"
)

// CompressionType selects the compression algorithm a SnapshotCache
// applies to stored entries.
type CompressionType = compression.Type

// ChecksumType selects the checksum algorithm a SnapshotCache trailers
// its stored entries with.
type ChecksumType = checksum.Type

const (
	// NoCompression stores snapshots uncompressed.
	NoCompression = compression.NoCompression
	// SnappyCompressionType compresses snapshots with Snappy (the default).
	SnappyCompressionType = compression.SnappyCompression
	// ZlibCompressionType compresses snapshots with zlib/flate.
	ZlibCompressionType = compression.ZlibCompression
	// LZ4CompressionType compresses snapshots with LZ4.
	LZ4CompressionType = compression.LZ4Compression
	// ZstdCompressionType compresses snapshots with zstd.
	ZstdCompressionType = compression.ZstdCompression
)

const (
	// ChecksumCRC32C trailers entries with CRC32C.
	ChecksumCRC32C = checksum.TypeCRC32C
	// ChecksumXXHash64 trailers entries with XXHash64.
	ChecksumXXHash64 = checksum.TypeXXHash64
	// ChecksumXXH3 trailers entries with XXH3 (the default).
	ChecksumXXH3 = checksum.TypeXXH3
)

// SnapshotCache stores already-encoded archive bytes keyed by a
// caller-supplied string, so a process that re-serializes the same
// object graph repeatedly (e.g. an unchanged config object re-sent on
// every request) can skip the encode, or skip reading the source again on
// a repeated decode; a cache hit in DeserializeCached is still decoded
// through the archive reader on every call. It is the concrete,
// in-process reference implementation of the cache Serializer.SerializeCached
// and Deserializer.DeserializeCached consult; the archive core itself
// never reaches into it.
type SnapshotCache = objectcache.Cache

// SnapshotCacheOption configures a SnapshotCache.
type SnapshotCacheOption = objectcache.Option

// WithSnapshotCompression selects the compression algorithm applied to
// cached snapshots.
func WithSnapshotCompression(t CompressionType) SnapshotCacheOption {
	return objectcache.WithCompression(t)
}

// WithSnapshotChecksum selects the checksum algorithm used to verify
// cached snapshots.
func WithSnapshotChecksum(t ChecksumType) SnapshotCacheOption {
	return objectcache.WithChecksum(t)
}

// NewSnapshotCache creates a SnapshotCache backed by an in-process LRU
// of the given capacity in bytes.
func NewSnapshotCache(capacityBytes uint64, opts ...SnapshotCacheOption) *SnapshotCache {
	return objectcache.New(capacityBytes, opts...)
}

// SerializeCached behaves like Serialize, except it first consults
// cache for a previously stored snapshot under key and, on a hit, writes
// those bytes to w directly without re-encoding obj. On a miss it
// serializes obj normally, stores the result under key for next time,
// then writes it to w.
func (s *Serializer) SerializeCached(w io.Writer, cache *SnapshotCache, key string, obj Serializable, ctx ...any) error {
	if payload, ok, err := cache.Get(key, 0); err != nil {
		return err
	} else if ok {
		_, err := w.Write(payload)
		return err
	}

	var buf bytes.Buffer
	if err := s.Serialize(&buf, obj, ctx...); err != nil {
		return err
	}

	payload := buf.Bytes()
	if err := cache.Put(key, payload, uint64(len(payload))); err != nil {
		return err
	}

	_, err := w.Write(payload)

	return err
}

// DeserializeCached behaves like Deserialize, except it first consults
// cache for a snapshot stored under key. On a miss, it reads all of r,
// stores the raw bytes under key for next time, then decodes them
// exactly as Deserialize would.
func (d *Deserializer) DeserializeCached(r io.Reader, cache *SnapshotCache, key string, ctx ...any) (Serializable, error) {
	if payload, ok, err := cache.Get(key, 0); err != nil {
		return nil, err
	} else if ok {
		return d.Deserialize(bytes.NewReader(payload), ctx...)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if err := cache.Put(key, payload, uint64(len(payload))); err != nil {
		return nil, err
	}

	return d.Deserialize(bytes.NewReader(payload), ctx...)
}
