// Package objectcache is the reference implementation of the external,
// on-disk-or-in-process cache the archive core's contract describes: a
// cache of already-encoded object snapshots, keyed by a caller-supplied
// string key, that the core never reaches into directly but that a host
// application can consult before paying to re-encode or re-decode an
// object graph it has seen before.
//
// Every entry is compressed (internal/compression) and checksummed
// (internal/checksum, defaulting to its TypeXXH3 checksum) before
// it is stored in the in-process LRU (internal/cache), so a corrupted
// snapshot is detected and rejected before the archive reader ever sees
// its bytes.
//
// Reference: grounded on this module's ancestor key/value store's block
// cache + block trailer design (a cached block is
// [compressed payload][1-byte compression type][4-byte checksum]),
// generalized from SST data blocks to serialized object snapshots.
package objectcache

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/aalhour/binarchive/internal/cache"
	"github.com/aalhour/binarchive/internal/checksum"
	"github.com/aalhour/binarchive/internal/compression"
	"github.com/aalhour/binarchive/internal/logging"
)

// trailerSize is the 1-byte compression type plus 4-byte checksum
// appended after the compressed payload, mirroring the teacher's SST
// block trailer layout.
const trailerSize = 1 + 4

// Cache stores and retrieves encoded object snapshots by string key. A
// zero Cache is not usable; construct one with New.
type Cache struct {
	backing      cache.Cache
	compression  compression.Type
	checksumType checksum.Type
	logger       logging.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithCompression selects the compression algorithm applied to stored
// snapshots. Defaults to compression.SnappyCompression.
func WithCompression(t compression.Type) Option {
	return func(c *Cache) { c.compression = t }
}

// WithChecksum selects the checksum algorithm used to trailer-verify
// stored snapshots. Defaults to checksum.TypeXXH3.
func WithChecksum(t checksum.Type) Option {
	return func(c *Cache) { c.checksumType = t }
}

// WithLogger attaches a logger used to report checksum mismatches at
// Warn level. Defaults to logging.Discard.
func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a Cache backed by an LRU of the given capacity in bytes.
func New(capacityBytes uint64, opts ...Option) *Cache {
	c := &Cache{
		backing:      cache.NewLRUCache(capacityBytes),
		compression:  compression.SnappyCompression,
		checksumType: checksum.TypeXXH3,
		logger:       logging.Discard,
	}

	for _, opt := range opts {
		opt(c)
	}

	if logging.IsNil(c.logger) {
		c.logger = logging.Discard
	}

	return c
}

// keyFor hashes the caller's string key into a cache.CacheKey with
// github.com/zeebo/xxh3. Entry checksums in Put/Get go through
// internal/checksum's own XXH3 instead.
func keyFor(key string) cache.CacheKey {
	return cache.CacheKey{Fingerprint: xxh3.HashString(key)}
}

// Put compresses and checksum-trailers payload, then stores it under key.
// charge is the accounting weight passed through to the backing LRU
// (typically len(payload) before compression).
func (c *Cache) Put(key string, payload []byte, charge uint64) error {
	compressed, err := compression.Compress(c.compression, payload)
	if err != nil {
		return fmt.Errorf("objectcache: compress: %w", err)
	}

	sum := checksum.ComputeChecksum(c.checksumType, compressed, byte(c.compression))

	entry := make([]byte, 0, len(compressed)+trailerSize)
	entry = append(entry, compressed...)
	entry = append(entry, byte(c.compression))
	entry = appendUint32LE(entry, sum)

	c.backing.Insert(keyFor(key), entry, charge)

	return nil
}

// Get looks up key, verifies its checksum, and decompresses the stored
// payload. ok is false if key is absent. A checksum mismatch is reported
// as an error rather than ok=false, since it signals corruption rather
// than a normal cache miss.
func (c *Cache) Get(key string, expectedSize int) (payload []byte, ok bool, err error) {
	h := c.backing.Lookup(keyFor(key))
	if h == nil {
		return nil, false, nil
	}
	defer c.backing.Release(h)

	entry := h.Value()
	if len(entry) < trailerSize {
		return nil, false, fmt.Errorf("objectcache: entry for %q is shorter than its trailer", key)
	}

	compressedEnd := len(entry) - trailerSize
	compressed := entry[:compressedEnd]
	compType := compression.Type(entry[compressedEnd])
	wantSum := readUint32LE(entry[compressedEnd+1:])

	gotSum := checksum.ComputeChecksum(c.checksumType, compressed, entry[compressedEnd])
	if gotSum != wantSum {
		c.logger.Warnf(logging.NSCache+"checksum mismatch for %q: got %#x, want %#x", key, gotSum, wantSum)
		return nil, false, fmt.Errorf("objectcache: checksum mismatch for %q: got %#x, want %#x", key, gotSum, wantSum)
	}

	var out []byte
	if expectedSize > 0 {
		out, err = compression.DecompressWithSize(compType, compressed, expectedSize)
	} else {
		out, err = compression.Decompress(compType, compressed)
	}

	if err != nil {
		return nil, false, fmt.Errorf("objectcache: decompress: %w", err)
	}

	return out, true, nil
}

// Erase removes key from the cache, if present.
func (c *Cache) Erase(key string) {
	c.backing.Erase(keyFor(key))
}

func appendUint32LE(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func readUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
