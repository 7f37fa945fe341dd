package archive

import (
	"sync"

	"github.com/aalhour/binarchive/internal/iosink"
)

// WriterPool reuses Writer instances (and their backing per-pass type/
// object tables) across independent encode passes, since each Writer's
// internal maps would otherwise be reallocated from scratch per call.
// Get always returns a Writer with its tables already Reset; Put resets
// again before returning it to the pool so a caller that forgets to call
// Reset itself still can't leak one pass's ids into the next.
//
// Reference: grounded on this module's ancestor store's WriteBatchPool
// (internal/batch/pool.go) — a sync.Pool of reusable, Clear()-on-Get
// write buffers — generalized from a byte buffer to a stateful Writer.
type WriterPool struct {
	pool sync.Pool
}

// NewWriterPool creates an empty WriterPool. Every Writer it hands out is
// constructed against registry and opts, exactly as NewWriter would build
// it standalone.
func NewWriterPool(registry *Registry, opts ...WriterOption) *WriterPool {
	p := &WriterPool{}

	p.pool.New = func() any {
		return NewWriter(nil, registry, opts...)
	}

	return p
}

// Get retrieves a Writer bound to out, with its per-pass tables reset.
func (p *WriterPool) Get(out iosink.Writer) *Writer {
	w, _ := p.pool.Get().(*Writer)
	w.Reset()
	w.rawOut = out
	w.out = &writeStreamGuard{inner: out, owner: w}

	return w
}

// Put clears w's per-pass tables and returns it to the pool.
func (p *WriterPool) Put(w *Writer) {
	if w == nil {
		return
	}

	w.Reset()
	w.out = nil
	p.pool.Put(w)
}

// ReaderPool is the decode-side counterpart of WriterPool.
type ReaderPool struct {
	pool sync.Pool
}

// NewReaderPool creates an empty ReaderPool. Every Reader it hands out is
// constructed against registry and opts, exactly as NewReader would build
// it standalone.
func NewReaderPool(registry *Registry, opts ...ReaderOption) *ReaderPool {
	p := &ReaderPool{}

	p.pool.New = func() any {
		return NewReader(nil, registry, opts...)
	}

	return p
}

// Get retrieves a Reader bound to in, with its per-pass tables reset.
func (p *ReaderPool) Get(in iosink.Reader) *Reader {
	r, _ := p.pool.Get().(*Reader)
	r.Reset()
	r.rawIn = in
	r.in = &readStreamGuard{inner: in, owner: r}

	return r
}

// Put clears r's per-pass tables and returns it to the pool.
func (p *ReaderPool) Put(r *Reader) {
	if r == nil {
		return
	}

	r.Reset()
	r.in = nil
	p.pool.Put(r)
}
