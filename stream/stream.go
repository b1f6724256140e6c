// Package stream implements a readable byte stream that can be locked by a single
// reader, is marked disturbed once read from, and can be teed into two branches that
// each keep their own read position over one shared underlying source.
package stream

import (
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
)

// DefaultChunkSize is the size of the chunks pulled from an underlying io.Reader.
const DefaultChunkSize = 32 * 1024

var (
	// ErrLocked is returned when a reader is requested for, or the stream is teed or
	// canceled while, another reader holds the lock.
	ErrLocked = errors.New("stream is locked")
	// ErrReleased is returned when reading from a reader whose lock has been released.
	ErrReleased = errors.New("reader lock was released")
	// ErrCanceled is returned when reading from a branch that has been canceled.
	ErrCanceled = errors.New("stream was canceled")
)

// Stream is one handle into a shared byte source. Branches created by [Stream.Tee]
// are themselves Streams over the same source.
type Stream struct {
	mu        sync.Mutex
	src       *source
	cursor    int
	disturbed bool
	locked    bool
	canceled  bool
}

// FromReader creates a stream that pulls its bytes from r. If r implements io.Closer
// it is closed once the stream reached its end, errored, or every branch was canceled.
func FromReader(r io.Reader) *Stream {
	return FromReaderSize(r, DefaultChunkSize)
}

// FromReaderSize is like [FromReader] but pulls chunks of at most size bytes.
func FromReaderSize(r io.Reader, size int) *Stream {
	if size <= 0 {
		size = DefaultChunkSize
	}

	return newStream(&source{r: r, chunkSize: size})
}

// FromBytes creates a stream that yields b as a single chunk and then ends.
func FromBytes(b []byte) *Stream {
	src := &source{done: true}
	if len(b) > 0 {
		src.chunks = [][]byte{b}
	}

	return newStream(src)
}

// Empty creates a stream that is already at its end.
func Empty() *Stream {
	return newStream(&source{done: true})
}

// Errored creates a stream whose first read fails with err.
func Errored(err error) *Stream {
	return newStream(&source{done: true, err: err})
}

func newStream(src *source) *Stream {
	return &Stream{src: src, cursor: src.open(src.base)}
}

// IsDisturbed reports whether a read was ever initiated against the stream.
func (s *Stream) IsDisturbed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.disturbed
}

// IsLocked reports whether the stream is held by a reader or was teed.
func (s *Stream) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.locked
}

// MarkDisturbed flags the stream as disturbed without reading from it. It is used
// when the stream's bytes are already known and are delivered some other way.
func (s *Stream) MarkDisturbed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disturbed = true
}

// Tee splits the stream into two branches that start at the current read position
// and advance independently. The teed stream stays locked afterwards.
func (s *Stream) Tee() (*Stream, *Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return nil, nil, errors.Wrap(ErrLocked, "tee")
	}
	if s.canceled {
		return nil, nil, errors.Wrap(ErrCanceled, "tee")
	}

	s.locked = true
	b1, b2 := s.src.fork(s.cursor)

	return &Stream{src: s.src, cursor: b1}, &Stream{src: s.src, cursor: b2}, nil
}

// GetReader locks the stream to a new reader.
func (s *Stream) GetReader() (*Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return nil, errors.Wrap(ErrLocked, "get reader")
	}

	s.locked = true

	return &Reader{s: s}, nil
}

// Cancel marks the stream disturbed and gives up its read position. The underlying
// source is closed when no branch is left that could still read from it.
func (s *Stream) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return errors.Wrap(ErrLocked, "cancel")
	}

	s.cancelLocked()

	return nil
}

func (s *Stream) cancelLocked() {
	s.disturbed = true
	if s.canceled {
		return
	}

	s.canceled = true
	s.src.drop(s.cursor)
}

// Reader reads chunks from a locked stream.
type Reader struct {
	mu       sync.Mutex
	s        *Stream
	released bool
}

// Read returns the next chunk of the stream, or io.EOF once the stream ended. The
// context is only checked between chunks: a pull from the underlying io.Reader that
// is already in progress is not interrupted.
func (r *Reader) Read(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return nil, ErrReleased
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	r.s.disturbed = true
	canceled, cursor := r.s.canceled, r.s.cursor
	r.s.mu.Unlock()

	if canceled {
		return nil, ErrCanceled
	}

	return r.s.src.pull(cursor)
}

// ReadAll reads until the end of the stream and returns every byte read.
func (r *Reader) ReadAll(ctx context.Context) ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.Read(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}

		out = append(out, chunk...)
	}
}

// Cancel cancels the stream through the reader and releases the lock.
func (r *Reader) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}

	r.released = true
	r.s.mu.Lock()
	r.s.cancelLocked()
	r.s.locked = false
	r.s.mu.Unlock()
}

// ReleaseLock releases the stream so another reader can be acquired.
func (r *Reader) ReleaseLock() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}

	r.released = true
	r.s.mu.Lock()
	r.s.locked = false
	r.s.mu.Unlock()
}
