package stream

import (
	"io"
	"sync"

	"github.com/cockroachdb/errors"
)

// maxEmptyReads bounds consecutive (0, nil) reads from the underlying reader.
const maxEmptyReads = 100

// source is the byte producer shared by every branch of a stream. Chunks are kept
// until every open cursor moved past them.
type source struct {
	mu        sync.Mutex
	r         io.Reader
	chunkSize int
	chunks    [][]byte
	base      int         // absolute index of chunks[0]
	cursors   map[int]int // cursor id to absolute chunk index
	nextID    int
	done      bool
	err       error
	closed    bool
}

func (src *source) open(pos int) int {
	if src.cursors == nil {
		src.cursors = make(map[int]int)
	}

	id := src.nextID
	src.nextID++
	src.cursors[id] = pos

	return id
}

func (src *source) fork(id int) (int, int) {
	src.mu.Lock()
	defer src.mu.Unlock()

	pos, ok := src.cursors[id]
	if !ok {
		pos = src.base
	}
	delete(src.cursors, id)

	return src.open(pos), src.open(pos)
}

func (src *source) drop(id int) {
	src.mu.Lock()
	defer src.mu.Unlock()

	delete(src.cursors, id)
	if len(src.cursors) == 0 {
		src.chunks = nil
		src.closeLocked()
		return
	}

	src.compactLocked()
}

func (src *source) pull(id int) ([]byte, error) {
	src.mu.Lock()
	defer src.mu.Unlock()

	pos, ok := src.cursors[id]
	if !ok {
		return nil, ErrCanceled
	}

	if pos >= src.base+len(src.chunks) && !src.done {
		src.fillLocked()
	}

	if pos < src.base+len(src.chunks) {
		chunk := src.chunks[pos-src.base]
		src.cursors[id] = pos + 1
		src.compactLocked()

		return chunk, nil
	}

	if src.err != nil {
		return nil, src.err
	}

	return nil, io.EOF
}

// fillLocked pulls from the underlying reader until one chunk was appended or the
// reader is exhausted.
func (src *source) fillLocked() {
	for empty := 0; ; empty++ {
		if empty >= maxEmptyReads {
			src.finishLocked(io.ErrNoProgress)
			return
		}

		buf := make([]byte, src.chunkSize)
		n, err := src.r.Read(buf)
		if n > 0 {
			src.chunks = append(src.chunks, buf[:n:n])
		}

		switch {
		case errors.Is(err, io.EOF):
			src.finishLocked(nil)
			return
		case err != nil:
			src.finishLocked(errors.Wrap(err, "read underlying source"))
			return
		case n > 0:
			return
		}
	}
}

func (src *source) finishLocked(err error) {
	src.done = true
	src.err = err
	src.closeLocked()
}

func (src *source) closeLocked() {
	if src.closed {
		return
	}

	src.closed = true
	if c, ok := src.r.(io.Closer); ok {
		_ = c.Close()
	}
}

// compactLocked forgets chunks that every open cursor has read past.
func (src *source) compactLocked() {
	low := -1
	for _, pos := range src.cursors {
		if low < 0 || pos < low {
			low = pos
		}
	}

	if low <= src.base {
		return
	}

	n := min(low-src.base, len(src.chunks))
	clear(src.chunks[:n])
	src.chunks = src.chunks[n:]
	src.base += n
}
