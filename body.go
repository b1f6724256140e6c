package fetchbody

import (
	"bytes"
	"context"
	"io"

	"github.com/advdv/fetchbody/stream"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Source records where a body's bytes came from. The zero value means the bytes
// are only available through the stream.
type Source struct {
	bytes []byte
	known bool
}

// KnownBytes is the source of a body whose complete content is already in memory.
func KnownBytes(b []byte) Source {
	return Source{bytes: b, known: true}
}

// Bytes returns the known bytes, if any.
func (s Source) Bytes() ([]byte, bool) {
	return s.bytes, s.known
}

func (s Source) clone() Source {
	if !s.known {
		return s
	}

	return Source{bytes: bytes.Clone(s.bytes), known: true}
}

// Body is content attached to a request, response or any other owner. It is
// consumed at most once, through its stream.
type Body struct {
	id     uuid.UUID
	stream *stream.Stream
	source Source
	length *int64
}

// NewBody creates a body that is only readable through s.
func NewBody(s *stream.Stream) *Body {
	return &Body{id: uuid.New(), stream: s}
}

// NewBodyWithSource creates a body with a known source and an optional length. The
// length must match the known bytes when both are given.
func NewBodyWithSource(s *stream.Stream, src Source, length *int64) (*Body, error) {
	if s == nil {
		return nil, errors.New("body requires a stream")
	}
	if length != nil && *length < 0 {
		return nil, errors.Newf("negative body length %d", *length)
	}
	if b, ok := src.Bytes(); ok && length != nil && int64(len(b)) != *length {
		return nil, errors.Newf("body length %d does not match %d known bytes", *length, len(b))
	}

	return &Body{id: uuid.New(), stream: s, source: src, length: length}, nil
}

// BodyFromBytes returns b as a body: a stream yielding b, b as known source, and
// len(b) as length.
func BodyFromBytes(b []byte) *Body {
	return &Body{
		id:     uuid.New(),
		stream: stream.FromBytes(b),
		source: KnownBytes(b),
		length: lo.ToPtr(int64(len(b))),
	}
}

// BodyFromReader returns a body streaming from r, with an optional length hint.
func BodyFromReader(r io.Reader, length *int64) *Body {
	if length != nil && *length < 0 {
		length = nil
	}

	return &Body{id: uuid.New(), stream: stream.FromReader(r), length: length}
}

// ID identifies the body in logs and traces. Clones get a new id.
func (b *Body) ID() uuid.UUID { return b.id }

// Stream returns the stream the body is currently bound to.
func (b *Body) Stream() *stream.Stream { return b.stream }

// Source returns the body's source.
func (b *Body) Source() Source { return b.source }

// Length returns the length hint, if any.
func (b *Body) Length() (int64, bool) {
	if b.length == nil {
		return 0, false
	}

	return *b.length, true
}

// Clone tees the body's stream. The receiver is rebound to the first branch and the
// returned body reads from the second, so no handle to the teed stream remains.
func (b *Body) Clone() (*Body, error) {
	out1, out2, err := b.stream.Tee()
	if err != nil {
		return nil, NewError(CodeTee, errors.Wrap(err, "clone body"))
	}

	b.stream = out1

	var length *int64
	if b.length != nil {
		length = lo.ToPtr(*b.length)
	}

	return &Body{
		id:     uuid.New(),
		stream: out2,
		source: b.source.clone(),
		length: length,
	}, nil
}

// FullyRead reads the whole body and queues exactly one task on dest: processBody
// with the bytes, or processBodyError with the read failure. Neither ever runs
// before FullyRead returned. A nil dest runs the task on a new goroutine.
func (b *Body) FullyRead(processBody func([]byte), processBodyError func(error), dest TaskDestination) {
	if dest == nil {
		dest = parallelDestination{}
	}

	successSteps := func(data []byte) {
		dest.Enqueue(func() { processBody(data) })
	}
	errorSteps := func(err error) {
		dest.Enqueue(func() { processBodyError(err) })
	}

	if data, ok := b.source.Bytes(); ok {
		b.stream.MarkDisturbed()
		successSteps(bytes.Clone(data))
		return
	}

	reader, err := b.stream.GetReader()
	if err != nil {
		errorSteps(errors.Wrap(err, "get reader"))
		return
	}

	go func() {
		data, err := readAllBytes(reader, lo.FromPtrOr(b.length, 0))
		reader.ReleaseLock()
		if err != nil {
			errorSteps(err)
			return
		}

		successSteps(data)
	}()
}

// maxPrealloc caps how much a length hint may preallocate.
const maxPrealloc = 16 << 20

func readAllBytes(reader *stream.Reader, hint int64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(min(hint, maxPrealloc)))

	ctx := context.Background()
	for {
		chunk, err := reader.Read(ctx)
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read body")
		}

		buf.Write(chunk)
	}
}
