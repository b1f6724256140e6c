package fetchbody

import "strings"

// ArrayBuffer is a fixed-length sequence of bytes.
type ArrayBuffer struct {
	data []byte
}

// NewArrayBuffer wraps b without copying it.
func NewArrayBuffer(b []byte) *ArrayBuffer {
	return &ArrayBuffer{data: b}
}

// ByteLength returns the number of bytes in the buffer.
func (a *ArrayBuffer) ByteLength() int { return len(a.data) }

// Bytes returns the buffer's bytes. The returned slice must not be appended to.
func (a *ArrayBuffer) Bytes() []byte { return a.data[:len(a.data):len(a.data)] }

// Blob is immutable binary data tagged with a MIME type.
type Blob struct {
	data []byte
	typ  string
}

// NewBlob creates a blob. The type is lowercased, and dropped entirely when it holds
// characters outside printable ASCII.
func NewBlob(data []byte, typ string) *Blob {
	return &Blob{data: data, typ: normalizeBlobType(typ)}
}

func normalizeBlobType(typ string) string {
	for i := range len(typ) {
		if typ[i] < 0x20 || typ[i] > 0x7e {
			return ""
		}
	}

	return strings.ToLower(typ)
}

// Size returns the number of bytes in the blob.
func (b *Blob) Size() int { return len(b.data) }

// Type returns the blob's MIME type, or the empty string if it has none.
func (b *Blob) Type() string { return b.typ }

// Bytes returns the blob's bytes. The returned slice must not be modified.
func (b *Blob) Bytes() []byte { return b.data }

// Text returns the blob's bytes as a string.
func (b *Blob) Text() string { return string(b.data) }

// File is a blob with a file name, as found in multipart form data.
type File struct {
	*Blob
	name string
}

// NewFile creates a named blob.
func NewFile(data []byte, name, typ string) *File {
	return &File{Blob: NewBlob(data, typ), name: name}
}

// Name returns the file name.
func (f *File) Name() string { return f.name }
