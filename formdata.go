package fetchbody

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	mimeMultipartForm  = "multipart/form-data"
	mimeURLEncodedForm = "application/x-www-form-urlencoded"
)

// FormEntry is a single name/value pair of form data. File is set for file
// entries, Value otherwise.
type FormEntry struct {
	Name  string
	Value string
	File  *File
}

// IsFile reports whether the entry holds a file.
func (e FormEntry) IsFile() bool { return e.File != nil }

// FormData is an ordered list of form entries. Names may repeat.
type FormData struct {
	entries []FormEntry
}

// NewFormData creates form data holding entries in order.
func NewFormData(entries ...FormEntry) *FormData {
	return &FormData{entries: entries}
}

// Entries returns every entry in order.
func (f *FormData) Entries() []FormEntry { return f.entries }

// Len returns the number of entries.
func (f *FormData) Len() int { return len(f.entries) }

// Get returns the first entry with the given name.
func (f *FormData) Get(name string) (FormEntry, bool) {
	return lo.Find(f.entries, func(e FormEntry) bool { return e.Name == name })
}

// GetAll returns every entry with the given name.
func (f *FormData) GetAll(name string) []FormEntry {
	return lo.Filter(f.entries, func(e FormEntry, _ int) bool { return e.Name == name })
}

// Has reports whether an entry with the given name exists.
func (f *FormData) Has(name string) bool {
	return lo.ContainsBy(f.entries, func(e FormEntry) bool { return e.Name == name })
}

// parseMultipartForm decodes a multipart/form-data payload as described in RFC 7578.
func parseMultipartForm(data []byte, boundary string) ([]FormEntry, error) {
	mr := multipart.NewReader(bytes.NewReader(data), boundary)

	var entries []FormEntry
	for {
		part, err := mr.NextPart()
		if err == io.EOF { //nolint:errorlint // only an unwrapped EOF marks the closing boundary
			return entries, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "next part")
		}

		entry, err := decodePart(part)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}
}

func decodePart(part *multipart.Part) (FormEntry, error) {
	disposition, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return FormEntry{}, errors.Wrap(err, "parse content disposition")
	}
	if disposition != "form-data" {
		return FormEntry{}, errors.Newf("unexpected content disposition %q", disposition)
	}

	name, ok := params["name"]
	if !ok {
		return FormEntry{}, errors.New("form part without name")
	}

	content, err := io.ReadAll(part)
	if err != nil {
		return FormEntry{}, errors.Wrapf(err, "read part %q", name)
	}

	filename, isFile := params["filename"]
	if !isFile {
		return FormEntry{Name: name, Value: decodeUTF8(content)}, nil
	}

	typ := part.Header.Get("Content-Type")
	if typ == "" {
		typ = "text/plain"
	}

	return FormEntry{Name: name, File: NewFile(content, filename, typ)}, nil
}

// parseURLEncoded decodes an application/x-www-form-urlencoded payload. It never
// fails: malformed percent escapes are kept as they are.
func parseURLEncoded(input []byte) []FormEntry {
	var entries []FormEntry
	for _, seq := range bytes.Split(input, []byte("&")) {
		if len(seq) == 0 {
			continue
		}

		name, value, _ := bytes.Cut(seq, []byte("="))
		entries = append(entries, FormEntry{
			Name:  decodeUTF8(percentDecode(name)),
			Value: decodeUTF8(percentDecode(value)),
		})
	}

	return entries
}

// percentDecode decodes %XX escapes and turns '+' into a space.
func percentDecode(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		switch c := b[i]; {
		case c == '+':
			out = append(out, ' ')
		case c == '%' && i+2 < len(b) && isHex(b[i+1]) && isHex(b[i+2]):
			out = append(out, unhex(b[i+1])<<4|unhex(b[i+2]))
			i += 2
		default:
			out = append(out, c)
		}
	}

	return out
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}

// decodeUTF8 decodes b as UTF-8 without BOM, replacing invalid sequences.
func decodeUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
