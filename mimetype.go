package fetchbody

import (
	"mime"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// MimeType is the parsed MIME type of a body's owner.
type MimeType interface {
	// Essence is the lowercase "type/subtype" without parameters.
	Essence() string
	// Serialized is the full MIME type including its parameters.
	Serialized() string
	// Param returns the value of a parameter such as "boundary" or "charset".
	Param(name string) (string, bool)
}

// MediaType is the [MimeType] produced by [ParseMIMEType].
type MediaType struct {
	essence string
	params  map[string]string
}

// ParseMIMEType parses a Content-Type style value.
func ParseMIMEType(s string) (*MediaType, error) {
	essence, params, err := mime.ParseMediaType(s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse mime type %q", s)
	}
	if !strings.Contains(essence, "/") {
		return nil, errors.Newf("mime type %q has no subtype", s)
	}

	return &MediaType{essence: essence, params: params}, nil
}

// MIMETypeFromHeader extracts the MIME type from the Content-Type header. It returns
// nil when the header is absent or cannot be parsed.
func MIMETypeFromHeader(h http.Header) MimeType {
	v := h.Get("Content-Type")
	if v == "" {
		return nil
	}

	mt, err := ParseMIMEType(v)
	if err != nil {
		return nil
	}

	return mt
}

func (m *MediaType) Essence() string { return m.essence }

func (m *MediaType) Serialized() string {
	return mime.FormatMediaType(m.essence, m.params)
}

func (m *MediaType) Param(name string) (string, bool) {
	v, ok := m.params[strings.ToLower(name)]
	return v, ok
}

var _ MimeType = &MediaType{}
