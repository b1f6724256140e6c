package fetchbody

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ConsumeArrayBuffer consumes the owner's body as an [ArrayBuffer].
func ConsumeArrayBuffer(rlm *Realm, owner Owner) *Promise[*ArrayBuffer] {
	return Consume(rlm, owner, OpArrayBuffer, ConvertArrayBuffer)
}

// ConsumeBlob consumes the owner's body as a [Blob] typed with the owner's MIME type.
func ConsumeBlob(rlm *Realm, owner Owner) *Promise[*Blob] {
	return Consume(rlm, owner, OpBlob, BlobConverter(owner))
}

// ConsumeFormData consumes the owner's body as [FormData]. Only multipart and urlencoded
// bodies can be decoded; any other MIME type rejects with a type error.
func ConsumeFormData(rlm *Realm, owner Owner) *Promise[*FormData] {
	return Consume(rlm, owner, OpFormData, FormDataConverter(owner))
}

// ConsumeJSON consumes the owner's body as a JSON value: nil, bool, float64, string,
// []any or map[string]any.
func ConsumeJSON(rlm *Realm, owner Owner) *Promise[any] {
	return Consume(rlm, owner, OpJSON, ConvertJSON)
}

// ConsumeText consumes the owner's body as a string holding exactly the body's bytes.
func ConsumeText(rlm *Realm, owner Owner) *Promise[string] {
	return Consume(rlm, owner, OpText, ConvertText)
}

// ConvertArrayBuffer wraps the bytes in an [ArrayBuffer].
func ConvertArrayBuffer(data []byte) (*ArrayBuffer, error) {
	return NewArrayBuffer(data), nil
}

// ConvertText returns the bytes as a string.
func ConvertText(data []byte) (string, error) {
	return string(data), nil
}

// ConvertJSON parses the bytes as JSON, ignoring a leading UTF-8 byte order mark.
func ConvertJSON(data []byte) (any, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !gjson.ValidBytes(data) {
		return nil, NewError(CodeSyntaxError, errors.Wrap(ErrMalformedJSON, "parse json"))
	}

	return gjson.ParseBytes(data).Value(), nil
}

// BlobConverter returns a converter that tags the bytes with the owner's MIME type
// essence, looked up when the bytes arrive.
func BlobConverter(owner Owner) ConvertFunc[*Blob] {
	return func(data []byte) (*Blob, error) {
		var typ string
		if mt := owner.MIMEType(); mt != nil {
			typ = mt.Essence()
		}

		return NewBlob(data, typ), nil
	}
}

// FormDataConverter returns a converter that decodes the bytes according to the
// owner's MIME type, looked up when the bytes arrive.
func FormDataConverter(owner Owner) ConvertFunc[*FormData] {
	return func(data []byte) (*FormData, error) {
		mt := owner.MIMEType()
		if mt == nil {
			return nil, NewError(CodeTypeError, ErrFormMIMEType)
		}

		switch mt.Essence() {
		case mimeMultipartForm:
			boundary, ok := mt.Param("boundary")
			if !ok || boundary == "" {
				return nil, NewError(CodeTypeError, errors.New("multipart form data without boundary"))
			}

			entries, err := parseMultipartForm(data, boundary)
			if err != nil {
				return nil, NewError(CodeTypeError, errors.Wrap(err, "parse multipart form data"))
			}

			return NewFormData(entries...), nil
		case mimeURLEncodedForm:
			return NewFormData(parseURLEncoded(data)...), nil
		default:
			return nil, NewError(CodeTypeError, errors.Wrapf(ErrFormMIMEType, "got %q", mt.Essence()))
		}
	}
}
