package fetchbody

import (
	"github.com/advdv/fetchbody/stream"
	"github.com/cockroachdb/errors"
)

// Mixin implements [Owner] and the consumption methods. Embed it in request,
// response or other content-carrying types.
type Mixin struct {
	body     *Body
	mimeType MimeType
}

// NewMixin creates a mixin holding body and mimeType. Either may be nil.
func NewMixin(body *Body, mimeType MimeType) Mixin {
	return Mixin{body: body, mimeType: mimeType}
}

// Body implements [Owner].
func (m *Mixin) Body() *Body { return m.body }

// MIMEType implements [Owner].
func (m *Mixin) MIMEType() MimeType { return m.mimeType }

// SetBody attaches a body and its MIME type.
func (m *Mixin) SetBody(body *Body, mimeType MimeType) {
	m.body, m.mimeType = body, mimeType
}

// Stream returns the body's stream, or nil without a body.
func (m *Mixin) Stream() *stream.Stream { return BodyStream(m) }

// BodyUsed reports whether the body's stream was read from.
func (m *Mixin) BodyUsed() bool { return BodyUsed(m) }

// IsUnusable reports whether the body can no longer be consumed.
func (m *Mixin) IsUnusable() bool { return IsUnusable(m) }

// ArrayBuffer consumes the body as raw bytes. See [ConsumeArrayBuffer].
func (m *Mixin) ArrayBuffer(rlm *Realm) *Promise[*ArrayBuffer] { return ConsumeArrayBuffer(rlm, m) }

// Blob consumes the body as a [Blob] typed with the mixin's MIME type. See [ConsumeBlob].
func (m *Mixin) Blob(rlm *Realm) *Promise[*Blob] { return ConsumeBlob(rlm, m) }

// FormData decodes the body as multipart or urlencoded form data. See [ConsumeFormData].
func (m *Mixin) FormData(rlm *Realm) *Promise[*FormData] { return ConsumeFormData(rlm, m) }

// JSON parses the body as a JSON value. See [ConsumeJSON].
func (m *Mixin) JSON(rlm *Realm) *Promise[any] { return ConsumeJSON(rlm, m) }

// Text decodes the body as a string. See [ConsumeText].
func (m *Mixin) Text(rlm *Realm) *Promise[string] { return ConsumeText(rlm, m) }

// CloneBody returns a mixin with a clone of the body and the same MIME type. It
// fails with a type error when the body is unusable.
func (m *Mixin) CloneBody() (Mixin, error) {
	if m.IsUnusable() {
		return Mixin{}, NewError(CodeTypeError, errors.Wrap(ErrUnusable, "clone"))
	}
	if m.body == nil {
		return Mixin{mimeType: m.mimeType}, nil
	}

	body, err := m.body.Clone()
	if err != nil {
		return Mixin{}, err
	}

	return Mixin{body: body, mimeType: m.mimeType}, nil
}

var _ Owner = &Mixin{}
