package fetchbody_test

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/advdv/fetchbody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestJSON(t *testing.T) {
	for _, tt := range []struct {
		name  string
		input string
		exp   any
	}{
		{"object", `{"a":1}`, map[string]any{"a": float64(1)}},
		{"array", `[true,null,"x"]`, []any{true, nil, "x"}},
		{"number", `42.5`, 42.5},
		{"bom", "\xEF\xBB\xBF{\"b\":\"c\"}", map[string]any{"b": "c"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rlm, _ := newRealm(t)
			v, err := await(t, rlm, fetchbody.ConsumeJSON(rlm, newOwner(t, fetchbody.BodyFromBytes([]byte(tt.input)), "")))
			require.NoError(t, err)
			require.Equal(t, tt.exp, v)
		})
	}
}

func TestJSONSyntaxError(t *testing.T) {
	for _, input := range []string{"not json", "", `{"a":}`} {
		rlm, _ := newRealm(t)
		_, err := await(t, rlm, fetchbody.ConsumeJSON(rlm, newOwner(t, fetchbody.BodyFromBytes([]byte(input)), "")))
		require.ErrorIs(t, err, fetchbody.ErrMalformedJSON, input)
		require.Equal(t, fetchbody.CodeSyntaxError, fetchbody.CodeOf(err), input)
	}
}

func TestTextPreservesBytes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(rt, "data")
		got, err := fetchbody.ConvertText(data)
		if err != nil || !bytes.Equal([]byte(got), data) {
			rt.Fatalf("text changed the bytes: %q != %q", got, data)
		}
	})
}

func TestArrayBuffer(t *testing.T) {
	rlm, _ := newRealm(t)
	buf, err := await(t, rlm, fetchbody.ConsumeArrayBuffer(rlm, newOwner(t, fetchbody.BodyFromBytes([]byte{1, 2, 3}), "")))
	require.NoError(t, err)
	require.Equal(t, 3, buf.ByteLength())
	require.Equal(t, []byte{1, 2, 3}, buf.Bytes())
}

func TestBlob(t *testing.T) {
	for _, tt := range []struct {
		mimeType string
		expType  string
	}{
		{"", ""},
		{"text/plain", "text/plain"},
		{"Text/HTML; charset=utf-8", "text/html"},
	} {
		t.Run(tt.mimeType, func(t *testing.T) {
			rlm, _ := newRealm(t)
			blob, err := await(t, rlm, fetchbody.ConsumeBlob(rlm, newOwner(t, fetchbody.BodyFromBytes([]byte("hi")), tt.mimeType)))
			require.NoError(t, err)
			require.Equal(t, tt.expType, blob.Type())
			require.Equal(t, 2, blob.Size())
			require.Equal(t, "hi", blob.Text())
		})
	}
}

func TestBlobTypeNormalization(t *testing.T) {
	assert.Equal(t, "image/png", fetchbody.NewBlob(nil, "IMAGE/PNG").Type())
	assert.Empty(t, fetchbody.NewBlob(nil, "text/pläin").Type())
	assert.Empty(t, fetchbody.NewBlob(nil, "text/\nplain").Type())
}

func TestFormDataRejectsOtherMIMETypes(t *testing.T) {
	for _, mimeType := range []string{"", "text/plain", "application/json"} {
		rlm, _ := newRealm(t)
		_, err := await(t, rlm, fetchbody.ConsumeFormData(rlm, newOwner(t, fetchbody.BodyFromBytes([]byte("a=b")), mimeType)))
		require.ErrorIs(t, err, fetchbody.ErrFormMIMEType, mimeType)
		require.True(t, fetchbody.IsTypeError(err), mimeType)
	}
}

func TestFormDataURLEncoded(t *testing.T) {
	rlm, _ := newRealm(t)
	body := fetchbody.BodyFromBytes([]byte("a=1&b=hello+world&a=%C3%A9&&flag&bad=%zz"))

	fd, err := await(t, rlm, fetchbody.ConsumeFormData(rlm, newOwner(t, body, "application/x-www-form-urlencoded")))
	require.NoError(t, err)
	require.Equal(t, 5, fd.Len())

	require.Equal(t, []fetchbody.FormEntry{
		{Name: "a", Value: "1"},
		{Name: "b", Value: "hello world"},
		{Name: "a", Value: "é"},
		{Name: "flag", Value: ""},
		{Name: "bad", Value: "%zz"},
	}, fd.Entries())

	a, ok := fd.Get("a")
	require.True(t, ok)
	require.Equal(t, "1", a.Value)
	require.Len(t, fd.GetAll("a"), 2)
	require.True(t, fd.Has("flag"))
	require.False(t, fd.Has("missing"))
}

func TestFormDataMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "hello"))

	fw, err := mw.CreateFormFile("upload", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("file content"))
	require.NoError(t, err)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="img"; filename="a.png"`)
	hdr.Set("Content-Type", "image/png")
	pw, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = pw.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rlm, _ := newRealm(t)
	fd, err := await(t, rlm, fetchbody.ConsumeFormData(rlm, newOwner(t,
		fetchbody.BodyFromBytes(buf.Bytes()), mw.FormDataContentType())))
	require.NoError(t, err)
	require.Equal(t, 3, fd.Len())

	title, ok := fd.Get("title")
	require.True(t, ok)
	require.False(t, title.IsFile())
	require.Equal(t, "hello", title.Value)

	upload, ok := fd.Get("upload")
	require.True(t, ok)
	require.True(t, upload.IsFile())
	require.Equal(t, "notes.txt", upload.File.Name())
	require.Equal(t, "application/octet-stream", upload.File.Type())
	require.Equal(t, "file content", upload.File.Text())

	img, ok := fd.Get("img")
	require.True(t, ok)
	require.Equal(t, "image/png", img.File.Type())
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img.File.Bytes())
}

func TestFormDataMultipartErrors(t *testing.T) {
	for _, tt := range []struct {
		name     string
		mimeType string
		body     string
	}{
		{"no boundary", "multipart/form-data", "--x--\r\n"},
		{"empty body", "multipart/form-data; boundary=x", ""},
		{"missing name", "multipart/form-data; boundary=x",
			"--x\r\nContent-Disposition: form-data\r\n\r\nv\r\n--x--\r\n"},
		{"truncated", "multipart/form-data; boundary=x",
			"--x\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nv"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rlm, _ := newRealm(t)
			_, err := await(t, rlm, fetchbody.ConsumeFormData(rlm, newOwner(t, fetchbody.BodyFromBytes([]byte(tt.body)), tt.mimeType)))
			require.Error(t, err)
			require.True(t, fetchbody.IsTypeError(err))
		})
	}
}

func TestFormDataMultipartWithoutParts(t *testing.T) {
	rlm, _ := newRealm(t)
	fd, err := await(t, rlm, fetchbody.ConsumeFormData(rlm, newOwner(t,
		fetchbody.BodyFromBytes([]byte("--x--\r\n")), "multipart/form-data; boundary=x")))
	require.NoError(t, err)
	require.Equal(t, 0, fd.Len())
}
