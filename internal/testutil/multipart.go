package testutil

import (
	"bytes"
	"io"
	"mime/multipart"
	"testing"
)

// Upload describes a multipart form with an optional file part.
type Upload struct {
	FileField   string
	FileName    string
	FileContent []byte
	Fields      map[string]string
}

// MultipartBody encodes the upload and returns the body and its content type.
func MultipartBody(t testing.TB, u Upload) (io.Reader, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range u.Fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("writing field %s: %v", k, err)
		}
	}
	if u.FileName != "" {
		field := u.FileField
		if field == "" {
			field = "file"
		}
		part, err := w.CreateFormFile(field, u.FileName)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write(u.FileContent); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}
