package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p>
<w:p><w:r><w:t>Analyst</w:t><w:tab/><w:t>London</w:t></w:r></w:p>
<w:p></w:p><w:p></w:p>
<w:p><w:r><w:t>Wrote the first program</w:t></w:r></w:p>
</w:body></w:document>`

func TestTextFromDOCX(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})

	tests := []struct {
		name string
		mime string
		file string
	}{
		{name: "declared docx", mime: MimeDOCX, file: "cv.docx"},
		{name: "zip mime", mime: "application/zip", file: "cv.docx"},
		{name: "octet stream", mime: "application/octet-stream", file: "upload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(context.Background(), data, tt.mime, tt.file)
			if err != nil {
				t.Fatalf("Text: %v", err)
			}
			want := "Ada Lovelace\nAnalyst London\n\nWrote the first program"
			if got != want {
				t.Fatalf("unexpected text %q", got)
			}
		})
	}
}

func TestTextRejectsPlainZip(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})
	_, err := Text(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTextEmptyDocument(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": `<w:document xmlns:w="x"><w:body><w:p/></w:body></w:document>`})
	if _, err := Text(context.Background(), data, MimeDOCX, "blank.docx"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestTextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Text(ctx, []byte("%PDF-1.4"), MimePDF, "cv.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDetectMime(t *testing.T) {
	tests := []struct {
		name string
		mime string
		file string
		data []byte
		want string
	}{
		{name: "pdf magic", mime: "application/octet-stream", data: []byte("%PDF-1.7\n"), want: MimePDF},
		{name: "pdf ext", mime: "", file: "cv.PDF", data: []byte("??"), want: MimePDF},
		{name: "params stripped", mime: "application/pdf; charset=binary", want: MimePDF},
		{name: "other type kept", mime: "image/png", file: "a.pdf", want: "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMime(tt.mime, tt.file, tt.data); got != tt.want {
				t.Fatalf("DetectMime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
