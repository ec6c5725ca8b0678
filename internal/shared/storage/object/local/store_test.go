package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-builder/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	obj, err := store.Save(ctx, "user-1", "me.png", strings.NewReader("\x89PNG\r\n\x1a\nrest"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if obj.MimeType != "image/png" {
		t.Fatalf("expected image/png, got %q", obj.MimeType)
	}
	if obj.Size != 12 {
		t.Fatalf("expected size 12, got %d", obj.Size)
	}
	if !strings.HasSuffix(obj.Key, "_me.png") || strings.Contains(obj.Key, "user-1") {
		t.Fatalf("unexpected key %q", obj.Key)
	}

	ok, err := store.Exists(ctx, obj.Key)
	if err != nil || !ok {
		t.Fatalf("expected object to exist, ok=%v err=%v", ok, err)
	}

	rc, err := store.Open(ctx, obj.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "\x89PNG\r\n\x1a\nrest" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Open(ctx, obj.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../etc/passwd", "/abs/path", ""} {
		if _, err := store.Exists(context.Background(), key); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}
