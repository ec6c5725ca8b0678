package util

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestHashUserKey(t *testing.T) {
	id := "google:12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if len(got) != 64 || strings.Trim(got, "0123456789abcdef") != "" {
		t.Fatalf("expected 64 hex characters, got %q", got)
	}
}

func TestOwnsKey(t *testing.T) {
	key := HashUserKey("user-1") + "/photo.png"
	tests := []struct {
		name  string
		owner string
		key   string
		want  bool
	}{
		{name: "owner", owner: "user-1", key: key, want: true},
		{name: "leading slash", owner: "user-1", key: "/" + key, want: true},
		{name: "other user", owner: "user-2", key: key},
		{name: "no owner", owner: "", key: key},
		{name: "traversal", owner: "user-1", key: HashUserKey("user-1") + "/../x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OwnsKey(tt.owner, tt.key); got != tt.want {
				t.Fatalf("OwnsKey = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "me.png", want: "me.png"},
		{name: "separators", in: "a/b\\c.jpg", want: "a_b_c.jpg"},
		{name: "control chars", in: "me\x00\n.png", want: "me.png"},
		{name: "traversal", in: "../etc/passwd", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFileName) {
					t.Fatalf("expected ErrInvalidFileName, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}

	long := strings.Repeat("é", 300) + ".webp"
	got, err := SanitizeFileName(long)
	if err != nil {
		t.Fatalf("long name: %v", err)
	}
	if utf8.RuneCountInString(got) != maxFileNameRunes || !strings.HasSuffix(got, ".webp") {
		t.Fatalf("expected truncated name keeping extension, got %d runes", utf8.RuneCountInString(got))
	}
}
