package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
)

// MaxPhotoBytes bounds an uploaded profile photo.
const MaxPhotoBytes = 4 << 20

var (
	ErrNotFound        = errors.New("photo not found")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("photo too large")
)

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Service stores profile photos in the object store. Documents keep only the
// returned key; rendering resolves it back to a URL.
type Service struct {
	Store   object.ObjectStore
	BaseURL string
}

// NewService constructs a Service serving photos under baseURL.
func NewService(store object.ObjectStore, baseURL string) *Service {
	return &Service{Store: store, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Upload stores r for ownerID and returns the object. Anything that does not
// sniff as JPEG, PNG or WebP is removed again and rejected.
func (s *Service) Upload(ctx context.Context, ownerID, fileName string, r io.Reader) (object.Object, error) {
	limited := &io.LimitedReader{R: r, N: MaxPhotoBytes + 1}
	obj, err := s.Store.Save(ctx, ownerID, fileName, limited)
	if err != nil {
		return object.Object{}, fmt.Errorf("save photo: %w", err)
	}
	switch {
	case obj.Size > MaxPhotoBytes:
		s.discard(ctx, obj.Key)
		return object.Object{}, ErrTooLarge
	case !allowed(obj.MimeType):
		s.discard(ctx, obj.Key)
		return object.Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, obj.MimeType)
	}
	return obj, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("photos.discard_failed", map[string]any{"key": key, "error": err})
	}
}

// Open returns the stored photo bytes.
func (s *Service) Open(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if errors.Is(err, object.ErrNotFound) || errors.Is(err, object.ErrInvalidKey) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, MaxPhotoBytes))
}

// Delete removes a photo owned by ownerID.
func (s *Service) Delete(ctx context.Context, ownerID, key string) error {
	if !OwnedBy(ownerID, key) {
		return ErrNotFound
	}
	return s.Store.Delete(ctx, key)
}

// OwnedBy reports whether key lives in ownerID's namespace.
func OwnedBy(ownerID, key string) bool {
	return util.OwnsKey(ownerID, key)
}

// URL is the public address of key.
func (s *Service) URL(key string) string {
	return s.BaseURL + "/" + strings.TrimLeft(key, "/")
}

// ResolvePhoto implements render.PhotoResolver. A key that no longer points
// at a stored object resolves to nothing so the photo is left out.
func (s *Service) ResolvePhoto(ctx context.Context, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	ok, err := s.Store.Exists(ctx, key)
	if err != nil {
		if !errors.Is(err, object.ErrInvalidKey) {
			telemetry.Warn("photos.resolve_failed", map[string]any{"key": key, "error": err})
		}
		return "", false
	}
	if !ok {
		return "", false
	}
	return s.URL(key), true
}

func allowed(mime string) bool {
	_, ok := allowedTypes[strings.ToLower(strings.TrimSpace(strings.Split(mime, ";")[0]))]
	return ok
}
