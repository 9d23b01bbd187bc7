package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/repository/storage"
	"github.com/google/uuid"
)

const (
	// UploadURLExpiry caps how long a presigned upload URL stays usable
	UploadURLExpiry = 60 * time.Second
)

// ProfileUpload is a presigned upload grant for a profile image
type ProfileUpload struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

// UploadService issues presigned upload URLs and streams stored objects
// back out, enforcing that users only ever touch their own key prefix
type UploadService struct {
	store storage.ObjectStore
	now   func() time.Time
}

// NewUploadService creates a new UploadService
func NewUploadService(store storage.ObjectStore) *UploadService {
	return &UploadService{store: store, now: time.Now}
}

// IsEnabled indicates whether object storage is configured
func (s *UploadService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// extension derives a file extension from the content type, falling back to
// the filename, falling back to "bin"
func extension(filename, contentType string) string {
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 && parts[1] != "" {
		return strings.ToLower(parts[1])
	}
	if i := strings.LastIndexByte(filename, '.'); i >= 0 && i < len(filename)-1 {
		return strings.ToLower(filename[i+1:])
	}
	return "bin"
}

// profilePrefix is the key prefix a user is allowed to read and write
func profilePrefix(userID uuid.UUID) string {
	return fmt.Sprintf("profiles/%s/", userID)
}

// CreateProfileUploadURL issues a short-lived presigned PUT URL for a new
// profile image keyed under the caller's own prefix
func (s *UploadService) CreateProfileUploadURL(ctx context.Context, userID uuid.UUID, filename, contentType string) (*ProfileUpload, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrUpstreamFailure
	}
	key := fmt.Sprintf("%s%d.%s", profilePrefix(userID), s.now().UnixMilli(), extension(filename, contentType))

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadURL, err := s.store.PresignPut(ctx, key, contentType, UploadURLExpiry)
	if err != nil {
		return nil, err
	}

	return &ProfileUpload{UploadURL: uploadURL, Key: key}, nil
}

// OpenProfileImage streams a stored profile image after verifying the key
// belongs to the calling user. The ownership check is the authorization
// boundary; the bucket itself is private.
func (s *UploadService) OpenProfileImage(ctx context.Context, userID uuid.UUID, key string) (*storage.Object, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrUpstreamFailure
	}
	if key == "" {
		return nil, domain.ErrNotFound
	}
	if !strings.HasPrefix(key, profilePrefix(userID)) {
		return nil, domain.ErrForbidden
	}
	return s.store.Get(ctx, key)
}
