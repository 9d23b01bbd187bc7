package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestCreateProfileUploadURL_KeyUnderOwnPrefix(t *testing.T) {
	store := testutil.NewMockObjectStore()
	uploadService := NewUploadService(store)
	uploadService.now = func() time.Time { return time.UnixMilli(1756400000000) }

	userID := uuid.New()

	upload, err := uploadService.CreateProfileUploadURL(context.Background(), userID, "avatar.png", "image/png")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expectedKey := "profiles/" + userID.String() + "/1756400000000.png"
	if upload.Key != expectedKey {
		t.Errorf("Expected key %s, got %s", expectedKey, upload.Key)
	}
	if !strings.Contains(upload.UploadURL, upload.Key) {
		t.Errorf("Expected presigned URL to reference the key, got %s", upload.UploadURL)
	}
}

func TestCreateProfileUploadURL_ExtensionFallbacks(t *testing.T) {
	store := testutil.NewMockObjectStore()
	uploadService := NewUploadService(store)

	userID := uuid.New()

	tests := []struct {
		filename    string
		contentType string
		wantSuffix  string
	}{
		{"avatar.png", "image/jpeg", ".jpeg"}, // content type wins
		{"avatar.webp", "", ".webp"},          // filename fallback
		{"avatar", "", ".bin"},                // no hint at all
	}

	for _, tt := range tests {
		upload, err := uploadService.CreateProfileUploadURL(context.Background(), userID, tt.filename, tt.contentType)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.HasSuffix(upload.Key, tt.wantSuffix) {
			t.Errorf("filename=%q contentType=%q: expected suffix %s, got key %s", tt.filename, tt.contentType, tt.wantSuffix, upload.Key)
		}
	}
}

func TestOpenProfileImage_EnforcesOwnership(t *testing.T) {
	store := testutil.NewMockObjectStore()
	uploadService := NewUploadService(store)

	owner := uuid.New()
	intruder := uuid.New()

	key := "profiles/" + owner.String() + "/123.png"
	store.Objects[key] = []byte("image-bytes")
	store.ContentTypes[key] = "image/png"

	object, err := uploadService.OpenProfileImage(context.Background(), owner, key)
	if err != nil {
		t.Fatalf("Expected owner read to succeed, got %v", err)
	}
	data, _ := io.ReadAll(object.Body)
	object.Body.Close()
	if string(data) != "image-bytes" {
		t.Errorf("Expected object body to round-trip")
	}

	if _, err := uploadService.OpenProfileImage(context.Background(), intruder, key); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for foreign key, got %v", err)
	}
}

func TestOpenProfileImage_MissingObject(t *testing.T) {
	store := testutil.NewMockObjectStore()
	uploadService := NewUploadService(store)

	userID := uuid.New()
	key := "profiles/" + userID.String() + "/missing.png"

	if _, err := uploadService.OpenProfileImage(context.Background(), userID, key); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUploadService_Disabled(t *testing.T) {
	uploadService := NewUploadService(nil)

	if uploadService.IsEnabled() {
		t.Error("Expected service without a store to report disabled")
	}
	if _, err := uploadService.CreateProfileUploadURL(context.Background(), uuid.New(), "a.png", "image/png"); err == nil {
		t.Error("Expected error from disabled upload service")
	}
}
