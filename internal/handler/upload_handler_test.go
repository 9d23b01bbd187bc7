package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/accrue-app/accrue-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestCreateProfileUpload_Success(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockObjectStore()
	handler := NewUploadHandler(service.NewUploadService(store))

	userID := uuid.New()
	body := `{"filename": "avatar.png", "contentType": "image/png"}`
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/profile", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithUser(c, "auth0|upl", "u@example.com", "", userID)

	if err := handler.CreateProfileUpload(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response service.ProfileUpload
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !strings.HasPrefix(response.Key, "profiles/"+userID.String()+"/") {
		t.Errorf("Expected key under the user's prefix, got %s", response.Key)
	}
	if response.UploadURL == "" {
		t.Error("Expected a presigned upload URL")
	}
}

func TestCreateProfileUpload_Disabled(t *testing.T) {
	e := echo.New()
	handler := NewUploadHandler(service.NewUploadService(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/profile", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithUser(c, "auth0|upl", "u@example.com", "", uuid.New())

	if err := handler.CreateProfileUpload(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
}

func TestGetProfileImage_ForeignKeyForbidden(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockObjectStore()
	handler := NewUploadHandler(service.NewUploadService(store))

	owner := uuid.New()
	intruder := uuid.New()
	key := "profiles/" + owner.String() + "/123.png"
	store.Objects[key] = []byte("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/images/"+key, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("*")
	c.SetParamValues(key)
	setupAuthContextWithUser(c, "auth0|intruder", "i@example.com", "", intruder)

	if err := handler.GetProfileImage(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestGetProfileImage_StreamsOwnObject(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockObjectStore()
	handler := NewUploadHandler(service.NewUploadService(store))

	owner := uuid.New()
	key := "profiles/" + owner.String() + "/123.png"
	store.Objects[key] = []byte("image-bytes")
	store.ContentTypes[key] = "image/png"

	req := httptest.NewRequest(http.MethodGet, "/api/images/"+key, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("*")
	c.SetParamValues(key)
	setupAuthContextWithUser(c, "auth0|owner", "o@example.com", "", owner)

	if err := handler.GetProfileImage(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "image-bytes" {
		t.Errorf("Expected body to stream the object")
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Errorf("Expected content type image/png, got %s", ct)
	}
}
