package handler

import (
	"errors"
	"net/http"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/middleware"
	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// UploadHandler handles profile image upload HTTP requests
type UploadHandler struct {
	uploadService *service.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// CreateUploadRequest represents the presigned upload request body
type CreateUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// CreateProfileUpload handles POST /api/uploads/profile. It returns a
// short-lived presigned PUT URL; the client uploads directly to storage.
func (h *UploadHandler) CreateProfileUpload(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.uploadService == nil || !h.uploadService.IsEnabled() {
		return NewServiceUnavailableError(c, "Image uploads are disabled (storage not configured)")
	}

	var req CreateUploadRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	upload, err := h.uploadService.CreateProfileUploadURL(c.Request().Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to presign upload")
		return NewInternalError(c, "Failed to create upload URL")
	}

	return c.JSON(http.StatusCreated, upload)
}

// GetProfileImage handles GET /api/images/*. The wildcard is the object
// key; only keys under the caller's own prefix are served.
func (h *UploadHandler) GetProfileImage(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.uploadService == nil || !h.uploadService.IsEnabled() {
		return NewServiceUnavailableError(c, "Image storage is disabled (storage not configured)")
	}

	key := c.Param("*")
	if key == "" {
		return NewValidationError(c, "Image key required", nil)
	}

	object, err := h.uploadService.OpenProfileImage(c.Request().Context(), userID, key)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Image belongs to another user")
		case errors.Is(err, domain.ErrNotFound):
			return NewNotFoundError(c, "Image not found")
		}
		log.Error().Err(err).Str("key", key).Msg("Failed to fetch image")
		return NewInternalError(c, "Failed to fetch image")
	}
	defer object.Body.Close()

	contentType := object.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return c.Stream(http.StatusOK, contentType, object.Body)
}
