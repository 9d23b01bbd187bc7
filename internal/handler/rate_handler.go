package handler

import (
	"errors"
	"net/http"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RateHandler handles currency conversion rate HTTP requests
type RateHandler struct {
	rateService *service.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rateService *service.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

// GetRate handles GET /api/rates. Public endpoint; protected by the
// per-IP rate limiter instead of authentication.
func (h *RateHandler) GetRate(c echo.Context) error {
	base := c.QueryParam("base")
	target := c.QueryParam("target")
	date := c.QueryParam("date")

	result, err := h.rateService.GetRate(c.Request().Context(), base, target, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCurrency):
			return NewValidationError(c, "Invalid currency pair", []ValidationError{
				{Field: "base", Message: "Must be a three-letter currency code"},
				{Field: "target", Message: "Must be a three-letter currency code"},
			})
		case errors.Is(err, domain.ErrRateUnavailable):
			return NewNotFoundError(c, "No rate published for this pair")
		case errors.Is(err, domain.ErrUpstreamFailure):
			log.Warn().Err(err).Str("base", base).Str("target", target).Msg("Rate provider unavailable")
			return NewUpstreamError(c, "Rate provider unavailable")
		}
		log.Error().Err(err).Msg("Failed to fetch rate")
		return NewInternalError(c, "Failed to fetch rate")
	}

	return c.JSON(http.StatusOK, result)
}
