package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/labstack/echo/v4"
)

func TestGetRate_InvalidCurrency(t *testing.T) {
	e := echo.New()
	handler := NewRateHandler(service.NewRateService("http://unused/"))

	req := httptest.NewRequest(http.MethodGet, "/api/rates?base=usdd&target=ngn", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetRate(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetRate_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"date":"2026-08-29","usd":{"ngn":1505.23}}`))
	}))
	defer upstream.Close()

	e := echo.New()
	handler := NewRateHandler(service.NewRateService(upstream.URL + "/"))

	req := httptest.NewRequest(http.MethodGet, "/api/rates?base=USD&target=NGN", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetRate(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var result service.RateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if result.Rate != 1505.23 {
		t.Errorf("Expected rate 1505.23, got %f", result.Rate)
	}
}

func TestGetRate_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	e := echo.New()
	handler := NewRateHandler(service.NewRateService(upstream.URL + "/"))

	req := httptest.NewRequest(http.MethodGet, "/api/rates?base=usd&target=ngn", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetRate(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rec.Code)
	}
}
