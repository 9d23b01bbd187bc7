package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// rateCacheTTL bounds how long a fetched rate is reused
	rateCacheTTL = time.Hour
	// rateRequestTimeout caps the upstream call; rate lookups are
	// best-effort and must never stall a caller for long
	rateRequestTimeout = 10 * time.Second
)

var currencyCodePattern = regexp.MustCompile(`^[a-z]{3}$`)

// RateResult is a conversion rate for one currency pair
type RateResult struct {
	Base   string  `json:"base"`
	Target string  `json:"target"`
	Rate   float64 `json:"rate"`
	Date   *string `json:"date"`
}

type cachedRate struct {
	result    RateResult
	fetchedAt time.Time
}

// RateService fetches conversion rates from the external currency API with
// an in-process TTL cache. It sits only behind GET /rates; income saves use
// the user's persisted rate and never wait on this service.
type RateService struct {
	baseURL string
	client  *http.Client
	mu      sync.Mutex
	cache   map[string]cachedRate
	now     func() time.Time
}

// NewRateService creates a new RateService
func NewRateService(baseURL string) *RateService {
	return &RateService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: rateRequestTimeout},
		cache:   make(map[string]cachedRate),
		now:     time.Now,
	}
}

// GetRate returns the conversion rate for base -> target. The date is
// "latest" or a calendar date understood by the upstream API.
func (s *RateService) GetRate(ctx context.Context, base, target, date string) (*RateResult, error) {
	base = strings.ToLower(strings.TrimSpace(base))
	target = strings.ToLower(strings.TrimSpace(target))
	if date == "" {
		date = "latest"
	}

	if !currencyCodePattern.MatchString(base) || !currencyCodePattern.MatchString(target) {
		return nil, domain.ErrInvalidCurrency
	}

	if base == target {
		return &RateResult{
			Base:   strings.ToUpper(base),
			Target: strings.ToUpper(target),
			Rate:   1,
		}, nil
	}

	cacheKey := fmt.Sprintf("%s:%s:%s", base, target, date)
	s.mu.Lock()
	if entry, ok := s.cache[cacheKey]; ok && s.now().Sub(entry.fetchedAt) < rateCacheTTL {
		result := entry.result
		s.mu.Unlock()
		return &result, nil
	}
	s.mu.Unlock()

	result, err := s.fetch(ctx, base, target, date)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[cacheKey] = cachedRate{result: *result, fetchedAt: s.now()}
	s.mu.Unlock()

	return result, nil
}

func (s *RateService) fetch(ctx context.Context, base, target, date string) (*RateResult, error) {
	endpoint := fmt.Sprintf("%s%s/v1/currencies/%s.min.json", s.baseURL, date, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("base", base).Str("target", target).Msg("Rate fetch failed")
		return nil, domain.ErrUpstreamFailure
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("base", base).Msg("Rate API returned non-200")
		return nil, domain.ErrUpstreamFailure
	}

	raw := map[string]json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		log.Warn().Err(err).Str("base", base).Msg("Rate API returned malformed body")
		return nil, domain.ErrUpstreamFailure
	}

	var rates map[string]float64
	if body, ok := raw[base]; ok {
		if err := json.Unmarshal(body, &rates); err != nil {
			return nil, domain.ErrUpstreamFailure
		}
	}
	rate, ok := rates[target]
	if !ok {
		return nil, domain.ErrRateUnavailable
	}

	result := &RateResult{
		Base:   strings.ToUpper(base),
		Target: strings.ToUpper(target),
		Rate:   rate,
	}
	if body, ok := raw["date"]; ok {
		var d string
		if err := json.Unmarshal(body, &d); err == nil && d != "" {
			result.Date = &d
		}
	}
	return result, nil
}
