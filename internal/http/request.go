package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxBodyBytes     = 1 << 20
)

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	return nil
}

// parsePeriodAnchor reads the period and date query parameters. The date
// accepts either a plain calendar date or a full RFC 3339 timestamp. Both
// are optional; the zero anchor lets the resolver default to now.
func parsePeriodAnchor(r *http.Request) (analytics.Period, time.Time, error) {
	q := r.URL.Query()

	var period analytics.Period
	var err error
	if raw := strings.TrimSpace(q.Get("period")); raw != "" {
		period, err = analytics.ParsePeriod(raw)
		if err != nil {
			return "", time.Time{}, err
		}
	}

	var anchor time.Time
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		anchor, err = time.Parse("2006-01-02", raw)
		if err != nil {
			anchor, err = time.Parse(time.RFC3339, raw)
		}
		if err != nil {
			return "", time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD or RFC 3339", core.ErrInvalidInput)
		}
	}

	return period, anchor, nil
}

func parsePagination(r *http.Request) (page, limit int, err error) {
	page, limit = 1, defaultPageLimit
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("%w: page must be a positive integer", core.ErrInvalidInput)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("%w: limit must be a positive integer", core.ErrInvalidInput)
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
	}
	return page, limit, nil
}

func parseLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", core.ErrInvalidInput)
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return limit, nil
}

var errMissingBearer = errors.New("missing bearer token")

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingBearer
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errMissingBearer
	}
	return parts[1], nil
}
