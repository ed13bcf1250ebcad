package service

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/events-api/pkg/errors"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// PageWindow is a resolved, safe offset/limit pair.
type PageWindow struct {
	Limit  int
	Page   int
	Offset int
}

// ResolvePagination clamps and defaults the limit/page query parameters.
// Absent or non-integer text falls back to the defaults; out-of-range
// resolved values are rejected. Pure, so boundary values are directly unit
// testable.
func ResolvePagination(limitText, pageText string) (PageWindow, error) {
	limit := parseOrDefault(limitText, defaultPageLimit)
	page := parseOrDefault(pageText, 1)

	if limit < 1 || limit > maxPageLimit {
		return PageWindow{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("limit must be between 1 and %d", maxPageLimit))
	}
	if page < 1 {
		return PageWindow{}, appErrors.Clone(appErrors.ErrValidation, "page must be at least 1")
	}

	return PageWindow{Limit: limit, Page: page, Offset: (page - 1) * limit}, nil
}

func parseOrDefault(raw string, fallback int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return value
}
