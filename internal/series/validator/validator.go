// Package validator checks a series before it enters the pipeline and
// returns per-field error details.
package validator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/series"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

const maxReportedPositions = 5

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets callers match validation failures with ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateSeries checks that s is non-empty, holds only finite values and is
// at least windowSize long.
func ValidateSeries(s series.Series, windowSize int) error {
	errs := make(map[string]string)

	if s.Len() == 0 {
		errs["series"] = "series is required and must not be empty"
	} else if windowSize > s.Len() {
		errs["length"] = fmt.Sprintf("series has %d points, window needs at least %d", s.Len(), windowSize)
	}
	if windowSize <= 0 {
		errs["window_size"] = fmt.Sprintf("window size must be positive, got %d", windowSize)
	}

	var bad []string
	count := 0
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			count++
			if len(bad) < maxReportedPositions {
				bad = append(bad, fmt.Sprint(i))
			}
		}
	}
	if count > 0 {
		errs["values"] = fmt.Sprintf("%d non-finite values, first at positions %s", count, strings.Join(bad, ","))
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
