// Package series reads numeric time series from delimited text.
package series

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Series is an ordered sequence of observations.
type Series []float64

// Len returns the number of observations.
func (s Series) Len() int { return len(s) }

// Windows returns the number of subsequences of the given length.
func (s Series) Windows(length int) int {
	if length <= 0 || length > len(s) {
		return 0
	}
	return len(s) - length + 1
}

// ReadColumn parses one column of whitespace or comma separated values.
// Blank lines and lines starting with '#' are skipped, as is a leading
// header line whose requested field is not a number.
func ReadColumn(r io.Reader, column int) (Series, error) {
	if column < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidParameter, "series.read", "column must be non-negative, got %d", column)
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	out := make(Series, 0, 1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		if column >= len(fields) {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "series.read", "line %d has %d fields, need column %d", line, len(fields), column)
		}
		v, err := strconv.ParseFloat(fields[column], 64)
		if err != nil {
			if len(out) == 0 && line == 1 {
				continue
			}
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "series.read", "line %d: %q is not a number", line, fields[column])
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "series.read", "scanning input: %v", err)
	}
	return out, nil
}
