// Package sax implements the numeric half of Symbolic Aggregate
// approXimation: z-normalization, piecewise aggregate approximation, symbol
// mapping over normal breakpoints and the distance primitives built on them.
// Every function is pure; inputs are never modified.
package sax

import (
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Normalize z-normalizes window using the sample standard deviation. Windows
// whose deviation is below threshold are returned as an unchanged copy.
func Normalize(window []float64, threshold float64) []float64 {
	out := make([]float64, len(window))
	copy(out, window)
	if len(window) < 2 {
		return out
	}
	mean, std := stat.MeanStdDev(window, nil)
	if !(std >= threshold) || std == 0 {
		return out
	}
	for i, v := range window {
		out[i] = (v - mean) / std
	}
	return out
}

// Aggregate reduces values to size points by piecewise averaging. When
// len(values) is not a multiple of size every value is spread over size
// virtual sub-units so that each output point is the exact weighted mean of
// the area it covers.
func Aggregate(values []float64, size int) ([]float64, error) {
	n := len(values)
	if size <= 0 || size > n {
		return nil, apperrors.Newf(apperrors.ErrInvalidParameter, "aggregate", "size %d out of range for %d values", size, n)
	}
	out := make([]float64, size)
	if n == size {
		copy(out, values)
		return out, nil
	}
	if n%size == 0 {
		block := n / size
		for j := 0; j < size; j++ {
			out[j] = stat.Mean(values[j*block:(j+1)*block], nil)
		}
		return out, nil
	}
	for unit := 0; unit < n*size; unit++ {
		out[unit/n] += values[unit/size]
	}
	for j := range out {
		out[j] /= float64(n)
	}
	return out, nil
}

// Symbolize maps every value to the number of cuts it exceeds and renders
// that index as a letter.
func Symbolize(values []float64, cuts []float64) Word {
	buf := make([]byte, len(values))
	for i, v := range values {
		idx := 0
		for idx < len(cuts) && v > cuts[idx] {
			idx++
		}
		buf[i] = byte('a' + idx)
	}
	return Word(buf)
}

// Transform runs Normalize, Aggregate and Symbolize over one window.
func Transform(window []float64, paaSize int, cuts []float64, threshold float64) (Word, error) {
	paa, err := Aggregate(Normalize(window, threshold), paaSize)
	if err != nil {
		return "", err
	}
	return Symbolize(paa, cuts), nil
}
