package sax

import (
	"math"

	"gonum.org/v1/gonum/floats"

	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Distance is the Euclidean distance between two equal-length vectors.
func Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, apperrors.Newf(apperrors.ErrInvalidParameter, "distance", "length mismatch %d != %d", len(a), len(b))
	}
	return floats.Distance(a, b, 2), nil
}

// EarlyAbandonedDistance computes the Euclidean distance between a and b but
// stops as soon as the running squared sum exceeds bound². The boolean is
// false when the computation was abandoned, meaning the distance is greater
// than bound. Like gonum's floats package it panics on mismatched lengths;
// Distance reports a mismatch as ErrInvalidParameter instead.
func EarlyAbandonedDistance(a, b []float64, bound float64) (float64, bool) {
	if len(a) != len(b) {
		panic("sax: slice lengths do not match")
	}
	limit := bound * bound
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
		if sum > limit {
			return 0, false
		}
	}
	return math.Sqrt(sum), true
}

// MinDist lower-bounds the Euclidean distance between the windows of length n
// that produced a and b, using matrix from DistanceMatrix.
func MinDist(a, b Word, matrix [][]float64, n, segments int) (float64, error) {
	if len(a) != len(b) {
		return 0, apperrors.Newf(apperrors.ErrInvalidParameter, "mindist", "word length mismatch %d != %d", len(a), len(b))
	}
	if segments <= 0 || n < segments {
		return 0, apperrors.Newf(apperrors.ErrInvalidParameter, "mindist", "invalid window %d / segments %d", n, segments)
	}
	sa, err := a.Symbols(len(matrix))
	if err != nil {
		return 0, err
	}
	sb, err := b.Symbols(len(matrix))
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range sa {
		d := matrix[sa[i]][sb[i]]
		sum += d * d
	}
	return math.Sqrt(float64(n)/float64(segments)) * math.Sqrt(sum), nil
}

// ZeroDistance reports whether every symbol pair of a and b is at most one
// letter apart, which makes their MinDist zero.
func ZeroDistance(a, b Word) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range len(a) {
		d := int(a[i]) - int(b[i])
		if d > 1 || d < -1 {
			return false
		}
	}
	return true
}
