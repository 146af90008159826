package sax

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Cuts returns the alphabetSize-1 equiprobable breakpoints of the standard
// normal distribution, strictly ascending.
func Cuts(alphabetSize int) ([]float64, error) {
	if err := checkAlphabet(alphabetSize); err != nil {
		return nil, err
	}
	cuts := make([]float64, alphabetSize-1)
	for i := range cuts {
		cuts[i] = distuv.UnitNormal.Quantile(float64(i+1) / float64(alphabetSize))
	}
	// the median breakpoint is exactly zero for even alphabets
	if alphabetSize%2 == 0 {
		cuts[alphabetSize/2-1] = 0
	}
	return cuts, nil
}

// DistanceMatrix returns the symbol-pair lookup table used by MinDist.
// Adjacent symbols are at distance zero.
func DistanceMatrix(alphabetSize int) ([][]float64, error) {
	cuts, err := Cuts(alphabetSize)
	if err != nil {
		return nil, err
	}
	m := make([][]float64, alphabetSize)
	for r := range m {
		m[r] = make([]float64, alphabetSize)
		for c := range m[r] {
			if r-c <= 1 && c-r <= 1 {
				continue
			}
			lo, hi := min(r, c), max(r, c)
			m[r][c] = cuts[hi-1] - cuts[lo]
		}
	}
	return m, nil
}

func checkAlphabet(alphabetSize int) error {
	if alphabetSize < config.MinAlphabetSize || alphabetSize > config.MaxAlphabetSize {
		return apperrors.Newf(apperrors.ErrInvalidParameter, "alphabet",
			"size must be in [%d, %d], got %d", config.MinAlphabetSize, config.MaxAlphabetSize, alphabetSize)
	}
	return nil
}
