package sax

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Word is a SAX word, one lowercase letter per aggregated segment. Words are
// compared by value.
type Word string

// Symbol returns the alphabet index of the i-th letter.
func (w Word) Symbol(i int) int {
	return int(w[i]) - 'a'
}

// Symbols decodes the word into alphabet indices, failing on any letter that
// falls outside an alphabet of the given size.
func (w Word) Symbols(alphabetSize int) ([]int, error) {
	out := make([]int, len(w))
	for i := range len(w) {
		s := w.Symbol(i)
		if s < 0 || s >= alphabetSize {
			return nil, apperrors.Newf(apperrors.ErrNonLiteralSymbol, "word",
				"%q at offset %d is outside alphabet of size %d", w[i], i, alphabetSize)
		}
		out[i] = s
	}
	return out, nil
}

// Strategy selects how consecutive redundant words are suppressed.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyExact
	StrategyMinDist
)

func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyMinDist:
		return "mindist"
	default:
		return "none"
	}
}

// ParseStrategy accepts none, exact or mindist in any case.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return StrategyNone, nil
	case "exact":
		return StrategyExact, nil
	case "mindist":
		return StrategyMinDist, nil
	}
	return StrategyNone, apperrors.Newf(apperrors.ErrInvalidParameter, "strategy", "unknown strategy %q", s)
}

// Redundant reports whether next would be suppressed after prev under s.
func (s Strategy) Redundant(prev, next Word) bool {
	switch s {
	case StrategyExact:
		return prev == next
	case StrategyMinDist:
		return ZeroDistance(prev, next)
	default:
		return false
	}
}
