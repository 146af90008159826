package sax

import (
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Params are the discretization parameters shared by the sequential and
// parallel paths.
type Params struct {
	WindowSize    int
	PAASize       int
	AlphabetSize  int
	Strategy      Strategy
	NormThreshold float64
}

// ParamsFromConfig converts the YAML discretization section.
func ParamsFromConfig(cfg config.DiscretizationConfig) (Params, error) {
	strategy, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return Params{}, err
	}
	p := Params{
		WindowSize:    cfg.WindowSize,
		PAASize:       cfg.PAASize,
		AlphabetSize:  cfg.AlphabetSize,
		Strategy:      strategy,
		NormThreshold: cfg.NormThreshold,
	}
	return p, p.Validate()
}

// Validate checks the parameters independently of any series.
func (p Params) Validate() error {
	if p.WindowSize <= 0 {
		return apperrors.Newf(apperrors.ErrInvalidParameter, "params", "window size must be positive, got %d", p.WindowSize)
	}
	if p.PAASize <= 0 || p.PAASize > p.WindowSize {
		return apperrors.Newf(apperrors.ErrInvalidParameter, "params", "paa size must be in [1, %d], got %d", p.WindowSize, p.PAASize)
	}
	if p.NormThreshold < 0 {
		return apperrors.Newf(apperrors.ErrInvalidParameter, "params", "normalization threshold must be non-negative, got %g", p.NormThreshold)
	}
	return checkAlphabet(p.AlphabetSize)
}

// ValidateFor additionally checks that a series of length n holds at least one
// window.
func (p Params) ValidateFor(n int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.WindowSize > n {
		return apperrors.Newf(apperrors.ErrInvalidParameter, "params", "window size %d exceeds series length %d", p.WindowSize, n)
	}
	return nil
}
