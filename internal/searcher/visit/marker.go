package visit

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Marker marks the neighbourhood of a reported discord in the global
// registry so later rounds do not report an overlapping window.
type Marker interface {
	Mark(r *Registry, start, length int) error
	Name() string
}

// SpanMarker marks [start, start+length).
type SpanMarker struct{}

func (SpanMarker) Name() string { return "span" }

func (SpanMarker) Mark(r *Registry, start, length int) error {
	if err := r.check(start); err != nil {
		return err
	}
	from, to := clip(r, start, start+length)
	return r.MarkRange(from, to)
}

// SymmetricMarker marks [start-length, start+length), growing one window to
// each side of the discord.
type SymmetricMarker struct{}

func (SymmetricMarker) Name() string { return "symmetric" }

func (SymmetricMarker) Mark(r *Registry, start, length int) error {
	if err := r.check(start); err != nil {
		return err
	}
	from, to := clip(r, start-length, start+length)
	return r.MarkRange(from, to)
}

func clip(r *Registry, from, to int) (int, int) {
	return max(from, 0), min(to, r.Capacity())
}

func MarkerByName(name string) (Marker, error) {
	switch strings.ToLower(name) {
	case "symmetric", "":
		return SymmetricMarker{}, nil
	case "span":
		return SpanMarker{}, nil
	}
	return nil, apperrors.Newf(apperrors.ErrInvalidParameter, "marker", "unknown marker %q", name)
}
