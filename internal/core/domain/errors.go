package domain

import (
	"errors"
	"fmt"
)

// Tempo domain shared by validation and tempo normalization.
const (
	MinTempo = 12.75
	MaxTempo = 251.072
)

var (
	ErrNotFound          = errors.New("domain: not found")
	ErrTempoOutOfRange   = errors.New("domain: tempo out of range")
	ErrFeatureOutOfRange = errors.New("domain: feature out of range")
	ErrInvalidPoints     = errors.New("domain: points must be a positive integer")
	ErrUnknownCategory   = errors.New("domain: unknown fingerprint category")
	ErrInvalidFilter     = errors.New("domain: invalid filter")
)

// TempoRangeError reports a tempo outside (MinTempo, MaxTempo].
type TempoRangeError struct {
	Tempo float64
}

func (e *TempoRangeError) Error() string {
	return fmt.Sprintf("domain: tempo %g outside (%g, %g]", e.Tempo, MinTempo, MaxTempo)
}

func (e *TempoRangeError) Is(target error) bool {
	return target == ErrTempoOutOfRange
}

// CategoryError names a fingerprint category that is not recognised.
type CategoryError struct {
	Value string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("domain: valid categories are 'dynamics' or 'articulation', not %q", e.Value)
}

func (e *CategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}
