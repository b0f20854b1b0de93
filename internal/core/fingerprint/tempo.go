// Package fingerprint builds the deterministic 3D curve family of a track
// from its audio features.
package fingerprint

import "github.com/ewilliams-labs/acoustic-print/internal/core/domain"

const (
	MinTempo = domain.MinTempo
	MaxTempo = domain.MaxTempo
)

// NormalizeTempo maps a tempo in (MinTempo, MaxTempo] onto (0, 10].
// The lower bound is exclusive and the upper bound inclusive.
func NormalizeTempo(tempo float64) (float64, error) {
	if tempo <= MinTempo || tempo > MaxTempo {
		return 0, &domain.TempoRangeError{Tempo: tempo}
	}
	return ((tempo - MinTempo) / (MaxTempo - MinTempo)) * 10, nil
}
