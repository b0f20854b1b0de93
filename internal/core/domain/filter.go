package domain

import (
	"fmt"
	"slices"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range, both ends included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterSpec is a conjunction of range and set predicates over the catalogue.
// It is built per request and consumed once.
type FilterSpec struct {
	Valence          Range      `json:"valence"`
	Energy           Range      `json:"energy"`
	Danceability     Range      `json:"danceability"`
	Acousticness     Range      `json:"acousticness"`
	Instrumentalness Range      `json:"instrumentalness"`
	Speechiness      Range      `json:"speechiness"`
	Liveness         Range      `json:"liveness"`
	Tempo            Range      `json:"tempo"`
	DurationMinutes  Range      `json:"duration_minutes"`
	Explicit         []Explicit `json:"explicit"`
}

// DefaultFilterSpec admits the whole catalogue. Tempo bounds are supplied by
// configuration since historical revisions disagree on them.
func DefaultFilterSpec(tempoMin, tempoMax, durationMaxMinutes float64) FilterSpec {
	unit := Range{Min: 0, Max: 1}
	return FilterSpec{
		Valence:          unit,
		Energy:           unit,
		Danceability:     unit,
		Acousticness:     unit,
		Instrumentalness: unit,
		Speechiness:      unit,
		Liveness:         unit,
		Tempo:            Range{Min: tempoMin, Max: tempoMax},
		DurationMinutes:  Range{Min: 0, Max: durationMaxMinutes},
		Explicit:         slices.Clone(AllExplicit),
	}
}

// Descriptor returns the range that applies to a bounded descriptor.
func (s FilterSpec) Descriptor(feature Feature) Range {
	switch feature {
	case Valence:
		return s.Valence
	case Energy:
		return s.Energy
	case Danceability:
		return s.Danceability
	case Acousticness:
		return s.Acousticness
	case Instrumentalness:
		return s.Instrumentalness
	case Speechiness:
		return s.Speechiness
	case Liveness:
		return s.Liveness
	case Tempo:
		return s.Tempo
	}
	return Range{}
}

// SetDescriptor replaces the range for feature and returns the updated filter.
func (s FilterSpec) SetDescriptor(feature Feature, r Range) FilterSpec {
	switch feature {
	case Valence:
		s.Valence = r
	case Energy:
		s.Energy = r
	case Danceability:
		s.Danceability = r
	case Acousticness:
		s.Acousticness = r
	case Instrumentalness:
		s.Instrumentalness = r
	case Speechiness:
		s.Speechiness = r
	case Liveness:
		s.Liveness = r
	case Tempo:
		s.Tempo = r
	}
	return s
}

// Validate rejects inverted ranges and unknown explicit values.
func (s FilterSpec) Validate() error {
	for _, f := range Descriptors {
		if r := s.Descriptor(f); r.Min > r.Max {
			return fmt.Errorf("%w: %s range [%g, %g] is inverted", ErrInvalidFilter, f, r.Min, r.Max)
		}
	}
	if s.Tempo.Min > s.Tempo.Max {
		return fmt.Errorf("%w: tempo range [%g, %g] is inverted", ErrInvalidFilter, s.Tempo.Min, s.Tempo.Max)
	}
	if s.DurationMinutes.Min > s.DurationMinutes.Max {
		return fmt.Errorf("%w: duration range [%g, %g] is inverted", ErrInvalidFilter, s.DurationMinutes.Min, s.DurationMinutes.Max)
	}
	for _, e := range s.Explicit {
		if !e.Valid() {
			return fmt.Errorf("%w: explicit value %d", ErrInvalidFilter, e)
		}
	}
	return nil
}

// Matches applies every predicate of s. Duration bounds are given in
// minutes and compared against the duration in seconds.
func (s FilterSpec) Matches(f FeatureVector, explicit Explicit) bool {
	values := f.Descriptors()
	for i, feature := range Descriptors {
		if !s.Descriptor(feature).Contains(values[i]) {
			return false
		}
	}
	if !s.Tempo.Contains(f.Tempo) {
		return false
	}
	seconds := float64(f.DurationSeconds)
	if seconds < s.DurationMinutes.Min*60 || seconds > s.DurationMinutes.Max*60 {
		return false
	}
	return slices.Contains(s.Explicit, explicit)
}
