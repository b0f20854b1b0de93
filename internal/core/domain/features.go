package domain

import "fmt"

// Feature names one of the bounded audio descriptors.
type Feature string

const (
	Valence          Feature = "Valence"
	Energy           Feature = "Energy"
	Danceability     Feature = "Danceability"
	Acousticness     Feature = "Acousticness"
	Instrumentalness Feature = "Instrumentalness"
	Speechiness      Feature = "Speechiness"
	Liveness         Feature = "Liveness"
)

// Tempo is not a bounded descriptor but shares the naming for descriptions.
const Tempo Feature = "Tempo"

// DescriptorCount is the number of bounded descriptors in a FeatureVector.
const DescriptorCount = 7

// Descriptors lists the bounded descriptors in canonical order.
var Descriptors = [DescriptorCount]Feature{
	Valence,
	Energy,
	Danceability,
	Acousticness,
	Instrumentalness,
	Speechiness,
	Liveness,
}

// FeatureVector is the fixed audio-feature record of a track or album.
// The seven descriptors lie in [0, 1]; tempo is in BPM and duration in seconds.
type FeatureVector struct {
	Valence          float64 `json:"valence"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`
	Tempo            float64 `json:"tempo"`
	DurationSeconds  int     `json:"duration_seconds"`
}

// Descriptors returns the seven bounded descriptors in canonical order.
func (f FeatureVector) Descriptors() [DescriptorCount]float64 {
	return [DescriptorCount]float64{
		f.Valence,
		f.Energy,
		f.Danceability,
		f.Acousticness,
		f.Instrumentalness,
		f.Speechiness,
		f.Liveness,
	}
}

// Value returns the descriptor named by feature. Tempo is also accepted.
func (f FeatureVector) Value(feature Feature) (float64, bool) {
	switch feature {
	case Valence:
		return f.Valence, true
	case Energy:
		return f.Energy, true
	case Danceability:
		return f.Danceability, true
	case Acousticness:
		return f.Acousticness, true
	case Instrumentalness:
		return f.Instrumentalness, true
	case Speechiness:
		return f.Speechiness, true
	case Liveness:
		return f.Liveness, true
	case Tempo:
		return f.Tempo, true
	}
	return 0, false
}

// Validate enforces the descriptor and tempo domains.
func (f FeatureVector) Validate() error {
	values := f.Descriptors()
	for i, v := range values {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s=%g", ErrFeatureOutOfRange, Descriptors[i], v)
		}
	}
	if f.Tempo <= MinTempo || f.Tempo > MaxTempo {
		return &TempoRangeError{Tempo: f.Tempo}
	}
	if f.DurationSeconds < 0 {
		return fmt.Errorf("%w: duration=%d", ErrFeatureOutOfRange, f.DurationSeconds)
	}
	return nil
}

// MeanFeatures averages every field of the given vectors without weighting.
// An empty input yields the zero vector.
func MeanFeatures(vectors []FeatureVector) FeatureVector {
	if len(vectors) == 0 {
		return FeatureVector{}
	}

	var sum FeatureVector
	var duration int
	for _, v := range vectors {
		sum.Valence += v.Valence
		sum.Energy += v.Energy
		sum.Danceability += v.Danceability
		sum.Acousticness += v.Acousticness
		sum.Instrumentalness += v.Instrumentalness
		sum.Speechiness += v.Speechiness
		sum.Liveness += v.Liveness
		sum.Tempo += v.Tempo
		duration += v.DurationSeconds
	}

	n := float64(len(vectors))
	return FeatureVector{
		Valence:          sum.Valence / n,
		Energy:           sum.Energy / n,
		Danceability:     sum.Danceability / n,
		Acousticness:     sum.Acousticness / n,
		Instrumentalness: sum.Instrumentalness / n,
		Speechiness:      sum.Speechiness / n,
		Liveness:         sum.Liveness / n,
		Tempo:            sum.Tempo / n,
		DurationSeconds:  duration / len(vectors),
	}
}

// FeatureDescription pairs a feature with its human-readable explanation.
type FeatureDescription struct {
	Feature     Feature `json:"feature" yaml:"feature"`
	Description string  `json:"description" yaml:"description"`
}

// FeatureDescriptions returns the display table of audio features.
func FeatureDescriptions() []FeatureDescription {
	return []FeatureDescription{
		{Valence, "A measure from 0.0 to 1.0 describing the musical positiveness conveyed by a track. Tracks with high valence sound more positive (e.g. happy, cheerful, euphoric), while tracks with low valence sound more negative (e.g. sad, depressed, angry)."},
		{Energy, "A measure from 0.0 to 1.0 that represents a perceptual measure of intensity and activity. Typically, energetic tracks feel fast, loud, and noisy. Perceptual features contributing to this attribute include dynamic range, perceived loudness, timbre, onset rate, and general entropy."},
		{Danceability, "Describes how suitable a track is for dancing based on a combination of musical elements including tempo, rhythm stability, beat strength, and overall regularity. A value of 0.0 is least danceable and 1.0 is most danceable."},
		{Acousticness, "A confidence measure from 0.0 to 1.0 of whether the track is acoustic. 1.0 represents high confidence the track is acoustic."},
		{Instrumentalness, "Predicts whether a track contains no vocals. The closer the instrumentalness value is to 1.0, the greater likelihood the track contains no vocal content. Values above 0.5 are intended to represent instrumental tracks."},
		{Speechiness, "Detects the presence of spoken words in a track. Values above 0.66 describe tracks that are probably made entirely of spoken words. Values between 0.33 and 0.66 may contain both music and speech. Values below 0.33 most likely represent music and other non-speech-like tracks."},
		{Tempo, "The overall estimated tempo of a track in beats per minute (BPM), derived directly from the average beat duration."},
		{Liveness, "Detects the presence of an audience in the recording. A value above 0.8 provides strong likelihood that the track is live."},
	}
}
