package spotify

import "github.com/ewilliams-labs/acoustic-print/internal/core/domain"

// spotifyAudioFeatures is the /audio-features/{id} payload.
type spotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`
	Tempo            float64 `json:"tempo"`
	DurationMs       int     `json:"duration_ms"`
}

// allZero reports a placeholder payload, which Spotify returns for tracks it
// never analysed.
func (f spotifyAudioFeatures) allZero() bool {
	return f.Danceability == 0 &&
		f.Energy == 0 &&
		f.Valence == 0 &&
		f.Tempo == 0 &&
		f.Instrumentalness == 0 &&
		f.Acousticness == 0 &&
		f.Speechiness == 0 &&
		f.Liveness == 0
}

func (f spotifyAudioFeatures) toDomain() domain.FeatureVector {
	return domain.FeatureVector{
		Valence:          f.Valence,
		Energy:           f.Energy,
		Danceability:     f.Danceability,
		Acousticness:     f.Acousticness,
		Instrumentalness: f.Instrumentalness,
		Speechiness:      f.Speechiness,
		Liveness:         f.Liveness,
		Tempo:            f.Tempo,
		DurationSeconds:  (f.DurationMs + 500) / 1000,
	}
}
