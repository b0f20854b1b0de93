package domain

import (
	"errors"
	"math"
	"testing"
)

func TestMeanFeatures(t *testing.T) {
	tests := []struct {
		name     string
		vectors  []FeatureVector
		expected FeatureVector
	}{
		{
			name:     "returns zero values for empty input",
			vectors:  nil,
			expected: FeatureVector{},
		},
		{
			name: "averages features across vectors",
			vectors: []FeatureVector{
				{Danceability: 0.4, Energy: 0.6, Valence: 0.2, Tempo: 100, Instrumentalness: 0.1, Acousticness: 0.3, Liveness: 0.1, Speechiness: 0.05, DurationSeconds: 200},
				{Danceability: 0.6, Energy: 0.8, Valence: 0.4, Tempo: 120, Instrumentalness: 0.3, Acousticness: 0.5, Liveness: 0.3, Speechiness: 0.15, DurationSeconds: 240},
			},
			expected: FeatureVector{Danceability: 0.5, Energy: 0.7, Valence: 0.3, Tempo: 110, Instrumentalness: 0.2, Acousticness: 0.4, Liveness: 0.2, Speechiness: 0.1, DurationSeconds: 220},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MeanFeatures(tc.vectors)
			if !featuresEqual(got, tc.expected, 1e-9) {
				t.Fatalf("expected %+v, got %+v", tc.expected, got)
			}
		})
	}
}

func TestFeatureVector_Validate(t *testing.T) {
	valid := FeatureVector{Valence: 0.5, Energy: 0.5, Danceability: 0.5, Tempo: 120, DurationSeconds: 180}

	tests := []struct {
		name    string
		mutate  func(f *FeatureVector)
		wantErr error
	}{
		{name: "valid vector", mutate: func(*FeatureVector) {}},
		{name: "descriptor above one", mutate: func(f *FeatureVector) { f.Energy = 1.01 }, wantErr: ErrFeatureOutOfRange},
		{name: "negative descriptor", mutate: func(f *FeatureVector) { f.Liveness = -0.1 }, wantErr: ErrFeatureOutOfRange},
		{name: "tempo at lower bound", mutate: func(f *FeatureVector) { f.Tempo = MinTempo }, wantErr: ErrTempoOutOfRange},
		{name: "tempo at upper bound", mutate: func(f *FeatureVector) { f.Tempo = MaxTempo }},
		{name: "tempo above upper bound", mutate: func(f *FeatureVector) { f.Tempo = 300 }, wantErr: ErrTempoOutOfRange},
		{name: "negative duration", mutate: func(f *FeatureVector) { f.DurationSeconds = -1 }, wantErr: ErrFeatureOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := valid
			tc.mutate(&f)
			err := f.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFeatureDescriptions_Order(t *testing.T) {
	want := []Feature{Valence, Energy, Danceability, Acousticness, Instrumentalness, Speechiness, Tempo, Liveness}
	got := FeatureDescriptions()
	if len(got) != len(want) {
		t.Fatalf("expected %d descriptions, got %d", len(want), len(got))
	}
	for i, d := range got {
		if d.Feature != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], d.Feature)
		}
		if d.Description == "" {
			t.Fatalf("empty description for %s", d.Feature)
		}
	}
}

func featuresEqual(a, b FeatureVector, tol float64) bool {
	return floatEquals(a.Danceability, b.Danceability, tol) &&
		floatEquals(a.Energy, b.Energy, tol) &&
		floatEquals(a.Valence, b.Valence, tol) &&
		floatEquals(a.Tempo, b.Tempo, tol) &&
		floatEquals(a.Instrumentalness, b.Instrumentalness, tol) &&
		floatEquals(a.Acousticness, b.Acousticness, tol) &&
		floatEquals(a.Liveness, b.Liveness, tol) &&
		floatEquals(a.Speechiness, b.Speechiness, tol) &&
		a.DurationSeconds == b.DurationSeconds
}

func floatEquals(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
