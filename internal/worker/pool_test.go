package worker

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/ports"
)

type mockProvider struct {
	features map[string]domain.FeatureVector
	errs     map[string]error
}

func (m *mockProvider) GetAudioFeatures(ctx context.Context, externalID string) (domain.FeatureVector, error) {
	if err, ok := m.errs[externalID]; ok {
		return domain.FeatureVector{}, err
	}
	return m.features[externalID], nil
}

type mockStore struct {
	mu       sync.Mutex
	features map[int64]domain.FeatureVector
	energy   map[int64]float64
	missing  []domain.Track
}

func newMockStore() *mockStore {
	return &mockStore{features: map[int64]domain.FeatureVector{}, energy: map[int64]float64{}}
}

func (m *mockStore) SaveTrack(ctx context.Context, t domain.Track) error { return nil }
func (m *mockStore) SaveAlbum(ctx context.Context, a domain.Album) error { return nil }

func (m *mockStore) UpdateTrackFeatures(ctx context.Context, id int64, f domain.FeatureVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features[id] = f
	return nil
}

func (m *mockStore) UpdateTrackEnergy(ctx context.Context, id int64, energy float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.energy[id] = energy
	return nil
}

func (m *mockStore) ListTracksMissingFeatures(ctx context.Context) ([]domain.Track, error) {
	return m.missing, nil
}

var analysed = domain.FeatureVector{
	Valence: 0.5, Energy: 0.6, Danceability: 0.7, Acousticness: 0.1,
	Instrumentalness: 0.2, Speechiness: 0.05, Liveness: 0.3, Tempo: 120, DurationSeconds: 200,
}

func TestPool_ProcessJob(t *testing.T) {
	provider := &mockProvider{
		features: map[string]domain.FeatureVector{
			"ok":  analysed,
			"bad": {Valence: 3, Tempo: 120},
		},
		errs: map[string]error{
			"gone": ports.FeaturesUnavailableError{ExternalID: "gone", Status: 404},
			"down": errors.New("connection refused"),
		},
	}

	original := AnalyzePreviewFunc
	t.Cleanup(func() { AnalyzePreviewFunc = original })
	AnalyzePreviewFunc = func(ctx context.Context, url string) (float64, error) {
		if url == "broken" {
			return 0, errors.New("preview decode failed")
		}
		return 0.42, nil
	}

	tests := []struct {
		name         string
		job          Job
		wantFeatures bool
		wantEnergy   bool
	}{
		{name: "provider features", job: Job{TrackID: 1, ExternalID: "ok", PreviewURL: "p"}, wantFeatures: true},
		{name: "invalid features are rejected", job: Job{TrackID: 2, ExternalID: "bad", PreviewURL: "p"}},
		{name: "unavailable falls back to preview", job: Job{TrackID: 3, ExternalID: "gone", PreviewURL: "p"}, wantEnergy: true},
		{name: "unavailable without preview", job: Job{TrackID: 4, ExternalID: "gone"}},
		{name: "provider error does not fall back", job: Job{TrackID: 5, ExternalID: "down", PreviewURL: "p"}},
		{name: "preview only", job: Job{TrackID: 6, PreviewURL: "p"}, wantEnergy: true},
		{name: "preview failure", job: Job{TrackID: 7, PreviewURL: "broken"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			p := NewPool(provider, store, 1, 1)
			p.processJob(context.Background(), tt.job)

			f, gotFeatures := store.features[tt.job.TrackID]
			e, gotEnergy := store.energy[tt.job.TrackID]
			assert.Equal(t, tt.wantFeatures, gotFeatures)
			assert.Equal(t, tt.wantEnergy, gotEnergy)
			if tt.wantFeatures {
				assert.Equal(t, analysed, f)
			}
			if tt.wantEnergy {
				assert.InDelta(t, 0.42, e, 1e-9)
			}
		})
	}
}

func TestPool_SubmitDropsWhenFull(t *testing.T) {
	p := NewPool(nil, newMockStore(), 1, 1)

	assert.True(t, p.Submit(Job{TrackID: 1}))
	assert.False(t, p.Submit(Job{TrackID: 2}), "queue of one is full before workers start")
}

func TestPool_EnqueueMissing(t *testing.T) {
	original := AnalyzePreviewFunc
	t.Cleanup(func() { AnalyzePreviewFunc = original })
	AnalyzePreviewFunc = func(ctx context.Context, url string) (float64, error) { return 0.3, nil }

	store := newMockStore()
	store.missing = []domain.Track{
		{ID: 10, ExternalID: "ok"},
		{ID: 11, PreviewURL: "p11"},
		{ID: 12, PreviewURL: "p12"},
	}
	provider := &mockProvider{features: map[string]domain.FeatureVector{"ok": analysed}}

	p := NewPool(provider, store, 2, 1)
	p.Start(context.Background())

	n, err := p.EnqueueMissing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	p.Stop()
	p.Stop()

	assert.Len(t, store.features, 1)
	assert.Len(t, store.energy, 2)
}

func TestPool_EnqueueCanceled(t *testing.T) {
	p := NewPool(nil, newMockStore(), 1, 1)
	require.True(t, p.Submit(Job{TrackID: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Enqueue(ctx, Job{TrackID: 2}), context.Canceled)
}

func TestRMSEnergy(t *testing.T) {
	tests := []struct {
		name    string
		pcm     []byte
		want    float64
		wantErr bool
	}{
		{name: "half scale", pcm: []byte{0x00, 0x40, 0x00, 0xC0}, want: 0.5},
		{name: "silence", pcm: []byte{0, 0, 0, 0}, want: 0},
		{name: "empty", pcm: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rmsEnergy(bytes.NewReader(tt.pcm))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
