package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

var (
	rock = domain.Genre{ID: 1, Title: "Rock"}
	jazz = domain.Genre{ID: 2, Title: "Jazz"}
	folk = domain.Genre{ID: 3, Title: "Folk"}
)

func uniform(v float64) domain.FeatureVector {
	return domain.FeatureVector{
		Valence: v, Energy: v, Danceability: v, Acousticness: v,
		Instrumentalness: v, Speechiness: v, Liveness: v,
		Tempo: 500, DurationSeconds: 9999,
	}
}

func TestCompare(t *testing.T) {
	samples := []Sample{
		{Genre: rock, Features: uniform(0.2)},
		{Genre: rock, Features: uniform(0.4)},
		{Genre: jazz, Features: uniform(0.9)},
		{Genre: folk, Features: uniform(0.1)},
	}

	table := Compare(Target{Label: CurrentSong, Features: uniform(0.5)}, samples, []domain.Genre{jazz, rock})

	require.Len(t, table, 3*domain.DescriptorCount)
	assert.Equal(t, []string{CurrentSong, "Jazz", "Rock"}, table.Groups())

	for i, f := range domain.Descriptors {
		assert.Equal(t, f, table[i].Feature, "features follow canonical order")
	}

	v, ok := table.Value(domain.Energy, "Rock")
	require.True(t, ok)
	assert.InDelta(t, 0.3, v, 1e-9)

	v, ok = table.Value(domain.Liveness, "Jazz")
	require.True(t, ok)
	assert.InDelta(t, 0.9, v, 1e-9, "single member genre keeps its value")

	_, ok = table.Value(domain.Energy, "Folk")
	assert.False(t, ok, "genres outside the target's set are never compared")

	_, ok = table.Value(domain.Tempo, CurrentSong)
	assert.False(t, ok, "tempo is not aggregated")
}

func TestCompare_GenreWithoutSamples(t *testing.T) {
	table := Compare(Target{Label: CurrentAlbum, Features: uniform(0.5)}, nil, []domain.Genre{rock})
	assert.Equal(t, []string{CurrentAlbum}, table.Groups())
	assert.Len(t, table, domain.DescriptorCount)
}

func TestCatalogueMean(t *testing.T) {
	assert.Empty(t, CatalogueMean(CatalogueTotal, nil))

	table := CatalogueMean(CatalogueFiltered, []domain.FeatureVector{uniform(0), uniform(1)})
	require.Len(t, table, domain.DescriptorCount)
	for _, r := range table {
		assert.Equal(t, CatalogueFiltered, r.Group)
		assert.InDelta(t, 0.5, r.Value, 1e-9)
	}
}

func TestSortedByGroup(t *testing.T) {
	table := Compare(Target{Label: CurrentSong, Features: uniform(0.5)},
		[]Sample{{Genre: rock, Features: uniform(0.1)}, {Genre: jazz, Features: uniform(0.2)}},
		[]domain.Genre{rock, jazz})
	table = append(table, CatalogueMean(CatalogueTotal, []domain.FeatureVector{uniform(0.3)})...)

	sorted := table.SortedByGroup()
	assert.Equal(t, []string{CatalogueTotal, CurrentSong, "Jazz", "Rock"}, sorted.Groups())
	assert.Equal(t, domain.Valence, sorted[0].Feature)
	assert.Equal(t, domain.Liveness, sorted[domain.DescriptorCount-1].Feature)
	// original order is untouched
	assert.Equal(t, CurrentSong, table[0].Group)
}

func TestSamplesFromRows(t *testing.T) {
	rows := []domain.CatalogueRow{
		{TrackID: 1, GenreID: rock.ID, GenreTitle: rock.Title, Features: uniform(0.2)},
		{TrackID: 1, GenreID: jazz.ID, GenreTitle: jazz.Title, Features: uniform(0.2)},
	}
	samples := SamplesFromRows(rows)
	require.Len(t, samples, 2)
	assert.Equal(t, rock, samples[0].Genre)
	assert.Equal(t, jazz, samples[1].Genre)
}
