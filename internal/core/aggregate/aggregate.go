// Package aggregate builds per-genre comparison tables over the bounded
// audio descriptors.
package aggregate

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

// Group labels used for the compared item.
const (
	CurrentSong       = "Current Song"
	CurrentAlbum      = "Current Album"
	CatalogueFiltered = "Catalogue (filtered)"
	CatalogueTotal    = "Catalogue (total)"
)

// Row is one (feature, group, value) cell of a comparison table.
type Row struct {
	Feature domain.Feature `json:"feature" yaml:"feature"`
	Group   string         `json:"group" yaml:"group"`
	Value   float64        `json:"value" yaml:"value"`
}

// Table is consumed unchanged by both the radar and the grouped-bar charts.
type Table []Row

// Sample is one feature vector attributed to a genre.
type Sample struct {
	Genre    domain.Genre
	Features domain.FeatureVector
}

// Target is the item being compared and the label it is shown under.
type Target struct {
	Label    string
	Features domain.FeatureVector
}

// Compare emits the target's own descriptors followed by the unweighted mean
// of each genre in genres, in the given order. Only samples whose genre is in
// genres contribute; genres without samples are omitted.
func Compare(target Target, samples []Sample, genres []domain.Genre) Table {
	table := make(Table, 0, domain.DescriptorCount*(len(genres)+1))
	table = append(table, groupRows(target.Label, target.Features.Descriptors())...)

	byGenre := make(map[int64][]domain.FeatureVector, len(genres))
	for _, s := range samples {
		byGenre[s.Genre.ID] = append(byGenre[s.Genre.ID], s.Features)
	}

	seen := make(map[int64]struct{}, len(genres))
	for _, g := range genres {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		seen[g.ID] = struct{}{}
		vectors := byGenre[g.ID]
		if len(vectors) == 0 {
			continue
		}
		table = append(table, groupRows(g.Title, Mean(vectors))...)
	}
	return table
}

// CatalogueMean returns the mean descriptors of vectors as one group. An
// empty input yields no rows.
func CatalogueMean(label string, vectors []domain.FeatureVector) Table {
	if len(vectors) == 0 {
		return Table{}
	}
	return groupRows(label, Mean(vectors))
}

// Mean returns the unweighted per-descriptor mean of vectors.
func Mean(vectors []domain.FeatureVector) [domain.DescriptorCount]float64 {
	var out [domain.DescriptorCount]float64
	if len(vectors) == 0 {
		return out
	}
	columns := make([][]float64, domain.DescriptorCount)
	for d := range columns {
		columns[d] = make([]float64, len(vectors))
	}
	for i, v := range vectors {
		for d, x := range v.Descriptors() {
			columns[d][i] = x
		}
	}
	for d, col := range columns {
		out[d] = stat.Mean(col, nil)
	}
	return out
}

// SamplesFromRows turns genre-view rows into aggregation samples.
func SamplesFromRows(rows []domain.CatalogueRow) []Sample {
	out := make([]Sample, len(rows))
	for i, r := range rows {
		out[i] = Sample{Genre: r.Genre(), Features: r.Features}
	}
	return out
}

// Groups returns the group labels of t in first-appearance order.
func (t Table) Groups() []string {
	var out []string
	for _, r := range t {
		if !slices.Contains(out, r.Group) {
			out = append(out, r.Group)
		}
	}
	return out
}

// Value looks up a single cell.
func (t Table) Value(feature domain.Feature, group string) (float64, bool) {
	for _, r := range t {
		if r.Feature == feature && r.Group == group {
			return r.Value, true
		}
	}
	return 0, false
}

// SortedByGroup returns a copy ordered by group label. Rows within a group
// keep their feature order.
func (t Table) SortedByGroup() Table {
	out := slices.Clone(t)
	slices.SortStableFunc(out, func(a, b Row) int {
		return strings.Compare(a.Group, b.Group)
	})
	return out
}

func groupRows(label string, values [domain.DescriptorCount]float64) Table {
	rows := make(Table, domain.DescriptorCount)
	for i, f := range domain.Descriptors {
		rows[i] = Row{Feature: f, Group: label, Value: values[i]}
	}
	return rows
}
