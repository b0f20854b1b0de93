package fingerprint

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

// Category selects which feature triple drives the curve.
type Category string

const (
	Dynamics     Category = "dynamics"
	Articulation Category = "articulation"
)

// Categories lists both fingerprint categories in display order.
var Categories = []Category{Dynamics, Articulation}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Dynamics, Articulation:
		return c, nil
	}
	return "", &domain.CategoryError{Value: s}
}

// Attributes returns the three curve labels of c in emission order.
func (c Category) Attributes() [3]domain.Feature {
	if c == Articulation {
		return [3]domain.Feature{domain.Acousticness, domain.Instrumentalness, domain.Speechiness}
	}
	return [3]domain.Feature{domain.Valence, domain.Energy, domain.Danceability}
}

// Point is one sample of a fingerprint curve.
type Point struct {
	Attribute domain.Feature `json:"attribute" yaml:"attribute"`
	X         float64        `json:"x" yaml:"x"`
	Y         float64        `json:"y" yaml:"y"`
	Z         float64        `json:"z" yaml:"z"`
}

const span = 48 * math.Pi

// Generate returns 3*points samples: the three attribute curves of the
// category concatenated in order. Each 2D polar curve is embedded in its own
// orthogonal coordinate pair: (X,Y), (Y,Z), then (Z,X).
func Generate(fv domain.FeatureVector, points int, category Category) ([]Point, error) {
	if points < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidPoints, points)
	}

	theta := grid(points)

	var rhos [3][]float64
	switch category {
	case Dynamics:
		rhos = [3][]float64{
			dynamicsRho(theta, fv.Tempo, fv.Valence),
			dynamicsRho(theta, fv.Tempo, fv.Energy),
			dynamicsRho(theta, fv.Tempo, fv.Danceability),
		}
	case Articulation:
		norm, err := NormalizeTempo(fv.Tempo)
		if err != nil {
			return nil, err
		}
		rhos = [3][]float64{
			articulationRho(theta, norm, fv.Speechiness, fv.Acousticness),
			articulationRho(theta, norm, fv.Speechiness, fv.Instrumentalness),
			articulationRho(theta, norm, fv.Speechiness, fv.Speechiness),
		}
	default:
		return nil, &domain.CategoryError{Value: string(category)}
	}

	labels := category.Attributes()
	out := make([]Point, 0, 3*points)
	for curve, rho := range rhos {
		for i, r := range rho {
			x := r * math.Cos(theta[i])
			y := r * math.Sin(theta[i])
			p := Point{Attribute: labels[curve]}
			switch curve {
			case 0:
				p.X, p.Y = x, y
			case 1:
				p.Y, p.Z = x, y
			case 2:
				p.Z, p.X = x, y
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// grid spaces points samples evenly over [0, 48π]. A single sample sits at 0.
func grid(points int) []float64 {
	theta := make([]float64, points)
	if points == 1 {
		return theta
	}
	return floats.Span(theta, 0, span)
}

func dynamicsRho(theta []float64, tempo, feature float64) []float64 {
	rho := make([]float64, len(theta))
	for i, t := range theta {
		rho[i] = tempo*math.Cos(5*t*feature) + 1
	}
	return rho
}

func articulationRho(theta []float64, normTempo, speechiness, feature float64) []float64 {
	rho := make([]float64, len(theta))
	for i, t := range theta {
		rho[i] = normTempo * (math.Sin(2*t*speechiness) + math.Cos(3*t*feature))
	}
	return rho
}

// PrintOptions sets the resolution of each category in a full print.
type PrintOptions struct {
	DynamicsPoints     int
	ArticulationPoints int
}

// Print holds both curve families of a track.
type Print struct {
	Dynamics     []Point `json:"dynamics" yaml:"dynamics"`
	Articulation []Point `json:"articulation" yaml:"articulation"`
}

// GeneratePrint computes both categories concurrently. The first failure
// is returned and no partial print is produced.
func GeneratePrint(ctx context.Context, fv domain.FeatureVector, opts PrintOptions) (Print, error) {
	var p Print
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pts, err := Generate(fv, opts.DynamicsPoints, Dynamics)
		if err != nil {
			return err
		}
		p.Dynamics = pts
		return ctx.Err()
	})
	g.Go(func() error {
		pts, err := Generate(fv, opts.ArticulationPoints, Articulation)
		if err != nil {
			return err
		}
		p.Articulation = pts
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return Print{}, err
	}
	return p, nil
}
