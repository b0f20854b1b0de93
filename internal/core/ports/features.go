package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

// ErrFeaturesUnavailable indicates the provider holds no analysis for a track.
var ErrFeaturesUnavailable = errors.New("audio features unavailable")

// FeaturesUnavailableError names the track the provider could not analyse.
type FeaturesUnavailableError struct {
	ExternalID string
	Status     int
}

func (e FeaturesUnavailableError) Error() string {
	if e.ExternalID == "" {
		return ErrFeaturesUnavailable.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("audio features unavailable for %q (status %d)", e.ExternalID, e.Status)
	}
	return fmt.Sprintf("audio features unavailable for %q", e.ExternalID)
}

func (e FeaturesUnavailableError) Is(target error) bool {
	return target == ErrFeaturesUnavailable
}

// FeatureProvider fetches audio analysis from an external catalogue.
type FeatureProvider interface {
	GetAudioFeatures(ctx context.Context, externalID string) (domain.FeatureVector, error)
}
