package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/ports"
)

// GetAudioFeatures fetches the analysis of one Spotify track. A 403, a 404
// or an all-zero payload is reported as ports.FeaturesUnavailableError so
// the caller can fall back to local analysis.
func (c *Client) GetAudioFeatures(ctx context.Context, externalID string) (domain.FeatureVector, error) {
	if externalID == "" {
		return domain.FeatureVector{}, ports.FeaturesUnavailableError{}
	}

	featuresURL := fmt.Sprintf("%s/audio-features/%s", c.baseURL, url.PathEscape(externalID))
	resp, err := c.getWithRetry(ctx, featuresURL)
	if err != nil {
		return domain.FeatureVector{}, fmt.Errorf("spotify adapter: features request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusNotFound:
		c.log.Warn().Str("external_id", externalID).Int("status", resp.StatusCode).Msg("audio features not available")
		return domain.FeatureVector{}, ports.FeaturesUnavailableError{ExternalID: externalID, Status: resp.StatusCode}
	default:
		return domain.FeatureVector{}, fmt.Errorf("spotify adapter: features status %d", resp.StatusCode)
	}

	var features spotifyAudioFeatures
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return domain.FeatureVector{}, fmt.Errorf("spotify adapter: features decode error: %w", err)
	}

	if features.allZero() {
		c.log.Warn().Str("external_id", externalID).Msg("audio features payload is empty")
		return domain.FeatureVector{}, ports.FeaturesUnavailableError{ExternalID: externalID}
	}

	return features.toDomain(), nil
}
