package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// featuresForTracks fetches the audio analysis for track ids in batches of
// up to one hundred, keyed by track id. Tracks the API has no analysis for
// are simply absent from the result.
func (c *Client) featuresForTracks(ctx context.Context, ids []string) (map[string]audioFeaturesObject, error) {
	result := make(map[string]audioFeaturesObject, len(ids))

	for _, batch := range lo.Chunk(lo.Compact(ids), featureBatchLimit) {
		var out audioFeaturesBatch
		path := "/audio-features?ids=" + strings.Join(batch, ",")
		if err := c.get(ctx, path, &out); err != nil {
			return nil, fmt.Errorf("spotify adapter: fetch audio features: %w", err)
		}
		for _, f := range out.AudioFeatures {
			if f == nil {
				continue
			}
			result[f.ID] = *f
		}
	}

	return result, nil
}
