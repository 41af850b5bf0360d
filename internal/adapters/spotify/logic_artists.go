package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// genresForArtists resolves genre tags for artist ids, batching unseen ids
// through the several-artists endpoint and memoizing every answer for the
// lifetime of the client. Ids the API does not recognize memoize as nil so
// they are never refetched.
func (c *Client) genresForArtists(ctx context.Context, ids []string) (map[string][]string, error) {
	unique := lo.Uniq(lo.Compact(ids))
	missing := lo.Filter(unique, func(id string, _ int) bool {
		_, seen := c.artistGenres[id]
		return !seen
	})

	for _, batch := range lo.Chunk(missing, artistBatchLimit) {
		var out severalArtists
		path := "/artists?ids=" + strings.Join(batch, ",")
		if err := c.get(ctx, path, &out); err != nil {
			return nil, fmt.Errorf("spotify adapter: fetch artist genres: %w", err)
		}
		for _, a := range out.Artists {
			if a == nil {
				continue
			}
			c.artistGenres[a.ID] = a.Genres
		}
		for _, id := range batch {
			if _, ok := c.artistGenres[id]; !ok {
				c.artistGenres[id] = nil
			}
		}
	}

	result := make(map[string][]string, len(unique))
	for _, id := range unique {
		result[id] = c.artistGenres[id]
	}
	return result, nil
}

// songGenres unions the genre tags of the song's artists, deduped in
// first-seen order so downstream vocabularies stay deterministic.
func songGenres(t trackObject, genresByArtist map[string][]string) []string {
	return lo.Uniq(lo.FlatMap(t.artistIDs(), func(id string, _ int) []string {
		return genresByArtist[id]
	}))
}
