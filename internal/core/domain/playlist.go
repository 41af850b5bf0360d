package domain

import "errors"

// LikedSongsID is the pseudo playlist id used when the base collection is
// the user's Liked Songs library rather than a real playlist.
const LikedSongsID = "liked_songs"

type Playlist struct {
	ID    string
	Name  string
	Songs []Song

	// Playlist-scoped vocabularies backing the songs' one-hot vectors.
	// Rebuilt by Reindex whenever the song set changes.
	Genres  Vocabulary
	Artists Vocabulary
}

func NewPlaylist(id, name string) (*Playlist, error) {
	if id == "" || name == "" {
		return nil, errors.New("domain: invalid argument")
	}
	return &Playlist{
		ID:    id,
		Name:  name,
		Songs: []Song{},
	}, nil
}

// AddSong appends a song while preventing duplicate track ids. Local files
// and other id-less entries are rejected rather than silently kept.
func (p *Playlist) AddSong(s Song) error {
	if s.ID == "" {
		return errors.New("domain: song without id")
	}
	for _, ex := range p.Songs {
		if ex.ID == s.ID {
			return ErrDuplicateSong
		}
	}
	p.Songs = append(p.Songs, s)
	return nil
}

// Reindex rebuilds both vocabularies from the current song set and refreshes
// every song's one-hot vectors against them. Encoding is idempotent: calling
// Reindex twice in a row yields identical vectors.
func (p *Playlist) Reindex() {
	p.Genres = NewVocabulary()
	p.Artists = NewVocabulary()
	for _, s := range p.Songs {
		p.Genres.Add(s.Genres...)
		p.Artists.Add(s.Artists...)
	}
	for i := range p.Songs {
		p.Songs[i].GenresIndexed = p.Genres.Encode(p.Songs[i].Genres)
		p.Songs[i].ArtistsIndexed = p.Artists.Encode(p.Songs[i].Artists)
	}
}

// SongsByArtist returns the songs crediting the given artist, in playlist
// order.
func (p *Playlist) SongsByArtist(artist string) []Song {
	var out []Song
	for _, s := range p.Songs {
		if s.HasArtist(artist) {
			out = append(out, s)
		}
	}
	return out
}
