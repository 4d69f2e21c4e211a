package database

import (
	"sort"
	"strings"

	"palco/internal/models"
)

// SetArtists loads the artist roster into the in-memory cache. The roster is
// seeded from configuration at startup; profile management happens elsewhere.
func (db *DB) SetArtists(artists []models.Artist) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.artists = make(map[int64]models.Artist, len(artists))
	for _, artist := range artists {
		db.artists[artist.ID] = artist
	}
}

func (db *DB) GetArtist(id int64) (*models.Artist, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	artist, ok := db.artists[id]
	if !ok {
		return nil, ErrUnknownArtist
	}
	return &artist, nil
}

func (db *DB) Artists() []models.Artist {
	db.mu.RLock()
	defer db.mu.RUnlock()
	artists := make([]models.Artist, 0, len(db.artists))
	for _, artist := range db.artists {
		artists = append(artists, artist)
	}
	sort.Slice(artists, func(i, j int) bool { return artists[i].ID < artists[j].ID })
	return artists
}

// ArtistsByGenre returns roster entries that declared the genre, used by the
// gig-posted notification dispatcher.
func (db *DB) ArtistsByGenre(genre string) []models.Artist {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var matched []models.Artist
	for _, artist := range db.artists {
		for _, g := range artist.Genres {
			if strings.EqualFold(g, genre) {
				matched = append(matched, artist)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched
}
