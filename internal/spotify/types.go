package spotify

import "github.com/justestif/go-music-cluster-explorer/internal/catalog"

// Track is a search result reduced to what the track grid shows.
// Name and Artist are always set (possibly empty); cover and preview are optional.
type Track struct {
	ID         string
	Name       string
	Artist     string // Primary artist only
	CoverURL   string
	PreviewURL string
}

// Cover returns the album art URL, or the placeholder image when there is none.
func (t Track) Cover() string {
	if t.CoverURL == "" {
		return catalog.PlaceholderImage
	}
	return t.CoverURL
}

// HasPreview reports whether the track has a short audio preview.
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}
