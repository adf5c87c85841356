// Package spotify provides track search over the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/justestif/go-music-cluster-explorer/internal/auth"
)

const (
	// DefaultSearchLimit is the number of tracks requested per search.
	DefaultSearchLimit = 12

	// DefaultMaxOffset bounds the random result offset (exclusive).
	DefaultMaxOffset = 500
)

// ErrUnauthorized is returned when the API rejects the access token or the token
// has expired.
var ErrUnauthorized = errors.New("spotify rejected the access token")

// OffsetFunc picks the result offset for one search.
type OffsetFunc func() int

// RandomOffset returns an OffsetFunc drawing uniformly from [0, n).
func RandomOffset(n int) OffsetFunc {
	if n <= 0 {
		return func() int { return 0 }
	}
	return func() int { return rand.Intn(n) }
}

// Client wraps the Spotify API client with track search.
type Client struct {
	api    *spotify.Client
	limit  int
	offset OffsetFunc
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, limit int, offset OffsetFunc) *Client {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if offset == nil {
		offset = RandomOffset(DefaultMaxOffset)
	}
	return &Client{api: api, limit: limit, offset: offset}
}

// SearchTracks runs one track search at a fresh offset so repeated calls for the
// same query return different tracks. A search with no hits returns an empty slice.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	offset := c.offset()

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack,
		spotify.Limit(c.limit),
		spotify.Offset(offset),
	)
	if err != nil {
		return nil, fmt.Errorf("searching tracks (offset %d): %w", offset, classify(err))
	}

	if result.Tracks == nil {
		return []Track{}, nil
	}

	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// classify maps a 401 from the API onto ErrUnauthorized.
func classify(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	}
	return err
}

// convertTrack converts a Spotify FullTrack to a Track.
func convertTrack(t spotify.FullTrack) Track {
	track := Track{
		ID:         t.ID.String(),
		Name:       t.Name,
		PreviewURL: t.PreviewURL,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		track.CoverURL = t.Album.Images[0].URL
	}
	return track
}

// Catalog searches on behalf of a session holding its own token.
type Catalog struct {
	auth   *auth.Authenticator
	apiURL string
	limit  int
	offset OffsetFunc
}

// CatalogConfig holds catalog search settings.
type CatalogConfig struct {
	APIURL    string // Empty uses the public Spotify API
	Limit     int
	MaxOffset int
}

// NewCatalog creates a Catalog that exchanges tokens through a.
func NewCatalog(a *auth.Authenticator, cfg CatalogConfig) *Catalog {
	maxOffset := cfg.MaxOffset
	if maxOffset <= 0 {
		maxOffset = DefaultMaxOffset
	}
	return &Catalog{
		auth:   a,
		apiURL: cfg.APIURL,
		limit:  cfg.Limit,
		offset: RandomOffset(maxOffset),
	}
}

// Token acquires a new client-credentials token.
func (c *Catalog) Token(ctx context.Context) (*oauth2.Token, error) {
	return c.auth.Token(ctx)
}

// Search runs one track search with the given token.
// An expired token fails with ErrUnauthorized without contacting the API.
func (c *Catalog) Search(ctx context.Context, token *oauth2.Token, query string) ([]Track, error) {
	if token == nil || !token.Valid() {
		return nil, ErrUnauthorized
	}

	var opts []spotify.ClientOption
	if c.apiURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.apiURL))
	}

	api := spotify.New(c.auth.Client(ctx, token), opts...)
	return New(api, c.limit, c.offset).SearchTracks(ctx, query)
}
