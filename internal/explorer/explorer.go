// Package explorer holds the per-session cluster selection state machine.
//
// A session starts with no selection. Explore selects a cluster and fetches a fresh
// batch of sample tracks for its query; Shuffle re-fetches for the current selection.
// Every action issues exactly one search and replaces the stored tracks.
package explorer

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/justestif/go-music-cluster-explorer/internal/auth"
	"github.com/justestif/go-music-cluster-explorer/internal/catalog"
	"github.com/justestif/go-music-cluster-explorer/internal/spotify"
)

// GridSize is the maximum number of tracks shown for a selection.
const GridSize = 9

// ErrNoSelection is returned by Shuffle before any cluster has been explored.
var ErrNoSelection = errors.New("no cluster selected")

// Notice classifies the outcome of the last fetch for display.
type Notice int

const (
	// NoticeNone means the fetch returned tracks.
	NoticeNone Notice = iota
	// NoticeNoSongs means the search succeeded but returned nothing.
	NoticeNoSongs
	// NoticeAuth means a token could not be obtained or was rejected.
	NoticeAuth
	// NoticeUnavailable means the search failed for any other reason.
	NoticeUnavailable
)

// String returns the user-facing hint for the notice.
func (n Notice) String() string {
	switch n {
	case NoticeNoSongs:
		return "No songs found. Try again!"
	case NoticeAuth:
		return "Could not authenticate with the music catalog."
	case NoticeUnavailable:
		return "The music catalog is unavailable right now."
	default:
		return ""
	}
}

// Catalog obtains tokens and searches tracks.
type Catalog interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	Search(ctx context.Context, token *oauth2.Token, query string) ([]spotify.Track, error)
}

// Selection is the currently explored cluster and its last fetched tracks.
type Selection struct {
	ClusterID int
	Query     string
	Tracks    []spotify.Track
	Notice    Notice
}

// State is the session context passed into every action.
type State struct {
	Selection *Selection // nil until the first Explore
	Token     *oauth2.Token
	Fetches   int // Number of searches issued in this session
}

// Selected reports whether a cluster has been explored.
func (s *State) Selected() bool {
	return s.Selection != nil
}

// Explorer performs selection actions against a catalog.
type Explorer struct {
	themes  *catalog.Catalog
	catalog Catalog
	logger  *slog.Logger
}

// New creates an Explorer.
func New(themes *catalog.Catalog, c Catalog, logger *slog.Logger) *Explorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Explorer{themes: themes, catalog: c, logger: logger}
}

// Explore selects clusterID and stores a fresh batch of tracks for its query.
func (e *Explorer) Explore(ctx context.Context, st *State, clusterID int) {
	theme := e.themes.Lookup(clusterID)
	st.Selection = &Selection{
		ClusterID: clusterID,
		Query:     theme.SearchQuery(),
	}
	e.fetch(ctx, st)
}

// Shuffle re-fetches tracks for the current selection.
func (e *Explorer) Shuffle(ctx context.Context, st *State) error {
	if !st.Selected() {
		return ErrNoSelection
	}
	e.fetch(ctx, st)
	return nil
}

// fetch runs one search and records the outcome. Failures never propagate: the
// selection ends up with no tracks and a notice describing why.
func (e *Explorer) fetch(ctx context.Context, st *State) {
	sel := st.Selection
	sel.Tracks = nil
	st.Fetches++

	if st.Token == nil {
		token, err := e.catalog.Token(ctx)
		if err != nil {
			e.logger.Warn("token acquisition failed", "cluster", sel.ClusterID, "err", err)
			sel.Notice = NoticeAuth
			return
		}
		st.Token = token
	}

	tracks, err := e.catalog.Search(ctx, st.Token, sel.Query)
	switch {
	case err == nil && len(tracks) == 0:
		sel.Notice = NoticeNoSongs
	case err == nil:
		sel.Tracks = tracks
		sel.Notice = NoticeNone
	case errors.Is(err, spotify.ErrUnauthorized) || errors.Is(err, auth.ErrTokenUnavailable):
		e.logger.Warn("catalog rejected token", "cluster", sel.ClusterID, "err", err)
		// Drop the token so the next action acquires a new one.
		st.Token = nil
		sel.Notice = NoticeAuth
	default:
		e.logger.Error("track search failed", "cluster", sel.ClusterID, "query", sel.Query, "err", err)
		sel.Notice = NoticeUnavailable
	}
}

// Grid returns the tracks to display, at most GridSize.
func (s *Selection) Grid() []spotify.Track {
	if len(s.Tracks) > GridSize {
		return s.Tracks[:GridSize]
	}
	return s.Tracks
}
