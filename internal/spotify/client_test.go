package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/justestif/go-music-cluster-explorer/internal/auth"
	"github.com/justestif/go-music-cluster-explorer/internal/catalog"
)

func TestConvertTrack(t *testing.T) {
	tests := []struct {
		name        string
		full        spotify.FullTrack
		wantArtist  string
		wantCover   string
		wantPreview bool
	}{
		{
			name: "all fields",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:         "track123",
					Name:       "Test Song",
					PreviewURL: "https://p.scdn.co/mp3-preview/abc",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist One"},
						{Name: "Artist Two"},
					},
				},
				Album: spotify.SimpleAlbum{
					Images: []spotify.Image{
						{URL: "https://i.scdn.co/image/large"},
						{URL: "https://i.scdn.co/image/small"},
					},
				},
			},
			wantArtist:  "Artist One",
			wantCover:   "https://i.scdn.co/image/large",
			wantPreview: true,
		},
		{
			name: "no images no preview",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:      "track456",
					Name:    "Bare Track",
					Artists: []spotify.SimpleArtist{{Name: "Solo"}},
				},
			},
			wantArtist:  "Solo",
			wantCover:   catalog.PlaceholderImage,
			wantPreview: false,
		},
		{
			name: "no artists",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track000",
					Name: "Unknown Track",
				},
			},
			wantArtist: "",
			wantCover:  catalog.PlaceholderImage,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := convertTrack(tt.full)

			if got.Name != tt.full.Name {
				t.Errorf("Name = %q, want %q", got.Name, tt.full.Name)
			}
			if got.Artist != tt.wantArtist {
				t.Errorf("Artist = %q, want %q", got.Artist, tt.wantArtist)
			}
			if got.Cover() != tt.wantCover {
				t.Errorf("Cover() = %q, want %q", got.Cover(), tt.wantCover)
			}
			if got.HasPreview() != tt.wantPreview {
				t.Errorf("HasPreview() = %v, want %v", got.HasPreview(), tt.wantPreview)
			}
		})
	}
}

func TestRandomOffset_Range(t *testing.T) {
	next := RandomOffset(DefaultMaxOffset)
	for i := 0; i < 1000; i++ {
		if v := next(); v < 0 || v >= DefaultMaxOffset {
			t.Fatalf("offset %d outside [0, %d)", v, DefaultMaxOffset)
		}
	}

	if v := RandomOffset(0)(); v != 0 {
		t.Errorf("RandomOffset(0)() = %d, want 0", v)
	}
}

// searchServer answers /search with the given items and records query parameters.
func searchServer(t *testing.T, status int, items []map[string]any, seen chan<- map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if seen != nil {
			q := r.URL.Query()
			seen <- map[string]string{
				"q":      q.Get("q"),
				"type":   q.Get("type"),
				"limit":  q.Get("limit"),
				"offset": q.Get("offset"),
				"auth":   r.Header.Get("Authorization"),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"status": status, "message": "The access token expired"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"tracks": map[string]any{"items": items, "total": len(items)},
		})
	}))
}

func newTestCatalog(t *testing.T, server *httptest.Server, offset int) *Catalog {
	t.Helper()
	a, err := auth.New("id", "secret", auth.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("auth.New() error = %v", err)
	}
	c := NewCatalog(a, CatalogConfig{APIURL: server.URL + "/"})
	c.offset = func() int { return offset }
	return c
}

func TestCatalogSearch(t *testing.T) {
	seen := make(chan map[string]string, 1)
	items := []map[string]any{
		{
			"id":          "1",
			"name":        "First",
			"preview_url": "https://p.scdn.co/1",
			"artists":     []map[string]any{{"name": "Band"}},
			"album": map[string]any{
				"images": []map[string]any{{"url": "https://i.scdn.co/1"}},
			},
		},
		{
			"id":      "2",
			"name":    "Second",
			"artists": []map[string]any{{"name": "Singer"}},
			"album":   map[string]any{"images": []map[string]any{}},
		},
	}
	server := searchServer(t, http.StatusOK, items, seen)
	defer server.Close()

	c := newTestCatalog(t, server, 137)
	token := &oauth2.Token{AccessToken: "tok", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}

	tracks, err := c.Search(context.Background(), token, catalog.DefaultQuery)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	params := <-seen
	if params["q"] != catalog.DefaultQuery {
		t.Errorf("q = %q, want %q", params["q"], catalog.DefaultQuery)
	}
	if params["type"] != "track" {
		t.Errorf("type = %q, want track", params["type"])
	}
	if params["limit"] != strconv.Itoa(DefaultSearchLimit) {
		t.Errorf("limit = %q, want %d", params["limit"], DefaultSearchLimit)
	}
	if params["offset"] != "137" {
		t.Errorf("offset = %q, want 137", params["offset"])
	}
	if params["auth"] != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", params["auth"])
	}

	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	if tracks[0].Artist != "Band" || tracks[0].CoverURL != "https://i.scdn.co/1" {
		t.Errorf("tracks[0] = %+v", tracks[0])
	}
	if tracks[1].HasPreview() {
		t.Error("tracks[1] should have no preview")
	}
}

func TestCatalogSearch_Empty(t *testing.T) {
	server := searchServer(t, http.StatusOK, []map[string]any{}, nil)
	defer server.Close()

	c := newTestCatalog(t, server, 0)
	tracks, err := c.Search(context.Background(), &oauth2.Token{AccessToken: "tok"}, "nothing")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if tracks == nil || len(tracks) != 0 {
		t.Errorf("Search() = %v, want empty non-nil slice", tracks)
	}
}

func TestCatalogSearch_Unauthorized(t *testing.T) {
	server := searchServer(t, http.StatusUnauthorized, nil, nil)
	defer server.Close()

	c := newTestCatalog(t, server, 0)
	_, err := c.Search(context.Background(), &oauth2.Token{AccessToken: "stale"}, "q")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Search() error = %v, want ErrUnauthorized", err)
	}
}

func TestCatalogSearch_ExpiredTokenSkipsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("expired token should not reach the API")
	}))
	defer server.Close()

	c := newTestCatalog(t, server, 0)
	expired := &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Minute)}

	if _, err := c.Search(context.Background(), expired, "q"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Search() error = %v, want ErrUnauthorized", err)
	}
	if _, err := c.Search(context.Background(), nil, "q"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Search(nil token) error = %v, want ErrUnauthorized", err)
	}
}
