package catalog

import "testing"

func TestLookup(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name      string
		id        int
		wantName  string
		wantQuery string
	}{
		{"themed cluster", 0, "🔥 Party & Dance Hits", DefaultQuery},
		{"last themed cluster", 5, "❤️ Romantic & Soft Songs", DefaultQuery},
		{"unknown cluster falls back", 7, DefaultTheme.Name, DefaultQuery},
		{"large id falls back", 1000, DefaultTheme.Name, DefaultQuery},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := c.Lookup(tt.id)
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.SearchQuery() != tt.wantQuery {
				t.Errorf("SearchQuery() = %q, want %q", got.SearchQuery(), tt.wantQuery)
			}
		})
	}
}

func TestLookup_DefaultTheme(t *testing.T) {
	got := New(nil).Lookup(42)
	if got != DefaultTheme {
		t.Errorf("Lookup(42) = %+v, want DefaultTheme", got)
	}
	if got.ImageURL != PlaceholderImage {
		t.Errorf("ImageURL = %q, want placeholder", got.ImageURL)
	}
}

func TestGallery_ThreeClusters(t *testing.T) {
	c := New(nil)
	tiles := c.Gallery([]int{0, 1, 2})

	if len(tiles) != 3 {
		t.Fatalf("Gallery() returned %d tiles, want 3", len(tiles))
	}

	want := []string{"🔥 Party & Dance Hits", "🌙 Chill Acoustic Vibes", "💥 Energetic Pop Beats"}
	for i, tile := range tiles {
		if tile.ClusterID != i {
			t.Errorf("tile %d ClusterID = %d", i, tile.ClusterID)
		}
		if tile.Theme.Name != want[i] {
			t.Errorf("tile %d Name = %q, want %q", i, tile.Theme.Name, want[i])
		}
		if tile.Theme.ImageURL != builtinThemes[i].ImageURL {
			t.Errorf("tile %d ImageURL = %q", i, tile.Theme.ImageURL)
		}
	}
}

func TestNew_Overrides(t *testing.T) {
	c := New(map[int]Theme{
		1: {Query: "acoustic chill"},
		9: {Name: "Late Night"},
	})

	one := c.Lookup(1)
	if one.Name != "🌙 Chill Acoustic Vibes" {
		t.Errorf("override cleared built-in name: %q", one.Name)
	}
	if one.SearchQuery() != "acoustic chill" {
		t.Errorf("SearchQuery() = %q, want override", one.SearchQuery())
	}

	nine := c.Lookup(9)
	if !c.Themed(9) {
		t.Error("Themed(9) = false, want true")
	}
	if nine.Name != "Late Night" {
		t.Errorf("Name = %q, want Late Night", nine.Name)
	}
	if nine.ImageURL != PlaceholderImage {
		t.Errorf("ImageURL = %q, want placeholder", nine.ImageURL)
	}
	if nine.SearchQuery() != DefaultQuery {
		t.Errorf("SearchQuery() = %q, want default", nine.SearchQuery())
	}
}
