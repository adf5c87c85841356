// Package catalog maps cluster ids to their album-style display themes.
package catalog

// PlaceholderImage is shown when a cluster or track has no artwork.
const PlaceholderImage = "https://upload.wikimedia.org/wikipedia/commons/3/3c/No-album-art-placeholder.png"

// DefaultQuery is the search query used by themes that do not define their own.
const DefaultQuery = "top hits trending pop songs"

// Theme is the static display metadata for a cluster.
type Theme struct {
	Name     string `mapstructure:"name"`
	ImageURL string `mapstructure:"image"`
	Query    string `mapstructure:"query"` // optional
}

// SearchQuery returns the theme's query, or DefaultQuery when it has none.
func (t Theme) SearchQuery() string {
	if t.Query == "" {
		return DefaultQuery
	}
	return t.Query
}

// DefaultTheme is used for any cluster id missing from the catalog.
var DefaultTheme = Theme{
	Name:     "🎶 Mixed Trending Tracks",
	ImageURL: PlaceholderImage,
	Query:    DefaultQuery,
}

// builtinThemes are the themes shipped with the application.
var builtinThemes = map[int]Theme{
	0: {
		Name:     "🔥 Party & Dance Hits",
		ImageURL: "https://imgs.search.brave.com/_taxu7GmF6QRbtawOTCPaFEKwop_jukWIM1QTIApGKA/rs:fit:860:0:0:0/g:ce/aHR0cHM6Ly9tLm1l/ZGlhLWFtYXpvbi5j/b20vaW1hZ2VzL0kv/ODFMeG12RUN1ZUwu/anBn",
	},
	1: {
		Name:     "🌙 Chill Acoustic Vibes",
		ImageURL: "https://imgs.search.brave.com/q1kqJEUy9Tq8xMVuAzV1G_Ig0_WNHvfjohuqNTeUfuE/rs:fit:860:0:0:0/g:ce/aHR0cHM6Ly9tLm1l/ZGlhLWFtYXpvbi5j/b20vaW1hZ2VzL0kv/ODFPbDduUTJDY0wu/anBn",
	},
	2: {
		Name:     "💥 Energetic Pop Beats",
		ImageURL: "https://imgs.search.brave.com/RKN6lvtgPAAIiXkdFF25SwHiPNmXJ9BGMr5zl9mJ0Z0/rs:fit:860:0:0:0/g:ce/aHR0cHM6Ly9tLm1l/ZGlhLWFtYXpvbi5j/b20vaW1hZ2VzL0kv/ODFHN05HMDlyT0wu/anBn",
	},
	3: {
		Name:     "🎸 Indie & Alternative",
		ImageURL: "https://imgs.search.brave.com/jG2C8uribNb9Fbpq1QF1o5j1c41JvvF3zG2a1KqpMzQ/rs:fit:860:0:0:0/g:ce/aHR0cHM6Ly9tLm1l/ZGlhLWFtYXpvbi5j/b20vaW1hZ2VzL0kv/ODF4c2xOQzFncUwu/anBn",
	},
	4: {
		Name:     "🎹 Instrumental Lounge",
		ImageURL: "https://imgs.search.brave.com/tDKE7uogb68s43TGVNsin0iGsLB6AXg1cFwjUcf1IiE/rs:fit:860:0:0:0/g:ce/aHR0cHM6Ly9tLm1l/ZGlhLWFtYXpvbi5j/b20vaW1hZ2VzL0kv/NzFVZkl1ZmxXQUwu/anBn",
	},
	5: {
		Name:     "❤️ Romantic & Soft Songs",
		ImageURL: "https://imgs.search.brave.com/woS0G6KNkCJ5IV6ugC2Mz6j78CcRia9kzyv8c5zYLv4/rs:fit:860:0:0:0/g:ce/aHR0cHM6Ly9tLm1l/ZGlhLWFtYXpvbi5j/b20vaW1hZ2VzL0kv/NTFqalRGRERUT0wu/anBn",
	},
}

// Catalog is a read-only id -> Theme mapping.
type Catalog struct {
	themes map[int]Theme
}

// New returns the built-in catalog with overrides applied on top.
// Override fields left empty keep the built-in value.
func New(overrides map[int]Theme) *Catalog {
	themes := make(map[int]Theme, len(builtinThemes)+len(overrides))
	for id, t := range builtinThemes {
		themes[id] = t
	}
	for id, o := range overrides {
		t := themes[id]
		if o.Name != "" {
			t.Name = o.Name
		}
		if o.ImageURL != "" {
			t.ImageURL = o.ImageURL
		}
		if o.Query != "" {
			t.Query = o.Query
		}
		if t.Name == "" {
			t.Name = DefaultTheme.Name
		}
		if t.ImageURL == "" {
			t.ImageURL = DefaultTheme.ImageURL
		}
		themes[id] = t
	}
	return &Catalog{themes: themes}
}

// Lookup returns the theme for id, falling back to DefaultTheme.
func (c *Catalog) Lookup(id int) Theme {
	if t, ok := c.themes[id]; ok {
		return t
	}
	return DefaultTheme
}

// Themed reports whether id has its own theme.
func (c *Catalog) Themed(id int) bool {
	_, ok := c.themes[id]
	return ok
}

// Tile is one album in the cluster gallery.
type Tile struct {
	ClusterID int
	Theme     Theme
}

// Gallery returns one tile per cluster id, in the order given.
func (c *Catalog) Gallery(ids []int) []Tile {
	tiles := make([]Tile, len(ids))
	for i, id := range ids {
		tiles[i] = Tile{ClusterID: id, Theme: c.Lookup(id)}
	}
	return tiles
}
