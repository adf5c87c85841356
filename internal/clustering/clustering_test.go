package clustering

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

const songsCSV = `track_name,energy,valence,acousticness,tempo,cluster
a,0.9,0.8,0.1,120,0
b,0.7,0.6,0.2,128,0
c,0.2,0.3,0.9,70,1
d,0.4,0.1,0.7,80,1
e,0.3,0.2,0.8,75,1
`

func mustRead(t *testing.T, s string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Read(strings.NewReader(s))
	if err != nil {
		t.Fatalf("dataset.Read() error = %v", err)
	}
	return ds
}

func TestProfiles(t *testing.T) {
	ds := mustRead(t, songsCSV)

	profiles, err := Profiles(ds, []string{"energy", "tempo"})
	if err != nil {
		t.Fatalf("Profiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}

	tests := []struct {
		id     int
		size   int
		energy float64
		tempo  float64
	}{
		{0, 2, 0.8, 124},
		{1, 3, 0.3, 75},
	}
	for k, tt := range tests {
		p := profiles[k]
		if p.ID != tt.id || p.Size != tt.size {
			t.Errorf("profile %d = (id %d, size %d), want (%d, %d)", k, p.ID, p.Size, tt.id, tt.size)
		}
		if math.Abs(p.Means["energy"]-tt.energy) > 1e-9 {
			t.Errorf("profile %d energy = %v, want %v", k, p.Means["energy"], tt.energy)
		}
		if math.Abs(p.Means["tempo"]-tt.tempo) > 1e-9 {
			t.Errorf("profile %d tempo = %v, want %v", k, p.Means["tempo"], tt.tempo)
		}
	}
}

func TestMoodProfiles(t *testing.T) {
	profiles, err := MoodProfiles(mustRead(t, songsCSV))
	if err != nil {
		t.Fatalf("MoodProfiles() error = %v", err)
	}

	if got := profiles[0].Mood().Name; got != "Upbeat Party" {
		t.Errorf("cluster 0 mood = %q, want %q", got, "Upbeat Party")
	}
	if got := profiles[1].Mood().Name; got != "Reflective & Melancholy (Acoustic)" {
		t.Errorf("cluster 1 mood = %q, want %q", got, "Reflective & Melancholy (Acoustic)")
	}
}

func TestProfiles_MissingColumn(t *testing.T) {
	ds := mustRead(t, "energy,cluster\n0.5,0\n")

	_, err := MoodProfiles(ds)
	if !errors.Is(err, dataset.ErrMissingColumn) {
		t.Errorf("MoodProfiles() error = %v, want ErrMissingColumn", err)
	}
}
