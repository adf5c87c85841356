package clustering

// Thresholds above which a cluster counts as energetic, positive or acoustic.
const (
	highEnergy       = 0.6
	highValence      = 0.5
	highAcousticness = 0.6
)

// mood is one cell of the energy/valence grid.
type mood struct {
	name        string
	description string
}

// moodGrid is indexed by [energetic][positive].
var moodGrid = [2][2]mood{
	{
		{"Reflective & Melancholy", "Contemplative and introspective, for quiet moments"},
		{"Chill & Happy", "Relaxed and uplifting, great for unwinding"},
	},
	{
		{"Intense & Dark", "Driving energy with darker emotional tones"},
		{"Upbeat Party", "High-energy, positive vibes for dancing and celebrations"},
	},
}

// MoodCategory is a cluster's mood as shown on its gallery tile.
type MoodCategory struct {
	Name        string
	Energy      float64
	Valence     float64
	Acoustic    bool
	Description string
}

func bit(high bool) int {
	if high {
		return 1
	}
	return 0
}

// GetMoodCategory places cluster means on the energy/valence grid. Missing
// features read as zero. Mostly acoustic clusters get an "(Acoustic)" suffix.
func GetMoodCategory(means map[string]float64) MoodCategory {
	energy, valence := means["energy"], means["valence"]
	m := moodGrid[bit(energy > highEnergy)][bit(valence > highValence)]

	c := MoodCategory{
		Name:        m.name,
		Energy:      energy,
		Valence:     valence,
		Acoustic:    means["acousticness"] > highAcousticness,
		Description: m.description,
	}
	if c.Acoustic {
		c.Name += " (Acoustic)"
	}
	return c
}
