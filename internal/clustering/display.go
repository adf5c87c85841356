package clustering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// FormatSummary returns a human-readable table of cluster profiles.
// names adds an album column when non-nil. Cohesion columns are filled when a
// matching entry exists; pass nil to omit them.
func FormatSummary(profiles []Profile, names map[int]string, cohesion []Cohesion) string {
	var sb strings.Builder

	total := 0
	for _, p := range profiles {
		total += p.Size
	}

	if len(profiles) == 0 {
		sb.WriteString("No clusters found\n")
		return sb.String()
	}

	clusterWord := "cluster"
	if len(profiles) > 1 {
		clusterWord = "clusters"
	}
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Found %d %s from %d songs", len(profiles), clusterWord, total)))
	sb.WriteString("\n")

	byID := make(map[int]Cohesion, len(cohesion))
	for _, c := range cohesion {
		byID[c.ID] = c
	}

	headers := []string{"Cluster"}
	if names != nil {
		headers = append(headers, "Album")
	}
	headers = append(headers, "Songs", "Mood", "Energy", "Valence")
	if cohesion != nil {
		headers = append(headers, "Silhouette", "Agreement")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, p := range profiles {
		mood := p.Mood()
		row := []string{strconv.Itoa(p.ID)}
		if names != nil {
			row = append(row, names[p.ID])
		}
		row = append(row,
			strconv.Itoa(p.Size),
			mood.Name,
			formatFloat(mood.Energy),
			formatFloat(mood.Valence),
		)
		if cohesion != nil {
			if c, ok := byID[p.ID]; ok {
				row = append(row, formatFloat(c.Silhouette), fmt.Sprintf("%.0f%%", c.Agreement*100))
			} else {
				row = append(row, "-", "-")
			}
		}
		t.Row(row...)
	}

	sb.WriteString(t.String())
	sb.WriteString("\n")
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
