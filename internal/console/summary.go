package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

var (
	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	summaryKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(10)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

// RenderSummary formats batch stats as a small box.
func RenderSummary(s pipeline.Stats) string {
	rows := []struct {
		key string
		val int
	}{
		{"scanned", s.Scanned},
		{"matched", s.Matched},
		{"succeeded", s.Succeeded},
		{"skipped", s.Skipped},
		{"failed", s.Failed},
		{"resumed", s.Resumed},
	}
	var b strings.Builder
	for i, r := range rows {
		val := fmt.Sprintf("%d", r.val)
		if r.key == "failed" && r.val > 0 {
			val = failedStyle.Render(val)
		}
		b.WriteString(summaryKeyStyle.Render(r.key) + " " + val)
		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return summaryBoxStyle.Render(b.String())
}
