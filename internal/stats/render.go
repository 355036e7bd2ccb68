package stats

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563eb"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	kindColors = map[Kind]lipgloss.Color{
		KindGood:    lipgloss.Color("#22c55e"),
		KindBad:     lipgloss.Color("#ef4444"),
		KindActive:  lipgloss.Color("#3b82f6"),
		KindIdle:    lipgloss.Color("#9ca3af"),
		KindWarning: lipgloss.Color("#eab308"),
	}
)

// Render draws the report as one bar chart per section
func Render(r Report, width int) string {
	if width < 30 {
		width = 30
	}

	var b strings.Builder
	header := titleStyle.Render("Stats: " + r.Range.Title())
	if r.From != nil && r.To != nil {
		last := r.To.AddDate(0, 0, -1)
		header += "  " + mutedStyle.Render(fmt.Sprintf("%s → %s", r.From.Format("Jan 02"), last.Format("Jan 02, 2006")))
	}
	b.WriteString(header + "\n\n")

	if r.Empty() {
		b.WriteString(mutedStyle.Render("No data available") + "\n")
		return b.String()
	}

	sections := []struct {
		title   string
		buckets []Bucket
	}{
		{"Pomodoros", r.Pomodoros},
		{"Tasks", r.Tasks},
		{"Plans", r.Plans},
	}
	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.title))
		if s.title == "Pomodoros" && r.FocusMinutes > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%d min focused)", r.FocusMinutes)))
		}
		b.WriteString("\n")
		if len(s.buckets) == 0 {
			b.WriteString(mutedStyle.Render("  none") + "\n\n")
			continue
		}
		b.WriteString(renderChart(s.buckets, width) + "\n")
		b.WriteString(renderLegend(s.buckets) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderChart(buckets []Bucket, width int) string {
	chart := barchart.New(width, 8)
	var bars []barchart.BarData
	for _, bucket := range buckets {
		bars = append(bars, barchart.BarData{
			Label: bucket.Label,
			Values: []barchart.BarValue{{
				Name:  bucket.Label,
				Value: float64(bucket.Count),
				Style: lipgloss.NewStyle().Foreground(kindColors[bucket.Kind]),
			}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

func renderLegend(buckets []Bucket) string {
	parts := make([]string, 0, len(buckets))
	for _, bucket := range buckets {
		dot := lipgloss.NewStyle().Foreground(kindColors[bucket.Kind]).Render("●")
		parts = append(parts, fmt.Sprintf("%s %s %d", dot, bucket.Label, bucket.Count))
	}
	return "  " + strings.Join(parts, "   ")
}
