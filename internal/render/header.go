package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Title is the application name shown in the header.
const Title = "nollama"

type palette struct {
	title   lipgloss.Style
	model   lipgloss.Style
	notice  lipgloss.Style
	status  lipgloss.Style
	spinner lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	return palette{
		title:   r.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("9")),
		model:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		notice:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		status:  r.NewStyle().Faint(true),
		spinner: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// header lays out the title centered and the model right aligned.
func header(p palette, width int, model string) string {
	if width <= 0 {
		width = defaultWidth
	}

	label := "Model: " + model
	if runewidth.StringWidth(label) > width {
		label = runewidth.Truncate(label, width, "…")
	}

	title := lipgloss.PlaceHorizontal(width, lipgloss.Center, p.title.Render(Title))
	line := lipgloss.PlaceHorizontal(width, lipgloss.Right, p.model.Render(label))
	return title + "\n" + line + "\n"
}
