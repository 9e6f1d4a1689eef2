package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Rounded border runes for dashboard panels.
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderPanel draws content inside a rounded border of the given outer
// size. The title sits in the top edge; badge, when non-empty, is
// right-aligned on the same edge (the dashboard uses it for counts).
// Pass "" for either to omit it.
func RenderPanel(content, title, badge string, width, height int) string {
	border := lipgloss.NewStyle().Foreground(BorderDefaultColor)
	titleStyle := lipgloss.NewStyle().Foreground(AccentColor)

	inner := max(width-2, 1)
	rows := max(height-2, 1)

	// lipgloss handles wrapping and truncation of the body.
	body := lipgloss.NewStyle().Width(inner).Height(rows).Render(content)
	lines := strings.Split(body, "\n")

	var b strings.Builder
	b.WriteString(topEdge(title, badge, inner, border, titleStyle))
	b.WriteString("\n")
	for i := 0; i < rows; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		if pad := inner - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		b.WriteString(border.Render(borderVertical))
		b.WriteString(line)
		b.WriteString(border.Render(borderVertical))
		b.WriteString("\n")
	}
	b.WriteString(border.Render(borderBottomLeft + strings.Repeat(borderHorizontal, inner) + borderBottomRight))
	return b.String()
}

// topEdge builds ╭─ Title ────── badge ─╮, degrading to a plain edge when
// the panel is too narrow for the text.
func topEdge(title, badge string, inner int, border, titleStyle lipgloss.Style) string {
	if inner < 1 {
		return border.Render(borderTopLeft + borderTopRight)
	}
	plain := border.Render(borderTopLeft + strings.Repeat(borderHorizontal, inner) + borderTopRight)
	if title == "" && badge == "" {
		return plain
	}

	// " badge ─" at the right edge when a badge is set.
	badgeCost := 0
	if badge != "" {
		badgeCost = lipgloss.Width(badge) + 3
	}

	if title == "" {
		dashes := inner - badgeCost
		if dashes < 1 {
			return plain
		}
		return border.Render(borderTopLeft+strings.Repeat(borderHorizontal, dashes)+" ") +
			titleStyle.Render(badge) +
			border.Render(" "+borderHorizontal+borderTopRight)
	}

	// "─ " before the title, " " after, and at least one middle dash.
	avail := inner - 4 - badgeCost
	if avail < 1 {
		return plain
	}
	shown := title
	if lipgloss.Width(shown) > avail {
		shown = TruncateString(shown, avail)
	}
	dashes := inner - 3 - lipgloss.Width(shown) - badgeCost

	var b strings.Builder
	b.WriteString(border.Render(borderTopLeft + borderHorizontal + " "))
	b.WriteString(titleStyle.Render(shown))
	b.WriteString(border.Render(" " + strings.Repeat(borderHorizontal, dashes)))
	if badge != "" {
		b.WriteString(border.Render(" "))
		b.WriteString(titleStyle.Render(badge))
		b.WriteString(border.Render(" " + borderHorizontal))
	}
	b.WriteString(border.Render(borderTopRight))
	return b.String()
}

// TruncateString shortens s to fit maxWidth terminal cells, appending an
// ellipsis when anything was cut.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	out := ""
	for _, r := range s {
		if lipgloss.Width(out+string(r)) > maxWidth-3 {
			break
		}
		out += string(r)
	}
	return out + "..."
}
