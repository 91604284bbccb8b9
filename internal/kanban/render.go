package kanban

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

var columnStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1).
	Width(28)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	updateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var priorityColors = map[domain.TicketPriority]lipgloss.Color{
	domain.TicketPriorityLow:    lipgloss.Color("244"),
	domain.TicketPriorityMedium: lipgloss.Color("39"),
	domain.TicketPriorityHigh:   lipgloss.Color("214"),
	domain.TicketPriorityUrgent: lipgloss.Color("196"),
}

// Render draws the view as side-by-side columns for a terminal.
func Render(view View) string {
	header := titleStyle.Render(fmt.Sprintf("%s (%d)", view.Label, view.Total))
	if view.Updating {
		header += " " + updateStyle.Render("updating…")
	}

	columns := make([]string, 0, len(view.Columns))
	for _, col := range view.Columns {
		columns = append(columns, renderColumn(col))
	}

	parts := []string{header}
	if view.Error != "" {
		parts = append(parts, errorStyle.Render("error: "+view.Error))
	}
	parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderColumn(col ColumnView) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", col.Title, col.Count))}
	if len(col.Cards) == 0 {
		lines = append(lines, faintStyle.Render("no tickets"))
	}
	for _, c := range col.Cards {
		priority := lipgloss.NewStyle().Foreground(priorityColors[c.Priority]).Render(string(c.Priority))
		lines = append(lines,
			c.Subject,
			priority+" "+faintStyle.Render(c.Merchant+" · "+c.Assignee),
		)
	}
	style := columnStyle
	if col.DragOver {
		style = style.BorderForeground(lipgloss.Color("39"))
	}
	return style.Render(strings.Join(lines, "\n"))
}
