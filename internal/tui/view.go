package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/assetview/internal/model"
)

const (
	statusLoading = "Loading..."
	statusSorting = "Sorting..."
	statusEmpty   = "No data found"
)

var assetColumns = []table.Column{
	{Title: "ID", Width: 6},
	{Title: "Host", Width: 28},
	{Title: "Comment", Width: 24},
	{Title: "Owner", Width: 10},
	{Title: "IPs", Width: 30},
	{Title: "Ports", Width: 16},
}

func newAssetTable(height int) table.Model {
	t := table.New(
		table.WithColumns(assetColumns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)

	return t
}

func assetRows(records []model.Asset) []table.Row {
	rows := make([]table.Row, len(records))
	for i, a := range records {
		rows[i] = table.Row{
			strconv.Itoa(a.ID),
			a.Host,
			a.Comment,
			a.Owner,
			a.IPList(),
			a.PortList(),
		}
	}
	return rows
}

// StatusText returns the message shown in place of the table, or "" when the
// table should be rendered. A page still being fetched always reads as
// loading; an empty page reads as sorting while the sort is pending.
func StatusText(s model.ViewState) string {
	switch {
	case s.Loading || s.Phase == model.PhaseIdle:
		return statusLoading
	case len(s.Records) == 0 && s.Sorting:
		return statusSorting
	case len(s.Records) == 0:
		return statusEmpty
	}
	return ""
}

// PageLabel renders "Page X of Y".
func PageLabel(s model.ViewState) string {
	return fmt.Sprintf("Page %d of %d", s.CurrentPage, s.TotalPages)
}

// View renders the UI.
func (m browser) View() string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Render("Assets"))
	sb.WriteString("\n\n")

	if m.searching {
		sb.WriteString(m.search.View())
	} else if m.state.Query != "" {
		sb.WriteString(LabelStyle.Render("Search: ") + ValueStyle.Render(m.state.Query))
	} else {
		sb.WriteString(DimStyle.Render("Press / to search by host"))
	}
	sb.WriteString("\n")

	sb.WriteString(m.renderPager())
	sb.WriteString("\n")

	if status := StatusText(m.state); status != "" {
		if status == statusLoading || status == statusSorting {
			status = m.spinner.View() + " " + status
		}
		sb.WriteString(SectionStyle.Render(LoadingStyle.Render(status)))
	} else {
		body := m.table.View()
		if m.state.Sorting {
			body += "\n" + DimStyle.Render(statusSorting)
		}
		sb.WriteString(SectionStyle.Render(body))
	}
	sb.WriteString("\n")

	if m.state.Err != nil {
		sb.WriteString(ErrorStyle.Render("Error fetching data: ") + DimStyle.Render(m.state.Err.Error()))
		sb.WriteString("\n")
	}

	sb.WriteString(HelpStyle.Render("←/p prev • →/n next • / search • esc clear • r refresh • q quit"))
	return sb.String()
}

func (m browser) renderPager() string {
	s := m.state
	return lipgloss.JoinHorizontal(lipgloss.Center,
		RenderControl("◀ Previous", s.CurrentPage > 1),
		ValueStyle.Render(PageLabel(s)),
		RenderControl("Next ▶", s.CurrentPage < s.TotalPages),
	)
}
