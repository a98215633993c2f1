package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/pickup/internal/export"
	"github.com/llehouerou/pickup/internal/playlist"
	"github.com/llehouerou/pickup/internal/timefmt"
)

var (
	playerBarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160"))
)

// View renders the playlist, the export table, and the player bar.
func (m Model) View() string {
	var b strings.Builder

	if m.sleepMenu {
		b.WriteString(m.viewSleepMenu())
	} else {
		b.WriteString(m.viewPlaylist())
	}

	if m.exports != nil {
		if jobs := m.exports.Jobs(); len(jobs) > 0 {
			b.WriteString("\n")
			b.WriteString(m.viewExports(jobs))
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.status))
	}

	if m.engine.IsLoaded() {
		b.WriteString("\n")
		b.WriteString(m.viewPlayerBar())
	}

	return b.String()
}

func (m Model) viewPlaylist() string {
	if len(m.rows) == 0 {
		return dimStyle.Render("playlist empty - import files with pickup-import")
	}

	var b strings.Builder
	for i, t := range m.rows {
		line := trackLine(t)
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i < len(m.rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// trackLine renders one playlist row: title, resume point if any, duration.
func trackLine(t playlist.Track) string {
	line := t.Title
	if t.LastPosition > 0 {
		line += dimStyle.Render(fmt.Sprintf("  @%s", timefmt.Duration(t.LastPosition)))
	}
	if t.Duration > 0 {
		line += dimStyle.Render(fmt.Sprintf("  [%s]", timefmt.Duration(t.Duration)))
	}
	return line
}

func (m Model) viewSleepMenu() string {
	var b strings.Builder
	b.WriteString("sleep timer:\n")
	for i, preset := range m.presets {
		b.WriteString(fmt.Sprintf("  %d) %s\n", i+1, preset))
	}
	b.WriteString(dimStyle.Render("  esc) cancel"))
	return b.String()
}

func (m Model) viewExports(jobs []export.Job) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("exports:"))
	for _, j := range jobs {
		b.WriteString("\n  ")
		b.WriteString(jobLine(j))
	}
	return b.String()
}

// jobLine renders one export row.
func jobLine(j export.Job) string {
	switch j.Status {
	case export.StatusWaiting:
		return fmt.Sprintf("%s  waiting", j.Name)
	case export.StatusExporting:
		return fmt.Sprintf("%s  %s %3.0f%%", j.Name, progressBar(j.Progress, 20), j.Progress*100)
	case export.StatusCompleted:
		return fmt.Sprintf("%s  done %s", j.Name, humanize.Time(j.FinishedAt))
	case export.StatusFailed:
		return failedStyle.Render(fmt.Sprintf("%s  failed: %v", j.Name, j.Err))
	default:
		return j.Name
	}
}

// progressBar renders a fixed-width bar for p in [0,1].
func progressBar(p float64, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

func (m Model) viewPlayerBar() string {
	status := "⏸"
	if m.engine.IsPlaying() {
		status = "▶"
	}

	title := ""
	if t := m.engine.CurrentTrack(); t != nil {
		title = t.Title
	}

	left := " " + status + "  " + title
	if m.coord.SleepActive() {
		left += "  🌙 " + timefmt.Countdown(m.coord.SleepRemaining())
	}

	right := fmt.Sprintf("%s / %s ",
		timefmt.Duration(m.engine.Elapsed()),
		timefmt.Duration(m.engine.Duration()))

	innerWidth := m.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}

	padding := innerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	content := left + strings.Repeat(" ", padding) + right
	return playerBarStyle.Width(innerWidth).Render(content)
}
