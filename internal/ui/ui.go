// Package ui is the terminal frontend: the playlist, the player bar with
// the sleep countdown, and the export job table.
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/pickup/internal/errmsg"
	"github.com/llehouerou/pickup/internal/export"
	"github.com/llehouerou/pickup/internal/playback"
	"github.com/llehouerou/pickup/internal/playlist"
	"github.com/llehouerou/pickup/internal/session"
)

type tickMsg time.Time

// Model is the bubbletea model for the whole screen.
type Model struct {
	coord   *session.Coordinator
	engine  *playback.Engine
	tracks  *playlist.Store
	exports *export.Coordinator

	rows    []playlist.Track
	cursor  int
	width   int
	height  int
	status  string
	presets []time.Duration
	skip    time.Duration

	sleepMenu bool
}

// New builds the UI model. presets are the sleep timer choices offered in
// the sleep menu; skip is the local arrow-key seek interval.
func New(coord *session.Coordinator, engine *playback.Engine, tracks *playlist.Store, exports *export.Coordinator, presets []time.Duration, skip time.Duration) Model {
	m := Model{
		coord:   coord,
		engine:  engine,
		tracks:  tracks,
		exports: exports,
		presets: presets,
		skip:    skip,
	}
	m.reload()
	return m
}

// Init starts the refresh tick.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) reload() {
	rows, err := m.tracks.Tracks()
	if err != nil {
		m.status = errmsg.Format(errmsg.OpPlaylistLoad, err)
		return
	}
	m.rows = rows
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles key and tick messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.reload()
		return m, tickCmd()

	case tea.KeyMsg:
		if m.sleepMenu {
			return m.updateSleepMenu(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "enter":
		if t, ok := m.selected(); ok {
			if err := m.coord.PlayTrack(t.ID); err != nil {
				m.status = errmsg.FormatWith(errmsg.OpPlaybackLoad, t.Title, err)
			} else {
				m.status = ""
			}
		}

	case " ":
		m.engine.Toggle()

	case "left", "h":
		m.engine.SkipBackward(m.skip)
	case "right", "l":
		m.engine.SkipForward(m.skip)

	case "s":
		if m.coord.SleepActive() {
			m.coord.CancelSleepTimer()
			m.status = "sleep timer canceled"
		} else {
			m.sleepMenu = true
		}

	case "e":
		if t, ok := m.selected(); ok {
			if _, err := m.coord.ExportTrack(t.ID); err != nil {
				m.status = errmsg.FormatWith(errmsg.OpExportConvert, t.Title, err)
			} else {
				m.status = fmt.Sprintf("exporting %s", t.Title)
			}
		}

	case "d":
		m.dismissTerminalJobs()

	case "x":
		if t, ok := m.selected(); ok {
			if err := m.tracks.Remove(t.ID); err != nil {
				m.status = errmsg.FormatWith(errmsg.OpPlaylistRemove, t.Title, err)
			} else {
				m.reload()
			}
		}
	}
	return m, nil
}

func (m Model) updateSleepMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "q":
		m.sleepMenu = false
		return m, nil
	}
	for i, preset := range m.presets {
		if key == fmt.Sprintf("%d", i+1) {
			m.coord.StartSleepTimer(preset)
			m.sleepMenu = false
			m.status = fmt.Sprintf("sleep in %s", preset)
			return m, nil
		}
	}
	return m, nil
}

func (m Model) selected() (playlist.Track, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return playlist.Track{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) dismissTerminalJobs() {
	if m.exports == nil {
		return
	}
	for _, j := range m.exports.Jobs() {
		if j.Status.Terminal() {
			m.exports.Dismiss(j.ID)
		}
	}
}
