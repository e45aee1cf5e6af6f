// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist migration:
//  1. [PlaylistListView] : Browse and select a source playlist
//  2. [ConfirmView] : Confirm the migration
//  3. [MigrateView] : Monitor real-time progress updates
//  4. [ResultView] : Display success metrics and failed matches
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through a channel from the migration engine,
// providing non-blocking status reporting during the run.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	ConfirmView
	MigrateView
	ResultView
)

type playlistsFetchedMsg struct {
	playlists []services.Playlist
	err       error
}

type progressUpdateMsg tasks.ProgressUpdate

type migrationCompleteMsg struct {
	result *tasks.MigrationResult
	err    error
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	userID string
	source services.PlaylistClient
	dest   services.PlaylistClient
	engine *tasks.Engine

	width  int
	height int

	playlistList list.Model
	listReady    bool
	selected     *services.Playlist

	progressChan chan tasks.ProgressUpdate
	doneChan     chan migrationCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.MigrationResult
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a TUI model migrating from source to dest for userID.
func NewModel(ctx context.Context, userID string, source, dest services.PlaylistClient, engine *tasks.Engine) *Model {
	return &Model{
		ctx:    ctx,
		view:   PlaylistListView,
		userID: userID,
		source: source,
		dest:   dest,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Result returns the migration outcome after the program exits.
func (m *Model) Result() (*tasks.MigrationResult, error) {
	return m.result, m.err
}

// Init starts by fetching the source playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlistList = list.New(playlistItems(msg.playlists), list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = fmt.Sprintf("%s Playlists", m.source.Name())
		m.playlistList.SetSize(m.width-4, m.height-8)
		m.listReady = true
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case migrationCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	if m.listReady && m.view == PlaylistListView {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case ConfirmView:
		return m.renderConfirm()
	case MigrateView:
		return m.renderMigrate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected := m.playlistList.SelectedItem(); selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				m.selected = &pl.playlist
				m.view = ConfirmView
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PlaylistListView
		return m, nil
	case "y":
		m.view = MigrateView
		return m, m.startMigration()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.selected = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.source.ListPlaylists(m.ctx, m.userID)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) startMigration() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.doneChan = make(chan migrationCompleteMsg, 1)

	progress := m.progressChan
	done := m.doneChan
	playlistID := m.selected.ID

	go func() {
		result, err := m.engine.Migrate(m.ctx, progress, m.userID, m.source, m.dest, playlistID)
		done <- migrationCompleteMsg{result: result, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	done := m.doneChan

	return func() tea.Msg {
		if progress == nil {
			return migrationCompleteMsg{}
		}

		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	if !m.listReady {
		return "Loading playlists..."
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Migrate '%s' to %s?", m.selected.Name, m.dest.Name()))
	info := fmt.Sprintf("\nPlaylist: %s\nTracks: %d\n", m.selected.Name, m.selected.TrackCount)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderMigrate() string {
	title := styles.title.Render("Migrating Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchSource, tasks.FetchTracks:
		phase = fmt.Sprintf("Fetching playlist from %s...", m.source.Name())
	case tasks.CreateDest:
		phase = fmt.Sprintf("Creating playlist on %s...", m.dest.Name())
	case tasks.SearchTracks, tasks.AddTracks:
		phase = fmt.Sprintf("Migrating tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Migration failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Migration Complete!")
	info := fmt.Sprintf(
		"\nSource: %s (%d tracks)\nDestination: %s\nSuccess rate: %d/%d (%.1f%%)",
		m.result.SourcePlaylist.Name,
		m.result.TotalTracks,
		m.result.DestPlaylist.Name,
		m.result.MigratedCount,
		m.result.TotalTracks,
		m.result.MatchPercentage,
	)

	var failed string
	if m.result.FailedCount > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to migrate %d tracks:", m.result.FailedCount)))
		for _, track := range m.result.TrackResults {
			if !track.Migrated() {
				failed += fmt.Sprintf("\n  • %s - %s", track.Source.Artist, track.Source.Title)
			}
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
