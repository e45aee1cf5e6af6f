package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/playlistbridge/playlistbridge/internal/services"
)

// pickerModel is a single-view playlist selector.
type pickerModel struct {
	ctx       context.Context
	userID    string
	client    services.PlaylistClient
	list      list.Model
	listReady bool
	width     int
	height    int
	choice    *services.Playlist
	err       error
}

func (m *pickerModel) Init() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.client.ListPlaylists(m.ctx, m.userID)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.list.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.list = list.New(playlistItems(msg.playlists), list.NewDefaultDelegate(), 0, 0)
		m.list.Title = fmt.Sprintf("%s Playlists", m.client.Name())
		m.list.SetSize(m.width-4, m.height-6)
		m.listReady = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if selected := m.list.SelectedItem(); selected != nil {
				if pl, ok := selected.(playlistItem); ok {
					m.choice = &pl.playlist
					return m, tea.Quit
				}
			}
		}
	}

	if m.listReady {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *pickerModel) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if !m.listReady {
		return "Loading playlists..."
	}
	return m.list.View()
}

// PickPlaylist runs an interactive selector over the user's playlists on
// client and returns the chosen one. Returns nil when the user quits
// without selecting.
func PickPlaylist(ctx context.Context, userID string, client services.PlaylistClient) (*services.Playlist, error) {
	model := &pickerModel{ctx: ctx, userID: userID, client: client}

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run playlist picker: %w", err)
	}

	picked := final.(*pickerModel)
	if picked.err != nil {
		return nil, picked.err
	}
	return picked.choice, nil
}
