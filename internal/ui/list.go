package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/playlistbridge/playlistbridge/internal/services"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [services.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist services.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

func playlistItems(playlists []services.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl}
	}
	return items
}
