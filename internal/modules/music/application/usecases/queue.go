package usecases

import (
	"github.com/disgoorg/snowflake/v2"

	"github.com/maestro-bot/maestro/internal/modules/music/domain"
)

// DefaultPageSize is the queue page size when none is requested.
const DefaultPageSize = 10

// QueueListInput selects a page of the guild's queue.
type QueueListInput struct {
	GuildID  snowflake.ID
	Page     int // 1-indexed
	PageSize int // defaults to DefaultPageSize
}

// QueueListOutput is one page of the queue plus the current song.
type QueueListOutput struct {
	Current     *domain.Song
	Songs       []domain.Song
	TotalSongs  int
	CurrentPage int
	TotalPages  int
}

// QueueList returns the current song and a page of upcoming songs.
func (s *PlaybackService) QueueList(input QueueListInput) (*QueueListOutput, error) {
	state := s.registry.Get(input.GuildID)
	if state == nil {
		return nil, ErrNotConnected
	}

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}

	state.Lock()
	var current *domain.Song
	if c := state.Current(); c != nil {
		song := *c
		current = &song
	}
	songs := state.Queue.List()
	state.Unlock()

	total := len(songs)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	var pageSongs []domain.Song
	if start < total {
		pageSongs = songs[start:end]
	}

	return &QueueListOutput{
		Current:     current,
		Songs:       pageSongs,
		TotalSongs:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}
