package bridge

import (
	"regexp"

	"roonmpris/internal/artwork"
	"roonmpris/internal/domain"
)

// Artists on descriptor line 2 are separated by a slash surrounded by
// whitespace, e.g. "A / B / C".
var artistSeparator = regexp.MustCompile(`\s+/\s+`)

// SplitArtists splits the descriptor's artist line into individual
// names. A line without separators is a single artist; an empty line is
// no artists at all.
func SplitArtists(line string) []string {
	if line == "" {
		return nil
	}
	return artistSeparator.Split(line, -1)
}

// SecondsToMicro converts protocol seconds to surface microseconds.
func SecondsToMicro(seconds float64) int64 {
	return int64(seconds * 1_000_000)
}

// ApplySeek converts a position-only update. It deliberately touches
// nothing besides the position; the metadata already applied for the
// zone stays in place.
func ApplySeek(seconds float64) int64 {
	return SecondsToMicro(seconds)
}

// Translate maps a zone snapshot into the observable player state, plus
// the notification to emit for it, if any. A notification is produced
// only for an actively playing zone with a current track.
func Translate(zone domain.Zone, conn domain.Connection) (domain.PlayerState, *domain.Notification, error) {
	if _, err := domain.ParsePlayState(string(zone.State)); err != nil {
		return domain.PlayerState{}, nil, err
	}

	state := domain.PlayerState{
		State:         zone.State,
		CanGoNext:     zone.CanGoNext,
		CanGoPrevious: zone.CanGoPrevious,
		CanPause:      zone.CanPause,
		CanSeek:       zone.CanSeek,
	}

	np := zone.NowPlaying
	if np == nil {
		return state, nil, nil
	}

	md := &domain.TrackMetadata{
		Title:   np.Title,
		Album:   np.Album,
		Artists: SplitArtists(np.ArtistLine),
	}
	if np.DurationSec != nil {
		md.LengthMicro = SecondsToMicro(*np.DurationSec)
	}
	if u, ok := artwork.ResolveURL(conn.Address, np.ImageKey); ok {
		md.ArtURL = u
	}
	state.Metadata = md
	state.PositionMicro = SecondsToMicro(np.SeekPositionSec)

	var note *domain.Notification
	if zone.State == domain.StatePlaying {
		note = &domain.Notification{
			TitleParts: md.Artists,
			Message:    np.Title,
			ArtURL:     md.ArtURL,
		}
	}
	return state, note, nil
}
