package domain

import (
	"fmt"
	"strings"
)

// PlayState is the transport-reported playback state of a zone.
type PlayState string

const (
	// StatePlaying indicates the zone is actively playing
	StatePlaying PlayState = "playing"
	// StatePaused indicates playback is paused
	StatePaused PlayState = "paused"
	// StateStopped indicates the zone has no active playback
	StateStopped PlayState = "stopped"
	// StateLoading indicates the zone is buffering the next track
	StateLoading PlayState = "loading"
)

// ParsePlayState validates a wire-level state string. Unrecognized values
// are rejected here, at the boundary, instead of being capitalized into a
// malformed status string further down the pipeline.
func ParsePlayState(s string) (PlayState, error) {
	switch st := PlayState(s); st {
	case StatePlaying, StatePaused, StateStopped, StateLoading:
		return st, nil
	}
	return "", fmt.Errorf("unknown play state %q", s)
}

// Display returns the capitalized form used on the desktop surface
// ("playing" -> "Playing").
func (s PlayState) Display() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// NowPlaying describes the track currently playing in a zone. The three
// descriptor fields follow the protocol's three-line convention:
// title, slash-separated artist list, album.
type NowPlaying struct {
	// DurationSec is the track length in seconds, nil when unknown
	DurationSec *float64
	// ImageKey is the opaque cover art key, empty when no artwork exists
	ImageKey string
	// Title is descriptor line 1
	Title string
	// ArtistLine is descriptor line 2, artists joined by " / "
	ArtistLine string
	// Album is descriptor line 3
	Album string
	// SeekPositionSec is the current playback position in seconds
	SeekPositionSec float64
}

// Zone is an immutable snapshot of a playback zone, received per event.
type Zone struct {
	ID            string
	DisplayName   string
	State         PlayState
	CanGoNext     bool
	CanGoPrevious bool
	CanPause      bool
	CanSeek       bool
	CanPlay       bool
	NowPlaying    *NowPlaying
}

// SeekUpdate amends the playback position of a single zone.
type SeekUpdate struct {
	ZoneID          string
	SeekPositionSec float64
}

// Connection is the paired core session handle. Address is a host:port
// usable to build resource URLs.
type Connection struct {
	CoreID      string
	DisplayName string
	Address     string
}

// TrackMetadata is the desktop-facing view of the current track.
type TrackMetadata struct {
	LengthMicro int64
	Title       string
	Album       string
	Artists     []string
	ArtURL      string
}

// PlayerState is the observable state exposed on the media-control
// surface. Metadata is nil when the zone reports no current track.
type PlayerState struct {
	Metadata      *TrackMetadata
	State         PlayState
	CanGoNext     bool
	CanGoPrevious bool
	CanPause      bool
	CanSeek       bool
	PositionMicro int64
}

// Notification is a pending desktop notification for a track change.
type Notification struct {
	// TitleParts are the individual artist names
	TitleParts []string
	// Message is the track title
	Message string
	// ArtURL is the cover art location, empty when the track has none
	ArtURL string
}

// Command is a transport control command relayed from the desktop surface.
type Command string

const (
	CommandPlayPause Command = "playpause"
	CommandStop      Command = "stop"
	CommandNext      Command = "next"
	CommandPrevious  Command = "previous"
)
