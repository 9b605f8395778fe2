package mpris

import (
	"encoding/base32"
	"errors"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"go.uber.org/zap"

	"roonmpris/internal/bridge"
	"roonmpris/internal/domain"
)

const (
	playerName        = "Roon"
	trackIDPrefix     = "/roonmpris/track/"
	noTrackObjectPath = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
)

var (
	_ types.OrgMprisMediaPlayer2Adapter       = (*Handler)(nil)
	_ types.OrgMprisMediaPlayer2PlayerAdapter = (*Handler)(nil)
)

// PlayerSource is the bridge state the surface reads from.
type PlayerSource interface {
	PlayerState() domain.PlayerState
	TrackedZone() (domain.Zone, bool)
	PositionMicro() int64
	OnUpdate(func(bridge.UpdateKind))
}

// CommandRelay forwards wired transport commands.
type CommandRelay interface {
	Dispatch(cmd domain.Command)
}

// Handler exposes the bridge state as an MPRIS player. It answers
// property reads from the session, relays the four wired transport
// commands, and emits change signals when the session reports updates.
// Everything else the surface can ask for is accepted and logged only.
type Handler struct {
	// OnQuit asynchronously starts daemon shutdown. Required.
	OnQuit func() error

	logger     *zap.Logger
	source     PlayerSource
	relay      CommandRelay
	mapCanPlay bool

	connErr error
	s       *server.Server
	evt     *events.EventHandler
}

// NewHandler builds the surface and subscribes to session updates.
func NewHandler(logger *zap.Logger, source PlayerSource, relay CommandRelay, mapCanPlay bool) *Handler {
	h := &Handler{
		logger:     logger,
		source:     source,
		relay:      relay,
		mapCanPlay: mapCanPlay,
		connErr:    errors.New("not started"),
	}
	h.s = server.NewServer(playerName, h, h)
	h.evt = events.NewEventHandler(h.s)

	source.OnUpdate(func(kind bridge.UpdateKind) {
		if h.connErr != nil {
			return
		}
		switch kind {
		case bridge.UpdateTrack:
			h.evt.Player.OnTitle()
		case bridge.UpdateStatus:
			h.evt.Player.OnPlayPause()
		case bridge.UpdateSeek:
			h.evt.Player.OnSeek(types.Microseconds(source.PositionMicro()))
		}
	})
	return h
}

// Start claims the bus name and begins serving.
func (h *Handler) Start() {
	h.connErr = nil
	go func() {
		// exits early with err if the D-Bus connection cannot be made
		h.connErr = h.s.Listen()
	}()
}

// Shutdown releases the bus name.
func (h *Handler) Shutdown() {
	if h.connErr == nil {
		h.s.Stop()
		h.connErr = errors.New("stopped")
	}
}

// OrgMprisMediaPlayer2Adapter implementation

func (h *Handler) Identity() (string, error) {
	return playerName, nil
}

func (h *Handler) CanQuit() (bool, error) {
	return h.OnQuit != nil, nil
}

func (h *Handler) Quit() error {
	h.logger.Info("quit requested from desktop surface")
	if h.OnQuit == nil {
		return errors.New("no quit handler wired")
	}
	return h.OnQuit()
}

func (h *Handler) CanRaise() (bool, error) {
	return false, nil
}

func (h *Handler) Raise() error {
	h.logger.Info("raise requested, nothing to raise")
	return nil
}

func (h *Handler) HasTrackList() (bool, error) {
	return false, nil
}

func (h *Handler) SupportedUriSchemes() ([]string, error) {
	return nil, nil
}

func (h *Handler) SupportedMimeTypes() ([]string, error) {
	return nil, nil
}

// OrgMprisMediaPlayer2PlayerAdapter implementation

func (h *Handler) Next() error {
	h.relay.Dispatch(domain.CommandNext)
	return nil
}

func (h *Handler) Previous() error {
	h.relay.Dispatch(domain.CommandPrevious)
	return nil
}

func (h *Handler) PlayPause() error {
	h.relay.Dispatch(domain.CommandPlayPause)
	return nil
}

func (h *Handler) Stop() error {
	h.relay.Dispatch(domain.CommandStop)
	return nil
}

// Play and Pause have no dedicated transport calls; the surface gets
// PlayPause for toggling and these are logged only.

func (h *Handler) Play() error {
	h.logger.Debug("play requested, not wired to transport")
	return nil
}

func (h *Handler) Pause() error {
	h.logger.Debug("pause requested, not wired to transport")
	return nil
}

func (h *Handler) Seek(offset types.Microseconds) error {
	h.logger.Debug("seek requested, not wired to transport",
		zap.Int64("offset_us", int64(offset)))
	return nil
}

func (h *Handler) SetPosition(trackID string, position types.Microseconds) error {
	h.logger.Debug("set-position requested, not wired to transport",
		zap.String("track", trackID))
	return nil
}

func (h *Handler) OpenUri(uri string) error {
	h.logger.Debug("open-uri requested, not wired to transport",
		zap.String("uri", uri))
	return nil
}

func (h *Handler) PlaybackStatus() (types.PlaybackStatus, error) {
	state := h.source.PlayerState().State
	if state == "" {
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatus(state.Display()), nil
}

func (h *Handler) Rate() (float64, error) {
	return 1, nil
}

func (h *Handler) SetRate(rate float64) error {
	h.logger.Debug("set-rate requested, not supported")
	return nil
}

func (h *Handler) Metadata() (types.Metadata, error) {
	state := h.source.PlayerState()
	md := state.Metadata
	if md == nil {
		return types.Metadata{TrackId: dbus.ObjectPath(noTrackObjectPath)}, nil
	}
	return types.Metadata{
		TrackId: dbus.ObjectPath(trackIDPrefix + encodeTrackID(md.Title)),
		Length:  types.Microseconds(md.LengthMicro),
		Title:   md.Title,
		Album:   md.Album,
		Artist:  md.Artists,
		ArtUrl:  md.ArtURL,
	}, nil
}

func (h *Handler) Volume() (float64, error) {
	return 1, nil
}

func (h *Handler) SetVolume(volume float64) error {
	h.logger.Debug("set-volume requested, not wired to transport",
		zap.Float64("volume", volume))
	return nil
}

func (h *Handler) Position() (int64, error) {
	return h.source.PositionMicro(), nil
}

func (h *Handler) MinimumRate() (float64, error) {
	return 1, nil
}

func (h *Handler) MaximumRate() (float64, error) {
	return 1, nil
}

func (h *Handler) CanGoNext() (bool, error) {
	return h.source.PlayerState().CanGoNext, nil
}

func (h *Handler) CanGoPrevious() (bool, error) {
	return h.source.PlayerState().CanGoPrevious, nil
}

// CanPlay stays pinned true unless the can-play override is on: some
// docks hide the whole player widget when CanPlay goes false while a
// track is playing.
func (h *Handler) CanPlay() (bool, error) {
	if !h.mapCanPlay {
		return true, nil
	}
	zone, ok := h.source.TrackedZone()
	if !ok {
		return true, nil
	}
	return zone.CanPlay, nil
}

func (h *Handler) CanPause() (bool, error) {
	return h.source.PlayerState().CanPause, nil
}

func (h *Handler) CanSeek() (bool, error) {
	return h.source.PlayerState().CanSeek, nil
}

func (h *Handler) CanControl() (bool, error) {
	return true, nil
}

// encodeTrackID makes an arbitrary track title safe for use in a D-Bus
// object path.
func encodeTrackID(title string) string {
	return base32.StdEncoding.WithPadding('0').EncodeToString([]byte(title))
}
