package bridge

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"roonmpris/internal/domain"
)

// UpdateKind tells listeners what part of the player state changed.
type UpdateKind int

const (
	// UpdateTrack means the current track metadata was replaced
	UpdateTrack UpdateKind = iota
	// UpdateStatus means the playback status changed
	UpdateStatus
	// UpdateSeek means only the position moved
	UpdateSeek
)

// ZoneSelector yields the display name of the zone the bridge should
// track. Re-read on every zone event so settings changes take effect
// without a restart.
type ZoneSelector interface {
	SelectedZone() string
}

// Session owns the bridge state: the paired core connection, the
// tracked zone and its translated player state. It is an explicit
// two-state machine, unpaired and paired, driven by the transport event
// stream. All state lives here behind a lock; there are no package
// globals.
type Session struct {
	logger    *zap.Logger
	transport domain.Transport
	selector  ZoneSelector
	sink      domain.NotificationSink

	mu     sync.RWMutex
	conn   *domain.Connection
	zone   *domain.Zone
	player domain.PlayerState

	listeners []func(UpdateKind)
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewSession creates an unpaired session.
func NewSession(
	logger *zap.Logger,
	transport domain.Transport,
	selector ZoneSelector,
	sink domain.NotificationSink,
) *Session {
	return &Session{
		logger:    logger,
		transport: transport,
		selector:  selector,
		sink:      sink,
	}
}

// OnUpdate registers a state-change listener. Must be called before
// Start; listeners run on the session goroutine and must not block.
func (s *Session) OnUpdate(fn func(UpdateKind)) {
	s.listeners = append(s.listeners, fn)
}

// Start launches the event loop. Non-blocking.
func (s *Session) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(runCtx)
	return nil
}

// Stop terminates the event loop.
func (s *Session) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

// PlayerState returns the current translated state.
func (s *Session) PlayerState() domain.PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player
}

// PositionMicro answers the surface's on-demand position query.
func (s *Session) PositionMicro() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player.PositionMicro
}

// Connection returns the paired core connection, ok=false while
// unpaired.
func (s *Session) Connection() (domain.Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return domain.Connection{}, false
	}
	return *s.conn, true
}

// TrackedZone returns the zone currently bound to the surface, ok=false
// when no matching zone has been seen yet.
func (s *Session) TrackedZone() (domain.Zone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.zone == nil {
		return domain.Zone{}, false
	}
	return *s.zone, true
}

func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()
	events := s.transport.Events()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session loop stopped")
			return
		case event, ok := <-events:
			if !ok {
				s.logger.Info("transport event channel closed")
				return
			}
			s.handle(event)
		}
	}
}

// handle processes one event to completion. Events arrive on a single
// goroutine, so ordering within the session is total.
func (s *Session) handle(event domain.Event) {
	switch event.Kind {
	case domain.EventPaired:
		s.mu.Lock()
		s.conn = event.Connection
		s.mu.Unlock()
		s.logger.Info("paired with core",
			zap.String("core", event.Connection.DisplayName),
			zap.String("address", event.Connection.Address))

	case domain.EventUnpaired:
		s.mu.Lock()
		wasPaired := s.conn != nil
		s.conn = nil
		s.mu.Unlock()
		if wasPaired {
			s.logger.Info("unpaired from core")
		}

	case domain.EventZones, domain.EventZonesChanged:
		s.handleZones(event.Zones)

	case domain.EventSeekChanged:
		s.handleSeeks(event.Seeks)

	default:
		s.logger.Debug("ignoring transport event",
			zap.Stringer("kind", event.Kind))
	}
}

func (s *Session) handleZones(zones []domain.Zone) {
	conn, paired := s.Connection()
	if !paired {
		s.logger.Debug("dropping zone event while unpaired")
		return
	}

	selected := s.selector.SelectedZone()
	if selected == "" {
		s.logger.Debug("no zone selected, ignoring zone event")
		return
	}

	// Zones that do not match the selection are ignored wholesale,
	// including ones that disappeared from the listing.
	for _, zone := range zones {
		if zone.DisplayName != selected {
			continue
		}
		s.apply(zone, conn)
	}
}

func (s *Session) apply(zone domain.Zone, conn domain.Connection) {
	state, note, err := Translate(zone, conn)
	if err != nil {
		s.logger.Error("dropping untranslatable zone update",
			zap.String("zone", zone.DisplayName),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	trackChanged := s.zone == nil || !sameTrack(s.player.Metadata, state.Metadata)
	statusChanged := s.zone == nil || s.player.State != state.State
	zoneCopy := zone
	s.zone = &zoneCopy
	s.player = state
	s.mu.Unlock()

	if trackChanged {
		s.emit(UpdateTrack)
	}
	if statusChanged {
		s.emit(UpdateStatus)
	}

	// Zone listings repeat on unrelated changes (volume, grouping), so
	// only a new track or a resume re-notifies.
	if note != nil && (trackChanged || statusChanged) {
		s.sink.Dispatch(*note)
	}

	s.logger.Debug("zone state applied",
		zap.String("zone", zone.DisplayName),
		zap.String("state", string(zone.State)),
		zap.Bool("track_changed", trackChanged))
}

func (s *Session) handleSeeks(seeks []domain.SeekUpdate) {
	s.mu.Lock()
	var moved bool
	for _, seek := range seeks {
		if s.zone == nil || seek.ZoneID != s.zone.ID {
			continue
		}
		s.player.PositionMicro = ApplySeek(seek.SeekPositionSec)
		moved = true
	}
	s.mu.Unlock()

	if moved {
		s.emit(UpdateSeek)
	}
}

func (s *Session) emit(kind UpdateKind) {
	for _, fn := range s.listeners {
		fn(kind)
	}
}

func sameTrack(a, b *domain.TrackMetadata) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Title == b.Title && a.Album == b.Album && a.ArtURL == b.ArtURL
}
