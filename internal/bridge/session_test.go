package bridge

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"roonmpris/internal/domain"
	"roonmpris/internal/domain/mocks"
)

type selectorStub struct {
	name string
}

func (s selectorStub) SelectedZone() string { return s.name }

func pairedEvent() domain.Event {
	conn := testConn()
	return domain.Event{Kind: domain.EventPaired, Connection: &conn}
}

func zonesEvent(zones ...domain.Zone) domain.Event {
	return domain.Event{Kind: domain.EventZones, Zones: zones}
}

func TestSessionAppliesMatchingZone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockNotificationSink(ctrl)
	sink.EXPECT().Dispatch(domain.Notification{
		TitleParts: []string{"Pink Floyd"},
		Message:    "Echoes",
		ArtURL:     "http://10.0.0.5:9330/image/img123",
	})

	s := NewSession(zap.NewNop(), nil, selectorStub{name: "Living Room"}, sink)
	s.handle(pairedEvent())
	s.handle(zonesEvent(playingZone()))

	state := s.PlayerState()
	if state.State != domain.StatePlaying {
		t.Errorf("expected playing state, got %q", state.State)
	}
	if state.Metadata == nil || state.Metadata.Title != "Echoes" {
		t.Errorf("metadata not applied: %+v", state.Metadata)
	}
	if zone, ok := s.TrackedZone(); !ok || zone.ID != "zone-1" {
		t.Errorf("zone not tracked: %+v", zone)
	}
}

func TestSessionIgnoresUnmatchedZone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No Dispatch expectation: a notification would fail the test.
	sink := mocks.NewMockNotificationSink(ctrl)

	s := NewSession(zap.NewNop(), nil, selectorStub{name: "Kitchen"}, sink)
	s.handle(pairedEvent())
	s.handle(zonesEvent(playingZone()))

	if _, ok := s.TrackedZone(); ok {
		t.Error("zone with non-matching name must not be tracked")
	}
	if s.PlayerState().Metadata != nil {
		t.Error("state must be unchanged for unmatched zones")
	}
}

func TestSessionIgnoresZonesWithoutSelection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockNotificationSink(ctrl)

	s := NewSession(zap.NewNop(), nil, selectorStub{}, sink)
	s.handle(pairedEvent())
	s.handle(zonesEvent(playingZone()))

	if _, ok := s.TrackedZone(); ok {
		t.Error("no zone may be tracked without a selection")
	}
}

func TestSessionIgnoresZonesWhileUnpaired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockNotificationSink(ctrl)

	s := NewSession(zap.NewNop(), nil, selectorStub{name: "Living Room"}, sink)
	s.handle(zonesEvent(playingZone()))

	if _, ok := s.TrackedZone(); ok {
		t.Error("zone events before pairing must be ignored")
	}
}

func TestSessionUnpairedClearsConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockNotificationSink(ctrl)
	sink.EXPECT().Dispatch(gomock.Any())

	s := NewSession(zap.NewNop(), nil, selectorStub{name: "Living Room"}, sink)
	s.handle(pairedEvent())
	s.handle(zonesEvent(playingZone()))
	s.handle(domain.Event{Kind: domain.EventUnpaired})

	if _, ok := s.Connection(); ok {
		t.Error("connection must be cleared on unpairing")
	}

	// A different track arriving before re-pairing must not be applied
	// (and must not notify, which ctrl.Finish would catch).
	next := playingZone()
	next.NowPlaying.Title = "Money"
	s.handle(zonesEvent(next))

	if s.PlayerState().Metadata.Title != "Echoes" {
		t.Error("zone events after unpairing must not be applied")
	}
}

func TestSessionNotifiesOncePerTrack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockNotificationSink(ctrl)
	sink.EXPECT().Dispatch(gomock.Any()).Times(1)

	s := NewSession(zap.NewNop(), nil, selectorStub{name: "Living Room"}, sink)
	s.handle(pairedEvent())
	// The same listing repeats on unrelated zone changes.
	s.handle(zonesEvent(playingZone()))
	s.handle(zonesEvent(playingZone()))
}

func TestSessionNotifiesOnResume(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockNotificationSink(ctrl)
	sink.EXPECT().Dispatch(gomock.Any()).Times(2)

	paused := playingZone()
	paused.State = domain.StatePaused

	s := NewSession(zap.NewNop(), nil, selectorStub{name: "Living Room"}, sink)
	s.handle(pairedEvent())
	s.handle(zonesEvent(playingZone()))
	s.handle(zonesEvent(paused))
	s.handle(zonesEvent(playingZone()))
}

func TestSessionSeekUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockNotificationSink(ctrl)
	sink.EXPECT().Dispatch(gomock.Any())

	s := NewSession(zap.NewNop(), nil, selectorStub{name: "Living Room"}, sink)
	s.handle(pairedEvent())
	s.handle(zonesEvent(playingZone()))

	before := s.PlayerState()

	s.handle(domain.Event{Kind: domain.EventSeekChanged, Seeks: []domain.SeekUpdate{
		{ZoneID: "zone-1", SeekPositionSec: 12.5},
	}})
	if got := s.PositionMicro(); got != 12_500_000 {
		t.Errorf("expected position 12500000, got %d", got)
	}

	// A seek must only move the position.
	after := s.PlayerState()
	if after.Metadata.Title != before.Metadata.Title ||
		after.Metadata.Album != before.Metadata.Album ||
		len(after.Metadata.Artists) != len(before.Metadata.Artists) {
		t.Error("seek update must not alter track metadata")
	}

	// Mismatched zone id is a no-op.
	s.handle(domain.Event{Kind: domain.EventSeekChanged, Seeks: []domain.SeekUpdate{
		{ZoneID: "zone-9", SeekPositionSec: 99},
	}})
	if got := s.PositionMicro(); got != 12_500_000 {
		t.Errorf("mismatched seek applied, position %d", got)
	}
}

func TestSessionEventLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := make(chan domain.Event)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Events().Return((<-chan domain.Event)(events))

	sink := mocks.NewMockNotificationSink(ctrl)
	sink.EXPECT().Dispatch(gomock.Any())

	s := NewSession(zap.NewNop(), transport, selectorStub{name: "Living Room"}, sink)

	updates := make(chan UpdateKind, 10)
	s.OnUpdate(func(kind UpdateKind) { updates <- kind })

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop(context.Background())

	events <- pairedEvent()
	events <- zonesEvent(playingZone())

	waitUpdate := func(want UpdateKind) {
		t.Helper()
		for {
			select {
			case kind := <-updates:
				if kind == want {
					return
				}
			case <-time.After(time.Second):
				t.Fatalf("timed out waiting for update %v", want)
			}
		}
	}
	waitUpdate(UpdateTrack)
	waitUpdate(UpdateStatus)

	events <- domain.Event{Kind: domain.EventSeekChanged, Seeks: []domain.SeekUpdate{
		{ZoneID: "zone-1", SeekPositionSec: 5},
	}}
	waitUpdate(UpdateSeek)

	if got := s.PositionMicro(); got != 5_000_000 {
		t.Errorf("expected position 5000000, got %d", got)
	}
}
