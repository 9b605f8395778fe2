package roon

import (
	"encoding/json"
	"fmt"

	"roonmpris/internal/domain"
)

// message is the envelope shared by every feed frame. Exactly one of the
// fields is expected to be set; which one determines the event kind.
type message struct {
	Paired           *corePayload     `json:"paired"`
	Unpaired         *corePayload     `json:"unpaired"`
	Zones            []zonePayload `json:"zones"`
	ZonesChanged     []zonePayload `json:"zones_changed"`
	ZonesSeekChanged []seekPayload `json:"zones_seek_changed"`
}

// DecodeEvent classifies a raw feed frame into the event union. Frames
// carrying none of the known keys decode to EventUnknown rather than an
// error; a zone entry with an unrecognized play state is an error.
func DecodeEvent(data []byte) (domain.Event, error) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return domain.Event{}, fmt.Errorf("malformed feed frame: %w", err)
	}

	switch {
	case msg.Paired != nil:
		return domain.Event{
			Kind: domain.EventPaired,
			Connection: &domain.Connection{
				CoreID:      msg.Paired.CoreID,
				DisplayName: msg.Paired.DisplayName,
				Address:     msg.Paired.Address,
			},
		}, nil
	case msg.Unpaired != nil:
		return domain.Event{Kind: domain.EventUnpaired}, nil
	case msg.Zones != nil:
		zones, err := decodeZones(msg.Zones)
		if err != nil {
			return domain.Event{}, err
		}
		return domain.Event{Kind: domain.EventZones, Zones: zones}, nil
	case msg.ZonesChanged != nil:
		zones, err := decodeZones(msg.ZonesChanged)
		if err != nil {
			return domain.Event{}, err
		}
		return domain.Event{Kind: domain.EventZonesChanged, Zones: zones}, nil
	case msg.ZonesSeekChanged != nil:
		seeks := make([]domain.SeekUpdate, 0, len(msg.ZonesSeekChanged))
		for _, s := range msg.ZonesSeekChanged {
			seeks = append(seeks, domain.SeekUpdate{
				ZoneID:          s.ZoneID,
				SeekPositionSec: s.SeekPosition,
			})
		}
		return domain.Event{Kind: domain.EventSeekChanged, Seeks: seeks}, nil
	}

	return domain.Event{Kind: domain.EventUnknown}, nil
}

func decodeZones(payloads []zonePayload) ([]domain.Zone, error) {
	zones := make([]domain.Zone, 0, len(payloads))
	for _, p := range payloads {
		zone, err := p.toDomain()
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w", p.DisplayName, err)
		}
		zones = append(zones, zone)
	}
	return zones, nil
}
