package domain

// EventKind discriminates the transport event union. The wire protocol
// shares one loose payload shape across event types; it is decoded into
// exactly one of these variants at the boundary.
type EventKind int

const (
	// EventUnknown is any payload the bridge does not act on
	EventUnknown EventKind = iota
	// EventPaired carries a new core connection
	EventPaired
	// EventUnpaired signals the core connection was lost or revoked
	EventUnpaired
	// EventZones is a full zone listing
	EventZones
	// EventZonesChanged is an incremental zone listing
	EventZonesChanged
	// EventSeekChanged carries position-only updates
	EventSeekChanged
)

// String returns a log-friendly name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventPaired:
		return "paired"
	case EventUnpaired:
		return "unpaired"
	case EventZones:
		return "zones"
	case EventZonesChanged:
		return "zones_changed"
	case EventSeekChanged:
		return "zones_seek_changed"
	}
	return "unknown"
}

// Event is a single decoded transport event. Only the fields relevant to
// its Kind are populated.
type Event struct {
	Kind       EventKind
	Connection *Connection
	Zones      []Zone
	Seeks      []SeekUpdate
}
