package domain

import "context"

//go:generate mockgen -destination=mocks/mocks.go -package=mocks roonmpris/internal/domain Transport,Fetcher,Notifier,ArtworkStore,NotificationSink

// Transport is the zone control protocol client. The discovery and
// pairing handshake live outside this process; the bridge only consumes
// the resulting event stream and issues control calls against it.
type Transport interface {
	// Start begins delivering events. It must not block.
	Start(ctx context.Context) error

	// Stop tears down the connection and closes the event channel.
	Stop(ctx context.Context) error

	// Events returns the stream of decoded transport events
	Events() <-chan Event

	// Control issues a transport command against a zone
	Control(ctx context.Context, zoneID string, cmd Command) error
}

// Fetcher retrieves cover art bytes from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ArtworkStore persists fetched cover art to the local scratch path and
// returns the path usable as a notification icon.
type ArtworkStore interface {
	Save(data []byte) (string, error)
}

// Notifier delivers a desktop notification. Fire-and-forget from the
// caller's point of view; errors are logged, never retried.
type Notifier interface {
	Notify(ctx context.Context, summary, body, iconPath string) error
}

// NotificationSink accepts track-change notifications for asynchronous
// delivery. Implementations coalesce bursts; only the most recent
// pending notification survives.
type NotificationSink interface {
	Dispatch(n Notification)
}
