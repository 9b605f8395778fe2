package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"roonmpris/internal/domain"
)

const controlTimeout = 5 * time.Second

// Relay forwards user-initiated transport commands from the desktop
// surface to the control protocol. Command outcomes are not inspected;
// a failed control call is logged here and goes no further.
type Relay struct {
	logger    *zap.Logger
	transport domain.Transport
	session   *Session
}

// NewRelay creates a relay bound to the session's tracked zone.
func NewRelay(logger *zap.Logger, transport domain.Transport, session *Session) *Relay {
	return &Relay{
		logger:    logger,
		transport: transport,
		session:   session,
	}
}

// Dispatch issues cmd against the tracked zone. A command with no
// tracked zone is dropped with a log line.
func (r *Relay) Dispatch(cmd domain.Command) {
	zone, ok := r.session.TrackedZone()
	if !ok {
		r.logger.Warn("control command without a tracked zone",
			zap.String("command", string(cmd)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	if err := r.transport.Control(ctx, zone.ID, cmd); err != nil {
		r.logger.Error("control command failed",
			zap.String("command", string(cmd)),
			zap.String("zone", zone.DisplayName),
			zap.Error(err))
		return
	}
	r.logger.Debug("control command relayed",
		zap.String("command", string(cmd)),
		zap.String("zone", zone.DisplayName))
}
