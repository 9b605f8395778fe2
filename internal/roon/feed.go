package roon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"roonmpris/internal/domain"
)

const (
	dialTimeout      = 5 * time.Second
	redialDelay      = 5 * time.Second
	writeTimeout     = 5 * time.Second
	maxFrameSize     = 1 << 20
	dropWarnInterval = 5 * time.Second
)

// Feed is the transport client. It consumes newline-delimited JSON
// frames from the companion bridge socket (which owns core discovery and
// the pairing handshake) and decodes each frame once into the event
// union. Connection loss surfaces as an unpaired event; the feed keeps
// redialing until stopped.
type Feed struct {
	logger *zap.Logger
	addr   string
	events chan domain.Event

	mu           sync.Mutex
	conn         net.Conn
	cancel       context.CancelFunc
	lastDropWarn time.Time

	wg sync.WaitGroup
}

// NewFeed creates a feed client for the given host:port address.
func NewFeed(logger *zap.Logger, addr string) *Feed {
	return &Feed{
		logger: logger,
		addr:   addr,
		events: make(chan domain.Event, 10),
	}
}

// Events returns the stream of decoded transport events.
func (f *Feed) Events() <-chan domain.Event {
	return f.events
}

// Start launches the redial/read loop. Non-blocking.
func (f *Feed) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()

	f.wg.Add(1)
	go f.run(runCtx)
	return nil
}

// Stop tears down the connection, waits for the read loop to exit and
// closes the event channel.
func (f *Feed) Stop(ctx context.Context) error {
	f.mu.Lock()
	cancel := f.cancel
	conn := f.conn
	f.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	var err error
	if conn != nil {
		err = multierr.Append(err, conn.Close())
	}
	f.wg.Wait()
	close(f.events)
	f.logger.Info("transport feed stopped")
	return err
}

// Control writes a control frame for the given zone. The result of the
// command itself is not reported back; failures here mean the frame
// could not be written.
func (f *Feed) Control(ctx context.Context, zoneID string, cmd domain.Command) error {
	f.mu.Lock()
	conn := f.conn
	f.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("control %q: not connected", cmd)
	}

	frame, err := json.Marshal(struct {
		Control controlPayload `json:"control"`
	}{Control: controlPayload{ZoneOrOutputID: zoneID, Control: string(cmd)}})
	if err != nil {
		return fmt.Errorf("encode control frame: %w", err)
	}
	frame = append(frame, '\n')

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("write control frame: %w", err)
	}
	return nil
}

// run redials the feed socket until the context is cancelled.
func (f *Feed) run(ctx context.Context) {
	defer f.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := net.DialTimeout("tcp", f.addr, dialTimeout)
		if err != nil {
			f.logger.Warn("transport feed dial failed",
				zap.String("addr", f.addr),
				zap.Error(err))
			if !sleepCtx(ctx, redialDelay) {
				return
			}
			continue
		}

		f.mu.Lock()
		f.conn = conn
		f.mu.Unlock()
		f.logger.Info("transport feed connected", zap.String("addr", f.addr))

		f.readFrames(ctx, conn)

		f.mu.Lock()
		f.conn = nil
		f.mu.Unlock()
		conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
		}

		// The pairing is gone with the socket; make that explicit for
		// the session rather than leaving it to infer from silence.
		f.emit(ctx, domain.Event{Kind: domain.EventUnpaired})
		if !sleepCtx(ctx, redialDelay) {
			return
		}
	}
}

// readFrames consumes frames from one connection until it breaks.
func (f *Feed) readFrames(ctx context.Context, conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := DecodeEvent(line)
		if err != nil {
			f.logger.Error("dropping undecodable feed frame", zap.Error(err))
			continue
		}
		f.emit(ctx, event)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
	if err := scanner.Err(); err != nil {
		f.logger.Warn("transport feed connection lost", zap.Error(err))
	}
}

// emit delivers an event without ever blocking the read loop. Dropped
// events are rate-limit logged; the session only cares about the latest
// state anyway.
func (f *Feed) emit(ctx context.Context, event domain.Event) {
	select {
	case f.events <- event:
	default:
		f.mu.Lock()
		now := time.Now()
		warn := now.Sub(f.lastDropWarn) >= dropWarnInterval
		if warn {
			f.lastDropWarn = now
		}
		f.mu.Unlock()
		if warn {
			f.logger.Warn("event channel full, dropping transport event",
				zap.Stringer("kind", event.Kind))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
