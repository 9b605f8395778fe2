package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"roonmpris/internal/domain"
)

const deliverTimeout = 15 * time.Second

// Dispatcher delivers track-change notifications off the event loop.
// A single worker holds the fetch -> store -> notify chain, and the
// pending slot keeps at most one queued notification with latest-wins
// replacement. That bounds in-flight work to one and removes the
// scratch-file write race a fire-and-forget chain would have under
// rapid track changes.
type Dispatcher struct {
	logger   *zap.Logger
	fetcher  domain.Fetcher
	store    domain.ArtworkStore
	notifier domain.Notifier

	pending chan domain.Notification
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewDispatcher wires the notification pipeline.
func NewDispatcher(
	logger *zap.Logger,
	fetcher domain.Fetcher,
	store domain.ArtworkStore,
	notifier domain.Notifier,
) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		pending:  make(chan domain.Notification, 1),
	}
}

// Start launches the delivery worker. Non-blocking.
func (d *Dispatcher) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.wg.Add(1)
	go d.run(runCtx)
	return nil
}

// Stop cancels in-flight delivery and waits for the worker to exit.
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	return nil
}

// Dispatch queues a notification, replacing any not-yet-delivered one.
// Never blocks the caller.
func (d *Dispatcher) Dispatch(n domain.Notification) {
	for {
		select {
		case d.pending <- n:
			return
		default:
		}
		// Slot full: drop the stale notification and try again.
		select {
		case stale := <-d.pending:
			d.logger.Debug("superseding pending notification",
				zap.String("message", stale.Message))
		default:
		}
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.pending:
			d.deliver(ctx, n)
		}
	}
}

// deliver runs one notification to completion: download the artwork,
// write the icon, invoke the desktop notifier. Any failure drops the
// notification for this event; nothing is retried.
func (d *Dispatcher) deliver(ctx context.Context, n domain.Notification) {
	if n.ArtURL == "" {
		// No artwork, no notification. Keeps the popup layout uniform.
		d.logger.Debug("skipping notification without artwork",
			zap.String("message", n.Message))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()

	data, err := d.fetcher.Fetch(ctx, n.ArtURL)
	if err != nil {
		d.logger.Warn("artwork download failed, dropping notification",
			zap.String("url", n.ArtURL),
			zap.Error(err))
		return
	}

	icon, err := d.store.Save(data)
	if err != nil {
		d.logger.Warn("artwork write failed, dropping notification",
			zap.Error(err))
		return
	}

	// Compatibility with the notification text of earlier releases: the
	// artist line goes out as the summary and the track title as the
	// body, not the other way around.
	summary := strings.Join(n.TitleParts, ", ")
	if err := d.notifier.Notify(ctx, summary, n.Message, icon); err != nil {
		d.logger.Warn("desktop notification failed", zap.Error(err))
		return
	}

	d.logger.Info("notification delivered",
		zap.String("title", n.Message),
		zap.Strings("artists", n.TitleParts))
}
