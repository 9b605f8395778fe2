package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"roonmpris/internal/artwork"
	"roonmpris/internal/bridge"
	"roonmpris/internal/config"
	"roonmpris/internal/domain"
	"roonmpris/internal/mpris"
	"roonmpris/internal/notify"
	"roonmpris/internal/roon"
)

// AppOptions is the full dependency graph, kept as a value so tests can
// validate it with fx.ValidateApp.
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		config.NewStore,
		newTransport,
		newFetcher,
		newArtworkStore,
		newNotifier,
		newDispatcher,
		newSession,
		newRelay,
		newHandler,
	),
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newTransport(logger *zap.Logger, store *config.Store) domain.Transport {
	return roon.NewFeed(logger, store.Get().Feed.Address)
}

func newFetcher(logger *zap.Logger) domain.Fetcher {
	return artwork.NewHTTPFetcher(logger)
}

func newArtworkStore(logger *zap.Logger, store *config.Store) domain.ArtworkStore {
	return artwork.NewFileStore(logger, store.Get().Artwork)
}

func newNotifier(logger *zap.Logger) domain.Notifier {
	return notify.NewDesktopNotifier(logger)
}

func newDispatcher(
	logger *zap.Logger,
	fetcher domain.Fetcher,
	artworkStore domain.ArtworkStore,
	notifier domain.Notifier,
) *notify.Dispatcher {
	return notify.NewDispatcher(logger, fetcher, artworkStore, notifier)
}

func newSession(
	logger *zap.Logger,
	transport domain.Transport,
	store *config.Store,
	dispatcher *notify.Dispatcher,
) *bridge.Session {
	return bridge.NewSession(logger, transport, store, dispatcher)
}

func newRelay(logger *zap.Logger, transport domain.Transport, session *bridge.Session) *bridge.Relay {
	return bridge.NewRelay(logger, transport, session)
}

func newHandler(
	logger *zap.Logger,
	session *bridge.Session,
	relay *bridge.Relay,
	store *config.Store,
	shutdowner fx.Shutdowner,
) *mpris.Handler {
	h := mpris.NewHandler(logger, session, relay, store.Get().MPRIS.MapCanPlay)
	h.OnQuit = func() error {
		return shutdowner.Shutdown()
	}
	return h
}

// registerHooks binds the long-running components to the fx lifecycle.
// Start order: notification worker first, then the session loop, then
// the transport feed, and the desktop surface last so it never reads
// from a session that is not consuming events yet.
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	transport domain.Transport,
	dispatcher *notify.Dispatcher,
	session *bridge.Session,
	handler *mpris.Handler,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := dispatcher.Start(ctx); err != nil {
				return err
			}
			if err := session.Start(ctx); err != nil {
				return err
			}
			if err := transport.Start(ctx); err != nil {
				return err
			}
			handler.Start()
			logger.Info("roonmpris bridge started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			handler.Shutdown()
			err := transport.Stop(ctx)
			err = multierr.Append(err, session.Stop(ctx))
			err = multierr.Append(err, dispatcher.Stop(ctx))
			logger.Info("roonmpris bridge stopped")
			return err
		},
	})
}
