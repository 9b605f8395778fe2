package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/20after4/configdir"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const (
	appName        = "roonmpris"
	configFilename = "config.toml"

	defaultFeedAddress = "127.0.0.1:9330"
	defaultMaxEdge     = 256
)

// ZoneSelection is the single user-selected playback zone. A nil
// selection means the bridge tracks nothing.
type ZoneSelection struct {
	Name string `toml:"name"`
}

// FeedConfig locates the transport feed socket.
type FeedConfig struct {
	Address string `toml:"address"`
}

// ArtworkConfig controls the notification icon scratch file.
type ArtworkConfig struct {
	// Path is where the most recent cover art is written
	Path string `toml:"path"`
	// MaxEdge is the icon bounding box in pixels
	MaxEdge int `toml:"max_edge"`
}

// MPRISConfig tunes the desktop surface.
type MPRISConfig struct {
	// MapCanPlay mirrors the zone's play capability onto the CanPlay
	// property. Off by default: at least one desktop dock hides the
	// whole player widget when CanPlay drops to false mid-playback, so
	// the property stays pinned true unless explicitly opted in.
	MapCanPlay bool `toml:"map_can_play"`
}

// Config is the persisted daemon configuration.
type Config struct {
	Zone    *ZoneSelection `toml:"zone"`
	Feed    FeedConfig     `toml:"feed"`
	Artwork ArtworkConfig  `toml:"artwork"`
	MPRIS   MPRISConfig    `toml:"mpris"`
}

// Default returns the first-run configuration: no zone selected.
func Default() Config {
	return Config{
		Feed: FeedConfig{Address: defaultFeedAddress},
		Artwork: ArtworkConfig{
			Path:    filepath.Join(os.TempDir(), appName, "cover.jpg"),
			MaxEdge: defaultMaxEdge,
		},
	}
}

// DefaultPath resolves the per-user config file location, creating the
// directory on first run.
func DefaultPath() (string, error) {
	dir := configdir.LocalConfig(appName)
	if err := configdir.MakePath(dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, configFilename), nil
}

// Store owns the persisted configuration. The selected zone is read on
// every zone event and mutated only through the settings contract, so
// access is guarded.
type Store struct {
	logger *zap.Logger

	mu   sync.RWMutex
	path string
	cfg  Config
}

// NewStore loads the configuration, writing the defaults when no file
// exists yet.
func NewStore(logger *zap.Logger) (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(logger, path)
}

// NewStoreAt is NewStore with an explicit file location.
func NewStoreAt(logger *zap.Logger, path string) (*Store, error) {
	s := &Store{logger: logger, path: path, cfg: Default()}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("no configuration found, writing defaults",
			zap.String("path", path))
		if err := s.save(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, &s.cfg); err != nil {
			return nil, err
		}
	}

	logger.Info("configuration loaded",
		zap.String("path", path),
		zap.String("zone", s.SelectedZone()))
	return s, nil
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	if s.cfg.Zone != nil {
		zone := *s.cfg.Zone
		cfg.Zone = &zone
	}
	return cfg
}

// SelectedZone returns the configured zone display name, empty when no
// zone is selected.
func (s *Store) SelectedZone() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg.Zone == nil {
		return ""
	}
	return s.cfg.Zone.Name
}

// save writes the configuration. Callers hold no lock or the write lock.
func (s *Store) save() error {
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
