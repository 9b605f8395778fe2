package artwork

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"roonmpris/internal/config"
)

// FileStore writes the most recent cover art to a fixed scratch path.
// Fetched images are scaled down to a notification-friendly icon; bytes
// that do not decode as an image are written through untouched.
type FileStore struct {
	logger  *zap.Logger
	path    string
	maxEdge int
}

// NewFileStore creates a store for the configured scratch path.
func NewFileStore(logger *zap.Logger, cfg config.ArtworkConfig) *FileStore {
	maxEdge := cfg.MaxEdge
	if maxEdge <= 0 {
		maxEdge = 256
	}
	return &FileStore{
		logger:  logger,
		path:    cfg.Path,
		maxEdge: maxEdge,
	}
}

// Save persists the artwork and returns the icon path. A failed write
// removes whatever made it to disk; removal errors are ignored since the
// next successful write overwrites the file anyway.
func (s *FileStore) Save(data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		s.logger.Debug("artwork not decodable, storing raw bytes",
			zap.Error(err))
		if werr := os.WriteFile(s.path, data, 0o644); werr != nil {
			os.Remove(s.path)
			return "", werr
		}
		return s.path, nil
	}

	icon := imaging.Fit(img, s.maxEdge, s.maxEdge, imaging.Lanczos)
	if err := imaging.Save(icon, s.path); err != nil {
		os.Remove(s.path)
		return "", err
	}

	s.logger.Debug("artwork icon written", zap.String("path", s.path))
	return s.path, nil
}
