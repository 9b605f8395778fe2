package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	store, err := NewStoreAt(zap.NewNop(), path)
	require.NoError(t, err)
	return store, path
}

func TestStoreFirstRun(t *testing.T) {
	store, path := newTestStore(t)

	assert.Empty(t, store.SelectedZone(), "first run must have no zone selected")
	assert.FileExists(t, path, "defaults must be persisted on first run")

	cfg := store.Get()
	assert.Nil(t, cfg.Zone)
	assert.NotEmpty(t, cfg.Feed.Address)
	assert.NotEmpty(t, cfg.Artwork.Path)
}

func TestStoreRoundTrip(t *testing.T) {
	store, path := newTestStore(t)

	hasError := store.Apply(map[string]string{"zone": "Living Room"})
	require.False(t, hasError)
	assert.Equal(t, "Living Room", store.SelectedZone())

	// A fresh store must see the persisted selection.
	reloaded, err := NewStoreAt(zap.NewNop(), path)
	require.NoError(t, err)
	assert.Equal(t, "Living Room", reloaded.SelectedZone())
}

func TestStoreApplyClearsSelection(t *testing.T) {
	store, _ := newTestStore(t)

	require.False(t, store.Apply(map[string]string{"zone": "Office"}))
	require.False(t, store.Apply(map[string]string{"zone": ""}))

	assert.Empty(t, store.SelectedZone())
	assert.Nil(t, store.Get().Zone)
}

func TestStoreApplyTrimsWhitespace(t *testing.T) {
	store, _ := newTestStore(t)

	require.False(t, store.Apply(map[string]string{"zone": "  Office  "}))
	assert.Equal(t, "Office", store.SelectedZone())
}

func TestStoreApplyRejectsInvalidNames(t *testing.T) {
	tests := []struct {
		name string
		zone string
	}{
		{"control characters", "Living\x00Room"},
		{"newline", "Living\nRoom"},
		{"too long", strings.Repeat("z", maxZoneNameLen+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(t)
			require.False(t, store.Apply(map[string]string{"zone": "Office"}))

			hasError := store.Apply(map[string]string{"zone": tt.zone})
			assert.True(t, hasError)
			assert.Equal(t, "Office", store.SelectedZone(),
				"a rejected submission must leave the configuration unchanged")
		})
	}
}

func TestStoreLayout(t *testing.T) {
	store, _ := newTestStore(t)
	require.False(t, store.Apply(map[string]string{"zone": "Office"}))

	layout := store.Layout()
	require.Len(t, layout.Fields, 1)
	assert.Equal(t, "zone", layout.Fields[0].Setting)
	assert.Equal(t, "Office", layout.Values["zone"])
}

func TestStoreLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[zone]\nname = \"Bedroom\"\n\n[feed]\naddress = \"192.168.1.20:9330\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := NewStoreAt(zap.NewNop(), path)
	require.NoError(t, err)
	assert.Equal(t, "Bedroom", store.SelectedZone())
	assert.Equal(t, "192.168.1.20:9330", store.Get().Feed.Address)
}
