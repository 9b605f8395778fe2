package config

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const maxZoneNameLen = 128

// Field describes one editable entry in the settings UI layout.
type Field struct {
	Type    string
	Title   string
	Setting string
}

// Layout is what the settings UI provider renders: the field list plus
// the current values.
type Layout struct {
	Fields []Field
	Values map[string]string
}

// Layout describes the single editable "zone" field.
func (s *Store) Layout() Layout {
	return Layout{
		Fields: []Field{
			{Type: "string", Title: "Zone", Setting: "zone"},
		},
		Values: map[string]string{"zone": s.SelectedZone()},
	}
}

// Apply validates and persists a settings submission from the UI
// provider. It returns true when the submission has errors, in which
// case the stored configuration is left untouched. An empty zone name is
// a valid "no selection".
func (s *Store) Apply(values map[string]string) bool {
	name := strings.TrimSpace(values["zone"])
	if !validZoneName(name) {
		s.logger.Warn("rejecting settings submission",
			zap.String("zone", name))
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.cfg.Zone
	if name == "" {
		s.cfg.Zone = nil
	} else {
		s.cfg.Zone = &ZoneSelection{Name: name}
	}

	if err := s.save(); err != nil {
		s.cfg.Zone = prev
		s.logger.Error("failed to persist settings", zap.Error(err))
		return true
	}

	s.logger.Info("zone selection saved", zap.String("zone", name))
	return false
}

func validZoneName(name string) bool {
	if len(name) > maxZoneNameLen {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
