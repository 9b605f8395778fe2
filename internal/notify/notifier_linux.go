//go:build linux
// +build linux

package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
)

// notifyObject is the slice of dbus.BusObject the notifier needs.
// Narrowed so tests can stand in for the bus.
type notifyObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DesktopNotifier delivers notifications over the session bus. The bus
// connection is established lazily on first use so construction stays
// side-effect free.
type DesktopNotifier struct {
	logger *zap.Logger

	mu   sync.Mutex
	conn *dbus.Conn
	obj  notifyObject
}

// NewDesktopNotifier creates an unconnected notifier.
func NewDesktopNotifier(logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{logger: logger}
}

// Notify sends one desktop notification with the given icon file.
func (n *DesktopNotifier) Notify(ctx context.Context, summary, body, iconPath string) error {
	obj, err := n.object()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}

	call := obj.CallWithContext(ctx, notifyMethod, 0,
		"roonmpris",                // app name
		uint32(0),                  // replaces_id: always a fresh notification
		iconPath,                   // app_icon
		summary,                    // summary
		body,                       // body
		[]string{},                 // actions
		map[string]dbus.Variant{},  // hints
		int32(-1))                  // expire_timeout: server default
	if call.Err != nil {
		return fmt.Errorf("notify call: %w", call.Err)
	}

	n.logger.Debug("desktop notification sent",
		zap.String("summary", summary),
		zap.String("body", body))
	return nil
}

// Close releases the bus connection.
func (n *DesktopNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	n.obj = nil
	return err
}

func (n *DesktopNotifier) object() (notifyObject, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.obj != nil {
		return n.obj, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	n.conn = conn
	n.obj = conn.Object(notifyDest, dbus.ObjectPath(notifyPath))
	return n.obj, nil
}
