//go:build !linux
// +build !linux

package notify

import (
	"context"

	"go.uber.org/zap"
)

// DesktopNotifier stub for platforms without the freedesktop
// notification service. Notifications are logged and dropped.
type DesktopNotifier struct {
	logger *zap.Logger
}

// NewDesktopNotifier creates the stub notifier.
func NewDesktopNotifier(logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{logger: logger}
}

// Notify logs the notification instead of delivering it.
func (n *DesktopNotifier) Notify(ctx context.Context, summary, body, iconPath string) error {
	n.logger.Info("desktop notifications not supported on this platform",
		zap.String("summary", summary),
		zap.String("body", body))
	return nil
}

// Close is a no-op on this platform.
func (n *DesktopNotifier) Close() error {
	return nil
}
