package session

import (
	"github.com/llehouerou/pickup/internal/export"
	"github.com/llehouerou/pickup/internal/notify"
)

// NotifyAdapter feeds export job outcomes to the desktop notifier.
type NotifyAdapter struct {
	N notify.Notifier
}

// Notify sends a transient desktop notification.
func (a NotifyAdapter) Notify(summary, body string) {
	_, _ = a.N.Notify(notify.Notification{
		Title:   summary,
		Body:    body,
		Timeout: -1,
		Urgency: notify.UrgencyNormal,
	})
}

// Verify the adapter satisfies the export notifier at compile time.
var _ export.Notifier = NotifyAdapter{}
