// Package notify sends desktop notifications.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// AppName is shown as the sender of notifications.
const AppName = "MyTracker"

// Desktop sends notifications through the OS notification service.
type Desktop struct {
	// Sound plays the alert sound along with the notification.
	Sound bool

	send func(title, message string, icon any) error
}

// NewDesktop returns a desktop notifier.
func NewDesktop(sound bool) *Desktop {
	beeep.AppName = AppName
	send := beeep.Notify
	if sound {
		send = beeep.Alert
	}
	return &Desktop{Sound: sound, send: send}
}

// Notify shows a notification with the given title and message.
func (d *Desktop) Notify(title, message string) error {
	if err := d.send(title, message, ""); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

// Discard drops every notification.
type Discard struct{}

// Notify does nothing.
func (Discard) Notify(string, string) error { return nil }
