package kodi

import (
	"context"
	"fmt"
	"time"

	"screensaverturnoff/internal/logger"
)

const notificationDisplayTime = 10 * time.Second

// Notifier shows add-on failures as Kodi GUI notifications.
type Notifier struct {
	client  *Client
	heading string
	icon    string
}

// NewNotifier creates a Notifier whose heading names the failing add-on.
func NewNotifier(client *Client, addonID, icon string) *Notifier {
	return &Notifier{
		client:  client,
		heading: fmt.Sprintf("Addon %s failed", addonID),
		icon:    icon,
	}
}

// Notify shows msg. Delivery failures are only logged.
func (n *Notifier) Notify(ctx context.Context, msg string) {
	if err := n.client.ShowNotification(ctx, n.heading, msg, n.icon, notificationDisplayTime); err != nil {
		log := logger.WithComponent("kodi")
		log.Warn().Err(err).Str("message", msg).Msg("Failed to show notification")
	}
}
