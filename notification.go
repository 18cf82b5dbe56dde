package freedome

import (
	"time"
)

// NotificationID identifies a Notification.
type NotificationID string

// NotificationType tags what caused a Notification.
type NotificationType string

const (
	// NotifyFavorite is sent when a user adds the business to their favorites.
	NotifyFavorite NotificationType = "favorite-added"
	// NotifyRSVP is sent when a user RSVPs to one of the business's events.
	NotifyRSVP NotificationType = "rsvp"
	// NotifyReview is sent when a user reviews the business.
	NotifyReview NotificationType = "review"
	// NotifyGeneric covers everything else.
	NotifyGeneric NotificationType = "generic"
)

// Notification is shown in a business's notification bell.
type Notification struct {
	ID         NotificationID   `json:"id"`
	BusinessID BusinessID       `json:"businessID"`
	Type       NotificationType `json:"type"`
	FromUserID UserID           `json:"fromUserID"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"createdAt"`
}
