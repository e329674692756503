package model

import "time"

// Category classifies a notification for display purposes.
type Category string

const (
	CategoryOrder    Category = "order"
	CategoryAlert    Category = "alert"
	CategorySuccess  Category = "success"
	CategoryReminder Category = "reminder"
)

// Normalize maps unrecognized categories to CategoryOrder so the
// renderer never sees an unknown value.
func (c Category) Normalize() Category {
	switch c {
	case CategoryOrder, CategoryAlert, CategorySuccess, CategoryReminder:
		return c
	default:
		return CategoryOrder
	}
}

// Notification represents a message surfaced to the user about activity
// on their account (order updates, alerts, reminders).
//
// The backend encodes read state two ways: a nullable read_at timestamp
// and a status string that may be "read". A notification counts as read
// if either is set; IsRead is the only place that rule lives.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Title is the short headline shown in lists.
	Title string `json:"title"`

	// Content is the optional full message body.
	Content string `json:"content,omitempty"`

	// Category classifies the notification; unrecognized values are
	// displayed as CategoryOrder.
	Category Category `json:"category"`

	// Status may carry the string "read" as an alternate read marker.
	Status string `json:"status,omitempty"`

	// ReadAt is when the user read this notification, if they have.
	ReadAt *time.Time `json:"read_at"`

	// SentAt is when the notification was sent.
	SentAt time.Time `json:"sent_at"`
}

// IsRead reports whether the user has read this notification under
// either encoding.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil || n.Status == "read"
}
