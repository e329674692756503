package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotificationIsRead(t *testing.T) {
	now := time.Now()

	t.Run("unread by default", func(t *testing.T) {
		n := Notification{ID: "n1", Status: "unread"}
		assert.False(t, n.IsRead())
	})

	t.Run("read via timestamp", func(t *testing.T) {
		n := Notification{ID: "n1", ReadAt: &now}
		assert.True(t, n.IsRead())
	})

	t.Run("read via status string", func(t *testing.T) {
		n := Notification{ID: "n1", Status: "read"}
		assert.True(t, n.IsRead())
	})

	t.Run("read under both encodings", func(t *testing.T) {
		n := Notification{ID: "n1", Status: "read", ReadAt: &now}
		assert.True(t, n.IsRead())
	})
}

func TestCategoryNormalize(t *testing.T) {
	t.Run("known categories pass through", func(t *testing.T) {
		for _, c := range []Category{
			CategoryOrder, CategoryAlert, CategorySuccess, CategoryReminder,
		} {
			assert.Equal(t, c, c.Normalize())
		}
	})

	t.Run("unknown category falls back to order", func(t *testing.T) {
		assert.Equal(t, CategoryOrder, Category("shipment_v2").Normalize())
	})

	t.Run("empty category falls back to order", func(t *testing.T) {
		assert.Equal(t, CategoryOrder, Category("").Normalize())
	})
}
