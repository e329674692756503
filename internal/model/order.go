package model

// Party is one end of a shipment: the sender or the receiver.
type Party struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// Order is the read-only order summary returned by search and lookup
// endpoints. It is a projection, not the full order record.
type Order struct {
	// OrderID is the public tracking identifier (e.g. "VN12345").
	OrderID string `json:"order_id"`

	// Sender is who handed the parcel over.
	Sender Party `json:"sender"`

	// Receiver is who the parcel is addressed to.
	Receiver Party `json:"receiver"`

	// Status is the current delivery status.
	Status string `json:"status"`
}
