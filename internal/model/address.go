package model

// Address is a saved entry in the user's address book, used to prefill
// sender/receiver details when creating orders.
type Address struct {
	// ID is the unique identifier for this address.
	ID string `json:"id"`

	// Label is the user-chosen name for the entry (e.g. "Home", "Office").
	Label string `json:"label"`

	// Recipient is the contact person at this address.
	Recipient string `json:"recipient"`

	// Phone is the contact phone number.
	Phone string `json:"phone"`

	// Line is the street address.
	Line string `json:"line"`

	// City is the city or province.
	City string `json:"city"`
}
