package model

// Warehouse is a storage facility and its current utilization.
type Warehouse struct {
	// ID is the unique identifier for this warehouse.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Location is the city or district the warehouse serves.
	Location string `json:"location"`

	// Capacity is the maximum number of parcels the warehouse holds.
	Capacity int `json:"capacity"`

	// Occupancy is the current number of parcels stored.
	Occupancy int `json:"occupancy"`

	// Status is "active", "full", or "maintenance".
	Status string `json:"status"`
}

// Vehicle is a delivery vehicle and its current assignment.
type Vehicle struct {
	// ID is the unique identifier for this vehicle.
	ID string `json:"id"`

	// Plate is the license plate number.
	Plate string `json:"plate"`

	// Type is the vehicle class (e.g. "truck", "van", "motorbike").
	Type string `json:"type"`

	// Driver is the assigned driver's name, if any.
	Driver string `json:"driver,omitempty"`

	// Status is "available", "en_route", or "maintenance".
	Status string `json:"status"`
}
