package models

type Booking struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	ServiceType string `json:"serviceType"`
	Procedure   string `json:"procedure"`
	Phone       string `json:"phone"`
	Status      string `json:"status"` // active, archived
}

// BookingInput carries the fields a caller supplies when creating a booking.
// The id and status are assigned by the remote store.
type BookingInput struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	ServiceType string `json:"serviceType"`
	Procedure   string `json:"procedure"`
	Phone       string `json:"phone"`
}

// BookingPatch is the editable subset of a booking. Date, time, phone and
// status are never changed through the edit path.
type BookingPatch struct {
	Procedure   string `json:"procedure,omitempty"`
	ServiceType string `json:"serviceType,omitempty"`
}
