package models

// Slot is a derived candidate appointment interval; never persisted.
type Slot struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int    `json:"duration"`
}

const (
	SlotFree  = "free"
	SlotBusy  = "busy"
	SlotBreak = "break"
)

// TaggedSlot is a slot with its availability classification for one day.
// Booking is set only for busy slots.
type TaggedSlot struct {
	Slot
	State   string   `json:"state"`
	Booking *Booking `json:"booking,omitempty"`
}
