package models

type Break struct {
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`
}

type WorkSettings struct {
	WorkStart string  `json:"workStart"`
	WorkEnd   string  `json:"workEnd"`
	Breaks    []Break `json:"breaks"`
}

// Clone returns a deep copy for optimistic snapshots.
func (s WorkSettings) Clone() WorkSettings {
	s.Breaks = append([]Break(nil), s.Breaks...)
	return s
}
