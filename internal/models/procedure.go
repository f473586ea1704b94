package models

type Procedure struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"` // minutes
}

// Procedures groups the catalogue by category key, mirroring the remote
// sheet layout.
type Procedures struct {
	Massage []Procedure `json:"massage"`
	Laser   []Procedure `json:"laser"`
}

// ByType returns the group for a category, or the concatenation of both
// groups for "all". Unknown categories yield nil.
func (p Procedures) ByType(serviceType string) []Procedure {
	switch serviceType {
	case ServiceMassage:
		return p.Massage
	case ServiceLaser:
		return p.Laser
	case ServiceAll:
		out := make([]Procedure, 0, len(p.Massage)+len(p.Laser))
		out = append(out, p.Massage...)
		out = append(out, p.Laser...)
		return out
	}
	return nil
}

// Clone returns a deep copy so optimistic snapshots do not alias the live
// slices.
func (p Procedures) Clone() Procedures {
	return Procedures{
		Massage: append([]Procedure(nil), p.Massage...),
		Laser:   append([]Procedure(nil), p.Laser...),
	}
}
