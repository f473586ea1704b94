package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalIDs(t *testing.T) {
	id := NewLocalID()
	assert.True(t, IsLocalID(id))
	assert.NotEqual(t, id, NewLocalID())

	assert.False(t, IsLocalID("srv-42"))
	assert.False(t, IsLocalID(""))
}

func TestProceduresByType(t *testing.T) {
	p := Procedures{
		Massage: []Procedure{{ID: "m1"}},
		Laser:   []Procedure{{ID: "l1"}, {ID: "l2"}},
	}

	assert.Len(t, p.ByType(ServiceMassage), 1)
	assert.Len(t, p.ByType(ServiceLaser), 2)
	assert.Len(t, p.ByType(ServiceAll), 3)
	assert.Nil(t, p.ByType("nails"))
}

func TestProceduresCloneIsDeep(t *testing.T) {
	p := Procedures{Massage: []Procedure{{ID: "m1", Name: "Relax"}}}
	clone := p.Clone()

	clone.Massage[0].Name = "Changed"
	assert.Equal(t, "Relax", p.Massage[0].Name)
}

func TestWorkSettingsCloneIsDeep(t *testing.T) {
	s := WorkSettings{
		WorkStart: "09:00",
		WorkEnd:   "21:00",
		Breaks:    []Break{{Start: "13:00", End: "14:00"}},
	}
	clone := s.Clone()

	clone.Breaks[0].Start = "12:00"
	require.Len(t, s.Breaks, 1)
	assert.Equal(t, "13:00", s.Breaks[0].Start)
}
