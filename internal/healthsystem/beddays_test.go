package healthsystem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestBeds(maternity int) *BedLedger {
	return NewBedLedger(map[FacilityLevel]map[WardType]int{
		DistrictHospital: {WardMaternity: maternity},
	})
}

func TestBedLedgerAdmitAndFree(t *testing.T) {
	b := newTestBeds(2)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 2, b.FreeOn(from, DistrictHospital, WardMaternity))
	assert.True(t, b.CanAdmit(from, DistrictHospital, WardMaternity, 3))

	b.Admit(from, DistrictHospital, WardMaternity, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1, b.FreeOn(from.AddDate(0, 0, i), DistrictHospital, WardMaternity))
	}
	assert.Equal(t, 2, b.FreeOn(from.AddDate(0, 0, 3), DistrictHospital, WardMaternity))

	b.Admit(from, DistrictHospital, WardMaternity, 1)
	assert.False(t, b.CanAdmit(from, DistrictHospital, WardMaternity, 2),
		"admission day is full, span cannot start")
	assert.True(t, b.CanAdmit(from.AddDate(0, 0, 1), DistrictHospital, WardMaternity, 2))
}

func TestBedLedgerUnknownWard(t *testing.T) {
	b := newTestBeds(2)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Zero(t, b.Capacity(HealthCentre, WardGeneral))
	assert.Zero(t, b.FreeOn(from, HealthCentre, WardGeneral))
	assert.False(t, b.CanAdmit(from, HealthCentre, WardGeneral, 1))
}

func TestBedLedgerExpire(t *testing.T) {
	b := newTestBeds(1)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	b.Admit(from, DistrictHospital, WardMaternity, 4)
	b.Expire(from.AddDate(0, 0, 2))

	// Past occupancy is dropped; today and the future keep their bookings.
	assert.Equal(t, 1, b.FreeOn(from, DistrictHospital, WardMaternity))
	assert.Zero(t, b.FreeOn(from.AddDate(0, 0, 2), DistrictHospital, WardMaternity))
	assert.Zero(t, b.FreeOn(from.AddDate(0, 0, 3), DistrictHospital, WardMaternity))
}
