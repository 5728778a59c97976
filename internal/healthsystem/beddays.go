package healthsystem

import "time"

type bedKey struct {
	day   string // yyyy-mm-dd
	level FacilityLevel
	ward  WardType
}

// BedLedger tracks forward bed occupancy per facility level and ward. A
// grant reserves one bed for each of n consecutive days starting on the
// admission day; the whole span must fit or nothing is booked.
type BedLedger struct {
	capacity map[FacilityLevel]map[WardType]int
	booked   map[bedKey]int
}

// NewBedLedger builds a ledger with the given bed stock.
func NewBedLedger(capacity map[FacilityLevel]map[WardType]int) *BedLedger {
	return &BedLedger{
		capacity: capacity,
		booked:   make(map[bedKey]int),
	}
}

// Capacity returns the bed stock for a level and ward.
func (b *BedLedger) Capacity(level FacilityLevel, ward WardType) int {
	return b.capacity[level][ward]
}

// FreeOn returns the number of unoccupied beds on the given day.
func (b *BedLedger) FreeOn(day time.Time, level FacilityLevel, ward WardType) int {
	free := b.capacity[level][ward] - b.booked[b.key(day, level, ward)]
	if free < 0 {
		return 0
	}
	return free
}

// CanAdmit reports whether a stay of days consecutive nights starting on
// from fits at the given level.
func (b *BedLedger) CanAdmit(from time.Time, level FacilityLevel, ward WardType, days int) bool {
	for i := 0; i < days; i++ {
		if b.FreeOn(from.AddDate(0, 0, i), level, ward) < 1 {
			return false
		}
	}
	return true
}

// Admit books the stay. Callers check CanAdmit first; the decrement happens
// inside the same single-threaded sweep step as the decision, so the pair is
// effectively atomic.
func (b *BedLedger) Admit(from time.Time, level FacilityLevel, ward WardType, days int) {
	for i := 0; i < days; i++ {
		b.booked[b.key(from.AddDate(0, 0, i), level, ward)]++
	}
}

// Expire drops occupancy records older than the given day. Called daily so
// the ledger does not grow with run length.
func (b *BedLedger) Expire(before time.Time) {
	cutoff := before.Format("2006-01-02")
	for k := range b.booked {
		if k.day < cutoff {
			delete(b.booked, k)
		}
	}
}

func (b *BedLedger) key(day time.Time, level FacilityLevel, ward WardType) bedKey {
	return bedKey{day: day.Format("2006-01-02"), level: level, ward: ward}
}
