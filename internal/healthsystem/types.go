// Package healthsystem implements the resource arbiter that stands between
// disease modules and care delivery. Modules request interactions (HSIs) with
// a priority and a date window; the arbiter serves open requests each day in
// priority order against finite appointment and bed capacity, defers what it
// cannot serve, and notifies requesters exactly once when a request will
// never run.
package healthsystem

import (
	"time"

	"github.com/mkwanda/healthsim/internal/population"
)

// FacilityLevel is the tier of the facility an interaction targets.
type FacilityLevel uint8

const (
	HealthCentre     FacilityLevel = iota + 1 // level 1a
	DistrictHospital                          // level 1b
	RegionalHospital                          // level 2
)

func (f FacilityLevel) String() string {
	switch f {
	case HealthCentre:
		return "1a"
	case DistrictHospital:
		return "1b"
	case RegionalHospital:
		return "2"
	default:
		return "?"
	}
}

// IsHospital reports whether the level provides comprehensive emergency
// obstetric and surgical care.
func (f FacilityLevel) IsHospital() bool {
	return f == DistrictHospital || f == RegionalHospital
}

// FacilityLevelFromString parses the configuration key form ("1a", "1b",
// "2"). Returns 0 for an unknown key.
func FacilityLevelFromString(s string) FacilityLevel {
	switch s {
	case "1a":
		return HealthCentre
	case "1b":
		return DistrictHospital
	case "2":
		return RegionalHospital
	default:
		return 0
	}
}

// ApptType is a category of appointment time an interaction consumes.
type ApptType string

const (
	ApptNormalDelivery      ApptType = "normal_delivery"
	ApptComplicatedDelivery ApptType = "complicated_delivery"
	ApptCaesarean           ApptType = "caesarean"
	ApptMajorSurgery        ApptType = "major_surgery"
	ApptOutpatient          ApptType = "outpatient"
	ApptEmergency           ApptType = "emergency"
	ApptInpatientDay        ApptType = "inpatient_day"
)

// WardType is a category of bed.
type WardType string

const (
	WardMaternity WardType = "maternity"
	WardGeneral   WardType = "general"
)

// Footprint is the resource claim of one interaction: appointment slots
// consumed on the day it runs, and beds occupied for a span of consecutive
// days starting that day.
type Footprint struct {
	Appts   map[ApptType]int
	BedDays map[WardType]int
}

// Outcome tags how a scheduled interaction resolved.
type Outcome uint8

const (
	// OutcomeRan: the interaction received its resources and executed.
	OutcomeRan Outcome = iota
	// OutcomeDidNotRun: the interaction was open at least one day but
	// capacity never allowed it before its window closed.
	OutcomeDidNotRun
	// OutcomeNeverRan: the window closed before the interaction was ever
	// considered.
	OutcomeNeverRan
	// OutcomeNotAvailable: the treatment is excluded from service
	// availability for this run.
	OutcomeNotAvailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRan:
		return "ran"
	case OutcomeDidNotRun:
		return "did_not_run"
	case OutcomeNeverRan:
		return "never_ran"
	case OutcomeNotAvailable:
		return "not_available"
	default:
		return "?"
	}
}

// Interaction is a resource-gated piece of care requested for one person.
// Run fires at most once, and Fallback fires exactly once if and only if Run
// never does (the interaction resolved without its resources, with the
// reason in the outcome tag). Run returns the footprint actually consumed,
// which may differ from the declared one once the person has been examined.
type Interaction interface {
	Subject() population.PersonID
	TreatmentID() string
	Facility() FacilityLevel
	Footprint() Footprint
	Run(enc *Encounter) Footprint
	Fallback(date time.Time, outcome Outcome)
}
