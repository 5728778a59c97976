package healthsystem

import (
	"log/slog"
	"time"
)

// Encounter is the context handed to an interaction when it runs: the day,
// the facility that granted it, and the demand pressure at that facility. It
// also carries the second layer of the delivery gate, which individual
// interventions pass through before taking effect.
type Encounter struct {
	Date     time.Time
	Facility FacilityLevel
	Squeeze  float64

	hs *HealthSystem
}

// InterventionSpec describes one intervention's delivery requirements.
// Core items must all be available; optional items are dispensed when in
// stock but never gate delivery. A non-positive probability disables that
// layer of the gate.
type InterventionSpec struct {
	Name     string
	Core     []string
	Optional []string
	// Probability the health worker cadre the intervention needs is on
	// shift today.
	HCWAvailability float64
	// Probability the attending worker delivers the intervention
	// competently.
	Competence float64
}

// Deliverable applies the delivery gate: every core consumable must be in
// stock at this facility today, and both staffing draws must succeed.
// Receiving facility capacity (the Encounter itself) and actually getting
// the intervention are separate hurdles; this is the second.
func (e *Encounter) Deliverable(spec InterventionSpec) bool {
	consOK := e.hs.cons.AllAvailable(spec.Core, int(e.Facility))
	e.hs.cons.AllAvailable(spec.Optional, int(e.Facility))

	hcwOK := spec.HCWAvailability <= 0 || e.hs.rng.Float64() < spec.HCWAvailability
	compOK := spec.Competence <= 0 || e.hs.rng.Float64() < spec.Competence

	ok := consOK && hcwOK && compOK
	if !ok {
		slog.Debug("intervention not deliverable",
			"intervention", spec.Name,
			"facility", e.Facility.String(),
			"consumables", consOK, "hcw", hcwOK, "competence", compOK)
	}
	return ok
}

// ConsumableAvailable checks a single item at this encounter's facility.
func (e *Encounter) ConsumableAvailable(item string) bool {
	return e.hs.cons.Available(item, int(e.Facility))
}
