// Package labour models the intrapartum and immediate-postnatal period: the
// onset of labour, home or facility delivery, complication onset, emergency
// referral, birth, the postnatal check cascade, and the application of the
// risk of maternal death. It is the reference disease module of the
// simulation and the heaviest user of the health system arbiter.
package labour

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/sim"
)

// Treatment IDs under which this module's interactions are scheduled.
const (
	TreatmentDeliveryBasic          = "DeliveryCare_Basic"
	TreatmentDeliveryComprehensive  = "DeliveryCare_Comprehensive"
	TreatmentPostnatalComprehensive = "PostnatalCare_Comprehensive"
	TreatmentPostnatalMaternal      = "PostnatalCare_Maternal"
	TreatmentPostnatalInpatient     = "PostnatalCare_Maternal_Inpatient"
	TreatmentEmergencyFirst         = "FirstAttendance_Emergency"
)

// Consumable item codes this module requests.
const (
	itemDeliveryKit = "delivery_kit"
	itemAbxIV       = "abx_iv"
	itemAbxOral     = "abx_oral"
	itemSteroids    = "corticosteroids"
	itemMgSO4       = "mgso4"
	itemAntiHTNIV   = "antihypertensives_iv"
	itemAntiHTNOral = "antihypertensives_oral"
	itemUterotonics = "uterotonics"
	itemAVDKit      = "avd_kit"
	itemCSKit       = "caesarean_kit"
	itemSurgicalKit = "surgical_kit"
	itemBlood       = "blood_units"
	itemIronFolic   = "iron_folic_acid"
	itemResusKit    = "neonatal_resus_kit"
)

// Day offsets of the fixed episode choreography: onset day D, the
// death-and-stillbirth evaluation at D+4, birth at D+5.
const (
	daysToDeathEvaluation = 4
	daysToBirth           = 5
)

// AntenatalService is the capability the pregnancy module provides: closing
// a pregnancy record when it ends in birth or intrapartum stillbirth.
type AntenatalService interface {
	EndPregnancy(s *sim.Simulation, id population.PersonID)
}

// DepressionScreener is an optional capability exercised at postnatal
// contact. Runs without a mental-health module inject NopDepressionScreener.
type DepressionScreener interface {
	ScreenAtPostnatalContact(s *sim.Simulation, id population.PersonID)
}

// NopDepressionScreener screens nobody.
type NopDepressionScreener struct{}

func (NopDepressionScreener) ScreenAtPostnatalContact(*sim.Simulation, population.PersonID) {}

// Module is the labour module. It owns the Maternal column block of the
// population frame and the episode store.
type Module struct {
	Pop *population.Store
	HS  *healthsystem.HealthSystem
	P   *params.Labour
	RNG *rand.Rand
	Sim *sim.Simulation

	Episodes *EpisodeStore

	// Capabilities injected at wiring time.
	Antenatal  AntenatalService
	Depression DepressionScreener

	// Women whose episode has begun and not yet concluded.
	inLabour map[population.PersonID]bool
}

// New builds the module. Attach must be called before the first event fires.
func New(pop *population.Store, hs *healthsystem.HealthSystem, p *params.Labour, rng *rand.Rand) *Module {
	return &Module{
		Pop:        pop,
		HS:         hs,
		P:          p,
		RNG:        rng,
		Episodes:   NewEpisodeStore(),
		Depression: NopDepressionScreener{},
		inLabour:   make(map[population.PersonID]bool),
	}
}

// Attach binds the module to the simulation it was registered with.
func (m *Module) Attach(s *sim.Simulation) { m.Sim = s }

func (m *Module) Name() string { return "labour" }

// OnDay has no regular work: everything this module does is event-driven.
func (m *Module) OnDay(*sim.Simulation, time.Time) {}

// OnBirth updates the mother's labour history when a child is created.
func (m *Module) OnBirth(s *sim.Simulation, mother, child population.PersonID) {
	p := m.Pop.Get(mother)
	if p == nil {
		return
	}
	p.Maternal.Parity++
	p.Maternal.DueDate = time.Time{}
}

// InLabour reports whether the woman's episode is open.
func (m *Module) InLabour(id population.PersonID) bool { return m.inLabour[id] }

// SetDateOfLabour draws a due date for a newly conceived pregnancy and
// schedules the onset event. The draw lands between 35 and 44 weeks of
// gestation, with a separate post-term branch.
func (m *Module) SetDateOfLabour(s *sim.Simulation, id population.PersonID) {
	p := m.Pop.Get(id)
	if p == nil || !p.Antenatal.Pregnant {
		slog.Error("due date requested for non-pregnant person", "person", id)
		return
	}
	var offsetDays int
	if m.RNG.Float64() < m.P.ProbPostTermLabour {
		offsetDays = 280 + m.RNG.Intn(22) // 40w0d .. 43w0d
	} else {
		offsetDays = 245 + m.RNG.Intn(29) // 35w0d .. 39w0d
	}
	due := p.Antenatal.ConceptionDate.AddDate(0, 0, offsetDays)
	p.Maternal.DueDate = due
	s.MustSchedule(&OnsetEvent{M: m, ID: id}, due)
}

// episodeOf fetches the live episode, logging a consistency violation when a
// woman flagged as in labour or postpartum has none. The pipeline continues;
// the record is the diagnostic.
func (m *Module) episodeOf(id population.PersonID, context string) (*Episode, bool) {
	ep, ok := m.Episodes.Get(id)
	if !ok {
		slog.Error("no episode record for woman in maternity pipeline",
			"person", id, "context", context)
	}
	return ep, ok
}

// competence is the mean clinical competence at a facility tier.
func (m *Module) competence(level healthsystem.FacilityLevel) float64 {
	if level.IsHospital() {
		return m.P.CompetenceHospital
	}
	return m.P.CompetenceHealthCentre
}

// hospitalLevel draws the hospital tier an emergency referral or hospital
// delivery goes to.
func (m *Module) hospitalLevel() healthsystem.FacilityLevel {
	if m.RNG.Float64() < 0.5 {
		return healthsystem.DistrictHospital
	}
	return healthsystem.RegionalHospital
}

// adjust scales a base probability by a relative risk when the condition
// holds.
func adjust(p float64, cond bool, rr float64) float64 {
	if cond {
		return p * rr
	}
	return p
}

// concludeEpisode removes the woman from labour tracking and deletes the
// episode record.
func (m *Module) concludeEpisode(id population.PersonID) {
	delete(m.inLabour, id)
	m.Episodes.Delete(id)
}
