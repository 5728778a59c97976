// Package pregnancy is the antenatal driver of the maternity pipeline. It
// owns the Antenatal column block: conception, the complication state a
// woman carries into labour, and the closing of the pregnancy record when
// the episode ends. Antenatal state is drawn once at conception rather than
// evolved week by week, which is enough to exercise every downstream branch.
package pregnancy

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/mkwanda/healthsim/internal/labour"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
	"github.com/mkwanda/healthsim/internal/sim"
)

// Module drives conception and antenatal state.
type Module struct {
	Pop    *population.Store
	P      *params.Pregnancy
	RNG    *rand.Rand
	Labour *labour.Module
}

// New builds the module. It registers itself as the labour module's
// antenatal capability.
func New(pop *population.Store, p *params.Pregnancy, r *rand.Rand, lab *labour.Module) *Module {
	m := &Module{Pop: pop, P: p, RNG: r, Labour: lab}
	lab.Antenatal = m
	return m
}

func (m *Module) Name() string { return "pregnancy" }

// OnDay polls every eligible woman for conception. The monthly probability
// is spread across days so clustering artefacts at month boundaries do not
// appear.
func (m *Module) OnDay(s *sim.Simulation, date time.Time) {
	pDaily := m.P.ProbConceptionPerMonth / 30.0
	m.Pop.EachAlive(func(p *population.Person) {
		if p.Sex != population.SexFemale || p.Antenatal.Pregnant || p.Maternal.InLabour || p.Maternal.Postpartum {
			return
		}
		age := p.AgeYears(date)
		if age < m.P.FertileAgeMin || age > m.P.FertileAgeMax {
			return
		}
		if rng.Bernoulli(m.RNG, pDaily) {
			m.conceive(s, p, date)
		}
	})
}

// OnBirth has nothing to initialise: newborn antenatal columns are zero.
func (m *Module) OnBirth(*sim.Simulation, population.PersonID, population.PersonID) {}

func (m *Module) conceive(s *sim.Simulation, p *population.Person, date time.Time) {
	an := &p.Antenatal
	an.Pregnant = true
	an.ConceptionDate = date
	an.MultiplePregnancy = rng.Bernoulli(m.RNG, m.P.ProbMultiples)

	an.MembranesRuptured = rng.Bernoulli(m.RNG, m.P.ProbPROM)
	chorioRisk := adjustRisk(m.P.ProbChorioamnionitis, an.MembranesRuptured, m.P.RRChorioPROM)
	an.Chorioamnionitis = rng.Bernoulli(m.RNG, chorioRisk)
	an.PlacentalAbruption = rng.Bernoulli(m.RNG, m.P.ProbAntenatalAbruption)

	switch rng.Choice(m.RNG, []float64{
		1 - (m.P.ProbGestationalHTN + m.P.ProbMildPreEclampsia + m.P.ProbSeverePreEclampsia),
		m.P.ProbGestationalHTN,
		m.P.ProbMildPreEclampsia,
		m.P.ProbSeverePreEclampsia,
	}) {
	case 1:
		an.HTN = population.GestationalHypertension
	case 2:
		an.HTN = population.MildPreEclampsia
	case 3:
		an.HTN = population.SeverePreEclampsia
	default:
		an.HTN = population.HTNNone
	}

	if rng.Bernoulli(m.RNG, m.P.ProbAnaemia) {
		switch rng.Choice(m.RNG, []float64{
			m.P.WeightAnaemiaMild, m.P.WeightAnaemiaMod, m.P.WeightAnaemiaSevere,
		}) {
		case 0:
			an.Anaemia = population.AnaemiaMild
		case 1:
			an.Anaemia = population.AnaemiaModerate
		default:
			an.Anaemia = population.AnaemiaSevere
		}
	}

	switch {
	case rng.Bernoulli(m.RNG, m.P.ProbAdmitForCaesarean):
		an.AdmittedForDelivery = population.AdmitCaesareanNow
	case rng.Bernoulli(m.RNG, m.P.ProbAdmitForAVD):
		an.AdmittedForDelivery = population.AdmitAssistedDeliveryNow
	case rng.Bernoulli(m.RNG, m.P.ProbAdmitForInduction):
		an.AdmittedForDelivery = population.AdmitInduction
	}

	slog.Debug("conception", "person", p.ID, "multiples", an.MultiplePregnancy)
	m.Labour.SetDateOfLabour(s, p.ID)
}

// EndPregnancy closes the pregnancy record after birth or intrapartum
// stillbirth. Anaemia is the one antenatal column that outlives the
// pregnancy: it matters to postnatal care and resolves only under
// treatment.
func (m *Module) EndPregnancy(s *sim.Simulation, id population.PersonID) {
	p := m.Pop.Get(id)
	if p == nil {
		return
	}
	anaemia := p.Antenatal.Anaemia
	p.Antenatal = population.Antenatal{Anaemia: anaemia}
}

func adjustRisk(p float64, cond bool, rr float64) float64 {
	if cond {
		return p * rr
	}
	return p
}
