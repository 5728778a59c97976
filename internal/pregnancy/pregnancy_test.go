package pregnancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwanda/healthsim/internal/consumables"
	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/labour"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
	"github.com/mkwanda/healthsim/internal/sim"
)

var day0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestModule(t *testing.T, p *params.Params) (*Module, *sim.Simulation, *population.Store) {
	t.Helper()
	reg := rng.NewRegistry(5)
	pop := population.NewStore()
	cons := consumables.New(p.Consumables.Items, 0, 1, 1, reg.Module("consumables"))
	hs := healthsystem.New(p.HealthSystem, pop, cons, reg.Module("healthsystem"))
	s := sim.New(day0, pop, hs, p, reg, nil)

	lab := labour.New(pop, hs, &p.Labour, reg.Module("labour"))
	lab.Attach(s)
	m := New(pop, &p.Pregnancy, reg.Module("pregnancy"), lab)
	s.Register(m)
	s.Register(lab)
	return m, s, pop
}

func addWoman(pop *population.Store, ageYears int) population.PersonID {
	return pop.Create(population.NoPerson, population.SexFemale,
		day0.AddDate(-ageYears, 0, 0))
}

func TestNewRegistersAntenatalCapability(t *testing.T) {
	p := params.Defaults()
	m, _, _ := newTestModule(t, p)
	assert.Same(t, m, m.Labour.Antenatal)
}

func TestConceptionSetsUpPregnancy(t *testing.T) {
	p := params.Defaults()
	p.Pregnancy.ProbConceptionPerMonth = 30 // daily probability 1
	p.Pregnancy.ProbMultiples = 0
	m, s, pop := newTestModule(t, p)
	id := addWoman(pop, 25)

	m.OnDay(s, day0)

	woman := pop.Get(id)
	require.True(t, woman.Antenatal.Pregnant)
	assert.Equal(t, day0, woman.Antenatal.ConceptionDate)
	assert.False(t, woman.Maternal.DueDate.IsZero(), "labour onset must be scheduled")
	offset := int(woman.Maternal.DueDate.Sub(day0).Hours() / 24)
	assert.GreaterOrEqual(t, offset, 245)
	assert.Less(t, offset, 302)
}

func TestConceptionEligibility(t *testing.T) {
	p := params.Defaults()
	p.Pregnancy.ProbConceptionPerMonth = 30
	m, s, pop := newTestModule(t, p)

	man := pop.Create(population.NoPerson, population.SexMale, day0.AddDate(-25, 0, 0))
	tooYoung := addWoman(pop, 12)
	tooOld := addWoman(pop, 55)
	alreadyPregnant := addWoman(pop, 25)
	pop.Get(alreadyPregnant).Antenatal.Pregnant = true
	pop.Get(alreadyPregnant).Antenatal.ConceptionDate = day0.AddDate(0, 0, -30)
	postpartum := addWoman(pop, 25)
	pop.Get(postpartum).Maternal.Postpartum = true

	m.OnDay(s, day0)

	assert.False(t, pop.Get(man).Antenatal.Pregnant)
	assert.False(t, pop.Get(tooYoung).Antenatal.Pregnant)
	assert.False(t, pop.Get(tooOld).Antenatal.Pregnant)
	assert.Equal(t, day0.AddDate(0, 0, -30), pop.Get(alreadyPregnant).Antenatal.ConceptionDate,
		"existing pregnancy must not be re-drawn")
	assert.False(t, pop.Get(postpartum).Antenatal.Pregnant)
}

func TestConceptionNeverFiresAtZeroProbability(t *testing.T) {
	p := params.Defaults()
	p.Pregnancy.ProbConceptionPerMonth = 0
	m, s, pop := newTestModule(t, p)
	id := addWoman(pop, 25)

	for i := 0; i < 50; i++ {
		m.OnDay(s, day0.AddDate(0, 0, i))
	}
	assert.False(t, pop.Get(id).Antenatal.Pregnant)
}

func TestAntenatalStateDrawnAtConception(t *testing.T) {
	p := params.Defaults()
	p.Pregnancy.ProbConceptionPerMonth = 30
	p.Pregnancy.ProbPROM = 1
	p.Pregnancy.ProbChorioamnionitis = 1
	p.Pregnancy.ProbAnaemia = 1
	p.Pregnancy.WeightAnaemiaMild = 0
	p.Pregnancy.WeightAnaemiaMod = 0
	p.Pregnancy.WeightAnaemiaSevere = 1
	m, s, pop := newTestModule(t, p)
	id := addWoman(pop, 25)

	m.OnDay(s, day0)

	an := pop.Get(id).Antenatal
	require.True(t, an.Pregnant)
	assert.True(t, an.MembranesRuptured)
	assert.True(t, an.Chorioamnionitis)
	assert.Equal(t, population.AnaemiaSevere, an.Anaemia)
}

func TestAdmissionForInductionDrawnAtConception(t *testing.T) {
	p := params.Defaults()
	p.Pregnancy.ProbConceptionPerMonth = 30
	p.Pregnancy.ProbAdmitForCaesarean = 0
	p.Pregnancy.ProbAdmitForAVD = 0
	p.Pregnancy.ProbAdmitForInduction = 1
	m, s, pop := newTestModule(t, p)
	id := addWoman(pop, 25)

	m.OnDay(s, day0)

	an := pop.Get(id).Antenatal
	require.True(t, an.Pregnant)
	assert.Equal(t, population.AdmitInduction, an.AdmittedForDelivery)
}

func TestEndPregnancyPreservesAnaemia(t *testing.T) {
	p := params.Defaults()
	m, s, pop := newTestModule(t, p)
	id := addWoman(pop, 25)

	woman := pop.Get(id)
	woman.Antenatal = population.Antenatal{
		Pregnant:          true,
		ConceptionDate:    day0.AddDate(0, 0, -280),
		MembranesRuptured: true,
		HTN:               population.MildPreEclampsia,
		Anaemia:           population.AnaemiaModerate,
	}

	m.EndPregnancy(s, id)

	an := pop.Get(id).Antenatal
	assert.False(t, an.Pregnant)
	assert.False(t, an.MembranesRuptured)
	assert.Equal(t, population.HTNNone, an.HTN)
	assert.Equal(t, population.AnaemiaModerate, an.Anaemia,
		"anaemia outlives the pregnancy record")
}

func TestEndPregnancyUnknownPerson(t *testing.T) {
	m, s, _ := newTestModule(t, params.Defaults())
	assert.NotPanics(t, func() { m.EndPregnancy(s, 99) })
}
