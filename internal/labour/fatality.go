package labour

import (
	"log/slog"
	"time"

	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
)

// Maternal causes of death as they appear in death records.
const (
	CauseUterineRupture     = "uterine_rupture"
	CauseAntepartumHaem     = "antepartum_haemorrhage"
	CauseIntrapartumSepsis  = "intrapartum_sepsis"
	CausePostpartumSepsis   = "postpartum_sepsis"
	CauseEclampsia          = "eclampsia"
	CauseSeverePreEclampsia = "severe_pre_eclampsia"
	CausePostpartumHaem     = "postpartum_haemorrhage"
)

// riskOfDeath evaluates each complication active in the given phase with its
// case fatality rate, treatment reducing the rate multiplicatively. Causes
// are tried in a fixed priority order and the first fatal draw wins, so a
// single call attributes at most one cause. An empty return means survival.
func (m *Module) riskOfDeath(id population.PersonID, phase Phase) string {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok {
		return ""
	}
	mt := &p.Maternal

	htn := p.Antenatal.HTN
	if phase == PhasePostnatal {
		htn = mt.PostnatalHTN
	}

	type candidate struct {
		active bool
		cause  string
		risk   float64
	}
	var candidates []candidate

	if phase == PhaseIntrapartum {
		ur := m.P.CFRUterineRupture
		ur = adjust(ur, mt.UterineRuptureRepaired, m.P.TreatmentEffectURRepair)
		candidates = append(candidates, candidate{mt.UterineRupture, CauseUterineRupture, ur})

		aph := m.P.CFRAntepartumHaem
		sev := mt.AntepartumHaem
		if sev == population.SeverityNone {
			sev = p.Antenatal.AntepartumHaem
		}
		aph = adjust(aph, sev == population.SeverityMildModerate, m.P.RRAPHDeathMildModerate)
		aph = adjust(aph, mt.ReceivedBloodTransfusion, m.P.TreatmentEffectBloodAPH)
		candidates = append(candidates, candidate{sev != population.SeverityNone, CauseAntepartumHaem, aph})

		sep := adjust(m.P.CFRSepsisIntrapartum, mt.SepsisTreated, m.P.TreatmentEffectSepsisAbx)
		candidates = append(candidates, candidate{mt.SepsisIntrapartum, CauseIntrapartumSepsis, sep})
	} else {
		sep := adjust(m.P.CFRSepsisPostpartum, mt.SepsisTreated, m.P.TreatmentEffectSepsisAbx)
		candidates = append(candidates, candidate{mt.SepsisPostpartum, CausePostpartumSepsis, sep})

		pph := m.P.CFRPostpartumHaem
		pph = adjust(pph, ep.PPHTreatment.Has(TreatUterotonics), m.P.TreatmentEffectUterotonicsPPH)
		pph = adjust(pph, mt.ReceivedBloodTransfusion, m.P.TreatmentEffectBloodPPH)
		pph = adjust(pph, ep.PPHTreatment.Has(TreatPPHSurgery) || ep.PPHTreatment.Has(TreatHysterectomy), m.P.TreatmentEffectPPHSurgery)
		pph = adjust(pph, ep.RetainedPlacenta && ep.PPHTreatment.Has(TreatManualRemovalPlacenta), m.P.TreatmentEffectManualRemovalPPH)
		candidates = append(candidates, candidate{mt.PostpartumHaem, CausePostpartumHaem, pph})
	}

	ec := adjust(m.P.CFREclampsia, mt.EclampsiaTreated, m.P.TreatmentEffectMgSO4Eclampsia)
	candidates = append(candidates, candidate{htn == population.Eclampsia, CauseEclampsia, ec})

	spe := adjust(m.P.CFRSeverePreEclampsia, mt.SeverePreEclampsiaTreated, m.P.TreatmentEffectMgSO4Eclampsia)
	candidates = append(candidates, candidate{htn == population.SeverePreEclampsia, CauseSeverePreEclampsia, spe})

	for _, c := range candidates {
		if c.active && rng.Bernoulli(m.RNG, c.risk) {
			return c.cause
		}
	}
	return ""
}

// ApplyRiskOfEarlyPostpartumDeath resolves the early postnatal death risk
// for one woman. Every postnatal route, whether care was received, missed,
// or never sought, funnels through here exactly once; the episode flag makes
// a second call a no-op.
//
// Death keeps the treatment flags so the cause attribution in the record
// reflects what care was given. Survival resets the transient complication
// and treatment state and hands the woman over to the week-one event.
func (m *Module) ApplyRiskOfEarlyPostpartumDeath(id population.PersonID, date time.Time) {
	p := m.Pop.Get(id)
	if p == nil || !p.Alive {
		return
	}
	if !p.Maternal.Postpartum {
		slog.Error("postpartum death risk applied to woman not postpartum", "person", id)
		return
	}
	ep, ok := m.episodeOf(id, "early postpartum death risk")
	if !ok || ep.deathRiskApplied {
		return
	}
	ep.deathRiskApplied = true

	if cause := m.riskOfDeath(id, PhasePostnatal); cause != "" {
		ep.DeathInLabour = true
		m.Sim.RecordDeath(id, cause)
		m.concludeEpisode(id)
		return
	}

	mt := &p.Maternal
	if mt.PostnatalHTN == population.Eclampsia {
		mt.PostnatalHTN = population.SeverePreEclampsia
	}
	ep.NewOnsetSevPreEclampsia = false
	mt.SepsisIntrapartum = false
	mt.SepsisPostpartum = false
	mt.PostpartumHaem = false
	mt.AntepartumHaem = population.SeverityNone
	mt.SepsisTreated = false
	mt.EclampsiaTreated = false
	mt.SeverePreEclampsiaTreated = false
	mt.HypertensionTreatedIV = false
	mt.ReceivedBloodTransfusion = false
	ep.UterineAtony = false
	ep.RetainedPlacenta = false
	ep.PPHTreatment.Clear()

	if !ep.PassedThroughWeekOne {
		// Hand over to the week-one review between two and six days
		// after delivery, never earlier than tomorrow. A late postnatal
		// check has a window closing four days after delivery, and the
		// review must not conclude the episode before that resolves.
		offset := 2 + m.RNG.Intn(5)
		if ep.WillReceivePNC == PNCLate {
			offset = 6
		}
		when := mt.MostRecentDeliveryDate.AddDate(0, 0, offset)
		if !when.After(date) {
			when = date.AddDate(0, 0, 1)
		}
		m.Sim.MustSchedule(&PostnatalWeekOneEvent{M: m, ID: id}, when)
	}
}
