package labour

import (
	"time"

	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
)

// ipComplication enumerates the intrapartum complications in the fixed
// order they are evaluated. The order matters: obstruction raises the risk
// of rupture, abruption raises the risk of haemorrhage.
type ipComplication uint8

const (
	ipObstructionCPD ipComplication = iota
	ipObstructionMalposition
	ipObstructionOther
	ipPlacentalAbruption
	ipAntepartumHaem
	ipSepsis
	ipUterineRupture
)

var ipComplicationOrder = []ipComplication{
	ipObstructionCPD,
	ipObstructionMalposition,
	ipObstructionOther,
	ipPlacentalAbruption,
	ipAntepartumHaem,
	ipSepsis,
	ipUterineRupture,
}

// ppComplication enumerates postpartum complications in evaluation order.
type ppComplication uint8

const (
	ppSepsisEndometritis ppComplication = iota
	ppSepsisUrinaryTract
	ppSepsisSkinSoftTissue
	ppPPHUterineAtony
	ppPPHRetainedPlacenta
	ppPPHOther
)

var ppComplicationOrder = []ppComplication{
	ppSepsisEndometritis,
	ppSepsisUrinaryTract,
	ppSepsisSkinSoftTissue,
	ppPPHUterineAtony,
	ppPPHRetainedPlacenta,
	ppPPHOther,
}

// applyIntrapartumComplications runs the full onset pass for one woman.
func (m *Module) applyIntrapartumComplications(id population.PersonID, date time.Time) {
	for _, c := range ipComplicationOrder {
		m.setIntrapartumComplication(id, c, date)
	}
}

// setIntrapartumComplication draws onset of a single complication.
// Application is idempotent: a complication already present, whether from an
// earlier call or from the antenatal period, is never re-applied, so a woman
// routed through more than one onset pass is unaffected by the repeat.
func (m *Module) setIntrapartumComplication(id population.PersonID, c ipComplication, date time.Time) {
	p := m.Pop.Get(id)
	ep, ok := m.episodeOf(id, "intrapartum complication onset")
	if p == nil || !ok {
		return
	}
	mt := &p.Maternal
	an := &p.Antenatal

	switch c {
	case ipObstructionCPD, ipObstructionMalposition, ipObstructionOther:
		if mt.ObstructedLabour {
			return
		}
		var risk float64
		switch c {
		case ipObstructionCPD:
			risk = adjust(m.P.ProbObstructionCPD, ep.BirthWeight == WeightMacrosomia, m.P.RRObstructionMacrosomia)
		case ipObstructionMalposition:
			risk = m.P.ProbObstructionMalposition
		default:
			risk = m.P.ProbObstructionOther
		}
		if rng.Bernoulli(m.RNG, risk) {
			mt.ObstructedLabour = true
			if c == ipObstructionCPD {
				ep.CephalopelvicDisproportion = true
			}
			m.recordComplication(id, "obstructed_labour", PhaseIntrapartum, date)
		}

	case ipPlacentalAbruption:
		if mt.PlacentalAbruption || an.PlacentalAbruption {
			return
		}
		risk := adjust(m.P.ProbPlacentalAbruption, an.HTN >= population.SevereGestationalHypertension, m.P.RRAbruptionHypertension)
		if rng.Bernoulli(m.RNG, risk) {
			mt.PlacentalAbruption = true
			m.recordComplication(id, "placental_abruption", PhaseIntrapartum, date)
		}

	case ipAntepartumHaem:
		if mt.AntepartumHaem != population.SeverityNone || an.AntepartumHaem != population.SeverityNone {
			return
		}
		risk := adjust(m.P.ProbAntepartumHaem, mt.PlacentalAbruption || an.PlacentalAbruption, m.P.RRAPHAbruption)
		if rng.Bernoulli(m.RNG, risk) {
			mt.AntepartumHaem = population.SeverityMildModerate
			if rng.Bernoulli(m.RNG, m.P.ProbAPHSevere) {
				mt.AntepartumHaem = population.SeveritySevere
			}
			m.recordComplication(id, "antepartum_haem", PhaseIntrapartum, date)
		}

	case ipSepsis:
		if mt.SepsisIntrapartum {
			return
		}
		// An established antenatal chorioamnionitis is already an
		// intrapartum infection, no further draw needed.
		if an.Chorioamnionitis {
			mt.SepsisIntrapartum = true
			m.recordComplication(id, "sepsis_intrapartum", PhaseIntrapartum, date)
			return
		}
		risk := adjust(m.P.ProbSepsisChorioamnionitis, an.MembranesRuptured, m.P.RRSepsisPROM)
		risk = adjust(risk, ep.CleanBirthPractices, m.P.TreatmentEffectCleanBirthSepsis)
		risk = adjust(risk, ep.AbxForPROMGiven, m.P.TreatmentEffectAbxPROMSepsis)
		if rng.Bernoulli(m.RNG, risk) {
			mt.SepsisIntrapartum = true
			m.recordComplication(id, "sepsis_intrapartum", PhaseIntrapartum, date)
		}

	case ipUterineRupture:
		if mt.UterineRupture {
			return
		}
		risk := m.P.ProbUterineRupture
		risk = adjust(risk, mt.PreviousCaesareans > 0, m.P.RRRupturePreviousCS)
		risk = adjust(risk, mt.ObstructedLabour, m.P.RRRuptureObstructed)
		if rng.Bernoulli(m.RNG, risk) {
			mt.UterineRupture = true
			m.recordComplication(id, "uterine_rupture", PhaseIntrapartum, date)
		}
	}
}

// applyPostpartumComplications runs the onset pass after delivery.
func (m *Module) applyPostpartumComplications(id population.PersonID, date time.Time) {
	for _, c := range ppComplicationOrder {
		m.setPostpartumComplication(id, c, date)
	}
}

// setPostpartumComplication draws onset of a single postpartum
// complication, with the same idempotence guarantee as the intrapartum pass.
func (m *Module) setPostpartumComplication(id population.PersonID, c ppComplication, date time.Time) {
	p := m.Pop.Get(id)
	ep, ok := m.episodeOf(id, "postpartum complication onset")
	if p == nil || !ok {
		return
	}
	mt := &p.Maternal

	switch c {
	case ppSepsisEndometritis, ppSepsisUrinaryTract, ppSepsisSkinSoftTissue:
		if mt.SepsisPostpartum {
			return
		}
		var risk float64
		switch c {
		case ppSepsisEndometritis:
			risk = m.P.ProbSepsisEndometritis
		case ppSepsisUrinaryTract:
			risk = m.P.ProbSepsisUrinaryTract
		default:
			risk = m.P.ProbSepsisSkinSoftTissue
		}
		if rng.Bernoulli(m.RNG, risk) {
			mt.SepsisPostpartum = true
			m.recordComplication(id, "sepsis_postpartum", PhasePostnatal, date)
		}

	case ppPPHUterineAtony, ppPPHRetainedPlacenta, ppPPHOther:
		var risk float64
		switch c {
		case ppPPHUterineAtony:
			if ep.UterineAtony {
				return
			}
			risk = m.P.ProbPPHUterineAtony
			risk = adjust(risk, ep.BirthWeight == WeightMacrosomia, m.P.RRPPHAtonyMacrosomia)
			risk = adjust(risk, p.Antenatal.MultiplePregnancy, m.P.RRPPHAtonyMultiples)
		case ppPPHRetainedPlacenta:
			if ep.RetainedPlacenta {
				return
			}
			risk = m.P.ProbPPHRetainedPlacenta
		default:
			risk = m.P.ProbPPHOther
		}
		risk = adjust(risk, ep.AMTSLGiven, m.P.TreatmentEffectAMTSLOnPPH)
		if !rng.Bernoulli(m.RNG, risk) {
			return
		}
		switch c {
		case ppPPHUterineAtony:
			ep.UterineAtony = true
		case ppPPHRetainedPlacenta:
			ep.RetainedPlacenta = true
		}
		if !mt.PostpartumHaem {
			mt.PostpartumHaem = true
			m.recordComplication(id, "postpartum_haem", PhasePostnatal, date)
		}
	}
}

// progressHypertension moves a woman one rung up the hypertensive-disorder
// ladder, if the draw says so. The intrapartum pass operates on the
// antenatal column, the postnatal pass on the postnatal one.
func (m *Module) progressHypertension(id population.PersonID, phase Phase, date time.Time) {
	p := m.Pop.Get(id)
	ep, ok := m.episodeOf(id, "hypertension progression")
	if p == nil || !ok {
		return
	}
	htn := &p.Antenatal.HTN
	if phase == PhasePostnatal {
		htn = &p.Maternal.PostnatalHTN
	}
	onTreatment := p.Antenatal.OnAntihypertensives || p.Maternal.OnAntihypertensives

	switch *htn {
	case population.GestationalHypertension:
		risk := adjust(m.P.ProbSevereGestHTNFromGestHTN, onTreatment, m.P.TreatmentEffectAntiHTNProgression)
		if rng.Bernoulli(m.RNG, risk) {
			*htn = population.SevereGestationalHypertension
		}
	case population.SevereGestationalHypertension:
		if rng.Bernoulli(m.RNG, m.P.ProbSPEFromSevereGestHTN) {
			*htn = population.SeverePreEclampsia
			ep.NewOnsetSevPreEclampsia = true
			m.recordComplication(id, "severe_pre_eclampsia", phase, date)
		}
	case population.MildPreEclampsia:
		risk := adjust(m.P.ProbSPEFromMildPE, onTreatment, m.P.TreatmentEffectAntiHTNProgression)
		if rng.Bernoulli(m.RNG, risk) {
			*htn = population.SeverePreEclampsia
			ep.NewOnsetSevPreEclampsia = true
			m.recordComplication(id, "severe_pre_eclampsia", phase, date)
		}
	case population.SeverePreEclampsia:
		// MgSO4 prophylaxis blocks progression to eclampsia.
		if p.Maternal.SeverePreEclampsiaTreated || p.Antenatal.ReceivedMgSO4 {
			return
		}
		if rng.Bernoulli(m.RNG, m.P.ProbEclampsiaFromSPE) {
			*htn = population.Eclampsia
			m.recordComplication(id, "eclampsia", phase, date)
		}
	}
}

func (m *Module) recordComplication(id population.PersonID, kind string, phase Phase, date time.Time) {
	m.Sim.Rec.Record(date, "complication_onset", id, map[string]any{
		"type":  kind,
		"phase": phase.String(),
	})
}
