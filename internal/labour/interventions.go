package labour

import (
	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
)

// Every intervention passes the same two-layer gate: the facility granted
// the encounter, and then the intervention itself must be deliverable, which
// needs its core consumables in stock plus successful staffing draws. A
// precondition that does not hold makes the call a no-op, so intervention
// passes can be re-run safely.

// cleanBirthKit applies basic hygiene measures at facility delivery.
func (m *Module) cleanBirthKit(enc *healthsystem.Encounter, id population.PersonID) {
	ep, ok := m.Episodes.Get(id)
	if !ok || ep.CleanBirthPractices {
		return
	}
	if enc.Deliverable(healthsystem.InterventionSpec{
		Name:       "clean_birth_practices",
		Core:       []string{itemDeliveryKit},
		Competence: m.competence(enc.Facility),
	}) {
		ep.CleanBirthPractices = true
	}
}

// abxForPROM covers prolonged membrane rupture with antibiotics, unless the
// antenatal period already did.
func (m *Module) abxForPROM(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok {
		return
	}
	if !p.Antenatal.MembranesRuptured || p.Antenatal.ReceivedAbxForPROM || ep.AbxForPROMGiven {
		return
	}
	if enc.Deliverable(healthsystem.InterventionSpec{
		Name:            "abx_for_prom",
		Core:            []string{itemAbxIV},
		HCWAvailability: m.P.HCWAvailIVAbx,
	}) {
		ep.AbxForPROMGiven = true
	}
}

// antenatalSteroids are offered for preterm episodes to mature fetal lungs.
func (m *Module) antenatalSteroids(enc *healthsystem.Encounter, id population.PersonID) {
	ep, ok := m.Episodes.Get(id)
	if !ok || !ep.State.Preterm() || ep.CorticosteroidsGiven {
		return
	}
	if enc.Deliverable(healthsystem.InterventionSpec{
		Name:       "antenatal_corticosteroids",
		Core:       []string{itemSteroids},
		Competence: m.competence(enc.Facility),
	}) {
		ep.CorticosteroidsGiven = true
	}
}

// mgso4 treats severe pre-eclampsia and eclampsia with magnesium sulphate in
// whichever phase the encounter happens.
func (m *Module) mgso4(enc *healthsystem.Encounter, id population.PersonID, phase Phase) {
	p := m.Pop.Get(id)
	if p == nil {
		return
	}
	mt := &p.Maternal
	htn := p.Antenatal.HTN
	if phase == PhasePostnatal {
		htn = mt.PostnatalHTN
	}
	spec := healthsystem.InterventionSpec{
		Name:            "mgso4",
		Core:            []string{itemMgSO4},
		HCWAvailability: m.P.HCWAvailAnticonvulsant,
		Competence:      m.competence(enc.Facility),
	}
	if htn == population.SeverePreEclampsia && !mt.SeverePreEclampsiaTreated {
		if enc.Deliverable(spec) {
			mt.SeverePreEclampsiaTreated = true
		}
	}
	if htn == population.Eclampsia && !mt.EclampsiaTreated {
		if enc.Deliverable(spec) {
			mt.EclampsiaTreated = true
		}
	}
}

// antihypertensives covers the hypertensive crisis intravenously and starts
// oral maintenance.
func (m *Module) antihypertensives(enc *healthsystem.Encounter, id population.PersonID, phase Phase) {
	p := m.Pop.Get(id)
	if p == nil {
		return
	}
	mt := &p.Maternal
	htn := p.Antenatal.HTN
	if phase == PhasePostnatal {
		htn = mt.PostnatalHTN
	}
	if htn < population.SevereGestationalHypertension {
		return
	}
	if !mt.HypertensionTreatedIV && enc.Deliverable(healthsystem.InterventionSpec{
		Name: "iv_antihypertensives",
		Core: []string{itemAntiHTNIV},
	}) {
		mt.HypertensionTreatedIV = true
	}
	if !mt.OnAntihypertensives && !p.Antenatal.OnAntihypertensives &&
		enc.Deliverable(healthsystem.InterventionSpec{
			Name: "oral_antihypertensives",
			Core: []string{itemAntiHTNOral},
		}) {
		mt.OnAntihypertensives = true
	}
}

// sepsisCaseManagement starts broad-spectrum antibiotics for maternal
// sepsis. The oral course completing the regimen is requested alongside the
// IV dose but does not gate delivery.
func (m *Module) sepsisCaseManagement(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	if p == nil {
		return
	}
	mt := &p.Maternal
	if (!mt.SepsisIntrapartum && !mt.SepsisPostpartum) || mt.SepsisTreated {
		return
	}
	if enc.Deliverable(healthsystem.InterventionSpec{
		Name:            "sepsis_case_management",
		Core:            []string{itemAbxIV},
		Optional:        []string{itemAbxOral},
		HCWAvailability: m.P.HCWAvailIVAbx,
		Competence:      m.competence(enc.Facility),
	}) {
		mt.SepsisTreated = true
	}
}

// assistedVaginalDelivery attempts instrumental delivery. Obstructed labour
// is the main indication; an antenatal admission for assisted delivery or
// the residual indication draw also qualify. Cephalopelvic disproportion
// goes straight to caesarean, and a failed attempt on an obstructed labour
// escalates the same way. A failed attempt without obstruction does not:
// the vaginal delivery simply proceeds.
func (m *Module) assistedVaginalDelivery(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok {
		return
	}
	if ep.Mode != population.ModeVaginal || ep.ReferredForCS {
		return
	}
	obstructed := p.Maternal.ObstructedLabour
	indicated := obstructed ||
		p.Antenatal.AdmittedForDelivery == population.AdmitAssistedDeliveryNow ||
		rng.Bernoulli(m.RNG, m.P.ProbAVDOtherIndication)
	if !indicated {
		return
	}
	if ep.CephalopelvicDisproportion {
		m.referForCaesarean(ep, CSObstructedLabour)
		return
	}
	deliverable := enc.Deliverable(healthsystem.InterventionSpec{
		Name:            "assisted_vaginal_delivery",
		Core:            []string{itemAVDKit},
		HCWAvailability: m.P.HCWAvailAVD,
		Competence:      m.competence(enc.Facility),
	})
	if deliverable && rng.Bernoulli(m.RNG, m.P.ProbSuccessfulAVD) {
		ep.Mode = population.ModeInstrumental
		return
	}
	if obstructed {
		m.referForCaesarean(ep, CSObstructedLabour)
	}
}

// planForHaemorrhage decides the response to an established antepartum
// haemorrhage: severe bleeding needs surgical delivery and blood.
func (m *Module) planForHaemorrhage(id population.PersonID) {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok {
		return
	}
	sev := p.Maternal.AntepartumHaem
	if sev == population.SeverityNone {
		sev = p.Antenatal.AntepartumHaem
	}
	if sev == population.SeverityNone {
		return
	}
	ep.ReferredForBlood = true
	if sev == population.SeveritySevere {
		m.referForCaesarean(ep, CSAntepartumHaem)
	}
}

// uterineRuptureReferral routes a rupture to surgery, blood, and caesarean.
func (m *Module) uterineRuptureReferral(id population.PersonID) {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok || !p.Maternal.UterineRupture {
		return
	}
	ep.ReferredForSurgery = true
	ep.ReferredForBlood = true
	m.referForCaesarean(ep, CSUterineRupture)
}

func (m *Module) referForCaesarean(ep *Episode, indication CSIndication) {
	if ep.ReferredForCS {
		return
	}
	ep.ReferredForCS = true
	ep.CSIndication = indication
}

// amtsl is active management of the third stage of labour, the main
// prophylaxis against postpartum haemorrhage.
func (m *Module) amtsl(enc *healthsystem.Encounter, id population.PersonID) {
	ep, ok := m.Episodes.Get(id)
	if !ok || ep.AMTSLGiven {
		return
	}
	if enc.Deliverable(healthsystem.InterventionSpec{
		Name:            "amtsl",
		Core:            []string{itemUterotonics},
		HCWAvailability: m.P.HCWAvailUterotonic,
		Competence:      m.competence(enc.Facility),
	}) {
		ep.AMTSLGiven = true
	}
}

// neonatalResuscitation checks whether resuscitation could be offered to the
// newborn at this delivery.
func (m *Module) neonatalResuscitation(enc *healthsystem.Encounter, id population.PersonID) {
	ep, ok := m.Episodes.Get(id)
	if !ok {
		return
	}
	if enc.Deliverable(healthsystem.InterventionSpec{
		Name:            "neonatal_resuscitation",
		Core:            []string{itemResusKit},
		HCWAvailability: m.P.HCWAvailResuscitation,
		Competence:      m.competence(enc.Facility),
	}) {
		ep.NeonatalResusAvailable = true
	}
}

// caesarean performs the section. An "other" (non-emergency residual)
// indication is assumed to have been provisioned in advance and proceeds
// regardless of today's stock.
func (m *Module) caesarean(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok || ep.Mode == population.ModeCaesarean {
		return
	}
	deliverable := enc.Deliverable(healthsystem.InterventionSpec{
		Name:            "caesarean_section",
		Core:            []string{itemCSKit, itemAbxIV},
		HCWAvailability: m.P.HCWAvailIVAbx,
		Competence:      m.competence(enc.Facility),
	})
	if !deliverable && ep.CSIndication != CSOther {
		return
	}
	ep.Mode = population.ModeCaesarean
	ep.AMTSLGiven = true
	p.Maternal.PreviousCaesareans++
	m.Sim.Rec.Record(enc.Date, "caesarean", id, map[string]any{
		"indication": ep.CSIndication.String(),
	})
}

// uterineRepair attempts surgical repair of a rupture; failure means
// hysterectomy.
func (m *Module) uterineRepair(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	if p == nil || !p.Maternal.UterineRupture || p.Maternal.UterineRuptureRepaired || p.Maternal.Hysterectomy {
		return
	}
	deliverable := enc.Deliverable(healthsystem.InterventionSpec{
		Name:       "uterine_repair",
		Core:       []string{itemSurgicalKit},
		Competence: m.competence(enc.Facility),
	})
	if deliverable && rng.Bernoulli(m.RNG, m.P.ProbSuccessfulURRepair) {
		p.Maternal.UterineRuptureRepaired = true
	} else {
		p.Maternal.Hysterectomy = true
	}
}

// uterotonicsForPPH treats atonic bleeding medically; failure escalates to
// surgery and blood.
func (m *Module) uterotonicsForPPH(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok {
		return
	}
	if !p.Maternal.PostpartumHaem || !ep.UterineAtony || ep.PPHTreatment.Has(TreatUterotonics) {
		return
	}
	deliverable := enc.Deliverable(healthsystem.InterventionSpec{
		Name:            "uterotonics_for_pph",
		Core:            []string{itemUterotonics},
		HCWAvailability: m.P.HCWAvailUterotonic,
		Competence:      m.competence(enc.Facility),
	})
	if deliverable && rng.Bernoulli(m.RNG, m.P.ProbHaemostasisUterotonics) {
		ep.PPHTreatment.Set(TreatUterotonics)
		return
	}
	ep.ReferredForSurgery = true
	ep.ReferredForBlood = true
}

// manualRemovalOfPlacenta treats retained-placenta bleeding; failure
// escalates to surgery and blood.
func (m *Module) manualRemovalOfPlacenta(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok {
		return
	}
	if !ep.RetainedPlacenta || ep.PPHTreatment.Has(TreatManualRemovalPlacenta) {
		return
	}
	deliverable := enc.Deliverable(healthsystem.InterventionSpec{
		Name:            "manual_removal_of_placenta",
		HCWAvailability: m.P.HCWAvailManualRemoval,
		Competence:      m.competence(enc.Facility),
	})
	if deliverable && rng.Bernoulli(m.RNG, m.P.ProbSuccessfulManualRemoval) {
		ep.PPHTreatment.Set(TreatManualRemovalPlacenta)
		return
	}
	ep.ReferredForSurgery = true
	ep.ReferredForBlood = true
}

// surgicalPPHManagement operates on refractory postpartum haemorrhage;
// failed conservative surgery ends in hysterectomy.
func (m *Module) surgicalPPHManagement(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	ep, ok := m.Episodes.Get(id)
	if p == nil || !ok || !p.Maternal.PostpartumHaem {
		return
	}
	if ep.PPHTreatment.Has(TreatPPHSurgery) || ep.PPHTreatment.Has(TreatHysterectomy) {
		return
	}
	deliverable := enc.Deliverable(healthsystem.InterventionSpec{
		Name:       "pph_surgery",
		Core:       []string{itemSurgicalKit},
		Competence: m.competence(enc.Facility),
	})
	if !deliverable {
		return
	}
	if rng.Bernoulli(m.RNG, m.P.ProbSuccessfulPPHSurgery) {
		ep.PPHTreatment.Set(TreatPPHSurgery)
	} else {
		ep.PPHTreatment.Set(TreatHysterectomy)
		p.Maternal.Hysterectomy = true
	}
}

// bloodTransfusion replaces lost volume and can resolve severe anaemia.
func (m *Module) bloodTransfusion(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	if p == nil || p.Maternal.ReceivedBloodTransfusion {
		return
	}
	if enc.Deliverable(healthsystem.InterventionSpec{
		Name: "blood_transfusion",
		Core: []string{itemBlood},
	}) {
		p.Maternal.ReceivedBloodTransfusion = true
		if p.Antenatal.Anaemia == population.AnaemiaSevere &&
			rng.Bernoulli(m.RNG, m.P.ProbResolveAnaemiaBlood) {
			p.Antenatal.Anaemia = population.AnaemiaNone
		}
	}
}

// ironFolicAcid is the pre-discharge supplementation at postnatal contact.
func (m *Module) ironFolicAcid(enc *healthsystem.Encounter, id population.PersonID) {
	p := m.Pop.Get(id)
	if p == nil || p.Maternal.IronFolicAcidPostnatal {
		return
	}
	if enc.Deliverable(healthsystem.InterventionSpec{
		Name: "iron_folic_acid",
		Core: []string{itemIronFolic},
	}) {
		p.Maternal.IronFolicAcidPostnatal = true
	}
}
