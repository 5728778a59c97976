package labour

import (
	"log/slog"
	"time"

	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
)

// DeliveryCare is skilled birth attendance at a facility: the prophylactic
// package, the intrapartum complication pass under observation, first-line
// treatment, and referral to comprehensive care where needed.
type DeliveryCare struct {
	M     *Module
	ID    population.PersonID
	Level healthsystem.FacilityLevel
}

func (h *DeliveryCare) Subject() population.PersonID         { return h.ID }
func (h *DeliveryCare) TreatmentID() string                  { return TreatmentDeliveryBasic }
func (h *DeliveryCare) Facility() healthsystem.FacilityLevel { return h.Level }

func (h *DeliveryCare) Footprint() healthsystem.Footprint {
	return healthsystem.Footprint{
		Appts:   map[healthsystem.ApptType]int{healthsystem.ApptNormalDelivery: 1},
		BedDays: map[healthsystem.WardType]int{healthsystem.WardMaternity: 2},
	}
}

func (h *DeliveryCare) Run(enc *healthsystem.Encounter) healthsystem.Footprint {
	m := h.M
	p := m.Pop.Get(h.ID)
	if p == nil || !p.Alive {
		return h.Footprint()
	}
	ep, ok := m.episodeOf(h.ID, "delivery care")
	if !ok {
		return h.Footprint()
	}
	an := &p.Antenatal
	mt := &p.Maternal

	// A woman who sought care from a home birth is now delivering at the
	// facility that admitted her.
	if ep.Setting == SettingHome && ep.SoughtCareForComplication {
		if enc.Facility.IsHospital() {
			ep.Setting = SettingHospital
		} else {
			ep.Setting = SettingHealthCentre
		}
	}

	switch an.AdmittedForDelivery {
	case population.AdmitCaesareanNow, population.AdmitCaesareanFuture:
		m.referForCaesarean(ep, CSOther)
	}

	m.cleanBirthKit(enc, h.ID)
	m.abxForPROM(enc, h.ID)
	m.antenatalSteroids(enc, h.ID)
	m.mgso4(enc, h.ID, PhaseIntrapartum)
	m.antihypertensives(enc, h.ID, PhaseIntrapartum)

	// Complications were already applied at home for women who arrive as
	// emergencies; running the pass again would be a no-op anyway, but
	// the progression draw is not idempotent, so guard both.
	if !ep.SoughtCareForComplication {
		m.applyIntrapartumComplications(h.ID, enc.Date)
		m.progressHypertension(h.ID, PhaseIntrapartum, enc.Date)
	}

	m.assistedVaginalDelivery(enc, h.ID)
	m.sepsisCaseManagement(enc, h.ID)
	m.mgso4(enc, h.ID, PhaseIntrapartum)
	m.planForHaemorrhage(h.ID)
	m.uterineRuptureReferral(h.ID)
	m.amtsl(enc, h.ID)

	// Residual indications not tied to a modelled complication.
	if !ep.ReferredForCS && mt.PreviousCaesareans >= 2 &&
		rng.Bernoulli(m.RNG, m.P.ProbCSPreviousScar) {
		m.referForCaesarean(ep, CSPreviousScar)
	}
	if !ep.ReferredForCS && rng.Bernoulli(m.RNG, m.P.ProbCaesareanOtherIndication) {
		m.referForCaesarean(ep, CSOther)
	}

	m.neonatalResuscitation(enc, h.ID)

	if ep.ReferredForCS || ep.ReferredForSurgery || ep.ReferredForBlood {
		level := enc.Facility
		if !level.IsHospital() {
			level = m.hospitalLevel()
		}
		cem := &ComprehensiveCare{M: m, ID: h.ID, Level: level, Timing: PhaseIntrapartum}
		if err := m.HS.ScheduleHSI(cem, 0, enc.Date, enc.Date.AddDate(0, 0, 1)); err != nil {
			slog.Error("scheduling comprehensive care failed", "person", h.ID, "err", err)
		}
	}

	actual := h.Footprint()
	if m.hasIntrapartumComplication(h.ID) {
		actual.Appts = map[healthsystem.ApptType]int{healthsystem.ApptComplicatedDelivery: 1}
	}
	return actual
}

// Fallback re-routes the delivery home when the facility never admitted the
// woman. A woman who was already delivering at home and sought help has no
// further route and simply stays where she is.
func (h *DeliveryCare) Fallback(date time.Time, outcome healthsystem.Outcome) {
	m := h.M
	if !m.Pop.IsAlive(h.ID) {
		return
	}
	ep, ok := m.Episodes.Get(h.ID)
	if !ok {
		return
	}
	if ep.SoughtCareForComplication {
		return
	}
	ep.Setting = SettingHome
	ep.DeliveryAttendanceCantRun = true
	m.Sim.MustSchedule(&HomeBirthEvent{M: m, ID: h.ID}, date)
}

// ComprehensiveCare is the emergency obstetric and surgical tier: caesarean
// section, laparotomy, and blood transfusion. Timing distinguishes an
// intrapartum referral from a postnatal one, which also carries the duty of
// resolving the early death risk.
type ComprehensiveCare struct {
	M      *Module
	ID     population.PersonID
	Level  healthsystem.FacilityLevel
	Timing Phase
}

func (h *ComprehensiveCare) Subject() population.PersonID         { return h.ID }
func (h *ComprehensiveCare) Facility() healthsystem.FacilityLevel { return h.Level }

func (h *ComprehensiveCare) TreatmentID() string {
	if h.Timing == PhasePostnatal {
		return TreatmentPostnatalComprehensive
	}
	return TreatmentDeliveryComprehensive
}

func (h *ComprehensiveCare) Footprint() healthsystem.Footprint {
	return healthsystem.Footprint{
		Appts: map[healthsystem.ApptType]int{healthsystem.ApptMajorSurgery: 1},
	}
}

func (h *ComprehensiveCare) Run(enc *healthsystem.Encounter) healthsystem.Footprint {
	m := h.M
	p := m.Pop.Get(h.ID)
	if p == nil || !p.Alive {
		return h.Footprint()
	}
	ep, ok := m.episodeOf(h.ID, "comprehensive care")
	if !ok {
		return h.Footprint()
	}

	if h.Timing == PhaseIntrapartum {
		if ep.ReferredForCS {
			m.caesarean(enc, h.ID)
		}
		if ep.ReferredForSurgery {
			m.uterineRepair(enc, h.ID)
		}
	} else {
		if ep.ReferredForSurgery {
			m.surgicalPPHManagement(enc, h.ID)
		}
	}
	if ep.ReferredForBlood {
		m.bloodTransfusion(enc, h.ID)
	}

	if h.Timing == PhasePostnatal {
		m.ApplyRiskOfEarlyPostpartumDeath(h.ID, enc.Date)
	}
	if m.Pop.IsAlive(h.ID) {
		ward := &InpatientCare{M: m, ID: h.ID, Level: enc.Facility}
		if err := m.HS.ScheduleHSI(ward, 0, enc.Date, enc.Date.AddDate(0, 0, 1)); err != nil {
			slog.Error("scheduling inpatient care failed", "person", h.ID, "err", err)
		}
	}

	actual := h.Footprint()
	if ep.Mode == population.ModeCaesarean && h.Timing == PhaseIntrapartum {
		actual.Appts = map[healthsystem.ApptType]int{healthsystem.ApptCaesarean: 1}
	}
	return actual
}

// Fallback: a postnatal referral that never happened still owes the woman
// her death-risk resolution; an intrapartum one is picked up by the
// scheduled evaluation event.
func (h *ComprehensiveCare) Fallback(date time.Time, outcome healthsystem.Outcome) {
	if h.Timing == PhasePostnatal {
		h.M.ApplyRiskOfEarlyPostpartumDeath(h.ID, date)
	}
}

// PostnatalCheck is the maternal postnatal contact: assessment and
// treatment of postpartum complications, screening, supplementation, and
// referral onward where first-line care is not enough.
type PostnatalCheck struct {
	M     *Module
	ID    population.PersonID
	Level healthsystem.FacilityLevel
}

func (h *PostnatalCheck) Subject() population.PersonID         { return h.ID }
func (h *PostnatalCheck) TreatmentID() string                  { return TreatmentPostnatalMaternal }
func (h *PostnatalCheck) Facility() healthsystem.FacilityLevel { return h.Level }

func (h *PostnatalCheck) Footprint() healthsystem.Footprint {
	return healthsystem.Footprint{
		Appts: map[healthsystem.ApptType]int{healthsystem.ApptOutpatient: 1},
	}
}

func (h *PostnatalCheck) Run(enc *healthsystem.Encounter) healthsystem.Footprint {
	m := h.M
	p := m.Pop.Get(h.ID)
	if p == nil || !p.Alive {
		return h.Footprint()
	}
	ep, ok := m.episodeOf(h.ID, "postnatal check")
	if !ok {
		return h.Footprint()
	}
	mt := &p.Maternal
	if !mt.Postpartum {
		slog.Error("postnatal check for woman not postpartum", "person", h.ID)
		return h.Footprint()
	}

	mt.PostnatalChecks++
	ep.WillReceivePNC = PNCNone
	m.Sim.Rec.Record(enc.Date, "postnatal_check", h.ID, map[string]any{
		"facility": enc.Facility.String(),
	})

	m.mgso4(enc, h.ID, PhasePostnatal)
	m.antihypertensives(enc, h.ID, PhasePostnatal)
	m.sepsisCaseManagement(enc, h.ID)
	m.uterotonicsForPPH(enc, h.ID)
	m.manualRemovalOfPlacenta(enc, h.ID)
	if p.Antenatal.Anaemia == population.AnaemiaSevere {
		ep.ReferredForBlood = true
	}
	m.Depression.ScreenAtPostnatalContact(m.Sim, h.ID)
	m.ironFolicAcid(enc, h.ID)

	if ep.ReferredForSurgery || ep.ReferredForBlood {
		level := enc.Facility
		if !level.IsHospital() {
			level = m.hospitalLevel()
		}
		cem := &ComprehensiveCare{M: m, ID: h.ID, Level: level, Timing: PhasePostnatal}
		if err := m.HS.ScheduleHSI(cem, 0, enc.Date, enc.Date.AddDate(0, 0, 1)); err != nil {
			slog.Error("scheduling comprehensive care failed", "person", h.ID, "err", err)
		}
		return h.Footprint()
	}

	m.ApplyRiskOfEarlyPostpartumDeath(h.ID, enc.Date)

	if m.Pop.IsAlive(h.ID) && (mt.SepsisTreated || mt.EclampsiaTreated || !ep.PPHTreatment.Empty()) {
		ward := &InpatientCare{M: m, ID: h.ID, Level: enc.Facility}
		if err := m.HS.ScheduleHSI(ward, 1, enc.Date, enc.Date.AddDate(0, 0, 1)); err != nil {
			slog.Error("scheduling inpatient care failed", "person", h.ID, "err", err)
		}
	}
	return h.Footprint()
}

// Fallback: a postnatal check that never happens leaves the woman's early
// death risk unmitigated, and it resolves here.
func (h *PostnatalCheck) Fallback(date time.Time, outcome healthsystem.Outcome) {
	h.M.ApplyRiskOfEarlyPostpartumDeath(h.ID, date)
}

// InpatientCare is the postnatal ward stay after comprehensive care or a
// treated complication. Its clinical effect is already applied; what it
// models is bed occupancy.
type InpatientCare struct {
	M     *Module
	ID    population.PersonID
	Level healthsystem.FacilityLevel
}

func (h *InpatientCare) Subject() population.PersonID         { return h.ID }
func (h *InpatientCare) TreatmentID() string                  { return TreatmentPostnatalInpatient }
func (h *InpatientCare) Facility() healthsystem.FacilityLevel { return h.Level }

func (h *InpatientCare) Footprint() healthsystem.Footprint {
	return healthsystem.Footprint{
		Appts:   map[healthsystem.ApptType]int{healthsystem.ApptInpatientDay: 1},
		BedDays: map[healthsystem.WardType]int{healthsystem.WardMaternity: 5},
	}
}

func (h *InpatientCare) Run(enc *healthsystem.Encounter) healthsystem.Footprint {
	h.M.Sim.Rec.Record(enc.Date, "postnatal_inpatient", h.ID, map[string]any{
		"facility": enc.Facility.String(),
	})
	return h.Footprint()
}

func (h *InpatientCare) Fallback(date time.Time, outcome healthsystem.Outcome) {
	slog.Debug("inpatient admission not possible", "person", h.ID, "outcome", outcome.String())
}

// EmergencyFirstAppointment is the generic emergency triage contact that
// routes a labour complication arising at home into skilled birth
// attendance.
type EmergencyFirstAppointment struct {
	M     *Module
	ID    population.PersonID
	Level healthsystem.FacilityLevel
}

func (h *EmergencyFirstAppointment) Subject() population.PersonID         { return h.ID }
func (h *EmergencyFirstAppointment) TreatmentID() string                  { return TreatmentEmergencyFirst }
func (h *EmergencyFirstAppointment) Facility() healthsystem.FacilityLevel { return h.Level }

func (h *EmergencyFirstAppointment) Footprint() healthsystem.Footprint {
	return healthsystem.Footprint{
		Appts: map[healthsystem.ApptType]int{healthsystem.ApptEmergency: 1},
	}
}

func (h *EmergencyFirstAppointment) Run(enc *healthsystem.Encounter) healthsystem.Footprint {
	m := h.M
	p := m.Pop.Get(h.ID)
	if p == nil || !p.Alive {
		return h.Footprint()
	}
	ep, ok := m.Episodes.Get(h.ID)
	if !ok || !ep.SoughtCareForComplication || ep.SoughtCarePhase != PhaseIntrapartum {
		return h.Footprint()
	}
	if !p.Maternal.InLabour {
		return h.Footprint()
	}
	sba := &DeliveryCare{M: m, ID: h.ID, Level: enc.Facility}
	if err := m.HS.ScheduleHSI(sba, 0, enc.Date, enc.Date.AddDate(0, 0, 1)); err != nil {
		slog.Error("scheduling delivery care failed", "person", h.ID, "err", err)
	}
	return h.Footprint()
}

func (h *EmergencyFirstAppointment) Fallback(date time.Time, outcome healthsystem.Outcome) {
	slog.Debug("emergency appointment never happened", "person", h.ID, "outcome", outcome.String())
}
