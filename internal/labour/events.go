package labour

import (
	"log/slog"
	"time"

	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
	"github.com/mkwanda/healthsim/internal/sim"
)

// z-scores bounding the central 80% of the birth-weight distribution; drawn
// weights outside them classify as small or large for gestational age.
const sgaZScore = -1.2816

// OnsetEvent begins a labour episode on the woman's due date. It classifies
// the episode, draws fetal growth, picks the delivery setting, and lays out
// the rest of the choreography: the death-and-stillbirth evaluation four
// days out and the birth five days out.
type OnsetEvent struct {
	M  *Module
	ID population.PersonID
}

func (e *OnsetEvent) Apply(s *sim.Simulation) {
	m := e.M
	p := m.Pop.Get(e.ID)
	if p == nil || !p.Alive {
		return
	}
	an := &p.Antenatal
	mt := &p.Maternal
	// The pregnancy may have ended or the due date moved since this event
	// was scheduled.
	if !an.Pregnant || m.inLabour[e.ID] || !sameDay(mt.DueDate, s.Date) {
		return
	}
	ga := an.GestationalAgeWeeks(s.Date)
	if ga < m.P.EarlyPretermMinWeeks {
		slog.Error("labour onset before viability threshold", "person", e.ID, "ga_weeks", ga)
		return
	}

	mt.InLabour = true
	m.inLabour[e.ID] = true
	ep := m.Episodes.Create(e.ID, s.Date)

	switch {
	case ga >= m.P.PostTermMinWeeks:
		ep.State = StatePostTerm
	case ga >= m.P.TermMinWeeks:
		ep.State = StateTerm
	case ga >= m.P.LatePretermMinWeeks:
		ep.State = StateLatePreterm
	default:
		ep.State = StateEarlyPreterm
	}

	m.drawFetalGrowth(ep)

	if an.AdmittedForDelivery != population.AdmitNone {
		ep.Setting = SettingHospital
	} else {
		switch rng.Choice(m.RNG, []float64{
			m.P.WeightDeliverHome,
			m.P.WeightDeliverHealthCentre,
			m.P.WeightDeliverHospital,
		}) {
		case 0:
			ep.Setting = SettingHome
		case 1:
			ep.Setting = SettingHealthCentre
		default:
			ep.Setting = SettingHospital
		}
	}

	s.Rec.Record(s.Date, "labour_onset", e.ID, map[string]any{
		"state":   ep.State.String(),
		"setting": ep.Setting.String(),
	})

	switch ep.Setting {
	case SettingHome:
		s.MustSchedule(&HomeBirthEvent{M: m, ID: e.ID}, s.Date)
	default:
		level := healthsystem.HealthCentre
		if ep.Setting == SettingHospital {
			level = m.hospitalLevel()
		}
		hsi := &DeliveryCare{M: m, ID: e.ID, Level: level}
		if err := m.HS.ScheduleHSI(hsi, 0, s.Date, s.Date.AddDate(0, 0, 2)); err != nil {
			slog.Error("scheduling delivery care failed", "person", e.ID, "err", err)
		}
	}

	s.MustSchedule(&DeathAndStillbirthEvent{M: m, ID: e.ID}, s.Date.AddDate(0, 0, daysToDeathEvaluation))
	s.MustSchedule(&BirthEvent{M: m, ID: e.ID}, s.Date.AddDate(0, 0, daysToBirth))
}

// drawFetalGrowth samples a birth weight around the state-specific mean and
// buckets it absolutely and relative to gestational age.
func (m *Module) drawFetalGrowth(ep *Episode) {
	var mean float64
	switch ep.State {
	case StateEarlyPreterm:
		mean = m.P.BirthWeightMeanEarlyPreterm
	case StateLatePreterm:
		mean = m.P.BirthWeightMeanLatePreterm
	case StatePostTerm:
		mean = m.P.BirthWeightMeanPostTerm
	default:
		mean = m.P.BirthWeightMeanTerm
	}
	z := m.RNG.NormFloat64()
	w := mean + z*m.P.BirthWeightSD
	if w < 500 {
		w = 500
	}
	ep.BirthWeightGrams = w

	switch {
	case w >= 4000:
		ep.BirthWeight = WeightMacrosomia
	case w < 1000:
		ep.BirthWeight = WeightExtremelyLow
	case w < 1500:
		ep.BirthWeight = WeightVeryLow
	case w < 2500:
		ep.BirthWeight = WeightLow
	default:
		ep.BirthWeight = WeightNormal
	}
	switch {
	case z < sgaZScore:
		ep.BirthSize = SizeSmallForGA
	case z > -sgaZScore:
		ep.BirthSize = SizeLargeForGA
	default:
		ep.BirthSize = SizeAverage
	}
}

// HomeBirthEvent runs a delivery outside the health system: the full
// intrapartum complication pass, and for women who develop one, a chance of
// seeking emergency care.
type HomeBirthEvent struct {
	M  *Module
	ID population.PersonID
}

func (e *HomeBirthEvent) Apply(s *sim.Simulation) {
	m := e.M
	p := m.Pop.Get(e.ID)
	if p == nil || !p.Alive {
		return
	}
	ep, ok := m.episodeOf(e.ID, "home birth")
	if !ok {
		return
	}

	m.applyIntrapartumComplications(e.ID, s.Date)
	m.progressHypertension(e.ID, PhaseIntrapartum, s.Date)

	if !m.hasIntrapartumComplication(e.ID) {
		return
	}
	if ep.DeliveryAttendanceCantRun || ep.SoughtCareForComplication {
		// The facility route already failed or is already in motion;
		// there is nowhere further to escalate from home.
		return
	}
	if rng.Bernoulli(m.RNG, m.P.ProbCareseekingForComplication) {
		ep.SoughtCareForComplication = true
		ep.SoughtCarePhase = PhaseIntrapartum
		hsi := &EmergencyFirstAppointment{M: m, ID: e.ID, Level: healthsystem.HealthCentre}
		tomorrow := s.Date.AddDate(0, 0, 1)
		if err := m.HS.ScheduleHSI(hsi, 0, tomorrow, tomorrow.AddDate(0, 0, 1)); err != nil {
			slog.Error("scheduling emergency appointment failed", "person", e.ID, "err", err)
		}
	} else {
		ep.DidntSeekCare = true
	}
}

// hasIntrapartumComplication reports whether any complication needing
// facility care is active.
func (m *Module) hasIntrapartumComplication(id population.PersonID) bool {
	p := m.Pop.Get(id)
	if p == nil {
		return false
	}
	mt := &p.Maternal
	return mt.ObstructedLabour ||
		mt.PlacentalAbruption ||
		mt.AntepartumHaem != population.SeverityNone ||
		mt.SepsisIntrapartum ||
		mt.UterineRupture ||
		p.Antenatal.HTN >= population.SeverePreEclampsia
}

// DeathAndStillbirthEvent fires four days after onset and resolves both the
// intrapartum risk of maternal death and the risk of intrapartum stillbirth.
type DeathAndStillbirthEvent struct {
	M  *Module
	ID population.PersonID
}

func (e *DeathAndStillbirthEvent) Apply(s *sim.Simulation) {
	m := e.M
	p := m.Pop.Get(e.ID)
	if p == nil || !p.Alive {
		return
	}
	ep, ok := m.Episodes.Get(e.ID)
	if !ok {
		// The onset event may have been voided (pregnancy ended); with
		// no episode there is nothing to evaluate.
		return
	}
	if off := daysBetween(ep.OnsetDate, s.Date); off != daysToDeathEvaluation {
		slog.Error("death evaluation fired off choreography",
			"person", e.ID, "offset_days", off)
	}
	an := &p.Antenatal
	mt := &p.Maternal

	cause := m.riskOfDeath(e.ID, PhaseIntrapartum)
	died := cause != ""

	risk := m.P.ProbIntrapartumStillbirth
	risk = adjust(risk, mt.ObstructedLabour, m.P.RRStillbirthObstructed)
	risk = adjust(risk, mt.UterineRupture, m.P.RRStillbirthUterineRupture)
	risk = adjust(risk, mt.AntepartumHaem != population.SeverityNone || an.AntepartumHaem != population.SeverityNone, m.P.RRStillbirthAPH)
	risk = adjust(risk, mt.SepsisIntrapartum, m.P.RRStillbirthSepsis)
	risk = adjust(risk, died, m.P.RRStillbirthMaternalDeath)
	risk = adjust(risk, ep.Mode == population.ModeCaesarean, m.P.TreatmentEffectCSStillbirth)
	stillbirth := rng.Bernoulli(m.RNG, risk)

	if stillbirth && an.MultiplePregnancy {
		if !rng.Bernoulli(m.RNG, m.P.ProbBothTwinsStillbirth) {
			ep.SingleTwinStillbirth = true
			stillbirth = false
		}
	}
	if stillbirth {
		mt.IntrapartumStillbirth = true
		mt.PreviousStillbirth = true
		s.Rec.Record(s.Date, "intrapartum_stillbirth", e.ID, map[string]any{
			"setting": ep.Setting.String(),
		})
	}

	if died {
		ep.DeathInLabour = true
		s.RecordDeath(e.ID, cause)
		if stillbirth {
			// Both mother and fetus are dead; the episode ends here.
			if m.Antenatal != nil {
				m.Antenatal.EndPregnancy(s, e.ID)
			}
			m.concludeEpisode(e.ID)
		}
		return
	}

	// Survivors arrive at the birth event with a clean care-seeking slate
	// and without intrapartum-only treatment effects.
	ep.DidntSeekCare = false
	mt.EclampsiaTreated = false
	mt.HypertensionTreatedIV = false
}

// BirthEvent fires five days after onset: live births are created, the
// postpartum complication pass runs, and the woman either seeks a postnatal
// check or has her death risk applied on the spot.
type BirthEvent struct {
	M  *Module
	ID population.PersonID
}

func (e *BirthEvent) Apply(s *sim.Simulation) {
	m := e.M
	p := m.Pop.Get(e.ID)
	if p == nil {
		return
	}
	ep, ok := m.Episodes.Get(e.ID)
	if !ok {
		// Both mother and fetus died at the evaluation event.
		return
	}
	if off := daysBetween(ep.OnsetDate, s.Date); off != daysToBirth {
		slog.Error("birth event fired off choreography", "person", e.ID, "offset_days", off)
	}
	an := &p.Antenatal
	mt := &p.Maternal
	htnAtBirth := an.HTN

	liveBirthDue := !mt.IntrapartumStillbirth &&
		((p.Alive && an.Pregnant) || (!p.Alive && ep.DeathInLabour))
	if liveBirthDue {
		n := 1
		if an.MultiplePregnancy && !ep.SingleTwinStillbirth {
			n = 2
		}
		for i := 0; i < n; i++ {
			sex := population.SexFemale
			if m.RNG.Float64() < 0.5 {
				sex = population.SexMale
			}
			s.Birth(e.ID, sex)
		}
		mt.MostRecentDeliveryMode = ep.Mode
		s.Rec.Record(s.Date, "delivery", e.ID, map[string]any{
			"mode":    ep.Mode.String(),
			"setting": ep.Setting.String(),
			"twins":   n == 2,
		})
	}

	if m.Antenatal != nil {
		m.Antenatal.EndPregnancy(s, e.ID)
	}

	if !p.Alive {
		m.concludeEpisode(e.ID)
		return
	}

	mt.InLabour = false
	mt.Postpartum = true
	mt.MostRecentDeliveryDate = s.Date
	mt.PostnatalHTN = htnAtBirth

	m.applyPostpartumComplications(e.ID, s.Date)
	m.progressHypertension(e.ID, PhasePostnatal, s.Date)

	hasComps := mt.SepsisPostpartum || mt.PostpartumHaem ||
		mt.PostnatalHTN == population.Eclampsia || ep.NewOnsetSevPreEclampsia

	seekProb := m.P.ProbPostnatalCheck
	if hasComps {
		seekProb = m.P.ProbCareseekingPostnatalComplication
	}
	if !rng.Bernoulli(m.RNG, seekProb) {
		ep.DidntSeekCare = true
		m.ApplyRiskOfEarlyPostpartumDeath(e.ID, s.Date)
		return
	}
	// Complications force an immediate check; otherwise timing is drawn.
	// A late check is still a real contact, but it opens two days after
	// delivery and leaves the early risk window uncovered.
	if !hasComps && !rng.Bernoulli(m.RNG, m.P.ProbEarlyPostnatalCheck) {
		ep.WillReceivePNC = PNCLate
		m.ApplyRiskOfEarlyPostpartumDeath(e.ID, s.Date)
		if m.Pop.IsAlive(e.ID) {
			level := healthsystem.HealthCentre
			if ep.Setting == SettingHospital {
				level = m.hospitalLevel()
			}
			hsi := &PostnatalCheck{M: m, ID: e.ID, Level: level}
			late := s.Date.AddDate(0, 0, 2)
			if err := m.HS.ScheduleHSI(hsi, 1, late, late.AddDate(0, 0, 2)); err != nil {
				slog.Error("scheduling postnatal check failed", "person", e.ID, "err", err)
			}
		}
		return
	}
	ep.WillReceivePNC = PNCEarly
	priority := 1
	if hasComps {
		priority = 0
	}
	level := healthsystem.HealthCentre
	if ep.Setting == SettingHospital {
		level = m.hospitalLevel()
	}
	hsi := &PostnatalCheck{M: m, ID: e.ID, Level: level}
	if err := m.HS.ScheduleHSI(hsi, priority, s.Date, s.Date.AddDate(0, 0, 2)); err != nil {
		slog.Error("scheduling postnatal check failed", "person", e.ID, "err", err)
	}
}

// PostnatalWeekOneEvent closes an episode that survived the early postnatal
// window.
type PostnatalWeekOneEvent struct {
	M  *Module
	ID population.PersonID
}

func (e *PostnatalWeekOneEvent) Apply(s *sim.Simulation) {
	m := e.M
	p := m.Pop.Get(e.ID)
	if p == nil || !p.Alive {
		m.concludeEpisode(e.ID)
		return
	}
	ep, ok := m.Episodes.Get(e.ID)
	if !ok {
		return
	}
	ep.PassedThroughWeekOne = true
	p.Maternal.Postpartum = false
	s.Rec.Record(s.Date, "episode_concluded", e.ID, map[string]any{
		"onset": ep.OnsetDate.Format("2006-01-02"),
	})
	m.concludeEpisode(e.ID)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
