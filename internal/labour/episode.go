package labour

import (
	"time"

	"github.com/mkwanda/healthsim/internal/population"
)

// LabourState classifies the episode by gestational age at onset.
type LabourState uint8

const (
	StateTerm LabourState = iota
	StateEarlyPreterm
	StateLatePreterm
	StatePostTerm
)

func (s LabourState) String() string {
	switch s {
	case StateEarlyPreterm:
		return "early_preterm"
	case StateLatePreterm:
		return "late_preterm"
	case StatePostTerm:
		return "post_term"
	default:
		return "term"
	}
}

// Preterm reports whether the episode began before term.
func (s LabourState) Preterm() bool {
	return s == StateEarlyPreterm || s == StateLatePreterm
}

// DeliverySetting is where the delivery takes place.
type DeliverySetting uint8

const (
	SettingNone DeliverySetting = iota
	SettingHome
	SettingHealthCentre
	SettingHospital
)

func (d DeliverySetting) String() string {
	switch d {
	case SettingHome:
		return "home_birth"
	case SettingHealthCentre:
		return "health_centre"
	case SettingHospital:
		return "hospital"
	default:
		return "none"
	}
}

// BirthWeightCat buckets the drawn birth weight.
type BirthWeightCat uint8

const (
	WeightNormal BirthWeightCat = iota
	WeightLow
	WeightVeryLow
	WeightExtremelyLow
	WeightMacrosomia
)

// BirthSizeCat relates weight to gestational age.
type BirthSizeCat uint8

const (
	SizeAverage BirthSizeCat = iota
	SizeSmallForGA
	SizeLargeForGA
)

// CSIndication is why a caesarean was decided.
type CSIndication uint8

const (
	CSNone CSIndication = iota
	CSObstructedLabour
	CSAntepartumHaem
	CSUterineRupture
	CSSevereHypertension
	CSPreviousScar
	CSOther
)

func (c CSIndication) String() string {
	switch c {
	case CSObstructedLabour:
		return "obstructed_labour"
	case CSAntepartumHaem:
		return "antepartum_haem"
	case CSUterineRupture:
		return "uterine_rupture"
	case CSSevereHypertension:
		return "severe_hypertension"
	case CSPreviousScar:
		return "previous_scar"
	case CSOther:
		return "other"
	default:
		return "none"
	}
}

// Phase distinguishes the intrapartum window from the postnatal one.
type Phase uint8

const (
	PhaseIntrapartum Phase = iota
	PhasePostnatal
)

func (p Phase) String() string {
	if p == PhasePostnatal {
		return "postnatal"
	}
	return "intrapartum"
}

// PNCTiming records whether and when a postnatal check will be sought.
type PNCTiming uint8

const (
	PNCNone PNCTiming = iota
	PNCEarly
	PNCLate
)

// Treatment enumerates postpartum-haemorrhage treatments whose combination
// matters downstream.
type Treatment uint8

const (
	TreatUterotonics Treatment = iota
	TreatManualRemovalPlacenta
	TreatPPHSurgery
	TreatHysterectomy

	treatmentCount
)

// TreatmentSet is a small value-type set over Treatment.
type TreatmentSet struct {
	present [treatmentCount]bool
}

func (t *TreatmentSet) Set(x Treatment)   { t.present[x] = true }
func (t *TreatmentSet) Unset(x Treatment) { t.present[x] = false }
func (t *TreatmentSet) Clear()            { *t = TreatmentSet{} }

func (t TreatmentSet) Has(x Treatment) bool { return t.present[x] }

// HasAll reports whether every given treatment is present.
func (t TreatmentSet) HasAll(xs ...Treatment) bool {
	for _, x := range xs {
		if !t.present[x] {
			return false
		}
	}
	return true
}

// Empty reports whether no treatment is present.
func (t TreatmentSet) Empty() bool {
	return t == TreatmentSet{}
}

// Episode is the per-woman record of one labour episode, from onset until
// death or safe passage beyond the first postnatal week. It exists exactly
// while the woman is in the pipeline; code finding a woman in labour or
// postpartum without an episode is looking at corrupted state.
type Episode struct {
	OnsetDate time.Time

	State   LabourState
	Setting DeliverySetting

	BirthWeightGrams float64
	BirthWeight      BirthWeightCat
	BirthSize        BirthSizeCat

	Mode         population.DeliveryMode
	CSIndication CSIndication

	// Care seeking.
	SoughtCareForComplication bool
	SoughtCarePhase           Phase
	DidntSeekCare             bool
	DeliveryAttendanceCantRun bool

	// Referral flags set at skilled birth attendance.
	ReferredForCS      bool
	ReferredForSurgery bool
	ReferredForBlood   bool

	// Intervention receipts.
	CleanBirthPractices        bool
	AbxForPROMGiven            bool
	CorticosteroidsGiven       bool
	AMTSLGiven                 bool
	NeonatalResusAvailable     bool
	CephalopelvicDisproportion bool
	NewOnsetSevPreEclampsia    bool

	// Postpartum-haemorrhage aetiology and treatment.
	UterineAtony     bool
	RetainedPlacenta bool
	PPHTreatment     TreatmentSet

	SingleTwinStillbirth bool
	DeathInLabour        bool

	WillReceivePNC       PNCTiming
	PassedThroughWeekOne bool

	// Guards exactly-once application of the early postpartum death risk.
	deathRiskApplied bool
}

// EpisodeStore holds the live episodes, keyed by the woman's ID.
//
// Create is called exactly once per episode at labour onset. Delete happens
// at one of three points: the death-and-stillbirth evaluation when both
// mother and fetus die, the birth event when the mother died but the
// newborn's record has been resolved, or the week-one event on safe passage.
type EpisodeStore struct {
	episodes map[population.PersonID]*Episode
}

// NewEpisodeStore returns an empty store.
func NewEpisodeStore() *EpisodeStore {
	return &EpisodeStore{episodes: make(map[population.PersonID]*Episode)}
}

// Create opens an episode for id at the given onset date.
func (s *EpisodeStore) Create(id population.PersonID, onset time.Time) *Episode {
	ep := &Episode{OnsetDate: onset}
	s.episodes[id] = ep
	return ep
}

// Get returns the live episode for id, if any.
func (s *EpisodeStore) Get(id population.PersonID) (*Episode, bool) {
	ep, ok := s.episodes[id]
	return ep, ok
}

// Delete closes the episode for id.
func (s *EpisodeStore) Delete(id population.PersonID) {
	delete(s.episodes, id)
}

// Len is the number of live episodes.
func (s *EpisodeStore) Len() int { return len(s.episodes) }

// Each visits every live episode.
func (s *EpisodeStore) Each(fn func(population.PersonID, *Episode)) {
	for id, ep := range s.episodes {
		fn(id, ep)
	}
}
