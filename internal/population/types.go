// Package population holds the individual-level data frame of the simulation.
// One record per person, created at bootstrap or at birth and never physically
// deleted. Demographic columns are owned by the Store itself; the Antenatal
// and Maternal column blocks are owned by the pregnancy and labour modules
// respectively, and other code treats them as read-only.
package population

import "time"

// PersonID indexes a row in the Store. IDs are dense and never reused.
type PersonID int

// NoPerson marks an absent person reference, e.g. the mother of a
// bootstrap individual.
const NoPerson PersonID = -1

// Sex of an individual.
type Sex uint8

const (
	SexFemale Sex = iota
	SexMale
)

func (s Sex) String() string {
	if s == SexMale {
		return "M"
	}
	return "F"
}

// Severity grades a haemorrhage.
type Severity uint8

const (
	SeverityNone Severity = iota
	SeverityMildModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityMildModerate:
		return "mild_moderate"
	case SeveritySevere:
		return "severe"
	default:
		return "none"
	}
}

// HTNDisorder is the hypertensive-disorder ladder of pregnancy. Ordering
// matters: progression only ever moves to a higher value.
type HTNDisorder uint8

const (
	HTNNone HTNDisorder = iota
	GestationalHypertension
	SevereGestationalHypertension
	MildPreEclampsia
	SeverePreEclampsia
	Eclampsia
)

func (h HTNDisorder) String() string {
	switch h {
	case GestationalHypertension:
		return "gest_htn"
	case SevereGestationalHypertension:
		return "severe_gest_htn"
	case MildPreEclampsia:
		return "mild_pre_eclamp"
	case SeverePreEclampsia:
		return "severe_pre_eclamp"
	case Eclampsia:
		return "eclampsia"
	default:
		return "none"
	}
}

// AnaemiaLevel grades maternal anaemia.
type AnaemiaLevel uint8

const (
	AnaemiaNone AnaemiaLevel = iota
	AnaemiaMild
	AnaemiaModerate
	AnaemiaSevere
)

// AdmissionReason records why a woman was admitted antenatally to await
// delivery, which constrains her delivery setting and mode.
type AdmissionReason uint8

const (
	AdmitNone AdmissionReason = iota
	AdmitCaesareanNow
	AdmitCaesareanFuture
	AdmitAssistedDeliveryNow
	AdmitInduction
)

// DeliveryMode is how the most recent delivery concluded.
type DeliveryMode uint8

const (
	ModeVaginal DeliveryMode = iota
	ModeInstrumental
	ModeCaesarean
)

func (m DeliveryMode) String() string {
	switch m {
	case ModeInstrumental:
		return "instrumental"
	case ModeCaesarean:
		return "caesarean_section"
	default:
		return "vaginal_delivery"
	}
}

// Antenatal is the pregnancy-owned column block. Only the pregnancy module
// writes here, except where noted.
type Antenatal struct {
	Pregnant          bool
	ConceptionDate    time.Time
	MultiplePregnancy bool

	// Antenatal complication state carried into labour.
	MembranesRuptured   bool // premature rupture of membranes
	Chorioamnionitis    bool
	PlacentalAbruption  bool
	AntepartumHaem      Severity
	HTN                 HTNDisorder
	Anaemia             AnaemiaLevel
	OnAntihypertensives bool
	ReceivedMgSO4       bool
	ReceivedAbxForPROM  bool
	AdmittedForDelivery AdmissionReason
}

// GestationalAgeWeeks derives completed weeks of gestation at the given date.
// Returns 0 when not pregnant.
func (a *Antenatal) GestationalAgeWeeks(on time.Time) int {
	if !a.Pregnant {
		return 0
	}
	days := int(on.Sub(a.ConceptionDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 7
}

// Maternal is the labour-owned column block: persistent labour history and
// the complication flags active during the current episode.
type Maternal struct {
	DueDate               time.Time
	InLabour              bool
	Parity                int
	PreviousCaesareans    int
	PreviousStillbirth    bool
	IntrapartumStillbirth bool

	// Complications of the current episode.
	ObstructedLabour       bool
	PlacentalAbruption     bool
	AntepartumHaem         Severity
	UterineRupture         bool
	UterineRuptureRepaired bool
	SepsisIntrapartum      bool
	SepsisPostpartum       bool
	PostpartumHaem         bool
	Hysterectomy           bool

	// Hypertension after birth is tracked separately from the antenatal
	// column; it is seeded from it at delivery.
	PostnatalHTN HTNDisorder

	// Treatment flags. Kept on death for cause attribution, reset on
	// survival of the early postnatal window.
	SepsisTreated             bool
	EclampsiaTreated          bool
	SeverePreEclampsiaTreated bool
	HypertensionTreatedIV     bool
	OnAntihypertensives       bool
	ReceivedBloodTransfusion  bool

	Postpartum             bool
	MostRecentDeliveryDate time.Time
	MostRecentDeliveryMode DeliveryMode
	PostnatalChecks        int
	IronFolicAcidPostnatal bool
}

// Person is one row of the population frame.
type Person struct {
	ID          PersonID
	Sex         Sex
	DateOfBirth time.Time
	MotherID    PersonID

	Alive        bool
	DateOfDeath  time.Time
	CauseOfDeath string

	Antenatal Antenatal
	Maternal  Maternal
}

// AgeYears is completed years of age at the given date.
func (p *Person) AgeYears(on time.Time) int {
	years := on.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(on) {
		years--
	}
	return years
}
