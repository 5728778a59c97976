// Package params holds every clinical probability, relative risk, and
// capacity figure the simulation consumes. Core logic never hardcodes these:
// modules receive their parameter block at construction. Defaults compile in;
// a YAML file can overlay any subset of them.
package params

// Params is the full parameter set for one run.
type Params struct {
	Pregnancy    Pregnancy    `yaml:"pregnancy"`
	Labour       Labour       `yaml:"labour"`
	HealthSystem HealthSystem `yaml:"health_system"`
	Consumables  Consumables  `yaml:"consumables"`
}

// Pregnancy drives conception and the antenatal state women carry into
// labour.
type Pregnancy struct {
	FertileAgeMin int `yaml:"fertile_age_min"`
	FertileAgeMax int `yaml:"fertile_age_max"`

	ProbConceptionPerMonth float64 `yaml:"prob_conception_per_month"`
	ProbMultiples          float64 `yaml:"prob_multiples"`

	// Antenatal complication onset, drawn once per pregnancy.
	ProbPROM               float64 `yaml:"prob_prom"`
	ProbChorioamnionitis   float64 `yaml:"prob_chorioamnionitis"`
	RRChorioPROM           float64 `yaml:"rr_chorio_prom"`
	ProbAntenatalAbruption float64 `yaml:"prob_antenatal_abruption"`

	// Hypertensive-disorder category weights (none + the three onset
	// states); renormalised at draw time.
	ProbGestationalHTN     float64 `yaml:"prob_gestational_htn"`
	ProbMildPreEclampsia   float64 `yaml:"prob_mild_pre_eclampsia"`
	ProbSeverePreEclampsia float64 `yaml:"prob_severe_pre_eclampsia"`

	// Anaemia severity weights, conditional on having anaemia.
	ProbAnaemia         float64 `yaml:"prob_anaemia"`
	WeightAnaemiaMild   float64 `yaml:"weight_anaemia_mild"`
	WeightAnaemiaMod    float64 `yaml:"weight_anaemia_moderate"`
	WeightAnaemiaSevere float64 `yaml:"weight_anaemia_severe"`

	// Antenatal admission to await delivery.
	ProbAdmitForCaesarean float64 `yaml:"prob_admit_for_caesarean"`
	ProbAdmitForAVD       float64 `yaml:"prob_admit_for_avd"`
	ProbAdmitForInduction float64 `yaml:"prob_admit_for_induction"`
}

// Labour parameterises the intrapartum and immediate-postnatal pipeline.
type Labour struct {
	// Gestational-age classification bounds, completed weeks.
	EarlyPretermMinWeeks int `yaml:"early_preterm_min_weeks"`
	LatePretermMinWeeks  int `yaml:"late_preterm_min_weeks"`
	TermMinWeeks         int `yaml:"term_min_weeks"`
	PostTermMinWeeks     int `yaml:"post_term_min_weeks"`

	// Due-date scheduling.
	ProbPostTermLabour float64 `yaml:"prob_post_term_labour"`

	// Birth weight, grams.
	BirthWeightMeanTerm         float64 `yaml:"birth_weight_mean_term"`
	BirthWeightMeanEarlyPreterm float64 `yaml:"birth_weight_mean_early_preterm"`
	BirthWeightMeanLatePreterm  float64 `yaml:"birth_weight_mean_late_preterm"`
	BirthWeightMeanPostTerm     float64 `yaml:"birth_weight_mean_post_term"`
	BirthWeightSD               float64 `yaml:"birth_weight_sd"`

	// Delivery-setting weights, renormalised. Antenatal admission forces
	// hospital regardless.
	WeightDeliverHome         float64 `yaml:"weight_deliver_home"`
	WeightDeliverHealthCentre float64 `yaml:"weight_deliver_health_centre"`
	WeightDeliverHospital     float64 `yaml:"weight_deliver_hospital"`

	// Intrapartum complication onset.
	ProbObstructionCPD         float64 `yaml:"prob_obstruction_cpd"`
	RRObstructionMacrosomia    float64 `yaml:"rr_obstruction_macrosomia"`
	ProbObstructionMalposition float64 `yaml:"prob_obstruction_malposition"`
	ProbObstructionOther       float64 `yaml:"prob_obstruction_other"`
	ProbPlacentalAbruption     float64 `yaml:"prob_placental_abruption"`
	RRAbruptionHypertension    float64 `yaml:"rr_abruption_hypertension"`
	ProbAntepartumHaem         float64 `yaml:"prob_antepartum_haem"`
	RRAPHAbruption             float64 `yaml:"rr_aph_abruption"`
	ProbAPHSevere              float64 `yaml:"prob_aph_severe"`
	ProbSepsisChorioamnionitis float64 `yaml:"prob_sepsis_chorioamnionitis"`
	RRSepsisPROM               float64 `yaml:"rr_sepsis_prom"`
	ProbUterineRupture         float64 `yaml:"prob_uterine_rupture"`
	RRRupturePreviousCS        float64 `yaml:"rr_rupture_previous_cs"`
	RRRuptureObstructed        float64 `yaml:"rr_rupture_obstructed"`

	// Postpartum complication onset.
	ProbSepsisEndometritis    float64 `yaml:"prob_sepsis_endometritis"`
	ProbSepsisUrinaryTract    float64 `yaml:"prob_sepsis_urinary_tract"`
	ProbSepsisSkinSoftTissue  float64 `yaml:"prob_sepsis_skin_soft_tissue"`
	ProbPPHUterineAtony       float64 `yaml:"prob_pph_uterine_atony"`
	RRPPHAtonyMacrosomia      float64 `yaml:"rr_pph_atony_macrosomia"`
	RRPPHAtonyMultiples       float64 `yaml:"rr_pph_atony_multiples"`
	ProbPPHRetainedPlacenta   float64 `yaml:"prob_pph_retained_placenta"`
	ProbPPHOther              float64 `yaml:"prob_pph_other"`
	TreatmentEffectAMTSLOnPPH float64 `yaml:"treatment_effect_amtsl_on_pph"`

	// Hypertensive-disorder progression.
	ProbSevereGestHTNFromGestHTN      float64 `yaml:"prob_severe_gest_htn_from_gest_htn"`
	ProbSPEFromSevereGestHTN          float64 `yaml:"prob_spe_from_severe_gest_htn"`
	ProbSPEFromMildPE                 float64 `yaml:"prob_spe_from_mild_pe"`
	ProbEclampsiaFromSPE              float64 `yaml:"prob_eclampsia_from_spe"`
	TreatmentEffectAntiHTNProgression float64 `yaml:"treatment_effect_anti_htn_progression"`

	// Case fatality.
	CFRUterineRupture      float64 `yaml:"cfr_uterine_rupture"`
	CFRAntepartumHaem      float64 `yaml:"cfr_antepartum_haem"`
	RRAPHDeathMildModerate float64 `yaml:"rr_aph_death_mild_moderate"`
	CFRSepsisIntrapartum   float64 `yaml:"cfr_sepsis_intrapartum"`
	CFRSepsisPostpartum    float64 `yaml:"cfr_sepsis_postpartum"`
	CFREclampsia           float64 `yaml:"cfr_eclampsia"`
	CFRSeverePreEclampsia  float64 `yaml:"cfr_severe_pre_eclampsia"`
	CFRPostpartumHaem      float64 `yaml:"cfr_postpartum_haem"`

	// Multiplicative treatment effects on case fatality (0..1, lower is
	// better).
	TreatmentEffectCleanBirthSepsis float64 `yaml:"treatment_effect_clean_birth_sepsis"`
	TreatmentEffectAbxPROMSepsis    float64 `yaml:"treatment_effect_abx_prom_sepsis"`
	TreatmentEffectUterotonicsPPH   float64 `yaml:"treatment_effect_uterotonics_pph"`
	TreatmentEffectSepsisAbx        float64 `yaml:"treatment_effect_sepsis_abx"`
	TreatmentEffectMgSO4Eclampsia   float64 `yaml:"treatment_effect_mgso4_eclampsia"`
	TreatmentEffectURRepair         float64 `yaml:"treatment_effect_ur_repair"`
	TreatmentEffectBloodAPH         float64 `yaml:"treatment_effect_blood_aph"`
	TreatmentEffectBloodPPH         float64 `yaml:"treatment_effect_blood_pph"`
	TreatmentEffectPPHSurgery       float64 `yaml:"treatment_effect_pph_surgery"`
	TreatmentEffectManualRemovalPPH float64 `yaml:"treatment_effect_manual_removal_pph"`

	// Intrapartum stillbirth.
	ProbIntrapartumStillbirth   float64 `yaml:"prob_intrapartum_stillbirth"`
	RRStillbirthObstructed      float64 `yaml:"rr_stillbirth_obstructed"`
	RRStillbirthUterineRupture  float64 `yaml:"rr_stillbirth_uterine_rupture"`
	RRStillbirthAPH             float64 `yaml:"rr_stillbirth_aph"`
	RRStillbirthSepsis          float64 `yaml:"rr_stillbirth_sepsis"`
	RRStillbirthMaternalDeath   float64 `yaml:"rr_stillbirth_maternal_death"`
	TreatmentEffectCSStillbirth float64 `yaml:"treatment_effect_cs_stillbirth"`
	ProbBothTwinsStillbirth     float64 `yaml:"prob_both_twins_stillbirth"`

	// Care seeking.
	ProbCareseekingForComplication       float64 `yaml:"prob_careseeking_for_complication"`
	ProbCareseekingPostnatalComplication float64 `yaml:"prob_careseeking_postnatal_complication"`
	ProbPostnatalCheck                   float64 `yaml:"prob_postnatal_check"`
	ProbEarlyPostnatalCheck              float64 `yaml:"prob_early_postnatal_check"`

	// Staffing layer of the delivery gate: probability the cadre needed
	// for each intervention is on shift, and mean clinical competence by
	// facility tier.
	HCWAvailIVAbx          float64 `yaml:"hcw_avail_iv_abx"`
	HCWAvailUterotonic     float64 `yaml:"hcw_avail_uterotonic"`
	HCWAvailAVD            float64 `yaml:"hcw_avail_avd"`
	HCWAvailManualRemoval  float64 `yaml:"hcw_avail_manual_removal"`
	HCWAvailAnticonvulsant float64 `yaml:"hcw_avail_anticonvulsant"`
	HCWAvailResuscitation  float64 `yaml:"hcw_avail_resuscitation"`
	CompetenceHealthCentre float64 `yaml:"competence_health_centre"`
	CompetenceHospital     float64 `yaml:"competence_hospital"`

	// Intervention success.
	ProbSuccessfulAVD           float64 `yaml:"prob_successful_avd"`
	ProbHaemostasisUterotonics  float64 `yaml:"prob_haemostasis_uterotonics"`
	ProbSuccessfulManualRemoval float64 `yaml:"prob_successful_manual_removal"`
	ProbSuccessfulPPHSurgery    float64 `yaml:"prob_successful_pph_surgery"`
	ProbSuccessfulURRepair      float64 `yaml:"prob_successful_ur_repair"`
	ProbResolveAnaemiaBlood     float64 `yaml:"prob_resolve_anaemia_blood"`

	// Residual indications picked up at skilled birth attendance.
	ProbCaesareanOtherIndication float64 `yaml:"prob_caesarean_other_indication"`
	ProbCSPreviousScar           float64 `yaml:"prob_cs_previous_scar"`
	ProbAVDOtherIndication       float64 `yaml:"prob_avd_other_indication"`
}

// HealthSystem configures the resource arbiter: daily appointment capacity
// and bed stock per facility tier, plus treatment IDs switched off for the
// run.
type HealthSystem struct {
	// capacity[level][appointment type] -> slots per day.
	Capacity map[string]map[string]int `yaml:"capacity"`
	// beds[level][ward type] -> beds.
	Beds map[string]map[string]int `yaml:"beds"`
	// Treatment IDs excluded from service availability. Scheduling one of
	// these resolves immediately as not available.
	DisabledTreatments []string `yaml:"disabled_treatments"`
}

// Consumables configures the item ledger.
type Consumables struct {
	// Base availability probability per item code.
	Items map[string]float64 `yaml:"items"`
	// Amplitude of the day-to-day availability drift.
	Drift float64 `yaml:"drift"`
	// When in [0,1], overrides every item's availability (analysis runs);
	// negative means no override.
	ForcedAvailability float64 `yaml:"forced_availability"`
}
