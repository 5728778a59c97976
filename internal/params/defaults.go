package params

// Defaults returns the compiled-in parameter set. Values are plausible
// placeholders for calibration, not published estimates.
func Defaults() *Params {
	return &Params{
		Pregnancy: Pregnancy{
			FertileAgeMin: 15,
			FertileAgeMax: 49,

			ProbConceptionPerMonth: 0.016,
			ProbMultiples:          0.014,

			ProbPROM:               0.05,
			ProbChorioamnionitis:   0.02,
			RRChorioPROM:           3.0,
			ProbAntenatalAbruption: 0.01,

			ProbGestationalHTN:     0.08,
			ProbMildPreEclampsia:   0.04,
			ProbSeverePreEclampsia: 0.01,

			ProbAnaemia:         0.35,
			WeightAnaemiaMild:   0.55,
			WeightAnaemiaMod:    0.35,
			WeightAnaemiaSevere: 0.10,

			ProbAdmitForCaesarean: 0.02,
			ProbAdmitForAVD:       0.005,
			ProbAdmitForInduction: 0.015,
		},
		Labour: Labour{
			EarlyPretermMinWeeks: 24,
			LatePretermMinWeeks:  34,
			TermMinWeeks:         37,
			PostTermMinWeeks:     42,

			ProbPostTermLabour: 0.07,

			BirthWeightMeanTerm:         3200,
			BirthWeightMeanEarlyPreterm: 1700,
			BirthWeightMeanLatePreterm:  2600,
			BirthWeightMeanPostTerm:     3500,
			BirthWeightSD:               450,

			WeightDeliverHome:         0.30,
			WeightDeliverHealthCentre: 0.45,
			WeightDeliverHospital:     0.25,

			ProbObstructionCPD:         0.025,
			RRObstructionMacrosomia:    2.5,
			ProbObstructionMalposition: 0.015,
			ProbObstructionOther:       0.005,
			ProbPlacentalAbruption:     0.005,
			RRAbruptionHypertension:    2.0,
			ProbAntepartumHaem:         0.01,
			RRAPHAbruption:             8.0,
			ProbAPHSevere:              0.4,
			ProbSepsisChorioamnionitis: 0.02,
			RRSepsisPROM:               2.5,
			ProbUterineRupture:         0.002,
			RRRupturePreviousCS:        4.0,
			RRRuptureObstructed:        3.0,

			ProbSepsisEndometritis:    0.01,
			ProbSepsisUrinaryTract:    0.005,
			ProbSepsisSkinSoftTissue:  0.005,
			ProbPPHUterineAtony:       0.035,
			RRPPHAtonyMacrosomia:      1.8,
			RRPPHAtonyMultiples:       2.2,
			ProbPPHRetainedPlacenta:   0.01,
			ProbPPHOther:              0.005,
			TreatmentEffectAMTSLOnPPH: 0.35,

			ProbSevereGestHTNFromGestHTN:      0.10,
			ProbSPEFromSevereGestHTN:          0.12,
			ProbSPEFromMildPE:                 0.10,
			ProbEclampsiaFromSPE:              0.06,
			TreatmentEffectAntiHTNProgression: 0.5,

			CFRUterineRupture:      0.18,
			CFRAntepartumHaem:      0.10,
			RRAPHDeathMildModerate: 0.4,
			CFRSepsisIntrapartum:   0.08,
			CFRSepsisPostpartum:    0.07,
			CFREclampsia:           0.15,
			CFRSeverePreEclampsia:  0.02,
			CFRPostpartumHaem:      0.12,

			TreatmentEffectCleanBirthSepsis: 0.7,
			TreatmentEffectAbxPROMSepsis:    0.5,
			TreatmentEffectUterotonicsPPH:   0.5,
			TreatmentEffectSepsisAbx:        0.3,
			TreatmentEffectMgSO4Eclampsia:   0.4,
			TreatmentEffectURRepair:         0.45,
			TreatmentEffectBloodAPH:         0.5,
			TreatmentEffectBloodPPH:         0.4,
			TreatmentEffectPPHSurgery:       0.55,
			TreatmentEffectManualRemovalPPH: 0.6,

			ProbIntrapartumStillbirth:   0.008,
			RRStillbirthObstructed:      3.0,
			RRStillbirthUterineRupture:  6.0,
			RRStillbirthAPH:             4.0,
			RRStillbirthSepsis:          2.5,
			RRStillbirthMaternalDeath:   5.0,
			TreatmentEffectCSStillbirth: 0.3,
			ProbBothTwinsStillbirth:     0.4,

			ProbCareseekingForComplication:       0.7,
			ProbCareseekingPostnatalComplication: 0.65,
			ProbPostnatalCheck:                   0.5,
			ProbEarlyPostnatalCheck:              0.7,

			HCWAvailIVAbx:          0.85,
			HCWAvailUterotonic:     0.9,
			HCWAvailAVD:            0.6,
			HCWAvailManualRemoval:  0.7,
			HCWAvailAnticonvulsant: 0.8,
			HCWAvailResuscitation:  0.75,
			CompetenceHealthCentre: 0.7,
			CompetenceHospital:     0.85,

			ProbSuccessfulAVD:           0.8,
			ProbHaemostasisUterotonics:  0.75,
			ProbSuccessfulManualRemoval: 0.8,
			ProbSuccessfulPPHSurgery:    0.85,
			ProbSuccessfulURRepair:      0.75,
			ProbResolveAnaemiaBlood:     0.8,

			ProbCaesareanOtherIndication: 0.01,
			ProbCSPreviousScar:           0.5,
			ProbAVDOtherIndication:       0.01,
		},
		HealthSystem: HealthSystem{
			Capacity: map[string]map[string]int{
				"1a": {
					"normal_delivery":      8,
					"complicated_delivery": 3,
					"outpatient":           60,
					"emergency":            20,
				},
				"1b": {
					"normal_delivery":      12,
					"complicated_delivery": 6,
					"caesarean":            3,
					"major_surgery":        2,
					"outpatient":           120,
					"emergency":            40,
					"inpatient_day":        60,
				},
				"2": {
					"normal_delivery":      20,
					"complicated_delivery": 10,
					"caesarean":            6,
					"major_surgery":        5,
					"outpatient":           250,
					"emergency":            80,
					"inpatient_day":        150,
				},
			},
			Beds: map[string]map[string]int{
				"1a": {"maternity": 8},
				"1b": {"maternity": 20, "general": 40},
				"2":  {"maternity": 45, "general": 120},
			},
		},
		Consumables: Consumables{
			Items: map[string]float64{
				"delivery_kit":           0.85,
				"abx_iv":                 0.75,
				"abx_oral":               0.85,
				"corticosteroids":        0.6,
				"mgso4":                  0.7,
				"antihypertensives_iv":   0.65,
				"antihypertensives_oral": 0.8,
				"uterotonics":            0.8,
				"avd_kit":                0.55,
				"caesarean_kit":          0.7,
				"surgical_kit":           0.7,
				"blood_units":            0.6,
				"iron_folic_acid":        0.85,
				"neonatal_resus_kit":     0.65,
			},
			Drift:              0.15,
			ForcedAvailability: -1,
		},
	}
}
