package healthsystem

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwanda/healthsim/internal/consumables"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
)

var day0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeHSI records how the arbiter resolved it.
type fakeHSI struct {
	subject population.PersonID
	id      string
	level   FacilityLevel
	fp      Footprint

	runDates []time.Time
	outcomes []Outcome
	// When set, returned from Run instead of the declared footprint.
	actual *Footprint
	onRun  func(*Encounter)
}

func (f *fakeHSI) Subject() population.PersonID { return f.subject }
func (f *fakeHSI) TreatmentID() string          { return f.id }
func (f *fakeHSI) Facility() FacilityLevel      { return f.level }
func (f *fakeHSI) Footprint() Footprint         { return f.fp }

func (f *fakeHSI) Run(enc *Encounter) Footprint {
	f.runDates = append(f.runDates, enc.Date)
	if f.onRun != nil {
		f.onRun(enc)
	}
	if f.actual != nil {
		return *f.actual
	}
	return f.fp
}

func (f *fakeHSI) Fallback(date time.Time, outcome Outcome) {
	f.outcomes = append(f.outcomes, outcome)
}

func newTestArbiter(t *testing.T, cfg params.HealthSystem, people int) (*HealthSystem, *population.Store) {
	t.Helper()
	pop := population.NewStore()
	pop.Bootstrap(people, rand.New(rand.NewSource(1)), day0)
	cons := consumables.New(map[string]float64{}, 0, 1, 1, rand.New(rand.NewSource(2)))
	hs := New(cfg, pop, cons, rand.New(rand.NewSource(3)))
	return hs, pop
}

func outpatientHSI(subject population.PersonID, id string) *fakeHSI {
	return &fakeHSI{
		subject: subject,
		id:      id,
		level:   HealthCentre,
		fp:      Footprint{Appts: map[ApptType]int{ApptOutpatient: 1}},
	}
}

func singleSlotConfig() params.HealthSystem {
	return params.HealthSystem{
		Capacity: map[string]map[string]int{"1a": {"outpatient": 1}},
	}
}

func TestRunsWithinWindow(t *testing.T) {
	hs, _ := newTestArbiter(t, singleSlotConfig(), 2)
	h := outpatientHSI(0, "A")
	require.NoError(t, hs.ScheduleHSI(h, 0, day0, day0.AddDate(0, 0, 2)))

	hs.ProcessDay(day0)

	require.Len(t, h.runDates, 1)
	assert.Equal(t, day0, h.runDates[0])
	assert.Empty(t, h.outcomes)
	assert.Equal(t, 1, hs.Stats().Ran)
	assert.Zero(t, hs.QueueLen())
}

func TestPriorityOrderBeatsSchedulingOrder(t *testing.T) {
	hs, _ := newTestArbiter(t, singleSlotConfig(), 2)
	low := outpatientHSI(0, "low")
	high := outpatientHSI(1, "high")
	require.NoError(t, hs.ScheduleHSI(low, 1, day0, day0.AddDate(0, 0, 5)))
	require.NoError(t, hs.ScheduleHSI(high, 0, day0, day0.AddDate(0, 0, 5)))

	hs.ProcessDay(day0)

	assert.Len(t, high.runDates, 1, "higher priority should take the only slot")
	assert.Empty(t, low.runDates)
	assert.Equal(t, 1, hs.Stats().Deferred)

	// The deferred request gets tomorrow's slot.
	hs.ProcessDay(day0.AddDate(0, 0, 1))
	assert.Len(t, low.runDates, 1)
}

func TestSchedulingOrderBreaksPriorityTies(t *testing.T) {
	hs, _ := newTestArbiter(t, singleSlotConfig(), 2)
	first := outpatientHSI(0, "first")
	second := outpatientHSI(1, "second")
	require.NoError(t, hs.ScheduleHSI(first, 0, day0, day0.AddDate(0, 0, 5)))
	require.NoError(t, hs.ScheduleHSI(second, 0, day0, day0.AddDate(0, 0, 5)))

	hs.ProcessDay(day0)

	assert.Len(t, first.runDates, 1)
	assert.Empty(t, second.runDates)
}

func TestDidNotRunAfterOpenWindowCloses(t *testing.T) {
	cfg := params.HealthSystem{
		Capacity: map[string]map[string]int{"1a": {"outpatient": 0}},
	}
	hs, _ := newTestArbiter(t, cfg, 1)
	h := outpatientHSI(0, "A")
	require.NoError(t, hs.ScheduleHSI(h, 0, day0, day0.AddDate(0, 0, 1)))

	hs.ProcessDay(day0)
	assert.Empty(t, h.outcomes, "still within window, stays queued")
	assert.Equal(t, 1, hs.QueueLen())

	hs.ProcessDay(day0.AddDate(0, 0, 1))

	require.Len(t, h.outcomes, 1)
	assert.Equal(t, OutcomeDidNotRun, h.outcomes[0])
	assert.Empty(t, h.runDates)
	assert.Zero(t, hs.QueueLen())
	assert.Equal(t, 1, hs.Stats().DidNotRun)
}

func TestNeverRanWhenWindowWasSkipped(t *testing.T) {
	hs, _ := newTestArbiter(t, singleSlotConfig(), 1)
	h := outpatientHSI(0, "A")
	require.NoError(t, hs.ScheduleHSI(h, 0, day0.AddDate(0, 0, 2), day0.AddDate(0, 0, 3)))

	// The sweep next runs after the whole window has passed.
	hs.ProcessDay(day0.AddDate(0, 0, 5))

	require.Len(t, h.outcomes, 1)
	assert.Equal(t, OutcomeNeverRan, h.outcomes[0])
	assert.Equal(t, 1, hs.Stats().NeverRan)
}

func TestSingleDayWindowResolvesSameDay(t *testing.T) {
	cfg := params.HealthSystem{
		Capacity: map[string]map[string]int{"1a": {"outpatient": 0}},
	}
	hs, _ := newTestArbiter(t, cfg, 1)
	h := outpatientHSI(0, "A")
	require.NoError(t, hs.ScheduleHSI(h, 0, day0, day0))

	hs.ProcessDay(day0)

	// topen == tclose == today: the request must not silently persist.
	require.Len(t, h.outcomes, 1)
	assert.Equal(t, OutcomeDidNotRun, h.outcomes[0])
	assert.Zero(t, hs.QueueLen())
}

func TestRejectsInvertedWindow(t *testing.T) {
	hs, _ := newTestArbiter(t, singleSlotConfig(), 1)
	h := outpatientHSI(0, "A")
	assert.Error(t, hs.ScheduleHSI(h, 0, day0.AddDate(0, 0, 1), day0))
	assert.Zero(t, hs.QueueLen())
}

func TestDeadSubjectDroppedSilently(t *testing.T) {
	hs, pop := newTestArbiter(t, singleSlotConfig(), 2)
	require.NoError(t, pop.RecordDeath(0, "test", day0))

	// Dead at scheduling time: never enters the queue.
	h := outpatientHSI(0, "A")
	require.NoError(t, hs.ScheduleHSI(h, 0, day0, day0.AddDate(0, 0, 2)))
	assert.Zero(t, hs.QueueLen())
	assert.Equal(t, 1, hs.Stats().DroppedDead)

	// Dead while queued: dropped by the sweep without a fallback.
	h2 := outpatientHSI(1, "B")
	require.NoError(t, hs.ScheduleHSI(h2, 0, day0, day0.AddDate(0, 0, 2)))
	require.NoError(t, pop.RecordDeath(1, "test", day0))
	hs.ProcessDay(day0)

	assert.Empty(t, h2.runDates)
	assert.Empty(t, h2.outcomes)
	assert.Equal(t, 2, hs.Stats().DroppedDead)
}

func TestDisabledTreatmentResolvesNotAvailable(t *testing.T) {
	cfg := singleSlotConfig()
	cfg.DisabledTreatments = []string{"switched_off"}
	hs, _ := newTestArbiter(t, cfg, 1)

	h := outpatientHSI(0, "switched_off")
	require.NoError(t, hs.ScheduleHSI(h, 0, day0, day0.AddDate(0, 0, 2)))
	hs.ProcessDay(day0)

	require.Len(t, h.outcomes, 1)
	assert.Equal(t, OutcomeNotAvailable, h.outcomes[0])
	assert.Empty(t, h.runDates)
	assert.Equal(t, 1, hs.Stats().NotAvailable)
}

func TestBedSpanIsAllOrNothing(t *testing.T) {
	cfg := params.HealthSystem{
		Capacity: map[string]map[string]int{"1a": {"outpatient": 5}},
		Beds:     map[string]map[string]int{"1a": {"maternity": 1}},
	}
	hs, _ := newTestArbiter(t, cfg, 2)

	// Occupy the only bed two days from now, so a three-day stay starting
	// today cannot fit even though today's bed is free.
	hs.Beds().Admit(day0.AddDate(0, 0, 2), HealthCentre, WardMaternity, 1)

	h := &fakeHSI{
		subject: 0,
		id:      "inpatient",
		level:   HealthCentre,
		fp: Footprint{
			Appts:   map[ApptType]int{ApptOutpatient: 1},
			BedDays: map[WardType]int{WardMaternity: 3},
		},
	}
	require.NoError(t, hs.ScheduleHSI(h, 0, day0, day0.AddDate(0, 0, 5)))
	hs.ProcessDay(day0)

	assert.Empty(t, h.runDates)
	assert.Equal(t, 1, hs.Beds().FreeOn(day0, HealthCentre, WardMaternity),
		"a stay that cannot fit must not book partial days")

	// A stay that ends before the blocked day goes through.
	h.fp.BedDays[WardMaternity] = 2
	hs.ProcessDay(day0)
	require.Len(t, h.runDates, 1)
	assert.Zero(t, hs.Beds().FreeOn(day0, HealthCentre, WardMaternity))
	assert.Zero(t, hs.Beds().FreeOn(day0.AddDate(0, 0, 1), HealthCentre, WardMaternity))
}

func TestReconcileReturnsUnusedSlots(t *testing.T) {
	cfg := params.HealthSystem{
		Capacity: map[string]map[string]int{"1a": {"outpatient": 1, "emergency": 1}},
	}
	hs, _ := newTestArbiter(t, cfg, 3)

	// The first interaction declares an outpatient slot but actually uses an
	// emergency one, so a second outpatient request can still run today.
	swap := outpatientHSI(0, "swap")
	swap.actual = &Footprint{Appts: map[ApptType]int{ApptEmergency: 1}}
	second := outpatientHSI(1, "second")
	require.NoError(t, hs.ScheduleHSI(swap, 0, day0, day0.AddDate(0, 0, 2)))
	require.NoError(t, hs.ScheduleHSI(second, 0, day0, day0.AddDate(0, 0, 2)))

	hs.ProcessDay(day0)

	assert.Len(t, swap.runDates, 1)
	assert.Len(t, second.runDates, 1)
	assert.Equal(t, 2, hs.Stats().Ran)
}

func TestScheduleFromWithinRunSurvivesSweep(t *testing.T) {
	hs, _ := newTestArbiter(t, singleSlotConfig(), 2)

	followUp := outpatientHSI(1, "follow_up")
	first := outpatientHSI(0, "first")
	first.onRun = func(enc *Encounter) {
		require.NoError(t, hs.ScheduleHSI(followUp, 0, enc.Date, enc.Date.AddDate(0, 0, 1)))
	}
	require.NoError(t, hs.ScheduleHSI(first, 0, day0, day0.AddDate(0, 0, 1)))

	hs.ProcessDay(day0)
	require.Len(t, first.runDates, 1)
	assert.Equal(t, 1, hs.QueueLen(), "referral made during the sweep must stay queued")

	hs.ProcessDay(day0.AddDate(0, 0, 1))
	assert.Len(t, followUp.runDates, 1)
}

func TestSqueezeReflectsExcessDemand(t *testing.T) {
	hs, _ := newTestArbiter(t, singleSlotConfig(), 4)

	var squeezes []float64
	for i := 0; i < 3; i++ {
		h := outpatientHSI(population.PersonID(i), "A")
		h.onRun = func(enc *Encounter) { squeezes = append(squeezes, enc.Squeeze) }
		require.NoError(t, hs.ScheduleHSI(h, 0, day0, day0.AddDate(0, 0, 5)))
	}

	hs.ProcessDay(day0)

	// Three requests against one slot: demand/capacity - 1 = 2.
	require.Len(t, squeezes, 1)
	assert.InDelta(t, 2.0, squeezes[0], 1e-9)
}
