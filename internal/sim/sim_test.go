package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwanda/healthsim/internal/consumables"
	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
)

var day0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestSim(t *testing.T, people int) *Simulation {
	t.Helper()
	p := params.Defaults()
	reg := rng.NewRegistry(1)
	pop := population.NewStore()
	pop.Bootstrap(people, reg.Module("population"), day0)
	cons := consumables.New(p.Consumables.Items, 0, 1, 1, reg.Module("consumables"))
	hs := healthsystem.New(p.HealthSystem, pop, cons, reg.Module("healthsystem"))
	return New(day0, pop, hs, p, reg, nil)
}

type markerEvent struct {
	name string
	log  *[]string
}

func (e *markerEvent) Apply(s *Simulation) {
	*e.log = append(*e.log, e.name)
}

type chainEvent struct {
	log *[]string
}

func (e *chainEvent) Apply(s *Simulation) {
	*e.log = append(*e.log, "chain")
	// Same-day scheduling from inside an event still fires today.
	s.MustSchedule(&markerEvent{name: "chained", log: e.log}, s.Date)
}

func TestEventsFireInDateThenScheduleOrder(t *testing.T) {
	s := newTestSim(t, 1)
	var log []string

	require.NoError(t, s.Schedule(&markerEvent{name: "day1-a", log: &log}, day0.AddDate(0, 0, 1)))
	require.NoError(t, s.Schedule(&markerEvent{name: "day0-a", log: &log}, day0))
	require.NoError(t, s.Schedule(&markerEvent{name: "day0-b", log: &log}, day0))
	require.NoError(t, s.Schedule(&markerEvent{name: "day1-b", log: &log}, day0.AddDate(0, 0, 1)))

	s.Run(2, nil)

	assert.Equal(t, []string{"day0-a", "day0-b", "day1-a", "day1-b"}, log)
	assert.Equal(t, 4, s.Stats().EventsFired)
}

func TestSameDaySchedulingFromEvent(t *testing.T) {
	s := newTestSim(t, 1)
	var log []string
	require.NoError(t, s.Schedule(&chainEvent{log: &log}, day0))

	s.StepDay()

	assert.Equal(t, []string{"chain", "chained"}, log)
}

func TestScheduleRejectsPastDates(t *testing.T) {
	s := newTestSim(t, 1)
	s.Date = day0.AddDate(0, 0, 10)

	var log []string
	assert.Error(t, s.Schedule(&markerEvent{name: "x", log: &log}, day0))
	assert.Panics(t, func() { s.MustSchedule(&markerEvent{name: "x", log: &log}, day0) })
}

type recordingModule struct {
	name   string
	days   []time.Time
	births []population.PersonID
}

func (m *recordingModule) Name() string { return m.name }
func (m *recordingModule) OnDay(s *Simulation, date time.Time) {
	m.days = append(m.days, date)
}
func (m *recordingModule) OnBirth(s *Simulation, mother, child population.PersonID) {
	m.births = append(m.births, child)
}

func TestModulesSeeEveryDayInOrder(t *testing.T) {
	s := newTestSim(t, 1)
	mod := &recordingModule{name: "rec"}
	s.Register(mod)

	s.Run(3, nil)

	require.Len(t, mod.days, 3)
	assert.Equal(t, day0, mod.days[0])
	assert.Equal(t, day0.AddDate(0, 0, 2), mod.days[2])
	assert.Equal(t, day0.AddDate(0, 0, 3), s.Date)
	assert.Equal(t, 3, s.Stats().Days)
}

func TestBirthNotifiesModules(t *testing.T) {
	s := newTestSim(t, 2)
	mod := &recordingModule{name: "rec"}
	s.Register(mod)

	child := s.Birth(0, population.SexFemale)

	require.Len(t, mod.births, 1)
	assert.Equal(t, child, mod.births[0])
	assert.Equal(t, population.PersonID(0), s.Pop.Get(child).MotherID)
	assert.Equal(t, 1, s.Stats().Births)
	assert.Equal(t, 3, s.Pop.Len())
}

func TestRecordDeathUpdatesStats(t *testing.T) {
	s := newTestSim(t, 2)

	s.RecordDeath(0, "test_cause")
	assert.Equal(t, 1, s.Stats().Deaths)
	assert.False(t, s.Pop.IsAlive(0))

	// A second death of the same person is rejected upstream and must not
	// inflate the counter.
	s.RecordDeath(0, "test_cause")
	assert.Equal(t, 1, s.Stats().Deaths)
}

func TestRunStopChannel(t *testing.T) {
	s := newTestSim(t, 1)
	stop := make(chan struct{})
	close(stop)
	assert.Zero(t, s.Run(100, stop))

	ran := s.Run(5, nil)
	assert.Equal(t, 5, ran)
}
