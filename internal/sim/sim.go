// Package sim owns simulated time. The clock advances in whole days; within
// a day, generic events fire at their exact date in stable scheduling order,
// module day hooks run, and the health system sweep resolves resource-gated
// interactions last. Nothing in here is concurrent: determinism comes from a
// single thread and seeded randomness.
package sim

import (
	"container/heap"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
)

// Event is a unit of simulation work bound to a date.
type Event interface {
	Apply(s *Simulation)
}

// Module is a registered subsystem. OnDay runs every simulated day before
// queued events; OnBirth is notified for every live birth so modules can
// initialise the columns they own.
type Module interface {
	Name() string
	OnDay(s *Simulation, date time.Time)
	OnBirth(s *Simulation, mother, child population.PersonID)
}

// Recorder receives structured analysis records. The zero implementation is
// NopRecorder; the sqlite-backed one lives in internal/record.
type Recorder interface {
	Record(date time.Time, key string, person population.PersonID, data map[string]any)
}

// NopRecorder discards all records.
type NopRecorder struct{}

func (NopRecorder) Record(time.Time, string, population.PersonID, map[string]any) {}

// Stats accumulates run totals.
type Stats struct {
	Days        int
	Births      int
	Deaths      int
	EventsFired int
}

// Simulation binds the population, the health system, and the registered
// modules to the day clock.
type Simulation struct {
	Start time.Time
	Date  time.Time

	Pop    *population.Store
	HS     *healthsystem.HealthSystem
	Params *params.Params
	RNG    *rng.Registry
	Rec    Recorder

	modules []Module
	queue   eventQueue
	seq     uint64
	stats   Stats
}

// New builds a simulation starting at the given date.
func New(start time.Time, pop *population.Store, hs *healthsystem.HealthSystem, p *params.Params, reg *rng.Registry, rec Recorder) *Simulation {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Simulation{
		Start:  start,
		Date:   start,
		Pop:    pop,
		HS:     hs,
		Params: p,
		RNG:    reg,
		Rec:    rec,
	}
}

// Register adds a module. Day hooks run in registration order.
func (s *Simulation) Register(m Module) {
	s.modules = append(s.modules, m)
}

// Stats returns a copy of the run totals.
func (s *Simulation) Stats() Stats { return s.stats }

// Schedule queues ev to fire on date. Dates earlier than the current day are
// a caller bug.
func (s *Simulation) Schedule(ev Event, date time.Time) error {
	if date.Before(s.Date) {
		return fmt.Errorf("schedule event %T: date %s is in the past (today %s)",
			ev, date.Format("2006-01-02"), s.Date.Format("2006-01-02"))
	}
	s.seq++
	heap.Push(&s.queue, &queuedEvent{ev: ev, date: date, seq: s.seq})
	return nil
}

// MustSchedule is Schedule for dates the caller has just computed from
// today; a past date there is a programming error worth stopping on.
func (s *Simulation) MustSchedule(ev Event, date time.Time) {
	if err := s.Schedule(ev, date); err != nil {
		panic(err)
	}
}

// StepDay executes one simulated day: module hooks, then due events in
// (date, scheduling order), then the health system sweep.
func (s *Simulation) StepDay() {
	for _, m := range s.modules {
		m.OnDay(s, s.Date)
	}
	for s.queue.Len() > 0 && !s.queue[0].date.After(s.Date) {
		q := heap.Pop(&s.queue).(*queuedEvent)
		q.ev.Apply(s)
		s.stats.EventsFired++
	}
	s.HS.ProcessDay(s.Date)
	s.stats.Days++
}

// Run steps the clock forward up to the given number of days, returning the
// number actually simulated. A close of stop ends the run at the next day
// boundary; stop may be nil.
func (s *Simulation) Run(days int, stop <-chan struct{}) int {
	for i := 0; i < days; i++ {
		if stop != nil {
			select {
			case <-stop:
				return i
			default:
			}
		}
		s.StepDay()
		s.dailyReport()
		s.Date = s.Date.AddDate(0, 0, 1)
	}
	return days
}

func (s *Simulation) dailyReport() {
	if s.stats.Days%30 != 0 {
		return
	}
	hs := s.HS.Stats()
	slog.Info("period report",
		"date", s.Date.Format("2006-01-02"),
		"day", s.stats.Days,
		"alive", s.Pop.AliveCount(),
		"births", s.stats.Births,
		"deaths", s.stats.Deaths,
		"hsi_ran", hs.Ran,
		"hsi_queued", s.HS.QueueLen())
}

// Birth creates a newborn row, records it, and notifies every module so the
// columns they own get initialised.
func (s *Simulation) Birth(mother population.PersonID, sex population.Sex) population.PersonID {
	child := s.Pop.Create(mother, sex, s.Date)
	s.stats.Births++
	s.Rec.Record(s.Date, "live_birth", child, map[string]any{
		"mother": int(mother),
		"sex":    sex.String(),
	})
	for _, m := range s.modules {
		m.OnBirth(s, mother, child)
	}
	return child
}

// RecordDeath resolves a death: vital status flips, the row stays, and the
// cause is persisted for analysis.
func (s *Simulation) RecordDeath(id population.PersonID, cause string) {
	if err := s.Pop.RecordDeath(id, cause, s.Date); err != nil {
		slog.Error("record death failed", "person", id, "cause", cause, "err", err)
		return
	}
	s.stats.Deaths++
	s.Rec.Record(s.Date, "death", id, map[string]any{"cause": cause})
}

type queuedEvent struct {
	ev   Event
	date time.Time
	seq  uint64
}

// eventQueue orders by (date, scheduling sequence) so same-day events fire
// in the order they were scheduled.
type eventQueue []*queuedEvent

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if !q[i].date.Equal(q[j].date) {
		return q[i].date.Before(q[j].date)
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(*queuedEvent)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
