package healthsystem

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/mkwanda/healthsim/internal/consumables"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
)

type queuedHSI struct {
	hsi      Interaction
	priority int
	topen    time.Time
	tclose   time.Time
	seq      uint64
	opened   bool
}

// Stats counts arbiter activity over the run.
type Stats struct {
	Scheduled    int
	Ran          int
	DidNotRun    int
	NeverRan     int
	NotAvailable int
	DroppedDead  int
	Deferred     int
}

// HealthSystem is the resource arbiter. It is single-threaded by design:
// contention between interactions is logical, resolved by priority within
// the daily sweep, never by concurrent execution.
type HealthSystem struct {
	pop  *population.Store
	cons *consumables.Ledger
	rng  *rand.Rand

	capacity  map[FacilityLevel]map[ApptType]int
	remaining map[FacilityLevel]map[ApptType]int
	beds      *BedLedger
	disabled  map[string]bool

	queue []*queuedHSI
	seq   uint64
	stats Stats
}

// New builds the arbiter from its configuration block.
func New(cfg params.HealthSystem, pop *population.Store, cons *consumables.Ledger, rng *rand.Rand) *HealthSystem {
	capacity := make(map[FacilityLevel]map[ApptType]int)
	for levelKey, appts := range cfg.Capacity {
		level := FacilityLevelFromString(levelKey)
		if level == 0 {
			slog.Warn("ignoring capacity for unknown facility level", "level", levelKey)
			continue
		}
		capacity[level] = make(map[ApptType]int, len(appts))
		for name, slots := range appts {
			capacity[level][ApptType(name)] = slots
		}
	}
	bedCap := make(map[FacilityLevel]map[WardType]int)
	for levelKey, wards := range cfg.Beds {
		level := FacilityLevelFromString(levelKey)
		if level == 0 {
			continue
		}
		bedCap[level] = make(map[WardType]int, len(wards))
		for name, n := range wards {
			bedCap[level][WardType(name)] = n
		}
	}
	disabled := make(map[string]bool, len(cfg.DisabledTreatments))
	for _, id := range cfg.DisabledTreatments {
		disabled[id] = true
	}
	return &HealthSystem{
		pop:      pop,
		cons:     cons,
		rng:      rng,
		capacity: capacity,
		beds:     NewBedLedger(bedCap),
		disabled: disabled,
	}
}

// Consumables exposes the item ledger for delivery-gate checks.
func (h *HealthSystem) Consumables() *consumables.Ledger { return h.cons }

// Beds exposes the bed ledger.
func (h *HealthSystem) Beds() *BedLedger { return h.beds }

// Stats returns a copy of the run counters.
func (h *HealthSystem) Stats() Stats { return h.stats }

// QueueLen is the number of pending interactions.
func (h *HealthSystem) QueueLen() int { return len(h.queue) }

// ScheduleHSI queues an interaction to run between topen and tclose
// inclusive. A window that closes before it opens is a caller bug and is
// rejected outright. Requests for dead individuals are dropped silently.
func (h *HealthSystem) ScheduleHSI(hsi Interaction, priority int, topen, tclose time.Time) error {
	if tclose.Before(topen) {
		return fmt.Errorf("schedule %s: tclose %s before topen %s",
			hsi.TreatmentID(), tclose.Format("2006-01-02"), topen.Format("2006-01-02"))
	}
	if !h.pop.IsAlive(hsi.Subject()) {
		h.stats.DroppedDead++
		slog.Debug("dropping interaction for dead person",
			"treatment", hsi.TreatmentID(), "person", hsi.Subject())
		return nil
	}
	h.seq++
	h.queue = append(h.queue, &queuedHSI{
		hsi:      hsi,
		priority: priority,
		topen:    topen,
		tclose:   tclose,
		seq:      h.seq,
	})
	h.stats.Scheduled++
	return nil
}

// ProcessDay is the daily sweep. It partitions the queue into not-yet-open,
// open, and closed requests; resolves the closed ones with their fallback;
// then serves the open ones in ascending (priority, scheduling order)
// against today's capacity. An open request that cannot be served today
// stays queued unless today is the last day of its window, in which case it
// resolves now rather than silently persisting.
func (h *HealthSystem) ProcessDay(date time.Time) {
	h.cons.BeginDay(date)
	h.beds.Expire(date)
	h.resetCapacity()

	// Interactions may schedule further interactions while they run; those
	// land on the live queue and join tomorrow's sweep.
	today := h.queue
	h.queue = nil

	var pending, open []*queuedHSI
	for _, q := range today {
		switch {
		case !h.pop.IsAlive(q.hsi.Subject()):
			// The person died while the request was queued.
			h.stats.DroppedDead++
		case h.disabled[q.hsi.TreatmentID()]:
			h.stats.NotAvailable++
			q.hsi.Fallback(date, OutcomeNotAvailable)
		case date.After(q.tclose):
			h.resolveClosed(q, date)
		case date.Before(q.topen):
			pending = append(pending, q)
		default:
			q.opened = true
			open = append(open, q)
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		if open[i].priority != open[j].priority {
			return open[i].priority < open[j].priority
		}
		return open[i].seq < open[j].seq
	})

	squeeze := h.squeezeByLevel(open)
	for _, q := range open {
		if h.tryRun(q, date, squeeze[q.hsi.Facility()]) {
			h.stats.Ran++
			continue
		}
		if date.Before(q.tclose) {
			h.stats.Deferred++
			pending = append(pending, q)
			continue
		}
		h.resolveClosed(q, date)
	}
	h.queue = append(pending, h.queue...)
}

func (h *HealthSystem) resolveClosed(q *queuedHSI, date time.Time) {
	outcome := OutcomeNeverRan
	if q.opened {
		outcome = OutcomeDidNotRun
		h.stats.DidNotRun++
	} else {
		h.stats.NeverRan++
	}
	slog.Debug("interaction window closed without running",
		"treatment", q.hsi.TreatmentID(), "person", q.hsi.Subject(), "outcome", outcome.String())
	q.hsi.Fallback(date, outcome)
}

// tryRun grants the declared footprint if today's capacity allows, then
// executes the interaction and reconciles the footprint it actually used.
func (h *HealthSystem) tryRun(q *queuedHSI, date time.Time, squeeze float64) bool {
	level := q.hsi.Facility()
	fp := q.hsi.Footprint()
	avail := h.remaining[level]
	for appt, n := range fp.Appts {
		if avail[appt] < n {
			return false
		}
	}
	for ward, days := range fp.BedDays {
		if days > 0 && !h.beds.CanAdmit(date, level, ward, days) {
			return false
		}
	}
	for appt, n := range fp.Appts {
		avail[appt] -= n
	}
	for ward, days := range fp.BedDays {
		if days > 0 {
			h.beds.Admit(date, level, ward, days)
		}
	}

	enc := &Encounter{Date: date, Facility: level, Squeeze: squeeze, hs: h}
	actual := q.hsi.Run(enc)
	h.reconcile(level, fp, actual)
	return true
}

// reconcile adjusts the day's appointment pools when the executed footprint
// differs from the declared one, e.g. a normal delivery that turned out
// complicated. Bed bookings are not revisited.
func (h *HealthSystem) reconcile(level FacilityLevel, declared, actual Footprint) {
	if actual.Appts == nil {
		return
	}
	avail := h.remaining[level]
	if avail == nil {
		return
	}
	for appt, n := range declared.Appts {
		avail[appt] += n
	}
	for appt, n := range actual.Appts {
		avail[appt] -= n
		if avail[appt] < 0 {
			avail[appt] = 0
		}
	}
}

func (h *HealthSystem) resetCapacity() {
	h.remaining = make(map[FacilityLevel]map[ApptType]int, len(h.capacity))
	for level, appts := range h.capacity {
		day := make(map[ApptType]int, len(appts))
		for appt, slots := range appts {
			day[appt] = slots
		}
		h.remaining[level] = day
	}
}

// squeezeByLevel expresses today's demand pressure at each facility level:
// zero when requested appointment slots fit within capacity, rising above
// zero as demand exceeds it.
func (h *HealthSystem) squeezeByLevel(open []*queuedHSI) map[FacilityLevel]float64 {
	demand := make(map[FacilityLevel]int)
	for _, q := range open {
		for _, n := range q.hsi.Footprint().Appts {
			demand[q.hsi.Facility()] += n
		}
	}
	out := make(map[FacilityLevel]float64, len(demand))
	for level, d := range demand {
		var capTotal int
		for _, slots := range h.capacity[level] {
			capTotal += slots
		}
		if capTotal <= 0 {
			out[level] = float64(d)
			continue
		}
		s := float64(d)/float64(capTotal) - 1
		if s < 0 {
			s = 0
		}
		out[level] = s
	}
	return out
}
