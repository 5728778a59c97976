// Package consumables implements the per-facility item availability ledger.
// Availability is stochastic across days but idempotent within one: every
// query for the same (item, facility level, day) returns the same answer, so
// interactions running at different points of the same day see a consistent
// stock picture. Day-to-day variation follows a smooth noise field rather
// than white noise, so stockouts cluster in time the way real supply gaps do.
package consumables

import (
	"hash/fnv"
	"log/slog"
	"math/rand"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

type drawKey struct {
	item  string
	level int
}

// Ledger answers availability queries for consumable items.
type Ledger struct {
	base   map[string]float64
	drift  float64
	forced float64 // in [0,1] overrides everything; negative means off
	noise  opensimplex.Noise
	rng    *rand.Rand

	day    time.Time
	epoch  time.Time
	draws  map[drawKey]bool
	warned map[string]bool
}

// New builds a ledger over the given item catalogue. base maps item code to
// base availability probability; drift is the amplitude of the day-to-day
// noise added to it; forced in [0,1] pins every item to that availability
// (pass a negative value for normal operation).
func New(base map[string]float64, drift, forced float64, seed int64, rng *rand.Rand) *Ledger {
	return &Ledger{
		base:   base,
		drift:  drift,
		forced: forced,
		noise:  opensimplex.New(seed),
		rng:    rng,
		draws:  make(map[drawKey]bool),
		warned: make(map[string]bool),
	}
}

// BeginDay resets the within-day draw cache. Called once per simulated day
// before any interaction runs.
func (l *Ledger) BeginDay(date time.Time) {
	if l.epoch.IsZero() {
		l.epoch = date
	}
	l.day = date
	l.draws = make(map[drawKey]bool)
}

// Available reports whether one unit of item can be dispensed today at the
// given facility level. Unknown item codes are never available; requesting
// one is a catalogue bug, logged once per code.
func (l *Ledger) Available(item string, level int) bool {
	p, ok := l.base[item]
	if !ok {
		if !l.warned[item] {
			l.warned[item] = true
			slog.Warn("consumable request for unknown item code", "item", item)
		}
		return false
	}
	key := drawKey{item: item, level: level}
	if got, done := l.draws[key]; done {
		return got
	}
	if l.forced >= 0 {
		p = l.forced
	} else {
		p = clamp01(p + l.drift*l.driftFor(item, level))
	}
	got := l.rng.Float64() < p
	l.draws[key] = got
	return got
}

// AllAvailable reports whether every item in the list is available today at
// the given level. An empty list is trivially available.
func (l *Ledger) AllAvailable(items []string, level int) bool {
	ok := true
	for _, item := range items {
		// Draw each item even after a failure so the within-day cache
		// is fully populated either way.
		if !l.Available(item, level) {
			ok = false
		}
	}
	return ok
}

// driftFor evaluates the noise field at a coordinate derived from the item
// identity and the day index, giving each (item, level) its own smooth
// availability trajectory in [-1, 1].
func (l *Ledger) driftFor(item string, level int) float64 {
	h := fnv.New32a()
	h.Write([]byte(item))
	x := float64(l.day.Sub(l.epoch).Hours()/24) * 0.05
	y := float64(h.Sum32()%1024)*1.37 + float64(level)*0.61
	return l.noise.Eval2(x, y)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
