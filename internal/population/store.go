package population

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// Store is the population frame. Rows are append-only; death flips the vital
// status and retains the row so that historical records stay resolvable.
// Rows are heap-allocated, so a *Person stays valid across later Creates;
// modules hold row pointers across calls that grow the frame.
type Store struct {
	persons []*Person
	alive   int
}

// NewStore returns an empty population frame.
func NewStore() *Store {
	return &Store{}
}

// Bootstrap seeds n individuals with ages drawn uniformly from 0 to 79 years
// and an even sex draw. Bootstrap individuals have no recorded mother.
func (s *Store) Bootstrap(n int, rng *rand.Rand, start time.Time) {
	for i := 0; i < n; i++ {
		sex := SexFemale
		if rng.Float64() < 0.5 {
			sex = SexMale
		}
		ageDays := rng.Intn(80 * 365)
		s.add(Person{
			Sex:         sex,
			DateOfBirth: start.AddDate(0, 0, -ageDays),
			MotherID:    NoPerson,
			Alive:       true,
		})
	}
}

// Create appends a newborn row and returns its ID.
func (s *Store) Create(mother PersonID, sex Sex, dob time.Time) PersonID {
	return s.add(Person{
		Sex:         sex,
		DateOfBirth: dob,
		MotherID:    mother,
		Alive:       true,
	})
}

func (s *Store) add(p Person) PersonID {
	p.ID = PersonID(len(s.persons))
	s.persons = append(s.persons, &p)
	s.alive++
	return p.ID
}

// Get returns the row for id, or nil for an unknown ID.
func (s *Store) Get(id PersonID) *Person {
	if id < 0 || int(id) >= len(s.persons) {
		return nil
	}
	return s.persons[id]
}

// IsAlive reports whether id refers to a living individual.
func (s *Store) IsAlive(id PersonID) bool {
	p := s.Get(id)
	return p != nil && p.Alive
}

// EachAlive visits every living individual in ID order.
func (s *Store) EachAlive(fn func(*Person)) {
	for _, p := range s.persons {
		if p.Alive {
			fn(p)
		}
	}
}

// RecordDeath flips the vital status of id and records date and cause. The
// row is retained. Dying twice is a bookkeeping error and is rejected.
func (s *Store) RecordDeath(id PersonID, cause string, date time.Time) error {
	p := s.Get(id)
	if p == nil {
		return fmt.Errorf("record death: unknown person %d", id)
	}
	if !p.Alive {
		return fmt.Errorf("record death: person %d is already dead", id)
	}
	p.Alive = false
	p.DateOfDeath = date
	p.CauseOfDeath = cause
	s.alive--
	slog.Info("death", "person", id, "cause", cause, "date", date.Format("2006-01-02"))
	return nil
}

// Len is the total number of rows ever created.
func (s *Store) Len() int { return len(s.persons) }

// AliveCount is the number of living individuals.
func (s *Store) AliveCount() int { return s.alive }
