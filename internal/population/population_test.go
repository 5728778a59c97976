package population

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestBootstrap(t *testing.T) {
	s := NewStore()
	s.Bootstrap(500, rand.New(rand.NewSource(1)), testStart)

	assert.Equal(t, 500, s.Len())
	assert.Equal(t, 500, s.AliveCount())

	for id := PersonID(0); int(id) < s.Len(); id++ {
		p := s.Get(id)
		require.NotNil(t, p)
		assert.Equal(t, id, p.ID)
		assert.Equal(t, NoPerson, p.MotherID)
		age := p.AgeYears(testStart)
		assert.GreaterOrEqual(t, age, 0)
		assert.Less(t, age, 80)
	}
}

func TestCreateNewborn(t *testing.T) {
	s := NewStore()
	s.Bootstrap(1, rand.New(rand.NewSource(1)), testStart)

	child := s.Create(0, SexFemale, testStart)
	p := s.Get(child)
	require.NotNil(t, p)
	assert.Equal(t, PersonID(0), p.MotherID)
	assert.Equal(t, testStart, p.DateOfBirth)
	assert.True(t, p.Alive)
	assert.Equal(t, 2, s.AliveCount())
}

func TestRecordDeath(t *testing.T) {
	s := NewStore()
	s.Bootstrap(2, rand.New(rand.NewSource(1)), testStart)

	require.NoError(t, s.RecordDeath(0, "eclampsia", testStart))
	p := s.Get(0)
	assert.False(t, p.Alive)
	assert.Equal(t, "eclampsia", p.CauseOfDeath)
	assert.Equal(t, testStart, p.DateOfDeath)
	assert.Equal(t, 1, s.AliveCount())
	assert.False(t, s.IsAlive(0))
	assert.True(t, s.IsAlive(1))

	// Dying twice is rejected and the frame is unchanged.
	assert.Error(t, s.RecordDeath(0, "sepsis", testStart))
	assert.Equal(t, "eclampsia", s.Get(0).CauseOfDeath)
	assert.Equal(t, 1, s.AliveCount())

	assert.Error(t, s.RecordDeath(99, "unknown", testStart))
}

func TestEachAliveSkipsDead(t *testing.T) {
	s := NewStore()
	s.Bootstrap(5, rand.New(rand.NewSource(1)), testStart)
	require.NoError(t, s.RecordDeath(2, "test", testStart))

	var seen []PersonID
	s.EachAlive(func(p *Person) { seen = append(seen, p.ID) })
	assert.Equal(t, []PersonID{0, 1, 3, 4}, seen)
}

// Modules hold a *Person across calls that append rows, so the pointer must
// keep addressing the live row while births grow the frame.
func TestRowPointersStableAcrossCreate(t *testing.T) {
	s := NewStore()
	s.Bootstrap(1, rand.New(rand.NewSource(1)), testStart)

	mother := s.Get(0)
	for i := 0; i < 64; i++ {
		s.Create(0, SexFemale, testStart)
	}
	mother.Maternal.Postpartum = true
	mother.Maternal.MostRecentDeliveryDate = testStart

	assert.Same(t, mother, s.Get(0))
	assert.True(t, s.Get(0).Maternal.Postpartum)
	assert.Equal(t, testStart, s.Get(0).Maternal.MostRecentDeliveryDate)
}

func TestGetUnknownID(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Get(0))
	assert.Nil(t, s.Get(-1))
	assert.False(t, s.IsAlive(NoPerson))
}

func TestAgeYears(t *testing.T) {
	p := Person{DateOfBirth: time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 26, p.AgeYears(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 26, p.AgeYears(time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 25, p.AgeYears(time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)))
}

func TestGestationalAgeWeeks(t *testing.T) {
	an := Antenatal{Pregnant: true, ConceptionDate: testStart}
	assert.Equal(t, 0, an.GestationalAgeWeeks(testStart))
	assert.Equal(t, 0, an.GestationalAgeWeeks(testStart.AddDate(0, 0, 6)))
	assert.Equal(t, 1, an.GestationalAgeWeeks(testStart.AddDate(0, 0, 7)))
	assert.Equal(t, 40, an.GestationalAgeWeeks(testStart.AddDate(0, 0, 280)))

	notPregnant := Antenatal{}
	assert.Equal(t, 0, notPregnant.GestationalAgeWeeks(testStart))
}
