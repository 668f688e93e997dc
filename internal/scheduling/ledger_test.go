package scheduling

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_ConflictsWith(t *testing.T) {
	l := NewLedger()
	_, ok := l.ConflictsWith(NewInterval(at("2025-09-15 09:00"), time.Hour))
	assert.False(t, ok, "empty ledger has no conflicts")

	l.Record(Meeting{ID: "a", Interval: NewInterval(at("2025-09-15 09:00"), 2*time.Hour)})
	l.Record(Meeting{ID: "b", Interval: NewInterval(at("2025-09-15 10:00"), time.Hour)})

	m, ok := l.ConflictsWith(NewInterval(at("2025-09-15 10:30"), time.Hour))
	require.True(t, ok)
	assert.Equal(t, "a", m.ID, "first match in insertion order")

	_, ok = l.ConflictsWith(NewInterval(at("2025-09-15 11:00"), time.Hour))
	assert.False(t, ok, "back-to-back is not a conflict")

	_, ok = l.ConflictsWith(NewInterval(at("2025-09-15 08:00"), time.Hour))
	assert.False(t, ok)
}

func TestLedger_MeetingsIsCopy(t *testing.T) {
	l := NewLedger()
	l.Record(Meeting{ID: "a"})

	got := l.Meetings()
	got[0].ID = "mutated"

	assert.Equal(t, "a", l.Meetings()[0].ID)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_ConcurrentAccess(t *testing.T) {
	l := NewLedger()
	base := at("2025-09-15 00:00")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Record(Meeting{Interval: NewInterval(base.Add(time.Duration(i)*time.Hour), time.Hour)})
		}()
		go func() {
			defer wg.Done()
			l.ConflictsWith(NewInterval(base, time.Hour))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, l.Len())
}
