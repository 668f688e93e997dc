package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAvailable_EmptyCalendar(t *testing.T) {
	cal := &fakeCalendar{}
	e, _ := newTestEngine(cal, "2025-09-14 12:00")

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, time.Time{})
	require.NoError(t, err)

	// 08:00 .. 17:00 in 30 minute steps
	require.Len(t, slots, 19)
	assert.Equal(t, at("2025-09-15 08:00"), slots[0].Start)
	assert.Equal(t, at("2025-09-15 09:00"), slots[0].End)
	assert.Equal(t, at("2025-09-15 17:00"), slots[len(slots)-1].Start)
	assert.Equal(t, at("2025-09-15 18:00"), slots[len(slots)-1].End)
	assert.Equal(t, 1, cal.calls(), "one fetch for the whole window")
}

func TestListAvailable_OrderedAndUnique(t *testing.T) {
	cal := &fakeCalendar{}
	cal.add(at("2025-09-15 10:15"), at("2025-09-15 11:45"))
	cal.add(at("2025-09-15 14:00"), at("2025-09-15 14:30"))
	e, _ := newTestEngine(cal, "2025-09-14 12:00")
	e.Ledger().Record(Meeting{ID: "m", Interval: NewInterval(at("2025-09-15 16:00"), time.Hour)})

	for _, d := range []time.Duration{15 * time.Minute, 45 * time.Minute, time.Hour, 2 * time.Hour} {
		slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), d, time.Time{})
		require.NoError(t, err)

		seen := map[time.Time]bool{}
		for i, s := range slots {
			assert.False(t, seen[s.Start], "duplicate start %s", s.Start)
			seen[s.Start] = true
			if i > 0 {
				assert.True(t, slots[i-1].Start.Before(s.Start), "slots must be strictly increasing")
			}
			assert.Equal(t, d, s.End.Sub(s.Start))
			assert.False(t, Overlaps(s.Interval(), NewInterval(at("2025-09-15 16:00"), time.Hour)), "ledger meeting must be excluded")
			assert.False(t, Overlaps(s.Interval(), Interval{at("2025-09-15 10:15"), at("2025-09-15 11:45")}))
		}
	}
}

func TestListAvailable_StepIndependentOfDuration(t *testing.T) {
	e, _ := newTestEngine(&fakeCalendar{}, "2025-09-14 12:00")

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), 2*time.Hour, time.Time{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(slots), 2)
	assert.Equal(t, 30*time.Minute, slots[1].Start.Sub(slots[0].Start))
	assert.Equal(t, at("2025-09-15 16:00"), slots[len(slots)-1].Start)
}

func TestListAvailable_FullyCoveredDay(t *testing.T) {
	cal := &fakeCalendar{}
	cal.add(at("2025-09-15 08:00"), at("2025-09-15 18:00"))
	e, _ := newTestEngine(cal, "2025-09-14 12:00")

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), 30*time.Minute, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestListAvailable_AllDayEventBlocksDay(t *testing.T) {
	cal := &fakeCalendar{}
	cal.add(at("2025-09-15 00:00"), at("2025-09-16 00:00"))
	e, _ := newTestEngine(cal, "2025-09-14 12:00")

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestListAvailable_EarliestStart(t *testing.T) {
	cal := &fakeCalendar{}
	e, _ := newTestEngine(cal, "2025-09-14 12:00")

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, at("2025-09-15 15:10"))
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, at("2025-09-15 15:10"), slots[0].Start)

	// earlier than the window start is ignored
	slots, err = e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, at("2025-09-15 06:00"))
	require.NoError(t, err)
	assert.Equal(t, at("2025-09-15 08:00"), slots[0].Start)
}

func TestListAvailable_DurationExceedsWindow(t *testing.T) {
	cal := &fakeCalendar{}
	e, _ := newTestEngine(cal, "2025-09-14 12:00")

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), 11*time.Hour, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, slots)

	slots, err = e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, at("2025-09-15 17:30"))
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.Equal(t, 0, cal.calls())
}

func TestListAvailable_SkipsPast(t *testing.T) {
	e, _ := newTestEngine(&fakeCalendar{}, "2025-09-15 12:10")

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, at("2025-09-15 12:30"), slots[0].Start)

	slots, err = e.ListAvailable(context.Background(), at("2025-09-10 00:00"), time.Hour, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestListAvailable_SkipsRestrictedBand(t *testing.T) {
	p := DefaultPolicy()
	p.BusinessStart = 4 * time.Hour
	e := NewEngine(&fakeCalendar{}, p, WithClock(NewFixedClock(at("2025-09-14 12:00"))))

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, at("2025-09-15 06:00"), slots[0].Start)
}

func TestListAvailable_FetchFailure(t *testing.T) {
	cal := &fakeCalendar{listErr: errors.New("connection refused")}
	e, _ := newTestEngine(cal, "2025-09-14 12:00")

	slots, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, time.Time{})
	assert.Nil(t, slots)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAvailabilityFetchFailed)
	assert.ErrorIs(t, err, ErrRemoteFailure)
}

func TestListAvailable_Timeout(t *testing.T) {
	cal := &fakeCalendar{delay: time.Second}
	p := DefaultPolicy()
	p.CalendarTimeout = 10 * time.Millisecond
	e := NewEngine(cal, p, WithClock(NewFixedClock(at("2025-09-14 12:00"))))

	_, err := e.ListAvailable(context.Background(), at("2025-09-15 00:00"), time.Hour, time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAvailabilityFetchFailed)
	assert.ErrorIs(t, err, ErrCalendarTimeout)
}

func TestSuggestNextSlots(t *testing.T) {
	cal := &fakeCalendar{}
	// blocks 11:00 on the first day
	cal.add(at("2025-09-16 11:30"), at("2025-09-16 12:00"))
	e, _ := newTestEngine(cal, "2025-09-15 10:00")
	e.Ledger().Record(Meeting{ID: "m", Interval: NewInterval(at("2025-09-18 16:00"), time.Hour)})

	got, err := e.SuggestNextSlots(context.Background(), at("2025-09-15 00:00"), 4, 4)
	require.NoError(t, err)

	for _, s := range got {
		assert.True(t, s.After(at("2025-09-15 23:59")), "suggestions start the day after the reference")
		assert.Contains(t, []int{9, 11, 14, 16}, s.Hour())
	}
	assert.NotContains(t, got, at("2025-09-16 11:00"))
	assert.NotContains(t, got, at("2025-09-18 16:00"))
	assert.Contains(t, got, at("2025-09-16 09:00"))
	assert.Contains(t, got, at("2025-09-19 16:00"))
	assert.LessOrEqual(t, len(got), 16)
	assert.Equal(t, 4, cal.calls(), "one fetch per day")

	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Before(got[i]))
	}
}

func TestSuggestNextSlots_Margin(t *testing.T) {
	cal := &fakeCalendar{}
	// ends 30s before 14:00 starts: clear of the slot but inside the margin
	cal.add(at("2025-09-16 13:00"), at("2025-09-16 13:00").Add(59*time.Minute+30*time.Second))
	e, _ := newTestEngine(cal, "2025-09-15 10:00")

	got, err := e.SuggestNextSlots(context.Background(), at("2025-09-15 00:00"), 1, 4)
	require.NoError(t, err)
	assert.NotContains(t, got, at("2025-09-16 14:00"))
	assert.Contains(t, got, at("2025-09-16 11:00"))
}

func TestSuggestNextSlots_SlotsPerDayLimit(t *testing.T) {
	e, _ := newTestEngine(&fakeCalendar{}, "2025-09-15 10:00")

	got, err := e.SuggestNextSlots(context.Background(), at("2025-09-15 00:00"), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		at("2025-09-16 09:00"), at("2025-09-16 11:00"),
		at("2025-09-17 09:00"), at("2025-09-17 11:00"),
	}, got)

	got, err = e.SuggestNextSlots(context.Background(), at("2025-09-15 00:00"), 0, 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestNextSlots_DuplicatePreferredHours(t *testing.T) {
	p := DefaultPolicy()
	p.PreferredHours = []int{14, 9, 9}
	e := NewEngine(&fakeCalendar{}, p, WithClock(NewFixedClock(at("2025-09-15 10:00"))))

	got, err := e.SuggestNextSlots(context.Background(), at("2025-09-15 00:00"), 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at("2025-09-16 09:00"), at("2025-09-16 14:00")}, got)
}

func TestSuggestNextSlots_SkipsPast(t *testing.T) {
	e, _ := newTestEngine(&fakeCalendar{}, "2025-09-20 12:00")

	got, err := e.SuggestNextSlots(context.Background(), at("2025-09-15 00:00"), 5, 4)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at("2025-09-20 14:00"), at("2025-09-20 16:00")}, got)
}

func TestSuggestNextSlots_FetchFailure(t *testing.T) {
	e, _ := newTestEngine(&fakeCalendar{listErr: errors.New("boom")}, "2025-09-15 10:00")

	_, err := e.SuggestNextSlots(context.Background(), at("2025-09-15 00:00"), 4, 4)
	assert.ErrorIs(t, err, ErrAvailabilityFetchFailed)
}
