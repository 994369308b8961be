package chrome

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/club-scheduler/internal/booking"
	"github.com/example/club-scheduler/internal/gate"
	"github.com/example/club-scheduler/internal/portal"
)

func testBooker() *Booker {
	return &Booker{Gate: gate.Gate{Location: time.UTC, OpenHour: 7}}
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TestResolveDay(t *testing.T) {
	b := testBooker()
	now := time.Now().UTC()

	day, gateFn, err := b.resolveDay(civilDate(now))
	require.NoError(t, err)
	assert.Equal(t, portal.DayToday, day)
	assert.Nil(t, gateFn, "same-day slots are already open, no gate")

	day, gateFn, err = b.resolveDay(civilDate(now.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Equal(t, portal.DayTomorrow, day)
	assert.NotNil(t, gateFn, "next-day slots wait for the release instant")
}

func TestResolveDayRejectsUnreachableDates(t *testing.T) {
	b := testBooker()
	now := time.Now().UTC()

	for _, offset := range []int{-1, 2, 7} {
		_, _, err := b.resolveDay(civilDate(now.AddDate(0, 0, offset)))
		assert.ErrorIs(t, err, portal.ErrSlotUnavailable, "offset %+d days", offset)
	}
}

func TestRunFailsUnreachableDateWithoutSession(t *testing.T) {
	b := testBooker()
	req := booking.Request{
		ID:        1,
		Sport:     booking.SportTennis,
		Date:      civilDate(time.Now().UTC().AddDate(0, 0, 3)),
		Hour:      "08:00",
		PlayerIDs: []string{"46152627E"},
	}

	start := time.Now()
	res := b.Run(context.Background(), req, true)

	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "SlotUnavailable")
	assert.Contains(t, res.Reason, "neither today nor tomorrow")
	assert.Less(t, time.Since(start), time.Second, "must fail before any gate wait or browser launch")
}
