package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest(sport Sport) Request {
	r := Request{
		ID:     1,
		UserID: 1,
		Sport:  sport,
		Date:   time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		Hour:   "08:00",
		Tier:   TierStandard,
		Status: StatusPending,
	}
	switch sport {
	case SportPadel:
		r.PlayerIDs = []string{"46151293E", "60105994W", "60432112A"}
	case SportTennis:
		r.PlayerIDs = []string{"46152627E"}
	}
	return r
}

func TestPlayerCount(t *testing.T) {
	assert.Equal(t, 3, SportPadel.PlayerCount())
	assert.Equal(t, 1, SportTennis.PlayerCount())
	assert.Equal(t, 0, Sport("squash").PlayerCount())
}

func TestParseSport(t *testing.T) {
	s, err := ParseSport(" Padel ")
	require.NoError(t, err)
	assert.Equal(t, SportPadel, s)

	s, err = ParseSport("TENNIS")
	require.NoError(t, err)
	assert.Equal(t, SportTennis, s)

	_, err = ParseSport("golf")
	assert.Error(t, err)
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("Premium")
	require.NoError(t, err)
	assert.Equal(t, TierPremium, tier)

	_, err = ParseTier("gold")
	assert.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		{StatusCompleted, StatusFailed, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusFailed, StatusCompleted, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidate(t *testing.T) {
	t.Run("padel ok", func(t *testing.T) {
		assert.NoError(t, validRequest(SportPadel).Validate())
	})

	t.Run("tennis ok", func(t *testing.T) {
		assert.NoError(t, validRequest(SportTennis).Validate())
	})

	t.Run("padel wrong participant count", func(t *testing.T) {
		r := validRequest(SportPadel)
		r.PlayerIDs = r.PlayerIDs[:2]
		assert.Error(t, r.Validate())

		r = validRequest(SportPadel)
		r.PlayerIDs = append(r.PlayerIDs, "46152627E")
		assert.Error(t, r.Validate())
	})

	t.Run("tennis wrong participant count", func(t *testing.T) {
		r := validRequest(SportTennis)
		r.PlayerIDs = nil
		assert.Error(t, r.Validate())
	})

	t.Run("unknown sport", func(t *testing.T) {
		r := validRequest(SportPadel)
		r.Sport = "squash"
		assert.Error(t, r.Validate())
	})

	t.Run("bad check letter", func(t *testing.T) {
		r := validRequest(SportTennis)
		r.PlayerIDs = []string{"46152627T"}
		err := r.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "46152627T")
	})

	t.Run("missing date", func(t *testing.T) {
		r := validRequest(SportTennis)
		r.Date = time.Time{}
		assert.Error(t, r.Validate())
	})

	t.Run("bad hour", func(t *testing.T) {
		r := validRequest(SportTennis)
		r.Hour = "8pm"
		assert.Error(t, r.Validate())

		r.Hour = "25:00"
		assert.Error(t, r.Validate())
	})
}

func TestFailure(t *testing.T) {
	res := Failure("SlotUnavailable: taken")
	assert.False(t, res.Success)
	assert.Equal(t, "SlotUnavailable: taken", res.Reason)
	assert.Empty(t, res.Players)
}
