package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	organizer = NewIdentity("0xOrganizer")
	donor     = NewIdentity("0xDonor")
	stranger  = NewIdentity("0xStranger")
	t0        = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func ether(t *testing.T, s string) Amount {
	t.Helper()
	a, err := FromWhole(s)
	require.NoError(t, err)
	return a
}

func newCampaign(t *testing.T, goal string) *Campaign {
	t.Helper()
	c, _, err := NewCampaign("c1", "Vaquinha", "for the party", ether(t, goal), organizer, t0)
	require.NoError(t, err)
	return c
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestNewCampaign(t *testing.T) {
	c, created, err := NewCampaign("c1", "  Vaquinha ", "desc", ether(t, "10"), organizer, t0)
	require.NoError(t, err)

	assert.Equal(t, "Vaquinha", c.Title)
	assert.Equal(t, UnitEther, c.Unit)
	assert.Equal(t, StatusOpenUnfunded, c.Status())
	assert.True(t, c.TotalRaised.IsZero())
	assert.True(t, c.Balance.IsZero())
	assert.False(t, c.GoalReached)
	assert.False(t, c.Closed)

	assert.Equal(t, EventCampaignCreated, created.Type)
	assert.Equal(t, CampaignID("c1"), created.CampaignID)
	assert.Equal(t, organizer, created.Actor)
}

func TestNewCampaignValidation(t *testing.T) {
	goal := ether(t, "1")
	_, _, err := NewCampaign("c", "", "desc", goal, organizer, t0)
	require.ErrorIs(t, err, ErrInvalidMetadata)

	_, _, err = NewCampaign("c", "title", "   ", goal, organizer, t0)
	require.ErrorIs(t, err, ErrInvalidMetadata)

	_, _, err = NewCampaign("c", "title", "desc", ZeroAmount(UnitEther), organizer, t0)
	require.ErrorIs(t, err, ErrInvalidGoal)

	_, _, err = NewCampaign("c", "title", "desc", goal, "", t0)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestDonateAccumulates(t *testing.T) {
	c := newCampaign(t, "100")

	var want Amount
	for _, v := range []string{"1", "2.5", "0.000000000000000001", "3"} {
		amt := ether(t, v)
		r, events, err := c.Donate(amt, donor, t0)
		require.NoError(t, err)
		want, _ = want.Add(amt)

		require.Len(t, events, 1)
		assert.Equal(t, EventDonationReceived, events[0].Type)
		assert.Equal(t, donor, events[0].Actor)
		assert.Equal(t, amt.RawString(), events[0].Amount.RawString())
		assert.Equal(t, want.RawString(), r.TotalRaised.RawString())
	}
	assert.Equal(t, want.RawString(), c.TotalRaised.RawString())
	assert.Equal(t, want.RawString(), c.Balance.RawString())
	assert.Equal(t, int64(4), c.Donations)
	assert.False(t, c.GoalReached)
}

func TestGoalReachedExactlyOnce(t *testing.T) {
	c := newCampaign(t, "10")

	_, events, err := c.Donate(ether(t, "4"), donor, t0)
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventDonationReceived}, eventTypes(events))

	_, events, err = c.Donate(ether(t, "6"), donor, t0)
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventDonationReceived, EventGoalReached}, eventTypes(events))
	reached := events[1]
	assert.Equal(t, "10", reached.TotalRaised.Display(UnitEther))
	assert.Equal(t, "10", reached.Goal.Display(UnitEther))
	assert.Equal(t, StatusOpenFunded, c.Status())

	// over-funding is accepted and never re-signals the goal
	_, events, err = c.Donate(ether(t, "5"), donor, t0)
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventDonationReceived}, eventTypes(events))
	assert.Equal(t, "15", c.TotalRaised.Display(UnitEther))
}

func TestGoalReachedOnOvershoot(t *testing.T) {
	c := newCampaign(t, "10")
	_, events, err := c.Donate(ether(t, "25"), donor, t0)
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventDonationReceived, EventGoalReached}, eventTypes(events))
	assert.True(t, c.GoalReached)
}

func TestDonateRejectsZero(t *testing.T) {
	c := newCampaign(t, "10")
	before := *c
	_, _, err := c.Donate(ZeroAmount(UnitEther), donor, t0.Add(time.Hour))
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, before, *c)
}

func TestDonateOverflowIsAtomic(t *testing.T) {
	top := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(2))
	goal, err := FromSmallest(top.String())
	require.NoError(t, err)
	c, _, err := NewCampaign("c1", "big", "big", goal, organizer, t0)
	require.NoError(t, err)

	big1, _ := FromSmallest(top.String())
	_, _, err = c.Donate(big1, donor, t0)
	require.NoError(t, err)

	before := *c
	_, events, err := c.Donate(mustWei(t, "2"), donor, t0.Add(time.Minute))
	require.ErrorIs(t, err, ErrOverflow)
	assert.Nil(t, events)
	assert.Equal(t, before, *c)
}

func TestWithdraw(t *testing.T) {
	c := newCampaign(t, "10")
	_, _, _ = c.Donate(ether(t, "4"), donor, t0)
	_, _, _ = c.Donate(ether(t, "6"), donor, t0)

	r, events, err := c.Withdraw(NewIdentity("0XORGANIZER"), t0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventWithdrawn, events[0].Type)
	assert.Equal(t, "10", events[0].Amount.Display(UnitEther))
	assert.Equal(t, UnitEther, events[0].Unit)

	assert.True(t, r.Closed)
	assert.True(t, c.Closed)
	assert.True(t, c.Balance.IsZero())
	assert.Equal(t, "10", c.TotalRaised.Display(UnitEther))
	assert.Equal(t, "10", c.WithdrawnAmount.Display(UnitEther))
	assert.Equal(t, StatusClosed, c.Status())

	_, _, err = c.Withdraw(organizer, t0)
	require.ErrorIs(t, err, ErrCampaignClosed)

	_, _, err = c.Donate(ether(t, "1"), donor, t0)
	require.ErrorIs(t, err, ErrCampaignClosed)
	assert.Equal(t, "10", c.TotalRaised.Display(UnitEther))
}

func TestWithdrawByStrangerIsUnauthorized(t *testing.T) {
	c := newCampaign(t, "10")

	_, _, err := c.Withdraw(stranger, t0)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, _, _ = c.Donate(ether(t, "10"), donor, t0)
	before := *c
	_, _, err = c.Withdraw(stranger, t0)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = c.Withdraw("", t0)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, before, *c)
	assert.False(t, c.Closed)
}

func TestWithdrawBeforeGoal(t *testing.T) {
	c := newCampaign(t, "10")
	_, _, _ = c.Donate(ether(t, "9.999"), donor, t0)
	_, _, err := c.Withdraw(organizer, t0)
	require.ErrorIs(t, err, ErrGoalNotReached)
	assert.False(t, c.Closed)
	assert.Equal(t, "9.999", c.Balance.Display(UnitEther))
}
