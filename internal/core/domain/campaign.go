package domain

import (
	"fmt"
	"strings"
	"time"
)

// CampaignID identifies a campaign. It is assigned at creation and never
// changes.
type CampaignID string

func (id CampaignID) String() string { return string(id) }

// Status is the derived lifecycle state of a campaign.
type Status string

const (
	StatusOpenUnfunded Status = "open-unfunded"
	StatusOpenFunded   Status = "open-funded"
	StatusClosed       Status = "closed"
)

// Campaign represents one fundraising effort ("vaquinha").
// Amounts are accounted in wei; Unit is the display unit picked by the
// organizer at creation.
type Campaign struct {
	ID          CampaignID
	Position    int64 // registry order, assigned by the store
	Title       string
	Description string
	Goal        Amount
	Unit        Unit
	Organizer   Identity

	// TotalRaised is the lifetime sum of accepted donations. It survives
	// withdrawal; Balance does not.
	TotalRaised     Amount
	Balance         Amount
	GoalReached     bool
	Closed          bool
	Donations       int64
	WithdrawnAmount Amount

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCampaign validates the creation arguments and returns an open,
// unfunded campaign together with its CampaignCreated event.
func NewCampaign(id CampaignID, title, description string, goal Amount, organizer Identity, now time.Time) (*Campaign, Event, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, Event{}, fmt.Errorf("%w: empty title", ErrInvalidMetadata)
	}
	if description == "" {
		return nil, Event{}, fmt.Errorf("%w: empty description", ErrInvalidMetadata)
	}
	if goal.IsZero() {
		return nil, Event{}, fmt.Errorf("%w: goal must be greater than zero", ErrInvalidGoal)
	}
	if organizer.IsZero() {
		return nil, Event{}, fmt.Errorf("%w: missing organizer", ErrUnauthorized)
	}
	unit := goal.Unit()
	c := &Campaign{
		ID:              id,
		Title:           title,
		Description:     description,
		Goal:            goal,
		Unit:            unit,
		Organizer:       organizer,
		TotalRaised:     ZeroAmount(unit),
		Balance:         ZeroAmount(unit),
		WithdrawnAmount: ZeroAmount(unit),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return c, Event{
		CampaignID:  id,
		Type:        EventCampaignCreated,
		Actor:       organizer,
		Amount:      ZeroAmount(unit),
		TotalRaised: ZeroAmount(unit),
		Goal:        goal,
		Unit:        unit,
		OccurredAt:  now,
	}, nil
}

// Status derives the lifecycle state from the flags.
func (c *Campaign) Status() Status {
	switch {
	case c.Closed:
		return StatusClosed
	case c.GoalReached:
		return StatusOpenFunded
	default:
		return StatusOpenUnfunded
	}
}

// IsOrganizer reports whether id may withdraw from the campaign.
func (c *Campaign) IsOrganizer(id Identity) bool {
	return !id.IsZero() && c.Organizer.Equal(id)
}

// Donate accepts amount from donor. The goal flag flips, and GoalReached is
// emitted, only on the donation that first takes TotalRaised to the goal.
// Donations keep being accepted after that until the campaign is closed.
// On error the campaign is left untouched.
func (c *Campaign) Donate(amount Amount, donor Identity, now time.Time) (Receipt, []Event, error) {
	if c.Closed {
		return Receipt{}, nil, ErrCampaignClosed
	}
	if amount.IsZero() {
		return Receipt{}, nil, fmt.Errorf("%w: donation must be greater than zero", ErrInvalidAmount)
	}
	total, err := c.TotalRaised.Add(amount)
	if err != nil {
		return Receipt{}, nil, err
	}
	balance, err := c.Balance.Add(amount)
	if err != nil {
		return Receipt{}, nil, err
	}

	c.TotalRaised = total
	c.Balance = balance
	c.Donations++
	c.UpdatedAt = now

	events := []Event{{
		CampaignID:  c.ID,
		Type:        EventDonationReceived,
		Actor:       donor,
		Amount:      amount,
		TotalRaised: total,
		Goal:        c.Goal,
		Unit:        amount.Unit(),
		OccurredAt:  now,
	}}
	if !c.GoalReached && total.Cmp(c.Goal) >= 0 {
		c.GoalReached = true
		events = append(events, Event{
			CampaignID:  c.ID,
			Type:        EventGoalReached,
			Amount:      total,
			TotalRaised: total,
			Goal:        c.Goal,
			Unit:        c.Unit,
			OccurredAt:  now,
		})
	}
	return c.receipt(amount, events), events, nil
}

// Withdraw transfers the whole balance to the organizer and closes the
// campaign. A closed campaign rejects every further withdrawal.
func (c *Campaign) Withdraw(caller Identity, now time.Time) (Receipt, []Event, error) {
	if c.Closed {
		return Receipt{}, nil, ErrCampaignClosed
	}
	if !c.IsOrganizer(caller) {
		return Receipt{}, nil, ErrUnauthorized
	}
	if !c.GoalReached {
		return Receipt{}, nil, ErrGoalNotReached
	}

	amount := c.Balance.WithUnit(c.Unit)
	c.WithdrawnAmount = amount
	c.Balance = ZeroAmount(c.Unit)
	c.Closed = true
	c.UpdatedAt = now

	events := []Event{{
		CampaignID:  c.ID,
		Type:        EventWithdrawn,
		Actor:       caller,
		Amount:      amount,
		TotalRaised: c.TotalRaised,
		Goal:        c.Goal,
		Unit:        c.Unit,
		OccurredAt:  now,
	}}
	return c.receipt(amount, events), events, nil
}

func (c *Campaign) receipt(amount Amount, events []Event) Receipt {
	return Receipt{
		CampaignID:  c.ID,
		Amount:      amount,
		TotalRaised: c.TotalRaised,
		Balance:     c.Balance,
		GoalReached: c.GoalReached,
		Closed:      c.Closed,
		Events:      events,
	}
}
