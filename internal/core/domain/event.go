package domain

import (
	"time"
)

// EventType names a campaign notification.
type EventType string

const (
	EventCampaignCreated  EventType = "campaign_created"
	EventDonationReceived EventType = "donation_received"
	EventGoalReached      EventType = "goal_reached"
	EventWithdrawn        EventType = "withdrawn"
)

// Event is a committed campaign notification. Seq is the global commit
// sequence number assigned by the store; events produced by the state
// machine carry zero until they are committed.
type Event struct {
	Seq        int64
	CampaignID CampaignID
	Type       EventType
	// Actor is the organizer for created/withdrawn and the donor for
	// donation_received. It is empty for goal_reached.
	Actor       Identity
	Amount      Amount
	TotalRaised Amount
	Goal        Amount
	Unit        Unit
	OccurredAt  time.Time
}

// Receipt describes the outcome of a committed donate or withdraw call.
type Receipt struct {
	CampaignID  CampaignID
	Seq         int64 // sequence of the last event committed by the call
	Amount      Amount
	TotalRaised Amount
	Balance     Amount
	GoalReached bool
	Closed      bool
	Events      []Event
}

// Committed copies the sequence numbers of the stored events back into the
// receipt.
func (r *Receipt) Committed(events []Event) {
	r.Events = events
	for _, e := range events {
		if e.Seq > r.Seq {
			r.Seq = e.Seq
		}
	}
}
