package httpadapter

import (
	"encoding/json"
	"time"

	"vaquinha/internal/core/domain"
)

// amountDTO renders an amount both as raw wei and in its display unit.
type amountDTO struct {
	Wei   string `json:"wei"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

func toAmountDTO(a domain.Amount) amountDTO {
	return amountDTO{Wei: a.RawString(), Value: a.Display(a.Unit()), Unit: string(a.Unit())}
}

type campaignDTO struct {
	ID              string    `json:"id"`
	Position        int64     `json:"position"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Goal            amountDTO `json:"goal"`
	Unit            string    `json:"unit"`
	Organizer       string    `json:"organizer"`
	TotalRaised     amountDTO `json:"total_raised"`
	Balance         amountDTO `json:"balance"`
	GoalReached     bool      `json:"goal_reached"`
	Closed          bool      `json:"closed"`
	Status          string    `json:"status"`
	Donations       int64     `json:"donations"`
	WithdrawnAmount amountDTO `json:"withdrawn_amount"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toCampaignDTO(c *domain.Campaign) campaignDTO {
	return campaignDTO{
		ID:              c.ID.String(),
		Position:        c.Position,
		Title:           c.Title,
		Description:     c.Description,
		Goal:            toAmountDTO(c.Goal),
		Unit:            string(c.Unit),
		Organizer:       c.Organizer.String(),
		TotalRaised:     toAmountDTO(c.TotalRaised),
		Balance:         toAmountDTO(c.Balance),
		GoalReached:     c.GoalReached,
		Closed:          c.Closed,
		Status:          string(c.Status()),
		Donations:       c.Donations,
		WithdrawnAmount: toAmountDTO(c.WithdrawnAmount),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type eventDTO struct {
	Seq         int64     `json:"seq"`
	CampaignID  string    `json:"campaign_id"`
	Type        string    `json:"type"`
	Actor       string    `json:"actor,omitempty"`
	Amount      amountDTO `json:"amount"`
	TotalRaised amountDTO `json:"total_raised"`
	Goal        amountDTO `json:"goal"`
	Unit        string    `json:"unit"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func toEventDTO(e domain.Event) eventDTO {
	return eventDTO{
		Seq:         e.Seq,
		CampaignID:  e.CampaignID.String(),
		Type:        string(e.Type),
		Actor:       e.Actor.String(),
		Amount:      toAmountDTO(e.Amount),
		TotalRaised: toAmountDTO(e.TotalRaised),
		Goal:        toAmountDTO(e.Goal),
		Unit:        string(e.Unit),
		OccurredAt:  e.OccurredAt,
	}
}

func toEventDTOs(events []domain.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventDTO(e))
	}
	return out
}

type receiptDTO struct {
	CampaignID  string     `json:"campaign_id"`
	Seq         int64      `json:"seq"`
	Amount      amountDTO  `json:"amount"`
	TotalRaised amountDTO  `json:"total_raised"`
	Balance     amountDTO  `json:"balance"`
	GoalReached bool       `json:"goal_reached"`
	Closed      bool       `json:"closed"`
	Events      []eventDTO `json:"events"`
}

func toReceiptDTO(r *domain.Receipt) receiptDTO {
	return receiptDTO{
		CampaignID:  r.CampaignID.String(),
		Seq:         r.Seq,
		Amount:      toAmountDTO(r.Amount),
		TotalRaised: toAmountDTO(r.TotalRaised),
		Balance:     toAmountDTO(r.Balance),
		GoalReached: r.GoalReached,
		Closed:      r.Closed,
		Events:      toEventDTOs(r.Events),
	}
}

// createCampaignRequest is the body of POST /campaigns. Goal may be sent as
// a JSON number or a numeric string and is read in Unit (default ether).
type createCampaignRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Goal        json.Number `json:"goal"`
	Unit        string      `json:"unit"`
}

// donateRequest is the body of POST /campaigns/{id}/donations.
type donateRequest struct {
	Value json.Number `json:"value"`
	Unit  string      `json:"unit"`
}
