package port

import (
	"context"

	"vaquinha/internal/core/domain"
)

// CampaignUseCase defines the business operations exposed by the ledger.
// This interface represents the primary port into the application domain.
// Every mutating call carries the caller identity explicitly.
type CampaignUseCase interface {
	// Create registers a new campaign owned by req.Organizer and returns
	// its snapshot. It fails with ErrInvalidGoal or ErrInvalidMetadata.
	Create(ctx context.Context, req CreateCampaignReq) (*domain.Campaign, error)

	// List returns every campaign id ever created, oldest first.
	List(ctx context.Context) ([]domain.CampaignID, error)

	// ListCampaigns returns snapshots of every campaign, oldest first.
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)

	// Get returns a campaign snapshot or ErrNotFound.
	Get(ctx context.Context, id domain.CampaignID) (*domain.Campaign, error)

	// Balance returns the funds currently held by the campaign.
	Balance(ctx context.Context, id domain.CampaignID) (domain.Amount, error)

	// Donate credits amount from donor to the campaign.
	Donate(ctx context.Context, id domain.CampaignID, donor domain.Identity, amount domain.Amount) (*domain.Receipt, error)

	// Withdraw moves the balance to the organizer and closes the campaign.
	Withdraw(ctx context.Context, id domain.CampaignID, caller domain.Identity) (*domain.Receipt, error)

	// Events returns committed events with Seq >= since.
	Events(ctx context.Context, since int64, limit int) ([]domain.Event, error)
}

// CreateCampaignReq carries the arguments of registry.create.
type CreateCampaignReq struct {
	Title       string
	Description string
	Goal        domain.Amount
	Organizer   domain.Identity
}
