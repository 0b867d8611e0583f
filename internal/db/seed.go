package db

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
)

// Seed creates demo campaigns through the use case so that every record
// passes the same validation as live traffic. Roughly half of them are
// pushed past their goal and a few are withdrawn.
func Seed(ctx context.Context, uc port.CampaignUseCase, r *rand.Rand, campaigns int) error {
	units := []domain.Unit{domain.UnitEther, domain.UnitGwei, domain.UnitWei}
	for i := 1; i <= campaigns; i++ {
		organizer := domain.NewIdentity(fmt.Sprintf("0x%040x", i))
		unit := units[r.Intn(len(units))]
		goal, err := domain.ParseAmount(fmt.Sprintf("%d", 10+r.Intn(90)), unit)
		if err != nil {
			return err
		}
		c, err := uc.Create(ctx, port.CreateCampaignReq{
			Title:       fmt.Sprintf("Vaquinha %d", i),
			Description: fmt.Sprintf("Demo campaign %d", i),
			Goal:        goal,
			Organizer:   organizer,
		})
		if err != nil {
			return fmt.Errorf("seed campaign %d: %w", i, err)
		}

		// donate in goal/10 steps, stopping somewhere around the goal
		step, err := domain.ParseRaw(new(big.Int).Div(goal.BigInt(), big.NewInt(10)).String(), unit)
		if err != nil {
			return err
		}
		var receipt *domain.Receipt
		for j, n := 0, 5+r.Intn(8); j < n; j++ {
			donor := domain.NewIdentity(fmt.Sprintf("0x%040x", 1000+r.Intn(100)))
			if receipt, err = uc.Donate(ctx, c.ID, donor, step); err != nil {
				return fmt.Errorf("seed donation %d/%d: %w", i, j, err)
			}
		}
		if receipt != nil && receipt.GoalReached && r.Intn(2) == 0 {
			if _, err = uc.Withdraw(ctx, c.ID, organizer); err != nil {
				return fmt.Errorf("seed withdraw %d: %w", i, err)
			}
		}
	}
	return nil
}
