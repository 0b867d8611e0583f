package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"vaquinha/internal/adapter/memory"
	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
	"vaquinha/internal/core/port/mocks"
)

var (
	fixedNow  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	organizer = domain.NewIdentity("0xOrganizer")
	donor     = domain.NewIdentity("0xDonor")
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func ether(t *testing.T, s string) domain.Amount {
	t.Helper()
	a, err := domain.FromWhole(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return a
}

func newTestUseCase(repo port.CampaignRepository, pub port.EventPublisher) *CampaignUseCase {
	return NewCampaignUseCase(repo, pub, discard(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() domain.CampaignID { return "c1" }))
}

// sequenced stamps events the way a store would.
func sequenced(from int64, events []domain.Event) []domain.Event {
	out := make([]domain.Event, len(events))
	for i, e := range events {
		e.Seq = from + int64(i)
		out[i] = e
	}
	return out
}

// TestCreate ensures a valid campaign is stored and its creation event published.
func TestCreate(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	pub := mocks.NewMockEventPublisher(t)

	repo.EXPECT().
		Create(mock.Anything, mock.AnythingOfType("*domain.Campaign"), mock.Anything).
		RunAndReturn(func(_ context.Context, c *domain.Campaign, events []domain.Event) ([]domain.Event, error) {
			c.Position = 1
			return sequenced(1, events), nil
		})
	pub.EXPECT().
		Publish(mock.Anything, mock.MatchedBy(func(events []domain.Event) bool {
			return len(events) == 1 && events[0].Type == domain.EventCampaignCreated && events[0].Seq == 1
		})).
		Return(nil)

	svc := newTestUseCase(repo, pub)
	c, err := svc.Create(context.Background(), port.CreateCampaignReq{
		Title:       "Party",
		Description: "drinks",
		Goal:        ether(t, "10"),
		Organizer:   organizer,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if c.ID != "c1" || c.Position != 1 {
		t.Fatalf("unexpected campaign %s at %d", c.ID, c.Position)
	}
	if !c.CreatedAt.Equal(fixedNow) {
		t.Fatalf("expected clock time, got %v", c.CreatedAt)
	}
}

// TestCreateValidation ensures invalid requests never reach the repository.
func TestCreateValidation(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	svc := newTestUseCase(repo, nil)

	cases := []struct {
		name string
		req  port.CreateCampaignReq
		want error
	}{
		{"zero goal", port.CreateCampaignReq{Title: "t", Description: "d", Goal: domain.ZeroAmount(domain.UnitEther), Organizer: organizer}, domain.ErrInvalidGoal},
		{"empty title", port.CreateCampaignReq{Title: " ", Description: "d", Goal: ether(t, "1"), Organizer: organizer}, domain.ErrInvalidMetadata},
		{"empty description", port.CreateCampaignReq{Title: "t", Goal: ether(t, "1"), Organizer: organizer}, domain.ErrInvalidMetadata},
		{"no organizer", port.CreateCampaignReq{Title: "t", Description: "d", Goal: ether(t, "1")}, domain.ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

// TestDonateRejectsAnonymousDonor ensures a donation needs an identity.
func TestDonateRejectsAnonymousDonor(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	svc := newTestUseCase(repo, nil)

	_, err := svc.Donate(context.Background(), "c1", "", ether(t, "1"))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// TestDonatePublishesCommittedEvents ensures the receipt carries the store's sequence numbers.
func TestDonatePublishesCommittedEvents(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	pub := mocks.NewMockEventPublisher(t)

	c, _, err := domain.NewCampaign("c1", "t", "d", ether(t, "10"), organizer, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	repo.EXPECT().
		Update(mock.Anything, domain.CampaignID("c1"), mock.Anything).
		RunAndReturn(func(_ context.Context, _ domain.CampaignID, fn port.MutateFunc) ([]domain.Event, error) {
			events, err := fn(c)
			if err != nil {
				return nil, err
			}
			return sequenced(7, events), nil
		})
	pub.EXPECT().
		Publish(mock.Anything, mock.MatchedBy(func(events []domain.Event) bool {
			return len(events) == 2 && events[1].Type == domain.EventGoalReached
		})).
		Return(nil)

	svc := newTestUseCase(repo, pub)
	receipt, err := svc.Donate(context.Background(), "c1", donor, ether(t, "12"))
	if err != nil {
		t.Fatalf("Donate error: %v", err)
	}
	if receipt.Seq != 8 {
		t.Fatalf("expected last seq 8, got %d", receipt.Seq)
	}
	if !receipt.GoalReached || receipt.Closed {
		t.Fatalf("unexpected receipt flags %+v", receipt)
	}
	if receipt.TotalRaised.Display(domain.UnitEther) != "12" {
		t.Fatalf("unexpected total %s", receipt.TotalRaised)
	}
}

// TestPublishFailureDoesNotFailTransition ensures a broken publisher only logs.
func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	pub := mocks.NewMockEventPublisher(t)

	c, _, _ := domain.NewCampaign("c1", "t", "d", ether(t, "1"), organizer, fixedNow)
	repo.EXPECT().
		Update(mock.Anything, domain.CampaignID("c1"), mock.Anything).
		RunAndReturn(func(_ context.Context, _ domain.CampaignID, fn port.MutateFunc) ([]domain.Event, error) {
			events, err := fn(c)
			return sequenced(1, events), err
		})
	pub.EXPECT().Publish(mock.Anything, mock.Anything).Return(errors.New("redis down"))

	svc := newTestUseCase(repo, pub)
	if _, err := svc.Donate(context.Background(), "c1", donor, ether(t, "1")); err != nil {
		t.Fatalf("Donate error: %v", err)
	}
}

// TestWithdrawErrorsPassThrough ensures domain errors surface unchanged and nothing is published.
func TestWithdrawErrorsPassThrough(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	pub := mocks.NewMockEventPublisher(t)

	c, _, _ := domain.NewCampaign("c1", "t", "d", ether(t, "10"), organizer, fixedNow)
	repo.EXPECT().
		Update(mock.Anything, domain.CampaignID("c1"), mock.Anything).
		RunAndReturn(func(_ context.Context, _ domain.CampaignID, fn port.MutateFunc) ([]domain.Event, error) {
			return fn(c)
		})

	svc := newTestUseCase(repo, pub)
	_, err := svc.Withdraw(context.Background(), "c1", organizer)
	if !errors.Is(err, domain.ErrGoalNotReached) {
		t.Fatalf("expected ErrGoalNotReached, got %v", err)
	}
	_, err = svc.Withdraw(context.Background(), "c1", donor)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// TestBalance ensures the balance is read from the stored snapshot.
func TestBalance(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	c, _, _ := domain.NewCampaign("c1", "t", "d", ether(t, "10"), organizer, fixedNow)
	c.Balance = ether(t, "3")
	repo.EXPECT().Get(mock.Anything, domain.CampaignID("c1")).Return(c, nil)
	repo.EXPECT().Get(mock.Anything, domain.CampaignID("nope")).Return(nil, domain.ErrNotFound)

	svc := newTestUseCase(repo, nil)
	bal, err := svc.Balance(context.Background(), "c1")
	if err != nil || bal.Display(domain.UnitEther) != "3" {
		t.Fatalf("unexpected balance %s, %v", bal, err)
	}
	if _, err := svc.Balance(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestEventsClampsLimit ensures the page size stays within bounds.
func TestEventsClampsLimit(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	repo.EXPECT().EventsSince(mock.Anything, int64(0), defaultEventsLimit).Return(nil, nil).Once()
	repo.EXPECT().EventsSince(mock.Anything, int64(5), maxEventsLimit).Return(nil, nil).Once()

	svc := newTestUseCase(repo, nil)
	if _, err := svc.Events(context.Background(), -3, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Events(context.Background(), 5, 1_000_000); err != nil {
		t.Fatal(err)
	}
}

// TestConcurrentDonations ensures concurrent donors never lose a donation
// and the goal is signalled exactly once.
func TestConcurrentDonations(t *testing.T) {
	repo := memory.NewCampaignRepository()
	svc := NewCampaignUseCase(repo, nil, discard())

	c, err := svc.Create(context.Background(), port.CreateCampaignReq{
		Title: "t", Description: "d", Goal: ether(t, "25"), Organizer: organizer,
	})
	if err != nil {
		t.Fatal(err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		reached int
	)
	half := ether(t, "0.5")
	count := 100
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer wg.Done()
			r, err := svc.Donate(context.Background(), c.ID, donor, half)
			if err != nil {
				t.Errorf("Donate error: %v", err)
				return
			}
			if hasEvent(r.Events, domain.EventGoalReached) {
				mu.Lock()
				reached++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if reached != 1 {
		t.Fatalf("goal reached %d times, want 1", reached)
	}
	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	// 100 donations of 0.5 -> 50
	if got.TotalRaised.Display(domain.UnitEther) != "50" {
		t.Fatalf("unexpected total after concurrency: got %s, want 50 ether", got.TotalRaised)
	}

	r, err := svc.Withdraw(context.Background(), c.ID, organizer)
	if err != nil {
		t.Fatalf("Withdraw error: %v", err)
	}
	if r.Amount.Display(domain.UnitEther) != "50" || !r.Balance.IsZero() {
		t.Fatalf("unexpected withdrawal receipt %+v", r)
	}
	if _, err := svc.Donate(context.Background(), c.ID, donor, ether(t, "1")); !errors.Is(err, domain.ErrCampaignClosed) {
		t.Fatalf("expected ErrCampaignClosed, got %v", err)
	}
}
