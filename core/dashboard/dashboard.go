// Package dashboard aggregates the back-office counters of a tenant.
package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/edvise/core/reservation"
	"github.com/trezcool/edvise/core/writing"
)

const upcomingWindow = 7 * 24 * time.Hour

type (
	ReservationCounter interface {
		StatusCounts(ctx context.Context, tenantID string) (map[reservation.Status]int, error)
		CountUpcoming(ctx context.Context, tenantID string, within time.Duration) (int, error)
	}

	OrderCounter interface {
		StatusCounts(ctx context.Context, tenantID string) (map[writing.Status]int, error)
	}

	ProofCounter interface {
		PendingCount(ctx context.Context, tenantID string) (int, error)
	}

	Stats struct {
		Reservations     map[reservation.Status]int `json:"reservations"`
		WritingOrders    map[writing.Status]int     `json:"writing_orders"`
		PendingProofs    int                        `json:"pending_payment_proofs"`
		UpcomingThisWeek int                        `json:"upcoming_tests_next_7_days"`
	}

	Service struct {
		reservations ReservationCounter
		orders       OrderCounter
		proofs       ProofCounter
	}
)

func NewService(reservations ReservationCounter, orders OrderCounter, proofs ProofCounter) *Service {
	return &Service{reservations: reservations, orders: orders, proofs: proofs}
}

// Stats gathers the counters concurrently; the first failure cancels the others.
func (svc *Service) Stats(ctx context.Context, tenantID string) (Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Reservations, err = svc.reservations.StatusCounts(ctx, tenantID)
		return errors.Wrap(err, "reservation counts")
	})
	g.Go(func() (err error) {
		stats.WritingOrders, err = svc.orders.StatusCounts(ctx, tenantID)
		return errors.Wrap(err, "writing order counts")
	})
	g.Go(func() (err error) {
		stats.PendingProofs, err = svc.proofs.PendingCount(ctx, tenantID)
		return errors.Wrap(err, "pending payment proofs")
	})
	g.Go(func() (err error) {
		stats.UpcomingThisWeek, err = svc.reservations.CountUpcoming(ctx, tenantID, upcomingWindow)
		return errors.Wrap(err, "upcoming tests")
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
