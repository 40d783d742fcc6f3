package services

import (
	"context"
	"time"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/rules"

	"golang.org/x/sync/errgroup"
)

type dashboardCounts interface {
	CountActiveDonors(ctx context.Context) (int64, error)
	CountRequests(ctx context.Context, status rules.RequestStatus) (int64, error)
	CountAppointmentsOn(ctx context.Context, date string) (int64, error)
	CountDonationsSince(ctx context.Context, since time.Time) (int64, error)
}

// Dashboard is the admin overview
type Dashboard struct {
	ActiveDonors       int64 `json:"activeDonors"`
	ActiveRequests     int64 `json:"activeRequests"`
	TodayAppointments  int64 `json:"todayAppointments"`
	DonationsThisMonth int64 `json:"donationsThisMonth"`
}

type DashboardService struct {
	counts dashboardCounts
	now    func() time.Time
}

func NewDashboardService(counts dashboardCounts) *DashboardService {
	return &DashboardService{counts: counts, now: time.Now}
}

// Overview runs the four counts concurrently
func (s *DashboardService) Overview(ctx context.Context) (*Dashboard, error) {
	now := s.now().UTC()
	today := now.Format(time.DateOnly)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.ActiveDonors, err = s.counts.CountActiveDonors(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.ActiveRequests, err = s.counts.CountRequests(gctx, rules.RequestActive)
		return err
	})
	g.Go(func() (err error) {
		d.TodayAppointments, err = s.counts.CountAppointmentsOn(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		d.DonationsThisMonth, err = s.counts.CountDonationsSince(gctx, monthStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Internal(err)
	}
	return &d, nil
}
