package view

import (
	"sort"
	"time"

	"github.com/smallbiznis/couponview/internal/coupon/domain"
)

const (
	activityLimit     = 10
	expiringSoonLimit = 5
	expiringWindow    = 7 * 24 * time.Hour
)

// BuildDashboard assembles the dashboard read model from the materialized
// view: totals, a reconstructed activity feed and the coupons whose computed
// expiry falls inside the upcoming window.
func BuildDashboard(v *View, now time.Time) domain.Dashboard {
	coupons := v.Coupons()
	orgs := v.Organizations()

	return domain.Dashboard{
		Stats: domain.DashboardStats{
			TotalCoupons:  len(coupons),
			Organizations: len(orgs),
		},
		Activity:     buildActivity(coupons, orgs),
		ExpiringSoon: expiringSoon(coupons, now),
	}
}

// buildActivity merges organization and coupon events newest-first. A used
// coupon ranks just above its own creation, so redemption shows before the
// create entry for the same timestamp.
func buildActivity(coupons []domain.Coupon, orgs []domain.Organization) []domain.Activity {
	events := make([]domain.Activity, 0, len(orgs)+len(coupons))
	for _, org := range orgs {
		events = append(events, domain.Activity{
			ID:         "org-" + org.ID,
			Title:      "Organization created",
			Message:    org.Name + " was created",
			OccurredAt: org.CreatedAt,
		})
	}
	for _, c := range coupons {
		if c.Status == domain.StatusUsed {
			events = append(events, domain.Activity{
				ID:         "coupon-used-" + c.ID,
				Title:      "Coupon redeemed",
				Message:    c.DisplayDiscount + " at " + c.OrganizationName,
				OccurredAt: c.CreatedAt.Add(time.Second),
			})
			continue
		}
		events = append(events, domain.Activity{
			ID:         "coupon-created-" + c.ID,
			Title:      "New coupon created",
			Message:    c.DisplayDiscount + " at " + c.OrganizationName,
			OccurredAt: c.CreatedAt,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
	if len(events) > activityLimit {
		events = events[:activityLimit]
	}
	return events
}

// expiringSoon lists still-active coupons expiring within the window,
// soonest first.
func expiringSoon(coupons []domain.Coupon, now time.Time) []domain.Coupon {
	cutoff := now.Add(expiringWindow)
	out := make([]domain.Coupon, 0, expiringSoonLimit)
	for _, c := range coupons {
		if c.Status != domain.StatusActive {
			continue
		}
		if c.ExpiresAt.Before(now) || c.ExpiresAt.After(cutoff) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	if len(out) > expiringSoonLimit {
		out = out[:expiringSoonLimit]
	}
	return out
}
