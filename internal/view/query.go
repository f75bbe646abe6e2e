package view

import (
	"sort"
	"strings"

	"github.com/smallbiznis/couponview/internal/coupon/domain"
)

// Filter applies the query to a coupon list. It is pure: no ledger
// interaction, input untouched, ties keep their original materialized order.
func Filter(coupons []domain.Coupon, q domain.Query) []domain.Coupon {
	q, _ = q.Normalize()

	out := make([]domain.Coupon, 0, len(coupons))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, c := range coupons {
		if q.Tab != domain.TabAll && c.Status != domain.Status(q.Tab) {
			continue
		}
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		out = append(out, c)
	}

	switch q.Sort {
	case domain.SortExpiring:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ExpiresAt.Before(out[j].ExpiresAt)
		})
	case domain.SortOrganization:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].OrganizationName) < strings.ToLower(out[j].OrganizationName)
		})
	default: // newest
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// matchesSearch is case-insensitive OR over code, organization name and
// display discount.
func matchesSearch(c domain.Coupon, search string) bool {
	return strings.Contains(strings.ToLower(c.Code), search) ||
		strings.Contains(strings.ToLower(c.OrganizationName), search) ||
		strings.Contains(strings.ToLower(c.DisplayDiscount), search)
}

// CountByStatus tallies coupons per status tab.
func CountByStatus(coupons []domain.Coupon) domain.StatusCounts {
	counts := domain.StatusCounts{All: len(coupons)}
	for _, c := range coupons {
		switch c.Status {
		case domain.StatusActive:
			counts.Active++
		case domain.StatusUsed:
			counts.Used++
		case domain.StatusExpired:
			counts.Expired++
		}
	}
	return counts
}
