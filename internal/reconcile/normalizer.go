package reconcile

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/smallbiznis/couponview/internal/coupon/domain"
	"github.com/smallbiznis/couponview/internal/ledger"
)

// fixedAmountThreshold splits the ambiguous on-chain discount encoding:
// values above it are fixed amounts in cents, values at or below it are
// percentages in basis points. 10000 itself lands in the percentage branch
// ("100% OFF").
const fixedAmountThreshold = 10000

// FormatDiscount renders the raw on-chain discount for display.
func FormatDiscount(raw uint64) string {
	if raw > fixedAmountThreshold {
		return fmt.Sprintf("$%.2f OFF", float64(raw)/100)
	}
	return fmt.Sprintf("%d%% OFF", int64(math.Round(float64(raw)/100)))
}

// NormalizeOrganization maps a decoded ledger record onto the domain entity.
func NormalizeOrganization(raw ledger.RawOrganization) domain.Organization {
	return domain.Organization{
		ID:           strconv.FormatUint(raw.ID, 10),
		Name:         raw.Name,
		Description:  raw.Description,
		AdminAddress: raw.AdminAddress,
		Active:       raw.IsActive,
		CreatedAt:    time.Unix(raw.CreatedAt, 0).UTC(),
	}
}

// NormalizeCoupon maps a decoded ledger record onto the domain entity,
// deriving display discount, lifecycle status and expiry. The organization
// name comes from orgIndex; an unknown organization yields the sentinel name
// rather than an error. Status depends only on the ledger flags: the computed
// expiry is display-only.
func NormalizeCoupon(raw ledger.RawCoupon, orgIndex map[string]domain.Organization) domain.Coupon {
	orgID := strconv.FormatUint(raw.OrganizationID, 10)
	orgName := domain.UnknownOrganizationName
	if org, ok := orgIndex[orgID]; ok {
		orgName = org.Name
	}

	createdAt := time.Unix(raw.CreatedAt, 0).UTC()
	return domain.Coupon{
		ID:                strconv.FormatUint(raw.ID, 10),
		OrganizationID:    orgID,
		OrganizationName:  orgName,
		Code:              raw.Code,
		RawDiscountAmount: raw.DiscountAmount,
		DisplayDiscount:   FormatDiscount(raw.DiscountAmount),
		Status:            domain.DeriveStatus(raw.IsActive, raw.IsUsed),
		OwnerWallet:       raw.OwnerWallet,
		OwnerEmail:        raw.OwnerEmail,
		CreatedAt:         createdAt,
		ExpiresAt:         createdAt.Add(domain.CouponTTL),
	}
}
