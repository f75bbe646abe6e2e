package reconcile

import (
	"testing"
	"time"

	"github.com/smallbiznis/couponview/internal/coupon/domain"
	"github.com/smallbiznis/couponview/internal/ledger"
)

func TestFormatDiscount(t *testing.T) {
	cases := []struct {
		raw  uint64
		want string
	}{
		{0, "0% OFF"},
		{500, "5% OFF"},
		{2500, "25% OFF"},
		{1550, "16% OFF"},
		{10000, "100% OFF"},
		{10001, "$100.01 OFF"},
		{15000, "$150.00 OFF"},
	}
	for _, tc := range cases {
		if got := FormatDiscount(tc.raw); got != tc.want {
			t.Errorf("FormatDiscount(%d) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeCouponStatus(t *testing.T) {
	cases := []struct {
		name     string
		isActive bool
		isUsed   bool
		want     domain.Status
	}{
		{"active", true, false, domain.StatusActive},
		{"used", true, true, domain.StatusUsed},
		{"inactive", false, false, domain.StatusExpired},
		{"inactive wins over used", false, true, domain.StatusExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NormalizeCoupon(ledger.RawCoupon{
				ID:       1,
				IsActive: tc.isActive,
				IsUsed:   tc.isUsed,
			}, nil)
			if c.Status != tc.want {
				t.Fatalf("got %q, want %q", c.Status, tc.want)
			}
		})
	}
}

func TestNormalizeCouponStatusIgnoresComputedExpiry(t *testing.T) {
	// Created long past the display TTL but still flagged active on the
	// ledger: the ledger flags win.
	created := time.Now().Add(-90 * 24 * time.Hour).Unix()
	c := NormalizeCoupon(ledger.RawCoupon{ID: 1, IsActive: true, CreatedAt: created}, nil)
	if c.Status != domain.StatusActive {
		t.Fatalf("got %q, want %q", c.Status, domain.StatusActive)
	}
	if !c.ExpiresAt.Before(time.Now()) {
		t.Fatal("expected computed expiry in the past")
	}
}

func TestNormalizeCouponExpiry(t *testing.T) {
	created := int64(1700000000)
	c := NormalizeCoupon(ledger.RawCoupon{ID: 1, CreatedAt: created}, nil)

	wantCreated := time.Unix(created, 0).UTC()
	if !c.CreatedAt.Equal(wantCreated) {
		t.Fatalf("CreatedAt = %v, want %v", c.CreatedAt, wantCreated)
	}
	if want := wantCreated.Add(domain.CouponTTL); !c.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", c.ExpiresAt, want)
	}
}

func TestNormalizeCouponOrganizationName(t *testing.T) {
	orgIndex := map[string]domain.Organization{
		"5": {ID: "5", Name: "Acme Bakery"},
	}

	known := NormalizeCoupon(ledger.RawCoupon{ID: 1, OrganizationID: 5}, orgIndex)
	if known.OrganizationName != "Acme Bakery" {
		t.Fatalf("got %q", known.OrganizationName)
	}

	unknown := NormalizeCoupon(ledger.RawCoupon{ID: 2, OrganizationID: 9}, orgIndex)
	if unknown.OrganizationName != domain.UnknownOrganizationName {
		t.Fatalf("got %q, want sentinel", unknown.OrganizationName)
	}
}
