package domain

import "time"

// CouponTTL is the client-side display convention for coupon validity. The
// ledger never expires coupons; the computed expiry is presentation-only and
// must not influence Status.
const CouponTTL = 30 * 24 * time.Hour

// UnknownOrganizationName is substituted when a coupon references an
// organization that could not be fetched.
const UnknownOrganizationName = "Unknown Organization"

// Status is the derived lifecycle state of a coupon. It is a pure function of
// the ledger's (isActive, isUsed) flags: inactive coupons always render as
// expired, regardless of isUsed.
type Status string

const (
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// DeriveStatus implements the status table.
func DeriveStatus(isActive, isUsed bool) Status {
	switch {
	case !isActive:
		return StatusExpired
	case isUsed:
		return StatusUsed
	default:
		return StatusActive
	}
}

// Organization is a normalized organization entity. Name and Description are
// immutable on the ledger once created.
type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	AdminAddress string    `json:"admin_address"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Coupon is a normalized coupon entity with derived display fields.
type Coupon struct {
	ID                string    `json:"id"`
	OrganizationID    string    `json:"organization_id"`
	OrganizationName  string    `json:"organization_name"`
	Code              string    `json:"code"`
	RawDiscountAmount uint64    `json:"raw_discount_amount"`
	DisplayDiscount   string    `json:"display_discount"`
	Status            Status    `json:"status"`
	OwnerWallet       string    `json:"owner_wallet"`
	OwnerEmail        string    `json:"owner_email"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// StatusCounts is the per-tab coupon tally shown alongside filtered lists.
type StatusCounts struct {
	All     int `json:"all"`
	Active  int `json:"active"`
	Used    int `json:"used"`
	Expired int `json:"expired"`
}

// DashboardStats summarizes a wallet's materialized view.
type DashboardStats struct {
	TotalCoupons  int `json:"total_coupons"`
	Organizations int `json:"organizations"`
}

// Activity is a human-readable event reconstructed from ledger state.
type Activity struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Dashboard is the aggregate read model behind the dashboard endpoint.
type Dashboard struct {
	Stats        DashboardStats `json:"stats"`
	Activity     []Activity     `json:"activity"`
	ExpiringSoon []Coupon       `json:"expiring_soon"`
}

// OrganizationDetails is an organization together with its coupons,
// newest-first, and their status tally.
type OrganizationDetails struct {
	Organization Organization `json:"organization"`
	Coupons      []Coupon     `json:"coupons"`
	Counts       StatusCounts `json:"counts"`
}

// Redemption is the public view of a coupon being redeemed by code.
type Redemption struct {
	Coupon       Coupon       `json:"coupon"`
	Organization Organization `json:"organization"`
}

// WriteResult reports a confirmed ledger write.
type WriteResult struct {
	TxHash string `json:"tx_hash"`
}

// ShareResult reports a confirmed share plus the independent outcome of the
// best-effort notification side-channel.
type ShareResult struct {
	TxHash    string `json:"tx_hash"`
	EmailSent bool   `json:"email_sent"`
}

// CreateCouponResult carries the generated code back to the caller.
type CreateCouponResult struct {
	TxHash string `json:"tx_hash"`
	Code   string `json:"code"`
}
