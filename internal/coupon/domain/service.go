package domain

import "context"

// Service is the coupon read-model and write surface consumed by the HTTP
// layer. Read methods serve the caller's materialized view, reconciling it
// from the ledger on first access or when refresh is forced; write methods
// follow the two-phase submit-then-receipt protocol and patch the view only
// after a success receipt.
type Service interface {
	Dashboard(ctx context.Context, identity string) (Dashboard, error)
	ListCoupons(ctx context.Context, identity string, q Query, refresh bool) ([]Coupon, StatusCounts, error)
	ListOrganizations(ctx context.Context, identity string) ([]Organization, error)
	OrganizationDetails(ctx context.Context, identity, orgID string) (OrganizationDetails, error)

	CreateOrganization(ctx context.Context, identity, name, description string) (WriteResult, error)
	CreateCoupon(ctx context.Context, identity string, req CreateCouponRequest) (CreateCouponResult, error)
	UseCoupon(ctx context.Context, identity, couponID string) (WriteResult, error)
	ShareCoupon(ctx context.Context, identity, couponID, recipientEmail string) (ShareResult, error)

	// LookupRedemption is the unauthenticated read behind the redemption
	// page; Redeem links the coupon to the caller's wallet when needed and
	// then uses it.
	LookupRedemption(ctx context.Context, code string) (Redemption, error)
	Redeem(ctx context.Context, identity, code string) (WriteResult, error)
}

// CreateCouponRequest carries the create-coupon write parameters. When Code
// is empty the service generates one from the organization name.
type CreateCouponRequest struct {
	OrganizationID string
	Code           string
	DiscountAmount uint64
	RecipientEmail string
}
