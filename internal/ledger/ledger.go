// Package ledger defines the capability surface of the on-chain coupon
// contract. Consumers depend on the Reader/Writer interfaces and the decoded
// record types; the EVM-backed implementation lives in ledger/evm.
package ledger

import (
	"context"
	"errors"
)

// ReceiptStatusSuccess is the status a mined transaction reports when it
// applied. Anything else is a revert.
const ReceiptStatusSuccess = 1

// Receipt is the ledger's confirmation of a submitted write.
type Receipt struct {
	TxHash string
	Status uint64
}

// Succeeded reports whether the transaction was mined and applied.
func (r Receipt) Succeeded() bool { return r.Status == ReceiptStatusSuccess }

// PendingTx is a submitted write awaiting confirmation. Wait blocks until the
// transaction is mined or the context expires.
type PendingTx interface {
	Hash() string
	Wait(ctx context.Context) (Receipt, error)
}

// Reader exposes the contract's read calls. Identity-scoped calls
// (OwnedOrganizationIDs, OwnedCouponIDs) act on behalf of the given wallet
// address, mirroring the contract's msg.sender views.
type Reader interface {
	OwnedOrganizationIDs(ctx context.Context, identity string) ([]uint64, error)
	OwnedCouponIDs(ctx context.Context, identity string) ([]uint64, error)
	OrganizationCouponIDs(ctx context.Context, orgID uint64) ([]uint64, error)
	Organization(ctx context.Context, id uint64) (RawOrganization, error)
	Coupon(ctx context.Context, id uint64) (RawCoupon, error)
	// CouponIDByCode returns 0 when no coupon carries the code.
	CouponIDByCode(ctx context.Context, code string) (uint64, error)
}

// Writer exposes the contract's state-changing calls. Each returns a
// PendingTx; callers must wait for the receipt and check its status before
// treating the write as applied.
type Writer interface {
	CreateOrganization(ctx context.Context, name, description string) (PendingTx, error)
	CreateCoupon(ctx context.Context, orgID uint64, code string, discountAmount uint64, recipientEmail string) (PendingTx, error)
	UseCoupon(ctx context.Context, couponID uint64) (PendingTx, error)
	ShareCoupon(ctx context.Context, couponID uint64, recipientEmail string) (PendingTx, error)
	LinkCouponToWallet(ctx context.Context, code string) (PendingTx, error)
}

// Client is the full contract surface.
type Client interface {
	Reader
	Writer
}

var (
	// ErrSubmitFailed wraps a failure before a receipt exists (signing or
	// submission rejected). Distinct from a mined-but-reverted transaction.
	ErrSubmitFailed = errors.New("ledger_submit_failed")
)
