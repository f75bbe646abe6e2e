// Package ledgertest provides an in-memory ledger used by tests in place of a
// live contract.
package ledgertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/smallbiznis/couponview/internal/ledger"
)

// ZeroAddress mirrors the contract's unset wallet sentinel.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Fake is an in-memory ledger.Client. Failure fields let tests inject errors
// per call or per record.
type Fake struct {
	mu sync.Mutex

	Organizations map[uint64]ledger.RawOrganization
	Coupons       map[uint64]ledger.RawCoupon

	// Discovery results keyed by lower-cased identity.
	OrgsByOwner    map[string][]uint64
	CouponsByOwner map[string][]uint64
	CouponsByOrg   map[uint64][]uint64

	// Injected failures.
	FailOwnedOrganizationIDs  error
	FailOwnedCouponIDs        error
	FailOrganizationCouponIDs map[uint64]error
	FailOrganization          map[uint64]error
	FailCoupon                map[uint64]error
	FailWrites                error

	// ReceiptStatus applies to every write; defaults to success.
	ReceiptStatus *uint64

	nextID uint64
	Calls  []string
}

// New returns an empty fake ledger.
func New() *Fake {
	return &Fake{
		Organizations:  map[uint64]ledger.RawOrganization{},
		Coupons:        map[uint64]ledger.RawCoupon{},
		OrgsByOwner:    map[string][]uint64{},
		CouponsByOwner: map[string][]uint64{},
		CouponsByOrg:   map[uint64][]uint64{},
		nextID:         1,
	}
}

// AddOrganization registers an organization owned by its admin address.
func (f *Fake) AddOrganization(raw ledger.RawOrganization) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Organizations[raw.ID] = raw
	owner := strings.ToLower(raw.AdminAddress)
	f.OrgsByOwner[owner] = append(f.OrgsByOwner[owner], raw.ID)
}

// AddCoupon registers a coupon. Ownership discovery follows OwnerWallet; the
// coupon is also listed under its organization.
func (f *Fake) AddCoupon(raw ledger.RawCoupon) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Coupons[raw.ID] = raw
	if raw.OwnerWallet != "" && raw.OwnerWallet != ZeroAddress {
		owner := strings.ToLower(raw.OwnerWallet)
		f.CouponsByOwner[owner] = append(f.CouponsByOwner[owner], raw.ID)
	}
	f.CouponsByOrg[raw.OrganizationID] = append(f.CouponsByOrg[raw.OrganizationID], raw.ID)
}

func (f *Fake) record(call string) {
	f.Calls = append(f.Calls, call)
}

func (f *Fake) OwnedOrganizationIDs(ctx context.Context, identity string) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("OwnedOrganizationIDs")
	if f.FailOwnedOrganizationIDs != nil {
		return nil, f.FailOwnedOrganizationIDs
	}
	return append([]uint64(nil), f.OrgsByOwner[strings.ToLower(identity)]...), nil
}

func (f *Fake) OwnedCouponIDs(ctx context.Context, identity string) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("OwnedCouponIDs")
	if f.FailOwnedCouponIDs != nil {
		return nil, f.FailOwnedCouponIDs
	}
	return append([]uint64(nil), f.CouponsByOwner[strings.ToLower(identity)]...), nil
}

func (f *Fake) OrganizationCouponIDs(ctx context.Context, orgID uint64) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("OrganizationCouponIDs(%d)", orgID))
	if err := f.FailOrganizationCouponIDs[orgID]; err != nil {
		return nil, err
	}
	return append([]uint64(nil), f.CouponsByOrg[orgID]...), nil
}

func (f *Fake) Organization(ctx context.Context, id uint64) (ledger.RawOrganization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FailOrganization[id]; err != nil {
		return ledger.RawOrganization{}, err
	}
	raw, ok := f.Organizations[id]
	if !ok {
		return ledger.RawOrganization{}, fmt.Errorf("organization %d not found", id)
	}
	return raw, nil
}

func (f *Fake) Coupon(ctx context.Context, id uint64) (ledger.RawCoupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FailCoupon[id]; err != nil {
		return ledger.RawCoupon{}, err
	}
	raw, ok := f.Coupons[id]
	if !ok {
		return ledger.RawCoupon{}, fmt.Errorf("coupon %d not found", id)
	}
	return raw, nil
}

func (f *Fake) CouponIDByCode(ctx context.Context, code string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.Coupons {
		if c.Code == code {
			return id, nil
		}
	}
	return 0, nil
}

func (f *Fake) receipt() ledger.Receipt {
	status := uint64(ledger.ReceiptStatusSuccess)
	if f.ReceiptStatus != nil {
		status = *f.ReceiptStatus
	}
	return ledger.Receipt{TxHash: fmt.Sprintf("0xfake%04d", len(f.Calls)), Status: status}
}

func (f *Fake) submit(call string, apply func()) (ledger.PendingTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call)
	if f.FailWrites != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrSubmitFailed, f.FailWrites)
	}
	receipt := f.receipt()
	if receipt.Succeeded() && apply != nil {
		apply()
	}
	return &pendingTx{receipt: receipt}, nil
}

func (f *Fake) CreateOrganization(ctx context.Context, name, description string) (ledger.PendingTx, error) {
	return f.submit("CreateOrganization", func() {
		id := f.nextID
		f.nextID++
		f.Organizations[id] = ledger.RawOrganization{ID: id, Name: name, Description: description, IsActive: true}
	})
}

func (f *Fake) CreateCoupon(ctx context.Context, orgID uint64, code string, discountAmount uint64, recipientEmail string) (ledger.PendingTx, error) {
	return f.submit("CreateCoupon", func() {
		id := f.nextID
		f.nextID++
		raw := ledger.RawCoupon{
			ID:             id,
			OrganizationID: orgID,
			Code:           code,
			DiscountAmount: discountAmount,
			IsActive:       true,
			OwnerWallet:    ZeroAddress,
			OwnerEmail:     recipientEmail,
		}
		f.Coupons[id] = raw
		f.CouponsByOrg[orgID] = append(f.CouponsByOrg[orgID], id)
	})
}

func (f *Fake) UseCoupon(ctx context.Context, couponID uint64) (ledger.PendingTx, error) {
	return f.submit("UseCoupon", func() {
		c := f.Coupons[couponID]
		c.IsUsed = true
		f.Coupons[couponID] = c
	})
}

func (f *Fake) ShareCoupon(ctx context.Context, couponID uint64, recipientEmail string) (ledger.PendingTx, error) {
	return f.submit("ShareCoupon", func() {
		c := f.Coupons[couponID]
		c.OwnerEmail = recipientEmail
		c.OwnerWallet = ZeroAddress
		f.Coupons[couponID] = c
	})
}

func (f *Fake) LinkCouponToWallet(ctx context.Context, code string) (ledger.PendingTx, error) {
	return f.submit("LinkCouponToWallet", nil)
}

type pendingTx struct {
	receipt ledger.Receipt
}

func (p *pendingTx) Hash() string { return p.receipt.TxHash }

func (p *pendingTx) Wait(ctx context.Context) (ledger.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Receipt{}, err
	}
	return p.receipt, nil
}
