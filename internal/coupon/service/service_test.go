package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/config"
	"github.com/smallbiznis/couponview/internal/coupon/domain"
	"github.com/smallbiznis/couponview/internal/ledger"
	"github.com/smallbiznis/couponview/internal/ledger/ledgertest"
	"github.com/smallbiznis/couponview/internal/notify"
	"github.com/smallbiznis/couponview/internal/reconcile"
	"github.com/smallbiznis/couponview/internal/session"
)

const wallet = "0xAAAA000000000000000000000000000000000001"

func newTestService(t *testing.T, fake *ledgertest.Fake) (*Service, *session.Store, *session.Gate) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	cfg := config.Config{
		Ledger: config.LedgerConfig{
			CallTimeout:      5 * time.Second,
			ReceiptTimeout:   5 * time.Second,
			ReconcileTimeout: 5 * time.Second,
		},
	}

	store := session.NewStore(time.Minute)
	gate := session.NewGate()
	svc := NewService(ServiceParam{
		Cfg:        cfg,
		Log:        zap.NewNop(),
		Ledger:     fake,
		Reconciler: reconcile.NewReconciler(fake, zap.NewNop()),
		Sessions:   store,
		Gate:       gate,
		Notifier:   notify.New(notify.Config{}, zap.NewNop()),
		GenID:      node,
	}).(*Service)
	return svc, store, gate
}

func seedCoupon(fake *ledgertest.Fake, id uint64, owner string) {
	fake.AddCoupon(ledger.RawCoupon{
		ID:             id,
		OrganizationID: 1,
		Code:           "ACM-100",
		DiscountAmount: 1500,
		IsActive:       true,
		OwnerWallet:    owner,
		CreatedAt:      time.Now().Unix(),
	})
}

func seedOrganization(fake *ledgertest.Fake, id uint64, admin string) {
	fake.AddOrganization(ledger.RawOrganization{
		ID:           id,
		Name:         "Acme Bakery",
		Description:  "pastries",
		AdminAddress: admin,
		IsActive:     true,
		CreatedAt:    time.Now().Unix(),
	})
}

func TestListCouponsCachesView(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, wallet)
	svc, _, _ := newTestService(t, fake)

	coupons, counts, err := svc.ListCoupons(context.Background(), wallet, domain.Query{}, false)
	if err != nil {
		t.Fatalf("ListCoupons: %v", err)
	}
	if len(coupons) != 1 || counts.Active != 1 {
		t.Fatalf("got %d coupons, %+v counts", len(coupons), counts)
	}

	calls := len(fake.Calls)
	if _, _, err := svc.ListCoupons(context.Background(), wallet, domain.Query{}, false); err != nil {
		t.Fatalf("second ListCoupons: %v", err)
	}
	if len(fake.Calls) != calls {
		t.Fatalf("cached read hit the ledger: %v", fake.Calls[calls:])
	}
}

func TestListCouponsRefreshRebuilds(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	svc, _, _ := newTestService(t, fake)

	if _, _, err := svc.ListCoupons(context.Background(), wallet, domain.Query{}, false); err != nil {
		t.Fatalf("ListCoupons: %v", err)
	}
	seedCoupon(fake, 10, wallet)

	coupons, _, err := svc.ListCoupons(context.Background(), wallet, domain.Query{}, true)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(coupons) != 1 {
		t.Fatalf("refresh did not pick up new coupon, got %d", len(coupons))
	}
}

func TestListCouponsRejectsUnknownTab(t *testing.T) {
	svc, _, _ := newTestService(t, ledgertest.New())
	_, _, err := svc.ListCoupons(context.Background(), wallet, domain.Query{Tab: "archived"}, false)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestIdentityRequired(t *testing.T) {
	svc, _, _ := newTestService(t, ledgertest.New())
	if _, err := svc.Dashboard(context.Background(), "  "); !errors.Is(err, domain.ErrIdentityRequired) {
		t.Fatalf("Dashboard: want ErrIdentityRequired, got %v", err)
	}
	if _, err := svc.UseCoupon(context.Background(), "", "10"); !errors.Is(err, domain.ErrIdentityRequired) {
		t.Fatalf("UseCoupon: want ErrIdentityRequired, got %v", err)
	}
}

func TestUseCouponPatchesView(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, wallet)
	svc, store, _ := newTestService(t, fake)

	if _, _, err := svc.ListCoupons(context.Background(), wallet, domain.Query{}, false); err != nil {
		t.Fatalf("ListCoupons: %v", err)
	}

	res, err := svc.UseCoupon(context.Background(), wallet, "10")
	if err != nil {
		t.Fatalf("UseCoupon: %v", err)
	}
	if res.TxHash == "" {
		t.Fatal("missing tx hash")
	}

	v, ok := store.Get(wallet)
	if !ok {
		t.Fatal("view evicted")
	}
	c, ok := v.Coupon("10")
	if !ok || c.Status != domain.StatusUsed {
		t.Fatalf("view not patched: %+v", c)
	}
}

func TestUseCouponRevertedLeavesViewUntouched(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, wallet)
	reverted := uint64(0)
	fake.ReceiptStatus = &reverted
	svc, store, _ := newTestService(t, fake)

	if _, _, err := svc.ListCoupons(context.Background(), wallet, domain.Query{}, false); err != nil {
		t.Fatalf("ListCoupons: %v", err)
	}

	_, err := svc.UseCoupon(context.Background(), wallet, "10")
	if !errors.Is(err, domain.ErrTransactionReverted) {
		t.Fatalf("want ErrTransactionReverted, got %v", err)
	}

	v, _ := store.Get(wallet)
	if c, _ := v.Coupon("10"); c.Status != domain.StatusActive {
		t.Fatalf("reverted write patched the view: %+v", c)
	}
}

func TestUseCouponSubmitRejected(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, wallet)
	fake.FailWrites = errors.New("nonce too low")
	svc, _, _ := newTestService(t, fake)

	_, err := svc.UseCoupon(context.Background(), wallet, "10")
	if !errors.Is(err, domain.ErrTransactionRejected) {
		t.Fatalf("want ErrTransactionRejected, got %v", err)
	}
}

func TestWriteGateRejectsConcurrentWrite(t *testing.T) {
	fake := ledgertest.New()
	seedCoupon(fake, 10, wallet)
	svc, _, gate := newTestService(t, fake)

	if !gate.TryAcquire(wallet) {
		t.Fatal("gate pre-acquire failed")
	}
	defer gate.Release(wallet)

	_, err := svc.UseCoupon(context.Background(), wallet, "10")
	if !errors.Is(err, domain.ErrWriteInFlight) {
		t.Fatalf("want ErrWriteInFlight, got %v", err)
	}
}

func TestCreateCouponGeneratesCode(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	svc, _, _ := newTestService(t, fake)

	res, err := svc.CreateCoupon(context.Background(), wallet, domain.CreateCouponRequest{
		OrganizationID: "1",
		DiscountAmount: 2500,
		RecipientEmail: "friend@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if !strings.HasPrefix(res.Code, "ACM-") {
		t.Fatalf("code %q lacks organization prefix", res.Code)
	}

	res2, err := svc.CreateCoupon(context.Background(), wallet, domain.CreateCouponRequest{
		OrganizationID: "1",
		DiscountAmount: 2500,
		RecipientEmail: "friend@example.com",
	})
	if err != nil {
		t.Fatalf("second CreateCoupon: %v", err)
	}
	if res.Code == res2.Code {
		t.Fatalf("generated codes collide: %q", res.Code)
	}
}

func TestCreateCouponKeepsExplicitCode(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	svc, _, _ := newTestService(t, fake)

	res, err := svc.CreateCoupon(context.Background(), wallet, domain.CreateCouponRequest{
		OrganizationID: "1",
		Code:           "SUMMER25",
		DiscountAmount: 2500,
		RecipientEmail: "friend@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if res.Code != "SUMMER25" {
		t.Fatalf("explicit code rewritten to %q", res.Code)
	}
}

func TestShareCouponDropsFromView(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, wallet)
	svc, store, _ := newTestService(t, fake)

	if _, _, err := svc.ListCoupons(context.Background(), wallet, domain.Query{}, false); err != nil {
		t.Fatalf("ListCoupons: %v", err)
	}

	res, err := svc.ShareCoupon(context.Background(), wallet, "10", "friend@example.com")
	if err != nil {
		t.Fatalf("ShareCoupon: %v", err)
	}
	// The notifier is disabled in tests, so the share succeeds with the
	// email flag down.
	if res.EmailSent {
		t.Fatal("EmailSent reported true with notifier disabled")
	}

	v, _ := store.Get(wallet)
	if _, ok := v.Coupon("10"); ok {
		t.Fatal("shared coupon still in view")
	}
}

func TestLookupRedemption(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, ledgertest.ZeroAddress)
	svc, _, _ := newTestService(t, fake)

	red, err := svc.LookupRedemption(context.Background(), "ACM-100")
	if err != nil {
		t.Fatalf("LookupRedemption: %v", err)
	}
	if red.Coupon.Code != "ACM-100" || red.Organization.Name != "Acme Bakery" {
		t.Fatalf("unexpected redemption: %+v", red)
	}
}

func TestLookupRedemptionErrors(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	fake.AddCoupon(ledger.RawCoupon{ID: 20, OrganizationID: 1, Code: "USED", IsUsed: true, IsActive: true})
	fake.AddCoupon(ledger.RawCoupon{ID: 21, OrganizationID: 1, Code: "DEAD", IsActive: false})
	svc, _, _ := newTestService(t, fake)

	if _, err := svc.LookupRedemption(context.Background(), "NOPE"); !errors.Is(err, domain.ErrCouponNotFound) {
		t.Fatalf("missing code: want ErrCouponNotFound, got %v", err)
	}
	if _, err := svc.LookupRedemption(context.Background(), "USED"); !errors.Is(err, domain.ErrCouponAlreadyUsed) {
		t.Fatalf("used: want ErrCouponAlreadyUsed, got %v", err)
	}
	if _, err := svc.LookupRedemption(context.Background(), "DEAD"); !errors.Is(err, domain.ErrCouponInactive) {
		t.Fatalf("inactive: want ErrCouponInactive, got %v", err)
	}
}

func TestRedeemLinksUnclaimedCoupon(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, ledgertest.ZeroAddress)
	svc, _, _ := newTestService(t, fake)

	redeemer := "0xBBBB000000000000000000000000000000000002"
	if _, err := svc.Redeem(context.Background(), redeemer, "ACM-100"); err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	var linked, used bool
	for _, call := range fake.Calls {
		switch call {
		case "LinkCouponToWallet":
			linked = true
		case "UseCoupon":
			if !linked {
				t.Fatal("UseCoupon submitted before LinkCouponToWallet")
			}
			used = true
		}
	}
	if !linked || !used {
		t.Fatalf("expected link then use, calls: %v", fake.Calls)
	}
}

func TestRedeemClaimedCouponSkipsLink(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, wallet)
	svc, _, _ := newTestService(t, fake)

	if _, err := svc.Redeem(context.Background(), wallet, "ACM-100"); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	for _, call := range fake.Calls {
		if call == "LinkCouponToWallet" {
			t.Fatal("claimed coupon should not be relinked")
		}
	}
}

// stalledCodeReader hangs code resolution until the call context expires.
type stalledCodeReader struct {
	*ledgertest.Fake
}

func (r *stalledCodeReader) CouponIDByCode(ctx context.Context, code string) (uint64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestRedeemBoundsEachLedgerCall(t *testing.T) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := ledgertest.New()
	cfg := config.Config{
		Ledger: config.LedgerConfig{
			CallTimeout:      10 * time.Millisecond,
			ReceiptTimeout:   time.Second,
			ReconcileTimeout: time.Second,
		},
	}
	svc := NewService(ServiceParam{
		Cfg:        cfg,
		Log:        zap.NewNop(),
		Ledger:     &stalledCodeReader{fake},
		Reconciler: reconcile.NewReconciler(fake, zap.NewNop()),
		Sessions:   session.NewStore(time.Minute),
		Gate:       session.NewGate(),
		Notifier:   notify.New(notify.Config{}, zap.NewNop()),
		GenID:      node,
	}).(*Service)

	start := time.Now()
	_, err = svc.Redeem(context.Background(), wallet, "ACM-1")
	if !errors.Is(err, domain.ErrReconcileFailed) {
		t.Fatalf("want ErrReconcileFailed, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("stalled ledger call was not bounded by the call timeout")
	}
}

func TestOrganizationDetails(t *testing.T) {
	fake := ledgertest.New()
	seedOrganization(fake, 1, wallet)
	seedCoupon(fake, 10, wallet)
	svc, _, _ := newTestService(t, fake)

	details, err := svc.OrganizationDetails(context.Background(), wallet, "1")
	if err != nil {
		t.Fatalf("OrganizationDetails: %v", err)
	}
	if details.Organization.Name != "Acme Bakery" || len(details.Coupons) != 1 {
		t.Fatalf("unexpected details: %+v", details)
	}

	if _, err := svc.OrganizationDetails(context.Background(), wallet, "99"); !errors.Is(err, domain.ErrOrganizationNotFound) {
		t.Fatalf("want ErrOrganizationNotFound, got %v", err)
	}
}

func TestCreateOrganizationInvalidatesSession(t *testing.T) {
	fake := ledgertest.New()
	svc, store, _ := newTestService(t, fake)

	if _, err := svc.ListOrganizations(context.Background(), wallet); err != nil {
		t.Fatalf("ListOrganizations: %v", err)
	}
	if _, ok := store.Get(wallet); !ok {
		t.Fatal("expected cached view")
	}

	if _, err := svc.CreateOrganization(context.Background(), wallet, "Acme Bakery", "pastries"); err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if _, ok := store.Get(wallet); ok {
		t.Fatal("session survived a create")
	}
}
