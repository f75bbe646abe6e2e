// Package service implements the coupon read-model and write surface on top
// of the reconciler, the session store and the ledger client.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/cache"
	"github.com/smallbiznis/couponview/internal/config"
	"github.com/smallbiznis/couponview/internal/coupon/domain"
	"github.com/smallbiznis/couponview/internal/ledger"
	"github.com/smallbiznis/couponview/internal/notify"
	"github.com/smallbiznis/couponview/internal/reconcile"
	"github.com/smallbiznis/couponview/internal/session"
	"github.com/smallbiznis/couponview/internal/view"
)

// zeroAddress is the contract's unset-wallet sentinel.
const zeroAddress = "0x0000000000000000000000000000000000000000"

const orgCacheTTL = 5 * time.Minute

type ServiceParam struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Ledger     ledger.Client
	Reconciler *reconcile.Reconciler
	Sessions   *session.Store
	Gate       *session.Gate
	Notifier   *notify.Notifier
	GenID      *snowflake.Node
}

type Service struct {
	cfg      config.Config
	log      *zap.Logger
	ledger   ledger.Client
	rec      *reconcile.Reconciler
	sessions *session.Store
	gate     *session.Gate
	notifier *notify.Notifier
	genID    *snowflake.Node

	// Organization records looked up outside a materialized view (the
	// public redemption page, code generation) are cached briefly; names
	// and descriptions are immutable on the ledger.
	orgCache *cache.TTLCache[uint64, ledger.RawOrganization]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		cfg:      p.Cfg,
		log:      p.Log.Named("coupon.service"),
		ledger:   p.Ledger,
		rec:      p.Reconciler,
		sessions: p.Sessions,
		gate:     p.Gate,
		notifier: p.Notifier,
		genID:    p.GenID,
		orgCache: cache.NewTTLCache[uint64, ledger.RawOrganization](),
	}
}

// viewFor returns the identity's materialized view, reconciling a fresh one
// when none is cached or a refresh is forced. The new view replaces the old
// one atomically; a failed pass leaves the previous view untouched.
func (s *Service) viewFor(ctx context.Context, identity string, refresh bool) (*view.View, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, domain.ErrIdentityRequired
	}

	if !refresh {
		if v, ok := s.sessions.Get(identity); ok {
			return v, nil
		}
	}

	ctx, cancel := s.reconcileCtx(ctx)
	defer cancel()

	v, err := s.rec.Snapshot(ctx, identity)
	if err != nil {
		return nil, err
	}
	s.sessions.Publish(identity, v)
	return v, nil
}

func (s *Service) Dashboard(ctx context.Context, identity string) (domain.Dashboard, error) {
	v, err := s.viewFor(ctx, identity, false)
	if err != nil {
		return domain.Dashboard{}, err
	}
	return view.BuildDashboard(v, time.Now().UTC()), nil
}

func (s *Service) ListCoupons(ctx context.Context, identity string, q domain.Query, refresh bool) ([]domain.Coupon, domain.StatusCounts, error) {
	if _, ok := q.Normalize(); !ok {
		return nil, domain.StatusCounts{}, fmt.Errorf("%w: unknown status or sort", domain.ErrValidation)
	}

	v, err := s.viewFor(ctx, identity, refresh)
	if err != nil {
		return nil, domain.StatusCounts{}, err
	}

	all := v.Coupons()
	return view.Filter(all, q), view.CountByStatus(all), nil
}

func (s *Service) ListOrganizations(ctx context.Context, identity string) ([]domain.Organization, error) {
	v, err := s.viewFor(ctx, identity, false)
	if err != nil {
		return nil, err
	}
	return v.Organizations(), nil
}

func (s *Service) OrganizationDetails(ctx context.Context, identity, orgID string) (domain.OrganizationDetails, error) {
	v, err := s.viewFor(ctx, identity, false)
	if err != nil {
		return domain.OrganizationDetails{}, err
	}

	org, ok := v.Organization(orgID)
	if !ok {
		return domain.OrganizationDetails{}, domain.ErrOrganizationNotFound
	}

	coupons := make([]domain.Coupon, 0)
	for _, c := range v.Coupons() {
		if c.OrganizationID == orgID {
			coupons = append(coupons, c)
		}
	}
	sort.SliceStable(coupons, func(i, j int) bool {
		return coupons[i].CreatedAt.After(coupons[j].CreatedAt)
	})

	return domain.OrganizationDetails{
		Organization: org,
		Coupons:      coupons,
		Counts:       view.CountByStatus(coupons),
	}, nil
}

func (s *Service) CreateOrganization(ctx context.Context, identity, name, description string) (domain.WriteResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.WriteResult{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	receipt, err := s.write(ctx, identity, func(ctx context.Context) (ledger.PendingTx, error) {
		return s.ledger.CreateOrganization(ctx, name, strings.TrimSpace(description))
	})
	if err != nil {
		return domain.WriteResult{}, err
	}

	s.sessions.Invalidate(identity)
	return domain.WriteResult{TxHash: receipt.TxHash}, nil
}

func (s *Service) CreateCoupon(ctx context.Context, identity string, req domain.CreateCouponRequest) (domain.CreateCouponResult, error) {
	orgID, err := parseID(req.OrganizationID)
	if err != nil {
		return domain.CreateCouponResult{}, err
	}
	if strings.TrimSpace(req.RecipientEmail) == "" {
		return domain.CreateCouponResult{}, fmt.Errorf("%w: recipient email is required", domain.ErrValidation)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		org, err := s.organizationRecord(ctx, orgID)
		if err != nil {
			return domain.CreateCouponResult{}, domain.ErrOrganizationNotFound
		}
		code = s.generateCode(org.Name)
	}

	receipt, err := s.write(ctx, identity, func(ctx context.Context) (ledger.PendingTx, error) {
		return s.ledger.CreateCoupon(ctx, orgID, code, req.DiscountAmount, strings.TrimSpace(req.RecipientEmail))
	})
	if err != nil {
		return domain.CreateCouponResult{}, err
	}

	s.sessions.Invalidate(identity)
	return domain.CreateCouponResult{TxHash: receipt.TxHash, Code: code}, nil
}

func (s *Service) UseCoupon(ctx context.Context, identity, couponID string) (domain.WriteResult, error) {
	id, err := parseID(couponID)
	if err != nil {
		return domain.WriteResult{}, err
	}

	receipt, err := s.write(ctx, identity, func(ctx context.Context) (ledger.PendingTx, error) {
		return s.ledger.UseCoupon(ctx, id)
	})
	if err != nil {
		return domain.WriteResult{}, err
	}

	// Patch the cached view in place; the ledger already holds the truth.
	if v, ok := s.sessions.Get(identity); ok {
		v.ApplyUse(couponID)
	}
	return domain.WriteResult{TxHash: receipt.TxHash}, nil
}

func (s *Service) ShareCoupon(ctx context.Context, identity, couponID, recipientEmail string) (domain.ShareResult, error) {
	id, err := parseID(couponID)
	if err != nil {
		return domain.ShareResult{}, err
	}
	recipientEmail = strings.TrimSpace(recipientEmail)
	if recipientEmail == "" {
		return domain.ShareResult{}, fmt.Errorf("%w: recipient email is required", domain.ErrValidation)
	}

	// Capture the coupon before the local view forgets it.
	var shared domain.Coupon
	var haveShared bool
	if v, ok := s.sessions.Get(identity); ok {
		shared, haveShared = v.Coupon(couponID)
	}

	receipt, err := s.write(ctx, identity, func(ctx context.Context) (ledger.PendingTx, error) {
		return s.ledger.ShareCoupon(ctx, id, recipientEmail)
	})
	if err != nil {
		return domain.ShareResult{}, err
	}

	if v, ok := s.sessions.Get(identity); ok {
		v.ApplyShare(couponID)
	}

	result := domain.ShareResult{TxHash: receipt.TxHash}
	if !haveShared {
		if c, err := s.couponByID(ctx, id); err == nil {
			shared, haveShared = c, true
		}
	}
	if haveShared {
		result.EmailSent = s.sendShareEmail(ctx, shared, recipientEmail)
	}
	return result, nil
}

// sendShareEmail is strictly best-effort: the share already applied on the
// ledger, so a delivery failure is downgraded to a warning and reported
// through the EmailSent flag.
func (s *Service) sendShareEmail(ctx context.Context, c domain.Coupon, recipientEmail string) bool {
	err := s.notifier.SendCouponEmail(ctx, notify.CouponEmail{
		RecipientEmail:   recipientEmail,
		CouponCode:       c.Code,
		Discount:         c.DisplayDiscount,
		OrganizationName: c.OrganizationName,
		ExpiresAt:        c.ExpiresAt.Format("Jan 2, 2006"),
	})
	if err != nil {
		s.log.Warn("coupon email not delivered",
			zap.String("coupon_id", c.ID),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *Service) LookupRedemption(ctx context.Context, code string) (domain.Redemption, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Redemption{}, fmt.Errorf("%w: code is required", domain.ErrValidation)
	}

	raw, err := s.resolveRedeemable(ctx, code)
	if err != nil {
		return domain.Redemption{}, err
	}

	orgIndex := map[string]domain.Organization{}
	var org domain.Organization
	if rawOrg, err := s.organizationRecord(ctx, raw.OrganizationID); err == nil {
		org = reconcile.NormalizeOrganization(rawOrg)
		orgIndex[org.ID] = org
	}

	return domain.Redemption{
		Coupon:       reconcile.NormalizeCoupon(raw, orgIndex),
		Organization: org,
	}, nil
}

func (s *Service) Redeem(ctx context.Context, identity, code string) (domain.WriteResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.WriteResult{}, fmt.Errorf("%w: code is required", domain.ErrValidation)
	}

	raw, err := s.resolveRedeemable(ctx, code)
	if err != nil {
		return domain.WriteResult{}, err
	}

	receipt, err := s.write(ctx, identity, func(ctx context.Context) (ledger.PendingTx, error) {
		// An unclaimed coupon must be linked to the redeeming wallet
		// before it can be used; both writes are receipt-gated.
		if strings.EqualFold(raw.OwnerWallet, zeroAddress) || raw.OwnerWallet == "" {
			pending, err := s.ledger.LinkCouponToWallet(ctx, code)
			if err != nil {
				return nil, err
			}
			linkReceipt, err := s.waitReceipt(ctx, pending)
			if err != nil {
				return nil, err
			}
			if !linkReceipt.Succeeded() {
				return nil, domain.ErrTransactionReverted
			}
		}
		return s.ledger.UseCoupon(ctx, raw.ID)
	})
	if err != nil {
		return domain.WriteResult{}, err
	}

	s.sessions.Invalidate(identity)
	return domain.WriteResult{TxHash: receipt.TxHash}, nil
}

// resolveRedeemable maps a coupon code to a raw record, enforcing the
// redemption preconditions with distinct errors per condition. Each ledger
// call carries its own timeout.
func (s *Service) resolveRedeemable(ctx context.Context, code string) (ledger.RawCoupon, error) {
	id, err := s.couponIDByCode(ctx, code)
	if err != nil {
		return ledger.RawCoupon{}, fmt.Errorf("%w: %v", domain.ErrReconcileFailed, err)
	}
	if id == 0 {
		return ledger.RawCoupon{}, domain.ErrCouponNotFound
	}

	raw, err := s.couponRecord(ctx, id)
	if err != nil {
		return ledger.RawCoupon{}, fmt.Errorf("%w: %v", domain.ErrReconcileFailed, err)
	}
	if raw.IsUsed {
		return ledger.RawCoupon{}, domain.ErrCouponAlreadyUsed
	}
	if !raw.IsActive {
		return ledger.RawCoupon{}, domain.ErrCouponInactive
	}
	return raw, nil
}

// write runs the two-phase protocol under the identity's single-flight gate:
// submit, wait for the receipt, and only report success when the transaction
// applied. Callers patch local state strictly after a success return.
func (s *Service) write(ctx context.Context, identity string, submit func(ctx context.Context) (ledger.PendingTx, error)) (ledger.Receipt, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ledger.Receipt{}, domain.ErrIdentityRequired
	}
	if !s.gate.TryAcquire(identity) {
		return ledger.Receipt{}, domain.ErrWriteInFlight
	}
	defer s.gate.Release(identity)

	pending, err := submit(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionReverted) {
			return ledger.Receipt{}, err
		}
		return ledger.Receipt{}, fmt.Errorf("%w: %v", domain.ErrTransactionRejected, err)
	}

	receipt, err := s.waitReceipt(ctx, pending)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", domain.ErrTransactionRejected, err)
	}
	if !receipt.Succeeded() {
		return ledger.Receipt{}, fmt.Errorf("%w: tx %s", domain.ErrTransactionReverted, receipt.TxHash)
	}

	s.log.Info("transaction confirmed", zap.String("tx_hash", receipt.TxHash))
	return receipt, nil
}

func (s *Service) waitReceipt(ctx context.Context, pending ledger.PendingTx) (ledger.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Ledger.ReceiptTimeout)
	defer cancel()
	return pending.Wait(ctx)
}

// reconcileCtx bounds a full reconciliation pass; callCtx bounds one ledger
// call. A non-positive timeout leaves the caller's context as is.
func (s *Service) reconcileCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return boundCtx(ctx, s.cfg.Ledger.ReconcileTimeout)
}

func (s *Service) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return boundCtx(ctx, s.cfg.Ledger.CallTimeout)
}

func boundCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *Service) couponIDByCode(ctx context.Context, code string) (uint64, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	return s.ledger.CouponIDByCode(ctx, code)
}

func (s *Service) couponRecord(ctx context.Context, id uint64) (ledger.RawCoupon, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	return s.ledger.Coupon(ctx, id)
}

// organizationRecord fetches an organization with a short-lived cache in
// front of the ledger.
func (s *Service) organizationRecord(ctx context.Context, id uint64) (ledger.RawOrganization, error) {
	if raw, ok := s.orgCache.Get(id); ok {
		return raw, nil
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	raw, err := s.ledger.Organization(ctx, id)
	if err != nil {
		return ledger.RawOrganization{}, err
	}
	s.orgCache.Set(id, raw, orgCacheTTL)
	return raw, nil
}

// couponByID fetches and normalizes one coupon outside a materialized view.
func (s *Service) couponByID(ctx context.Context, id uint64) (domain.Coupon, error) {
	raw, err := s.couponRecord(ctx, id)
	if err != nil {
		return domain.Coupon{}, err
	}
	orgIndex := map[string]domain.Organization{}
	if rawOrg, err := s.organizationRecord(ctx, raw.OrganizationID); err == nil {
		org := reconcile.NormalizeOrganization(rawOrg)
		orgIndex[org.ID] = org
	}
	return reconcile.NormalizeCoupon(raw, orgIndex), nil
}

// generateCode derives a human-presentable coupon code: a three-letter
// organization prefix plus a unique suffix from the snowflake node.
func (s *Service) generateCode(orgName string) string {
	prefix := strings.ToUpper(strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, orgName))
	if len(prefix) >= 3 {
		prefix = prefix[:3]
	} else if prefix == "" {
		prefix = "CPN"
	}

	suffix := strings.ToUpper(strconv.FormatInt(int64(s.genID.Generate()), 36))
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return prefix + "-" + suffix
}

func parseID(id string) (uint64, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, id)
	}
	return parsed, nil
}
