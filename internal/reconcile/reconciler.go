package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/coupon/domain"
	"github.com/smallbiznis/couponview/internal/ledger"
	"github.com/smallbiznis/couponview/internal/observability/metrics"
	"github.com/smallbiznis/couponview/internal/view"
)

// Reconciler runs full reconciliation passes: discover identifiers, fetch
// records tolerating per-record failures, normalize, and build a fresh
// materialized view. A pass either completes and returns a whole view or
// fails; partial state is never published.
type Reconciler struct {
	reader     ledger.Reader
	aggregator *Aggregator
	log        *zap.Logger
	metrics    *metrics.ReconcileMetrics
}

// NewReconciler wires a reconciler over the ledger reader.
func NewReconciler(reader ledger.Reader, log *zap.Logger) *Reconciler {
	return &Reconciler{
		reader:     reader,
		aggregator: NewAggregator(reader),
		log:        log.Named("reconcile"),
		metrics:    metrics.Reconcile(),
	}
}

// Snapshot runs one pass for the identity. Identifier-source failures abort
// the pass; individual record failures only shrink the result.
func (r *Reconciler) Snapshot(ctx context.Context, identity string) (*view.View, error) {
	tracer := otel.Tracer("couponview/reconcile")
	ctx, span := tracer.Start(ctx, "reconcile.pass")
	defer span.End()

	start := time.Now()
	v, err := r.snapshot(ctx, identity)
	if err != nil {
		r.metrics.ObservePass("aborted", time.Since(start))
		return nil, fmt.Errorf("%w: %v", domain.ErrReconcileFailed, err)
	}

	r.metrics.ObservePass("success", time.Since(start))
	r.metrics.SetViewSize(v.Len())
	span.SetAttributes(attribute.Int("view.coupons", v.Len()))
	r.log.Debug("reconciliation pass complete",
		zap.Int("coupons", v.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return v, nil
}

func (r *Reconciler) snapshot(ctx context.Context, identity string) (*view.View, error) {
	orgIDs, err := r.aggregator.OrganizationIDs(ctx, identity)
	if err != nil {
		return nil, err
	}

	orgRecords := FetchAll(ctx, r.log, "organization", orgIDs, r.reader.Organization)
	r.metrics.AddExcluded("organization", len(orgIDs)-len(orgRecords))

	orgs := make([]domain.Organization, 0, len(orgRecords))
	orgIndex := make(map[string]domain.Organization, len(orgRecords))
	adminOrgIDs := make([]uint64, 0, len(orgRecords))
	for _, res := range orgRecords {
		org := NormalizeOrganization(res.Value)
		orgs = append(orgs, org)
		orgIndex[org.ID] = org
		if strings.EqualFold(org.AdminAddress, identity) {
			adminOrgIDs = append(adminOrgIDs, res.ID)
		}
	}

	couponIDs, err := r.aggregator.CouponIDs(ctx, identity, adminOrgIDs)
	if err != nil {
		return nil, err
	}

	couponRecords := FetchAll(ctx, r.log, "coupon", couponIDs, r.reader.Coupon)
	r.metrics.AddExcluded("coupon", len(couponIDs)-len(couponRecords))

	coupons := make([]domain.Coupon, 0, len(couponRecords))
	for _, res := range couponRecords {
		coupons = append(coupons, NormalizeCoupon(res.Value, orgIndex))
	}

	// A cancelled context means an unknown number of fetches were cut
	// short; discard rather than publish a partial view.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return view.Build(coupons, orgs), nil
}
