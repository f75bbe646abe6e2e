package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallbiznis/couponview/internal/ledger"
)

// Aggregator discovers the complete, deduplicated identifier set for an
// owner identity across the ledger's overlapping discovery paths. Discovery
// calls are identifier sources: any failure escalates, since a partial set
// would make deduplication unsound.
type Aggregator struct {
	reader ledger.Reader
}

// NewAggregator wires an aggregator over the given ledger reader.
func NewAggregator(reader ledger.Reader) *Aggregator {
	return &Aggregator{reader: reader}
}

// OrganizationIDs returns the organizations owned or administered by the
// identity, deduplicated first-seen.
func (a *Aggregator) OrganizationIDs(ctx context.Context, identity string) ([]uint64, error) {
	ids, err := a.reader.OwnedOrganizationIDs(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("discover owned organizations: %w", err)
	}
	return dedupe(ids, nil), nil
}

// CouponIDs returns the coupon identifiers relevant to the identity: directly
// owned coupons first, in discovery order, then each administered
// organization's coupons appending only ids not already present. The output
// contains each identifier exactly once and is reproducible for identical
// ledger state.
func (a *Aggregator) CouponIDs(ctx context.Context, identity string, adminOrgIDs []uint64) ([]uint64, error) {
	owned, err := a.reader.OwnedCouponIDs(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("discover owned coupons: %w", err)
	}

	seen := make(map[uint64]struct{}, len(owned))
	out := dedupe(owned, seen)

	// Per-organization lists are independent reads; issue them all at once.
	// Deduplication happens afterwards in adminOrgIDs order, so the output
	// stays first-seen deterministic regardless of completion order.
	orgLists := make([][]uint64, len(adminOrgIDs))
	orgErrs := make([]error, len(adminOrgIDs))
	var wg sync.WaitGroup
	for i, orgID := range adminOrgIDs {
		wg.Add(1)
		go func(i int, orgID uint64) {
			defer wg.Done()
			orgLists[i], orgErrs[i] = a.reader.OrganizationCouponIDs(ctx, orgID)
		}(i, orgID)
	}
	wg.Wait()

	for i, err := range orgErrs {
		if err != nil {
			return nil, fmt.Errorf("discover organization %d coupons: %w", adminOrgIDs[i], err)
		}
	}

	for _, orgCoupons := range orgLists {
		for _, id := range orgCoupons {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

// dedupe keeps first occurrences in order. When seen is non-nil it is filled
// so callers can continue appending against the same set.
func dedupe(ids []uint64, seen map[uint64]struct{}) []uint64 {
	if seen == nil {
		seen = make(map[uint64]struct{}, len(ids))
	}
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
