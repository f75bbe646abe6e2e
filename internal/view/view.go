// Package view holds the session-scoped materialized view of normalized
// ledger entities and the pure query engine over it.
package view

import (
	"sync"

	"github.com/smallbiznis/couponview/internal/coupon/domain"
)

// View is the in-memory materialized snapshot for one identity's session. It
// is built in one shot by a reconciliation pass and published atomically;
// write-driven patches (ApplyUse, ApplyShare) mutate it in place until the
// next full rebuild. A new pass always builds a new View and swaps it in, so
// no two passes ever write to the same instance.
type View struct {
	mu sync.RWMutex

	// first-seen aggregation order, preserved across reads
	couponOrder []string
	coupons     map[string]domain.Coupon

	orgOrder []string
	orgs     map[string]domain.Organization
}

// Build constructs a view from normalized entities, keyed by id, preserving
// the given order.
func Build(coupons []domain.Coupon, orgs []domain.Organization) *View {
	v := &View{
		couponOrder: make([]string, 0, len(coupons)),
		coupons:     make(map[string]domain.Coupon, len(coupons)),
		orgOrder:    make([]string, 0, len(orgs)),
		orgs:        make(map[string]domain.Organization, len(orgs)),
	}
	for _, c := range coupons {
		if _, ok := v.coupons[c.ID]; ok {
			continue
		}
		v.coupons[c.ID] = c
		v.couponOrder = append(v.couponOrder, c.ID)
	}
	for _, o := range orgs {
		if _, ok := v.orgs[o.ID]; ok {
			continue
		}
		v.orgs[o.ID] = o
		v.orgOrder = append(v.orgOrder, o.ID)
	}
	return v
}

// Coupons returns the coupons in materialized order.
func (v *View) Coupons() []domain.Coupon {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Coupon, 0, len(v.couponOrder))
	for _, id := range v.couponOrder {
		out = append(out, v.coupons[id])
	}
	return out
}

// Organizations returns the organizations in materialized order.
func (v *View) Organizations() []domain.Organization {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Organization, 0, len(v.orgOrder))
	for _, id := range v.orgOrder {
		out = append(out, v.orgs[id])
	}
	return out
}

// Organization looks up one organization by id.
func (v *View) Organization(id string) (domain.Organization, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	org, ok := v.orgs[id]
	return org, ok
}

// Coupon looks up one coupon by id.
func (v *View) Coupon(id string) (domain.Coupon, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.coupons[id]
	return c, ok
}

// ApplyUse flips the coupon's cached status to used. It must only be called
// after the corresponding transaction receipt reported success. Every other
// entity and the view order are untouched.
func (v *View) ApplyUse(couponID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.coupons[couponID]
	if !ok {
		return false
	}
	c.Status = domain.StatusUsed
	v.coupons[couponID] = c
	return true
}

// ApplyShare removes the coupon from the current owner's cached set after a
// confirmed share reassigned it.
func (v *View) ApplyShare(couponID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.coupons[couponID]; !ok {
		return false
	}
	delete(v.coupons, couponID)
	order := make([]string, 0, len(v.couponOrder)-1)
	for _, id := range v.couponOrder {
		if id != couponID {
			order = append(order, id)
		}
	}
	v.couponOrder = order
	return true
}

// Len reports the number of materialized coupons.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.couponOrder)
}
