package domain

// StatusTab selects which lifecycle bucket a list view shows.
type StatusTab string

const (
	TabAll     StatusTab = "all"
	TabActive  StatusTab = "active"
	TabUsed    StatusTab = "used"
	TabExpired StatusTab = "expired"
)

// SortOrder selects list ordering.
type SortOrder string

const (
	SortNewest       SortOrder = "newest"
	SortExpiring     SortOrder = "expiring"
	SortOrganization SortOrder = "organization"
)

// Query filters and orders a materialized coupon set. The zero value is the
// identity query: every coupon, newest first.
type Query struct {
	Search string
	Tab    StatusTab
	Sort   SortOrder
}

func (q Query) withDefaults() Query {
	if q.Tab == "" {
		q.Tab = TabAll
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	return q
}

// Normalize fills defaults and reports whether the tab and sort values are
// recognized.
func (q Query) Normalize() (Query, bool) {
	q = q.withDefaults()
	switch q.Tab {
	case TabAll, TabActive, TabUsed, TabExpired:
	default:
		return q, false
	}
	switch q.Sort {
	case SortNewest, SortExpiring, SortOrganization:
	default:
		return q, false
	}
	return q, true
}
