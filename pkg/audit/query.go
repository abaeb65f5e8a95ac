package audit

import "fmt"

const (
	// DefaultQueryLimit is the number of entries returned when a query does
	// not set a limit.
	DefaultQueryLimit = 100

	// MaxQueryLimit caps a single query.
	MaxQueryLimit = 10000

	// RecentViolationsLimit is how many guardrail blocks statistics include.
	RecentViolationsLimit = 10
)

// ValidateQuery reports invalid query parameters.
func ValidateQuery(q *Query) error {
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxQueryLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxQueryLimit, q.Limit))
	}
	if q.Action != "" && !q.Action.Valid() {
		return NewQueryError(q, fmt.Errorf("invalid action: %s", q.Action))
	}
	if q.Start != nil && q.End != nil && q.Start.After(*q.End) {
		return NewQueryError(q, fmt.Errorf("start must be before end"))
	}
	return nil
}

// ApplyQueryDefaults fills in the default limit.
func ApplyQueryDefaults(q *Query) {
	if q.Limit == 0 {
		q.Limit = DefaultQueryLimit
	}
}
