package health

import (
	"context"
	"errors"
	"fmt"

	"bastion-hq/gateway/pkg/audit"
)

// Names under which the gateway registers its readiness checks.
const (
	CheckProviders = "providers"
	CheckAudit     = "audit"
	CheckDocuments = "documents"
)

// AvailabilitySource reports how many providers are currently available.
type AvailabilitySource interface {
	AvailableCount() int
}

// ProvidersCheck fails when fewer than minAvailable providers are available.
func ProvidersCheck(source AvailabilitySource, minAvailable int) CheckFunc {
	if minAvailable < 1 {
		minAvailable = 1
	}
	return func(ctx context.Context) error {
		available := source.AvailableCount()
		if available < minAvailable {
			return fmt.Errorf("%d providers available, need at least %d", available, minAvailable)
		}
		return nil
	}
}

// AuditCheck fails when the audit sink cannot answer a count query. A sink
// that cannot be read is assumed unable to accept writes either.
func AuditCheck(sink audit.Sink) CheckFunc {
	return func(ctx context.Context) error {
		if _, err := sink.Count(ctx, &audit.Query{}); err != nil {
			return fmt.Errorf("audit sink unavailable: %w", err)
		}
		return nil
	}
}

// DocumentSource reports the number of indexed documents.
type DocumentSource interface {
	Len() int
}

// DocumentsCheck fails when the retrieval store holds no documents.
func DocumentsCheck(source DocumentSource) CheckFunc {
	return func(ctx context.Context) error {
		if source.Len() == 0 {
			return errors.New("retrieval store is empty")
		}
		return nil
	}
}
