package out

import (
	"context"
	"time"
)

// InvocationRecord captures one engine operation call for monitoring.
type InvocationRecord struct {
	Operation   string
	Arguments   string
	ResultCount int
	DurationMS  float64
	Error       string
	At          time.Time
}

// InvocationLog persists operation records. Best-effort: failures are
// logged by callers and never block the operation itself.
type InvocationLog interface {
	Record(ctx context.Context, rec InvocationRecord) error
}
