package out

import (
	"context"

	"inboxcore/core/domain"
)

// EmailProvider fetches messages from an external mailbox provider.
type EmailProvider interface {
	// FetchMessages returns up to max messages matching the provider's
	// native query syntax. An empty query means everything.
	FetchMessages(ctx context.Context, query string, max int64) ([]*domain.EmailDocument, error)
}
