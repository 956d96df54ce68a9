// Package ingest populates the email store from a mail provider.
package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"inboxcore/core/port/out"
	"inboxcore/pkg/apperr"
)

// DefaultMaxResults bounds one sync batch when the request sets none.
const DefaultMaxResults = 100

// Request asks for one provider sync batch. Query uses the provider's
// native search syntax.
type Request struct {
	Query      string `json:"query"`
	MaxResults int64  `json:"max_results"`
}

// Result reports how many messages one sync fetched and indexed.
type Result struct {
	Fetched int `json:"fetched"`
	Indexed int `json:"indexed"`
}

// Service fetches provider messages and upserts them into the store.
type Service struct {
	provider out.EmailProvider // nil when no provider is configured
	store    out.EmailStore
	log      zerolog.Logger
}

// NewService creates an ingestion service. provider may be nil; Sync
// then fails per request instead of at startup.
func NewService(provider out.EmailProvider, store out.EmailStore, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		store:    store,
		log:      log.With().Str("component", "ingest").Logger(),
	}
}

// Sync fetches one batch of provider messages and bulk-indexes them.
// Re-running a sync is safe: records are upserted by provider ID.
func (s *Service) Sync(ctx context.Context, req Request) (*Result, error) {
	if s.provider == nil {
		return nil, apperr.ConfigError("mail provider is not configured")
	}

	max := req.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}

	start := time.Now()
	emails, err := s.provider.FetchMessages(ctx, req.Query, max)
	if err != nil {
		s.log.Error().Err(err).Str("query", req.Query).Msg("provider fetch failed")
		return nil, apperr.ExternalError("mail provider", err)
	}

	if len(emails) > 0 {
		if err := s.store.BulkIndex(ctx, emails); err != nil {
			s.log.Error().Err(err).Int("count", len(emails)).Msg("bulk index failed")
			return nil, apperr.StoreUnavailable("ingest", err)
		}
	}

	s.log.Info().
		Int("fetched", len(emails)).
		Dur("took", time.Since(start)).
		Msg("ingest sync completed")

	return &Result{Fetched: len(emails), Indexed: len(emails)}, nil
}
