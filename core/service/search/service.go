package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
	"inboxcore/pkg/apperr"
)

// Service executes search requests against the email store.
type Service struct {
	store out.EmailStore
	log   zerolog.Logger
}

// NewService creates a search service.
func NewService(store out.EmailStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "search").Logger(),
	}
}

// Search builds the store query for the request and runs it.
func (s *Service) Search(ctx context.Context, req Request) ([]*domain.EmailDocument, error) {
	q := BuildQuery(req, time.Now())

	start := time.Now()
	results, err := s.store.Search(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Str("search_text", req.SearchText).Msg("store search failed")
		return nil, apperr.StoreUnavailable("search", err)
	}

	s.log.Debug().
		Int("results", len(results)).
		Int("size", q.Size).
		Dur("took", time.Since(start)).
		Msg("search completed")

	return results, nil
}

// UpdateEmail applies a partial field update to one record.
func (s *Service) UpdateEmail(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return apperr.MissingField("id")
	}
	if len(fields) == 0 {
		return apperr.MissingField("fields")
	}

	if err := s.store.Update(ctx, id, fields); err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		s.log.Error().Err(err).Str("email_id", id).Msg("store update failed")
		return apperr.StoreUnavailable("update", err)
	}
	return nil
}
