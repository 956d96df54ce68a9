// Package thread aggregates all exchanges with a contact into threads.
package thread

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
	"inboxcore/pkg/apperr"
)

// DefaultMaxResults bounds a conversation fetch when the request sets none.
const DefaultMaxResults = 100

// Request asks for the conversation history with one contact,
// optionally narrowed to a single thread.
type Request struct {
	ContactEmail string `json:"contact_email"`
	ThreadID     string `json:"thread_id"`
	MaxResults   int    `json:"max_results"`
}

// Service builds conversation histories from the email store.
type Service struct {
	store out.EmailStore
	log   zerolog.Logger
}

// NewService creates a thread aggregation service.
func NewService(store out.EmailStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "thread").Logger(),
	}
}

// History fetches every record where the contact appears as sender or in
// any recipient field, oldest first, and groups the results by thread.
// No matches is a valid empty history, not an error.
func (s *Service) History(ctx context.Context, req Request) (*domain.ConversationHistory, error) {
	if req.ContactEmail == "" {
		return nil, apperr.MissingField("contact_email")
	}

	size := req.MaxResults
	if size <= 0 {
		size = DefaultMaxResults
	}

	contains := "*" + req.ContactEmail + "*"
	participant := out.Bool().
		WithShould(
			out.Wildcard(out.FieldSenderEmail, contains),
			out.Wildcard(out.FieldRecipients, contains),
			out.Wildcard(out.FieldCc, contains),
			out.Wildcard(out.FieldBcc, contains),
		).
		WithMinimumShouldMatch(1)

	root := participant
	if req.ThreadID != "" {
		root = out.Bool().WithMust(participant, out.Term(out.FieldThreadID, req.ThreadID))
	}

	q := &out.Query{
		Root:      root,
		Size:      size,
		SortField: out.FieldDate,
		SortOrder: out.SortAsc,
	}

	start := time.Now()
	emails, err := s.store.Search(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Str("contact", req.ContactEmail).Msg("conversation search failed")
		return nil, apperr.StoreUnavailable("conversation_history", err)
	}

	history := s.aggregate(req.ContactEmail, emails)

	s.log.Debug().
		Str("contact", req.ContactEmail).
		Int("emails", history.TotalEmails).
		Int("threads", history.ThreadCount).
		Dur("took", time.Since(start)).
		Msg("conversation aggregated")

	return history, nil
}

func (s *Service) aggregate(contact string, emails []*domain.EmailDocument) *domain.ConversationHistory {
	contactLower := strings.ToLower(contact)

	history := &domain.ConversationHistory{
		ContactEmail: contact,
		TotalEmails:  len(emails),
		Threads:      make(map[string][]*domain.ConversationMessage),
		Messages:     make([]*domain.ConversationMessage, 0, len(emails)),
	}

	for _, e := range emails {
		direction := domain.DirectionToContact
		if strings.Contains(strings.ToLower(e.Sender.Email), contactLower) {
			direction = domain.DirectionFromContact
		}

		msg := &domain.ConversationMessage{Email: e, Direction: direction}
		history.Messages = append(history.Messages, msg)
		history.Threads[e.ThreadID] = append(history.Threads[e.ThreadID], msg)
	}

	// The store sorts ascending already; re-sort per thread in case of
	// equal timestamps landing out of order across threads.
	for _, msgs := range history.Threads {
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].Email.Date.Before(msgs[j].Email.Date)
		})
	}

	history.ThreadCount = len(history.Threads)
	return history
}
