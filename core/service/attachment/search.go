package attachment

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
	"inboxcore/core/service/search"
	"inboxcore/pkg/apperr"
)

const (
	// DefaultMaxResults bounds the returned result list.
	DefaultMaxResults = 10

	// overFetchFactor compensates for candidates dropped by the
	// relevance filter after the store query.
	overFetchFactor = 2

	// contextWindow is the number of characters shown on each side of
	// the first content match.
	contextWindow = 100
)

// MatchReason tells why a result email matched the search.
type MatchReason string

const (
	MatchFilename MatchReason = "filename"
	MatchContent  MatchReason = "content"
	MatchNone     MatchReason = "none"
)

// Request is an attachment content search.
type Request struct {
	SearchText string `json:"search_text"`
	FileType   string `json:"file_type"`
	Sender     string `json:"sender"`
	DateFrom   string `json:"date_from"`
	MaxResults int    `json:"max_results"`
}

// Match is one relevant attachment that matched the search text.
type Match struct {
	Filename    string      `json:"filename"`
	MimeType    string      `json:"mime_type"`
	Size        int64       `json:"size"`
	MatchReason MatchReason `json:"match_reason"`
	Context     string      `json:"context,omitempty"`
}

// Result is one email with its matching relevant attachments.
type Result struct {
	Email       *domain.EmailDocument `json:"email"`
	Matches     []Match               `json:"matches"`
	MatchReason MatchReason           `json:"match_reason"`
}

// Searcher runs content searches over attachments.
type Searcher struct {
	store out.EmailStore
	log   zerolog.Logger
}

// NewSearcher creates an attachment searcher.
func NewSearcher(store out.EmailStore, log zerolog.Logger) *Searcher {
	return &Searcher{
		store: store,
		log:   log.With().Str("component", "attachment_search").Logger(),
	}
}

// Search finds emails carrying relevant attachments whose filename or
// parsed content matches the search text. Emails whose relevant
// attachments all fail the text match are dropped from the results.
func (s *Searcher) Search(ctx context.Context, req Request) ([]*Result, error) {
	if req.SearchText == "" {
		return nil, apperr.MissingField("search_text")
	}

	size := req.MaxResults
	if size <= 0 {
		size = DefaultMaxResults
	}

	q := s.buildQuery(req, size)

	start := time.Now()
	emails, err := s.store.Search(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Str("search_text", req.SearchText).Msg("attachment search failed")
		return nil, apperr.StoreUnavailable("attachment_search", err)
	}

	results := make([]*Result, 0, size)
	needle := strings.ToLower(req.SearchText)

	for _, e := range emails {
		if len(results) >= size {
			break
		}
		if r := matchEmail(e, needle); r != nil {
			results = append(results, r)
		}
	}

	s.log.Debug().
		Int("candidates", len(emails)).
		Int("results", len(results)).
		Dur("took", time.Since(start)).
		Msg("attachment search completed")

	return results, nil
}

func (s *Searcher) buildQuery(req Request, size int) *out.Query {
	contains := "*" + req.SearchText + "*"

	textMatch := out.Bool().
		WithShould(
			out.Wildcard(out.FieldAttachmentName, contains),
			out.Wildcard(out.FieldAttachmentContent, contains),
			out.Wildcard(out.FieldSubject, contains),
			out.Wildcard(out.FieldBodyPlain, contains),
		).
		WithMinimumShouldMatch(1)

	root := out.Bool().WithMust(
		out.Term(out.FieldHasAttachments, true),
		textMatch,
	)

	if req.FileType != "" {
		root.WithMust(out.Wildcard(out.FieldAttachmentName, "*."+strings.TrimPrefix(req.FileType, ".")))
	}
	if req.Sender != "" {
		root.WithMust(out.Wildcard(out.FieldSenderEmail, "*"+req.Sender+"*"))
	}
	if req.DateFrom != "" {
		if t, err := time.Parse("2006-01-02", search.NormalizeDate(req.DateFrom, time.Now())); err == nil {
			root.WithMust(out.Range(out.FieldDate, t, nil))
		}
	}

	return &out.Query{
		Root:      root,
		Size:      size * overFetchFactor,
		SortField: out.FieldDate,
		SortOrder: out.SortDesc,
	}
}

// matchEmail evaluates one candidate email. It returns nil when no
// relevant attachment survives the filter.
func matchEmail(e *domain.EmailDocument, needle string) *Result {
	var matches []Match
	anyRelevant := false

	for _, att := range e.Attachments {
		if !IsRelevantAttachment(att.Filename, att.MimeType) {
			continue
		}
		anyRelevant = true

		reason := MatchNone
		ctx := ""

		if att.ParsedContent != "" {
			if window, ok := contextAround(att.ParsedContent, needle); ok {
				reason = MatchContent
				ctx = window
			}
		}
		if reason == MatchNone && strings.Contains(strings.ToLower(att.Filename), needle) {
			reason = MatchFilename
		}

		if reason != MatchNone {
			matches = append(matches, Match{
				Filename:    att.Filename,
				MimeType:    att.MimeType,
				Size:        att.Size,
				MatchReason: reason,
				Context:     ctx,
			})
		}
	}

	if !anyRelevant {
		return nil
	}

	result := &Result{Email: e, Matches: matches, MatchReason: MatchNone}
	for _, m := range matches {
		if m.MatchReason == MatchContent {
			result.MatchReason = MatchContent
			break
		}
		result.MatchReason = MatchFilename
	}

	if result.MatchReason == MatchNone {
		// Matched on subject or body only; keep the email but report
		// that no attachment itself matched.
		result.Matches = []Match{}
	}

	return result
}

// contextAround finds the first case-insensitive occurrence of needle and
// returns a window of contextWindow characters on each side.
func contextAround(content, needle string) (string, bool) {
	lower := strings.ToLower(content)
	idx := strings.Index(lower, needle)
	if idx < 0 {
		return "", false
	}

	// Lowering can change byte length in some scripts; when the offsets
	// no longer line up with the original, window over the lowered text.
	src := content
	if len(lower) != len(content) {
		src = lower
	}

	start := idx - contextWindow
	if start < 0 {
		start = 0
	}
	end := idx + len(needle) + contextWindow
	if end > len(src) {
		end = len(src)
	}

	// Keep the window on rune boundaries.
	for start > 0 && !utf8.RuneStart(src[start]) {
		start--
	}
	for end < len(src) && !utf8.RuneStart(src[end]) {
		end++
	}

	return src[start:end], true
}
